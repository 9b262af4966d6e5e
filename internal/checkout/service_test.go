package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/madrasati/schoolstore-backend/internal/cart"
	"github.com/madrasati/schoolstore-backend/internal/orders"
	"github.com/madrasati/schoolstore-backend/pkg/db/models"
	"github.com/madrasati/schoolstore-backend/pkg/enums"
	"github.com/madrasati/schoolstore-backend/pkg/ziina"
)

type stubGateway struct {
	createCalls  int
	statusCalls  int
	createParams ziina.PaymentRequestCreateParams
	createResp   *ziina.PaymentRequest
	createErr    error
	statusResp   *ziina.PaymentRequest
	statusErr    error
}

func (g *stubGateway) CreatePaymentRequest(_ context.Context, params ziina.PaymentRequestCreateParams) (*ziina.PaymentRequest, error) {
	g.createCalls++
	g.createParams = params
	if g.createErr != nil {
		return nil, g.createErr
	}
	return g.createResp, nil
}

func (g *stubGateway) GetPaymentRequest(_ context.Context, _ string) (*ziina.PaymentRequest, error) {
	g.statusCalls++
	if g.statusErr != nil {
		return nil, g.statusErr
	}
	return g.statusResp, nil
}

type stubCart struct {
	items   []cart.Entry
	cleared bool
}

func (c *stubCart) Items(uuid.UUID) []cart.Entry { return c.items }

func (c *stubCart) Total(uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	for _, e := range c.items {
		total = total.Add(e.Subtotal())
	}
	return total
}

func (c *stubCart) Clear(uuid.UUID) { c.cleared = true }

type stubProfiles struct {
	profile *models.StudentProfile
	err     error
}

func (p *stubProfiles) FindByUserID(context.Context, uuid.UUID) (*models.StudentProfile, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.profile, nil
}

type stubOrders struct {
	created      *orders.OrderDTO
	createErr    error
	createInput  orders.CreateOrderInput
	attachedID   string
	found        *orders.OrderDTO
	foundErr     error
	statusInputs []orders.UpdateStatusInput
	statusErr    error
}

func (o *stubOrders) Create(_ context.Context, input orders.CreateOrderInput) (*orders.OrderDTO, error) {
	o.createInput = input
	if o.createErr != nil {
		return nil, o.createErr
	}
	return o.created, nil
}

func (o *stubOrders) AttachPaymentRequest(_ context.Context, _ uuid.UUID, paymentRequestID string) error {
	o.attachedID = paymentRequestID
	return nil
}

func (o *stubOrders) FindByPaymentRequestID(context.Context, string) (*orders.OrderDTO, error) {
	if o.foundErr != nil {
		return nil, o.foundErr
	}
	return o.found, nil
}

func (o *stubOrders) UpdateStatus(_ context.Context, input orders.UpdateStatusInput) error {
	o.statusInputs = append(o.statusInputs, input)
	return o.statusErr
}

func testProfile() *models.StudentProfile {
	return &models.StudentProfile{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		StudentName: "Aisha K",
		Class:       "5",
		Section:     "B",
		StudentCode: "AK5102",
		ParentName:  "Karim",
		ParentEmail: "karim@example.com",
		ParentPhone: "+971500000000",
	}
}

func testOrder(total string) *orders.OrderDTO {
	return &orders.OrderDTO{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		TotalAmount: decimal.RequireFromString(total),
		Currency:    "AED",
		Status:      enums.OrderStatusPending,
	}
}

func newTestService(t *testing.T, carts *stubCart, profiles *stubProfiles, orderSvc *stubOrders, gateway *stubGateway) Service {
	t.Helper()
	svc, err := NewService(carts, profiles, orderSvc, gateway, "http://localhost:5173", "AED", nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func cartEntry(name, price string, qty int) cart.Entry {
	return cart.Entry{
		ProductID: uuid.New(),
		Name:      name,
		UnitPrice: decimal.RequireFromString(price),
		Currency:  "AED",
		Quantity:  qty,
	}
}

func TestBeginMissingProfileNeverCallsGateway(t *testing.T) {
	gateway := &stubGateway{}
	carts := &stubCart{items: []cart.Entry{cartEntry("Notebook", "10.00", 1)}}
	svc := newTestService(t, carts, &stubProfiles{err: gorm.ErrRecordNotFound}, &stubOrders{}, gateway)

	result, err := svc.Begin(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if result.State != StateProfileMissing {
		t.Fatalf("expected profile_missing, got %s", result.State)
	}
	if result.Message == "" {
		t.Fatal("expected user-facing message")
	}
	if result.RedirectURL != "http://localhost:5173/account" {
		t.Fatalf("expected account-setup redirect, got %q", result.RedirectURL)
	}
	if gateway.createCalls != 0 {
		t.Fatalf("gateway called %d times for missing profile", gateway.createCalls)
	}
}

func TestBeginEmptyCartFails(t *testing.T) {
	gateway := &stubGateway{}
	svc := newTestService(t, &stubCart{}, &stubProfiles{profile: testProfile()}, &stubOrders{}, gateway)

	result, err := svc.Begin(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if result.State != StateFailed {
		t.Fatalf("expected failed, got %s", result.State)
	}
	if gateway.createCalls != 0 {
		t.Fatal("gateway must not be called for an empty cart")
	}
}

func TestBeginRedirectsToProviderURL(t *testing.T) {
	order := testOrder("25.50")
	gateway := &stubGateway{
		createResp: &ziina.PaymentRequest{
			ID:          "pr_abc",
			Status:      ziina.StatusPending,
			RedirectURL: "https://pay.example/abc",
		},
	}
	carts := &stubCart{items: []cart.Entry{
		cartEntry("Notebook", "10.00", 2),
		cartEntry("Pencil", "5.50", 1),
	}}
	orderSvc := &stubOrders{created: order}
	svc := newTestService(t, carts, &stubProfiles{profile: testProfile()}, orderSvc, gateway)

	result, err := svc.Begin(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if result.State != StateRedirected {
		t.Fatalf("expected redirected, got %s (%s)", result.State, result.Message)
	}
	if result.RedirectURL != "https://pay.example/abc" {
		t.Fatalf("expected provider redirect url verbatim, got %q", result.RedirectURL)
	}
	if result.OrderID != order.ID.String() {
		t.Fatalf("expected order id %s, got %s", order.ID, result.OrderID)
	}

	// Reference, return URLs, and customer block come from order and profile.
	if gateway.createParams.Reference != order.ID.String() {
		t.Fatalf("expected merchant reference %s, got %s", order.ID, gateway.createParams.Reference)
	}
	if gateway.createParams.SuccessURL != "http://localhost:5173/payment/success" ||
		gateway.createParams.FailureURL != "http://localhost:5173/payment/failure" ||
		gateway.createParams.CancelURL != "http://localhost:5173/payment/cancel" {
		t.Fatalf("unexpected return urls: %+v", gateway.createParams)
	}
	if gateway.createParams.CustomerEmail != "karim@example.com" {
		t.Fatalf("customer contact missing: %+v", gateway.createParams)
	}
	if !gateway.createParams.Amount.Equal(decimal.RequireFromString("25.50")) {
		t.Fatalf("expected amount 25.50, got %s", gateway.createParams.Amount)
	}

	if orderSvc.attachedID != "pr_abc" {
		t.Fatalf("payment request not recorded against order: %q", orderSvc.attachedID)
	}
	if !carts.cleared {
		t.Fatal("session cart must be cleared after redirect")
	}
}

func TestBeginFailsWithoutRedirectURL(t *testing.T) {
	order := testOrder("10.00")
	gateway := &stubGateway{
		createResp: &ziina.PaymentRequest{ID: "pr_abc", Status: ziina.StatusPending},
	}
	carts := &stubCart{items: []cart.Entry{cartEntry("Notebook", "10.00", 1)}}
	svc := newTestService(t, carts, &stubProfiles{profile: testProfile()}, &stubOrders{created: order}, gateway)

	result, err := svc.Begin(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if result.State != StateFailed {
		t.Fatalf("expected failed without redirect url, got %s", result.State)
	}
	if carts.cleared {
		t.Fatal("cart must survive a failed initiation")
	}
}

func TestBeginGatewayErrorIsTerminalFailure(t *testing.T) {
	order := testOrder("10.00")
	gateway := &stubGateway{createErr: errors.New("provider unreachable")}
	carts := &stubCart{items: []cart.Entry{cartEntry("Notebook", "10.00", 1)}}
	svc := newTestService(t, carts, &stubProfiles{profile: testProfile()}, &stubOrders{created: order}, gateway)

	result, err := svc.Begin(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("network failures must not propagate: %v", err)
	}
	if result.State != StateFailed {
		t.Fatalf("expected failed, got %s", result.State)
	}
	if result.Message == "" {
		t.Fatal("expected user-facing message")
	}
}

func TestResolveStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		status     string
		wantState  State
		wantStatus enums.OrderStatus
	}{
		{"paid resolves to success", ziina.StatusPaid, StateSuccess, enums.OrderStatusConfirmed},
		{"cancelled resolves to cancelled", ziina.StatusCancelled, StateCancelled, enums.OrderStatusCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := testOrder("25.50")
			gateway := &stubGateway{statusResp: &ziina.PaymentRequest{ID: "pr_abc", Status: tt.status}}
			orderSvc := &stubOrders{found: order}
			svc := newTestService(t, &stubCart{}, &stubProfiles{profile: testProfile()}, orderSvc, gateway)

			result, err := svc.Resolve(context.Background(), "pr_abc")
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if result.State != tt.wantState {
				t.Fatalf("expected %s, got %s", tt.wantState, result.State)
			}
			if len(orderSvc.statusInputs) != 1 || orderSvc.statusInputs[0].Status != tt.wantStatus {
				t.Fatalf("expected order moved to %s, got %+v", tt.wantStatus, orderSvc.statusInputs)
			}
		})
	}
}

func TestResolveUnrecognizedStatusFails(t *testing.T) {
	for _, status := range []string{ziina.StatusFailed, ziina.StatusPending, "mystery"} {
		order := testOrder("25.50")
		gateway := &stubGateway{statusResp: &ziina.PaymentRequest{ID: "pr_abc", Status: status}}
		orderSvc := &stubOrders{found: order}
		svc := newTestService(t, &stubCart{}, &stubProfiles{profile: testProfile()}, orderSvc, gateway)

		result, err := svc.Resolve(context.Background(), "pr_abc")
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if result.State != StateFailed {
			t.Fatalf("status %q: expected failed, got %s", status, result.State)
		}
		if len(orderSvc.statusInputs) != 0 {
			t.Fatalf("status %q: order must not transition, got %+v", status, orderSvc.statusInputs)
		}
	}
}

func TestResolveMissingReferenceSkipsGateway(t *testing.T) {
	gateway := &stubGateway{}
	svc := newTestService(t, &stubCart{}, &stubProfiles{profile: testProfile()}, &stubOrders{}, gateway)

	for _, ref := range []string{"", "   "} {
		result, err := svc.Resolve(context.Background(), ref)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if result.State != StateFailed {
			t.Fatalf("expected failed for missing reference, got %s", result.State)
		}
		if result.Message != "Payment reference not found." {
			t.Fatalf("expected distinct missing-reference message, got %q", result.Message)
		}
	}
	if gateway.statusCalls != 0 {
		t.Fatalf("gateway consulted %d times for missing reference", gateway.statusCalls)
	}
}

func TestResolveGatewayErrorFails(t *testing.T) {
	gateway := &stubGateway{statusErr: errors.New("timeout")}
	svc := newTestService(t, &stubCart{}, &stubProfiles{profile: testProfile()}, &stubOrders{}, gateway)

	result, err := svc.Resolve(context.Background(), "pr_abc")
	if err != nil {
		t.Fatalf("network failures must not propagate: %v", err)
	}
	if result.State != StateFailed {
		t.Fatalf("expected failed, got %s", result.State)
	}
}
