package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/madrasati/schoolstore-backend/internal/cart"
	"github.com/madrasati/schoolstore-backend/internal/orders"
	"github.com/madrasati/schoolstore-backend/pkg/db/models"
	"github.com/madrasati/schoolstore-backend/pkg/enums"
	pkgerrors "github.com/madrasati/schoolstore-backend/pkg/errors"
	"github.com/madrasati/schoolstore-backend/pkg/logger"
	"github.com/madrasati/schoolstore-backend/pkg/ziina"
)

const (
	msgProfileMissing    = "Please complete your student profile before checking out."
	msgReferenceNotFound = "Payment reference not found."
	msgPaymentFailed     = "Payment could not be completed. Please try again."
	msgPaymentCancelled  = "Payment was cancelled."
	msgEmptyCart         = "Your cart is empty."
)

type paymentGateway interface {
	CreatePaymentRequest(ctx context.Context, params ziina.PaymentRequestCreateParams) (*ziina.PaymentRequest, error)
	GetPaymentRequest(ctx context.Context, paymentRequestID string) (*ziina.PaymentRequest, error)
}

type cartAccess interface {
	Items(userID uuid.UUID) []cart.Entry
	Total(userID uuid.UUID) decimal.Decimal
	Clear(userID uuid.UUID)
}

type profileReader interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.StudentProfile, error)
}

type orderWriter interface {
	Create(ctx context.Context, input orders.CreateOrderInput) (*orders.OrderDTO, error)
	AttachPaymentRequest(ctx context.Context, orderID uuid.UUID, paymentRequestID string) error
	FindByPaymentRequestID(ctx context.Context, paymentRequestID string) (*orders.OrderDTO, error)
	UpdateStatus(ctx context.Context, input orders.UpdateStatusInput) error
}

// Service drives a checkout attempt across the provider redirect boundary.
type Service interface {
	Begin(ctx context.Context, userID uuid.UUID) (*BeginResult, error)
	Resolve(ctx context.Context, paymentRequestID string) (*ResolveResult, error)
}

type service struct {
	carts    cartAccess
	profiles profileReader
	orders   orderWriter
	gateway  paymentGateway
	baseURL  string
	currency string
	logger   *logger.Logger
}

// NewService builds the checkout orchestrator.
func NewService(carts cartAccess, profiles profileReader, orderSvc orderWriter, gateway paymentGateway, baseURL, currency string, logg *logger.Logger) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if profiles == nil {
		return nil, fmt.Errorf("profiles repository required")
	}
	if orderSvc == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("base url required")
	}
	return &service{
		carts:    carts,
		profiles: profiles,
		orders:   orderSvc,
		gateway:  gateway,
		baseURL:  strings.TrimRight(baseURL, "/"),
		currency: currency,
		logger:   logg,
	}, nil
}

// Begin runs profile check, order placement, and payment initiation. It never
// returns a Go error for flow outcomes: every exit is a terminal state in the
// result. The error return covers precondition failures only (nil user).
func (s *service) Begin(ctx context.Context, userID uuid.UUID) (*BeginResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	// ProfileCheck: absence is a terminal non-error exit; the client shows
	// the message and then redirects to account setup.
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &BeginResult{
				State:       StateProfileMissing,
				RedirectURL: s.baseURL + "/account",
				Message:     msgProfileMissing,
			}, nil
		}
		return s.failBegin(ctx, "", "load profile", err), nil
	}

	// Summarizing: the cart snapshot becomes the order lines.
	entries := s.carts.Items(userID)
	if len(entries) == 0 {
		return &BeginResult{State: StateFailed, Message: msgEmptyCart}, nil
	}
	lines := make([]orders.OrderLineInput, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, orders.OrderLineInput{
			ProductID: entry.ProductID,
			Name:      entry.Name,
			UnitPrice: entry.UnitPrice,
			Quantity:  entry.Quantity,
		})
	}

	order, err := s.orders.Create(ctx, orders.CreateOrderInput{
		UserID:   userID,
		Currency: s.currency,
		Lines:    lines,
	})
	if err != nil {
		return s.failBegin(ctx, "", "create order", err), nil
	}

	// PaymentInitiating: amount goes out in minor units; the reference ties
	// the provider record back to the local order.
	pr, err := s.gateway.CreatePaymentRequest(ctx, ziina.PaymentRequestCreateParams{
		Amount:        order.TotalAmount,
		Currency:      order.Currency,
		CustomerEmail: profile.ParentEmail,
		CustomerName:  profile.ParentName,
		CustomerPhone: profile.ParentPhone,
		Reference:     order.ID.String(),
		Description:   fmt.Sprintf("School store order for %s", profile.StudentName),
		SuccessURL:    s.baseURL + "/payment/success",
		FailureURL:    s.baseURL + "/payment/failure",
		CancelURL:     s.baseURL + "/payment/cancel",
	})
	if err != nil {
		return s.failBegin(ctx, order.ID.String(), "create payment request", err), nil
	}
	if strings.TrimSpace(pr.RedirectURL) == "" {
		return s.failBegin(ctx, order.ID.String(), "create payment request", errors.New("provider returned no redirect url")), nil
	}

	if err := s.orders.AttachPaymentRequest(ctx, order.ID, pr.ID); err != nil {
		return s.failBegin(ctx, order.ID.String(), "attach payment request", err), nil
	}

	// The order is placed; the session cart has served its purpose. After
	// this point the attempt lives only in the provider's redirect URL.
	s.carts.Clear(userID)

	return &BeginResult{
		State:       StateRedirected,
		OrderID:     order.ID.String(),
		RedirectURL: pr.RedirectURL,
	}, nil
}

// Resolve is the return-trip run, keyed exclusively on the reference carried
// in the provider's redirect back. A missing reference is Failed outright;
// the gateway is never consulted for it.
func (s *service) Resolve(ctx context.Context, paymentRequestID string) (*ResolveResult, error) {
	id := strings.TrimSpace(paymentRequestID)
	if id == "" {
		return &ResolveResult{State: StateFailed, Message: msgReferenceNotFound}, nil
	}

	pr, err := s.gateway.GetPaymentRequest(ctx, id)
	if err != nil {
		if s.logger != nil {
			s.logger.Error(ctx, "payment status lookup failed", err)
		}
		return &ResolveResult{State: StateFailed, Message: msgPaymentFailed}, nil
	}

	order, err := s.orders.FindByPaymentRequestID(ctx, id)
	if err != nil {
		if s.logger != nil {
			s.logger.Error(ctx, "order lookup by payment request failed", err)
		}
		return &ResolveResult{State: StateFailed, Message: msgPaymentFailed}, nil
	}

	switch pr.Status {
	case ziina.StatusPaid:
		if err := s.setOrderStatus(ctx, order, enums.OrderStatusConfirmed); err != nil {
			return &ResolveResult{State: StateFailed, OrderID: order.ID.String(), Message: msgPaymentFailed}, nil
		}
		return &ResolveResult{State: StateSuccess, OrderID: order.ID.String()}, nil

	case ziina.StatusCancelled:
		if err := s.setOrderStatus(ctx, order, enums.OrderStatusCancelled); err != nil {
			return &ResolveResult{State: StateFailed, OrderID: order.ID.String(), Message: msgPaymentFailed}, nil
		}
		return &ResolveResult{State: StateCancelled, OrderID: order.ID.String(), Message: msgPaymentCancelled}, nil

	default:
		// Anything unrecognized counts as failure, never success.
		return &ResolveResult{State: StateFailed, OrderID: order.ID.String(), Message: msgPaymentFailed}, nil
	}
}

func (s *service) setOrderStatus(ctx context.Context, order *orders.OrderDTO, status enums.OrderStatus) error {
	err := s.orders.UpdateStatus(ctx, orders.UpdateStatusInput{
		OrderID:   order.ID,
		Status:    status,
		ActorID:   order.UserID,
		ActorRole: enums.UserRoleCustomer,
	})
	if err != nil && s.logger != nil {
		s.logger.Error(ctx, "order status update failed", err)
	}
	return err
}

func (s *service) failBegin(ctx context.Context, orderID, op string, err error) *BeginResult {
	if s.logger != nil {
		s.logger.Error(ctx, fmt.Sprintf("checkout %s failed", op), err)
	}
	message := msgPaymentFailed
	if typed := pkgerrors.As(err); typed != nil && typed.Code() != pkgerrors.CodeInternal && typed.Code() != pkgerrors.CodeDependency {
		message = typed.Message()
	}
	return &BeginResult{State: StateFailed, OrderID: orderID, Message: message}
}
