package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	checkoutsvc "github.com/madrasati/schoolstore-backend/internal/checkout"
	"github.com/madrasati/schoolstore-backend/pkg/enums"
	"github.com/madrasati/schoolstore-backend/pkg/types"
)

type stubCheckoutService struct {
	begin   *checkoutsvc.BeginResult
	resolve *checkoutsvc.ResolveResult
	err     error

	resolvedWith string
}

func (s *stubCheckoutService) Begin(ctx context.Context, userID uuid.UUID) (*checkoutsvc.BeginResult, error) {
	return s.begin, s.err
}

func (s *stubCheckoutService) Resolve(ctx context.Context, paymentRequestID string) (*checkoutsvc.ResolveResult, error) {
	s.resolvedWith = paymentRequestID
	return s.resolve, s.err
}

func decodeData(t *testing.T, resp *httptest.ResponseRecorder, dest any) {
	t.Helper()
	var envelope types.SuccessEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	raw, err := json.Marshal(envelope.Data)
	if err != nil {
		t.Fatalf("re-marshal data: %v", err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func TestCheckoutReturnsRedirect(t *testing.T) {
	svc := &stubCheckoutService{begin: &checkoutsvc.BeginResult{
		State:       checkoutsvc.StateRedirected,
		RedirectURL: "https://pay.example/abc",
	}}
	handler := Checkout(svc, nil)

	req := authedRequest(http.MethodPost, "/api/v1/checkout", "", uuid.New(), enums.UserRoleCustomer)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var result checkoutsvc.BeginResult
	decodeData(t, resp, &result)
	if result.State != checkoutsvc.StateRedirected {
		t.Fatalf("expected redirected state, got %s", result.State)
	}
	if result.RedirectURL != "https://pay.example/abc" {
		t.Fatalf("redirect url must pass through verbatim, got %q", result.RedirectURL)
	}
}

func TestCheckoutRequiresAuthContext(t *testing.T) {
	handler := Checkout(&stubCheckoutService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestPaymentResultPassesQueryReference(t *testing.T) {
	svc := &stubCheckoutService{resolve: &checkoutsvc.ResolveResult{
		State: checkoutsvc.StateSuccess,
	}}
	handler := PaymentResult(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/result?payment_request_id=pr_123", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.resolvedWith != "pr_123" {
		t.Fatalf("expected pr_123 to reach the service, got %q", svc.resolvedWith)
	}
}

func TestPaymentResultMissingReference(t *testing.T) {
	svc := &stubCheckoutService{resolve: &checkoutsvc.ResolveResult{
		State:   checkoutsvc.StateFailed,
		Message: "Payment reference not found.",
	}}
	handler := PaymentResult(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/result", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("resolution outcomes are not transport faults, got %d", resp.Code)
	}
	if svc.resolvedWith != "" {
		t.Fatalf("expected empty reference, got %q", svc.resolvedWith)
	}
	var result checkoutsvc.ResolveResult
	decodeData(t, resp, &result)
	if result.State != checkoutsvc.StateFailed {
		t.Fatalf("expected failed state, got %s", result.State)
	}
}
