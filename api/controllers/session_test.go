package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgAuth "github.com/madrasati/schoolstore-backend/pkg/auth"
	"github.com/madrasati/schoolstore-backend/pkg/config"
	"github.com/madrasati/schoolstore-backend/pkg/enums"
)

type stubSessionRotator struct {
	revoked []string
	rotated []string
}

func (s *stubSessionRotator) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	s.rotated = append(s.rotated, oldAccessID)
	return "access-new", "refresh-new", nil
}

func (s *stubSessionRotator) Revoke(ctx context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

type recordingCartClearer struct {
	cleared []uuid.UUID
}

func (r *recordingCartClearer) Clear(userID uuid.UUID) {
	r.cleared = append(r.cleared, userID)
}

func sessionTestJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "session-test-secret",
		Issuer:            "schoolstore-test",
		ExpirationMinutes: 15,
	}
}

func TestAuthLogoutRevokesSessionAndClearsCart(t *testing.T) {
	cfg := sessionTestJWTConfig()
	userID := uuid.New()
	accessID := "jti-logout"

	token, err := pkgAuth.MintAccessToken(cfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: userID,
		Role:   enums.UserRoleCustomer,
		JTI:    accessID,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	rotator := &stubSessionRotator{}
	carts := &recordingCartClearer{}
	handler := AuthLogout(rotator, carts, cfg, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if len(rotator.revoked) != 1 || rotator.revoked[0] != accessID {
		t.Fatalf("expected revoke of %q, got %v", accessID, rotator.revoked)
	}
	if len(carts.cleared) != 1 || carts.cleared[0] != userID {
		t.Fatalf("expected cart clear for %s, got %v", userID, carts.cleared)
	}
}

func TestAuthLogoutRejectsMissingToken(t *testing.T) {
	rotator := &stubSessionRotator{}
	handler := AuthLogout(rotator, nil, sessionTestJWTConfig(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	if len(rotator.revoked) != 0 {
		t.Fatalf("nothing should be revoked, got %v", rotator.revoked)
	}
}
