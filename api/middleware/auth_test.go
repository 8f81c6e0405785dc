package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgAuth "github.com/ridgelinearms/armory-backend/pkg/auth"
	"github.com/ridgelinearms/armory-backend/pkg/config"
	"github.com/ridgelinearms/armory-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "armory", ExpirationMinutes: 10}
}

func mintToken(t *testing.T, role enums.ActorRole, tier *enums.MembershipTier) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(testJWTConfig(), time.Now(), pkgAuth.AccessTokenPayload{
		UserID:         uuid.New(),
		Role:           role,
		MembershipTier: tier,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestAuthRejectsMissingCredentials(t *testing.T) {
	mw := Auth(testJWTConfig(), nil)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthSeedsContext(t *testing.T) {
	tier := enums.TierGold
	token := mintToken(t, enums.RoleCustomer, &tier)

	var gotRole enums.ActorRole
	var gotTier enums.MembershipTier
	mw := Auth(testJWTConfig(), nil)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRole = RoleFromContext(r.Context())
		gotTier = TierFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if gotRole != enums.RoleCustomer {
		t.Fatalf("role = %s, want customer", gotRole)
	}
	if gotTier != enums.TierGold {
		t.Fatalf("tier = %s, want gold", gotTier)
	}
}

func TestTierDefaultsToBronze(t *testing.T) {
	token := mintToken(t, enums.RoleCustomer, nil)

	var gotTier enums.MembershipTier
	mw := Auth(testJWTConfig(), nil)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTier = TierFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if gotTier != enums.TierBronze {
		t.Fatalf("tier = %s, want bronze default", gotTier)
	}
}

func TestRequireStaffForbidsCustomers(t *testing.T) {
	token := mintToken(t, enums.RoleCustomer, nil)

	chain := Auth(testJWTConfig(), nil)(RequireStaff(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run for customers")
	})))

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/rules", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	chain.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestRequireStaffAllowsStaff(t *testing.T) {
	token := mintToken(t, enums.RoleStaff, nil)

	called := false
	chain := Auth(testJWTConfig(), nil)(RequireStaff(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/rules", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	chain.ServeHTTP(resp, req)

	if !called || resp.Code != http.StatusOK {
		t.Fatalf("expected staff to pass, code %d", resp.Code)
	}
}

func TestOptionalAuthAllowsAnonymous(t *testing.T) {
	called := false
	mw := OptionalAuth(testJWTConfig(), nil)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if IsAuthenticated(r) {
			t.Fatal("anonymous request must not be authenticated")
		}
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/quotes/sku", nil))
	if !called {
		t.Fatal("handler not called")
	}
}
