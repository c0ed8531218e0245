package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	auditdomain "auth-session-gateway/internal/audit/domain"
	"auth-session-gateway/internal/config"
	"auth-session-gateway/internal/identity"
	"auth-session-gateway/internal/identity/service"
	sessiondomain "auth-session-gateway/internal/session/domain"
	userdomain "auth-session-gateway/internal/user/domain"
)

type fakeAuth struct {
	user *userdomain.User
}

func (f *fakeAuth) ResolveBearer(ctx context.Context, rawToken string) (*userdomain.User, error) {
	if f.user == nil {
		return nil, service.ErrUnauthenticated
	}
	return f.user, nil
}

func (f *fakeAuth) ResolveSession(ctx context.Context, sessionID string) (*userdomain.User, *sessiondomain.Session, error) {
	return nil, nil, service.ErrUnauthenticated
}

func (f *fakeAuth) Login(ctx context.Context, ident *identity.Identity) (*service.LoginResult, error) {
	return nil, service.ErrIdentityRejected
}

func (f *fakeAuth) RefreshSession(ctx context.Context, sessionID, csrfToken string) (*service.RefreshResult, error) {
	return nil, service.ErrUnauthenticated
}

func (f *fakeAuth) RefreshBearer(ctx context.Context, rawToken string) (*service.RefreshResult, error) {
	return nil, service.ErrUnauthenticated
}

func (f *fakeAuth) Logout(ctx context.Context, sessionID, rawBearer string) error { return nil }

func (f *fakeAuth) LogOAuthFailure(ctx context.Context, reason string) {}

type fakeProvider struct{}

func (fakeProvider) AuthCodeURL(state string) string { return "https://provider.example/?state=" + state }

func (fakeProvider) Exchange(ctx context.Context, code string) (*identity.Identity, error) {
	return &identity.Identity{Subject: "sub", Email: "a@example.com"}, nil
}

type fakeUserRepo struct{}

func (fakeUserRepo) GetByID(ctx context.Context, id string) (*userdomain.User, error) {
	return nil, nil
}

func (fakeUserRepo) GetByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	return nil, nil
}

func (fakeUserRepo) Create(ctx context.Context, u *userdomain.User) error { return nil }

func (fakeUserRepo) Update(ctx context.Context, u *userdomain.User) error { return nil }

func (fakeUserRepo) CountAll(ctx context.Context) (int64, error) { return 0, nil }

func (fakeUserRepo) CountByRole(ctx context.Context, role userdomain.Role) (int64, error) {
	return 0, nil
}

type fakeAuditRepo struct{}

func (fakeAuditRepo) GetByID(ctx context.Context, id string) (*auditdomain.AuditLog, error) {
	return nil, nil
}

func (fakeAuditRepo) ListRecent(ctx context.Context, limit, offset int32) ([]*auditdomain.AuditLog, error) {
	return nil, nil
}

func (fakeAuditRepo) Create(ctx context.Context, a *auditdomain.AuditLog) error { return nil }

func (fakeAuditRepo) CountAll(ctx context.Context) (int64, error) { return 0, nil }

func (fakeAuditRepo) CountSince(ctx context.Context, t time.Time) (int64, error) { return 0, nil }

func (fakeAuditRepo) CountByEvent(ctx context.Context) (map[string]int64, error) { return nil, nil }

type fakePinger struct{ err error }

func (p fakePinger) PingContext(ctx context.Context) error { return p.err }

func testConfig() *config.Config {
	return &config.Config{
		HTTPAddr:             ":8000",
		AppURL:               "http://localhost:8000",
		FrontendURL:          "http://localhost:3000",
		SessionCookieName:    "app_session",
		SessionSameSite:      "lax",
		RateLimitOAuthGoogle: 3,
		RateLimitAuthSession: 120,
		RateLimitAuthMe:      60,
		RateLimitAuthLogout:  30,
		RateLimitAuthRefresh: 20,
		CORSMaxAge:           600,
	}
}

func testRouter(auth *fakeAuth) http.Handler {
	return NewRouter(testConfig(), Deps{
		Auth:         auth,
		Provider:     fakeProvider{},
		UserRepo:     fakeUserRepo{},
		AuditRepo:    fakeAuditRepo{},
		HealthPinger: fakePinger{},
		Logger:       zap.NewNop(),
	})
}

func TestRouter_Healthz(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(&fakeAuth{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRouter_MeRequiresAuth(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(&fakeAuth{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRouter_MeWithBearer(t *testing.T) {
	auth := &fakeAuth{user: &userdomain.User{ID: "user-1", Email: "a@example.com", Role: userdomain.RoleUser}}
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	testRouter(auth).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRouter_SecurityHeadersAndRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(&fakeAuth{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers should be injected")
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("request id should be echoed")
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS should be off outside production TLS")
	}
}

func TestRouter_OAuthThrottle(t *testing.T) {
	router := testRouter(&fakeAuth{})
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/auth/google/redirect", nil)
		req.RemoteAddr = "9.9.9.9:1"
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusFound {
			t.Fatalf("request %d status = %d, want 302", i+1, rec.Code)
		}
	}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/google/redirect", nil)
	req.RemoteAddr = "9.9.9.9:1"
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429 after limit", rec.Code)
	}
}

func TestRouter_CORS(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/me", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	testRouter(&fakeAuth{}).ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("allow origin = %q, want frontend origin", got)
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Error("credentialed CORS should be allowed for the frontend origin")
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(&fakeAuth{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/logout", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
