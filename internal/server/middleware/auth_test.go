package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"auth-session-gateway/internal/identity/service"
	sessiondomain "auth-session-gateway/internal/session/domain"
	userdomain "auth-session-gateway/internal/user/domain"
)

type mockResolver struct {
	bearerUser  *userdomain.User
	sessionUser *userdomain.User
	session     *sessiondomain.Session
	gotBearer   string
	gotSession  string
}

func (m *mockResolver) ResolveBearer(ctx context.Context, rawToken string) (*userdomain.User, error) {
	m.gotBearer = rawToken
	if m.bearerUser == nil {
		return nil, service.ErrUnauthenticated
	}
	return m.bearerUser, nil
}

func (m *mockResolver) ResolveSession(ctx context.Context, sessionID string) (*userdomain.User, *sessiondomain.Session, error) {
	m.gotSession = sessionID
	if m.sessionUser == nil {
		return nil, nil, service.ErrUnauthenticated
	}
	return m.sessionUser, m.session, nil
}

func identityCapturingHandler(user **userdomain.User, sess **sessiondomain.Session) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := GetUser(r.Context()); ok {
			*user = u
		}
		if s, ok := GetSession(r.Context()); ok {
			*sess = s
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_BearerHeader(t *testing.T) {
	resolver := &mockResolver{bearerUser: &userdomain.User{ID: "user-1"}}
	var gotUser *userdomain.User
	var gotSess *sessiondomain.Session
	handler := Authenticate(resolver, "app_session", zap.NewNop())(identityCapturingHandler(&gotUser, &gotSess))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer raw-token")
	req = req.WithContext(WithRequestMeta(req.Context(), RequestMeta{RequestID: "r-1"}))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if resolver.gotBearer != "raw-token" {
		t.Errorf("resolved bearer = %q, want %q", resolver.gotBearer, "raw-token")
	}
	if gotUser == nil || gotUser.ID != "user-1" {
		t.Errorf("context user = %v, want user-1", gotUser)
	}
	if gotSess != nil {
		t.Error("bearer auth should not attach a session")
	}
	if got := GetRequestMeta(req.Context()).UserID; got != "user-1" {
		t.Errorf("request meta user id = %q, want %q", got, "user-1")
	}
}

func TestAuthenticate_BearerCookie(t *testing.T) {
	resolver := &mockResolver{bearerUser: &userdomain.User{ID: "user-1"}}
	var gotUser *userdomain.User
	var gotSess *sessiondomain.Session
	handler := Authenticate(resolver, "app_session", zap.NewNop())(identityCapturingHandler(&gotUser, &gotSess))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: BearerCookieName, Value: "cookie-token"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if resolver.gotBearer != "cookie-token" {
		t.Errorf("resolved bearer = %q, want %q", resolver.gotBearer, "cookie-token")
	}
	if gotUser == nil || gotUser.ID != "user-1" {
		t.Errorf("context user = %v, want user-1", gotUser)
	}
}

func TestAuthenticate_SessionCookie(t *testing.T) {
	now := time.Now().UTC()
	resolver := &mockResolver{
		sessionUser: &userdomain.User{ID: "user-2"},
		session:     &sessiondomain.Session{ID: "s-1", UserID: "user-2", ExpiresAt: now.Add(time.Hour)},
	}
	var gotUser *userdomain.User
	var gotSess *sessiondomain.Session
	handler := Authenticate(resolver, "app_session", zap.NewNop())(identityCapturingHandler(&gotUser, &gotSess))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: "app_session", Value: "s-1"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if resolver.gotSession != "s-1" {
		t.Errorf("resolved session = %q, want %q", resolver.gotSession, "s-1")
	}
	if gotUser == nil || gotUser.ID != "user-2" {
		t.Errorf("context user = %v, want user-2", gotUser)
	}
	if gotSess == nil || gotSess.ID != "s-1" {
		t.Errorf("context session = %v, want s-1", gotSess)
	}
}

func TestAuthenticate_InvalidCredentialProceedsAnonymously(t *testing.T) {
	resolver := &mockResolver{}
	var gotUser *userdomain.User
	var gotSess *sessiondomain.Session
	handler := Authenticate(resolver, "app_session", zap.NewNop())(identityCapturingHandler(&gotUser, &gotSess))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	req.AddCookie(&http.Cookie{Name: "app_session", Value: "bad-session"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d (anonymous pass-through)", rec.Code, http.StatusOK)
	}
	if gotUser != nil {
		t.Errorf("context user = %v, want none", gotUser)
	}
}

func TestAuthenticate_NoCredential(t *testing.T) {
	resolver := &mockResolver{}
	var gotUser *userdomain.User
	var gotSess *sessiondomain.Session
	handler := Authenticate(resolver, "app_session", zap.NewNop())(identityCapturingHandler(&gotUser, &gotSess))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/me", nil))

	if resolver.gotBearer != "" || resolver.gotSession != "" {
		t.Error("no resolution should happen without credentials")
	}
	if gotUser != nil {
		t.Errorf("context user = %v, want none", gotUser)
	}
}
