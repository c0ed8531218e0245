package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"auth-session-gateway/internal/identity/service"
	sessiondomain "auth-session-gateway/internal/session/domain"
	userdomain "auth-session-gateway/internal/user/domain"
)

const bearerPrefix = "bearer "

// BearerCookieName is the cookie carrying the bearer token for browser
// clients that cannot set an Authorization header.
const BearerCookieName = "auth_token"

// CredentialResolver validates presented credentials against storage.
// Implemented by the auth service.
type CredentialResolver interface {
	ResolveBearer(ctx context.Context, rawToken string) (*userdomain.User, error)
	ResolveSession(ctx context.Context, sessionID string) (*userdomain.User, *sessiondomain.Session, error)
}

// Authenticate resolves the request's credential and attaches the identity to
// the context. Resolution order: Authorization header, then the bearer
// cookie, then the session cookie. Requests without a valid credential
// proceed anonymously; handlers decide whether to reject them.
func Authenticate(resolver CredentialResolver, sessionCookieName string, logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if raw := bearerFromRequest(r); raw != "" {
				user, err := resolver.ResolveBearer(ctx, raw)
				if err == nil {
					setRequestUserID(ctx, user.ID)
					next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, user, nil)))
					return
				}
				if !errors.Is(err, service.ErrUnauthenticated) {
					logger.Warn("bearer resolution failed", zap.Error(err))
				}
			}

			if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
				user, sess, err := resolver.ResolveSession(ctx, c.Value)
				if err == nil {
					setRequestUserID(ctx, user.ID)
					next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, user, sess)))
					return
				}
				if !errors.Is(err, service.ErrUnauthenticated) {
					logger.Warn("session resolution failed", zap.Error(err))
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerFromRequest returns the bearer token from the Authorization header or
// the bearer cookie, or "" if neither carries one.
func bearerFromRequest(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) >= len(bearerPrefix) && strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		if tok := strings.TrimSpace(v[len(bearerPrefix):]); tok != "" {
			return tok
		}
	}
	if c, err := r.Cookie(BearerCookieName); err == nil {
		return c.Value
	}
	return ""
}
