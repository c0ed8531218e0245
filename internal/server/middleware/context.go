package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	sessiondomain "auth-session-gateway/internal/session/domain"
	userdomain "auth-session-gateway/internal/user/domain"
)

type contextKey struct{ name string }

var (
	userKey        = contextKey{"user"}
	sessionKey     = contextKey{"session"}
	requestMetaKey = contextKey{"request_meta"}
)

// RequestMeta carries per-request correlation data: the request id and the
// client fields recorded on audit entries and the completion log line. UserID
// is filled in by the auth middleware once a credential resolves; it stays
// empty for anonymous requests.
type RequestMeta struct {
	RequestID string
	IP        string
	UserAgent string
	UserID    string
}

// WithIdentity returns a context carrying the authenticated user, and the
// session when the credential was a session cookie. Handlers read these via
// GetUser and GetSession.
func WithIdentity(ctx context.Context, user *userdomain.User, sess *sessiondomain.Session) context.Context {
	ctx = context.WithValue(ctx, userKey, user)
	if sess != nil {
		ctx = context.WithValue(ctx, sessionKey, sess)
	}
	return ctx
}

// GetUser returns the authenticated user from context and true if set.
func GetUser(ctx context.Context) (*userdomain.User, bool) {
	u, ok := ctx.Value(userKey).(*userdomain.User)
	return u, ok
}

// GetSession returns the resolved session from context and true if set.
// Unset for bearer-authenticated and anonymous requests.
func GetSession(ctx context.Context) (*sessiondomain.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*sessiondomain.Session)
	return s, ok
}

// WithRequestMeta returns a context carrying request correlation data. The
// data is held by pointer so setRequestUserID can fill the user id after the
// auth middleware runs deeper in the chain.
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey, &meta)
}

// GetRequestMeta returns the request correlation data from context.
// Zero-valued when the request log middleware did not run.
func GetRequestMeta(ctx context.Context) RequestMeta {
	if meta, ok := ctx.Value(requestMetaKey).(*RequestMeta); ok {
		return *meta
	}
	return RequestMeta{}
}

// setRequestUserID records the resolved user on the request metadata so the
// completion log line includes it. No-op when the request log middleware did
// not run.
func setRequestUserID(ctx context.Context, userID string) {
	if meta, ok := ctx.Value(requestMetaKey).(*RequestMeta); ok {
		meta.UserID = userID
	}
}

// ClientIP returns the client IP from X-Forwarded-For (first hop), X-Real-Ip,
// or the connection's remote address, or "unknown".
func ClientIP(r *http.Request) string {
	if s := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); s != "" {
		if i := strings.Index(s, ","); i > 0 {
			s = strings.TrimSpace(s[:i])
		}
		if s != "" {
			return s
		}
	}
	if s := strings.TrimSpace(r.Header.Get("X-Real-Ip")); s != "" {
		return s
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
