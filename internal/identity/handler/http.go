package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"auth-session-gateway/internal/identity"
	"auth-session-gateway/internal/identity/service"
	"auth-session-gateway/internal/logging"
	"auth-session-gateway/internal/security"
	"auth-session-gateway/internal/server/middleware"
)

// Cookie names shared with browser clients. The session cookie name comes
// from configuration; these are fixed.
const (
	StateCookieName = "oauth_state"
	CSRFCookieName  = "XSRF-TOKEN"
)

const stateCookieTTL = 10 * time.Minute

// CookieOptions carries the attributes applied to issued cookies.
type CookieOptions struct {
	SessionName string
	Secure      bool
	SameSite    http.SameSite
}

// AuthFlow is the service surface the handler needs. Implemented by the auth
// service.
type AuthFlow interface {
	Login(ctx context.Context, ident *identity.Identity) (*service.LoginResult, error)
	RefreshSession(ctx context.Context, sessionID, csrfToken string) (*service.RefreshResult, error)
	RefreshBearer(ctx context.Context, rawToken string) (*service.RefreshResult, error)
	Logout(ctx context.Context, sessionID, rawBearer string) error
	LogOAuthFailure(ctx context.Context, reason string)
}

// AuthHandler serves the OAuth login flow and the authenticated session
// endpoints.
type AuthHandler struct {
	provider    identity.Provider
	flow        AuthFlow
	cookies     CookieOptions
	frontendURL string
	logger      *zap.Logger
}

// NewAuthHandler returns an AuthHandler. frontendURL is the base for
// post-login redirects, without a trailing slash.
func NewAuthHandler(provider identity.Provider, flow AuthFlow, cookies CookieOptions, frontendURL string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		provider:    provider,
		flow:        flow,
		cookies:     cookies,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// GoogleRedirect starts the login flow: issues a state token bound to the
// browser via cookie and redirects to the provider consent page.
func (h *AuthHandler) GoogleRedirect(w http.ResponseWriter, r *http.Request) {
	state, err := security.GenerateToken()
	if err != nil {
		h.logger.Error("generate oauth state", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server Error"})
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     StateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   int(stateCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode, // must survive the provider redirect
	})
	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

// GoogleCallback completes the login flow. Any failure redirects the browser
// to the frontend error page; the request id in the query links the page to
// logs and audit entries.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.failLogin(w, r, "provider returned "+errParam)
		return
	}
	state := r.URL.Query().Get("state")
	stateCookie, err := r.Cookie(StateCookieName)
	if err != nil || state == "" || stateCookie.Value != state {
		h.failLogin(w, r, "state mismatch")
		return
	}
	clearCookie(w, StateCookieName, h.cookies.Secure, true)

	code := r.URL.Query().Get("code")
	if code == "" {
		h.failLogin(w, r, "missing authorization code")
		return
	}
	ident, err := h.provider.Exchange(ctx, code)
	if err != nil {
		h.logger.Warn("oauth code exchange failed", zap.Error(err))
		h.failLogin(w, r, "code exchange failed")
		return
	}
	res, err := h.flow.Login(ctx, ident)
	if err != nil {
		h.logger.Error("login failed after exchange", zap.Error(err))
		h.failLogin(w, r, "login failed")
		return
	}
	h.setSessionCookies(w, res.SessionID, res.CSRFToken, res.Bearer, res.ExpiresAt)
	http.Redirect(w, r, h.frontendURL+"/auth/callback?login=success", http.StatusFound)
}

func (h *AuthHandler) failLogin(w http.ResponseWriter, r *http.Request, reason string) {
	ctx := r.Context()
	h.flow.LogOAuthFailure(ctx, reason)
	requestID := middleware.GetRequestMeta(ctx).RequestID
	h.logger.Warn("oauth login failed", logging.RequestID(requestID), zap.String("reason", reason))
	http.Redirect(w, r, h.frontendURL+"/auth/callback?error=oauth_failed&request_id="+requestID, http.StatusFound)
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthenticated."})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
		"role":  string(user.Role),
	})
}

// SessionCheck answers 204 when the request carries a valid credential and
// 401 otherwise, with no body either way. Browsers poll it to decide whether
// to refresh.
func (h *AuthHandler) SessionCheck(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUser(r.Context()); !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Logout revokes whatever credentials were presented and expires the
// browser's cookies. The response is identical whether or not anything was
// revoked.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID := cookieValue(r, h.cookies.SessionName)
	bearer := cookieValue(r, middleware.BearerCookieName)
	if err := h.flow.Logout(r.Context(), sessionID, bearer); err != nil {
		h.logger.Error("logout revocation failed", zap.Error(err))
	}
	h.clearSessionCookies(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// Refresh rotates the presented credential. Session refreshes require the
// anti-forgery header to match the token issued with the session. Bearer
// refreshes return the replacement token in the body; when the bearer came
// from the cookie, the cookie is re-set with the replacement as well.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if sessionID := cookieValue(r, h.cookies.SessionName); sessionID != "" {
		res, err := h.flow.RefreshSession(ctx, sessionID, r.Header.Get("X-XSRF-TOKEN"))
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) || errors.Is(err, service.ErrForgeryDetected) {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthenticated."})
				return
			}
			h.logger.Error("session refresh failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server Error"})
			return
		}
		h.setSessionCookies(w, res.SessionID, res.CSRFToken, "", res.ExpiresAt)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Session refreshed"})
		return
	}

	headerBearer := bearerFromHeader(r)
	bearer := headerBearer
	if bearer == "" {
		bearer = cookieValue(r, middleware.BearerCookieName)
	}
	if bearer != "" {
		res, err := h.flow.RefreshBearer(ctx, bearer)
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthenticated."})
				return
			}
			h.logger.Error("bearer refresh failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server Error"})
			return
		}
		if headerBearer == "" {
			// The credential came from the cookie and the old token is gone;
			// without a rotated cookie the browser would be logged out.
			h.setBearerCookie(w, res.Bearer, res.ExpiresAt)
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "Session refreshed",
			"token":   res.Bearer,
		})
		return
	}

	writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthenticated."})
}

// setSessionCookies issues the session, anti-forgery, and optionally bearer
// cookies. The anti-forgery cookie is readable by scripts so the frontend can
// echo it in the X-XSRF-TOKEN header.
func (h *AuthHandler) setSessionCookies(w http.ResponseWriter, sessionID, csrfToken, bearer string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookies.SessionName,
		Value:    sessionID,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: h.cookies.SameSite,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    csrfToken,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: false,
		Secure:   h.cookies.Secure,
		SameSite: h.cookies.SameSite,
	})
	if bearer != "" {
		h.setBearerCookie(w, bearer, expiresAt)
	}
}

func (h *AuthHandler) setBearerCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.BearerCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: h.cookies.SameSite,
	})
}

func (h *AuthHandler) clearSessionCookies(w http.ResponseWriter) {
	clearCookie(w, h.cookies.SessionName, h.cookies.Secure, true)
	clearCookie(w, middleware.BearerCookieName, h.cookies.Secure, true)
	clearCookie(w, CSRFCookieName, h.cookies.Secure, false)
}

func clearCookie(w http.ResponseWriter, name string, secure, httpOnly bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: httpOnly,
		Secure:   secure,
	})
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

func bearerFromHeader(r *http.Request) string {
	const prefix = "Bearer "
	v := r.Header.Get("Authorization")
	if len(v) > len(prefix) && v[:len(prefix)] == prefix {
		return v[len(prefix):]
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
