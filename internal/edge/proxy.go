package edge

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// RefreshProxy relays credential rotation to the API. It answers for the
// browser before touching the upstream when no session cookie is present, and
// attaches the anti-forgery header the API requires.
type RefreshProxy struct {
	apiBaseURL string
	cookieName string
	client     *http.Client
	logger     *zap.Logger
}

// NewRefreshProxy returns a RefreshProxy targeting apiBaseURL (no trailing
// slash).
func NewRefreshProxy(apiBaseURL, cookieName string, logger *zap.Logger) *RefreshProxy {
	return &RefreshProxy{
		apiBaseURL: apiBaseURL,
		cookieName: cookieName,
		client:     &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

func (p *RefreshProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !hasSessionCookie(r, p.cookieName) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "No active session"})
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, p.apiBaseURL+"/api/auth/refresh", nil)
	if err != nil {
		p.logger.Error("build refresh request", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"message": "Refresh upstream error"})
		return
	}
	if cookie := r.Header.Get("Cookie"); cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	if origin := r.Header.Get("Origin"); origin != "" {
		req.Header.Set("Origin", origin)
	}
	if xsrf, err := r.Cookie("XSRF-TOKEN"); err == nil && xsrf.Value != "" {
		// Browsers store the value URL-encoded; the API expects it raw.
		value := xsrf.Value
		if decoded, err := url.QueryUnescape(value); err == nil {
			value = decoded
		}
		req.Header.Set("X-XSRF-TOKEN", value)
	}
	req.Header.Set("X-CSRF-Guard", "1")

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Warn("refresh upstream unreachable", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"message": "Refresh upstream error"})
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	for _, c := range resp.Header.Values("Set-Cookie") {
		w.Header().Add("Set-Cookie", c)
	}
	if resp.StatusCode == http.StatusOK {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Session refreshed"})
		return
	}
	writeJSON(w, resp.StatusCode, map[string]string{"message": "Refresh failed"})
}

// NewHandler builds the gateway handler: the refresh proxy on its own route
// and the guarded reverse proxy for everything else.
func NewHandler(cfg *Config, logger *zap.Logger) (http.Handler, error) {
	upstream, err := url.Parse(cfg.FrontendUpstream)
	if err != nil {
		return nil, err
	}
	proxy := httputil.NewSingleHostReverseProxy(upstream)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Warn("frontend upstream unreachable", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"message": "Upstream error"})
	}

	mux := http.NewServeMux()
	mux.Handle("/api/auth/refresh", NewRefreshProxy(cfg.APIBaseURL, cfg.SessionCookieName, logger))
	mux.Handle("/", Guard(cfg.SessionCookieName, proxy))
	return mux, nil
}

// Guard applies the route rules before handing the request to next.
func Guard(cookieName string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision := Decide(r.URL.Path, hasSessionCookie(r, cookieName))
		if !decision.Allowed() {
			http.Redirect(w, r, decision.RedirectTo, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
