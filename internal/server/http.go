package server

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	adminhandler "auth-session-gateway/internal/admin/handler"
	auditrepo "auth-session-gateway/internal/audit/repository"
	"auth-session-gateway/internal/config"
	healthhandler "auth-session-gateway/internal/health/handler"
	"auth-session-gateway/internal/identity"
	identityhandler "auth-session-gateway/internal/identity/handler"
	"auth-session-gateway/internal/ratelimit"
	"auth-session-gateway/internal/server/middleware"
	userrepo "auth-session-gateway/internal/user/repository"
)

// AuthService is the credential surface the router wires into middleware and
// handlers. Implemented by the identity service.
type AuthService interface {
	middleware.CredentialResolver
	identityhandler.AuthFlow
}

// Deps holds the dependencies for the HTTP router.
type Deps struct {
	// Auth handles login, refresh, logout, and credential resolution.
	Auth AuthService
	// Provider drives the OAuth authorization code flow.
	Provider identity.Provider
	// UserRepo feeds the admin overview counters.
	UserRepo userrepo.Repository
	// AuditRepo feeds the admin overview counters.
	AuditRepo auditrepo.Repository
	// HealthPinger is checked by the health endpoint (e.g. *sql.DB).
	HealthPinger healthhandler.Pinger
	Logger       *zap.Logger
}

// NewRouter builds the full HTTP handler: routes, middleware, per-endpoint
// throttle policies, and CORS.
func NewRouter(cfg *config.Config, deps Deps) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	r.Use(middleware.RequestLog(deps.Logger))
	r.Use(middleware.Authenticate(deps.Auth, cfg.SessionCookieName, deps.Logger))

	limiter := ratelimit.NewLimiter()
	subject := func(req *http.Request) (string, string) {
		userID := ""
		if u, ok := middleware.GetUser(req.Context()); ok {
			userID = u.ID
		}
		return userID, middleware.ClientIP(req)
	}
	throttled := func(p ratelimit.Policy, h http.HandlerFunc) http.Handler {
		return ratelimit.Middleware(limiter, p, subject)(h)
	}

	authHandler := identityhandler.NewAuthHandler(
		deps.Provider, deps.Auth, cookieOptions(cfg), cfg.PrimaryFrontendURL(), deps.Logger)
	adminHandler := adminhandler.NewAdminHandler(deps.UserRepo, deps.AuditRepo, deps.Logger)
	healthHandler := healthhandler.NewHealthHandler(deps.HealthPinger)

	oauthPolicy := ratelimit.Policy{Name: "oauth-google", Limit: cfg.RateLimitOAuthGoogle}
	sessionPolicy := ratelimit.Policy{Name: "auth-session", Limit: cfg.RateLimitAuthSession, PerUser: true}
	mePolicy := ratelimit.Policy{Name: "auth-me", Limit: cfg.RateLimitAuthMe, PerUser: true}
	logoutPolicy := ratelimit.Policy{Name: "auth-logout", Limit: cfg.RateLimitAuthLogout, PerUser: true}
	refreshPolicy := ratelimit.Policy{Name: "auth-refresh", Limit: cfg.RateLimitAuthRefresh, PerUser: true}

	r.HandleFunc("/healthz", healthHandler.Check).Methods(http.MethodGet)

	r.Handle("/auth/google/redirect", throttled(oauthPolicy, authHandler.GoogleRedirect)).Methods(http.MethodGet)
	r.Handle("/auth/google/callback", throttled(oauthPolicy, authHandler.GoogleCallback)).Methods(http.MethodGet)

	r.Handle("/api/me", throttled(mePolicy, authHandler.Me)).Methods(http.MethodGet)
	r.Handle("/api/auth/session", throttled(sessionPolicy, authHandler.SessionCheck)).Methods(http.MethodGet)
	r.Handle("/api/auth/refresh", throttled(refreshPolicy, authHandler.Refresh)).Methods(http.MethodPost)
	r.Handle("/api/logout", throttled(logoutPolicy, authHandler.Logout)).Methods(http.MethodPost)

	r.HandleFunc("/api/admin/overview", adminHandler.Overview).Methods(http.MethodGet)

	return corsHandler(cfg).Handler(r)
}

func cookieOptions(cfg *config.Config) identityhandler.CookieOptions {
	return identityhandler.CookieOptions{
		SessionName: cfg.SessionCookieName,
		Secure:      cfg.SessionSecureCookie,
		SameSite:    sameSiteMode(cfg.SessionSameSite),
	}
}

func sameSiteMode(value string) http.SameSite {
	switch strings.ToLower(value) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func corsHandler(cfg *config.Config) *cors.Cors {
	origins := cfg.FrontendURLList()
	for _, o := range cfg.TrustedOriginList() {
		found := false
		for _, existing := range origins {
			if existing == o {
				found = true
				break
			}
		}
		if !found {
			origins = append(origins, o)
		}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id", "X-XSRF-TOKEN"},
		AllowCredentials: true,
		MaxAge:           cfg.CORSMaxAge,
	})
}
