// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8000).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// AppURL is the externally visible base URL of this server (e.g. https://api.example.com).
	AppURL string `mapstructure:"APP_URL"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// FrontendURL is the primary frontend origin, used for post-login redirects.
	FrontendURL string `mapstructure:"FRONTEND_URL"`
	// FrontendURLs is a comma-separated list of frontend origins allowed for CORS.
	// Falls back to FrontendURL when empty.
	FrontendURLs string `mapstructure:"FRONTEND_URLS"`
	// TrustedFrontendOrigins is a comma-separated list of origins trusted to make
	// credentialed requests. Validated at boot in production.
	TrustedFrontendOrigins string `mapstructure:"TRUSTED_FRONTEND_ORIGINS"`
	// StatefulDomains is a comma-separated list of domains permitted to receive
	// cookie-bearing cross-origin requests. Validated at boot in production.
	StatefulDomains string `mapstructure:"STATEFUL_DOMAINS"`

	// SessionCookieName is the name of the session cookie (e.g. app_session).
	SessionCookieName string `mapstructure:"SESSION_COOKIE_NAME"`
	// SessionSecureCookie sets the Secure flag on issued cookies. Required in production.
	SessionSecureCookie bool `mapstructure:"SESSION_SECURE_COOKIE"`
	// SessionSameSite is the SameSite cookie policy: lax, strict, or none.
	SessionSameSite string `mapstructure:"SESSION_SAME_SITE"`
	// SessionTTL is the sliding session lifetime (e.g. "12h"). Refresh extends expiry by this much.
	SessionTTL string `mapstructure:"SESSION_TTL"`
	// SessionMaxLifetime is the absolute cap on a session's lifetime from creation (e.g. "720h").
	SessionMaxLifetime string `mapstructure:"SESSION_MAX_LIFETIME"`

	// GoogleClientID is the OAuth client ID for Google login.
	GoogleClientID string `mapstructure:"GOOGLE_CLIENT_ID"`
	// GoogleClientSecret is the OAuth client secret for Google login.
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	// GoogleRedirectURL is the callback URL registered with Google (defaults to APP_URL + /auth/google/callback).
	GoogleRedirectURL string `mapstructure:"GOOGLE_REDIRECT_URL"`

	// Per-policy rate limit overrides, requests per minute.
	RateLimitOAuthGoogle int `mapstructure:"RATE_LIMIT_OAUTH_GOOGLE"`
	RateLimitAuthSession int `mapstructure:"RATE_LIMIT_AUTH_SESSION"`
	RateLimitAuthMe      int `mapstructure:"RATE_LIMIT_AUTH_ME"`
	RateLimitAuthLogout  int `mapstructure:"RATE_LIMIT_AUTH_LOGOUT"`
	RateLimitAuthRefresh int `mapstructure:"RATE_LIMIT_AUTH_REFRESH"`

	// CORSMaxAge is the preflight cache lifetime in seconds.
	CORSMaxAge int `mapstructure:"CORS_MAX_AGE"`

	// LogLevel is the zap log level (debug|info|warn|error).
	LogLevel string `mapstructure:"LOG_LEVEL"`
	// LogFormat is the zap output format (json|console).
	LogFormat string `mapstructure:"LOG_FORMAT"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8000")
	v.SetDefault("APP_URL", "http://localhost:8000")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("FRONTEND_URLS", "")
	v.SetDefault("TRUSTED_FRONTEND_ORIGINS", "")
	v.SetDefault("STATEFUL_DOMAINS", "")
	v.SetDefault("SESSION_COOKIE_NAME", "app_session")
	v.SetDefault("SESSION_SECURE_COOKIE", false)
	v.SetDefault("SESSION_SAME_SITE", "lax")
	v.SetDefault("SESSION_TTL", "12h")
	v.SetDefault("SESSION_MAX_LIFETIME", "720h") // 30d
	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("GOOGLE_CLIENT_SECRET", "")
	v.SetDefault("GOOGLE_REDIRECT_URL", "")
	v.SetDefault("RATE_LIMIT_OAUTH_GOOGLE", 20)
	v.SetDefault("RATE_LIMIT_AUTH_SESSION", 120)
	v.SetDefault("RATE_LIMIT_AUTH_ME", 60)
	v.SetDefault("RATE_LIMIT_AUTH_LOGOUT", 30)
	v.SetDefault("RATE_LIMIT_AUTH_REFRESH", 20)
	v.SetDefault("CORS_MAX_AGE", 600)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	switch strings.ToLower(cfg.SessionSameSite) {
	case "lax", "strict", "none":
	default:
		return nil, errors.New("config: SESSION_SAME_SITE must be lax, strict, or none")
	}

	return &cfg, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// PrimaryFrontendURL returns the first configured frontend origin with any
// trailing slash removed. Used as the base for post-login redirects.
func (c *Config) PrimaryFrontendURL() string {
	if urls := c.FrontendURLList(); len(urls) > 0 {
		return strings.TrimRight(urls[0], "/")
	}
	return strings.TrimRight(c.FrontendURL, "/")
}

// FrontendURLList returns frontend origins from FRONTEND_URLS, falling back to
// FRONTEND_URL when the list is empty.
func (c *Config) FrontendURLList() []string {
	out := splitCSV(c.FrontendURLs)
	if len(out) == 0 && strings.TrimSpace(c.FrontendURL) != "" {
		out = []string{strings.TrimSpace(c.FrontendURL)}
	}
	return out
}

// TrustedOriginList returns origins from the comma-separated TRUSTED_FRONTEND_ORIGINS.
func (c *Config) TrustedOriginList() []string {
	return splitCSV(c.TrustedFrontendOrigins)
}

// StatefulDomainList returns domains from the comma-separated STATEFUL_DOMAINS.
func (c *Config) StatefulDomainList() []string {
	return splitCSV(c.StatefulDomains)
}

// SessionTTLDuration parses SESSION_TTL as a time.Duration. Returns 12h if unset or invalid.
func (c *Config) SessionTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil || d <= 0 {
		return 12 * time.Hour
	}
	return d
}

// SessionMaxLifetimeDuration parses SESSION_MAX_LIFETIME as a time.Duration. Returns 720h if unset or invalid.
func (c *Config) SessionMaxLifetimeDuration() time.Duration {
	d, err := time.ParseDuration(c.SessionMaxLifetime)
	if err != nil || d <= 0 {
		return 720 * time.Hour
	}
	return d
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
