// Package edge implements the browser-facing gateway: a route guard and
// reverse proxy in front of the frontend upstream, plus a refresh proxy that
// relays credential rotation to the API with the anti-forgery header attached.
package edge

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds gateway configuration loaded from the environment.
type Config struct {
	// ListenAddr is the address the gateway listens on (e.g. :3000).
	ListenAddr string `mapstructure:"EDGE_ADDR"`
	// APIBaseURL is the base URL of the auth API (e.g. http://localhost:8000).
	APIBaseURL string `mapstructure:"EDGE_API_URL"`
	// FrontendUpstream is the URL of the frontend app the gateway proxies to.
	FrontendUpstream string `mapstructure:"EDGE_FRONTEND_UPSTREAM"`
	// SessionCookieName is the session cookie the guard looks for.
	SessionCookieName string `mapstructure:"SESSION_COOKIE_NAME"`
	// RefreshInterval is how often the background refresher fires (e.g. "10m").
	RefreshInterval string `mapstructure:"EDGE_REFRESH_INTERVAL"`
	// LogLevel is the zap log level (debug|info|warn|error).
	LogLevel string `mapstructure:"LOG_LEVEL"`
	// LogFormat is the zap output format (json|console).
	LogFormat string `mapstructure:"LOG_FORMAT"`
}

// LoadConfig reads .env (if present), then builds and validates Config from
// the environment via Viper. Env vars override .env.
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("EDGE_ADDR", ":3000")
	v.SetDefault("EDGE_API_URL", "http://localhost:8000")
	v.SetDefault("EDGE_FRONTEND_UPSTREAM", "http://localhost:3001")
	v.SetDefault("SESSION_COOKIE_NAME", "app_session")
	v.SetDefault("EDGE_REFRESH_INTERVAL", "10m")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.ListenAddr == "" {
		return nil, errors.New("config: EDGE_ADDR must be set")
	}
	if cfg.APIBaseURL == "" || cfg.FrontendUpstream == "" {
		return nil, errors.New("config: EDGE_API_URL and EDGE_FRONTEND_UPSTREAM must be set")
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	cfg.FrontendUpstream = strings.TrimRight(cfg.FrontendUpstream, "/")
	return &cfg, nil
}

// RefreshIntervalDuration parses EDGE_REFRESH_INTERVAL. Returns 10m if unset
// or invalid.
func (c *Config) RefreshIntervalDuration() time.Duration {
	d, err := time.ParseDuration(c.RefreshInterval)
	if err != nil || d <= 0 {
		return 10 * time.Minute
	}
	return d
}
