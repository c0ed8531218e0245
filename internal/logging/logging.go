// Package logging provides structured logging configuration.
package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logging configuration options.
type Config struct {
	Level  string // debug|info|warn|error
	Format string // json|console
}

// New creates a new configured zap logger.
func New(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.Set(strings.ToLower(cfg.Level)); err != nil {
			return nil, err
		}
	}

	format := strings.ToLower(cfg.Format)
	if format == "" {
		format = "json"
	}

	var zcfg zap.Config
	if format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}

	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.EncoderConfig.TimeKey = "ts"
	zcfg.EncoderConfig.LevelKey = "level"
	zcfg.EncoderConfig.MessageKey = "msg"
	zcfg.EncoderConfig.CallerKey = "caller"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zcfg.Build(zap.AddCaller())
	if err != nil {
		return nil, err
	}

	return logger.With(zap.String("service", "auth-session-gateway")), nil
}

// Sync flushes any buffered log entries.
func Sync(logger *zap.Logger) {
	_ = logger.Sync()
}

// RequestID returns a zap field for the request correlation id.
func RequestID(id string) zap.Field { return zap.String("request_id", id) }

// Method returns a zap field for an HTTP method.
func Method(method string) zap.Field { return zap.String("method", method) }

// Path returns a zap field for a URL path.
func Path(path string) zap.Field { return zap.String("path", path) }

// StatusCode returns a zap field for an HTTP status code.
func StatusCode(code int) zap.Field { return zap.Int("status_code", code) }

// DurationMs returns a zap field for elapsed milliseconds.
func DurationMs(ms int64) zap.Field { return zap.Int64("duration_ms", ms) }

// UserID returns a zap field for a user id. Empty ids are logged as null.
func UserID(id string) zap.Field {
	if id == "" {
		return zap.Skip()
	}
	return zap.String("user_id", id)
}

// IPAddress returns a zap field for a client IP address.
func IPAddress(ip string) zap.Field { return zap.String("ip_address", ip) }

// UserAgent returns a zap field for a client user agent.
func UserAgent(ua string) zap.Field { return zap.String("user_agent", ua) }

// Event returns a zap field for an audit event kind.
func Event(event string) zap.Field { return zap.String("event", event) }

// Addr returns a zap field for an address.
func Addr(addr string) zap.Field { return zap.String("addr", addr) }
