package edge

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Refresher periodically invokes a refresh function. Failures are logged and
// swallowed; the next tick tries again.
type Refresher struct {
	interval time.Duration
	refresh  func(context.Context) error
	logger   *zap.Logger
}

// NewRefresher returns a Refresher that calls refresh every interval.
func NewRefresher(interval time.Duration, refresh func(context.Context) error, logger *zap.Logger) *Refresher {
	return &Refresher{interval: interval, refresh: refresh, logger: logger}
}

// Run blocks, firing on every tick until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.refresh(ctx); err != nil {
				r.logger.Debug("periodic refresh failed", zap.Error(err))
			}
		}
	}
}
