package repository

import (
	"context"
	"time"

	"auth-session-gateway/internal/audit/domain"
)

// Repository defines persistence for audit logs.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.AuditLog, error)
	ListRecent(ctx context.Context, limit, offset int32) ([]*domain.AuditLog, error)
	Create(ctx context.Context, a *domain.AuditLog) error
	// CountAll returns the total number of audit entries.
	CountAll(ctx context.Context) (int64, error)
	// CountSince returns the number of audit entries created at or after t.
	CountSince(ctx context.Context, t time.Time) (int64, error)
	// CountByEvent returns entry counts grouped by event kind.
	CountByEvent(ctx context.Context) (map[string]int64, error)
}
