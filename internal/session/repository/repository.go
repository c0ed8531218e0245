package repository

import (
	"context"
	"time"

	"auth-session-gateway/internal/session/domain"
)

// Repository defines persistence for sessions.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	Create(ctx context.Context, s *domain.Session) error
	Revoke(ctx context.Context, id string) error
	RevokeAllByUser(ctx context.Context, userID string) error
	// Rotate replaces the session's identifier and anti-forgery token hash and
	// extends expiry, in one statement. Used on refresh to prevent fixation.
	Rotate(ctx context.Context, oldID, newID, csrfTokenHash string, refreshedAt, expiresAt time.Time) error
}
