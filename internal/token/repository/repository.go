package repository

import (
	"context"

	"auth-session-gateway/internal/token/domain"
)

// Repository defines persistence for bearer tokens.
type Repository interface {
	// GetByHash returns the token whose stored hash matches, or nil if not found.
	GetByHash(ctx context.Context, tokenHash string) (*domain.BearerToken, error)
	Create(ctx context.Context, t *domain.BearerToken) error
	// Delete revokes a single token by id. Deleting a missing token is not an error.
	Delete(ctx context.Context, id string) error
	DeleteAllByUser(ctx context.Context, userID string) error
}
