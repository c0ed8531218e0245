package repository

import (
	"context"

	"auth-session-gateway/internal/user/domain"
)

// Repository defines persistence for users.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, u *domain.User) error
	// CountAll returns the total number of users.
	CountAll(ctx context.Context) (int64, error)
	// CountByRole returns the number of users holding the given role.
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
}
