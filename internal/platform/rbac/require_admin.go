package rbac

import (
	"context"
	"errors"

	"auth-session-gateway/internal/server/middleware"
	"auth-session-gateway/internal/user/domain"
)

// Sentinel errors for authorization checks; handlers map them to 401 and 403.
var (
	ErrUnauthenticated  = errors.New("authentication required")
	ErrPermissionDenied = errors.New("admin role required")
)

// RequireAdmin ensures the caller is authenticated and holds the admin role.
// Returns the user on success.
func RequireAdmin(ctx context.Context) (*domain.User, error) {
	user, ok := middleware.GetUser(ctx)
	if !ok || user == nil {
		return nil, ErrUnauthenticated
	}
	if !user.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	return user, nil
}

// RequireUser ensures the caller is authenticated. Returns the user on success.
func RequireUser(ctx context.Context) (*domain.User, error) {
	user, ok := middleware.GetUser(ctx)
	if !ok || user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}
