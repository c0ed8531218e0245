package rbac

import (
	"context"
	"errors"
	"testing"

	"auth-session-gateway/internal/server/middleware"
	"auth-session-gateway/internal/user/domain"
)

func TestRequireAdmin_Success(t *testing.T) {
	ctx := middleware.WithIdentity(context.Background(),
		&domain.User{ID: "user-1", Role: domain.RoleAdmin}, nil)

	user, err := RequireAdmin(ctx)
	if err != nil {
		t.Fatalf("RequireAdmin: %v", err)
	}
	if user.ID != "user-1" {
		t.Errorf("user id = %q, want %q", user.ID, "user-1")
	}
}

func TestRequireAdmin_NonAdmin(t *testing.T) {
	ctx := middleware.WithIdentity(context.Background(),
		&domain.User{ID: "user-1", Role: domain.RoleUser}, nil)

	if _, err := RequireAdmin(ctx); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("RequireAdmin error = %v, want ErrPermissionDenied", err)
	}
}

func TestRequireAdmin_Anonymous(t *testing.T) {
	if _, err := RequireAdmin(context.Background()); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("RequireAdmin error = %v, want ErrUnauthenticated", err)
	}
}

func TestRequireUser(t *testing.T) {
	ctx := middleware.WithIdentity(context.Background(),
		&domain.User{ID: "user-1", Role: domain.RoleUser}, nil)
	user, err := RequireUser(ctx)
	if err != nil {
		t.Fatalf("RequireUser: %v", err)
	}
	if user.ID != "user-1" {
		t.Errorf("user id = %q, want %q", user.ID, "user-1")
	}
	if _, err := RequireUser(context.Background()); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("RequireUser anonymous error = %v, want ErrUnauthenticated", err)
	}
}
