package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"auth-session-gateway/internal/platform/rbac"
	userdomain "auth-session-gateway/internal/user/domain"
)

// UserCounter is the user repository surface the overview needs.
type UserCounter interface {
	CountAll(ctx context.Context) (int64, error)
	CountByRole(ctx context.Context, role userdomain.Role) (int64, error)
}

// AuditCounter is the audit repository surface the overview needs.
type AuditCounter interface {
	CountAll(ctx context.Context) (int64, error)
	CountSince(ctx context.Context, t time.Time) (int64, error)
	CountByEvent(ctx context.Context) (map[string]int64, error)
}

// AdminHandler serves the admin overview counters. Every route requires the
// admin role.
type AdminHandler struct {
	users  UserCounter
	audits AuditCounter
	logger *zap.Logger
}

// NewAdminHandler returns an AdminHandler with the given dependencies.
func NewAdminHandler(users UserCounter, audits AuditCounter, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{users: users, audits: audits, logger: logger}
}

// Overview returns aggregate user and auth-event counters.
func (h *AdminHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, err := rbac.RequireAdmin(ctx); err != nil {
		if errors.Is(err, rbac.ErrUnauthenticated) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthenticated."})
			return
		}
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "Forbidden."})
		return
	}

	usersTotal, err := h.users.CountAll(ctx)
	if err != nil {
		h.serverError(w, "count users", err)
		return
	}
	adminsTotal, err := h.users.CountByRole(ctx, userdomain.RoleAdmin)
	if err != nil {
		h.serverError(w, "count admins", err)
		return
	}
	eventsTotal, err := h.audits.CountAll(ctx)
	if err != nil {
		h.serverError(w, "count auth events", err)
		return
	}
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	eventsToday, err := h.audits.CountSince(ctx, today)
	if err != nil {
		h.serverError(w, "count auth events today", err)
		return
	}
	events7d, err := h.audits.CountSince(ctx, now.AddDate(0, 0, -7))
	if err != nil {
		h.serverError(w, "count auth events 7d", err)
		return
	}
	events30d, err := h.audits.CountSince(ctx, now.AddDate(0, 0, -30))
	if err != nil {
		h.serverError(w, "count auth events 30d", err)
		return
	}
	byType, err := h.audits.CountByEvent(ctx)
	if err != nil {
		h.serverError(w, "count auth events by type", err)
		return
	}
	if byType == nil {
		byType = map[string]int64{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users_total":              usersTotal,
		"admins_total":             adminsTotal,
		"auth_events_total":        eventsTotal,
		"auth_events_today":        eventsToday,
		"auth_events_last_7_days":  events7d,
		"auth_events_last_30_days": events30d,
		"auth_events_by_type":      byType,
	})
}

func (h *AdminHandler) serverError(w http.ResponseWriter, what string, err error) {
	h.logger.Error("admin overview failed", zap.String("query", what), zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Server Error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
