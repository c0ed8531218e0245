package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"auth-session-gateway/internal/audit/domain"
)

// mockAuditRepo implements audit repository interface for tests.
type mockAuditRepo struct {
	entries   []*domain.AuditLog
	createErr error
}

func (m *mockAuditRepo) GetByID(ctx context.Context, id string) (*domain.AuditLog, error) {
	return nil, nil
}

func (m *mockAuditRepo) ListRecent(ctx context.Context, limit, offset int32) ([]*domain.AuditLog, error) {
	return nil, nil
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockAuditRepo) CountAll(ctx context.Context) (int64, error) {
	return int64(len(m.entries)), nil
}

func (m *mockAuditRepo) CountSince(ctx context.Context, t time.Time) (int64, error) {
	return 0, nil
}

func (m *mockAuditRepo) CountByEvent(ctx context.Context) (map[string]int64, error) {
	return nil, nil
}

func TestLogger_LogEvent_Success(t *testing.T) {
	repo := &mockAuditRepo{}
	extractor := func(ctx context.Context) RequestInfo {
		return RequestInfo{RequestID: "req-1", IP: "192.168.1.1", UserAgent: "test-agent"}
	}
	logger := NewLogger(repo, extractor)
	ctx := context.Background()

	logger.LogEvent(ctx, domain.EventLoginSuccess, "user-1", "metadata")

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	entry := repo.entries[0]
	if entry.Event != domain.EventLoginSuccess {
		t.Errorf("event = %q, want %q", entry.Event, domain.EventLoginSuccess)
	}
	if entry.UserID != "user-1" {
		t.Errorf("user_id = %q, want %q", entry.UserID, "user-1")
	}
	if entry.RequestID != "req-1" {
		t.Errorf("request_id = %q, want %q", entry.RequestID, "req-1")
	}
	if entry.IP != "192.168.1.1" {
		t.Errorf("ip = %q, want %q", entry.IP, "192.168.1.1")
	}
	if entry.UserAgent != "test-agent" {
		t.Errorf("user_agent = %q, want %q", entry.UserAgent, "test-agent")
	}
	if entry.Metadata != "metadata" {
		t.Errorf("metadata = %q, want %q", entry.Metadata, "metadata")
	}
	if entry.ID == "" {
		t.Error("entry ID should be set")
	}
	if entry.CreatedAt.IsZero() {
		t.Error("entry CreatedAt should be set")
	}
}

func TestLogger_LogEvent_NilExtractor(t *testing.T) {
	repo := &mockAuditRepo{}
	logger := NewLogger(repo, nil)
	ctx := context.Background()

	logger.LogEvent(ctx, domain.EventLogout, "user-1", "")

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	if repo.entries[0].IP != "unknown" {
		t.Errorf("ip = %q, want %q", repo.entries[0].IP, "unknown")
	}
}

func TestLogger_LogEvent_EmptyIPRecordedAsUnknown(t *testing.T) {
	repo := &mockAuditRepo{}
	extractor := func(ctx context.Context) RequestInfo {
		return RequestInfo{RequestID: "req-2"}
	}
	logger := NewLogger(repo, extractor)
	ctx := context.Background()

	logger.LogEvent(ctx, domain.EventTokenRefreshed, "user-1", "")

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	if repo.entries[0].IP != "unknown" {
		t.Errorf("ip = %q, want %q", repo.entries[0].IP, "unknown")
	}
}

func TestLogger_LogEvent_UnknownEventDropped(t *testing.T) {
	repo := &mockAuditRepo{}
	logger := NewLogger(repo, nil)
	ctx := context.Background()

	logger.LogEvent(ctx, domain.Event("made_up_event"), "user-1", "")

	if len(repo.entries) != 0 {
		t.Fatalf("expected 0 entries, got %d", len(repo.entries))
	}
}

func TestLogger_LogEvent_AnonymousActor(t *testing.T) {
	repo := &mockAuditRepo{}
	logger := NewLogger(repo, nil)
	ctx := context.Background()

	logger.LogEvent(ctx, domain.EventOAuthFailed, "", "state mismatch")

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	if repo.entries[0].UserID != "" {
		t.Errorf("user_id = %q, want empty", repo.entries[0].UserID)
	}
}

func TestLogger_LogEvent_RepositoryError(t *testing.T) {
	repo := &mockAuditRepo{
		createErr: errors.New("database error"),
	}
	logger := NewLogger(repo, nil)
	ctx := context.Background()

	// Should not panic or return error - best-effort logging
	logger.LogEvent(ctx, domain.EventLoginSuccess, "user-1", "")
}

func TestLogger_LogEvent_NilRepo(t *testing.T) {
	logger := NewLogger(nil, nil)
	ctx := context.Background()

	// Should not panic - no-op when repo is nil
	logger.LogEvent(ctx, domain.EventLoginSuccess, "user-1", "")
}
