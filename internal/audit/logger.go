package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"auth-session-gateway/internal/audit/domain"
	auditrepo "auth-session-gateway/internal/audit/repository"
)

// RequestInfo carries the request-scoped fields attached to every audit entry.
type RequestInfo struct {
	RequestID string
	IP        string
	UserAgent string
}

// Extractor returns request metadata from the request context (correlation id,
// client IP, user agent).
type Extractor func(context.Context) RequestInfo

// AuditLogger writes a single audit event. Used by the auth and session code
// paths. LogEvent is best-effort: failures are logged and do not affect the
// caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, event domain.Event, userID, metadata string)
}

// Logger implements AuditLogger using the audit repository and an optional
// request metadata extractor.
type Logger struct {
	repo      auditrepo.Repository
	extractor Extractor
}

// NewLogger returns an AuditLogger that persists to repo and uses extractor
// for request metadata. extractor may be nil; then IP is recorded as "unknown".
func NewLogger(repo auditrepo.Repository, extractor Extractor) *Logger {
	return &Logger{repo: repo, extractor: extractor}
}

// LogEvent writes one audit log entry. Entries with an unknown event kind are
// dropped. Best-effort: errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, event domain.Event, userID, metadata string) {
	if l.repo == nil {
		return
	}
	if !event.Valid() {
		log.Printf("audit: dropping entry with unknown event %q", event)
		return
	}
	info := RequestInfo{IP: "unknown"}
	if l.extractor != nil {
		info = l.extractor(ctx)
		if info.IP == "" {
			info.IP = "unknown"
		}
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		Event:     event,
		RequestID: info.RequestID,
		UserID:    userID,
		IP:        info.IP,
		UserAgent: info.UserAgent,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: failed to log event %s: %v", event, err)
	}
}
