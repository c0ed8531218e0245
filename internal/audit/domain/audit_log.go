package domain

import "time"

// Event is the kind of a security-relevant event. The set is closed: entries
// with an unknown event are rejected before persistence.
type Event string

const (
	EventLoginSuccess   Event = "login_success"
	EventOAuthFailed    Event = "oauth_failed"
	EventLogout         Event = "logout"
	EventTokenRefreshed Event = "token_refreshed"
)

// Valid reports whether e is one of the known event kinds.
func (e Event) Valid() bool {
	switch e {
	case EventLoginSuccess, EventOAuthFailed, EventLogout, EventTokenRefreshed:
		return true
	}
	return false
}

// AuditLog is an immutable record of a security-relevant event. Append-only;
// never mutated or deleted.
type AuditLog struct {
	ID        string
	Event     Event
	RequestID string
	UserID    string // empty when the actor is anonymous
	IP        string
	UserAgent string
	Metadata  string
	CreatedAt time.Time
}
