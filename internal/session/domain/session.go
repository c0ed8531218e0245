package domain

import "time"

// Session represents server-held authenticated state referenced by a browser
// cookie. The cookie carries only the opaque session id.
type Session struct {
	ID            string
	UserID        string
	CSRFTokenHash string // SHA-256 hash of the current anti-forgery token
	CreatedAt     time.Time
	RefreshedAt   *time.Time // nil until first rotation
	ExpiresAt     time.Time
	RevokedAt     *time.Time // nil when not revoked
}

// ValidAt reports whether the session is usable at t: not revoked and not expired.
func (s *Session) ValidAt(t time.Time) bool {
	return s != nil && s.RevokedAt == nil && s.ExpiresAt.After(t)
}
