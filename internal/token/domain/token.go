package domain

import "time"

// BearerToken is a token-based credential independent of cookie sessions.
// Only the SHA-256 hash of the token value is persisted.
type BearerToken struct {
	ID        string
	UserID    string
	TokenHash string
	CreatedAt time.Time
}
