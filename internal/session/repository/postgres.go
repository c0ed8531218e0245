package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"auth-session-gateway/internal/session/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the session for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, csrf_token_hash, created_at, refreshed_at, expires_at, revoked_at
		 FROM sessions WHERE id = $1`, id)
	var s domain.Session
	var refreshedAt, revokedAt sql.NullTime
	err := row.Scan(&s.ID, &s.UserID, &s.CSRFTokenHash, &s.CreatedAt, &refreshedAt, &s.ExpiresAt, &revokedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	s.RefreshedAt = nullTimeToPtr(refreshedAt)
	s.RevokedAt = nullTimeToPtr(revokedAt)
	return &s, nil
}

// Create persists the session to the database. The session must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, csrf_token_hash, created_at, refreshed_at, expires_at, revoked_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.UserID, s.CSRFTokenHash, s.CreatedAt, timeToNullTime(s.RefreshedAt), s.ExpiresAt, timeToNullTime(s.RevokedAt))
	return err
}

// Revoke marks the session with the given id as revoked. Returns an error if the update fails.
func (r *PostgresRepository) Revoke(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE sessions SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL",
		id, time.Now().UTC())
	return err
}

// RevokeAllByUser revokes all sessions for the given user. Returns an error if the update fails.
func (r *PostgresRepository) RevokeAllByUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE sessions SET revoked_at = $2 WHERE user_id = $1 AND revoked_at IS NULL",
		userID, time.Now().UTC())
	return err
}

// Rotate replaces the session's id and anti-forgery token hash and extends
// expiry. The update is atomic per row; a concurrent rotation of the same
// session leaves exactly one winner.
func (r *PostgresRepository) Rotate(ctx context.Context, oldID, newID, csrfTokenHash string, refreshedAt, expiresAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET id = $2, csrf_token_hash = $3, refreshed_at = $4, expires_at = $5
		 WHERE id = $1 AND revoked_at IS NULL`,
		oldID, newID, csrfTokenHash, refreshedAt, expiresAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.New("session not found or revoked")
	}
	return nil
}

func timeToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullTimeToPtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	return &n.Time
}
