package repository

import (
	"context"
	"database/sql"
	"errors"

	"auth-session-gateway/internal/token/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a bearer token repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByHash returns the token whose stored hash matches, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByHash(ctx context.Context, tokenHash string) (*domain.BearerToken, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, token_hash, created_at FROM bearer_tokens WHERE token_hash = $1",
		tokenHash)
	var t domain.BearerToken
	err := row.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// Create persists the token to the database. The token must have ID and TokenHash set.
func (r *PostgresRepository) Create(ctx context.Context, t *domain.BearerToken) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO bearer_tokens (id, user_id, token_hash, created_at) VALUES ($1, $2, $3, $4)",
		t.ID, t.UserID, t.TokenHash, t.CreatedAt)
	return err
}

// Delete revokes a single token by id. Deleting a missing token is not an error.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM bearer_tokens WHERE id = $1", id)
	return err
}

// DeleteAllByUser revokes all tokens for the given user.
func (r *PostgresRepository) DeleteAllByUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM bearer_tokens WHERE user_id = $1", userID)
	return err
}
