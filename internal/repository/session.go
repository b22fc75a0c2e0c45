// Package repository provides persistence implementations for the session
// store using a PostgreSQL database.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/wawanher487/e-commerceApps/internal/models"
)

// PostgresSessionRepository implements session persistence against a
// PostgreSQL database.
type PostgresSessionRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresSessionRepository creates a new PostgresSessionRepository with
// the given database connection. db must be a valid *sql.DB connected to a
// PostgreSQL instance.
func NewPostgresSessionRepository(db *sql.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{DB: db}
}

// Save inserts the session row, replacing any existing row with the same
// token.
func (r *PostgresSessionRepository) Save(ctx context.Context, s models.Session) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO sessions (token, credential, refresh_credential, profile_id, profile_name, profile_email, profile_role, profile_image, created_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (token) DO UPDATE SET
			credential = EXCLUDED.credential,
			refresh_credential = EXCLUDED.refresh_credential,
			profile_id = EXCLUDED.profile_id,
			profile_name = EXCLUDED.profile_name,
			profile_email = EXCLUDED.profile_email,
			profile_role = EXCLUDED.profile_role,
			profile_image = EXCLUDED.profile_image,
			last_seen_at = EXCLUDED.last_seen_at
	`, s.Token, s.Credential, s.RefreshCredential,
		s.Profile.ID, s.Profile.Name, s.Profile.Email, string(s.Profile.Role), s.Profile.ProfileImage,
		s.CreatedAt, s.LastSeenAt)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Find retrieves a session by token and bumps its last_seen_at. Returns
// sql.ErrNoRows when no row matches.
func (r *PostgresSessionRepository) Find(ctx context.Context, token string) (*models.Session, error) {
	var (
		s    models.Session
		role string
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT token, credential, refresh_credential, profile_id, profile_name, profile_email, profile_role, profile_image, created_at, last_seen_at
		  FROM sessions WHERE token = $1
	`, token).Scan(&s.Token, &s.Credential, &s.RefreshCredential,
		&s.Profile.ID, &s.Profile.Name, &s.Profile.Email, &role, &s.Profile.ProfileImage,
		&s.CreatedAt, &s.LastSeenAt)
	if err != nil {
		return nil, err
	}
	s.Profile.Role = models.Role(role)

	now := time.Now()
	if _, err := r.DB.ExecContext(ctx, `
		UPDATE sessions SET last_seen_at = $1 WHERE token = $2
	`, now, token); err != nil {
		return nil, fmt.Errorf("touch session: %w", err)
	}
	s.LastSeenAt = now
	return &s, nil
}

// Delete removes the session row for the given token. Deleting a token with
// no row is not an error.
func (r *PostgresSessionRepository) Delete(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
