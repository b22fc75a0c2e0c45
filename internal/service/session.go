// Package service provides session lifecycle logic, delegating persistence
// to a SessionRepository.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wawanher487/e-commerceApps/internal/models"
)

// ErrNoSession is returned by Get when no session exists for the token.
var ErrNoSession = errors.New("no session")

// SessionRepository defines the persistence operations required by the
// session service.
type SessionRepository interface {
	// Save persists the session row, replacing an existing one.
	Save(ctx context.Context, s models.Session) error
	// Find returns the session for the token, or sql.ErrNoRows.
	Find(ctx context.Context, token string) (*models.Session, error)
	// Delete removes the session row for the token.
	Delete(ctx context.Context, token string) error
}

// SessionService owns the session lifecycle: created at login, read on every
// protected navigation and backend call, destroyed on logout or on an
// authorization failure.
type SessionService struct {
	repo SessionRepository
}

// NewSessionService constructs a SessionService using the provided
// repository.
func NewSessionService(repo SessionRepository) *SessionService {
	return &SessionService{repo: repo}
}

// Set creates and persists a session for the given credential and profile,
// returning the stored session with its fresh token.
func (s *SessionService) Set(ctx context.Context, credential, refreshCredential string, profile models.Profile) (models.Session, error) {
	now := time.Now()
	sess := models.Session{
		Token:             uuid.NewString(),
		Credential:        credential,
		RefreshCredential: refreshCredential,
		Profile:           profile,
		CreatedAt:         now,
		LastSeenAt:        now,
	}
	if err := s.repo.Save(ctx, sess); err != nil {
		return models.Session{}, fmt.Errorf("set session: %w", err)
	}
	return sess, nil
}

// Get returns the session for the token. A missing or unknown token yields
// ErrNoSession.
func (s *SessionService) Get(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	sess, err := s.repo.Find(ctx, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// Clear destroys the session for the token. Clearing an already-cleared
// token succeeds.
func (s *SessionService) Clear(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.repo.Delete(ctx, token); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
