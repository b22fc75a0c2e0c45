package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/wawanher487/e-commerceApps/internal/models"
)

func setupSessionMock(t *testing.T) (*PostgresSessionRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresSessionRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

func sampleSession() models.Session {
	now := time.Now()
	return models.Session{
		Token:             "tok-1",
		Credential:        "cred-1",
		RefreshCredential: "refresh-1",
		Profile: models.Profile{
			ID:    "u1",
			Name:  "Alice",
			Email: "alice@example.com",
			Role:  models.RoleAdmin,
		},
		CreatedAt:  now,
		LastSeenAt: now,
	}
}

func TestSave_Success(t *testing.T) {
	repo, mock, cleanup := setupSessionMock(t)
	defer cleanup()

	s := sampleSession()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sessions`)).
		WithArgs(s.Token, s.Credential, s.RefreshCredential,
			s.Profile.ID, s.Profile.Name, s.Profile.Email, string(s.Profile.Role), s.Profile.ProfileImage,
			s.CreatedAt, s.LastSeenAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Save(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSave_Error(t *testing.T) {
	repo, mock, cleanup := setupSessionMock(t)
	defer cleanup()

	s := sampleSession()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sessions`)).
		WillReturnError(errors.New("insert failed"))

	if err := repo.Save(context.Background(), s); err == nil {
		t.Errorf("expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestFind_Success(t *testing.T) {
	repo, mock, cleanup := setupSessionMock(t)
	defer cleanup()

	s := sampleSession()
	rows := sqlmock.NewRows([]string{
		"token", "credential", "refresh_credential",
		"profile_id", "profile_name", "profile_email", "profile_role", "profile_image",
		"created_at", "last_seen_at",
	}).AddRow(s.Token, s.Credential, s.RefreshCredential,
		s.Profile.ID, s.Profile.Name, s.Profile.Email, string(s.Profile.Role), "",
		s.CreatedAt, s.LastSeenAt)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT token, credential, refresh_credential, profile_id, profile_name, profile_email, profile_role, profile_image, created_at, last_seen_at`)).
		WithArgs(s.Token).
		WillReturnRows(rows)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE sessions SET last_seen_at = $1 WHERE token = $2`)).
		WithArgs(sqlmock.AnyArg(), s.Token).
		WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := repo.Find(context.Background(), s.Token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Credential != s.Credential {
		t.Errorf("expected credential %q, got %q", s.Credential, got.Credential)
	}
	if got.Profile.Role != models.RoleAdmin {
		t.Errorf("expected role admin, got %q", got.Profile.Role)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestFind_NoRows(t *testing.T) {
	repo, mock, cleanup := setupSessionMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT token, credential, refresh_credential`)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Find(context.Background(), "missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDelete_Success(t *testing.T) {
	repo, mock, cleanup := setupSessionMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM sessions WHERE token = $1`)).
		WithArgs("tok-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "tok-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDelete_Error(t *testing.T) {
	repo, mock, cleanup := setupSessionMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM sessions WHERE token = $1`)).
		WithArgs("tok-1").
		WillReturnError(errors.New("delete failed"))

	if err := repo.Delete(context.Background(), "tok-1"); err == nil {
		t.Errorf("expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
