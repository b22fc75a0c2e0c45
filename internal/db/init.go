package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    token TEXT PRIMARY KEY,
    credential TEXT NOT NULL,
    refresh_credential TEXT NOT NULL DEFAULT '',
    profile_id TEXT NOT NULL,
    profile_name TEXT NOT NULL,
    profile_email TEXT NOT NULL,
    profile_role TEXT NOT NULL,
    profile_image TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL,
    last_seen_at TIMESTAMPTZ NOT NULL
);
`

// InitPostgres opens the session store, verifies connectivity, and creates
// the schema if it does not exist yet.
func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}
