package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartSessionSweeper deletes session rows not seen within the retention
// window, on the given interval, and passes each swept token to release so
// the session's cached image blobs are freed with it. Abandoned browsers
// never log out; without this the table and the blob cache only grow.
// Credential expiry is not tracked here; the backend reports it reactively
// on the next request.
func StartSessionSweeper(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	retention time.Duration,
	release func(token string),
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-retention)
				if err := sweepStaleSessions(ctx, db, cutoff, release, log); err != nil {
					log.Error("failed to sweep stale sessions", zap.Error(err))
				}
			}
		}
	}()
}

// sweepStaleSessions deletes rows last seen before cutoff and releases each
// swept session's resources.
func sweepStaleSessions(ctx context.Context, db *sql.DB, cutoff time.Time, release func(token string), log *zap.Logger) error {
	rows, err := db.QueryContext(ctx, `
        DELETE FROM sessions
         WHERE last_seen_at < $1
         RETURNING token
    `, cutoff)
	if err != nil {
		return err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return err
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, token := range tokens {
		if release != nil {
			release(token)
		}
	}
	if len(tokens) > 0 {
		log.Info("swept stale sessions", zap.Int("removed", len(tokens)))
	}
	return nil
}
