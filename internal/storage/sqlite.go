package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"timetable_bot/internal/model"
	"timetable_bot/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(ctx context.Context, dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection serializes writers and keeps ":memory:" databases alive.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if err := migrations.Run(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// LoadState reads every stored stamp.
func (s *SQLite) LoadState(ctx context.Context) (model.State, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT state_key, stamp FROM post_stamps ORDER BY state_key`)
	if err != nil {
		return nil, fmt.Errorf("query stamps: %w", err)
	}
	defer func() { _ = rows.Close() }()

	state := model.State{}
	for rows.Next() {
		var key, stamp string
		if err := rows.Scan(&key, &stamp); err != nil {
			return nil, fmt.Errorf("scan stamp: %w", err)
		}
		state[key] = stamp
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stamps: %w", err)
	}
	return state, nil
}

// SaveState upserts every key of state in one transaction. Keys absent from
// state are left as they are. posted_at only moves when a stamp changes.
func (s *SQLite) SaveState(ctx context.Context, state model.State) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := s.now().UTC().Format(timeLayout)
	for key, stamp := range state {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO post_stamps (state_key, stamp, posted_at) VALUES (?, ?, ?)
			 ON CONFLICT (state_key) DO UPDATE SET
			     stamp = excluded.stamp,
			     posted_at = CASE WHEN post_stamps.stamp = excluded.stamp
			                      THEN post_stamps.posted_at ELSE excluded.posted_at END`,
			key, stamp, now,
		)
		if err != nil {
			return fmt.Errorf("upsert stamp %s: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit stamps: %w", err)
	}
	return nil
}
