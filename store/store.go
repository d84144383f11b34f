// Package store persists the site's blog posts, uploaded files and visit
// metrics in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a post or file does not exist.
var ErrNotFound = errors.New("store: not found")

// timeLayout matches SQLite's datetime() so date functions compare correctly.
const timeLayout = "2006-01-02 15:04:05"

// Store wraps the SQLite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps :memory: shared.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		summary TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at)`,
	`CREATE TABLE IF NOT EXISTS blobs (
		name TEXT PRIMARY KEY,
		content_type TEXT NOT NULL,
		data BLOB NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS visitors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		hashed_ip TEXT NOT NULL,  -- never the raw address
		user_agent TEXT,
		path TEXT,
		timestamp TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_visitors_timestamp ON visitors(timestamp)`,
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

func (s *Store) stamp() string {
	return s.now().UTC().Format(timeLayout)
}

func parseTime(v string) time.Time {
	t, err := time.ParseInLocation(timeLayout, v, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}
