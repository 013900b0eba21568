// Package store persists facts in a SQLite database. Timestamps are kept
// as UTC RFC3339 strings so lexicographic comparison in SQL matches
// chronological order; they come back in local time.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // pure Go driver

	"github.com/ReblochonMasque/dob/internal/appdirs"
	"github.com/ReblochonMasque/dob/internal/log"
)

const busyTimeout = 5 * time.Second

// Store wraps the facts database.
type Store struct {
	DB   *sql.DB
	Path string

	log zerolog.Logger
}

// Exists reports whether a store file is already present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Open opens the SQLite store at path, creating parent directories as
// needed. The pragmas ride in the DSN so every pooled connection gets them.
func Open(path string) (*Store, error) {
	if err := appdirs.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("preparing store directory: %w", err)
	}

	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)",
		path, busyTimeout.Milliseconds(),
	)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", path, err)
	}

	// One writer at a time; the CLI never needs a pool.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging store %s: %w", path, err)
	}

	return &Store{DB: db, Path: path, log: log.WithComponent("store")}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) Ping() error {
	return s.DB.Ping()
}

// --- timestamp plumbing ---

func timeToString(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func timeToNullString(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: timeToString(*t), Valid: true}
}

func stringToTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q in store: %w", s, err)
	}
	return t.Local(), nil
}

func nullStringToTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := stringToTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
