package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNoVersion marks a store whose schema_version table is missing, i.e.
// one that predates version control or was created by another tool.
var ErrNoVersion = errors.New("store not under version control")

// migration is one schema step. Up and Down run inside a transaction and
// the version row is updated in the same transaction.
type migration struct {
	version     int
	description string
	up          string
	down        string
}

var migrations = []migration{
	{
		version:     1,
		description: "base tables: categories, activities, facts",
		up: `
CREATE TABLE categories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);
CREATE TABLE activities (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	category_id INTEGER REFERENCES categories(id),
	UNIQUE (name, category_id)
);
CREATE TABLE facts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	activity_id INTEGER NOT NULL REFERENCES activities(id),
	start TEXT NOT NULL,
	end TEXT,
	description TEXT NOT NULL DEFAULT ''
);
CREATE INDEX idx_facts_start ON facts(start);
CREATE INDEX idx_facts_end ON facts(end);
`,
		down: `
DROP INDEX idx_facts_end;
DROP INDEX idx_facts_start;
DROP TABLE facts;
DROP TABLE activities;
DROP TABLE categories;
`,
	},
	{
		version:     2,
		description: "tags and soft deletion",
		up: `
CREATE TABLE tags (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);
CREATE TABLE fact_tags (
	fact_id INTEGER NOT NULL REFERENCES facts(id) ON DELETE CASCADE,
	tag_id INTEGER NOT NULL REFERENCES tags(id),
	PRIMARY KEY (fact_id, tag_id)
);
ALTER TABLE facts ADD COLUMN deleted INTEGER NOT NULL DEFAULT 0;
`,
		down: `
ALTER TABLE facts DROP COLUMN deleted;
DROP TABLE fact_tags;
DROP TABLE tags;
`,
	},
}

// LatestVersion is the schema version a freshly created store carries.
func LatestVersion() int {
	return migrations[len(migrations)-1].version
}

// Version reads the store's schema version. ErrNoVersion when the store is
// not under version control.
func (s *Store) Version(ctx context.Context) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx,
		`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_version'`,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("inspecting schema: %w", err)
	}
	if n == 0 {
		return 0, ErrNoVersion
	}

	var version int
	err = s.DB.QueryRowContext(ctx, `SELECT version FROM schema_version`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNoVersion
	}
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return version, nil
}

// Control puts a legacy store under version control by stamping it at the
// given version without running any migration.
func (s *Store) Control(ctx context.Context, version int) error {
	if _, err := s.Version(ctx); err == nil {
		return fmt.Errorf("store is already under version control")
	} else if !errors.Is(err, ErrNoVersion) {
		return err
	}
	if version < 0 || version > LatestVersion() {
		return fmt.Errorf("version %d out of range (0..%d)", version, LatestVersion())
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`CREATE TABLE schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("creating version table: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_version (version) VALUES (?)`, version); err != nil {
		return fmt.Errorf("stamping version %d: %w", version, err)
	}
	return tx.Commit()
}

// Up applies the next migration. It reports the version the store is at
// afterwards.
func (s *Store) Up(ctx context.Context) (int, error) {
	current, err := s.Version(ctx)
	if err != nil {
		return 0, err
	}
	if current >= LatestVersion() {
		return current, fmt.Errorf("store is already at the latest version (%d)", current)
	}

	m := migrations[current] // versions are 1-based, the slice is 0-based
	if err := s.apply(ctx, m.up, m.version); err != nil {
		return current, fmt.Errorf("migrating up to version %d (%s): %w", m.version, m.description, err)
	}
	s.log.Info().Int("version", m.version).Str("description", m.description).Msg("migrated up")
	return m.version, nil
}

// Down reverts the current migration. It reports the version the store is
// at afterwards.
func (s *Store) Down(ctx context.Context) (int, error) {
	current, err := s.Version(ctx)
	if err != nil {
		return 0, err
	}
	if current == 0 {
		return current, fmt.Errorf("store is already at version 0")
	}

	m := migrations[current-1]
	if err := s.apply(ctx, m.down, m.version-1); err != nil {
		return current, fmt.Errorf("migrating down from version %d (%s): %w", m.version, m.description, err)
	}
	s.log.Info().Int("version", m.version-1).Str("description", m.description).Msg("migrated down")
	return m.version - 1, nil
}

// Create brings a fresh store under version control and applies every
// migration. It refuses stores that already carry a version.
func (s *Store) Create(ctx context.Context) error {
	if v, err := s.Version(ctx); err == nil {
		return fmt.Errorf("store already exists at version %d", v)
	} else if !errors.Is(err, ErrNoVersion) {
		return err
	}

	if err := s.Control(ctx, 0); err != nil {
		return err
	}
	for {
		v, err := s.Up(ctx)
		if err != nil {
			return err
		}
		if v >= LatestVersion() {
			return nil
		}
	}
}

// RequireLatest guards data access: commands that touch facts need the
// full current schema.
func (s *Store) RequireLatest(ctx context.Context) error {
	current, err := s.Version(ctx)
	if errors.Is(err, ErrNoVersion) {
		return fmt.Errorf("store %s is not under version control; run `dob migrate control` or `dob store create`", s.Path)
	}
	if err != nil {
		return err
	}
	if current < LatestVersion() {
		return fmt.Errorf("store schema is at version %d, latest is %d; run `dob migrate up`", current, LatestVersion())
	}
	return nil
}

func (s *Store) apply(ctx context.Context, script string, toVersion int) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE schema_version SET version = ?`, toVersion); err != nil {
		return err
	}
	return tx.Commit()
}
