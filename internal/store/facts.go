package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ReblochonMasque/dob/internal/fact"
)

var (
	// ErrNotFound marks lookups of facts that do not exist.
	ErrNotFound = errors.New("fact not found")

	// ErrNoCurrentFact marks the absence of an ongoing fact.
	ErrNoCurrentFact = errors.New("no active fact")

	// ErrOverlap marks a fact that collides with saved ones. It rides inside
	// a refusal, so check with errors.Is.
	ErrOverlap = errors.New("overlaps saved facts")
)

const (
	factColumns = `f.id, a.name, coalesce(c.name, ''), f.start, f.end, f.description, f.deleted`
	factFrom    = ` FROM facts f
		JOIN activities a ON a.id = f.activity_id
		LEFT JOIN categories c ON c.id = a.category_id`
)

// AddFact saves a fact, creating its activity, category and tags as needed,
// all in one transaction. The fact's PK is filled in on success.
func (s *Store) AddFact(ctx context.Context, f *fact.Fact) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	pk, err := addFactTx(ctx, tx, f)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	f.PK = pk
	s.log.Debug().Int64("pk", pk).Str("activity", f.ActCat()).Msg("fact saved")
	return nil
}

// AddMended applies a mend outcome atomically: the ongoing fact is stopped
// first so the new fact cannot collide with it.
func (s *Store) AddMended(ctx context.Context, m *fact.Mended) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if m.StopOngoing != nil {
		res, err := tx.ExecContext(ctx,
			`UPDATE facts SET end = ? WHERE id = ? AND end IS NULL`,
			timeToNullString(m.StopOngoing.End), m.StopOngoing.PK)
		if err != nil {
			return fmt.Errorf("stopping fact #%d: %w", m.StopOngoing.PK, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("the ongoing fact #%d vanished mid-save", m.StopOngoing.PK)
		}
	}

	pk, err := addFactTx(ctx, tx, m.New)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	m.New.PK = pk
	return nil
}

// AddFacts saves a batch of facts in one transaction, each with the usual
// validation and overlap checks. Nothing is kept when any fact refuses.
func (s *Store) AddFacts(ctx context.Context, facts []*fact.Fact) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	pks := make([]int64, len(facts))
	for i, f := range facts {
		pk, err := addFactTx(ctx, tx, f)
		if err != nil {
			return fmt.Errorf("fact %d of %d: %w", i+1, len(facts), err)
		}
		pks[i] = pk
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	for i, f := range facts {
		f.PK = pks[i]
	}
	s.log.Info().Int("facts", len(facts)).Msg("batch saved")
	return nil
}

// GetFact fetches one fact by primary key, deleted ones included.
func (s *Store) GetFact(ctx context.Context, pk int64) (*fact.Fact, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT `+factColumns+factFrom+` WHERE f.id = ?`, pk)
	f, err := scanFact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("fact #%d: %w", pk, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadTags(ctx, map[int64]*fact.Fact{f.PK: f}); err != nil {
		return nil, err
	}
	return f, nil
}

// UpdateFact rewrites a saved fact in place, with the same validation and
// overlap protection as adding one.
func (s *Store) UpdateFact(ctx context.Context, f *fact.Fact) error {
	if err := validateFact(f); err != nil {
		return err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := checkOverlapTx(ctx, tx, f, f.PK); err != nil {
		return err
	}
	activityID, err := getOrCreateActivityTx(ctx, tx, f.Activity, f.Category)
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE facts SET activity_id = ?, start = ?, end = ?, description = ? WHERE id = ?`,
		activityID, timeToString(f.Start), timeToNullString(f.End), f.Description, f.PK)
	if err != nil {
		return fmt.Errorf("updating fact #%d: %w", f.PK, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("fact #%d: %w", f.PK, ErrNotFound)
	}
	if err := setTagsTx(ctx, tx, f.PK, f.Tags); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteFact removes a fact, softly by default. purge drops the row.
func (s *Store) DeleteFact(ctx context.Context, pk int64, purge bool) error {
	f, err := s.GetFact(ctx, pk)
	if err != nil {
		return err
	}

	if purge {
		// fact_tags rows go with it via ON DELETE CASCADE.
		_, err := s.DB.ExecContext(ctx, `DELETE FROM facts WHERE id = ?`, pk)
		return err
	}

	if f.Deleted {
		return fmt.Errorf("fact #%d is already deleted", pk)
	}
	_, err = s.DB.ExecContext(ctx, `UPDATE facts SET deleted = 1 WHERE id = ?`, pk)
	return err
}

// CurrentFact returns the single ongoing fact. More than one ongoing fact
// means the store is corrupt.
func (s *Store) CurrentFact(ctx context.Context) (*fact.Fact, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+factColumns+factFrom+` WHERE f.end IS NULL AND f.deleted = 0 ORDER BY f.start DESC`)
	if err != nil {
		return nil, err
	}
	facts, err := collectFacts(rows)
	if err != nil {
		return nil, err
	}
	switch len(facts) {
	case 0:
		return nil, ErrNoCurrentFact
	case 1:
		if err := s.loadTags(ctx, map[int64]*fact.Fact{facts[0].PK: facts[0]}); err != nil {
			return nil, err
		}
		return facts[0], nil
	default:
		return nil, fmt.Errorf("store corrupt: %d facts are ongoing at once", len(facts))
	}
}

// LatestFact returns the completed fact with the greatest end.
func (s *Store) LatestFact(ctx context.Context) (*fact.Fact, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT `+factColumns+factFrom+
			` WHERE f.end IS NOT NULL AND f.deleted = 0 ORDER BY f.end DESC LIMIT 1`)
	f, err := scanFact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no completed facts yet: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadTags(ctx, map[int64]*fact.Fact{f.PK: f}); err != nil {
		return nil, err
	}
	return f, nil
}

// MendInput gathers the store state Mend needs: the ongoing fact, the
// latest end, and the most recent fact for meta copying.
func (s *Store) MendInput(ctx context.Context) (fact.MendInput, error) {
	var in fact.MendInput

	ongoing, err := s.CurrentFact(ctx)
	if err != nil && !errors.Is(err, ErrNoCurrentFact) {
		return in, err
	}
	in.Ongoing = ongoing

	latest, err := s.LatestFact(ctx)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return in, err
	}
	if latest != nil {
		in.Latest = latest
		in.LatestEnd = *latest.End
	}
	if ongoing != nil {
		// An ongoing fact is the freshest meta source for still.
		in.Latest = ongoing
	}
	return in, nil
}

// StopCurrent ends the ongoing fact at the given moment.
func (s *Store) StopCurrent(ctx context.Context, at time.Time) (*fact.Fact, error) {
	cur, err := s.CurrentFact(ctx)
	if err != nil {
		return nil, err
	}
	if !at.After(cur.Start) {
		return nil, fact.Refusal("the fact cannot stop (%s) before it started (%s)",
			at.Format("2006-01-02 15:04"), cur.StartString())
	}

	_, err = s.DB.ExecContext(ctx,
		`UPDATE facts SET end = ? WHERE id = ?`, timeToString(at), cur.PK)
	if err != nil {
		return nil, fmt.Errorf("stopping fact #%d: %w", cur.PK, err)
	}
	cur.End = &at
	return cur, nil
}

// CancelCurrent discards the ongoing fact and returns what was discarded.
func (s *Store) CancelCurrent(ctx context.Context, purge bool) (*fact.Fact, error) {
	cur, err := s.CurrentFact(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.DeleteFact(ctx, cur.PK, purge); err != nil {
		return nil, err
	}
	return cur, nil
}

// --- shared transaction pieces ---

func validateFact(f *fact.Fact) error {
	if f.Activity == "" {
		return errors.New("missing activity")
	}
	if f.Start.IsZero() {
		return errors.New("missing start time")
	}
	if f.End != nil && !f.End.After(f.Start) {
		return fact.Refusal("the fact would end (%s) before it starts (%s)",
			f.EndString(), f.StartString())
	}
	return nil
}

func addFactTx(ctx context.Context, tx *sql.Tx, f *fact.Fact) (int64, error) {
	if err := validateFact(f); err != nil {
		return 0, err
	}
	if err := checkOverlapTx(ctx, tx, f, 0); err != nil {
		return 0, err
	}

	activityID, err := getOrCreateActivityTx(ctx, tx, f.Activity, f.Category)
	if err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO facts (activity_id, start, end, description, deleted) VALUES (?, ?, ?, ?, 0)`,
		activityID, timeToString(f.Start), timeToNullString(f.End), f.Description)
	if err != nil {
		return 0, fmt.Errorf("inserting fact: %w", err)
	}
	pk, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := setTagsTx(ctx, tx, pk, f.Tags); err != nil {
		return 0, err
	}
	return pk, nil
}

// checkOverlapTx refuses facts colliding with saved ones. An open end is
// treated as extending indefinitely.
func checkOverlapTx(ctx context.Context, tx *sql.Tx, f *fact.Fact, excludePK int64) error {
	q := `SELECT count(*) FROM facts WHERE deleted = 0 AND id <> ? AND (end IS NULL OR end > ?)`
	args := []interface{}{excludePK, timeToString(f.Start)}
	if f.End != nil {
		q += ` AND start < ?`
		args = append(args, timeToString(*f.End))
	}

	var n int
	if err := tx.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return fmt.Errorf("checking for overlaps: %w", err)
	}
	if n > 0 {
		return fact.Refusal("the new fact (%s) %w (%d)", f.TimeRange(), ErrOverlap, n)
	}
	return nil
}

func getOrCreateCategoryTx(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM categories WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, `INSERT INTO categories (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("creating category %q: %w", name, err)
	}
	return res.LastInsertId()
}

func getOrCreateActivityTx(ctx context.Context, tx *sql.Tx, name, category string) (int64, error) {
	var categoryID sql.NullInt64
	if category != "" {
		id, err := getOrCreateCategoryTx(ctx, tx, category)
		if err != nil {
			return 0, err
		}
		categoryID = sql.NullInt64{Int64: id, Valid: true}
	}

	// UNIQUE treats NULLs as distinct, so match the uncategorized case
	// explicitly instead of relying on the constraint.
	var id int64
	var err error
	if categoryID.Valid {
		err = tx.QueryRowContext(ctx,
			`SELECT id FROM activities WHERE name = ? AND category_id = ?`, name, categoryID.Int64).Scan(&id)
	} else {
		err = tx.QueryRowContext(ctx,
			`SELECT id FROM activities WHERE name = ? AND category_id IS NULL`, name).Scan(&id)
	}
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO activities (name, category_id) VALUES (?, ?)`, name, categoryID)
	if err != nil {
		return 0, fmt.Errorf("creating activity %q: %w", name, err)
	}
	return res.LastInsertId()
}

func setTagsTx(ctx context.Context, tx *sql.Tx, factPK int64, tags []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM fact_tags WHERE fact_id = ?`, factPK); err != nil {
		return err
	}
	for _, tag := range tags {
		var id int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, tag).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			res, err := tx.ExecContext(ctx, `INSERT INTO tags (name) VALUES (?)`, tag)
			if err != nil {
				return fmt.Errorf("creating tag %q: %w", tag, err)
			}
			if id, err = res.LastInsertId(); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO fact_tags (fact_id, tag_id) VALUES (?, ?)`, factPK, id); err != nil {
			return err
		}
	}
	return nil
}

// --- scanning ---

func scanFact(sc interface{ Scan(dest ...interface{}) error }) (*fact.Fact, error) {
	var f fact.Fact
	var start string
	var end sql.NullString
	var deleted int

	if err := sc.Scan(&f.PK, &f.Activity, &f.Category, &start, &end, &f.Description, &deleted); err != nil {
		return nil, err
	}

	var err error
	if f.Start, err = stringToTime(start); err != nil {
		return nil, err
	}
	if f.End, err = nullStringToTime(end); err != nil {
		return nil, err
	}
	f.Deleted = deleted != 0
	return &f, nil
}

func collectFacts(rows *sql.Rows) ([]*fact.Fact, error) {
	defer func() { _ = rows.Close() }()

	var facts []*fact.Fact
	for rows.Next() {
		f, err := scanFact(rows)
		if err != nil {
			return nil, err
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}
