package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ReblochonMasque/dob/internal/fact"
)

// Filter narrows fact listings. Zero values mean no constraint. Since and
// Until compare against fact starts.
type Filter struct {
	Since      time.Time
	Until      time.Time
	Activity   string
	Category   string
	Tag        string
	SearchTerm string
	Limit      int
	Offset     int
	Descending bool
}

// Facts lists saved facts matching the filter, oldest first unless
// Descending, deleted ones excluded.
func (s *Store) Facts(ctx context.Context, filter Filter) ([]*fact.Fact, error) {
	q := `SELECT ` + factColumns + factFrom + ` WHERE f.deleted = 0`
	var args []interface{}

	if !filter.Since.IsZero() {
		q += ` AND f.start >= ?`
		args = append(args, timeToString(filter.Since))
	}
	if !filter.Until.IsZero() {
		q += ` AND f.start <= ?`
		args = append(args, timeToString(filter.Until))
	}
	if filter.Activity != "" {
		q += ` AND a.name = ?`
		args = append(args, filter.Activity)
	}
	if filter.Category != "" {
		q += ` AND c.name = ?`
		args = append(args, filter.Category)
	}
	if filter.Tag != "" {
		q += ` AND EXISTS (SELECT 1 FROM fact_tags ft JOIN tags t ON t.id = ft.tag_id
			WHERE ft.fact_id = f.id AND t.name = ?)`
		args = append(args, filter.Tag)
	}
	if filter.SearchTerm != "" {
		q += ` AND (a.name LIKE ? OR f.description LIKE ?)`
		pattern := "%" + filter.SearchTerm + "%"
		args = append(args, pattern, pattern)
	}

	q += ` ORDER BY f.start`
	if filter.Descending {
		q += ` DESC`
	}
	switch {
	case filter.Limit > 0 && filter.Offset > 0:
		q += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	case filter.Limit > 0:
		q += ` LIMIT ?`
		args = append(args, filter.Limit)
	case filter.Offset > 0:
		q += ` LIMIT -1 OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing facts: %w", err)
	}
	facts, err := collectFacts(rows)
	if err != nil {
		return nil, err
	}

	byPK := make(map[int64]*fact.Fact, len(facts))
	for _, f := range facts {
		byPK[f.PK] = f
	}
	if err := s.loadTags(ctx, byPK); err != nil {
		return nil, err
	}
	return facts, nil
}

// CountFacts reports how many facts match the filter, ignoring Limit and
// Offset, for truncation warnings.
func (s *Store) CountFacts(ctx context.Context, filter Filter) (int, error) {
	filter.Limit = 0
	filter.Offset = 0
	// Reuse the filter plumbing; listings are CLI scale.
	facts, err := s.Facts(ctx, filter)
	if err != nil {
		return 0, err
	}
	return len(facts), nil
}

// loadTags fills the Tags of every fact in byPK with one query.
func (s *Store) loadTags(ctx context.Context, byPK map[int64]*fact.Fact) error {
	if len(byPK) == 0 {
		return nil
	}

	marks := make([]string, 0, len(byPK))
	args := make([]interface{}, 0, len(byPK))
	for pk := range byPK {
		marks = append(marks, "?")
		args = append(args, pk)
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT ft.fact_id, t.name FROM fact_tags ft JOIN tags t ON t.id = ft.tag_id
		 WHERE ft.fact_id IN (`+strings.Join(marks, ",")+`)`, args...)
	if err != nil {
		return fmt.Errorf("loading tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var pk int64
		var name string
		if err := rows.Scan(&pk, &name); err != nil {
			return err
		}
		if f := byPK[pk]; f != nil {
			f.Tags = append(f.Tags, name)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, f := range byPK {
		sort.Strings(f.Tags)
	}
	return nil
}

// Activity is one activity with its category, for listings.
type Activity struct {
	Name     string
	Category string
}

// Activities lists known activities, optionally only those in a category.
func (s *Store) Activities(ctx context.Context, category string) ([]Activity, error) {
	q := `SELECT a.name, coalesce(c.name, '') FROM activities a
		LEFT JOIN categories c ON c.id = a.category_id`
	var args []interface{}
	if category != "" {
		q += ` WHERE c.name = ?`
		args = append(args, category)
	}
	q += ` ORDER BY a.name, c.name`

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.Name, &a.Category); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Categories lists known category names.
func (s *Store) Categories(ctx context.Context) ([]string, error) {
	return s.listNames(ctx, `SELECT name FROM categories ORDER BY name`)
}

// Tags lists known tag names.
func (s *Store) Tags(ctx context.Context) ([]string, error) {
	return s.listNames(ctx, `SELECT name FROM tags ORDER BY name`)
}

func (s *Store) listNames(ctx context.Context, q string) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Grouping selects what Usage aggregates over.
type Grouping int

const (
	GroupActivities Grouping = iota
	GroupCategories
	GroupTags
)

// UsageRow is one aggregate: how often a name was tracked and for how long.
type UsageRow struct {
	Name     string
	Count    int
	Duration time.Duration
}

// Usage aggregates matching facts by activity, category or tag. Ongoing
// facts count with their span clamped at now. Rows come back name-sorted;
// callers re-sort for other orders.
func (s *Store) Usage(ctx context.Context, group Grouping, filter Filter, now time.Time) ([]UsageRow, error) {
	facts, err := s.Facts(ctx, filter)
	if err != nil {
		return nil, err
	}

	agg := map[string]*UsageRow{}
	add := func(name string, d time.Duration) {
		row := agg[name]
		if row == nil {
			row = &UsageRow{Name: name}
			agg[name] = row
		}
		row.Count++
		row.Duration += d
	}

	for _, f := range facts {
		d := f.Duration(now)
		switch group {
		case GroupActivities:
			add(f.ActCat(), d)
		case GroupCategories:
			add(f.Category, d)
		case GroupTags:
			for _, tag := range f.Tags {
				add(tag, d)
			}
		}
	}

	rows := make([]UsageRow, 0, len(agg))
	for _, row := range agg {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows, nil
}

// Stats summarizes the whole store.
type Stats struct {
	Facts      int
	Activities int
	Categories int
	Tags       int
	Total      time.Duration
	FirstStart time.Time // zero when the store is empty
	LastEnd    time.Time // zero when no fact has ended
	Ongoing    bool
}

// Stats computes store-wide totals. Ongoing facts contribute their span up
// to now.
func (s *Store) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	st := &Stats{}

	err := s.DB.QueryRowContext(ctx,
		`SELECT count(*), count(DISTINCT activity_id) FROM facts WHERE deleted = 0`,
	).Scan(&st.Facts, &st.Activities)
	if err != nil {
		return nil, fmt.Errorf("counting facts: %w", err)
	}

	err = s.DB.QueryRowContext(ctx,
		`SELECT count(DISTINCT a.category_id) FROM facts f
		 JOIN activities a ON a.id = f.activity_id
		 WHERE f.deleted = 0 AND a.category_id IS NOT NULL`,
	).Scan(&st.Categories)
	if err != nil {
		return nil, fmt.Errorf("counting categories: %w", err)
	}

	err = s.DB.QueryRowContext(ctx,
		`SELECT count(DISTINCT ft.tag_id) FROM fact_tags ft
		 JOIN facts f ON f.id = ft.fact_id
		 WHERE f.deleted = 0`,
	).Scan(&st.Tags)
	if err != nil {
		return nil, fmt.Errorf("counting tags: %w", err)
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT start, end FROM facts WHERE deleted = 0`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var startRaw string
		var endRaw sql.NullString
		if err := rows.Scan(&startRaw, &endRaw); err != nil {
			return nil, err
		}
		start, err := stringToTime(startRaw)
		if err != nil {
			return nil, err
		}
		end, err := nullStringToTime(endRaw)
		if err != nil {
			return nil, err
		}

		if st.FirstStart.IsZero() || start.Before(st.FirstStart) {
			st.FirstStart = start
		}
		if end == nil {
			st.Ongoing = true
			st.Total += now.Sub(start)
			continue
		}
		if end.After(st.LastEnd) {
			st.LastEnd = *end
		}
		st.Total += end.Sub(start)
	}
	return st, rows.Err()
}
