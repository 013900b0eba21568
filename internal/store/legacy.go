package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ReblochonMasque/dob/internal/fact"
)

// legacyLayouts cover the naive local timestamps old hamster databases
// carry in their start_time/end_time columns.
var legacyLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// UpgradeLegacy imports a hamster-era v1 database (facts with
// start_time/end_time, activities, categories) into this store. Rows that
// cannot be parsed, never ended, or collide with already imported facts
// are skipped. It reports how many facts were imported and skipped.
func (s *Store) UpgradeLegacy(ctx context.Context, legacyPath string) (imported, skipped int, err error) {
	if !Exists(legacyPath) {
		return 0, 0, fmt.Errorf("no legacy store at %s", legacyPath)
	}

	legacy, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", legacyPath))
	if err != nil {
		return 0, 0, fmt.Errorf("opening legacy store %s: %w", legacyPath, err)
	}
	defer func() { _ = legacy.Close() }()

	rows, err := legacy.QueryContext(ctx, `
		SELECT a.name, coalesce(c.name, ''), f.start_time, f.end_time, coalesce(f.description, '')
		FROM facts f
		JOIN activities a ON a.id = f.activity_id
		LEFT JOIN categories c ON c.id = a.category_id
		ORDER BY f.start_time`)
	if err != nil {
		return 0, 0, fmt.Errorf("reading legacy facts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = tx.Rollback() }()

	for rows.Next() {
		var activity, category, startRaw, description string
		var endRaw sql.NullString
		if err := rows.Scan(&activity, &category, &startRaw, &endRaw, &description); err != nil {
			return imported, skipped, err
		}

		start, ok := parseLegacyTime(startRaw)
		if !ok {
			s.log.Warn().Str("start", startRaw).Msg("skipping legacy fact with unreadable start")
			skipped++
			continue
		}
		// A fact the old tool never stopped has no defensible end; skip it.
		if !endRaw.Valid || endRaw.String == "" {
			skipped++
			continue
		}
		end, ok := parseLegacyTime(endRaw.String)
		if !ok || !end.After(start) {
			s.log.Warn().Str("end", endRaw.String).Msg("skipping legacy fact with unusable end")
			skipped++
			continue
		}

		f := &fact.Fact{
			Activity:    activity,
			Category:    category,
			Start:       start,
			End:         &end,
			Description: description,
		}
		if _, err := addFactTx(ctx, tx, f); err != nil {
			if errors.Is(err, ErrOverlap) {
				s.log.Warn().Str("fact", f.FriendlyString(fact.FriendlyOpts{})).Msg("skipping overlapping legacy fact")
				skipped++
				continue
			}
			return imported, skipped, err
		}
		imported++
	}
	if err := rows.Err(); err != nil {
		return imported, skipped, err
	}

	if err := tx.Commit(); err != nil {
		return imported, skipped, err
	}
	s.log.Info().Int("imported", imported).Int("skipped", skipped).Str("from", legacyPath).Msg("legacy store upgraded")
	return imported, skipped, nil
}

func parseLegacyTime(raw string) (time.Time, bool) {
	for _, layout := range legacyLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
