package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ReblochonMasque/dob/internal/fact"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "dob.sqlite"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.Create(context.Background()); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return s
}

func at(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.ParseInLocation("2006-01-02 15:04", value, time.Local)
	if err != nil {
		t.Fatal(err)
	}
	return ts
}

func completed(t *testing.T, activity, category, start, end string, tags ...string) *fact.Fact {
	t.Helper()
	e := at(t, end)
	return &fact.Fact{
		Activity: activity,
		Category: category,
		Tags:     tags,
		Start:    at(t, start),
		End:      &e,
	}
}

func TestAddAndGetFact(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	f := completed(t, "coding", "work", "2020-01-31 08:00", "2020-01-31 09:30", "python", "bugfix")
	f.Description = "fixed the bug"

	if err := s.AddFact(ctx, f); err != nil {
		t.Fatalf("AddFact() error = %v", err)
	}
	if f.PK == 0 {
		t.Fatal("AddFact() did not fill the PK")
	}

	got, err := s.GetFact(ctx, f.PK)
	if err != nil {
		t.Fatalf("GetFact() error = %v", err)
	}
	if diff := cmp.Diff(f, got, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Errorf("fact mismatch (-want +got):\n%s", diff)
	}

	t.Run("missing pk", func(t *testing.T) {
		_, err := s.GetFact(ctx, 999)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("GetFact(999) error = %v, want ErrNotFound", err)
		}
	})
}

func TestAddFactValidation(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	t.Run("end before start", func(t *testing.T) {
		f := completed(t, "coding", "", "2020-01-31 09:00", "2020-01-31 08:00")
		if err := s.AddFact(ctx, f); err == nil {
			t.Error("AddFact() accepted end before start")
		}
	})

	t.Run("missing activity", func(t *testing.T) {
		f := completed(t, "", "", "2020-01-31 08:00", "2020-01-31 09:00")
		if err := s.AddFact(ctx, f); err == nil {
			t.Error("AddFact() accepted an empty activity")
		}
	})
}

func TestOverlapRefusal(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.AddFact(ctx, completed(t, "coding", "work", "2020-01-31 08:00", "2020-01-31 10:00")); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		start, end string
		overlap    bool
	}{
		{"inside", "2020-01-31 08:30", "2020-01-31 09:00", true},
		{"straddles start", "2020-01-31 07:00", "2020-01-31 08:30", true},
		{"straddles end", "2020-01-31 09:30", "2020-01-31 11:00", true},
		{"touching before", "2020-01-31 07:00", "2020-01-31 08:00", false},
		{"touching after", "2020-01-31 10:00", "2020-01-31 11:00", false},
		{"clear after", "2020-01-31 12:00", "2020-01-31 13:00", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.AddFact(ctx, completed(t, "other", "", tt.start, tt.end))
			if tt.overlap && !errors.Is(err, ErrOverlap) {
				t.Errorf("AddFact() error = %v, want ErrOverlap", err)
			}
			if !tt.overlap && err != nil {
				t.Errorf("AddFact() error = %v, want success", err)
			}
		})
	}
}

func TestCurrentAndStop(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if _, err := s.CurrentFact(ctx); !errors.Is(err, ErrNoCurrentFact) {
		t.Fatalf("CurrentFact() on empty store = %v, want ErrNoCurrentFact", err)
	}

	ongoing := &fact.Fact{Activity: "coding", Start: at(t, "2020-01-31 08:00")}
	if err := s.AddFact(ctx, ongoing); err != nil {
		t.Fatal(err)
	}

	cur, err := s.CurrentFact(ctx)
	if err != nil {
		t.Fatalf("CurrentFact() error = %v", err)
	}
	if cur.PK != ongoing.PK || !cur.Ongoing() {
		t.Errorf("CurrentFact() = %+v", cur)
	}

	t.Run("stop before start refused", func(t *testing.T) {
		if _, err := s.StopCurrent(ctx, at(t, "2020-01-31 07:00")); err == nil {
			t.Error("StopCurrent() accepted a stop before the start")
		}
	})

	stopped, err := s.StopCurrent(ctx, at(t, "2020-01-31 09:00"))
	if err != nil {
		t.Fatalf("StopCurrent() error = %v", err)
	}
	if stopped.End == nil || !stopped.End.Equal(at(t, "2020-01-31 09:00")) {
		t.Errorf("stopped fact end = %v", stopped.End)
	}
	if _, err := s.CurrentFact(ctx); !errors.Is(err, ErrNoCurrentFact) {
		t.Errorf("CurrentFact() after stop = %v, want ErrNoCurrentFact", err)
	}
}

func TestCancelCurrent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	t.Run("soft", func(t *testing.T) {
		f := &fact.Fact{Activity: "coding", Start: at(t, "2020-01-31 08:00")}
		if err := s.AddFact(ctx, f); err != nil {
			t.Fatal(err)
		}
		discarded, err := s.CancelCurrent(ctx, false)
		if err != nil {
			t.Fatalf("CancelCurrent() error = %v", err)
		}
		got, err := s.GetFact(ctx, discarded.PK)
		if err != nil {
			t.Fatalf("GetFact() after soft cancel = %v", err)
		}
		if !got.Deleted {
			t.Error("soft-cancelled fact is not marked deleted")
		}
	})

	t.Run("purge", func(t *testing.T) {
		f := &fact.Fact{Activity: "coding", Start: at(t, "2020-02-01 08:00")}
		if err := s.AddFact(ctx, f); err != nil {
			t.Fatal(err)
		}
		discarded, err := s.CancelCurrent(ctx, true)
		if err != nil {
			t.Fatalf("CancelCurrent(purge) error = %v", err)
		}
		if _, err := s.GetFact(ctx, discarded.PK); !errors.Is(err, ErrNotFound) {
			t.Errorf("GetFact() after purge = %v, want ErrNotFound", err)
		}
	})
}

func TestAddMendedStopsOngoing(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	ongoing := &fact.Fact{Activity: "coding", Start: at(t, "2020-01-31 08:00")}
	if err := s.AddFact(ctx, ongoing); err != nil {
		t.Fatal(err)
	}

	stopAt := at(t, "2020-01-31 09:00")
	stopped := *ongoing
	stopped.End = &stopAt
	m := &fact.Mended{
		New:         &fact.Fact{Activity: "meeting", Start: stopAt},
		StopOngoing: &stopped,
	}
	if err := s.AddMended(ctx, m); err != nil {
		t.Fatalf("AddMended() error = %v", err)
	}

	prev, err := s.GetFact(ctx, ongoing.PK)
	if err != nil {
		t.Fatal(err)
	}
	if prev.End == nil || !prev.End.Equal(stopAt) {
		t.Errorf("previous fact end = %v, want %v", prev.End, stopAt)
	}

	cur, err := s.CurrentFact(ctx)
	if err != nil {
		t.Fatalf("CurrentFact() error = %v", err)
	}
	if cur.Activity != "meeting" {
		t.Errorf("current activity = %q, want meeting", cur.Activity)
	}
}

func TestFactsFilter(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	seed := []*fact.Fact{
		completed(t, "coding", "work", "2020-01-30 08:00", "2020-01-30 10:00", "python"),
		completed(t, "meeting", "work", "2020-01-31 08:00", "2020-01-31 09:00"),
		completed(t, "reading", "leisure", "2020-02-01 20:00", "2020-02-01 21:00", "novel"),
	}
	seed[0].Description = "refactoring the parser"
	for _, f := range seed {
		if err := s.AddFact(ctx, f); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"all ascending", Filter{}, []string{"coding", "meeting", "reading"}},
		{"descending", Filter{Descending: true}, []string{"reading", "meeting", "coding"}},
		{"since", Filter{Since: at(t, "2020-01-31 00:00")}, []string{"meeting", "reading"}},
		{"until", Filter{Until: at(t, "2020-01-31 23:59")}, []string{"coding", "meeting"}},
		{"activity", Filter{Activity: "coding"}, []string{"coding"}},
		{"category", Filter{Category: "work"}, []string{"coding", "meeting"}},
		{"tag", Filter{Tag: "novel"}, []string{"reading"}},
		{"search activity", Filter{SearchTerm: "read"}, []string{"reading"}},
		{"search description", Filter{SearchTerm: "parser"}, []string{"coding"}},
		{"limit offset", Filter{Limit: 1, Offset: 1}, []string{"meeting"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts, err := s.Facts(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Facts() error = %v", err)
			}
			var got []string
			for _, f := range facts {
				got = append(got, f.Activity)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("activities mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("deleted excluded", func(t *testing.T) {
		if err := s.DeleteFact(ctx, seed[1].PK, false); err != nil {
			t.Fatal(err)
		}
		facts, err := s.Facts(ctx, Filter{})
		if err != nil {
			t.Fatal(err)
		}
		if len(facts) != 2 {
			t.Errorf("Facts() after soft delete returned %d, want 2", len(facts))
		}
	})
}

func TestListingsAndUsage(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for _, f := range []*fact.Fact{
		completed(t, "coding", "work", "2020-01-30 08:00", "2020-01-30 10:00", "python"),
		completed(t, "coding", "work", "2020-01-31 08:00", "2020-01-31 09:00", "python", "review"),
		completed(t, "reading", "leisure", "2020-02-01 20:00", "2020-02-01 21:00"),
	} {
		if err := s.AddFact(ctx, f); err != nil {
			t.Fatal(err)
		}
	}

	acts, err := s.Activities(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(acts) != 2 {
		t.Errorf("Activities() returned %d, want 2", len(acts))
	}

	cats, err := s.Categories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"leisure", "work"}, cats); diff != "" {
		t.Errorf("categories (-want +got):\n%s", diff)
	}

	tags, err := s.Tags(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"python", "review"}, tags); diff != "" {
		t.Errorf("tags (-want +got):\n%s", diff)
	}

	now := at(t, "2020-02-02 00:00")
	usage, err := s.Usage(ctx, GroupActivities, Filter{}, now)
	if err != nil {
		t.Fatal(err)
	}
	want := []UsageRow{
		{Name: "coding@work", Count: 2, Duration: 3 * time.Hour},
		{Name: "reading@leisure", Count: 1, Duration: time.Hour},
	}
	if diff := cmp.Diff(want, usage); diff != "" {
		t.Errorf("usage (-want +got):\n%s", diff)
	}
}

func TestStats(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for _, f := range []*fact.Fact{
		completed(t, "coding", "work", "2020-01-30 08:00", "2020-01-30 10:00", "python"),
		{Activity: "reading", Start: at(t, "2020-02-01 20:00")},
	} {
		if err := s.AddFact(ctx, f); err != nil {
			t.Fatal(err)
		}
	}

	now := at(t, "2020-02-01 21:00")
	st, err := s.Stats(ctx, now)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if st.Facts != 2 || st.Activities != 2 || st.Categories != 1 || st.Tags != 1 {
		t.Errorf("counts = %+v", st)
	}
	if !st.Ongoing {
		t.Error("Stats() missed the ongoing fact")
	}
	if want := 3 * time.Hour; st.Total != want {
		t.Errorf("Total = %v, want %v (ongoing clamped at now)", st.Total, want)
	}
	if !st.FirstStart.Equal(at(t, "2020-01-30 08:00")) {
		t.Errorf("FirstStart = %v", st.FirstStart)
	}
	if !st.LastEnd.Equal(at(t, "2020-01-30 10:00")) {
		t.Errorf("LastEnd = %v", st.LastEnd)
	}
}

func TestMigrations(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "dob.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })

	if _, err := s.Version(ctx); !errors.Is(err, ErrNoVersion) {
		t.Fatalf("Version() on fresh file = %v, want ErrNoVersion", err)
	}

	if err := s.Create(ctx); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	v, err := s.Version(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if v != LatestVersion() {
		t.Errorf("Version() after create = %d, want %d", v, LatestVersion())
	}

	t.Run("up at latest fails", func(t *testing.T) {
		if _, err := s.Up(ctx); err == nil {
			t.Error("Up() at latest succeeded")
		}
	})

	t.Run("down and back up", func(t *testing.T) {
		v, err := s.Down(ctx)
		if err != nil {
			t.Fatalf("Down() error = %v", err)
		}
		if v != LatestVersion()-1 {
			t.Errorf("Down() landed at %d", v)
		}
		v, err = s.Up(ctx)
		if err != nil {
			t.Fatalf("Up() error = %v", err)
		}
		if v != LatestVersion() {
			t.Errorf("Up() landed at %d", v)
		}
	})

	t.Run("create twice fails", func(t *testing.T) {
		if err := s.Create(ctx); err == nil {
			t.Error("second Create() succeeded")
		}
	})

	t.Run("RequireLatest", func(t *testing.T) {
		if err := s.RequireLatest(ctx); err != nil {
			t.Errorf("RequireLatest() at latest = %v", err)
		}
		if _, err := s.Down(ctx); err != nil {
			t.Fatal(err)
		}
		if err := s.RequireLatest(ctx); err == nil {
			t.Error("RequireLatest() below latest succeeded")
		}
	})
}

func TestUpgradeLegacy(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	// Build a hamster-era v1 database by hand.
	legacyPath := filepath.Join(dir, "hamster.db")
	legacy, err := Open(legacyPath)
	if err != nil {
		t.Fatal(err)
	}
	script := `
CREATE TABLE categories (id INTEGER PRIMARY KEY, name TEXT);
CREATE TABLE activities (id INTEGER PRIMARY KEY, name TEXT, category_id INTEGER);
CREATE TABLE facts (id INTEGER PRIMARY KEY, activity_id INTEGER, start_time TEXT, end_time TEXT, description TEXT);
INSERT INTO categories VALUES (1, 'work');
INSERT INTO activities VALUES (1, 'coding', 1), (2, 'idle', NULL);
INSERT INTO facts VALUES
	(1, 1, '2019-06-01 08:00:00', '2019-06-01 10:00:00', 'old times'),
	(2, 2, '2019-06-02 08:00:00', NULL, 'never stopped'),
	(3, 1, 'garbage', '2019-06-03 10:00:00', '');
`
	if _, err := legacy.DB.ExecContext(ctx, script); err != nil {
		t.Fatal(err)
	}
	if err := legacy.Close(); err != nil {
		t.Fatal(err)
	}

	s := testStore(t)
	imported, skipped, err := s.UpgradeLegacy(ctx, legacyPath)
	if err != nil {
		t.Fatalf("UpgradeLegacy() error = %v", err)
	}
	if imported != 1 || skipped != 2 {
		t.Errorf("imported = %d, skipped = %d; want 1 and 2", imported, skipped)
	}

	facts, err := s.Facts(ctx, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(facts) != 1 || facts[0].Activity != "coding" || facts[0].Category != "work" {
		t.Errorf("imported facts = %+v", facts)
	}

	t.Run("missing legacy path", func(t *testing.T) {
		if _, _, err := s.UpgradeLegacy(ctx, filepath.Join(dir, "nope.db")); err == nil {
			t.Error("UpgradeLegacy() on a missing file succeeded")
		}
	})
}
