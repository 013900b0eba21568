//go:build integration

package integration_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ReblochonMasque/dob/internal/fact"
	"github.com/ReblochonMasque/dob/internal/store"
)

// testEnv holds the sandboxed directories and an open store.
type testEnv struct {
	ConfigDir string
	DataDir   string
	Store     *store.Store
}

// setupTestEnv sandboxes DOB_CONFIG_DIR and DOB_DATA_DIR in temp directories
// and opens a fresh store migrated to the latest schema.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		ConfigDir: t.TempDir(),
		DataDir:   t.TempDir(),
	}
	t.Setenv("DOB_CONFIG_DIR", env.ConfigDir)
	t.Setenv("DOB_DATA_DIR", env.DataDir)

	s, err := store.Open(filepath.Join(env.DataDir, "dob.sqlite"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.Create(context.Background()); err != nil {
		t.Fatalf("creating store: %v", err)
	}
	env.Store = s
	return env
}

// record parses a factoid, mends it against the store state, and saves the
// outcome, the same path the recording commands take.
func record(t *testing.T, s *store.Store, r fact.Resolver, hint fact.TimeHint, factoid string) *fact.Fact {
	t.Helper()
	ctx := context.Background()

	parsed, err := fact.ParseFactoid(factoid, hint, nil)
	if err != nil {
		t.Fatalf("parsing %q: %v", factoid, err)
	}
	in, err := s.MendInput(ctx)
	if err != nil {
		t.Fatalf("gathering mend input: %v", err)
	}
	in.Hint = hint
	in.Factoid = parsed

	mended, err := r.Mend(in)
	if err != nil {
		t.Fatalf("mending %q: %v", factoid, err)
	}
	if err := s.AddMended(ctx, mended); err != nil {
		t.Fatalf("saving %q: %v", factoid, err)
	}
	return mended.New
}

// at builds a local time on 2016-04-01, the fixed day the flows run on.
func at(hour, min int) time.Time {
	return time.Date(2016, 4, 1, hour, min, 0, 0, time.Local)
}

func ptr(t time.Time) *time.Time { return &t }
