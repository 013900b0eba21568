package transcode

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ReblochonMasque/dob/internal/fact"
)

func testOptions(name string) Options {
	return Options{
		Name: name,
		Resolver: fact.Resolver{
			Now: time.Date(2020, 2, 1, 12, 0, 0, 0, time.Local),
		},
	}
}

func TestReadBlocks(t *testing.T) {
	input := `2020-01-31 08:00 to 2020-01-31 09:30 coding@work #python: fixed the bug
and wrote a regression test

at 2020-01-31 10:00 to 11:15 reading@leisure
`
	facts, err := Read(strings.NewReader(input), testOptions("facts.txt"))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(facts) != 2 {
		t.Fatalf("Read() returned %d facts, want 2", len(facts))
	}

	first := facts[0]
	if first.Activity != "coding" || first.Category != "work" {
		t.Errorf("first fact = %s", first.ActCat())
	}
	if want := "fixed the bug\nand wrote a regression test"; first.Description != want {
		t.Errorf("description = %q, want %q", first.Description, want)
	}
	if first.End == nil || !first.End.After(first.Start) {
		t.Errorf("first fact span = %s", first.TimeRange())
	}

	second := facts[1]
	if second.End == nil || second.End.Hour() != 11 || second.End.Minute() != 15 {
		t.Errorf("second fact end = %v, want 11:15 same day", second.End)
	}
}

func TestReadRejectsIncomplete(t *testing.T) {
	input := "2020-01-31 08:00 coding@work: no end here\n"
	_, err := Read(strings.NewReader(input), testOptions("facts.txt"))
	if err == nil || !strings.Contains(err.Error(), "line(s) 1") {
		t.Errorf("Read() error = %v, want missing-end error naming line 1", err)
	}
}

func TestReadRejectsOverlaps(t *testing.T) {
	input := `2020-01-31 08:00 to 10:00 coding@work

2020-01-31 09:00 to 11:00 meeting@work
`
	_, err := Read(strings.NewReader(input), testOptions("facts.txt"))
	if err == nil || !strings.Contains(err.Error(), "overlap") {
		t.Errorf("Read() error = %v, want overlap error", err)
	}
	if !strings.Contains(err.Error(), "1 and 3") {
		t.Errorf("Read() error = %v, want offending lines 1 and 3", err)
	}
}

func TestReadRejectsBadFirstLine(t *testing.T) {
	input := "coding@work without any time\n"
	_, err := Read(strings.NewReader(input), testOptions("facts.txt"))
	if err == nil || !strings.Contains(err.Error(), "line 1") {
		t.Errorf("Read() error = %v, want parse error naming line 1", err)
	}
}

func TestReadJSON(t *testing.T) {
	input := `[
  {
    "start": "2020-01-31T08:00:00Z",
    "end": "2020-01-31T09:30:00Z",
    "activity": "coding",
    "category": "work",
    "tags": ["python"],
    "description": "fixed the bug"
  }
]`

	t.Run("by extension", func(t *testing.T) {
		facts, err := Read(strings.NewReader(input), testOptions("export.json"))
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if len(facts) != 1 || facts[0].Activity != "coding" {
			t.Errorf("facts = %+v", facts)
		}
	})

	t.Run("by leading bracket", func(t *testing.T) {
		facts, err := Read(strings.NewReader(input), testOptions("-"))
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if len(facts) != 1 {
			t.Errorf("Read() returned %d facts, want 1", len(facts))
		}
	})
}

func TestReadJSONSchemaViolations(t *testing.T) {
	input := `[{"end": "2020-01-31T09:30:00Z", "bogus": 1}]`
	_, err := Read(strings.NewReader(input), testOptions("export.json"))
	if err == nil {
		t.Fatal("Read() succeeded on invalid JSON export")
	}
	// Leaf issues carry their instance paths.
	if !strings.Contains(err.Error(), "/0") {
		t.Errorf("Read() error = %v, want instance path /0", err)
	}
}

func TestBackup(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("DOB_DATA_DIR", dataDir)

	end := time.Date(2020, 1, 31, 9, 30, 0, 0, time.Local)
	facts := []*fact.Fact{{
		Activity: "coding",
		Start:    time.Date(2020, 1, 31, 8, 0, 0, 0, time.Local),
		End:      &end,
	}}

	path, err := Backup(facts)
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}
	if filepath.Dir(path) != dataDir {
		t.Errorf("backup landed in %s, want %s", filepath.Dir(path), dataDir)
	}
	base := filepath.Base(path)
	if !strings.HasPrefix(base, "import-") || !strings.HasSuffix(base, ".json") {
		t.Errorf("backup name = %q, want import-<uuid>.json", base)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"activity": "coding"`) {
		t.Errorf("backup content:\n%s", data)
	}
}
