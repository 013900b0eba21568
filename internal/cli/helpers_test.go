package cli

import (
	"testing"
	"time"

	"github.com/ReblochonMasque/dob/internal/fact"
)

func TestParseTimeFlag(t *testing.T) {
	now := time.Date(2016, 4, 1, 18, 0, 0, 0, time.Local)
	r := fact.Resolver{Now: now, DayStartHour: 5}

	tests := []struct {
		name  string
		value string
		want  time.Time
	}{
		{"empty stays zero", "", time.Time{}},
		{"iso datetime", "2016-03-30 14:00", time.Date(2016, 3, 30, 14, 0, 0, 0, time.Local)},
		{"clock prior to now", "08:00", time.Date(2016, 4, 1, 8, 0, 0, 0, time.Local)},
		{"today at day start", "today", time.Date(2016, 4, 1, 5, 0, 0, 0, time.Local)},
		{"yesterday at day start", "yesterday", time.Date(2016, 3, 31, 5, 0, 0, 0, time.Local)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTimeFlag(r, tt.value)
			if err != nil {
				t.Fatalf("parseTimeFlag(%q): %v", tt.value, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("parseTimeFlag(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestParseTimeFlagRejectsGarbage(t *testing.T) {
	r := fact.Resolver{Now: time.Date(2016, 4, 1, 18, 0, 0, 0, time.Local)}
	if _, err := parseTimeFlag(r, "not-a-time"); err == nil {
		t.Fatal("expected an error for a malformed time value")
	}
}

func TestFilterFlags(t *testing.T) {
	now := time.Date(2016, 4, 1, 18, 0, 0, 0, time.Local)
	r := fact.Resolver{Now: now, DayStartHour: 5}

	ff := filterFlags{
		since:    "today",
		activity: "coding",
		tag:      "go",
	}
	got, err := ff.filter(r)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if want := time.Date(2016, 4, 1, 5, 0, 0, 0, time.Local); !got.Since.Equal(want) {
		t.Errorf("Since = %v, want %v", got.Since, want)
	}
	if !got.Until.IsZero() {
		t.Errorf("Until = %v, want zero", got.Until)
	}
	if got.Activity != "coding" || got.Tag != "go" {
		t.Errorf("filter carried %q/%q, want coding/go", got.Activity, got.Tag)
	}

	ff.until = "nonsense"
	if _, err := ff.filter(r); err == nil {
		t.Fatal("expected an error for a malformed --until")
	}
}
