package fact

import (
	"testing"
	"time"
)

func testResolver(t *testing.T) Resolver {
	t.Helper()
	return Resolver{Now: mustTime(t, "2020-01-31 14:00")}
}

func TestResolveStart(t *testing.T) {
	r := testResolver(t)
	anchor := mustTime(t, "2020-01-31 12:00") // latest fact end

	tests := []struct {
		name string
		spec string
		want time.Time
	}{
		{"now", "now", r.Now},
		{"iso datetime", "2020-01-30 22:15", mustTime(t, "2020-01-30 22:15")},
		{"iso datetime with T", "2020-01-30T22:15", mustTime(t, "2020-01-30 22:15")},
		{"iso date is midnight", "2020-01-29", mustTime(t, "2020-01-29 00:00")},
		{"clock resolves prior", "13:30", mustTime(t, "2020-01-31 13:30")},
		{"clock in the future wraps back a day", "15:00", mustTime(t, "2020-01-30 15:00")},
		{"positive minutes from anchor", "+30", mustTime(t, "2020-01-31 12:30")},
		{"negative minutes from anchor", "-30", mustTime(t, "2020-01-31 11:30")},
		{"go duration", "+1h30m", mustTime(t, "2020-01-31 13:30")},
		{"today at midnight day start", "today", mustTime(t, "2020-01-31 00:00")},
		{"yesterday", "yesterday", mustTime(t, "2020-01-30 00:00")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ResolveStart(tt.spec, anchor)
			if err != nil {
				t.Fatalf("ResolveStart(%q) error: %v", tt.spec, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ResolveStart(%q) = %v, want %v", tt.spec, got, tt.want)
			}
		})
	}
}

func TestResolveStartClockAnchorsOnNowWhenNoFacts(t *testing.T) {
	r := testResolver(t)

	got, err := r.ResolveStart("+15", time.Time{})
	if err != nil {
		t.Fatalf("ResolveStart error: %v", err)
	}
	if want := mustTime(t, "2020-01-31 14:15"); !got.Equal(want) {
		t.Errorf("ResolveStart(+15) = %v, want %v", got, want)
	}
}

func TestResolveEndClockAfterAnchor(t *testing.T) {
	r := testResolver(t)
	start := mustTime(t, "2020-01-31 22:00")

	// 01:30 is before the start's clock, so it lands on the next day.
	got, err := r.ResolveEnd("01:30", start)
	if err != nil {
		t.Fatalf("ResolveEnd error: %v", err)
	}
	if want := mustTime(t, "2020-02-01 01:30"); !got.Equal(want) {
		t.Errorf("ResolveEnd(01:30) = %v, want %v", got, want)
	}

	// A clock after the start's clock stays on the same day.
	got, err = r.ResolveEnd("23:15", start)
	if err != nil {
		t.Fatalf("ResolveEnd error: %v", err)
	}
	if want := mustTime(t, "2020-01-31 23:15"); !got.Equal(want) {
		t.Errorf("ResolveEnd(23:15) = %v, want %v", got, want)
	}
}

func TestDayStartBoundary(t *testing.T) {
	r := Resolver{Now: mustTime(t, "2020-01-31 03:00"), DayStartHour: 5, DayStartMinute: 30}

	// At 03:00 with a 05:30 day start, "today" began yesterday at 05:30.
	got, err := r.ResolveStart("today", time.Time{})
	if err != nil {
		t.Fatalf("ResolveStart error: %v", err)
	}
	if want := mustTime(t, "2020-01-30 05:30"); !got.Equal(want) {
		t.Errorf("today = %v, want %v", got, want)
	}

	got, err = r.ResolveStart("yesterday", time.Time{})
	if err != nil {
		t.Fatalf("ResolveStart error: %v", err)
	}
	if want := mustTime(t, "2020-01-29 05:30"); !got.Equal(want) {
		t.Errorf("yesterday = %v, want %v", got, want)
	}
}

func TestResolveUnrecognized(t *testing.T) {
	r := testResolver(t)
	if _, err := r.ResolveStart("banana", time.Time{}); err == nil {
		t.Error("expected error for unrecognized spec")
	}
	if _, err := r.ResolveStart("25:99", time.Time{}); err == nil {
		t.Error("expected error for out-of-range clock")
	}
}

func TestTakeTimeSpec(t *testing.T) {
	tests := []struct {
		name     string
		tokens   []string
		wantSpec string
		wantN    int
	}{
		{"date and clock join", []string{"2020-01-31", "08:00", "act"}, "2020-01-31 08:00", 2},
		{"bare date", []string{"2020-01-31", "act"}, "2020-01-31", 1},
		{"clock only", []string{"08:00", "act"}, "08:00", 1},
		{"not a time", []string{"act@cat"}, "", 0},
		{"empty", nil, "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, n := takeTimeSpec(tt.tokens)
			if spec != tt.wantSpec || n != tt.wantN {
				t.Errorf("takeTimeSpec(%v) = (%q, %d), want (%q, %d)",
					tt.tokens, spec, n, tt.wantSpec, tt.wantN)
			}
		})
	}
}
