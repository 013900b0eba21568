// Package fact holds dob's domain model: the fact (one tracked interval),
// the factoid command-line shorthand it is parsed from, and the time math
// that turns shorthand into concrete start and end times.
package fact

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Placeholders rendered for missing interval ends.
const (
	GenesisPlaceholder = "<genesis>"
	OngoingPlaceholder = "<ongoing>"
)

// timeLayout is the minute-resolution layout used for display and the
// block import/export format.
const timeLayout = "2006-01-02 15:04"

// Fact is one tracked interval. A nil End marks the fact as ongoing.
type Fact struct {
	PK          int64
	Activity    string
	Category    string
	Tags        []string
	Start       time.Time
	End         *time.Time
	Description string
	Deleted     bool
}

// Ongoing reports whether the fact has not ended yet.
func (f *Fact) Ongoing() bool { return f.End == nil }

// Duration returns the fact's span, clamping an ongoing fact at now.
func (f *Fact) Duration(now time.Time) time.Duration {
	end := now
	if f.End != nil {
		end = *f.End
	}
	return end.Sub(f.Start)
}

// ActCat renders "activity@category", or just the activity when the fact
// has no category.
func (f *Fact) ActCat() string {
	if f.Category == "" {
		return f.Activity
	}
	return f.Activity + "@" + f.Category
}

// TagsString renders the tags as "#a #b", sorted for stable output.
func (f *Fact) TagsString() string {
	if len(f.Tags) == 0 {
		return ""
	}
	tags := append([]string(nil), f.Tags...)
	sort.Strings(tags)
	for i, t := range tags {
		tags[i] = "#" + t
	}
	return strings.Join(tags, " ")
}

// StartString renders the start time, or the genesis placeholder when the
// fact predates recorded time.
func (f *Fact) StartString() string {
	if f.Start.IsZero() {
		return GenesisPlaceholder
	}
	return f.Start.Format(timeLayout)
}

// EndString renders the end time, shortened to the clock when the fact ends
// the day it starts, or the ongoing placeholder.
func (f *Fact) EndString() string {
	if f.End == nil {
		return OngoingPlaceholder
	}
	if sameDay(f.Start, *f.End) {
		return f.End.Format("15:04")
	}
	return f.End.Format(timeLayout)
}

// TimeRange renders "start to end" with the placeholders above.
func (f *Fact) TimeRange() string {
	return f.StartString() + " to " + f.EndString()
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// FriendlyOpts adjusts FriendlyString output.
type FriendlyOpts struct {
	ShowElapsed bool
	IncludeID   bool
	DescSep     string    // separator before the description; default ": "
	Now         time.Time // reference for elapsed; zero means time.Now()
}

// FriendlyString renders the fact on one line, the way completed facts are
// echoed and blocks are exported:
//
//	2020-01-31 08:00 to 09:30 coding@work #python: fixed the bug [1h 30m]
func (f *Fact) FriendlyString(opts FriendlyOpts) string {
	sep := opts.DescSep
	if sep == "" {
		sep = ": "
	}

	var b strings.Builder
	if opts.IncludeID && f.PK > 0 {
		fmt.Fprintf(&b, "(%d) ", f.PK)
	}
	b.WriteString(f.TimeRange())
	if f.Activity != "" {
		b.WriteString(" ")
		b.WriteString(f.ActCat())
	}
	if tags := f.TagsString(); tags != "" {
		b.WriteString(" ")
		b.WriteString(tags)
	}
	if f.Description != "" {
		b.WriteString(sep)
		b.WriteString(f.Description)
	}
	if opts.ShowElapsed {
		now := opts.Now
		if now.IsZero() {
			now = time.Now()
		}
		fmt.Fprintf(&b, " [%s]", FormatDelta(f.Duration(now)))
	}
	return b.String()
}

// FormatDelta renders a duration compactly: "3m", "1h 30m", "26h 05m".
func FormatDelta(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	mins := int(d.Round(time.Minute) / time.Minute)
	h, m := mins/60, mins%60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %02dm", h, m)
}

// FormatDeltaHours renders a duration as decimal hours, for stats output:
// "1.50 hours".
func FormatDeltaHours(d time.Duration) string {
	return fmt.Sprintf("%.2f hours", d.Hours())
}
