package fact

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Time spec shapes accepted on the command line and in import files.
var (
	reISODateTime = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[ T]\d{1,2}:\d{2}(:\d{2})?$`)
	reISODate     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reClock       = regexp.MustCompile(`^\d{1,2}:\d{2}(:\d{2})?$`)
	reMinutes     = regexp.MustCompile(`^[+-]\d+$`)
	reDuration    = regexp.MustCompile(`^[+-]\d+[a-z]`)
)

// IsTimeSpec reports whether token looks like the start of a time spec.
// "2006-01-02" matches even though the full spec may continue with a clock
// token; callers consume greedily via takeTimeSpec.
func IsTimeSpec(token string) bool {
	switch token {
	case "now", "today", "yesterday":
		return true
	}
	return reISODateTime.MatchString(token) ||
		reISODate.MatchString(token) ||
		reClock.MatchString(token) ||
		reMinutes.MatchString(token) ||
		reDuration.MatchString(token)
}

// takeTimeSpec consumes a time spec from the front of tokens, greedily
// joining "2006-01-02 15:04" date+clock pairs. It returns the spec and how
// many tokens it consumed; consumed is 0 when the front is not a time.
func takeTimeSpec(tokens []string) (spec string, consumed int) {
	if len(tokens) == 0 {
		return "", 0
	}
	head := tokens[0]
	if reISODate.MatchString(head) && len(tokens) > 1 && reClock.MatchString(tokens[1]) {
		return head + " " + tokens[1], 2
	}
	if IsTimeSpec(head) {
		return head, 1
	}
	return "", 0
}

// Resolver turns raw time specs into concrete times. Now anchors relative
// forms; DayStartHour/Minute set where "today" begins.
type Resolver struct {
	Now            time.Time
	DayStartHour   int
	DayStartMinute int
}

// ResolveStart resolves a raw spec into a start time. Clock times pick the
// nearest occurrence at or before Now; signed offsets apply to anchor (the
// latest fact end, or Now when anchor is zero).
func (r Resolver) ResolveStart(spec string, anchor time.Time) (time.Time, error) {
	return r.resolve(spec, anchor, true)
}

// ResolveEnd resolves a raw spec into an end time. Clock times pick the
// nearest occurrence at or after anchor (the fact's own start); signed
// offsets apply to anchor.
func (r Resolver) ResolveEnd(spec string, anchor time.Time) (time.Time, error) {
	return r.resolve(spec, anchor, false)
}

func (r Resolver) resolve(spec string, anchor time.Time, isStart bool) (time.Time, error) {
	if anchor.IsZero() {
		anchor = r.Now
	}

	switch spec {
	case "now":
		return r.Now, nil
	case "today":
		return r.dayStart(r.Now), nil
	case "yesterday":
		return r.dayStart(r.Now).AddDate(0, 0, -1), nil
	}

	if reISODateTime.MatchString(spec) {
		normalized := strings.Replace(spec, "T", " ", 1)
		for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04"} {
			if t, err := time.ParseInLocation(layout, normalized, r.Now.Location()); err == nil {
				return t, nil
			}
		}
	}
	if reISODate.MatchString(spec) {
		t, err := time.ParseInLocation("2006-01-02", spec, r.Now.Location())
		if err == nil {
			return t, nil
		}
	}
	if reClock.MatchString(spec) {
		hh, mm, ss, err := parseClock(spec)
		if err != nil {
			return time.Time{}, err
		}
		// A start clock means its most recent occurrence; an end clock
		// means the first occurrence after the fact's own start.
		if isStart {
			return clockPrior(r.Now, hh, mm, ss), nil
		}
		return clockAfter(anchor, hh, mm, ss), nil
	}
	if reMinutes.MatchString(spec) {
		mins, err := strconv.Atoi(spec)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing relative minutes %q: %w", spec, err)
		}
		return anchor.Add(time.Duration(mins) * time.Minute), nil
	}
	if reDuration.MatchString(spec) {
		d, err := time.ParseDuration(spec)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing relative duration %q: %w", spec, err)
		}
		return anchor.Add(d), nil
	}

	return time.Time{}, fmt.Errorf(
		"unrecognized time %q (try: now, today, yesterday, 2006-01-02, 2006-01-02 15:04, 15:04, +90, -1h30m)",
		spec)
}

// dayStart returns the configured day boundary at or before t.
func (r Resolver) dayStart(t time.Time) time.Time {
	boundary := time.Date(t.Year(), t.Month(), t.Day(),
		r.DayStartHour, r.DayStartMinute, 0, 0, t.Location())
	if boundary.After(t) {
		boundary = boundary.AddDate(0, 0, -1)
	}
	return boundary
}

func parseClock(spec string) (hh, mm, ss int, err error) {
	parts := strings.Split(spec, ":")
	hh, err = strconv.Atoi(parts[0])
	if err == nil {
		mm, err = strconv.Atoi(parts[1])
	}
	if err == nil && len(parts) == 3 {
		ss, err = strconv.Atoi(parts[2])
	}
	if err != nil || hh > 23 || mm > 59 || ss > 59 {
		return 0, 0, 0, fmt.Errorf("unrecognized clock time %q", spec)
	}
	return hh, mm, ss, nil
}

// clockPrior returns the latest time with the given clock reading at or
// before anchor.
func clockPrior(anchor time.Time, hh, mm, ss int) time.Time {
	t := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), hh, mm, ss, 0, anchor.Location())
	if t.After(anchor) {
		t = t.AddDate(0, 0, -1)
	}
	return t
}

// clockAfter returns the earliest time with the given clock reading at or
// after anchor.
func clockAfter(anchor time.Time, hh, mm, ss int) time.Time {
	t := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), hh, mm, ss, 0, anchor.Location())
	if t.Before(anchor) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}
