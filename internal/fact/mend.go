package fact

import (
	"fmt"
	"math/rand"
	"time"
)

// refusals opens time-conflict errors the way dob always has.
var refusals = []string{
	"Not so fast!",
	"Cannawt!",
	"Unpossible!",
	"Insidious!",
	"Think again!",
}

// Refusal builds a time-conflict error with a randomized exclamation and a
// stable message body. Errors wrapped with %w in format stay unwrappable.
func Refusal(format string, args ...interface{}) error {
	err := fmt.Errorf(format, args...)
	return fmt.Errorf("%s %w", refusals[rand.Intn(len(refusals))], err)
}

// MendInput carries everything Mend needs from the store.
type MendInput struct {
	Hint      TimeHint
	Factoid   *Factoid
	Ongoing   *Fact     // the ongoing fact, nil when none
	LatestEnd time.Time // greatest end among saved facts, zero when none
	Latest    *Fact     // most recent saved fact, for still-copy; may be nil
}

// Mended is the outcome of resolving a factoid: the fact to save, and the
// ongoing fact to stop first (with End already set), when one is affected.
type Mended struct {
	New         *Fact
	StopOngoing *Fact
}

// Mend resolves the factoid's raw times against the store state and applies
// dob's rules: starting a new fact stops the ongoing one at the new start;
// a start before the ongoing fact began is refused; a completed fact must
// end after it starts.
func (r Resolver) Mend(in MendInput) (*Mended, error) {
	f := in.Factoid
	n := &Fact{
		Activity:    f.Activity,
		Category:    f.Category,
		Tags:        append([]string(nil), f.Tags...),
		Description: f.Description,
	}

	if in.Hint == HintStill {
		copyMetaFromLatest(n, in.Latest)
	}
	if n.Activity == "" {
		return nil, fmt.Errorf("missing activity in factoid")
	}

	start, err := r.resolveStart(in)
	if err != nil {
		return nil, err
	}
	n.Start = start

	if f.RawEnd != "" {
		end, err := r.ResolveEnd(f.RawEnd, n.Start)
		if err != nil {
			return nil, err
		}
		n.End = &end
	}

	if n.End != nil && !n.End.After(n.Start) {
		return nil, Refusal("the fact would end (%s) before it starts (%s)",
			n.End.Format(timeLayout), n.Start.Format(timeLayout))
	}

	m := &Mended{New: n}
	if in.Ongoing != nil {
		if err := mendOngoing(m, in.Ongoing); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// resolveStart picks and resolves the new fact's start per the hint.
func (r Resolver) resolveStart(in MendInput) (time.Time, error) {
	f := in.Factoid

	// Relative starts anchor on the latest end, falling back to now.
	anchor := in.LatestEnd

	switch in.Hint {
	case HintNone:
		return r.Now, nil

	case HintAfter, HintStill:
		return r.previousEnd(in)

	case HintThen:
		if f.RawStart == "" {
			return r.previousEnd(in)
		}
		return r.ResolveStart(f.RawStart, anchor)

	case HintEnd:
		// Start where the previous fact left off; the explicit time is
		// the end, resolved by the caller against this start.
		return r.previousEnd(in)

	default:
		return r.ResolveStart(f.RawStart, anchor)
	}
}

// previousEnd returns where the previous fact left off: now when a fact is
// still ongoing (it will be stopped at that moment), else the latest end.
func (r Resolver) previousEnd(in MendInput) (time.Time, error) {
	if in.Ongoing != nil {
		return r.Now, nil
	}
	if in.LatestEnd.IsZero() {
		return time.Time{}, fmt.Errorf("no completed fact to continue from; give an explicit start")
	}
	return in.LatestEnd, nil
}

// mendOngoing stops the ongoing fact at the new start, refusing starts that
// do not come after it.
func mendOngoing(m *Mended, ongoing *Fact) error {
	if !m.New.Start.After(ongoing.Start) {
		return Refusal("the new fact starts (%s) before the ongoing fact began (%s)",
			m.New.Start.Format(timeLayout), ongoing.Start.Format(timeLayout))
	}

	stopped := *ongoing
	end := m.New.Start
	stopped.End = &end
	m.StopOngoing = &stopped
	return nil
}

func copyMetaFromLatest(n *Fact, latest *Fact) {
	if latest == nil {
		return
	}
	if n.Activity == "" {
		n.Activity = latest.Activity
		if n.Category == "" {
			n.Category = latest.Category
		}
	}
	if len(n.Tags) == 0 {
		n.Tags = append([]string(nil), latest.Tags...)
	}
}
