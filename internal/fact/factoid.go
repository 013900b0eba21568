package fact

import (
	"fmt"
	"strings"
)

// TimeHint tells the factoid parser which leading time specs to expect.
// Each fact-creating command maps to one hint.
type TimeHint int

const (
	HintNone  TimeHint = iota // dob now: no time, start immediately
	HintStart                 // dob at: explicit start ("start [to end]" tolerated)
	HintBoth                  // dob from: explicit start and end
	HintEnd                   // dob until/to: explicit end, start is the latest end
	HintAfter                 // dob after/next: start at the latest end
	HintStill                 // dob still: after, copying the previous fact's meta
	HintThen                  // dob then: optional start, default the latest end
)

// Factoid is the parsed command-line shorthand for a fact. Times are kept
// raw; the resolver and mender turn them into concrete moments.
type Factoid struct {
	RawStart    string
	RawEnd      string
	Activity    string
	Category    string
	Tags        []string
	Description string
}

// ParseFactoid parses "[TIME[ to TIME]] ACTIVITY[@CATEGORY] [#TAG ...]
// [SEP DESCRIPTION]" per the hint. separators come from the fact.separators
// config; when empty the defaults ":" and "," apply.
func ParseFactoid(text string, hint TimeHint, separators []string) (*Factoid, error) {
	if len(separators) == 0 {
		separators = []string{":", ","}
	}

	f := &Factoid{}
	rest := strings.TrimSpace(text)

	var err error
	rest, err = f.takeTimes(rest, hint)
	if err != nil {
		return nil, err
	}

	meta, desc := splitDescription(rest, separators)
	f.Description = desc

	if err := f.parseMeta(meta, hint); err != nil {
		return nil, err
	}
	return f, nil
}

// takeTimes consumes the leading time spec(s) the hint calls for and
// returns the remaining text.
func (f *Factoid) takeTimes(rest string, hint TimeHint) (string, error) {
	tokens := strings.Fields(rest)

	switch hint {
	case HintNone, HintAfter, HintStill:
		return rest, nil

	case HintStart, HintEnd, HintThen, HintBoth:
		spec, n := takeTimeSpec(tokens)
		if n == 0 {
			if hint == HintThen {
				return rest, nil
			}
			return "", fmt.Errorf("expected a time at the start of %q", rest)
		}
		tokens = tokens[n:]

		if hint == HintEnd {
			f.RawEnd = spec
			return strings.Join(tokens, " "), nil
		}
		f.RawStart = spec

		// "START to END" is accepted wherever a start is, so exported
		// blocks read back without an explicit hint keyword.
		hasKeyword := len(tokens) > 0 && (tokens[0] == "to" || tokens[0] == "until")
		if hint == HintBoth && !hasKeyword {
			return "", fmt.Errorf("expected `to` between start and end times in %q", rest)
		}
		if hasKeyword {
			endSpec, n := takeTimeSpec(tokens[1:])
			if n == 0 {
				return "", fmt.Errorf("expected an end time after %q", tokens[0])
			}
			f.RawEnd = endSpec
			tokens = tokens[1+n:]
		}
		return strings.Join(tokens, " "), nil
	}
	return rest, nil
}

// splitDescription cuts text at the first separator that ends the metadata:
// a separator string followed by whitespace or the end of input.
func splitDescription(text string, separators []string) (meta, desc string) {
	cut := -1
	cutLen := 0
	for _, sep := range separators {
		if sep == "" {
			continue
		}
		idx := findSeparator(text, sep)
		if idx >= 0 && (cut < 0 || idx < cut) {
			cut = idx
			cutLen = len(sep)
		}
	}
	if cut < 0 {
		return strings.TrimSpace(text), ""
	}
	return strings.TrimSpace(text[:cut]), strings.TrimSpace(text[cut+cutLen:])
}

func findSeparator(text, sep string) int {
	from := 0
	for {
		idx := strings.Index(text[from:], sep)
		if idx < 0 {
			return -1
		}
		idx += from
		after := idx + len(sep)
		if after >= len(text) || text[after] == ' ' || text[after] == '\t' || text[after] == '\n' {
			return idx
		}
		from = after
	}
}

// parseMeta splits "activity@category #tag ..." into fields. The activity
// phrase may contain spaces; tags are single tokens introduced by '#'.
func (f *Factoid) parseMeta(meta string, hint TimeHint) error {
	tokens := strings.Fields(meta)

	var actcat []string
	for i, tok := range tokens {
		if strings.HasPrefix(tok, "#") {
			for _, tag := range tokens[i:] {
				if !strings.HasPrefix(tag, "#") {
					return fmt.Errorf("unexpected %q after tags (tags are single #words)", tag)
				}
				if name := strings.TrimPrefix(tag, "#"); name != "" {
					f.Tags = append(f.Tags, name)
				}
			}
			break
		}
		actcat = append(actcat, tok)
	}

	phrase := strings.Join(actcat, " ")
	f.Activity, f.Category, _ = strings.Cut(phrase, "@")
	f.Activity = strings.TrimSpace(f.Activity)
	f.Category = strings.TrimSpace(f.Category)

	// still/then may omit the activity and inherit it from the previous
	// fact; every other hint requires one.
	if f.Activity == "" && hint != HintStill && hint != HintThen {
		return fmt.Errorf("missing activity in factoid")
	}
	return nil
}
