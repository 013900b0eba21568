// Package transcode turns import streams into facts: either the lossless
// JSON export validated against an embedded schema, or the text form where
// facts are blank-line-separated blocks whose first line is a factoid with
// an explicit time range.
package transcode

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ReblochonMasque/dob/internal/fact"
)

// Options select how an import stream is parsed and checked.
type Options struct {
	Name       string        // input name; a .json suffix forces JSON
	Resolver   fact.Resolver // resolves the text form's time specs
	Separators []string      // factoid description separators
}

// Read parses the whole stream into facts and checks them: every fact must
// be complete (start and end), and none may overlap another. Violations
// name the offending input lines.
func Read(r io.Reader, opts Options) ([]*fact.Fact, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading import input: %w", err)
	}

	var facts []*fact.Fact
	var lines []int
	if isJSON(opts.Name, data) {
		facts, err = readJSON(data)
		if err != nil {
			return nil, err
		}
		// JSON records have no source lines; number them by position.
		lines = make([]int, len(facts))
		for i := range lines {
			lines[i] = i + 1
		}
	} else {
		facts, lines, err = readBlocks(data, opts)
		if err != nil {
			return nil, err
		}
	}

	if err := checkComplete(facts, lines); err != nil {
		return nil, err
	}
	if err := checkOverlaps(facts, lines); err != nil {
		return nil, err
	}
	return facts, nil
}

// isJSON detects the JSON form by file extension or a leading '['.
func isJSON(name string, data []byte) bool {
	if strings.HasSuffix(strings.ToLower(name), ".json") {
		return true
	}
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}

// readBlocks parses the text form. Blocks are separated by blank lines;
// each block's first line is a factoid carrying its times ("START to END
// ..." or "at START ..."), and any further lines accumulate into the
// description.
func readBlocks(data []byte, opts Options) ([]*fact.Fact, []int, error) {
	var facts []*fact.Fact
	var lines []int

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineno := 0
	blockStart := 0
	var block []string
	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		f, err := parseBlock(block, opts)
		if err != nil {
			return fmt.Errorf("line %d: %w", blockStart, err)
		}
		facts = append(facts, f)
		lines = append(lines, blockStart)
		block = nil
		return nil
	}

	for scanner.Scan() {
		lineno++
		line := strings.TrimRight(scanner.Text(), " \t")
		if strings.TrimSpace(line) == "" {
			if err := flush(); err != nil {
				return nil, nil, err
			}
			continue
		}
		if len(block) == 0 {
			blockStart = lineno
		}
		block = append(block, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading import input: %w", err)
	}
	if err := flush(); err != nil {
		return nil, nil, err
	}
	return facts, lines, nil
}

// parseBlock turns one block into a fact. The first line must lead with a
// time spec; "at START" marks a start-only factoid (rejected later by the
// completeness check unless an end follows on the same line).
func parseBlock(block []string, opts Options) (*fact.Fact, error) {
	head := block[0]
	hint := fact.HintStart
	if rest, ok := strings.CutPrefix(head, "at "); ok {
		head = rest
	}

	factoid, err := fact.ParseFactoid(head, hint, opts.Separators)
	if err != nil {
		return nil, err
	}

	f := &fact.Fact{
		Activity:    factoid.Activity,
		Category:    factoid.Category,
		Tags:        factoid.Tags,
		Description: factoid.Description,
	}

	start, err := opts.Resolver.ResolveStart(factoid.RawStart, opts.Resolver.Now)
	if err != nil {
		return nil, err
	}
	f.Start = start

	if factoid.RawEnd != "" {
		end, err := opts.Resolver.ResolveEnd(factoid.RawEnd, f.Start)
		if err != nil {
			return nil, err
		}
		if !end.After(f.Start) {
			return nil, fact.Refusal("the fact would end (%s) before it starts (%s)",
				end.Format("2006-01-02 15:04"), f.Start.Format("2006-01-02 15:04"))
		}
		f.End = &end
	}

	// Continuation lines extend the description.
	if len(block) > 1 {
		extra := strings.Join(block[1:], "\n")
		if f.Description == "" {
			f.Description = extra
		} else {
			f.Description += "\n" + extra
		}
	}
	return f, nil
}

// checkComplete rejects imports containing ongoing facts; every imported
// fact needs both ends.
func checkComplete(facts []*fact.Fact, lines []int) error {
	var bad []string
	for i, f := range facts {
		if f.End == nil {
			bad = append(bad, fmt.Sprintf("%d", lines[i]))
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("imported facts must have an end; missing on line(s) %s", strings.Join(bad, ", "))
	}
	return nil
}

// checkOverlaps rejects imports whose facts collide with each other.
func checkOverlaps(facts []*fact.Fact, lines []int) error {
	type span struct {
		f    *fact.Fact
		line int
	}
	spans := make([]span, len(facts))
	for i, f := range facts {
		spans[i] = span{f, lines[i]}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].f.Start.Before(spans[j].f.Start) })

	var bad []string
	for i := 1; i < len(spans); i++ {
		prev, cur := spans[i-1], spans[i]
		if prev.f.End.After(cur.f.Start) {
			bad = append(bad, fmt.Sprintf("%d and %d", prev.line, cur.line))
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("imported facts overlap each other: line(s) %s", strings.Join(bad, "; "))
	}
	return nil
}
