// Package editables parses the editable-checkout list that `dob develop`
// consumes: one directive per line, `#` comments, blank lines ignored.
// The file is authored by copying editables.example to `editables` and
// uncommenting the sibling checkouts present on this machine.
package editables

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the per-machine list, copied from ExampleName and gitignored.
const (
	FileName    = "editables"
	ExampleName = "editables.example"
)

// Entry is one dependency reference: a local checkout requested in
// editable mode. Disabled entries are directives still commented out.
type Entry struct {
	Path     string // as written in the file
	Abs      string // resolved against the file's own directory
	Editable bool
	Enabled  bool
	Line     int // 1-based line number in the file
}

// File is the parsed list, entries in file order. No deduplication happens
// here; duplicate or conflicting paths are the consuming tool's to reject.
type File struct {
	Dir     string // directory the paths were resolved against
	Entries []Entry
}

// Enabled returns the enabled entries in file order.
func (f *File) Enabled() []Entry {
	var out []Entry
	for _, e := range f.Entries {
		if e.Enabled {
			out = append(out, e)
		}
	}
	return out
}

// Load opens and parses the file at path, resolving relative entries
// against its directory.
func Load(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer fh.Close()

	f, err := Parse(fh, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f, nil
}

// Parse reads directives line by line. Blank lines and prose comments are
// skipped; a comment whose text itself parses as a directive (`# -e ../x`)
// is kept as a disabled entry so status displays can show it. A non-blank,
// non-comment line that is not a directive is a syntax error carrying its
// line number.
func Parse(r io.Reader, dir string) (*File, error) {
	f := &File{Dir: dir}

	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		enabled := true
		if strings.HasPrefix(line, "#") {
			enabled = false
			line = strings.TrimSpace(strings.TrimLeft(line, "#"))
		}

		path, ok := parseDirective(line)
		if !ok {
			if !enabled {
				continue // plain prose comment
			}
			return nil, fmt.Errorf("line %d: %q is not an editable directive (expected `-e PATH`)", lineno, line)
		}

		f.Entries = append(f.Entries, Entry{
			Path:     path,
			Abs:      resolve(dir, path),
			Editable: true,
			Enabled:  enabled,
			Line:     lineno,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading line %d: %w", lineno+1, err)
	}
	return f, nil
}

// parseDirective recognizes `-e PATH` and `--editable PATH`.
func parseDirective(line string) (path string, ok bool) {
	for _, prefix := range []string{"-e", "--editable"} {
		rest, found := strings.CutPrefix(line, prefix)
		if !found || (rest != "" && rest[0] != ' ' && rest[0] != '\t') {
			continue
		}
		rest = strings.TrimSpace(rest)
		if rest == "" {
			return "", false
		}
		return rest, true
	}
	return "", false
}

func resolve(dir, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(dir, path))
}
