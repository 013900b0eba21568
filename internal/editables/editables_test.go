package editables

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseDirectives(t *testing.T) {
	input := `# Copy this file to 'editables' and uncomment what you work on.

# -e ../nark
-e ../dob-bright
--editable /opt/src/dob-viewer

# just a note, not a directive
`
	f, err := Parse(strings.NewReader(input), "/work/dob")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := []Entry{
		{Path: "../nark", Abs: "/work/nark", Editable: true, Enabled: false, Line: 3},
		{Path: "../dob-bright", Abs: "/work/dob-bright", Editable: true, Enabled: true, Line: 4},
		{Path: "/opt/src/dob-viewer", Abs: "/opt/src/dob-viewer", Editable: true, Enabled: true, Line: 5},
	}
	if diff := cmp.Diff(want, f.Entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}

	enabled := f.Enabled()
	if len(enabled) != 2 {
		t.Fatalf("Enabled() returned %d entries, want 2", len(enabled))
	}
	if enabled[0].Path != "../dob-bright" {
		t.Errorf("first enabled entry = %q, want ../dob-bright", enabled[0].Path)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare path", "../nark\n", "line 1"},
		{"missing path", "-e\n", "line 1"},
		{"bad line after good", "-e ../nark\ngarbage here\n", "line 2"},
		{"directive-like word", "-editable ../nark\n", "line 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input), ".")
			if err == nil {
				t.Fatal("Parse() succeeded, want syntax error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestParseKeepsDuplicates(t *testing.T) {
	input := "-e ../nark\n-e ../dob-bright\n-e ../nark\n"
	f, err := Parse(strings.NewReader(input), "/work/dob")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	enabled := f.Enabled()
	if len(enabled) != 3 {
		t.Fatalf("Enabled() returned %d entries, want 3 (no dedup)", len(enabled))
	}
	if enabled[0].Abs != enabled[2].Abs {
		t.Errorf("duplicate paths resolved differently: %q vs %q", enabled[0].Abs, enabled[2].Abs)
	}
}

func TestLoadResolvesAgainstFileDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte("-e ../nark\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := filepath.Clean(filepath.Join(dir, "../nark"))
	if got := f.Entries[0].Abs; got != want {
		t.Errorf("Abs = %q, want %q", got, want)
	}
}

// TestShippedTemplate checks the checked-in example: every directive line
// parses, and the pristine copy enables nothing.
func TestShippedTemplate(t *testing.T) {
	path := filepath.Join("..", "..", ExampleName)
	f, err := Load(path)
	if err != nil {
		t.Fatalf("the shipped template does not parse: %v", err)
	}
	if len(f.Entries) == 0 {
		t.Fatal("the shipped template lists no directives")
	}
	if got := f.Enabled(); len(got) != 0 {
		t.Errorf("the shipped template has %d enabled entries, want 0", len(got))
	}
	for _, e := range f.Entries {
		if !e.Editable {
			t.Errorf("line %d: entry %q is not editable", e.Line, e.Path)
		}
	}
}
