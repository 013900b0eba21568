// Package termio renders dob's user-facing output: styled text, tables,
// comma-formatted counts, and confirmation prompts. Color is gated on the
// term.use_color config mode, NO_COLOR, and whether the writer is a
// terminal.
package termio

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Count renders n with thousands separators, the way truncation warnings
// and stats quote result counts.
func Count(n int) string {
	return printer.Sprintf("%d", n)
}

// Styler colorizes output when the mode and the destination allow it.
type Styler struct {
	enabled bool

	errStyle    lipgloss.Style
	warnStyle   lipgloss.Style
	okStyle     lipgloss.Style
	mutedStyle  lipgloss.Style
	strongStyle lipgloss.Style
}

// NewStyler builds a Styler for out. mode is the term.use_color value:
// "always", "never", or "auto" (color only when out is a terminal and
// NO_COLOR is unset).
func NewStyler(mode string, out io.Writer) *Styler {
	s := &Styler{
		errStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		warnStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		okStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		mutedStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		strongStyle: lipgloss.NewStyle().Bold(true),
	}

	switch mode {
	case "always":
		s.enabled = true
	case "never":
		s.enabled = false
	default:
		s.enabled = os.Getenv("NO_COLOR") == "" && isTerminal(out)
	}
	return s
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func (s *Styler) render(style lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return style.Render(text)
}

// Error styles failure text.
func (s *Styler) Error(text string) string { return s.render(s.errStyle, text) }

// Warn styles caution text, like truncation warnings.
func (s *Styler) Warn(text string) string { return s.render(s.warnStyle, text) }

// OK styles success text.
func (s *Styler) OK(text string) string { return s.render(s.okStyle, text) }

// Muted styles de-emphasized text, like first-run hints.
func (s *Styler) Muted(text string) string { return s.render(s.mutedStyle, text) }

// Strong styles emphasized text, like the tracked-time total.
func (s *Styler) Strong(text string) string { return s.render(s.strongStyle, text) }
