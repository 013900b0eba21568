package termio

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Table writes header and rows through a tabwriter, the layout every dob
// listing shares.
func Table(out io.Writer, header []string, rows [][]string) error {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

// TruncationWarning explains that a listing was cut at the row limit, with
// comma-formatted counts and the knob to turn.
func TruncationWarning(shown, total int) string {
	return fmt.Sprintf(
		"Showing %s of %s facts. Use --limit/--offset or raise term.row_limit to see more.",
		Count(shown), Count(total))
}

// Confirm prints prompt followed by "(Y/n)" and reads one line from in.
// Empty input and y/yes confirm; anything else declines.
func Confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s (Y/n) ", prompt)
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return false
	}
	answer := strings.TrimSpace(strings.ToLower(scanner.Text()))
	return answer == "" || answer == "y" || answer == "yes"
}
