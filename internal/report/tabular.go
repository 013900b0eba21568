package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ReblochonMasque/dob/internal/fact"
)

// writeSeparated streams the CSV/TSV form; the two formats differ only in
// the field delimiter.
func writeSeparated(w io.Writer, facts []*fact.Fact, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma

	header := []string{"start", "end", "activity", "category", "tags", "description", "duration"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	now := time.Now()
	for _, f := range facts {
		row := []string{
			formatStart(f),
			formatEnd(f),
			f.Activity,
			f.Category,
			strings.Join(f.Tags, " "),
			f.Description,
			formatDuration(f, now),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing fact #%d: %w", f.PK, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
