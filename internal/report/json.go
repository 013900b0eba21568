package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ReblochonMasque/dob/internal/fact"
)

// Record is the lossless JSON form of a fact: what `dob export json` emits
// and `dob import` validates and hydrates.
type Record struct {
	Start       string   `json:"start"`
	End         string   `json:"end,omitempty"`
	Activity    string   `json:"activity"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Description string   `json:"description,omitempty"`
}

// ToRecord converts a fact to its JSON record, timestamps in RFC 3339.
func ToRecord(f *fact.Fact) Record {
	r := Record{
		Start:       f.Start.Format(time.RFC3339),
		Activity:    f.Activity,
		Category:    f.Category,
		Tags:        f.Tags,
		Description: f.Description,
	}
	if f.End != nil {
		r.End = f.End.Format(time.RFC3339)
	}
	return r
}

// ToFact converts a record back to a fact.
func (r Record) ToFact() (*fact.Fact, error) {
	start, err := time.Parse(time.RFC3339, r.Start)
	if err != nil {
		return nil, fmt.Errorf("invalid start %q: %w", r.Start, err)
	}
	f := &fact.Fact{
		Activity:    r.Activity,
		Category:    r.Category,
		Tags:        r.Tags,
		Start:       start.Local(),
		Description: r.Description,
	}
	if r.End != "" {
		end, err := time.Parse(time.RFC3339, r.End)
		if err != nil {
			return nil, fmt.Errorf("invalid end %q: %w", r.End, err)
		}
		local := end.Local()
		f.End = &local
	}
	return f, nil
}

func writeJSON(w io.Writer, facts []*fact.Fact) error {
	records := make([]Record, 0, len(facts))
	for _, f := range facts {
		records = append(records, ToRecord(f))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encoding facts as JSON: %w", err)
	}
	return nil
}
