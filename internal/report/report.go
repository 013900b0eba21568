// Package report streams facts into the export formats dob speaks: CSV,
// TSV, XML, iCal, and a lossless JSON form that `dob import` accepts back.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ReblochonMasque/dob/internal/fact"
)

// Format names one export format.
type Format string

const (
	CSV  Format = "csv"
	TSV  Format = "tsv"
	XML  Format = "xml"
	ICal Format = "ical"
	JSON Format = "json"
)

// Formats lists the accepted formats in display order.
var Formats = []Format{CSV, TSV, XML, ICal, JSON}

// ParseFormat maps a command-line argument to a Format. Unknown names are
// an error naming the accepted set.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if Format(strings.ToLower(s)) == f {
			return f, nil
		}
	}
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return "", fmt.Errorf("unknown export format %q (accepted: %s)", s, strings.Join(names, ", "))
}

// Write renders facts to w in the given format.
func Write(w io.Writer, format Format, facts []*fact.Fact) error {
	switch format {
	case CSV:
		return writeSeparated(w, facts, ',')
	case TSV:
		return writeSeparated(w, facts, '\t')
	case XML:
		return writeXML(w, facts)
	case ICal:
		return writeICal(w, facts)
	case JSON:
		return writeJSON(w, facts)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// exportLayout is the timestamp form shared by the tabular writers.
const exportLayout = "2006-01-02 15:04:05"

func formatStart(f *fact.Fact) string {
	return f.Start.Format(exportLayout)
}

func formatEnd(f *fact.Fact) string {
	if f.End == nil {
		return ""
	}
	return f.End.Format(exportLayout)
}

func formatDuration(f *fact.Fact, now time.Time) string {
	if f.End == nil {
		return ""
	}
	return fact.FormatDelta(f.Duration(now))
}
