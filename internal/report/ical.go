package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/ReblochonMasque/dob/internal/fact"
)

const icalStampLayout = "20060102T150405Z"

// writeICal emits one VEVENT per completed fact. Ongoing facts have no
// defensible DTEND and are skipped.
func writeICal(w io.Writer, facts []*fact.Fact) error {
	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR\r\n")
	b.WriteString("VERSION:2.0\r\n")
	b.WriteString("PRODID:-//dob//fact export//EN\r\n")

	for _, f := range facts {
		if f.End == nil {
			continue
		}
		b.WriteString("BEGIN:VEVENT\r\n")
		fmt.Fprintf(&b, "UID:dob-fact-%d\r\n", f.PK)
		fmt.Fprintf(&b, "DTSTART:%s\r\n", f.Start.UTC().Format(icalStampLayout))
		fmt.Fprintf(&b, "DTEND:%s\r\n", f.End.UTC().Format(icalStampLayout))
		fmt.Fprintf(&b, "SUMMARY:%s\r\n", icalEscape(f.ActCat()))
		if f.Description != "" {
			fmt.Fprintf(&b, "DESCRIPTION:%s\r\n", icalEscape(f.Description))
		}
		if len(f.Tags) > 0 {
			tags := make([]string, len(f.Tags))
			for i, t := range f.Tags {
				tags[i] = icalEscape(t)
			}
			fmt.Fprintf(&b, "CATEGORIES:%s\r\n", strings.Join(tags, ","))
		}
		b.WriteString("END:VEVENT\r\n")
	}

	b.WriteString("END:VCALENDAR\r\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// icalEscape applies RFC 5545 text escaping.
func icalEscape(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		";", `\;`,
		",", `\,`,
		"\n", `\n`,
	)
	return r.Replace(s)
}
