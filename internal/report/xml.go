package report

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ReblochonMasque/dob/internal/fact"
)

type xmlFacts struct {
	XMLName xml.Name  `xml:"facts"`
	Facts   []xmlFact `xml:"fact"`
}

type xmlFact struct {
	Start       string `xml:"start,attr"`
	End         string `xml:"end,attr,omitempty"`
	Activity    string `xml:"activity,attr"`
	Category    string `xml:"category,attr,omitempty"`
	Tags        string `xml:"tags,attr,omitempty"`
	Duration    string `xml:"duration,attr,omitempty"`
	Description string `xml:",chardata"`
}

func writeXML(w io.Writer, facts []*fact.Fact) error {
	doc := xmlFacts{Facts: make([]xmlFact, 0, len(facts))}
	now := time.Now()
	for _, f := range facts {
		doc.Facts = append(doc.Facts, xmlFact{
			Start:       formatStart(f),
			End:         formatEnd(f),
			Activity:    f.Activity,
			Category:    f.Category,
			Tags:        strings.Join(f.Tags, " "),
			Duration:    formatDuration(f, now),
			Description: f.Description,
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding facts as XML: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}
