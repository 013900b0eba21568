package fact

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseFactoid(t *testing.T) {
	tests := []struct {
		name string
		text string
		hint TimeHint
		want Factoid
	}{
		{
			name: "plain activity",
			text: "coding",
			hint: HintNone,
			want: Factoid{Activity: "coding"},
		},
		{
			name: "activity at category with tags and description",
			text: "coding@work #python #bugs: fixing the parser",
			hint: HintNone,
			want: Factoid{
				Activity: "coding", Category: "work",
				Tags:        []string{"python", "bugs"},
				Description: "fixing the parser",
			},
		},
		{
			name: "comma separator",
			text: "cook dinner@home , pasta night",
			hint: HintNone,
			want: Factoid{
				Activity: "cook dinner", Category: "home",
				Description: "pasta night",
			},
		},
		{
			name: "start hint with clock",
			text: "08:30 standup@work",
			hint: HintStart,
			want: Factoid{RawStart: "08:30", Activity: "standup", Category: "work"},
		},
		{
			name: "start hint tolerates start to end",
			text: "2020-01-31 08:00 to 2020-01-31 09:30 coding@work: desc",
			hint: HintStart,
			want: Factoid{
				RawStart: "2020-01-31 08:00", RawEnd: "2020-01-31 09:30",
				Activity: "coding", Category: "work", Description: "desc",
			},
		},
		{
			name: "both hint with relative end",
			text: "-90 until now emails@work",
			hint: HintBoth,
			want: Factoid{RawStart: "-90", RawEnd: "now", Activity: "emails", Category: "work"},
		},
		{
			name: "end hint",
			text: "17:00 meeting@work",
			hint: HintEnd,
			want: Factoid{RawEnd: "17:00", Activity: "meeting", Category: "work"},
		},
		{
			name: "then hint without time",
			text: "tea@break",
			hint: HintThen,
			want: Factoid{Activity: "tea", Category: "break"},
		},
		{
			name: "then hint with yesterday",
			text: "yesterday gardening@home",
			hint: HintThen,
			want: Factoid{RawStart: "yesterday", Activity: "gardening", Category: "home"},
		},
		{
			name: "still hint may omit activity",
			text: "#deep-focus",
			hint: HintStill,
			want: Factoid{Tags: []string{"deep-focus"}},
		},
		{
			name: "colon inside clock never splits description",
			text: "13:45 lunch@cafe",
			hint: HintStart,
			want: Factoid{RawStart: "13:45", Activity: "lunch", Category: "cafe"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFactoid(tt.text, tt.hint, nil)
			if err != nil {
				t.Fatalf("ParseFactoid(%q) error: %v", tt.text, err)
			}
			if diff := cmp.Diff(&tt.want, got); diff != "" {
				t.Errorf("ParseFactoid(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestParseFactoidErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		hint TimeHint
	}{
		{"missing time for at", "coding@work", HintStart},
		{"missing to keyword", "08:00 09:00 coding", HintBoth},
		{"missing end after to", "08:00 to coding", HintBoth},
		{"missing activity", ": just a description", HintNone},
		{"word after tags", "coding #python stray", HintNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseFactoid(tt.text, tt.hint, nil); err == nil {
				t.Errorf("ParseFactoid(%q) expected error", tt.text)
			}
		})
	}
}

func TestParseFactoidCustomSeparators(t *testing.T) {
	got, err := ParseFactoid("coding@work ;; note to self", HintNone, []string{";;"})
	if err != nil {
		t.Fatalf("ParseFactoid error: %v", err)
	}
	if got.Description != "note to self" {
		t.Errorf("Description = %q, want custom separator split", got.Description)
	}
	// The default ":" must not apply when custom separators are set.
	got, err = ParseFactoid("reading: chapter two", HintNone, []string{";;"})
	if err != nil {
		t.Fatalf("ParseFactoid error: %v", err)
	}
	if got.Description != "" || got.Activity != "reading: chapter two" {
		t.Errorf("got activity %q description %q, want whole text as activity", got.Activity, got.Description)
	}
}
