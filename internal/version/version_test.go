package version

import (
	"strings"
	"testing"
)

func TestInfoString(t *testing.T) {
	i := Info{Version: "1.2.3", Commit: "abc1234", Date: "2026-08-30"}
	got := i.String()
	for _, want := range []string{"dob version 1.2.3", "abc1234", "2026-08-30"} {
		if !strings.Contains(got, want) {
			t.Errorf("String() = %q, missing %q", got, want)
		}
	}
}
