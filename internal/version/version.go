// Package version holds the build metadata injected through ldflags.
package version

import "fmt"

// Info is the build metadata injected through ldflags.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// String renders the long version line.
func (i Info) String() string {
	return fmt.Sprintf("dob version %s (commit: %s, built: %s)", i.Version, i.Commit, i.Date)
}
