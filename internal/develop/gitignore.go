package develop

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ignoredLines are the per-machine files develop keeps out of git.
var ignoredLines = []string{
	editablesName,
	"go.work",
	"go.work.sum",
	stateDir + "/",
}

// ensureGitignore appends any missing develop lines to root's .gitignore,
// creating the file when absent. Lines already present are left alone.
func ensureGitignore(root string) error {
	path := filepath.Join(root, ".gitignore")

	content, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading .gitignore: %w", err)
	}

	present := map[string]bool{}
	for _, l := range strings.Split(string(content), "\n") {
		present[strings.TrimSpace(l)] = true
	}

	var missing []string
	for _, line := range ignoredLines {
		if !present[line] {
			missing = append(missing, line)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	suffix := strings.Join(missing, "\n") + "\n"
	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		suffix = "\n" + suffix
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening .gitignore for append: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(suffix); err != nil {
		return fmt.Errorf("writing to .gitignore: %w", err)
	}
	return nil
}
