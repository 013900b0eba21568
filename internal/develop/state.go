package develop

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

const (
	stateDir  = ".dob"
	stateFile = "develop.yaml"
)

// state records the absolute paths the last sync wired into go.work, so
// entries commented out later get dropped again.
type state struct {
	Wired []string `yaml:"wired"`
}

func statePath(root string) string {
	return filepath.Join(root, stateDir, stateFile)
}

// loadState reads the sync state. A missing file is an empty state.
func loadState(root string) (*state, error) {
	data, err := os.ReadFile(statePath(root))
	if err != nil {
		if os.IsNotExist(err) {
			return &state{}, nil
		}
		return nil, fmt.Errorf("reading develop state: %w", err)
	}

	var st state
	if err := yaml.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parsing develop state: %w", err)
	}
	return &st, nil
}

// saveState writes the sync state, creating .dob/ as needed.
func saveState(root string, st *state) error {
	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshaling develop state: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(root, stateDir), 0o755); err != nil {
		return fmt.Errorf("creating %s directory: %w", stateDir, err)
	}
	if err := os.WriteFile(statePath(root), data, 0o644); err != nil {
		return fmt.Errorf("writing develop state: %w", err)
	}
	return nil
}
