package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDetailsWithoutStore(t *testing.T) {
	t.Setenv("DOB_CONFIG_DIR", t.TempDir())
	dataDir := t.TempDir()
	t.Setenv("DOB_DATA_DIR", dataDir)

	var out bytes.Buffer
	detailsCmd.SetOut(&out)
	detailsCmd.SetContext(context.Background())

	if err := detailsCmd.RunE(detailsCmd, nil); err != nil {
		t.Fatalf("details: %v", err)
	}

	if !strings.Contains(out.String(), "schema version none") {
		t.Errorf("output does not report a missing schema:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Facts recorded: 0") {
		t.Errorf("output does not report zero facts:\n%s", out.String())
	}

	// Inspecting a fresh machine must not leave a store file behind;
	// `dob init` would otherwise see it and skip schema creation.
	storePath := filepath.Join(dataDir, "dob.sqlite")
	if _, err := os.Stat(storePath); !os.IsNotExist(err) {
		t.Errorf("details created %s (stat error: %v)", storePath, err)
	}
}
