package transcode

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/google/uuid"

	"github.com/ReblochonMasque/dob/internal/appdirs"
	"github.com/ReblochonMasque/dob/internal/fact"
	"github.com/ReblochonMasque/dob/internal/log"
	"github.com/ReblochonMasque/dob/internal/report"
)

// Backup writes the parsed facts to <data-dir>/import-<uuid>.json before
// they are saved, so a bad import can be replayed or inspected. The write
// is atomic.
func Backup(facts []*fact.Fact) (string, error) {
	dataDir, err := appdirs.DataDir()
	if err != nil {
		return "", err
	}
	if err := appdirs.EnsureDir(dataDir); err != nil {
		return "", err
	}

	path := filepath.Join(dataDir, fmt.Sprintf("import-%s.json", uuid.NewString()))

	var buf bytes.Buffer
	if err := report.Write(&buf, report.JSON, facts); err != nil {
		return "", fmt.Errorf("rendering import backup: %w", err)
	}
	if err := renameio.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing import backup: %w", err)
	}

	logger := log.WithComponent("import")
	logger.Info().Str("path", path).Int("facts", len(facts)).Msg("import backup written")
	return path, nil
}
