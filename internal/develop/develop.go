package develop

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"github.com/ReblochonMasque/dob/internal/editables"
)

const editablesName = editables.FileName

// Init writes the template to <root>/editables and makes sure the
// per-machine files are gitignored. It refuses to overwrite an existing
// editables file unless force is set. The write is atomic.
func Init(root string, force bool) (string, error) {
	path := filepath.Join(root, editablesName)

	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return "", fmt.Errorf("creating pending editables file: %w", err)
	}
	defer pending.Cleanup()

	if _, err := pending.Write([]byte(templateText)); err != nil {
		return "", fmt.Errorf("writing editables template: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return "", fmt.Errorf("replacing editables file: %w", err)
	}

	if err := ensureGitignore(root); err != nil {
		return "", err
	}
	return path, nil
}

// SyncResult reports what a sync did.
type SyncResult struct {
	Used    []string // absolute paths passed to `go work use`
	Dropped []string // absolute paths passed to `go work edit -dropuse`
	NoOp    bool     // nothing enabled and nothing to drop
}

// Sync reconciles go.work with the editables file: every enabled entry is
// wired in via `go work use`, and paths wired by an earlier sync but no
// longer enabled are dropped. With nothing enabled and no prior state the
// call is a no-op. Missing checkouts, missing go.mod files, and module
// conflicts are the toolchain's errors, forwarded as-is.
func Sync(ctx context.Context, root string) (*SyncResult, error) {
	path := filepath.Join(root, editablesName)
	f, err := editables.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("no %s file at %s; run `dob develop init` first", editablesName, root)
		}
		return nil, err
	}

	st, err := loadState(root)
	if err != nil {
		return nil, err
	}

	enabled := f.Enabled()
	if len(enabled) == 0 && len(st.Wired) == 0 {
		return &SyncResult{NoOp: true}, nil
	}

	if _, err := os.Stat(workFilePath(root)); os.IsNotExist(err) {
		if err := goWork(ctx, root, "init", "."); err != nil {
			return nil, err
		}
	}

	res := &SyncResult{}
	wantAbs := map[string]bool{}
	for _, e := range enabled {
		wantAbs[e.Abs] = true
		if err := goWork(ctx, root, "use", e.Abs); err != nil {
			return nil, err
		}
		res.Used = append(res.Used, e.Abs)
	}

	for _, wired := range st.Wired {
		if wantAbs[wired] {
			continue
		}
		if err := goWork(ctx, root, "edit", "-dropuse", wired); err != nil {
			return nil, err
		}
		res.Dropped = append(res.Dropped, wired)
	}

	if err := saveState(root, &state{Wired: res.Used}); err != nil {
		return nil, err
	}
	return res, nil
}

// StatusRow describes one editables entry for display. Everything here is
// informational; enforcement of the invariants (existing checkout with a
// go.mod) stays with the go toolchain at sync time.
type StatusRow struct {
	Line    int
	Path    string
	Enabled bool
	Exists  bool
	HasMod  bool
	InWork  bool
}

// Status reads every entry of the editables file, enabled or not, and
// reports how each relates to the filesystem and to go.work.
func Status(root string) ([]StatusRow, error) {
	f, err := editables.Load(filepath.Join(root, editablesName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("no %s file at %s; run `dob develop init` first", editablesName, root)
		}
		return nil, err
	}

	uses, err := workUses(root)
	if err != nil {
		return nil, err
	}

	rows := make([]StatusRow, 0, len(f.Entries))
	for _, e := range f.Entries {
		row := StatusRow{
			Line:    e.Line,
			Path:    e.Path,
			Enabled: e.Enabled,
			InWork:  uses[e.Abs],
		}
		if info, err := os.Stat(e.Abs); err == nil && info.IsDir() {
			row.Exists = true
			if _, err := os.Stat(filepath.Join(e.Abs, "go.mod")); err == nil {
				row.HasMod = true
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
