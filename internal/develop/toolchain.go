package develop

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"

	"github.com/ReblochonMasque/dob/internal/log"
)

// goWork runs `go work ARGS...` in root. The toolchain owns resolution and
// validation; its stderr is surfaced verbatim on failure.
func goWork(ctx context.Context, root string, args ...string) error {
	goBin, err := exec.LookPath("go")
	if err != nil {
		return fmt.Errorf("the go toolchain is not on PATH: %w", err)
	}

	full := append([]string{"work"}, args...)
	cmd := exec.CommandContext(ctx, goBin, full...)
	cmd.Dir = root

	var stderr bytes.Buffer
	cmd.Stdout = nil
	cmd.Stderr = &stderr

	logger := log.WithComponent("develop")
	logger.Debug().Strs("args", full).Str("dir", root).Msg("running go")
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return fmt.Errorf("go %s: %w", strings.Join(full, " "), err)
		}
		return fmt.Errorf("go %s: %s", strings.Join(full, " "), msg)
	}
	return nil
}

// workFilePath returns root's go.work location.
func workFilePath(root string) string {
	return filepath.Join(root, "go.work")
}

// workUses reads the use directives of root's go.work, resolved to
// absolute paths. A missing go.work means no uses. The file is only ever
// read here; mutation always goes through goWork.
func workUses(root string) (map[string]bool, error) {
	path := workFilePath(root)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]bool{}, nil
		}
		return nil, fmt.Errorf("reading go.work: %w", err)
	}

	wf, err := modfile.ParseWork(path, data, nil)
	if err != nil {
		return nil, fmt.Errorf("parsing go.work: %w", err)
	}

	uses := make(map[string]bool, len(wf.Use))
	for _, u := range wf.Use {
		p := u.Path
		if !filepath.IsAbs(p) {
			p = filepath.Join(root, p)
		}
		uses[filepath.Clean(p)] = true
	}
	return uses, nil
}
