package termio

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Page writes text to out, piping it through the user's pager first when
// paging is enabled and out is a terminal. $PAGER names the program and may
// carry arguments; the default is `less -FRX` (quit on one screen, keep
// colors). A pager that cannot be started falls back to a plain write.
func Page(ctx context.Context, out io.Writer, paging bool, text string) error {
	if !paging || !isTerminal(out) {
		_, err := io.WriteString(out, text)
		return err
	}

	argv := strings.Fields(os.Getenv("PAGER"))
	if len(argv) == 0 {
		argv = []string{"less", "-FRX"}
	}
	if _, err := exec.LookPath(argv[0]); err != nil {
		_, werr := io.WriteString(out, text)
		return werr
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(text)
	cmd.Stdout = out
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
