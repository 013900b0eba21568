package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"

	"github.com/ReblochonMasque/dob/internal/config"
	"github.com/ReblochonMasque/dob/internal/fact"
	"github.com/ReblochonMasque/dob/internal/termio"
	"github.com/ReblochonMasque/dob/internal/transcode"
)

var (
	importOutput   string
	importDry      bool
	importYes      bool
	importNoBackup bool
)

func init() {
	importCmd.Flags().StringVarP(&importOutput, "output", "o", "", "Write the import echo to a file instead of stdout")
	importCmd.Flags().BoolVar(&importDry, "dry", false, "Parse and check only; save nothing")
	importCmd.Flags().BoolVarP(&importYes, "yes", "y", false, "Skip the confirmation prompt")
	importCmd.Flags().BoolVar(&importNoBackup, "no-backup", false, "Skip the pre-save JSON backup")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import [FILE]",
	Short: "Import facts from a file or stdin",
	Long: `Import facts from FILE, from "-", or from piped stdin. Text input is
blank-line-separated fact blocks; JSON input (a .json file or a leading
"[") must be a dob export and is schema-validated first. Every imported
fact needs both ends, and the batch must not overlap itself or the
store.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	in, name, cleanup, err := openImportInput(args)
	if err != nil {
		return err
	}
	defer cleanup()

	separators, err := config.Separators()
	if err != nil {
		return err
	}
	r, err := newResolver(time.Now())
	if err != nil {
		return err
	}

	facts, err := transcode.Read(in, transcode.Options{
		Name:       name,
		Resolver:   r,
		Separators: separators,
	})
	if err != nil {
		return err
	}
	if len(facts) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to import.")
		return nil
	}

	echo := cmd.OutOrStdout()
	if importDry {
		fmt.Fprintf(echo, "Would import %s facts:\n", termio.Count(len(facts)))
		for _, f := range facts {
			fmt.Fprintf(echo, "  %s\n", f.FriendlyString(fact.FriendlyOpts{}))
		}
		return nil
	}

	if !importYes {
		prompt := fmt.Sprintf("Import %s facts?", termio.Count(len(facts)))
		if !termio.Confirm(os.Stdin, cmd.OutOrStdout(), prompt) {
			fmt.Fprintln(cmd.OutOrStdout(), "Import cancelled.")
			return nil
		}
	}

	if !importNoBackup {
		backupPath, err := transcode.Backup(facts)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", backupPath)
	}

	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.AddFacts(ctx, facts); err != nil {
		return err
	}

	var summary strings.Builder
	fmt.Fprintf(&summary, "Imported %s facts:\n", termio.Count(len(facts)))
	for _, f := range facts {
		fmt.Fprintf(&summary, "  %s\n", f.FriendlyString(fact.FriendlyOpts{IncludeID: true}))
	}

	if importOutput != "" {
		if err := renameio.WriteFile(importOutput, []byte(summary.String()), 0o644); err != nil {
			return fmt.Errorf("writing import report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %s facts; report at %s\n", termio.Count(len(facts)), importOutput)
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), summary.String())
	return nil
}

// openImportInput picks the import source: a named file, "-", or piped
// stdin. Naming a file while also piping stdin is ambiguous and refused.
func openImportInput(args []string) (io.Reader, string, func(), error) {
	stdinPiped := false
	if info, err := os.Stdin.Stat(); err == nil {
		stdinPiped = info.Mode()&os.ModeCharDevice == 0
	}

	noop := func() {}
	if len(args) == 0 || args[0] == "-" {
		if len(args) == 0 && !stdinPiped {
			return nil, "", noop, fmt.Errorf("nothing to import: name a FILE or pipe to stdin")
		}
		return os.Stdin, "-", noop, nil
	}

	if stdinPiped {
		return nil, "", noop, fmt.Errorf("that is weird: both a FILE and piped stdin; pick one")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return nil, "", noop, fmt.Errorf("opening %s: %w", args[0], err)
	}
	return f, args[0], func() { _ = f.Close() }, nil
}
