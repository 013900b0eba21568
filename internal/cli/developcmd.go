package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ReblochonMasque/dob/internal/develop"
	"github.com/ReblochonMasque/dob/internal/termio"
)

var developInitForce bool

func init() {
	developInitCmd.Flags().BoolVar(&developInitForce, "force", false, "Overwrite an existing editables file")

	developCmd.AddCommand(developInitCmd)
	developCmd.AddCommand(developSyncCmd)
	developCmd.AddCommand(developStatusCmd)
	rootCmd.AddCommand(developCmd)
}

var developCmd = &cobra.Command{
	Use:   "develop",
	Short: "Work against local checkouts of sibling projects",
	Long: `Manage the editable-checkout workspace. The editables file lists local
sibling checkouts; enabled lines are wired into go.work so source edits
take effect without reinstalling. All go.work changes run through the go
toolchain, which owns validation and conflict errors.`,
}

var developInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a fresh editables file and update .gitignore",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}

		path, err := develop.Init(root, developInitForce)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		fmt.Fprintln(cmd.OutOrStdout(), "Uncomment the checkouts you work on, then run `dob develop sync`.")
		return nil
	},
}

var developSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile go.work with the editables file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}

		res, err := develop.Sync(cmd.Context(), root)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if res.NoOp {
			fmt.Fprintln(out, "Nothing enabled and nothing wired; go.work left alone.")
			return nil
		}
		for _, p := range res.Used {
			fmt.Fprintf(out, "use     %s\n", p)
		}
		for _, p := range res.Dropped {
			fmt.Fprintf(out, "dropuse %s\n", p)
		}
		fmt.Fprintf(out, "Workspace synced: %d used, %d dropped.\n", len(res.Used), len(res.Dropped))
		return nil
	},
}

var developStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show every editables entry and its workspace state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}

		rows, err := develop.Status(root)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "The editables file lists no directives.")
			return nil
		}

		mark := func(b bool) string {
			if b {
				return "yes"
			}
			return "-"
		}
		table := make([][]string, 0, len(rows))
		for _, r := range rows {
			table = append(table, []string{
				strconv.Itoa(r.Line),
				r.Path,
				mark(r.Enabled),
				mark(r.Exists),
				mark(r.HasMod),
				mark(r.InWork),
			})
		}
		return termio.Table(cmd.OutOrStdout(),
			[]string{"LINE", "PATH", "ENABLED", "EXISTS", "GO.MOD", "IN GO.WORK"}, table)
	},
}
