package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ReblochonMasque/dob/internal/config"
	"github.com/ReblochonMasque/dob/internal/store"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up the config file and the fact store",
	Long: `Create the user config file and an empty fact store, then print a few
hints to get going. Existing files are left untouched, so init is safe
to run again.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		s := styler(cmd)

		exists, err := config.Exists()
		if err != nil {
			return err
		}
		if exists {
			path, _ := config.FilePath()
			fmt.Fprintf(out, "Config file already at %s\n", path)
		} else {
			path, err := config.Create(false)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s\n", s.OK("Created config file"), path)
		}

		storePath, err := config.StorePath()
		if err != nil {
			return err
		}
		if store.Exists(storePath) {
			fmt.Fprintf(out, "Store already at %s\n", storePath)
		} else {
			st, err := store.Open(storePath)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Create(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s\n", s.OK("Created fact store"), storePath)
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, "Some commands to try:")
		fmt.Fprintln(out, "  dob now coding@work #python: starting the day")
		fmt.Fprintln(out, "  dob stop")
		fmt.Fprintln(out, "  dob list facts")
		fmt.Fprintln(out, "  dob config dump")
		return nil
	},
}
