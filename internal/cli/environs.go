package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ReblochonMasque/dob/internal/appdirs"
	"github.com/ReblochonMasque/dob/internal/config"
)

func init() {
	rootCmd.AddCommand(environsCmd)
}

var environsCmd = &cobra.Command{
	Use:   "environs",
	Short: "Print shell-exportable DOB_* environment lines",
	Long: `Print the paths dob resolved for this run as shell-exportable
environment assignments, e.g. for use with eval:

  eval "$(dob environs)"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := appdirs.ConfigDir()
		if err != nil {
			return err
		}
		dataDir, err := appdirs.DataDir()
		if err != nil {
			return err
		}
		storePath, err := config.StorePath()
		if err != nil {
			return err
		}
		logFile, err := config.LogFile()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "DOB_CONFIG_DIR=%q\n", configDir)
		fmt.Fprintf(out, "DOB_DATA_DIR=%q\n", dataDir)
		fmt.Fprintf(out, "DOB_STORE_PATH=%q\n", storePath)
		fmt.Fprintf(out, "DOB_LOG_FILE=%q\n", logFile)
		return nil
	},
}
