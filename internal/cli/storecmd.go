package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ReblochonMasque/dob/internal/config"
	"github.com/ReblochonMasque/dob/internal/store"
)

func init() {
	storeCmd.AddCommand(storeCreateCmd)
	storeCmd.AddCommand(storePathCmd)
	storeCmd.AddCommand(storeURLCmd)
	storeCmd.AddCommand(storeUpgradeLegacyCmd)
	rootCmd.AddCommand(storeCmd)
}

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the fact store",
}

var storeCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an empty fact store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.StorePath()
		if err != nil {
			return err
		}

		s, err := store.Open(path)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Create(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created fact store at %s\n", path)
		return nil
	},
}

var storePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the store location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.StorePath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var storeURLCmd = &cobra.Command{
	Use:   "url",
	Short: "Print the store location as a sqlite URL",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.StorePath()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "sqlite:///%s\n", path)
		return nil
	},
}

var storeUpgradeLegacyCmd = &cobra.Command{
	Use:   "upgrade-legacy PATH",
	Short: "Import a hamster-era v1 database",
	Long: `Import the facts of a hamster-applet v1 database into the current store.
Rows without a usable start or end, and rows that would overlap already
imported facts, are skipped and counted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		imported, skipped, err := s.UpgradeLegacy(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d facts, skipped %d.\n", imported, skipped)
		return nil
	},
}
