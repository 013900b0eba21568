package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ReblochonMasque/dob/internal/config"
	"github.com/ReblochonMasque/dob/internal/store"
)

func init() {
	migrateCmd.AddCommand(migrateVersionCmd)
	migrateCmd.AddCommand(migrateControlCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)
}

// openStoreAnyVersion opens the store without the schema gate; migrate
// works on stores at any version.
func openStoreAnyVersion(cmd *cobra.Command) (*store.Store, error) {
	path, err := config.StorePath()
	if err != nil {
		return nil, err
	}
	if !store.Exists(path) {
		return nil, fmt.Errorf("no store at %s; run `dob init` first", path)
	}
	return store.Open(path)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Upgrade or downgrade the store schema",
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the store's schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStoreAnyVersion(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		current, err := s.Version(cmd.Context())
		if errors.Is(err, store.ErrNoVersion) {
			fmt.Fprintln(cmd.OutOrStdout(), "The store is not under version control. Run `dob migrate control`.")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "version %d (latest: %d)\n", current, store.LatestVersion())
		return nil
	},
}

var migrateControlCmd = &cobra.Command{
	Use:   "control [VERSION]",
	Short: "Put a legacy store under version control",
	Long: `Stamp a store that predates schema versioning. Without an argument the
store is stamped at version 1, matching the pre-versioning layout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version := 1
		if len(args) == 1 {
			var err error
			if version, err = strconv.Atoi(args[0]); err != nil {
				return fmt.Errorf("version %q is not a number", args[0])
			}
		}

		s, err := openStoreAnyVersion(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Control(cmd.Context(), version); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Store stamped at version %d.\n", version)
		return nil
	},
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply the next schema migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStoreAnyVersion(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		version, err := s.Up(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Store migrated up to version %d.\n", version)
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert the current schema migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStoreAnyVersion(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		version, err := s.Down(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Store migrated down to version %d.\n", version)
		return nil
	},
}
