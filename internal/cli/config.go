package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/ReblochonMasque/dob/internal/config"
)

var (
	configCreateForce bool
	configDumpJSON    bool
)

func init() {
	configCreateCmd.Flags().BoolVar(&configCreateForce, "force", false, "Overwrite an existing config file")
	configDumpCmd.Flags().BoolVar(&configDumpJSON, "json", false, "Dump as JSON instead of YAML")

	configCmd.AddCommand(configCreateCmd)
	configCmd.AddCommand(configDumpCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configUpdateCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit dob's configuration",
	Long: `Inspect and edit the config file. Every key can also be overridden per
run through DOB_* environment variables (store.path -> DOB_STORE_PATH).`,
}

var configCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Write the annotated default config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Create(configCreateForce)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", path)
		return nil
	},
}

var configDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dump := config.Dump()

		if configDumpJSON {
			out, err := json.MarshalIndent(dump, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		}

		out, err := yaml.Marshal(dump)
		if err != nil {
			return fmt.Errorf("rendering config: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Print one config value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := config.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set one config value and save the file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Set(args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", args[0], args[1])
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.FilePath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the config file in $EDITOR",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		editor := os.Getenv("EDITOR")
		if editor == "" {
			return fmt.Errorf("$EDITOR is not set")
		}
		path, err := config.FilePath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("no config file at %s; run `dob config create` first", path)
		}

		// $EDITOR may carry arguments ("code --wait").
		parts := strings.Fields(editor)
		ec := exec.CommandContext(cmd.Context(), parts[0], append(parts[1:], path)...)
		ec.Stdin = os.Stdin
		ec.Stdout = os.Stdout
		ec.Stderr = os.Stderr
		if err := ec.Run(); err != nil {
			return fmt.Errorf("running %s: %w", editor, err)
		}
		return nil
	},
}

var configUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Inject missing keys and bump the config version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		added, bumped, err := config.Update()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(added) == 0 && !bumped {
			fmt.Fprintln(out, "Config file is up to date.")
			return nil
		}
		for _, key := range added {
			fmt.Fprintf(out, "Added missing key %s\n", key)
		}
		if bumped {
			fmt.Fprintf(out, "Bumped config_version to %s\n", config.CurrentVersion)
		}
		return nil
	},
}
