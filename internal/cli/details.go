package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ReblochonMasque/dob/internal/config"
	"github.com/ReblochonMasque/dob/internal/store"
)

var detailsJSON bool

func init() {
	detailsCmd.Flags().BoolVar(&detailsJSON, "json", false, "Emit details as JSON")
	rootCmd.AddCommand(detailsCmd)
}

type appDetails struct {
	App           string `json:"app"`
	Version       string `json:"version"`
	ConfigPath    string `json:"config_path"`
	StorePath     string `json:"store_path"`
	SchemaVersion string `json:"schema_version"`
	LogFile       string `json:"log_file"`
	Facts         int    `json:"facts"`
}

var detailsCmd = &cobra.Command{
	Use:     "details",
	Aliases: []string{"info"},
	Short:   "Show paths, versions, and the fact count",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d := appDetails{App: "dob", Version: buildVersion, SchemaVersion: "none"}

		var err error
		if d.ConfigPath, err = config.FilePath(); err != nil {
			return err
		}
		if d.StorePath, err = config.StorePath(); err != nil {
			return err
		}
		if d.LogFile, err = config.LogFile(); err != nil {
			return err
		}

		// Opening a SQLite path creates the file, so a missing store is
		// checked for first and reported as "none" rather than opened.
		ctx := cmd.Context()
		if store.Exists(d.StorePath) {
			s, err := store.Open(d.StorePath)
			if err != nil {
				return err
			}
			defer s.Close()
			switch v, verr := s.Version(ctx); {
			case verr == nil:
				d.SchemaVersion = strconv.Itoa(v)
				if d.Facts, err = s.CountFacts(ctx, store.Filter{}); err != nil {
					return err
				}
			case !errors.Is(verr, store.ErrNoVersion):
				return verr
			}
		}

		out := cmd.OutOrStdout()
		if detailsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(d)
		}

		fmt.Fprintf(out, "You are running %s version %s\n", d.App, d.Version)
		fmt.Fprintf(out, "Configuration file at: %s\n", d.ConfigPath)
		fmt.Fprintf(out, "Data store at: %s (schema version %s)\n", d.StorePath, d.SchemaVersion)
		fmt.Fprintf(out, "Log file at: %s\n", d.LogFile)
		fmt.Fprintf(out, "Facts recorded: %d\n", d.Facts)
		return nil
	},
}
