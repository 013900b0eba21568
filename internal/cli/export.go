package cli

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"

	"github.com/ReblochonMasque/dob/internal/config"
	"github.com/ReblochonMasque/dob/internal/report"
	"github.com/ReblochonMasque/dob/internal/termio"
)

var (
	exportFilter filterFlags
	exportOutput string
)

func init() {
	exportFilter.register(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output path (\"-\" for stdout)")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export FORMAT",
	Short: "Export facts to a file or stdout",
	Long: `Export matching facts. FORMAT is one of csv, tsv, xml, ical, or json;
the json form is lossless and can be read back with ` + "`dob import`" + `.
Without --output the file lands at the configured export.path (plus the
format extension); --output - streams to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := report.ParseFormat(args[0])
		if err != nil {
			return err
		}

		r, err := newResolver(time.Now())
		if err != nil {
			return err
		}
		filter, err := exportFilter.filter(r)
		if err != nil {
			return err
		}

		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		facts, err := s.Facts(cmd.Context(), filter)
		if err != nil {
			return err
		}

		if exportOutput == "-" {
			return report.Write(cmd.OutOrStdout(), format, facts)
		}

		path := exportOutput
		if path == "" {
			base := config.ExportPath()
			if base == "" {
				base = "dob-export"
			}
			path = base + "." + string(format)
		}

		var buf bytes.Buffer
		if err := report.Write(&buf, format, facts); err != nil {
			return err
		}
		if err := renameio.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("writing export: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Exported %s facts to %s\n", termio.Count(len(facts)), path)
		return nil
	},
}
