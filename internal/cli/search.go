package cli

import (
	"time"

	"github.com/spf13/cobra"
)

var searchFilter filterFlags

func init() {
	searchFilter.register(searchCmd)
	searchCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum facts to list (default: term.row_limit)")
	searchCmd.Flags().IntVar(&listOffset, "offset", 0, "Facts to skip before listing")
	searchCmd.Flags().BoolVar(&listJSON, "json", false, "Output a machine-readable JSON array")
	searchCmd.Flags().BoolVar(&listRaw, "raw", false, "Output friendly one-line blocks instead of a table")
	searchCmd.Flags().BoolVar(&listSpan, "span", false, "Add a duration column")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search TERM",
	Short: "Search facts by activity or description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := newResolver(time.Now())
		if err != nil {
			return err
		}
		filter, err := searchFilter.filter(r)
		if err != nil {
			return err
		}
		filter.SearchTerm = args[0]
		return runFactsListing(cmd, filter)
	},
}
