package cli

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ReblochonMasque/dob/internal/fact"
	"github.com/ReblochonMasque/dob/internal/store"
	"github.com/ReblochonMasque/dob/internal/termio"
)

var (
	usageFilter filterFlags
	usageSort   string
)

func init() {
	for _, cmd := range []*cobra.Command{usageActivitiesCmd, usageCategoriesCmd, usageTagsCmd} {
		usageFilter.register(cmd)
		cmd.Flags().StringVar(&usageSort, "sort", "name", "Row order: name, usage, or time")
		usageCmd.AddCommand(cmd)
	}
	rootCmd.AddCommand(usageCmd)
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Aggregate tracked time per activity, category, or tag",
}

var usageActivitiesCmd = &cobra.Command{
	Use:   "activities",
	Short: "Usage per activity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUsage(cmd, store.GroupActivities, "ACTIVITY")
	},
}

var usageCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Usage per category",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUsage(cmd, store.GroupCategories, "CATEGORY")
	},
}

var usageTagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Usage per tag",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUsage(cmd, store.GroupTags, "TAG")
	},
}

func runUsage(cmd *cobra.Command, group store.Grouping, label string) error {
	now := time.Now()
	r, err := newResolver(now)
	if err != nil {
		return err
	}
	filter, err := usageFilter.filter(r)
	if err != nil {
		return err
	}

	s, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	rows, err := s.Usage(cmd.Context(), group, filter, now)
	if err != nil {
		return err
	}

	switch usageSort {
	case "name":
		// Already name-sorted.
	case "usage":
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Count > rows[j].Count })
	case "time":
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Duration > rows[j].Duration })
	default:
		return fmt.Errorf("unknown --sort %q (accepted: name, usage, time)", usageSort)
	}

	table := make([][]string, 0, len(rows))
	for _, row := range rows {
		table = append(table, []string{
			row.Name,
			strconv.Itoa(row.Count),
			fact.FormatDelta(row.Duration),
			fact.FormatDeltaHours(row.Duration),
		})
	}
	return termio.Table(cmd.OutOrStdout(), []string{label, "FACTS", "TIME", "HOURS"}, table)
}
