package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ReblochonMasque/dob/internal/config"
	"github.com/ReblochonMasque/dob/internal/fact"
	"github.com/ReblochonMasque/dob/internal/report"
	"github.com/ReblochonMasque/dob/internal/store"
	"github.com/ReblochonMasque/dob/internal/termio"
)

var (
	listFilter filterFlags
	listLimit  int
	listOffset int
	listJSON   bool
	listRaw    bool
	listSpan   bool

	listActivitiesCategory string
)

func init() {
	listFilter.register(listFactsCmd)
	listFactsCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum facts to list (default: term.row_limit)")
	listFactsCmd.Flags().IntVar(&listOffset, "offset", 0, "Facts to skip before listing")
	listFactsCmd.Flags().BoolVar(&listJSON, "json", false, "Output a machine-readable JSON array")
	listFactsCmd.Flags().BoolVar(&listRaw, "raw", false, "Output friendly one-line blocks instead of a table")
	listFactsCmd.Flags().BoolVar(&listSpan, "span", false, "Add a duration column")

	listActivitiesCmd.Flags().StringVar(&listActivitiesCategory, "category", "", "Only activities in this category")

	listCmd.AddCommand(listFactsCmd)
	listCmd.AddCommand(listActivitiesCmd)
	listCmd.AddCommand(listCategoriesCmd)
	listCmd.AddCommand(listTagsCmd)
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List facts, activities, categories, or tags",
}

var listFactsCmd = &cobra.Command{
	Use:   "facts",
	Short: "List saved facts",
	Args:  cobra.NoArgs,
	RunE:  runListFacts,
}

func runListFacts(cmd *cobra.Command, args []string) error {
	r, err := newResolver(time.Now())
	if err != nil {
		return err
	}
	filter, err := listFilter.filter(r)
	if err != nil {
		return err
	}
	return runFactsListing(cmd, filter)
}

// runFactsListing applies the shared output modes (table, --raw, --json)
// and the row-limit truncation warning; search reuses it with its term set.
// With term.paging enabled the listing goes through $PAGER.
func runFactsListing(cmd *cobra.Command, filter store.Filter) error {
	ctx := cmd.Context()

	filter.Offset = listOffset
	filter.Limit = listLimit
	if filter.Limit == 0 {
		filter.Limit = config.RowLimit()
	}

	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	facts, err := s.Facts(ctx, filter)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	switch {
	case listJSON:
		if err := printFactsJSON(&buf, facts); err != nil {
			return err
		}
	case listRaw:
		for _, f := range facts {
			fmt.Fprintln(&buf, f.FriendlyString(fact.FriendlyOpts{IncludeID: true, ShowElapsed: listSpan}))
		}
	default:
		if err := printFactsTable(&buf, facts); err != nil {
			return err
		}
	}
	if err := termio.Page(ctx, cmd.OutOrStdout(), config.Paging(), buf.String()); err != nil {
		return err
	}

	// Truncation warning, with comma-formatted counts.
	if filter.Limit > 0 && len(facts) == filter.Limit {
		total, err := s.CountFacts(ctx, filter)
		if err != nil {
			return err
		}
		if total > len(facts) {
			fmt.Fprintln(cmd.ErrOrStderr(), styler(cmd).Warn(termio.TruncationWarning(len(facts), total)))
		}
	}
	return nil
}

func printFactsTable(out io.Writer, facts []*fact.Fact) error {
	header := []string{"KEY", "START", "END", "ACTIVITY", "CATEGORY", "TAGS", "DESCRIPTION"}
	if listSpan {
		header = append(header, "DURATION")
	}

	now := time.Now()
	rows := make([][]string, 0, len(facts))
	for _, f := range facts {
		row := []string{
			strconv.FormatInt(f.PK, 10),
			f.StartString(),
			f.EndString(),
			f.Activity,
			f.Category,
			f.TagsString(),
			f.Description,
		}
		if listSpan {
			row = append(row, fact.FormatDelta(f.Duration(now)))
		}
		rows = append(rows, row)
	}
	return termio.Table(out, header, rows)
}

// jsonFact is one fact in machine-readable listings: the lossless export
// record plus the store key.
type jsonFact struct {
	Key int64 `json:"key"`
	report.Record
}

func printFactsJSON(out io.Writer, facts []*fact.Fact) error {
	entries := make([]jsonFact, 0, len(facts))
	for _, f := range facts {
		entries = append(entries, jsonFact{Key: f.PK, Record: report.ToRecord(f)})
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling facts: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

var listActivitiesCmd = &cobra.Command{
	Use:   "activities",
	Short: "List known activities",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		activities, err := s.Activities(cmd.Context(), listActivitiesCategory)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(activities))
		for _, a := range activities {
			rows = append(rows, []string{a.Name, a.Category})
		}
		return termio.Table(cmd.OutOrStdout(), []string{"ACTIVITY", "CATEGORY"}, rows)
	},
}

var listCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List known categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listNames(cmd, func(s *store.Store) ([]string, error) {
			return s.Categories(cmd.Context())
		})
	},
}

var listTagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List known tags",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listNames(cmd, func(s *store.Store) ([]string, error) {
			return s.Tags(cmd.Context())
		})
	},
}

func listNames(cmd *cobra.Command, fetch func(*store.Store) ([]string, error)) error {
	s, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	names, err := fetch(s)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}
