package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ReblochonMasque/dob/internal/fact"
)

var (
	editStart       string
	editEnd         string
	editActivity    string
	editCategory    string
	editTags        []string
	editDescription string
)

func init() {
	editCmd.Flags().StringVar(&editStart, "start", "", "New start time")
	editCmd.Flags().StringVar(&editEnd, "end", "", "New end time (\"\" keeps, \"-\" clears)")
	editCmd.Flags().StringVar(&editActivity, "activity", "", "New activity name")
	editCmd.Flags().StringVar(&editCategory, "category", "", "New category name")
	editCmd.Flags().StringArrayVar(&editTags, "tag", nil, "Replacement tags (repeatable)")
	editCmd.Flags().StringVar(&editDescription, "description", "", "New description")
	rootCmd.AddCommand(editCmd)
}

var editCmd = &cobra.Command{
	Use:   "edit PK",
	Short: "Edit a saved fact field by field",
	Long: `Rewrite fields of a saved fact. Unset flags keep the stored value;
edits go through the same validation and overlap checks as adding.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pk, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("fact key %q is not a number", args[0])
		}

		ctx := cmd.Context()
		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		f, err := s.GetFact(ctx, pk)
		if err != nil {
			return err
		}

		r, err := newResolver(time.Now())
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("start") {
			start, err := r.ResolveStart(editStart, r.Now)
			if err != nil {
				return fmt.Errorf("parsing --start: %w", err)
			}
			f.Start = start
		}
		if cmd.Flags().Changed("end") {
			if editEnd == "-" {
				f.End = nil
			} else {
				end, err := r.ResolveEnd(editEnd, f.Start)
				if err != nil {
					return fmt.Errorf("parsing --end: %w", err)
				}
				f.End = &end
			}
		}
		if cmd.Flags().Changed("activity") {
			f.Activity = editActivity
		}
		if cmd.Flags().Changed("category") {
			f.Category = editCategory
		}
		if cmd.Flags().Changed("tag") {
			f.Tags = editTags
		}
		if cmd.Flags().Changed("description") {
			f.Description = editDescription
		}

		if err := s.UpdateFact(ctx, f); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved: %s\n",
			f.FriendlyString(fact.FriendlyOpts{IncludeID: true}))
		return nil
	},
}
