package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ReblochonMasque/dob/internal/fact"
	"github.com/ReblochonMasque/dob/internal/termio"
)

func init() {
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the whole store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		now := time.Now()
		st, err := s.Stats(cmd.Context(), now)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		sty := styler(cmd)
		if st.Facts == 0 {
			fmt.Fprintln(out, sty.Muted("The store is empty. Try `dob now ACTIVITY` to record your first fact."))
			return nil
		}

		fmt.Fprintf(out, "Facts:       %s\n", termio.Count(st.Facts))
		fmt.Fprintf(out, "Activities:  %s\n", termio.Count(st.Activities))
		fmt.Fprintf(out, "Categories:  %s\n", termio.Count(st.Categories))
		fmt.Fprintf(out, "Tags:        %s\n", termio.Count(st.Tags))
		fmt.Fprintf(out, "Tracked:     %s\n",
			sty.Strong(fmt.Sprintf("%s (%s)", fact.FormatDelta(st.Total), fact.FormatDeltaHours(st.Total))))
		fmt.Fprintf(out, "First start: %s\n", st.FirstStart.Format("2006-01-02 15:04"))
		if !st.LastEnd.IsZero() {
			fmt.Fprintf(out, "Last end:    %s\n", st.LastEnd.Format("2006-01-02 15:04"))
		}
		if st.Ongoing {
			fmt.Fprintln(out, "One fact is still ongoing.")
		}
		return nil
	},
}
