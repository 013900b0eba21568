package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ReblochonMasque/dob/internal/fact"
)

var cancelPurge bool

func init() {
	cancelCmd.Flags().BoolVar(&cancelPurge, "purge", false, "Remove the row instead of soft-deleting it")
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(cancelCmd)
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "End the ongoing fact now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		stopped, err := s.StopCurrent(cmd.Context(), time.Now())
		if err != nil {
			return err
		}
		sty := styler(cmd)
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", sty.OK("Stopped:"),
			stopped.FriendlyString(fact.FriendlyOpts{IncludeID: true, ShowElapsed: true}))
		return nil
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Discard the ongoing fact",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		discarded, err := s.CancelCurrent(cmd.Context(), cancelPurge)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Discarded: %s\n",
			discarded.FriendlyString(fact.FriendlyOpts{IncludeID: true}))
		return nil
	},
}
