package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ReblochonMasque/dob/internal/config"
	"github.com/ReblochonMasque/dob/internal/fact"
	"github.com/ReblochonMasque/dob/internal/store"
	"github.com/ReblochonMasque/dob/internal/termio"
)

var (
	addYes bool
	addDry bool
)

func init() {
	for _, cmd := range []*cobra.Command{
		nowCmd, atCmd, fromCmd, untilCmd, afterCmd, thenCmd, stillCmd,
	} {
		cmd.Flags().BoolVarP(&addYes, "yes", "y", false, "Skip confirmation prompts")
		cmd.Flags().BoolVar(&addDry, "dry", false, "Parse and resolve only; save nothing")
		rootCmd.AddCommand(cmd)
	}
	rootCmd.AddCommand(currentCmd)
	rootCmd.AddCommand(latestCmd)
}

var nowCmd = &cobra.Command{
	Use:   "now [FACTOID...]",
	Short: "Show the ongoing fact, or start one now",
	Long: `Without arguments, show the ongoing fact. With a factoid, start a new
fact at this moment:

  dob now coding@work #python: fixing the parser`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return showCurrent(cmd)
		}
		return addFact(cmd, args, fact.HintNone)
	},
}

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the ongoing fact",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return showCurrent(cmd)
	},
}

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the most recently ended fact",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		f, err := s.LatestFact(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), f.FriendlyString(fact.FriendlyOpts{IncludeID: true, ShowElapsed: true}))
		return nil
	},
}

var atCmd = &cobra.Command{
	Use:   "at TIME FACTOID...",
	Short: "Start a fact at an explicit time",
	Long: `Start a fact at the given time, leaving it ongoing. An end is tolerated
too ("dob at 08:00 to 09:30 ..." records a completed fact).`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return addFact(cmd, args, fact.HintStart)
	},
}

var fromCmd = &cobra.Command{
	Use:   "from START to END FACTOID...",
	Short: "Record a completed fact between two times",
	Args:  cobra.MinimumNArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		return addFact(cmd, args, fact.HintBoth)
	},
}

var untilCmd = &cobra.Command{
	Use:     "until TIME FACTOID...",
	Aliases: []string{"to"},
	Short:   "Record a fact from the previous end until a time",
	Long: `Record a fact starting where the previous fact left off and ending at
the given time.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return addFact(cmd, args, fact.HintEnd)
	},
}

var afterCmd = &cobra.Command{
	Use:     "after FACTOID...",
	Aliases: []string{"next"},
	Short:   "Start a fact where the previous one left off",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return addFact(cmd, args, fact.HintAfter)
	},
}

var thenCmd = &cobra.Command{
	Use:   "then [TIME] FACTOID...",
	Short: "Start a fact at a time, defaulting to the previous end",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return addFact(cmd, args, fact.HintThen)
	},
}

var stillCmd = &cobra.Command{
	Use:   "still [FACTOID...]",
	Short: "Continue the previous fact's activity and tags",
	Long: `Start a fact where the previous one left off, copying the previous
activity, category, and tags when the factoid omits them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return addFact(cmd, args, fact.HintStill)
	},
}

// showCurrent prints the ongoing fact, or the no-active-fact hint.
func showCurrent(cmd *cobra.Command) error {
	s, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	cur, err := s.CurrentFact(cmd.Context())
	if errors.Is(err, store.ErrNoCurrentFact) {
		fmt.Fprintln(cmd.OutOrStdout(),
			styler(cmd).Muted("No active fact. Try `dob now ACTIVITY@CATEGORY: DESCRIPTION` to start one."))
		return err
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cur.FriendlyString(fact.FriendlyOpts{IncludeID: true, ShowElapsed: true}))
	return nil
}

// addFact is the shared path of every fact-creating command: parse the
// factoid per the hint, resolve and mend against the store, confirm when
// an ongoing fact would be stopped, save, echo.
func addFact(cmd *cobra.Command, args []string, hint fact.TimeHint) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	separators, err := config.Separators()
	if err != nil {
		return err
	}
	factoid, err := fact.ParseFactoid(strings.Join(args, " "), hint, separators)
	if err != nil {
		return err
	}

	r, err := newResolver(time.Now())
	if err != nil {
		return err
	}

	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	in, err := s.MendInput(ctx)
	if err != nil {
		return err
	}
	in.Hint = hint
	in.Factoid = factoid

	m, err := r.Mend(in)
	if err != nil {
		return err
	}

	if addDry {
		fmt.Fprintln(out, "Would save:")
		fmt.Fprintf(out, "  %s\n", m.New.FriendlyString(fact.FriendlyOpts{}))
		if m.StopOngoing != nil {
			fmt.Fprintln(out, "Would stop:")
			fmt.Fprintf(out, "  %s\n", m.StopOngoing.FriendlyString(fact.FriendlyOpts{IncludeID: true}))
		}
		return nil
	}

	if m.StopOngoing != nil && !addYes {
		prompt := fmt.Sprintf("Stop the ongoing fact %s at %s?",
			m.StopOngoing.ActCat(), m.StopOngoing.EndString())
		if !termio.Confirm(os.Stdin, out, prompt) {
			fmt.Fprintln(out, "Nothing saved.")
			return nil
		}
	}

	if err := s.AddMended(ctx, m); err != nil {
		return err
	}

	sty := styler(cmd)
	if m.StopOngoing != nil {
		fmt.Fprintf(out, "Stopped: %s\n", m.StopOngoing.FriendlyString(fact.FriendlyOpts{IncludeID: true}))
	}
	fmt.Fprintf(out, "%s %s\n", sty.OK("Saved:"),
		m.New.FriendlyString(fact.FriendlyOpts{IncludeID: true, ShowElapsed: m.New.Ongoing()}))
	return nil
}
