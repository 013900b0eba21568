package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ReblochonMasque/dob/internal/config"
	"github.com/ReblochonMasque/dob/internal/fact"
	"github.com/ReblochonMasque/dob/internal/store"
	"github.com/ReblochonMasque/dob/internal/termio"
)

// openStore opens the configured store and checks it is at the latest
// schema. Callers own Close.
func openStore(ctx context.Context) (*store.Store, error) {
	path, err := config.StorePath()
	if err != nil {
		return nil, err
	}
	if !store.Exists(path) {
		return nil, fmt.Errorf("no store at %s; run `dob init` first", path)
	}

	s, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	if err := s.RequireLatest(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// newResolver builds the time-spec resolver from the configured day start.
func newResolver(now time.Time) (fact.Resolver, error) {
	hour, minute, err := config.DayStart()
	if err != nil {
		return fact.Resolver{}, err
	}
	return fact.Resolver{Now: now, DayStartHour: hour, DayStartMinute: minute}, nil
}

// styler builds the output styler for the command's stdout.
func styler(cmd *cobra.Command) *termio.Styler {
	return termio.NewStyler(config.UseColor(), cmd.OutOrStdout())
}

// printError styles the final error line the way dob reports failures.
func printError(cmd *cobra.Command, err error) {
	s := termio.NewStyler(config.UseColor(), os.Stderr)
	fmt.Fprintln(cmd.ErrOrStderr(), s.Error("Error: "+err.Error()))
}

// parseTimeFlag resolves a --since/--until style value; empty stays zero.
func parseTimeFlag(r fact.Resolver, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return r.ResolveStart(value, r.Now)
}

// buildFilter assembles the store filter shared by list facts, search,
// usage, and export.
type filterFlags struct {
	since    string
	until    string
	activity string
	category string
	tag      string
}

// register adds the shared filter flags to cmd.
func (ff *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&ff.since, "since", "", "Only facts starting at or after this time")
	cmd.Flags().StringVar(&ff.until, "until", "", "Only facts starting at or before this time")
	cmd.Flags().StringVar(&ff.activity, "activity", "", "Only facts with this activity")
	cmd.Flags().StringVar(&ff.category, "category", "", "Only facts in this category")
	cmd.Flags().StringVar(&ff.tag, "tag", "", "Only facts carrying this tag")
}

// filter resolves the flag values against r.
func (ff *filterFlags) filter(r fact.Resolver) (store.Filter, error) {
	var f store.Filter
	var err error
	if f.Since, err = parseTimeFlag(r, ff.since); err != nil {
		return f, fmt.Errorf("parsing --since: %w", err)
	}
	if f.Until, err = parseTimeFlag(r, ff.until); err != nil {
		return f, fmt.Errorf("parsing --until: %w", err)
	}
	f.Activity = ff.activity
	f.Category = ff.category
	f.Tag = ff.tag
	return f, nil
}
