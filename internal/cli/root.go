package cli

import (
	"github.com/spf13/cobra"

	"github.com/ReblochonMasque/dob/internal/config"
	"github.com/ReblochonMasque/dob/internal/log"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var rootCmd = &cobra.Command{
	Use:   "dob",
	Short: "journal and time tracker for the terminal",
	Long: `dob is a journal and time tracker for the terminal. Facts (intervals
with an activity, optional category, tags, and a description) are
recorded into a local SQLite store, then listed, searched, aggregated,
exported, and imported.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()

		logFile, _ := config.LogFile()
		log.Configure(log.Config{
			Level:   config.LogLevel(),
			File:    logFile,
			Console: config.LogConsole(),
		})
		baseLogger := log.Base()
		baseLogger.Debug().
			Str("command", cmd.CommandPath()).
			Str("version", buildVersion).
			Msg("dispatching")
	},
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	if err := rootCmd.Execute(); err != nil {
		printError(rootCmd, err)
		return err
	}
	return nil
}
