package cmd

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "analyst",
	Short: "Scheduled stock analysis runner with a local portfolio ledger",
	Long: `Analyst periodically submits per-ticker analysis jobs to a backend
service, waits for each job to finish, and applies the resulting buy/sell
decisions to a locally persisted portfolio.

It provides tools for:
  - Running the scheduler daemon against a backend API
  - Generating and validating configuration files
  - Inspecting the current portfolio ledger
  - Querying the pass/decision journal`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// newLogger builds the process logger. Console output is what a local
// scheduler wants; pipe it somewhere structured if you must.
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
