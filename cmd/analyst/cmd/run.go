package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rustyeddy/analyst/backend"
	"github.com/rustyeddy/analyst/config"
	"github.com/rustyeddy/analyst/journal"
	"github.com/rustyeddy/analyst/pricing"
	"github.com/rustyeddy/analyst/schedule"
	"github.com/rustyeddy/analyst/scheduler"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the analysis scheduler",
	Long: `Run the scheduler loop: at each configured weekday run time, submit an
analysis job per ticker, wait for it to finish, apply the decision to the
portfolio, and save the portfolio at the end of the pass.

Values from a config file override flag defaults; a flag given explicitly
on the command line wins for that field.

Example:
  analyst run --tickers AAPL,MSFT --run-times 09:30,15:30
  analyst run --config analyst.yaml`,
	RunE: runRun,
}

var (
	runConfigPath string
	runTickers    string
	runSet        = runSettings{}
)

// runSettings holds the effective per-field values for the run command
// after flag defaults, flag overrides, and the config file are merged.
type runSettings struct {
	RunTimes      string
	BackendURL    string
	PortfolioPath string
	TotalCash     float64
	PollInterval  time.Duration
	PollMaxWait   time.Duration
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
	runCmd.Flags().StringVarP(&runTickers, "tickers", "t", "", "comma-separated tickers or path to a file with one per line")
	runCmd.Flags().StringVar(&runSet.RunTimes, "run-times", "", "comma-separated HH:MM schedule times")
	runCmd.Flags().StringVarP(&runSet.BackendURL, "backend-url", "b", "http://localhost:8000", "backend base URL")
	runCmd.Flags().StringVarP(&runSet.PortfolioPath, "portfolio", "p", "portfolio.json", "path to portfolio file")
	runCmd.Flags().Float64Var(&runSet.TotalCash, "total-cash", 100000, "starting cash if the portfolio file does not exist")
	runCmd.Flags().DurationVar(&runSet.PollInterval, "poll-interval", scheduler.DefaultPollInterval, "interval between job status checks")
	runCmd.Flags().DurationVar(&runSet.PollMaxWait, "poll-max-wait", 0, "cap on a single job's poll loop (0 = wait forever)")
}

// mergeRunConfig applies config file values on top of s for each field
// the user did not set explicitly on the command line. changed reports
// whether the named flag was given on the command line.
func mergeRunConfig(s *runSettings, cfg *config.Config, changed func(string) bool) {
	if !changed("run-times") && cfg.RunTimes != "" {
		s.RunTimes = cfg.RunTimes
	}
	if !changed("backend-url") && cfg.BackendURL != "" {
		s.BackendURL = cfg.BackendURL
	}
	if !changed("portfolio") && cfg.Portfolio != "" {
		s.PortfolioPath = cfg.Portfolio
	}
	if !changed("total-cash") && cfg.TotalCash != nil {
		s.TotalCash = *cfg.TotalCash
	}
	if !changed("poll-interval") && cfg.Polling.Interval != "" {
		s.PollInterval = config.Duration(cfg.Polling.Interval, s.PollInterval)
	}
	if !changed("poll-max-wait") && cfg.Polling.MaxWait != "" {
		s.PollMaxWait = config.Duration(cfg.Polling.MaxWait, s.PollMaxWait)
	}
}

// resolveRunTickers picks the ticker source: the --tickers flag when given
// explicitly or when the config has none, otherwise the config's list.
func resolveRunTickers(cfg *config.Config, flagValue string, changed func(string) bool) ([]string, error) {
	if changed("tickers") || len(cfg.Tickers) == 0 {
		return config.ResolveTickers(flagValue)
	}
	return cfg.Tickers.Resolve()
}

func runRun(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg := &config.Config{}
	if runConfigPath != "" {
		loaded, err := config.LoadFromFile(runConfigPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	mergeRunConfig(&runSet, cfg, cmd.Flags().Changed)

	tickers, err := resolveRunTickers(cfg, runTickers, cmd.Flags().Changed)
	if err != nil {
		return fmt.Errorf("resolve tickers: %w", err)
	}
	if len(tickers) == 0 {
		return fmt.Errorf("no tickers: pass --tickers or a config file with a 'tickers' entry")
	}

	if runSet.RunTimes == "" {
		return fmt.Errorf("no run times: pass --run-times or a config file with a 'run_times' entry")
	}
	marks, err := schedule.ParseMarks(runSet.RunTimes)
	if err != nil {
		return fmt.Errorf("parse run times: %w", err)
	}

	ledger, err := cfg.LoadLedger(runSet.PortfolioPath, runSet.TotalCash)
	if err != nil {
		return err
	}

	jrnl, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer jrnl.Close()

	sched := scheduler.New(
		backend.NewClient(runSet.BackendURL, log),
		pricing.NewClient(runSet.BackendURL, log),
		ledger,
		jrnl,
		scheduler.Options{
			Tickers:       tickers,
			Marks:         marks,
			PortfolioPath: runSet.PortfolioPath,
			PollInterval:  runSet.PollInterval,
			PollMaxWait:   runSet.PollMaxWait,
			Tick:          config.Duration(cfg.Polling.Tick, scheduler.DefaultTick),
		},
		log,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	log.Info().
		Float64("cash", sched.Ledger().Cash).
		Int("positions", len(sched.Ledger().Positions)).
		Msg("shutting down")
	return nil
}

func openJournal(cfg config.Journal) (journal.Journal, error) {
	switch cfg.Type {
	case "sqlite":
		return journal.NewSQLite(cfg.DBPath)
	case "csv":
		return journal.NewCSV(cfg.DecisionsFile, cfg.PassesFile)
	default:
		return journal.Nop{}, nil
	}
}
