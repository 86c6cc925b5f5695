// Package scheduler drives the analysis loop: it waits for the next
// configured run time, then runs one pass over the ticker list, applying
// each job's decision to the portfolio and persisting it.
package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/analyst/backend"
	"github.com/rustyeddy/analyst/journal"
	"github.com/rustyeddy/analyst/pkg/id"
	"github.com/rustyeddy/analyst/portfolio"
	"github.com/rustyeddy/analyst/pricing"
	"github.com/rustyeddy/analyst/schedule"
)

// Backend is the slice of the analysis client the scheduler needs.
type Backend interface {
	Start(ctx context.Context, req backend.StartRequest) (string, error)
	WaitForCompletion(ctx context.Context, runID string, interval, maxWait time.Duration) error
	Result(ctx context.Context, runID string) (*backend.Result, error)
}

const (
	// DefaultNumOfNews is how many news items each analysis job considers.
	DefaultNumOfNews = 5

	DefaultPollInterval = 5 * time.Second
	DefaultTick         = 30 * time.Second
)

// Options configures a Scheduler. Zero durations fall back to the
// defaults above; a zero PollMaxWait means polls are unbounded.
type Options struct {
	Tickers       []string
	Marks         []schedule.Mark
	PortfolioPath string
	PollInterval  time.Duration
	PollMaxWait   time.Duration
	Tick          time.Duration
}

// Scheduler owns the ledger for the lifetime of the process. It is
// strictly single-threaded: one pass at a time, one save per pass.
type Scheduler struct {
	backend Backend
	prices  pricing.Source
	ledger  *portfolio.Portfolio
	journal journal.Journal
	log     zerolog.Logger

	opts    Options
	nextRun time.Time
}

// New builds a Scheduler. The journal may be journal.Nop{}.
func New(b Backend, prices pricing.Source, ledger *portfolio.Portfolio, jrnl journal.Journal, opts Options, log zerolog.Logger) *Scheduler {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Tick <= 0 {
		opts.Tick = DefaultTick
	}
	return &Scheduler{
		backend: b,
		prices:  prices,
		ledger:  ledger,
		journal: jrnl,
		opts:    opts,
		log:     log.With().Str("component", "scheduler").Logger(),
	}
}

// Ledger exposes the portfolio, for reporting after Run returns.
func (s *Scheduler) Ledger() *portfolio.Portfolio {
	return s.ledger
}

// Run blocks until ctx is cancelled. It fires a pass whenever the wall
// clock reaches the next eligible run time, saves the ledger after every
// pass (even one that ended early), and reschedules from one second past
// the firing instant so the same mark cannot trigger twice.
func (s *Scheduler) Run(ctx context.Context) error {
	s.nextRun = schedule.NextRun(time.Now(), s.opts.Marks)
	s.log.Info().
		Time("next_run", s.nextRun).
		Strs("tickers", s.opts.Tickers).
		Msg("scheduler started")

	for {
		now := time.Now()
		if !now.Before(s.nextRun) {
			s.log.Info().Time("fired_at", now).Msg("starting scheduled pass")

			if err := s.RunPass(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.log.Error().Err(err).Msg("pass ended early")
			}
			if err := s.ledger.Save(s.opts.PortfolioPath); err != nil {
				s.log.Error().Err(err).Msg("failed to save portfolio")
			} else {
				s.log.Info().
					Float64("cash", s.ledger.Cash).
					Int("positions", len(s.ledger.Positions)).
					Msg("portfolio saved")
			}

			s.nextRun = schedule.NextRun(now.Add(time.Second), s.opts.Marks)
			s.log.Info().Time("next_run", s.nextRun).Msg("pass complete")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.opts.Tick):
		}
	}
}

// RunPass processes every ticker once, in list order. Per-ticker
// problems (price feed down, job refused) are logged and skipped; a
// transport failure while polling or fetching a result aborts the rest
// of the pass, and decisions already applied stay applied.
func (s *Scheduler) RunPass(ctx context.Context) error {
	passID := id.New()
	start := time.Now()
	applied, skipped := 0, 0

	log := s.log.With().Str("pass_id", passID).Logger()

	defer func() {
		rec := journal.PassRecord{
			PassID:    passID,
			Start:     start,
			End:       time.Now(),
			Tickers:   len(s.opts.Tickers),
			Applied:   applied,
			Skipped:   skipped,
			CashAfter: s.ledger.Cash,
		}
		if err := s.journal.RecordPass(rec); err != nil {
			log.Warn().Err(err).Msg("failed to journal pass")
		}
	}()

	for _, ticker := range s.opts.Tickers {
		price, err := s.prices.LatestClose(ctx, ticker)
		if err != nil {
			log.Warn().Err(err).Str("ticker", ticker).Msg("price fetch failed, using 0")
			price = 0
		}

		held := s.ledger.Shares(ticker)
		if held > 0 {
			s.ledger.UpdatePrice(ticker, price)
		}

		runID, err := s.backend.Start(ctx, backend.StartRequest{
			Ticker:          ticker,
			ShowReasoning:   true,
			NumOfNews:       DefaultNumOfNews,
			InitialCapital:  s.ledger.Cash,
			InitialPosition: held,
		})
		if err != nil || runID == "" {
			log.Warn().Err(err).Str("ticker", ticker).Msg("failed to start analysis")
			skipped++
			continue
		}
		log.Info().Str("ticker", ticker).Str("run_id", runID).Msg("analysis started")

		if err := s.backend.WaitForCompletion(ctx, runID, s.opts.PollInterval, s.opts.PollMaxWait); err != nil {
			return err
		}

		res, err := s.backend.Result(ctx, runID)
		if err != nil {
			return err
		}

		if d, ok := res.Decision(); ok {
			s.ledger.ApplyDecision(ticker, d, price)
			applied++
			log.Info().
				Str("ticker", ticker).
				Str("action", d.Action).
				Int("quantity", d.Quantity).
				Float64("price", price).
				Float64("cash", s.ledger.Cash).
				Msg("decision applied")

			rec := journal.DecisionRecord{
				PassID:    passID,
				Ticker:    ticker,
				Action:    d.Action,
				Quantity:  d.Quantity,
				Price:     price,
				CashAfter: s.ledger.Cash,
				Time:      time.Now(),
			}
			if err := s.journal.RecordDecision(rec); err != nil {
				log.Warn().Err(err).Str("ticker", ticker).Msg("failed to journal decision")
			}
		} else {
			skipped++
			log.Info().Str("ticker", ticker).Msg("no usable decision")
		}

		s.ledger.UpdatePrice(ticker, price)
	}

	return nil
}
