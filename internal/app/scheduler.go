package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sambrennan/folio/internal/common"
	"github.com/sambrennan/folio/internal/interfaces"
	"github.com/sambrennan/folio/internal/models"
)

// Scheduler runs the background jobs: a nightly snapshot of every portfolio
// and a periodic sentiment refresh across held symbols.
type Scheduler struct {
	cron   *cron.Cron
	logger *common.Logger
}

// NewScheduler registers the cron jobs from the configured expressions.
func NewScheduler(config *common.Config, portfolios interfaces.PortfolioService, sentiments interfaces.SentimentService, accounts interfaces.AccountService, logger *common.Logger) (*Scheduler, error) {
	c := cron.New()

	snapshotJob := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		runSnapshotJob(ctx, portfolios, logger)
	}
	if _, err := c.AddFunc(config.Scheduler.SnapshotCron, snapshotJob); err != nil {
		return nil, fmt.Errorf("invalid snapshot cron %q: %w", config.Scheduler.SnapshotCron, err)
	}

	sentimentJob := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		runSentimentJob(ctx, accounts, portfolios, sentiments, logger)
	}
	if _, err := c.AddFunc(config.Scheduler.SentimentCron, sentimentJob); err != nil {
		return nil, fmt.Errorf("invalid sentiment cron %q: %w", config.Scheduler.SentimentCron, err)
	}

	return &Scheduler{cron: c, logger: logger}, nil
}

// Start begins running the registered jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Msg("Scheduler started")
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Scheduler stopped")
}

// runSnapshotJob records a snapshot for every portfolio. A portfolio that
// already has one for today is skipped, not an error.
func runSnapshotJob(ctx context.Context, portfolios interfaces.PortfolioService, logger *common.Logger) {
	start := time.Now()

	list, err := portfolios.ListPortfolios(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Snapshot job: portfolio listing failed")
		return
	}

	var recorded, skipped int
	for i := range list {
		_, err := portfolios.RecordSnapshot(ctx, list[i].ID, time.Now())
		switch {
		case err == nil:
			recorded++
		case err == models.ErrSnapshotExists:
			skipped++
		default:
			logger.Warn().Err(err).Str("portfolio_id", list[i].ID).Msg("Snapshot job: snapshot failed")
		}
	}

	logger.Info().
		Int("recorded", recorded).
		Int("skipped", skipped).
		Dur("elapsed", time.Since(start)).
		Msg("Snapshot job: complete")
}

// runSentimentJob re-syncs accounts and warms the sentiment cache for every
// symbol currently held, across linked accounts and portfolios.
func runSentimentJob(ctx context.Context, accounts interfaces.AccountService, portfolios interfaces.PortfolioService, sentiments interfaces.SentimentService, logger *common.Logger) {
	start := time.Now()

	if report, err := accounts.SyncAll(ctx); err != nil {
		logger.Warn().Err(err).Msg("Sentiment job: account sync failed")
	} else if len(report.FailedAccounts) > 0 {
		logger.Warn().Int("failed", len(report.FailedAccounts)).Msg("Sentiment job: some accounts did not sync")
	}

	holdings, err := accounts.UnifiedHoldings(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Sentiment job: holdings listing failed")
		return
	}

	list, err := portfolios.ListPortfolios(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Sentiment job: portfolio listing failed")
	} else {
		for i := range list {
			summary, err := portfolios.GetSummary(ctx, list[i].ID)
			if err != nil {
				continue
			}
			for _, g := range summary.Holdings {
				holdings = append(holdings, models.UnifiedHolding{Symbol: g.Symbol})
			}
		}
	}

	records, err := sentiments.GetPortfolioSentiment(ctx, holdings)
	if err != nil {
		logger.Warn().Err(err).Msg("Sentiment job: refresh failed")
		return
	}

	logger.Info().
		Int("symbols", len(records)).
		Dur("elapsed", time.Since(start)).
		Msg("Sentiment job: complete")
}
