package interfaces

import (
	"context"
	"time"

	"github.com/sambrennan/folio/internal/models"
)

// AccountService manages linked accounts and provider sync.
type AccountService interface {
	// LinkAccount registers an externally linked account.
	LinkAccount(ctx context.Context, account *models.LinkedAccount) (*models.LinkedAccount, error)

	// UnlinkAccount removes an account and the holdings it owns.
	UnlinkAccount(ctx context.Context, accountID string) error

	// ListAccounts returns all linked accounts.
	ListAccounts(ctx context.Context) ([]models.LinkedAccount, error)

	// SyncAll fetches holdings from every linked account concurrently with a
	// per-account timeout. Failed accounts are reported in the returned
	// SyncReport alongside the partial results; only total failure is an error.
	SyncAll(ctx context.Context) (*models.SyncReport, error)

	// LastSyncReport returns the most recent persisted sync report, or nil
	// when no sync has completed yet.
	LastSyncReport(ctx context.Context) (*models.SyncReport, error)

	// UnifiedHoldings returns the current normalized holdings across accounts.
	UnifiedHoldings(ctx context.Context) ([]models.UnifiedHolding, error)
}

// PortfolioService manages user-curated portfolios and their valuation.
type PortfolioService interface {
	CreatePortfolio(ctx context.Context, name string) (*models.Portfolio, error)
	GetPortfolio(ctx context.Context, id string) (*models.Portfolio, error)
	ListPortfolios(ctx context.Context) ([]models.Portfolio, error)
	DeletePortfolio(ctx context.Context, id string) error

	AddHolding(ctx context.Context, portfolioID string, holding *models.PortfolioHolding) (*models.PortfolioHolding, error)
	UpdateHolding(ctx context.Context, portfolioID, holdingID string, update *models.PortfolioHolding) (*models.PortfolioHolding, error)
	DeleteHolding(ctx context.Context, portfolioID, holdingID string) error

	// GetSummary recomputes the portfolio summary with refreshed prices.
	// A same-day snapshot is recorded as a best-effort side effect.
	GetSummary(ctx context.Context, portfolioID string) (*models.PortfolioSummary, error)

	// RecordSnapshot stores a snapshot for the given instant. Returns
	// models.ErrSnapshotExists when one exists for that calendar date.
	RecordSnapshot(ctx context.Context, portfolioID string, at time.Time) (*models.PortfolioSnapshot, error)

	// GetPerformance returns range-based performance over the last N days.
	GetPerformance(ctx context.Context, portfolioID string, days int) (*models.PerformanceReport, error)
}

// SentimentService aggregates news sentiment per symbol and per portfolio.
type SentimentService interface {
	// GetSentiment returns the cached record when fresh, else recomputes it
	// from the recent news window. models.ErrNoNews yields a neutral record.
	GetSentiment(ctx context.Context, symbol string) (*models.SentimentRecord, error)

	// GetPortfolioSentiment fetches sentiment for every distinct symbol in
	// the holdings with bounded parallelism. Failed symbols are omitted.
	GetPortfolioSentiment(ctx context.Context, holdings []models.UnifiedHolding) ([]models.SentimentRecord, error)

	// GetNews returns the cached or freshly fetched article window for a symbol.
	GetNews(ctx context.Context, symbol string, limit int) ([]models.NewsArticle, error)
}

// InsightService composes metrics and sentiment for the assistant.
type InsightService interface {
	// GetInsights returns an assistant-written portfolio overview.
	GetInsights(ctx context.Context, portfolioID string) (string, error)

	// SendMessage answers a user question about the portfolio.
	SendMessage(ctx context.Context, portfolioID, userText string) (string, error)
}
