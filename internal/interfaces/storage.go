package interfaces

import (
	"context"
	"time"

	"github.com/sambrennan/folio/internal/models"
)

// StorageManager provides access to all storage areas.
type StorageManager interface {
	Accounts() AccountStorage
	Holdings() HoldingStorage
	Portfolios() PortfolioStorage
	Snapshots() SnapshotStorage
	News() NewsStorage
	Sentiments() SentimentStorage
	KV() KeyValueStorage
	Close() error
}

// AccountStorage persists linked accounts.
type AccountStorage interface {
	GetAccount(ctx context.Context, id string) (*models.LinkedAccount, error)
	SaveAccount(ctx context.Context, account *models.LinkedAccount) error
	ListAccounts(ctx context.Context) ([]models.LinkedAccount, error)
	DeleteAccount(ctx context.Context, id string) error
}

// HoldingStorage persists unified holdings owned by linked accounts.
type HoldingStorage interface {
	// ReplaceAccountHoldings atomically swaps an account's holdings for the
	// freshly synced set (clear-and-replace per sync cycle).
	ReplaceAccountHoldings(ctx context.Context, accountID string, holdings []models.UnifiedHolding) error

	ListHoldings(ctx context.Context) ([]models.UnifiedHolding, error)
	ListAccountHoldings(ctx context.Context, accountID string) ([]models.UnifiedHolding, error)
	DeleteAccountHoldings(ctx context.Context, accountID string) error
}

// PortfolioStorage persists portfolios and their manual holdings.
type PortfolioStorage interface {
	GetPortfolio(ctx context.Context, id string) (*models.Portfolio, error)
	SavePortfolio(ctx context.Context, portfolio *models.Portfolio) error
	ListPortfolios(ctx context.Context) ([]models.Portfolio, error)
	DeletePortfolio(ctx context.Context, id string) error

	GetHolding(ctx context.Context, holdingID string) (*models.PortfolioHolding, error)
	SaveHolding(ctx context.Context, holding *models.PortfolioHolding) error
	ListPortfolioHoldings(ctx context.Context, portfolioID string) ([]models.PortfolioHolding, error)
	DeleteHolding(ctx context.Context, holdingID string) error
	DeletePortfolioHoldings(ctx context.Context, portfolioID string) error
}

// SnapshotStorage persists the append-only snapshot history.
type SnapshotStorage interface {
	// InsertSnapshot stores a snapshot, failing with models.ErrSnapshotExists
	// when one already exists for the (portfolio, calendar date) key.
	// Implementations must be safe under concurrent same-key inserts.
	InsertSnapshot(ctx context.Context, snapshot *models.PortfolioSnapshot) error

	// ListSnapshots returns snapshots from a cutoff onward, ascending by date.
	ListSnapshots(ctx context.Context, portfolioID string, since time.Time) ([]models.PortfolioSnapshot, error)

	DeletePortfolioSnapshots(ctx context.Context, portfolioID string) error
}

// NewsStorage caches fetched articles per symbol.
type NewsStorage interface {
	SaveArticles(ctx context.Context, articles []models.NewsArticle) error

	// ListRecentArticles returns articles for a symbol published after the
	// cutoff, newest first, bounded by limit.
	ListRecentArticles(ctx context.Context, symbol string, since time.Time, limit int) ([]models.NewsArticle, error)
}

// SentimentStorage caches aggregate sentiment records per symbol.
type SentimentStorage interface {
	// GetSentiment returns the cached record, or nil when none is cached.
	GetSentiment(ctx context.Context, symbol string) (*models.SentimentRecord, error)
	SaveSentiment(ctx context.Context, record *models.SentimentRecord) error
}

// KeyValueStorage stores system configuration values.
type KeyValueStorage interface {
	GetKV(ctx context.Context, key string) (string, error)
	SetKV(ctx context.Context, key, value string) error
}
