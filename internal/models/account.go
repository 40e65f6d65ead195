package models

import "time"

// Provider identifies the external aggregator a linked account syncs through.
type Provider string

const (
	ProviderRobinhood Provider = "robinhood"
	ProviderSchwab    Provider = "schwab"
	ProviderPlaid     Provider = "plaid"
	ProviderAkoya     Provider = "akoya"
)

// IsBrokerage returns true for direct brokerage providers.
func (p Provider) IsBrokerage() bool {
	return p == ProviderRobinhood || p == ProviderSchwab
}

// IsBankAggregator returns true for bank-aggregator providers.
func (p Provider) IsBankAggregator() bool {
	return p == ProviderPlaid || p == ProviderAkoya
}

// Valid returns true when the provider is one of the supported tags.
func (p Provider) Valid() bool {
	return p.IsBrokerage() || p.IsBankAggregator()
}

// LinkedAccount is an externally linked financial account.
// It exclusively owns its unified holdings: unlinking removes them.
type LinkedAccount struct {
	ID           string    `json:"id" badgerhold:"key"`
	Name         string    `json:"name"`
	Provider     Provider  `json:"provider"`
	AccountType  string    `json:"account_type"`   // brokerage, retirement, savings
	LastSyncedAt time.Time `json:"last_synced_at"` // updated only by successful fetch cycles
	CreatedAt    time.Time `json:"created_at"`
}

// RawHolding is a provider-native holding record. It is normalized into a
// UnifiedHolding before anything downstream sees it, never persisted as-is.
type RawHolding struct {
	Symbol       string  `json:"symbol"`
	Quantity     float64 `json:"quantity"`
	AvgCost      float64 `json:"avg_cost"`
	CurrentPrice float64 `json:"current_price"`
}

// UnifiedHolding is a single account's position in a symbol, normalized to
// the common schema. MarketValue is always Quantity × CurrentPrice at
// normalization time and is recomputed, never patched independently.
type UnifiedHolding struct {
	ID           string    `json:"id" badgerhold:"key"`
	Symbol       string    `json:"symbol" badgerhold:"index"` // canonical
	Quantity     float64   `json:"quantity"`
	AverageCost  float64   `json:"average_cost"`
	CurrentPrice float64   `json:"current_price"`
	MarketValue  float64   `json:"market_value"`
	AccountID    string    `json:"account_id" badgerhold:"index"`
	AccountName  string    `json:"account_name"`
	Provider     Provider  `json:"provider"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SyncFailure records a per-account fetch failure within a sync cycle.
type SyncFailure struct {
	AccountID   string `json:"account_id"`
	AccountName string `json:"account_name"`
	Reason      string `json:"reason"`
}

// SyncReport is the outcome of a concurrent sync across linked accounts.
// Partial results: synced accounts' holdings are usable even when some
// accounts failed. Failures are reported alongside, never silently dropped.
type SyncReport struct {
	SyncedAccounts int           `json:"synced_accounts"`
	FailedAccounts []SyncFailure `json:"failed_accounts,omitempty"`
	HoldingsTotal  int           `json:"holdings_total"`
	RecordsSkipped int           `json:"records_skipped"` // malformed provider records dropped
	CompletedAt    time.Time     `json:"completed_at"`
}

// AllFailed returns true when no account could be reached at all.
func (r *SyncReport) AllFailed() bool {
	return r.SyncedAccounts == 0 && len(r.FailedAccounts) > 0
}
