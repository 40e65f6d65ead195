// Package models defines data structures for Folio
package models

import "errors"

// Sentinel errors for the aggregation and sentiment pipeline.
//
// Record-level and account-level failures are absorbed into partial results
// (see SyncReport); only total failures surface to callers.
var (
	// ErrInvalidSymbol is returned when a provider symbol normalizes to an
	// empty or illegal ticker.
	ErrInvalidSymbol = errors.New("invalid symbol")

	// ErrMalformedHolding is returned for a raw holding with negative or
	// non-finite quantity/price. Per-record: callers skip and continue.
	ErrMalformedHolding = errors.New("malformed holding")

	// ErrProviderFetchFailed is returned when a provider fetch fails for a
	// linked account. Per-account: the sync continues with other accounts.
	ErrProviderFetchFailed = errors.New("provider fetch failed")

	// ErrSnapshotExists is returned when a snapshot already exists for a
	// (portfolio, calendar date) pair. Never silently resolved; the caller
	// decides how to proceed.
	ErrSnapshotExists = errors.New("snapshot already exists for date")

	// ErrNoNews is returned when no articles are found for a symbol. Treated
	// as neutral sentiment with a zero news count, not a caller error.
	ErrNoNews = errors.New("no news available")

	// ErrAssistantUnavailable is returned when the conversational assistant
	// cannot be reached. Callers substitute fallback text.
	ErrAssistantUnavailable = errors.New("assistant unavailable")

	ErrPortfolioNotFound = errors.New("portfolio not found")
	ErrAccountNotFound   = errors.New("account not found")
	ErrHoldingNotFound   = errors.New("holding not found")
)
