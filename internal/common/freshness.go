// Package common provides shared utilities for Folio
package common

import "time"

// Freshness TTLs for cached data components
const (
	FreshnessSentiment = 4 * time.Hour       // aggregated per-symbol sentiment
	FreshnessNews      = 24 * time.Hour      // fetched article window
	FreshnessQuote     = 15 * time.Minute    // market quotes
	FreshnessSync      = 1 * time.Hour       // linked-account holdings
)

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}
