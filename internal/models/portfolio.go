package models

import "time"

// Portfolio is a user-curated grouping of holdings, independent of linked
// accounts. It exclusively owns its holdings and snapshots.
type Portfolio struct {
	ID        string    `json:"id" badgerhold:"key"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PortfolioHolding is a manually tracked position within a portfolio.
// CurrentPrice is refreshed from the price client on reads and updates.
type PortfolioHolding struct {
	ID           string    `json:"id" badgerhold:"key"`
	PortfolioID  string    `json:"portfolio_id" badgerhold:"index"`
	Symbol       string    `json:"symbol"`
	Quantity     float64   `json:"quantity"`
	AverageCost  float64   `json:"average_cost"`
	CurrentPrice float64   `json:"current_price"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Unified projects the manual holding onto the common merge schema so the
// aggregation engine has a single input type for both data paths.
func (h *PortfolioHolding) Unified() UnifiedHolding {
	return UnifiedHolding{
		ID:           h.ID,
		Symbol:       h.Symbol,
		Quantity:     h.Quantity,
		AverageCost:  h.AverageCost,
		CurrentPrice: h.CurrentPrice,
		MarketValue:  h.Quantity * h.CurrentPrice,
		AccountID:    "portfolio:" + h.PortfolioID,
		UpdatedAt:    h.UpdatedAt,
	}
}

// HoldingGroup is a per-symbol merge of holdings across accounts.
type HoldingGroup struct {
	Symbol          string  `json:"symbol"`
	Quantity        float64 `json:"quantity"`
	AverageCost     float64 `json:"average_cost"` // dollar-cost weighted
	MarketValue     float64 `json:"market_value"`
	CostBasis       float64 `json:"cost_basis"`
	GainLoss        float64 `json:"gain_loss"`
	GainLossPercent float64 `json:"gain_loss_percent"`
	AllocationPct   float64 `json:"allocation_pct"`
	Accounts        int     `json:"accounts"` // number of positions merged
}

// PortfolioSummary aggregates holdings into totals and an allocation
// breakdown. Recomputed on every read, never persisted.
type PortfolioSummary struct {
	PortfolioID          string         `json:"portfolio_id,omitempty"`
	PortfolioName        string         `json:"portfolio_name,omitempty"`
	Holdings             []HoldingGroup `json:"holdings"`
	TotalHoldings        int            `json:"total_holdings"`
	TotalCostBasis       float64        `json:"total_cost_basis"`
	TotalMarketValue     float64        `json:"total_market_value"`
	TotalGainLoss        float64        `json:"total_gain_loss"`
	TotalGainLossPercent float64        `json:"total_gain_loss_percent"` // 0 when cost basis is 0
	ComputedAt           time.Time      `json:"computed_at"`
}

// PortfolioSnapshot is an immutable, dated record of portfolio valuation.
// Append-only: one per portfolio per calendar day, never mutated.
type PortfolioSnapshot struct {
	ID                   string    `json:"id" badgerhold:"key"`
	PortfolioID          string    `json:"portfolio_id" badgerhold:"index"`
	TotalValue           float64   `json:"total_value"`
	TotalCostBasis       float64   `json:"total_cost_basis"`
	TotalGainLoss        float64   `json:"total_gain_loss"`
	TotalGainLossPercent float64   `json:"total_gain_loss_percent"`
	SnapshotDate         time.Time `json:"snapshot_date"`
}

// DateKey returns the calendar-date idempotence key for a snapshot.
func (s *PortfolioSnapshot) DateKey() string {
	return s.PortfolioID + ":" + s.SnapshotDate.UTC().Format("2006-01-02")
}

// PerformanceReport is the range-based performance of a portfolio.
// InitialValue and TotalReturn are nil when no snapshots fall in range, so
// "no data" stays distinct from "zero value". CurrentValue is always the live
// recomputed summary value, not the last stored snapshot.
type PerformanceReport struct {
	PortfolioID        string              `json:"portfolio_id"`
	PortfolioName      string              `json:"portfolio_name"`
	DataPoints         []PortfolioSnapshot `json:"data_points"`
	CurrentValue       float64             `json:"current_value"`
	InitialValue       *float64            `json:"initial_value"`
	TotalReturn        *float64            `json:"total_return"`
	TotalReturnPercent *float64            `json:"total_return_percent"`
}
