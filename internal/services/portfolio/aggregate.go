// Package portfolio provides portfolio valuation, snapshots, and performance
package portfolio

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sambrennan/folio/internal/models"
)

var oneHundred = decimal.NewFromInt(100)

// symbolGroup accumulates one symbol's positions in exact arithmetic.
type symbolGroup struct {
	symbol      string
	quantity    decimal.Decimal
	costBasis   decimal.Decimal // Σ quantityᵢ × averageCostᵢ
	marketValue decimal.Decimal // Σ quantityᵢ × priceᵢ, each at its own provider's price
	accounts    int
}

// Aggregate merges unified holdings by canonical symbol and computes
// portfolio totals and allocation.
//
// Merge rules per symbol: quantity is the plain sum; average cost is the
// dollar-cost-weighted mean Σ(qᵢ·cᵢ)/Σqᵢ, so total cost basis is invariant
// under how many accounts hold the symbol; market value sums each position
// at its own provider's latest price; differing prices across accounts are
// accepted as display-level imprecision, not an error.
//
// Edge policies: gain/loss percent is 0 (not NaN or Inf) when cost basis is
// 0; every allocation is 0 when total market value is 0; allocations are not
// renormalized to sum to exactly 100.
func Aggregate(holdings []models.UnifiedHolding) *models.PortfolioSummary {
	groups := make(map[string]*symbolGroup)
	for i := range holdings {
		h := &holdings[i]
		g, ok := groups[h.Symbol]
		if !ok {
			g = &symbolGroup{symbol: h.Symbol}
			groups[h.Symbol] = g
		}
		quantity := decimal.NewFromFloat(h.Quantity)
		g.quantity = g.quantity.Add(quantity)
		g.costBasis = g.costBasis.Add(quantity.Mul(decimal.NewFromFloat(h.AverageCost)))
		g.marketValue = g.marketValue.Add(quantity.Mul(decimal.NewFromFloat(h.CurrentPrice)))
		g.accounts++
	}

	var totalCost, totalValue decimal.Decimal
	for _, g := range groups {
		totalCost = totalCost.Add(g.costBasis)
		totalValue = totalValue.Add(g.marketValue)
	}

	merged := make([]models.HoldingGroup, 0, len(groups))
	for _, g := range groups {
		avgCost := decimal.Zero
		if !g.quantity.IsZero() {
			avgCost = g.costBasis.Div(g.quantity)
		}

		gainLoss := g.marketValue.Sub(g.costBasis)
		gainLossPct := decimal.Zero
		if !g.costBasis.IsZero() {
			gainLossPct = gainLoss.Div(g.costBasis).Mul(oneHundred)
		}

		allocation := decimal.Zero
		if !totalValue.IsZero() {
			allocation = g.marketValue.Div(totalValue).Mul(oneHundred)
		}

		merged = append(merged, models.HoldingGroup{
			Symbol:          g.symbol,
			Quantity:        g.quantity.InexactFloat64(),
			AverageCost:     avgCost.Round(4).InexactFloat64(),
			MarketValue:     g.marketValue.Round(2).InexactFloat64(),
			CostBasis:       g.costBasis.Round(2).InexactFloat64(),
			GainLoss:        gainLoss.Round(2).InexactFloat64(),
			GainLossPercent: gainLossPct.Round(2).InexactFloat64(),
			AllocationPct:   allocation.Round(2).InexactFloat64(),
			Accounts:        g.accounts,
		})
	}

	// Descending market value, ties broken by symbol, for stable output.
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].MarketValue != merged[j].MarketValue {
			return merged[i].MarketValue > merged[j].MarketValue
		}
		return merged[i].Symbol < merged[j].Symbol
	})

	totalGainLoss := totalValue.Sub(totalCost)
	totalGainLossPct := decimal.Zero
	if !totalCost.IsZero() {
		totalGainLossPct = totalGainLoss.Div(totalCost).Mul(oneHundred)
	}

	return &models.PortfolioSummary{
		Holdings:             merged,
		TotalHoldings:        len(merged),
		TotalCostBasis:       totalCost.Round(2).InexactFloat64(),
		TotalMarketValue:     totalValue.Round(2).InexactFloat64(),
		TotalGainLoss:        totalGainLoss.Round(2).InexactFloat64(),
		TotalGainLossPercent: totalGainLossPct.Round(2).InexactFloat64(),
		ComputedAt:           time.Now(),
	}
}
