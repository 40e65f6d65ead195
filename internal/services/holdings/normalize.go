// Package holdings provides linked-account sync and holding normalization
package holdings

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sambrennan/folio/internal/models"
)

// Fixed precision for the unified schema: 4 decimal places for quantity,
// 2 for currency amounts. Cross-provider records are rounded into this
// representation before any merging so aggregation never mixes precisions.
const (
	quantityPlaces = 4
	currencyPlaces = 2
)

// brokerage exchange suffixes stripped during canonicalization.
var brokerExchangeSuffixes = []string{".US", ".NYSE", ".NASDAQ", ".OTC"}

// NormalizeSymbol canonicalizes a provider ticker. Uppercases, strips
// provider-specific exchange prefixes/suffixes, and validates the result
// against the allowed charset (alphanumeric plus '.' and '-').
//
// Pure and deterministic; downstream merging keys on canonical equality.
func NormalizeSymbol(raw string, provider models.Provider) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(raw))

	if provider.IsBankAggregator() {
		// Bank aggregators qualify with an exchange prefix, e.g. "XNAS:AAPL".
		if idx := strings.LastIndexByte(symbol, ':'); idx >= 0 {
			symbol = symbol[idx+1:]
		}
	} else {
		for _, suffix := range brokerExchangeSuffixes {
			if strings.HasSuffix(symbol, suffix) {
				symbol = strings.TrimSuffix(symbol, suffix)
				break
			}
		}
	}

	if symbol == "" {
		return "", fmt.Errorf("%w: %q", models.ErrInvalidSymbol, raw)
	}
	for _, r := range symbol {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '-':
		default:
			return "", fmt.Errorf("%w: %q", models.ErrInvalidSymbol, raw)
		}
	}

	return symbol, nil
}

// NormalizeHolding maps a provider-native record into the unified schema.
// Returns ErrMalformedHolding for negative or non-finite quantity/price;
// callers drop the record and continue with the rest of the account.
func NormalizeHolding(raw models.RawHolding, account *models.LinkedAccount) (models.UnifiedHolding, error) {
	if !isFinite(raw.Quantity) || !isFinite(raw.AvgCost) || !isFinite(raw.CurrentPrice) {
		return models.UnifiedHolding{}, fmt.Errorf("%w: %s has non-finite values", models.ErrMalformedHolding, raw.Symbol)
	}
	if raw.Quantity < 0 || raw.AvgCost < 0 || raw.CurrentPrice < 0 {
		return models.UnifiedHolding{}, fmt.Errorf("%w: %s has negative values", models.ErrMalformedHolding, raw.Symbol)
	}

	symbol, err := NormalizeSymbol(raw.Symbol, account.Provider)
	if err != nil {
		return models.UnifiedHolding{}, err
	}

	quantity := decimal.NewFromFloat(raw.Quantity).Round(quantityPlaces)
	avgCost := decimal.NewFromFloat(raw.AvgCost).Round(currencyPlaces)
	price := decimal.NewFromFloat(raw.CurrentPrice).Round(currencyPlaces)
	marketValue := quantity.Mul(price).Round(currencyPlaces)

	return models.UnifiedHolding{
		ID:           account.ID + ":" + symbol,
		Symbol:       symbol,
		Quantity:     quantity.InexactFloat64(),
		AverageCost:  avgCost.InexactFloat64(),
		CurrentPrice: price.InexactFloat64(),
		MarketValue:  marketValue.InexactFloat64(),
		AccountID:    account.ID,
		AccountName:  account.Name,
		Provider:     account.Provider,
	}, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
