// Package plaidlink provides sandbox clients for the bank-aggregator providers.
package plaidlink

import (
	"context"
	"hash/fnv"
	"math/rand"

	"github.com/sambrennan/folio/internal/common"
	"github.com/sambrennan/folio/internal/interfaces"
	"github.com/sambrennan/folio/internal/models"
)

// Client implements ProviderClient for a bank-aggregator provider tag.
type Client struct {
	provider models.Provider
	logger   *common.Logger
}

// NewClient creates a sandbox bank-aggregator client for the given provider tag.
func NewClient(provider models.Provider, logger *common.Logger) *Client {
	return &Client{provider: provider, logger: logger}
}

// Provider returns the tag this client serves.
func (c *Client) Provider() models.Provider {
	return c.provider
}

// FetchHoldings returns the account's holdings. Bank accounts carry cash
// positions only; deterministic per account ID so repeated syncs agree.
func (c *Client) FetchHoldings(ctx context.Context, account *models.LinkedAccount) ([]models.RawHolding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h := fnv.New64a()
	h.Write([]byte(account.ID))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	balance := 1000 + rng.Float64()*49000

	c.logger.Debug().
		Str("provider", string(c.provider)).
		Str("account", account.ID).
		Float64("balance", balance).
		Msg("Fetched bank holdings")

	return []models.RawHolding{{
		Symbol:       "USD",
		Quantity:     balance,
		AvgCost:      1.0,
		CurrentPrice: 1.0,
	}}, nil
}

// Ensure Client implements ProviderClient
var _ interfaces.ProviderClient = (*Client)(nil)
