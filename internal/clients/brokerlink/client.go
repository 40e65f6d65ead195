// Package brokerlink provides sandbox clients for the brokerage providers.
//
// Real brokerage integrations sit behind the same ProviderClient contract;
// the sandbox returns deterministic per-account positions so the sync
// pipeline can run end-to-end without live credentials.
package brokerlink

import (
	"context"
	"hash/fnv"
	"math/rand"

	"github.com/sambrennan/folio/internal/common"
	"github.com/sambrennan/folio/internal/interfaces"
	"github.com/sambrennan/folio/internal/models"
)

var sandboxSymbols = []string{"AAPL", "GOOGL", "TSLA", "MSFT", "NVDA", "AMZN", "META", "NFLX"}

// Client implements ProviderClient for a brokerage provider tag.
type Client struct {
	provider models.Provider
	logger   *common.Logger
}

// NewClient creates a sandbox brokerage client for the given provider tag.
func NewClient(provider models.Provider, logger *common.Logger) *Client {
	return &Client{provider: provider, logger: logger}
}

// Provider returns the tag this client serves.
func (c *Client) Provider() models.Provider {
	return c.provider
}

// FetchHoldings returns the account's positions in provider-native units.
// Deterministic per account ID so repeated syncs agree.
func (c *Client) FetchHoldings(ctx context.Context, account *models.LinkedAccount) ([]models.RawHolding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(accountSeed(account.ID)))

	count := 2 + rng.Intn(4)
	picks := rng.Perm(len(sandboxSymbols))[:count]

	holdings := make([]models.RawHolding, 0, count)
	for _, idx := range picks {
		quantity := 1 + rng.Float64()*19
		avgCost := 50 + rng.Float64()*450
		currentPrice := avgCost * (0.8 + rng.Float64()*0.5)

		holdings = append(holdings, models.RawHolding{
			Symbol:       sandboxSymbols[idx],
			Quantity:     quantity,
			AvgCost:      avgCost,
			CurrentPrice: currentPrice,
		})
	}

	c.logger.Debug().
		Str("provider", string(c.provider)).
		Str("account", account.ID).
		Int("holdings", len(holdings)).
		Msg("Fetched brokerage holdings")

	return holdings, nil
}

func accountSeed(id string) int64 {
	h := fnv.New64a()
	h.Write([]byte(id))
	return int64(h.Sum64())
}

// Ensure Client implements ProviderClient
var _ interfaces.ProviderClient = (*Client)(nil)
