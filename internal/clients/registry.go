// Package clients wires provider clients behind a tag-keyed registry.
package clients

import (
	"github.com/sambrennan/folio/internal/clients/brokerlink"
	"github.com/sambrennan/folio/internal/clients/plaidlink"
	"github.com/sambrennan/folio/internal/common"
	"github.com/sambrennan/folio/internal/interfaces"
	"github.com/sambrennan/folio/internal/models"
)

// Registry dispatches provider tags to their clients.
type Registry struct {
	byProvider map[models.Provider]interfaces.ProviderClient
}

// NewRegistry builds a registry from the given clients.
func NewRegistry(providerClients ...interfaces.ProviderClient) *Registry {
	byProvider := make(map[models.Provider]interfaces.ProviderClient, len(providerClients))
	for _, c := range providerClients {
		byProvider[c.Provider()] = c
	}
	return &Registry{byProvider: byProvider}
}

// DefaultRegistry returns a registry covering all supported provider tags.
func DefaultRegistry(logger *common.Logger) *Registry {
	return NewRegistry(
		brokerlink.NewClient(models.ProviderRobinhood, logger),
		brokerlink.NewClient(models.ProviderSchwab, logger),
		plaidlink.NewClient(models.ProviderPlaid, logger),
		plaidlink.NewClient(models.ProviderAkoya, logger),
	)
}

// ClientFor resolves the client for a provider tag.
func (r *Registry) ClientFor(provider models.Provider) (interfaces.ProviderClient, bool) {
	c, ok := r.byProvider[provider]
	return c, ok
}

// Ensure Registry implements ProviderRegistry
var _ interfaces.ProviderRegistry = (*Registry)(nil)
