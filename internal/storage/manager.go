// Package storage wires the storage areas behind interfaces.StorageManager.
package storage

import (
	"fmt"

	"github.com/sambrennan/folio/internal/common"
	"github.com/sambrennan/folio/internal/interfaces"
	"github.com/sambrennan/folio/internal/storage/badger"
)

// Manager implements interfaces.StorageManager over a single embedded store.
type Manager struct {
	store      *badger.Store
	accounts   interfaces.AccountStorage
	holdings   interfaces.HoldingStorage
	portfolios interfaces.PortfolioStorage
	snapshots  interfaces.SnapshotStorage
	news       interfaces.NewsStorage
	sentiments interfaces.SentimentStorage
	kv         interfaces.KeyValueStorage
	logger     *common.Logger
}

// NewManager opens the embedded store and initializes all storage areas.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	store, err := badger.NewStore(logger, config.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	return &Manager{
		store:      store,
		accounts:   badger.NewAccountStorage(store, logger),
		holdings:   badger.NewHoldingStorage(store, logger),
		portfolios: badger.NewPortfolioStorage(store, logger),
		snapshots:  badger.NewSnapshotStorage(store, logger),
		news:       badger.NewNewsStorage(store, logger),
		sentiments: badger.NewSentimentStorage(store, logger),
		kv:         badger.NewKVStorage(store, logger),
		logger:     logger,
	}, nil
}

func (m *Manager) Accounts() interfaces.AccountStorage     { return m.accounts }
func (m *Manager) Holdings() interfaces.HoldingStorage     { return m.holdings }
func (m *Manager) Portfolios() interfaces.PortfolioStorage { return m.portfolios }
func (m *Manager) Snapshots() interfaces.SnapshotStorage   { return m.snapshots }
func (m *Manager) News() interfaces.NewsStorage            { return m.news }
func (m *Manager) Sentiments() interfaces.SentimentStorage { return m.sentiments }
func (m *Manager) KV() interfaces.KeyValueStorage          { return m.kv }

// Close releases the underlying store.
func (m *Manager) Close() error {
	return m.store.Close()
}

// Ensure Manager implements StorageManager
var _ interfaces.StorageManager = (*Manager)(nil)
