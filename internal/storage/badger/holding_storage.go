package badger

import (
	"context"
	"fmt"

	"github.com/sambrennan/folio/internal/common"
	"github.com/sambrennan/folio/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

type holdingStorage struct {
	store  *Store
	logger *common.Logger
}

// NewHoldingStorage creates a new HoldingStorage backed by BadgerHold.
func NewHoldingStorage(store *Store, logger *common.Logger) *holdingStorage {
	return &holdingStorage{store: store, logger: logger}
}

// ReplaceAccountHoldings clears the account's previous holdings and stores
// the freshly synced set. Each sync cycle owns the full account view.
func (s *holdingStorage) ReplaceAccountHoldings(ctx context.Context, accountID string, holdings []models.UnifiedHolding) error {
	if err := s.DeleteAccountHoldings(ctx, accountID); err != nil {
		return err
	}
	for i := range holdings {
		h := holdings[i]
		if err := s.store.db.Upsert(h.ID, &h); err != nil {
			return fmt.Errorf("failed to save holding %s/%s: %w", accountID, h.Symbol, err)
		}
	}
	s.logger.Debug().Str("account", accountID).Int("holdings", len(holdings)).Msg("Account holdings replaced")
	return nil
}

func (s *holdingStorage) ListHoldings(_ context.Context) ([]models.UnifiedHolding, error) {
	var holdings []models.UnifiedHolding
	if err := s.store.db.Find(&holdings, nil); err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	return holdings, nil
}

func (s *holdingStorage) ListAccountHoldings(_ context.Context, accountID string) ([]models.UnifiedHolding, error) {
	var holdings []models.UnifiedHolding
	query := badgerhold.Where("AccountID").Eq(accountID).Index("AccountID")
	if err := s.store.db.Find(&holdings, query); err != nil {
		return nil, fmt.Errorf("failed to list holdings for account '%s': %w", accountID, err)
	}
	return holdings, nil
}

func (s *holdingStorage) DeleteAccountHoldings(_ context.Context, accountID string) error {
	query := badgerhold.Where("AccountID").Eq(accountID).Index("AccountID")
	if err := s.store.db.DeleteMatching(&models.UnifiedHolding{}, query); err != nil {
		return fmt.Errorf("failed to delete holdings for account '%s': %w", accountID, err)
	}
	return nil
}
