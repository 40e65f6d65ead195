package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/sambrennan/folio/internal/common"
	"github.com/sambrennan/folio/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

type accountStorage struct {
	store  *Store
	logger *common.Logger
}

// NewAccountStorage creates a new AccountStorage backed by BadgerHold.
func NewAccountStorage(store *Store, logger *common.Logger) *accountStorage {
	return &accountStorage{store: store, logger: logger}
}

func (s *accountStorage) GetAccount(_ context.Context, id string) (*models.LinkedAccount, error) {
	var account models.LinkedAccount
	err := s.store.db.Get(id, &account)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, models.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account '%s': %w", id, err)
	}
	return &account, nil
}

func (s *accountStorage) SaveAccount(_ context.Context, account *models.LinkedAccount) error {
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}
	if err := s.store.db.Upsert(account.ID, account); err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	s.logger.Debug().Str("id", account.ID).Str("provider", string(account.Provider)).Msg("Account saved")
	return nil
}

func (s *accountStorage) ListAccounts(_ context.Context) ([]models.LinkedAccount, error) {
	var accounts []models.LinkedAccount
	if err := s.store.db.Find(&accounts, nil); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

func (s *accountStorage) DeleteAccount(_ context.Context, id string) error {
	err := s.store.db.Delete(id, models.LinkedAccount{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete account '%s': %w", id, err)
	}
	s.logger.Debug().Str("id", id).Msg("Account deleted")
	return nil
}
