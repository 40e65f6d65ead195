package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/sambrennan/folio/internal/common"
	"github.com/sambrennan/folio/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

type portfolioStorage struct {
	store  *Store
	logger *common.Logger
}

// NewPortfolioStorage creates a new PortfolioStorage backed by BadgerHold.
func NewPortfolioStorage(store *Store, logger *common.Logger) *portfolioStorage {
	return &portfolioStorage{store: store, logger: logger}
}

func (s *portfolioStorage) GetPortfolio(_ context.Context, id string) (*models.Portfolio, error) {
	var portfolio models.Portfolio
	err := s.store.db.Get(id, &portfolio)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, models.ErrPortfolioNotFound
		}
		return nil, fmt.Errorf("failed to get portfolio '%s': %w", id, err)
	}
	return &portfolio, nil
}

func (s *portfolioStorage) SavePortfolio(_ context.Context, portfolio *models.Portfolio) error {
	portfolio.UpdatedAt = time.Now()
	if portfolio.CreatedAt.IsZero() {
		portfolio.CreatedAt = time.Now()
	}

	if err := s.store.db.Upsert(portfolio.ID, portfolio); err != nil {
		return fmt.Errorf("failed to save portfolio: %w", err)
	}
	s.logger.Debug().Str("id", portfolio.ID).Str("name", portfolio.Name).Msg("Portfolio saved")
	return nil
}

func (s *portfolioStorage) ListPortfolios(_ context.Context) ([]models.Portfolio, error) {
	var portfolios []models.Portfolio
	if err := s.store.db.Find(&portfolios, nil); err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}
	return portfolios, nil
}

func (s *portfolioStorage) DeletePortfolio(_ context.Context, id string) error {
	err := s.store.db.Delete(id, models.Portfolio{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete portfolio '%s': %w", id, err)
	}
	s.logger.Debug().Str("id", id).Msg("Portfolio deleted")
	return nil
}

func (s *portfolioStorage) GetHolding(_ context.Context, holdingID string) (*models.PortfolioHolding, error) {
	var holding models.PortfolioHolding
	err := s.store.db.Get(holdingID, &holding)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, models.ErrHoldingNotFound
		}
		return nil, fmt.Errorf("failed to get holding '%s': %w", holdingID, err)
	}
	return &holding, nil
}

func (s *portfolioStorage) SaveHolding(_ context.Context, holding *models.PortfolioHolding) error {
	holding.UpdatedAt = time.Now()
	if holding.CreatedAt.IsZero() {
		holding.CreatedAt = time.Now()
	}
	if err := s.store.db.Upsert(holding.ID, holding); err != nil {
		return fmt.Errorf("failed to save holding: %w", err)
	}
	return nil
}

func (s *portfolioStorage) ListPortfolioHoldings(_ context.Context, portfolioID string) ([]models.PortfolioHolding, error) {
	var holdings []models.PortfolioHolding
	query := badgerhold.Where("PortfolioID").Eq(portfolioID).Index("PortfolioID")
	if err := s.store.db.Find(&holdings, query); err != nil {
		return nil, fmt.Errorf("failed to list holdings for portfolio '%s': %w", portfolioID, err)
	}
	return holdings, nil
}

func (s *portfolioStorage) DeleteHolding(_ context.Context, holdingID string) error {
	err := s.store.db.Delete(holdingID, models.PortfolioHolding{})
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return models.ErrHoldingNotFound
		}
		return fmt.Errorf("failed to delete holding '%s': %w", holdingID, err)
	}
	return nil
}

func (s *portfolioStorage) DeletePortfolioHoldings(_ context.Context, portfolioID string) error {
	query := badgerhold.Where("PortfolioID").Eq(portfolioID).Index("PortfolioID")
	if err := s.store.db.DeleteMatching(&models.PortfolioHolding{}, query); err != nil {
		return fmt.Errorf("failed to delete holdings for portfolio '%s': %w", portfolioID, err)
	}
	return nil
}
