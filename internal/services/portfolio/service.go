package portfolio

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sambrennan/folio/internal/common"
	"github.com/sambrennan/folio/internal/interfaces"
	"github.com/sambrennan/folio/internal/models"
	"github.com/sambrennan/folio/internal/services/holdings"
)

// Service implements PortfolioService
type Service struct {
	storage interfaces.StorageManager
	market  interfaces.MarketDataClient
	logger  *common.Logger
}

// NewService creates a new portfolio service
func NewService(storage interfaces.StorageManager, market interfaces.MarketDataClient, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		market:  market,
		logger:  logger,
	}
}

// CreatePortfolio creates an empty named portfolio.
func (s *Service) CreatePortfolio(ctx context.Context, name string) (*models.Portfolio, error) {
	now := time.Now()
	portfolio := &models.Portfolio{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.storage.Portfolios().SavePortfolio(ctx, portfolio); err != nil {
		return nil, err
	}

	s.logger.Info().Str("id", portfolio.ID).Str("name", name).Msg("Portfolio created")
	return portfolio, nil
}

// GetPortfolio returns a portfolio by ID.
func (s *Service) GetPortfolio(ctx context.Context, id string) (*models.Portfolio, error) {
	return s.storage.Portfolios().GetPortfolio(ctx, id)
}

// ListPortfolios returns all portfolios.
func (s *Service) ListPortfolios(ctx context.Context) ([]models.Portfolio, error) {
	return s.storage.Portfolios().ListPortfolios(ctx)
}

// DeletePortfolio removes a portfolio with its holdings and snapshots.
func (s *Service) DeletePortfolio(ctx context.Context, id string) error {
	if _, err := s.storage.Portfolios().GetPortfolio(ctx, id); err != nil {
		return err
	}
	if err := s.storage.Portfolios().DeletePortfolioHoldings(ctx, id); err != nil {
		return err
	}
	if err := s.storage.Snapshots().DeletePortfolioSnapshots(ctx, id); err != nil {
		return err
	}
	if err := s.storage.Portfolios().DeletePortfolio(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("id", id).Msg("Portfolio deleted")
	return nil
}

// AddHolding adds a manual holding to a portfolio. The symbol is
// canonicalized first so manual entries merge with synced positions, and the
// current price is looked up on insert so the position values immediately.
func (s *Service) AddHolding(ctx context.Context, portfolioID string, holding *models.PortfolioHolding) (*models.PortfolioHolding, error) {
	if _, err := s.storage.Portfolios().GetPortfolio(ctx, portfolioID); err != nil {
		return nil, err
	}

	symbol, err := holdings.NormalizeSymbol(holding.Symbol, "")
	if err != nil {
		return nil, err
	}
	holding.Symbol = symbol

	now := time.Now()
	holding.ID = uuid.NewString()
	holding.PortfolioID = portfolioID
	holding.CreatedAt = now
	holding.UpdatedAt = now

	if price, err := s.market.GetQuote(ctx, holding.Symbol); err == nil {
		holding.CurrentPrice = price
	} else {
		s.logger.Warn().Err(err).Str("symbol", holding.Symbol).Msg("Quote lookup failed, using cost as price")
		if holding.CurrentPrice == 0 {
			holding.CurrentPrice = holding.AverageCost
		}
	}

	if err := s.storage.Portfolios().SaveHolding(ctx, holding); err != nil {
		return nil, err
	}
	return holding, nil
}

// UpdateHolding updates quantity and average cost of an existing holding.
func (s *Service) UpdateHolding(ctx context.Context, portfolioID, holdingID string, update *models.PortfolioHolding) (*models.PortfolioHolding, error) {
	holding, err := s.storage.Portfolios().GetHolding(ctx, holdingID)
	if err != nil {
		return nil, err
	}
	if holding.PortfolioID != portfolioID {
		return nil, models.ErrHoldingNotFound
	}

	if update.Quantity > 0 {
		holding.Quantity = update.Quantity
	}
	if update.AverageCost > 0 {
		holding.AverageCost = update.AverageCost
	}
	holding.UpdatedAt = time.Now()

	if price, err := s.market.GetQuote(ctx, holding.Symbol); err == nil {
		holding.CurrentPrice = price
	}

	if err := s.storage.Portfolios().SaveHolding(ctx, holding); err != nil {
		return nil, err
	}
	return holding, nil
}

// DeleteHolding removes a holding from a portfolio.
func (s *Service) DeleteHolding(ctx context.Context, portfolioID, holdingID string) error {
	holding, err := s.storage.Portfolios().GetHolding(ctx, holdingID)
	if err != nil {
		return err
	}
	if holding.PortfolioID != portfolioID {
		return models.ErrHoldingNotFound
	}
	return s.storage.Portfolios().DeleteHolding(ctx, holdingID)
}

// GetSummary recomputes the portfolio summary with refreshed prices. A
// same-day snapshot is recorded as a side effect; an existing snapshot for
// today is not an error, the read result is unaffected either way.
func (s *Service) GetSummary(ctx context.Context, portfolioID string) (*models.PortfolioSummary, error) {
	portfolio, err := s.storage.Portfolios().GetPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, err
	}

	positions, err := s.refreshedHoldings(ctx, portfolioID)
	if err != nil {
		return nil, err
	}

	unified := make([]models.UnifiedHolding, 0, len(positions))
	for i := range positions {
		unified = append(unified, positions[i].Unified())
	}

	summary := Aggregate(unified)
	summary.PortfolioID = portfolio.ID
	summary.PortfolioName = portfolio.Name

	if _, err := s.RecordSnapshot(ctx, portfolioID, time.Now()); err != nil && err != models.ErrSnapshotExists {
		s.logger.Warn().Err(err).Str("portfolio_id", portfolioID).Msg("Snapshot on read failed")
	}

	return summary, nil
}

// refreshedHoldings loads the portfolio's holdings and refreshes each price
// from the market client. Quote failures keep the last stored price.
func (s *Service) refreshedHoldings(ctx context.Context, portfolioID string) ([]models.PortfolioHolding, error) {
	positions, err := s.storage.Portfolios().ListPortfolioHoldings(ctx, portfolioID)
	if err != nil {
		return nil, err
	}

	for i := range positions {
		price, err := s.market.GetQuote(ctx, positions[i].Symbol)
		if err != nil {
			s.logger.Debug().Err(err).Str("symbol", positions[i].Symbol).Msg("Quote refresh failed, keeping stored price")
			continue
		}
		if price != positions[i].CurrentPrice {
			positions[i].CurrentPrice = price
			positions[i].UpdatedAt = time.Now()
			if err := s.storage.Portfolios().SaveHolding(ctx, &positions[i]); err != nil {
				s.logger.Warn().Err(err).Str("symbol", positions[i].Symbol).Msg("Price update not persisted")
			}
		}
	}
	return positions, nil
}

// RecordSnapshot stores a valuation snapshot for the instant's calendar
// date. Returns models.ErrSnapshotExists when that date already has one.
func (s *Service) RecordSnapshot(ctx context.Context, portfolioID string, at time.Time) (*models.PortfolioSnapshot, error) {
	if _, err := s.storage.Portfolios().GetPortfolio(ctx, portfolioID); err != nil {
		return nil, err
	}

	positions, err := s.storage.Portfolios().ListPortfolioHoldings(ctx, portfolioID)
	if err != nil {
		return nil, err
	}

	unified := make([]models.UnifiedHolding, 0, len(positions))
	for i := range positions {
		unified = append(unified, positions[i].Unified())
	}
	summary := Aggregate(unified)

	snapshot := &models.PortfolioSnapshot{
		PortfolioID:          portfolioID,
		TotalValue:           summary.TotalMarketValue,
		TotalCostBasis:       summary.TotalCostBasis,
		TotalGainLoss:        summary.TotalGainLoss,
		TotalGainLossPercent: summary.TotalGainLossPercent,
		SnapshotDate:         at,
	}

	if err := s.storage.Snapshots().InsertSnapshot(ctx, snapshot); err != nil {
		return nil, err
	}

	s.logger.Debug().Str("portfolio_id", portfolioID).Float64("value", snapshot.TotalValue).Msg("Snapshot recorded")
	return snapshot, nil
}

// GetPerformance returns range-based performance over the trailing window.
// With no snapshots in range the initial and return figures are nil, while
// the current value is still the live recomputed valuation.
func (s *Service) GetPerformance(ctx context.Context, portfolioID string, days int) (*models.PerformanceReport, error) {
	portfolio, err := s.storage.Portfolios().GetPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = 30
	}

	since := time.Now().AddDate(0, 0, -days)
	snapshots, err := s.storage.Snapshots().ListSnapshots(ctx, portfolioID, since)
	if err != nil {
		return nil, err
	}

	// Current value is the live recomputed valuation, not the last stored
	// snapshot, so performance reflects intra-day price movement.
	positions, err := s.refreshedHoldings(ctx, portfolioID)
	if err != nil {
		return nil, err
	}
	unified := make([]models.UnifiedHolding, 0, len(positions))
	for i := range positions {
		unified = append(unified, positions[i].Unified())
	}
	current := Aggregate(unified).TotalMarketValue

	report := &models.PerformanceReport{
		PortfolioID:   portfolio.ID,
		PortfolioName: portfolio.Name,
		DataPoints:    snapshots,
		CurrentValue:  current,
	}

	if len(snapshots) > 0 {
		initial := snapshots[0].TotalValue
		totalReturn := current - initial
		report.InitialValue = &initial
		report.TotalReturn = &totalReturn
		if initial != 0 {
			pct := totalReturn / initial * 100
			report.TotalReturnPercent = &pct
		} else {
			zero := 0.0
			report.TotalReturnPercent = &zero
		}
	}

	return report, nil
}
