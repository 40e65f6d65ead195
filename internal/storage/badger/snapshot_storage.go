package badger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sambrennan/folio/internal/common"
	"github.com/sambrennan/folio/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

type snapshotStorage struct {
	store  *Store
	logger *common.Logger

	// mu serializes same-key inserts so a scheduled job firing twice cannot
	// slip two snapshots past the exists-check for one calendar date.
	mu sync.Mutex
}

// NewSnapshotStorage creates a new SnapshotStorage backed by BadgerHold.
func NewSnapshotStorage(store *Store, logger *common.Logger) *snapshotStorage {
	return &snapshotStorage{store: store, logger: logger}
}

// InsertSnapshot stores an append-only snapshot keyed by (portfolio, date).
// History is never rewritten: a duplicate date fails with ErrSnapshotExists
// and the caller decides whether to replace explicitly.
func (s *snapshotStorage) InsertSnapshot(_ context.Context, snapshot *models.PortfolioSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := snapshot.DateKey()
	if snapshot.ID == "" {
		snapshot.ID = key
	}

	err := s.store.db.Insert(key, snapshot)
	if err != nil {
		if err == badgerhold.ErrKeyExists {
			return models.ErrSnapshotExists
		}
		return fmt.Errorf("failed to insert snapshot '%s': %w", key, err)
	}

	s.logger.Debug().
		Str("portfolio", snapshot.PortfolioID).
		Str("date", snapshot.SnapshotDate.UTC().Format("2006-01-02")).
		Float64("value", snapshot.TotalValue).
		Msg("Snapshot recorded")
	return nil
}

// ListSnapshots returns snapshots at or after the cutoff, ascending by date.
func (s *snapshotStorage) ListSnapshots(_ context.Context, portfolioID string, since time.Time) ([]models.PortfolioSnapshot, error) {
	var snapshots []models.PortfolioSnapshot
	query := badgerhold.Where("PortfolioID").Eq(portfolioID).Index("PortfolioID").
		And("SnapshotDate").Ge(since).
		SortBy("SnapshotDate")
	if err := s.store.db.Find(&snapshots, query); err != nil {
		return nil, fmt.Errorf("failed to list snapshots for portfolio '%s': %w", portfolioID, err)
	}
	return snapshots, nil
}

func (s *snapshotStorage) DeletePortfolioSnapshots(_ context.Context, portfolioID string) error {
	query := badgerhold.Where("PortfolioID").Eq(portfolioID).Index("PortfolioID")
	if err := s.store.db.DeleteMatching(&models.PortfolioSnapshot{}, query); err != nil {
		return fmt.Errorf("failed to delete snapshots for portfolio '%s': %w", portfolioID, err)
	}
	return nil
}
