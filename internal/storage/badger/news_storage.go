package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/sambrennan/folio/internal/common"
	"github.com/sambrennan/folio/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

type newsStorage struct {
	store  *Store
	logger *common.Logger
}

// NewNewsStorage creates a new NewsStorage backed by BadgerHold.
func NewNewsStorage(store *Store, logger *common.Logger) *newsStorage {
	return &newsStorage{store: store, logger: logger}
}

func (s *newsStorage) SaveArticles(_ context.Context, articles []models.NewsArticle) error {
	for i := range articles {
		a := articles[i]
		if err := s.store.db.Upsert(a.ID, &a); err != nil {
			return fmt.Errorf("failed to save article '%s': %w", a.ID, err)
		}
	}
	return nil
}

// ListRecentArticles returns articles for a symbol published after the
// cutoff, newest first, bounded by limit.
func (s *newsStorage) ListRecentArticles(_ context.Context, symbol string, since time.Time, limit int) ([]models.NewsArticle, error) {
	var articles []models.NewsArticle
	query := badgerhold.Where("Symbol").Eq(symbol).Index("Symbol").
		And("PublishedAt").Ge(since).
		SortBy("PublishedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := s.store.db.Find(&articles, query); err != nil {
		return nil, fmt.Errorf("failed to list articles for '%s': %w", symbol, err)
	}
	return articles, nil
}

type sentimentStorage struct {
	store  *Store
	logger *common.Logger
}

// NewSentimentStorage creates a new SentimentStorage backed by BadgerHold.
func NewSentimentStorage(store *Store, logger *common.Logger) *sentimentStorage {
	return &sentimentStorage{store: store, logger: logger}
}

// GetSentiment returns the cached record, or nil when none is cached.
func (s *sentimentStorage) GetSentiment(_ context.Context, symbol string) (*models.SentimentRecord, error) {
	var record models.SentimentRecord
	err := s.store.db.Get(symbol, &record)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get sentiment for '%s': %w", symbol, err)
	}
	return &record, nil
}

func (s *sentimentStorage) SaveSentiment(_ context.Context, record *models.SentimentRecord) error {
	if err := s.store.db.Upsert(record.Symbol, record); err != nil {
		return fmt.Errorf("failed to save sentiment for '%s': %w", record.Symbol, err)
	}
	s.logger.Debug().
		Str("symbol", record.Symbol).
		Float64("score", record.Score).
		Str("label", string(record.Label)).
		Msg("Sentiment cached")
	return nil
}
