// Package sentiment aggregates news sentiment per symbol
package sentiment

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sambrennan/folio/internal/common"
	"github.com/sambrennan/folio/internal/interfaces"
	"github.com/sambrennan/folio/internal/models"
)

// Service implements SentimentService
type Service struct {
	storage       interfaces.StorageManager
	market        interfaces.MarketDataClient
	scorer        interfaces.SentimentScorer
	logger        *common.Logger
	freshness     time.Duration
	newsLimit     int
	maxConcurrent int
}

// NewService creates a new sentiment service
func NewService(storage interfaces.StorageManager, market interfaces.MarketDataClient, scorer interfaces.SentimentScorer, cfg *common.Config, logger *common.Logger) *Service {
	freshness := cfg.Sentiment.Freshness()
	if freshness <= 0 {
		freshness = common.FreshnessSentiment
	}
	newsLimit := cfg.Sentiment.NewsLimit
	if newsLimit <= 0 {
		newsLimit = 20
	}
	maxConcurrent := cfg.Sentiment.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &Service{
		storage:       storage,
		market:        market,
		scorer:        scorer,
		logger:        logger,
		freshness:     freshness,
		newsLimit:     newsLimit,
		maxConcurrent: maxConcurrent,
	}
}

// GetSentiment returns the cached record when still fresh, otherwise
// recomputes it from the recent news window. A symbol with no news yields a
// neutral record rather than an error.
func (s *Service) GetSentiment(ctx context.Context, symbol string) (*models.SentimentRecord, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, models.ErrInvalidSymbol
	}

	cached, err := s.storage.Sentiments().GetSentiment(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if cached != nil && common.IsFresh(cached.CalculatedAt, s.freshness) {
		s.logger.Debug().Str("symbol", symbol).Msg("Sentiment cache hit")
		return cached, nil
	}

	record, err := s.computeSentiment(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if err := s.storage.Sentiments().SaveSentiment(ctx, record); err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Sentiment cache write failed")
	}
	return record, nil
}

// computeSentiment fetches the news window, scores what is unscored, and
// takes the plain mean of the available scores.
func (s *Service) computeSentiment(ctx context.Context, symbol string) (*models.SentimentRecord, error) {
	articles, err := s.GetNews(ctx, symbol, s.newsLimit)
	if err != nil && err != models.ErrNoNews {
		return nil, err
	}
	if len(articles) == 0 {
		s.logger.Debug().Str("symbol", symbol).Msg("No news, neutral sentiment")
		return &models.SentimentRecord{
			Symbol:       symbol,
			Score:        0,
			Label:        models.SentimentNeutral,
			NewsCount:    0,
			CalculatedAt: time.Now(),
		}, nil
	}

	var sum float64
	var scored int
	var toSave []models.NewsArticle
	for i := range articles {
		if articles[i].SentimentScore == nil {
			score, err := s.scorer.ScoreSentiment(ctx, articles[i].Title+". "+articles[i].Summary)
			if err != nil {
				s.logger.Warn().Err(err).Str("symbol", symbol).Str("article", articles[i].ID).Msg("Article scoring failed")
				continue
			}
			articles[i].SentimentScore = &score
			toSave = append(toSave, articles[i])
		}
		sum += *articles[i].SentimentScore
		scored++
	}
	if len(toSave) > 0 {
		if err := s.storage.News().SaveArticles(ctx, toSave); err != nil {
			s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Scored articles not persisted")
		}
	}

	if scored == 0 {
		return &models.SentimentRecord{
			Symbol:       symbol,
			Score:        0,
			Label:        models.SentimentNeutral,
			NewsCount:    len(articles),
			CalculatedAt: time.Now(),
		}, nil
	}

	mean := sum / float64(scored)
	return &models.SentimentRecord{
		Symbol:       symbol,
		Score:        mean,
		Label:        models.LabelForScore(mean),
		NewsCount:    len(articles),
		CalculatedAt: time.Now(),
	}, nil
}

// GetPortfolioSentiment computes sentiment for every distinct symbol in the
// holdings with bounded parallelism. Symbols that fail are omitted, not
// fatal, so one bad symbol cannot sink the portfolio view.
func (s *Service) GetPortfolioSentiment(ctx context.Context, holdings []models.UnifiedHolding) ([]models.SentimentRecord, error) {
	seen := make(map[string]bool)
	var symbols []string
	for i := range holdings {
		if !seen[holdings[i].Symbol] {
			seen[holdings[i].Symbol] = true
			symbols = append(symbols, holdings[i].Symbol)
		}
	}
	if len(symbols) == 0 {
		return []models.SentimentRecord{}, nil
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		records []models.SentimentRecord
		sem     = make(chan struct{}, s.maxConcurrent)
	)
	for _, symbol := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			record, err := s.GetSentiment(ctx, symbol)
			if err != nil {
				s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Portfolio sentiment symbol failed")
				return
			}
			mu.Lock()
			records = append(records, *record)
			mu.Unlock()
		}(symbol)
	}
	wg.Wait()

	sort.Slice(records, func(i, j int) bool { return records[i].Symbol < records[j].Symbol })
	return records, nil
}

// GetNews returns recent articles for a symbol, serving the cached window
// when it covers the request and refreshing from the market client when it
// does not. Fetched articles are cached unscored.
func (s *Service) GetNews(ctx context.Context, symbol string, limit int) ([]models.NewsArticle, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, models.ErrInvalidSymbol
	}
	if limit <= 0 {
		limit = s.newsLimit
	}

	since := time.Now().Add(-common.FreshnessNews)
	cached, err := s.storage.News().ListRecentArticles(ctx, symbol, since, limit)
	if err != nil {
		return nil, err
	}
	if len(cached) > 0 {
		return cached, nil
	}

	articles, err := s.market.GetNews(ctx, symbol, limit)
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return nil, models.ErrNoNews
	}

	if err := s.storage.News().SaveArticles(ctx, articles); err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Fetched articles not persisted")
	}
	return articles, nil
}
