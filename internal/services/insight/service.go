// Package insight composes portfolio metrics and sentiment for the assistant
package insight

import (
	"context"
	"fmt"

	"github.com/sambrennan/folio/internal/common"
	"github.com/sambrennan/folio/internal/interfaces"
	"github.com/sambrennan/folio/internal/models"
)

const emptyPortfolioReply = "Your portfolio has no holdings yet. Add a holding or link an account, then ask me again."

// Service implements InsightService
type Service struct {
	portfolios interfaces.PortfolioService
	sentiments interfaces.SentimentService
	assistant  interfaces.AssistantClient
	logger     *common.Logger
}

// NewService creates a new insight service
func NewService(portfolios interfaces.PortfolioService, sentiments interfaces.SentimentService, assistant interfaces.AssistantClient, logger *common.Logger) *Service {
	return &Service{
		portfolios: portfolios,
		sentiments: sentiments,
		assistant:  assistant,
		logger:     logger,
	}
}

// BuildContext assembles the structured payload for the assistant: the live
// summary plus per-symbol sentiment. Sentiment failures degrade to an empty
// sentiment list, they never block the metrics.
func (s *Service) BuildContext(ctx context.Context, portfolioID string) (*models.InsightContext, error) {
	summary, err := s.portfolios.GetSummary(ctx, portfolioID)
	if err != nil {
		return nil, err
	}

	holdings := make([]models.UnifiedHolding, 0, len(summary.Holdings))
	for _, g := range summary.Holdings {
		holdings = append(holdings, models.UnifiedHolding{Symbol: g.Symbol})
	}

	records, err := s.sentiments.GetPortfolioSentiment(ctx, holdings)
	if err != nil {
		s.logger.Warn().Err(err).Str("portfolio_id", portfolioID).Msg("Portfolio sentiment unavailable for insight")
		records = nil
	}

	return &models.InsightContext{
		Summary:    *summary,
		Sentiments: records,
	}, nil
}

// GetInsights returns an assistant-written overview of the portfolio.
func (s *Service) GetInsights(ctx context.Context, portfolioID string) (string, error) {
	return s.respond(ctx, portfolioID, "")
}

// SendMessage answers a user question with the portfolio context attached.
func (s *Service) SendMessage(ctx context.Context, portfolioID, userText string) (string, error) {
	return s.respond(ctx, portfolioID, userText)
}

func (s *Service) respond(ctx context.Context, portfolioID, userText string) (string, error) {
	insight, err := s.BuildContext(ctx, portfolioID)
	if err != nil {
		return "", err
	}
	if len(insight.Summary.Holdings) == 0 {
		return emptyPortfolioReply, nil
	}

	reply, err := s.assistant.Respond(ctx, insight, userText)
	if err != nil {
		s.logger.Warn().Err(err).Str("portfolio_id", portfolioID).Msg("Assistant unavailable, using fallback reply")
		return s.fallbackReply(insight), nil
	}
	return reply, nil
}

// fallbackReply renders a plain metrics reply when the assistant is down so
// the endpoint still answers with real numbers.
func (s *Service) fallbackReply(insight *models.InsightContext) string {
	sum := insight.Summary
	reply := fmt.Sprintf(
		"Your portfolio holds %d positions worth $%.2f, a gain/loss of $%.2f (%.2f%%) against a cost basis of $%.2f.",
		sum.TotalHoldings, sum.TotalMarketValue, sum.TotalGainLoss, sum.TotalGainLossPercent, sum.TotalCostBasis,
	)
	for _, r := range insight.Sentiments {
		if r.Label != models.SentimentNeutral {
			reply += fmt.Sprintf(" News sentiment for %s is %s.", r.Symbol, r.Label)
		}
	}
	return reply
}
