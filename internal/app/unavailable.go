package app

import (
	"context"

	"github.com/sambrennan/folio/internal/models"
)

// unavailableAssistant stands in for the Gemini client when no API key is
// configured. Every call reports the assistant as unavailable so the callers'
// degradation paths apply.
type unavailableAssistant struct{}

func (unavailableAssistant) ScoreSentiment(ctx context.Context, text string) (float64, error) {
	return 0, models.ErrAssistantUnavailable
}

func (unavailableAssistant) Respond(ctx context.Context, insight *models.InsightContext, userText string) (string, error) {
	return "", models.ErrAssistantUnavailable
}

func (unavailableAssistant) SummarizeNews(ctx context.Context, symbol string, articles []models.NewsArticle) (string, error) {
	return "", models.ErrAssistantUnavailable
}
