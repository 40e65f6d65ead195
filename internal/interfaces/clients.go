// Package interfaces defines service contracts for Folio
package interfaces

import (
	"context"

	"github.com/sambrennan/folio/internal/models"
)

// ProviderClient fetches account data from an external aggregator.
// One implementation per provider tag, selected by dispatch on the tag.
type ProviderClient interface {
	// Provider returns the tag this client serves.
	Provider() models.Provider

	// FetchHoldings returns the account's holdings in provider-native units.
	FetchHoldings(ctx context.Context, account *models.LinkedAccount) ([]models.RawHolding, error)
}

// ProviderRegistry resolves the client for a provider tag.
type ProviderRegistry interface {
	ClientFor(provider models.Provider) (ProviderClient, bool)
}

// MarketDataClient provides quotes and news from the market data source.
type MarketDataClient interface {
	// GetQuote returns the latest price for a symbol.
	GetQuote(ctx context.Context, symbol string) (float64, error)

	// GetNews returns up to limit recent articles for a symbol.
	GetNews(ctx context.Context, symbol string, limit int) ([]models.NewsArticle, error)
}

// SentimentScorer scores text on a [-1, 1] scale.
type SentimentScorer interface {
	ScoreSentiment(ctx context.Context, text string) (float64, error)
}

// AssistantClient is the conversational assistant collaborator.
type AssistantClient interface {
	// Respond answers userText with the portfolio context attached.
	// userText may be empty for a standalone insight summary.
	Respond(ctx context.Context, insight *models.InsightContext, userText string) (string, error)

	// SummarizeNews produces a short investor-focused summary of articles.
	SummarizeNews(ctx context.Context, symbol string, articles []models.NewsArticle) (string, error)
}

// GeminiClient is the combined Gemini surface: scorer plus assistant.
type GeminiClient interface {
	SentimentScorer
	AssistantClient
}
