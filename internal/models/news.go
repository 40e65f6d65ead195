package models

import "time"

// SentimentLabel classifies an aggregate sentiment score.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNeutral  SentimentLabel = "neutral"
	SentimentNegative SentimentLabel = "negative"
)

// Label thresholds on the mean article score: positive above 0.3, negative
// below -0.3, neutral between (inclusive).
const (
	SentimentPositiveThreshold = 0.3
	SentimentNegativeThreshold = -0.3
)

// LabelForScore maps an aggregate score to its label.
func LabelForScore(score float64) SentimentLabel {
	switch {
	case score > SentimentPositiveThreshold:
		return SentimentPositive
	case score < SentimentNegativeThreshold:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// NewsArticle is a fetched news item for a symbol. Immutable once fetched;
// the sentiment score is assigned once by the scorer and cached with the
// article. Shared read-only across portfolios referencing the symbol.
type NewsArticle struct {
	ID             string    `json:"id" badgerhold:"key"`
	Symbol         string    `json:"symbol" badgerhold:"index"`
	Title          string    `json:"title"`
	Source         string    `json:"source"`
	URL            string    `json:"url"`
	PublishedAt    time.Time `json:"published_at"`
	Summary        string    `json:"summary,omitempty"`
	SentimentScore *float64  `json:"sentiment_score,omitempty"` // nil until scored
	FetchedAt      time.Time `json:"fetched_at"`
}

// SentimentRecord is the cached aggregate sentiment for a symbol over a
// recent news window. Recomputed whole on cache expiry, never patched.
type SentimentRecord struct {
	Symbol       string         `json:"symbol" badgerhold:"key"`
	Score        float64        `json:"score"` // mean article score in [-1, 1]
	Label        SentimentLabel `json:"label"`
	NewsCount    int            `json:"news_count"`
	CalculatedAt time.Time      `json:"calculated_at"`
}

// InsightContext is the structured payload handed to the conversational
// assistant: aggregated metrics plus per-symbol sentiment.
type InsightContext struct {
	Summary    PortfolioSummary  `json:"summary"`
	Sentiments []SentimentRecord `json:"sentiments"`
}
