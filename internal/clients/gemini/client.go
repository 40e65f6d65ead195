// Package gemini provides a client for the Google Gemini API
package gemini

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/genai"

	"github.com/sambrennan/folio/internal/common"
	"github.com/sambrennan/folio/internal/interfaces"
	"github.com/sambrennan/folio/internal/models"
)

const (
	DefaultModel = "gemini-3-flash-preview"
)

// Client implements the GeminiClient interface
type Client struct {
	client *genai.Client
	model  string
	logger *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client: genaiClient,
		model:  DefaultModel,
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// generate runs a plain text generation request.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug().Str("model", c.model).Msg("Generating content")

	contents := genai.Text(prompt)
	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(result)
}

// extractTextFromResponse extracts text from a generate content response
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	text := ""
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}

	return text, nil
}

// ScoreSentiment scores financial text on a [-1, 1] scale.
func (c *Client) ScoreSentiment(ctx context.Context, text string) (float64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}

	prompt := fmt.Sprintf(`Analyze the sentiment of the following financial news text about a stock.
Return a single sentiment score between -1.0 (very negative) and 1.0 (very positive),
where 0.0 is neutral. Consider the financial context - positive news includes earnings
beats, price increases, favorable analyst ratings. Negative news includes losses,
scandals, downgrades.

Text:
%s

Respond with only a decimal number between -1.0 and 1.0:`, text)

	response, err := c.generate(ctx, prompt)
	if err != nil {
		return 0, err
	}

	score, err := strconv.ParseFloat(strings.TrimSpace(response), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse sentiment score %q: %w", response, err)
	}

	// Clamp to the contract range
	if score > 1.0 {
		score = 1.0
	}
	if score < -1.0 {
		score = -1.0
	}
	return score, nil
}

// SummarizeNews produces a short investor-focused summary of recent articles.
func (c *Client) SummarizeNews(ctx context.Context, symbol string, articles []models.NewsArticle) (string, error) {
	if len(articles) == 0 {
		return fmt.Sprintf("No recent news available for %s.", symbol), nil
	}

	var sb strings.Builder
	for i, a := range articles {
		if i >= 5 {
			break
		}
		sb.WriteString(fmt.Sprintf("Title: %s\nSource: %s\n", a.Title, a.Source))
	}

	prompt := fmt.Sprintf(`Summarize the recent financial news for %s in 2-3 concise sentences.
Focus on the most important developments that would be relevant to investors.

Recent headlines and articles:
%s

Provide a clear, investor-focused summary:`, symbol, sb.String())

	return c.generate(ctx, prompt)
}

// Respond answers a question about the portfolio with the insight context
// attached. An empty userText requests a standalone portfolio overview.
func (c *Client) Respond(ctx context.Context, insight *models.InsightContext, userText string) (string, error) {
	prompt := buildInsightPrompt(insight, userText)
	return c.generate(ctx, prompt)
}

// buildInsightPrompt renders the portfolio context plus the user question.
func buildInsightPrompt(insight *models.InsightContext, userText string) string {
	var sb strings.Builder

	sb.WriteString("You are a helpful financial advisor AI assistant.\n\n")
	sb.WriteString("Portfolio Context:\n")
	sb.WriteString(fmt.Sprintf("- Total Value: $%.2f\n", insight.Summary.TotalMarketValue))
	sb.WriteString(fmt.Sprintf("- Total Cost Basis: $%.2f\n", insight.Summary.TotalCostBasis))
	sb.WriteString(fmt.Sprintf("- Total Gain/Loss: $%.2f (%.2f%%)\n",
		insight.Summary.TotalGainLoss, insight.Summary.TotalGainLossPercent))
	sb.WriteString(fmt.Sprintf("- Number of Holdings: %d\n", insight.Summary.TotalHoldings))

	sb.WriteString("\nHoldings:\n")
	for _, g := range insight.Summary.Holdings {
		sb.WriteString(fmt.Sprintf("- %s: %.4f shares, avg cost $%.2f, market value $%.2f (%.2f%% of portfolio)\n",
			g.Symbol, g.Quantity, g.AverageCost, g.MarketValue, g.AllocationPct))
	}

	if len(insight.Sentiments) > 0 {
		sb.WriteString("\nNews Sentiment:\n")
		for _, s := range insight.Sentiments {
			sb.WriteString(fmt.Sprintf("- %s: %s (score %.2f from %d articles)\n",
				s.Symbol, s.Label, s.Score, s.NewsCount))
		}
	}

	if userText == "" {
		sb.WriteString(`
Analyze this portfolio and provide:
1. A brief overview of the portfolio's current state
2. Key insights about performance
3. Risk assessment (if applicable)
4. Any recommendations or observations

Keep the response concise, friendly, and actionable (2-3 paragraphs max).`)
	} else {
		sb.WriteString("\nUser Question: ")
		sb.WriteString(userText)
		sb.WriteString("\n\nProvide a helpful, concise answer (2-3 sentences max). If they ask about specific stocks, use the data above.")
	}

	return sb.String()
}

// Ensure Client implements GeminiClient
var _ interfaces.GeminiClient = (*Client)(nil)
