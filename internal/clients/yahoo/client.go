// Package yahoo provides a client for the Yahoo Finance quote and news APIs
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/google/uuid"
	"github.com/sambrennan/folio/internal/common"
	"github.com/sambrennan/folio/internal/interfaces"
	"github.com/sambrennan/folio/internal/models"
)

const (
	DefaultBaseURL   = "https://query2.finance.yahoo.com"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 5 // requests per second

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Client implements the MarketDataClient interface
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Yahoo Finance client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Yahoo API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", path).Msg("Yahoo API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// quoteResponse is the shape of the v7 quote endpoint.
type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol             string  `json:"symbol"`
			RegularMarketPrice float64 `json:"regularMarketPrice"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

// GetQuote returns the latest market price for a symbol.
func (c *Client) GetQuote(ctx context.Context, symbol string) (float64, error) {
	params := url.Values{}
	params.Set("symbols", symbol)

	var result quoteResponse
	if err := c.get(ctx, "/v7/finance/quote", params, &result); err != nil {
		return 0, fmt.Errorf("failed to get quote for %s: %w", symbol, err)
	}

	if len(result.QuoteResponse.Result) == 0 {
		return 0, fmt.Errorf("no quote returned for %s", symbol)
	}

	return result.QuoteResponse.Result[0].RegularMarketPrice, nil
}

// searchResponse is the shape of the v1 search endpoint's news section.
type searchResponse struct {
	News []struct {
		UUID                string `json:"uuid"`
		Title               string `json:"title"`
		Publisher           string `json:"publisher"`
		Link                string `json:"link"`
		ProviderPublishTime int64  `json:"providerPublishTime"`
		Summary             string `json:"summary"`
	} `json:"news"`
}

// GetNews returns up to limit recent articles for a symbol.
func (c *Client) GetNews(ctx context.Context, symbol string, limit int) ([]models.NewsArticle, error) {
	params := url.Values{}
	params.Set("q", symbol)
	params.Set("quotes_count", "1")
	params.Set("news_count", strconv.Itoa(limit))
	params.Set("enableFuzzyQuery", "false")

	var result searchResponse
	if err := c.get(ctx, "/v1/finance/search", params, &result); err != nil {
		return nil, fmt.Errorf("failed to get news for %s: %w", symbol, err)
	}

	now := time.Now()
	articles := make([]models.NewsArticle, 0, len(result.News))
	for i, item := range result.News {
		if i >= limit {
			break
		}
		publishedAt := now.Add(-1 * time.Hour) // fallback when the feed omits a timestamp
		if item.ProviderPublishTime > 0 {
			publishedAt = time.Unix(item.ProviderPublishTime, 0)
		}
		// The feed's own uuid keeps re-fetched articles deduping against
		// their cached, already-scored rows.
		id := item.UUID
		if id == "" {
			id = uuid.NewString()
		}
		articles = append(articles, models.NewsArticle{
			ID:          id,
			Symbol:      symbol,
			Title:       item.Title,
			Source:      item.Publisher,
			URL:         item.Link,
			PublishedAt: publishedAt,
			Summary:     item.Summary,
			FetchedAt:   now,
		})
	}

	return articles, nil
}

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)
