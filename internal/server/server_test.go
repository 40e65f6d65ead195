package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sambrennan/folio/internal/app"
	"github.com/sambrennan/folio/internal/common"
	"github.com/sambrennan/folio/internal/interfaces"
	"github.com/sambrennan/folio/internal/models"
)

// --- Mock services ---

type mockPortfolioService struct {
	interfaces.PortfolioService
	portfolio   *models.Portfolio
	summary     *models.PortfolioSummary
	snapshot    *models.PortfolioSnapshot
	performance *models.PerformanceReport
	err         error
}

func (m *mockPortfolioService) CreatePortfolio(_ context.Context, name string) (*models.Portfolio, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.Portfolio{ID: "p1", Name: name}, nil
}

func (m *mockPortfolioService) GetPortfolio(_ context.Context, _ string) (*models.Portfolio, error) {
	return m.portfolio, m.err
}

func (m *mockPortfolioService) ListPortfolios(_ context.Context) ([]models.Portfolio, error) {
	if m.portfolio == nil {
		return nil, m.err
	}
	return []models.Portfolio{*m.portfolio}, m.err
}

func (m *mockPortfolioService) GetSummary(_ context.Context, _ string) (*models.PortfolioSummary, error) {
	return m.summary, m.err
}

func (m *mockPortfolioService) RecordSnapshot(_ context.Context, _ string, _ time.Time) (*models.PortfolioSnapshot, error) {
	return m.snapshot, m.err
}

func (m *mockPortfolioService) GetPerformance(_ context.Context, _ string, _ int) (*models.PerformanceReport, error) {
	return m.performance, m.err
}

type mockAccountService struct {
	interfaces.AccountService
	report *models.SyncReport
	err    error
}

func (m *mockAccountService) SyncAll(_ context.Context) (*models.SyncReport, error) {
	return m.report, m.err
}

func (m *mockAccountService) LastSyncReport(_ context.Context) (*models.SyncReport, error) {
	return m.report, m.err
}

func (m *mockAccountService) ListAccounts(_ context.Context) ([]models.LinkedAccount, error) {
	return []models.LinkedAccount{}, nil
}

type mockSentimentService struct {
	interfaces.SentimentService
	record   *models.SentimentRecord
	articles []models.NewsArticle
	err      error
}

func (m *mockSentimentService) GetSentiment(_ context.Context, symbol string) (*models.SentimentRecord, error) {
	return m.record, m.err
}

func (m *mockSentimentService) GetNews(_ context.Context, _ string, _ int) ([]models.NewsArticle, error) {
	return m.articles, m.err
}

func (m *mockSentimentService) GetPortfolioSentiment(_ context.Context, _ []models.UnifiedHolding) ([]models.SentimentRecord, error) {
	if m.record == nil {
		return nil, m.err
	}
	return []models.SentimentRecord{*m.record}, m.err
}

type mockInsightService struct {
	interfaces.InsightService
	reply string
	err   error
}

func (m *mockInsightService) GetInsights(_ context.Context, _ string) (string, error) {
	return m.reply, m.err
}

func (m *mockInsightService) SendMessage(_ context.Context, _, _ string) (string, error) {
	return m.reply, m.err
}

type mockGeminiClient struct {
	overview string
	err      error
}

func (m *mockGeminiClient) ScoreSentiment(_ context.Context, _ string) (float64, error) {
	return 0, m.err
}

func (m *mockGeminiClient) Respond(_ context.Context, _ *models.InsightContext, _ string) (string, error) {
	return "", m.err
}

func (m *mockGeminiClient) SummarizeNews(_ context.Context, _ string, _ []models.NewsArticle) (string, error) {
	return m.overview, m.err
}

type testServices struct {
	portfolios *mockPortfolioService
	accounts   *mockAccountService
	sentiments *mockSentimentService
	insights   *mockInsightService
}

func newTestServer(t *testing.T, svcs testServices) *Server {
	t.Helper()

	a := &app.App{
		Config:           common.DefaultConfig(),
		Logger:           common.NewSilentLogger(),
		AccountService:   svcs.accounts,
		PortfolioService: svcs.portfolios,
		SentimentService: svcs.sentiments,
		InsightService:   svcs.insights,
		StartupTime:      time.Now(),
	}
	return NewServer(a)
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

// --- Tests ---

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, testServices{})

	rec := doRequest(t, s, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestHealthEndpoint_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t, testServices{})

	rec := doRequest(t, s, http.MethodPost, "/api/health", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
}

func TestCorrelationIDHeader(t *testing.T) {
	s := newTestServer(t, testServices{})

	rec := doRequest(t, s, http.MethodGet, "/api/health", "")
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get("X-Correlation-ID"))
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, testServices{})

	rec := doRequest(t, s, http.MethodOptions, "/api/portfolios", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCreatePortfolio(t *testing.T) {
	s := newTestServer(t, testServices{portfolios: &mockPortfolioService{}})

	rec := doRequest(t, s, http.MethodPost, "/api/portfolios", `{"name":"Retirement"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Portfolio
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Retirement", created.Name)
}

func TestCreatePortfolio_MissingName(t *testing.T) {
	s := newTestServer(t, testServices{portfolios: &mockPortfolioService{}})

	rec := doRequest(t, s, http.MethodPost, "/api/portfolios", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPortfolioSummary_NotFound(t *testing.T) {
	s := newTestServer(t, testServices{
		portfolios: &mockPortfolioService{err: models.ErrPortfolioNotFound},
	})

	rec := doRequest(t, s, http.MethodGet, "/api/portfolios/missing/summary", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPortfolioSummary(t *testing.T) {
	s := newTestServer(t, testServices{
		portfolios: &mockPortfolioService{summary: &models.PortfolioSummary{
			PortfolioID:      "p1",
			TotalMarketValue: 3350,
		}},
	})

	rec := doRequest(t, s, http.MethodGet, "/api/portfolios/p1/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var summary models.PortfolioSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 3350.0, summary.TotalMarketValue)
}

func TestSnapshotConflict(t *testing.T) {
	s := newTestServer(t, testServices{
		portfolios: &mockPortfolioService{err: models.ErrSnapshotExists},
	})

	rec := doRequest(t, s, http.MethodPost, "/api/portfolios/p1/snapshot", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSnapshotCreated(t *testing.T) {
	s := newTestServer(t, testServices{
		portfolios: &mockPortfolioService{snapshot: &models.PortfolioSnapshot{
			ID:          "s1",
			PortfolioID: "p1",
			TotalValue:  3350,
		}},
	})

	rec := doRequest(t, s, http.MethodPost, "/api/portfolios/p1/snapshot", "")
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestPerformance_InvalidDays(t *testing.T) {
	s := newTestServer(t, testServices{portfolios: &mockPortfolioService{performance: &models.PerformanceReport{}}})

	rec := doRequest(t, s, http.MethodGet, "/api/portfolios/p1/performance?days=zero", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/portfolios/p1/performance?days=-3", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPerformance_NilFieldsSerializeAsNull(t *testing.T) {
	s := newTestServer(t, testServices{
		portfolios: &mockPortfolioService{performance: &models.PerformanceReport{
			PortfolioID:  "p1",
			CurrentValue: 1800,
		}},
	})

	rec := doRequest(t, s, http.MethodGet, "/api/portfolios/p1/performance", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"initial_value":null`)
	assert.Contains(t, rec.Body.String(), `"total_return":null`)
}

func TestChat(t *testing.T) {
	s := newTestServer(t, testServices{insights: &mockInsightService{reply: "You're up 11.67%."}})

	rec := doRequest(t, s, http.MethodPost, "/api/portfolios/p1/chat", `{"message":"How am I doing?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "You're up 11.67%.", body["reply"])
}

func TestChat_EmptyMessage(t *testing.T) {
	s := newTestServer(t, testServices{insights: &mockInsightService{}})

	rec := doRequest(t, s, http.MethodPost, "/api/portfolios/p1/chat", `{"message":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAccountSync_PartialFailureIsOK(t *testing.T) {
	s := newTestServer(t, testServices{
		accounts: &mockAccountService{report: &models.SyncReport{
			SyncedAccounts: 1,
			FailedAccounts: []models.SyncFailure{{AccountID: "bad", Reason: "timeout"}},
			HoldingsTotal:  2,
		}},
	})

	rec := doRequest(t, s, http.MethodPost, "/api/accounts/sync", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var report models.SyncReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 1, report.SyncedAccounts)
	assert.Len(t, report.FailedAccounts, 1)
}

func TestAccountSync_TotalFailure(t *testing.T) {
	s := newTestServer(t, testServices{
		accounts: &mockAccountService{err: models.ErrProviderFetchFailed},
	})

	rec := doRequest(t, s, http.MethodPost, "/api/accounts/sync", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestAccountSync_GetLastReport(t *testing.T) {
	s := newTestServer(t, testServices{
		accounts: &mockAccountService{report: &models.SyncReport{SyncedAccounts: 2}},
	})

	rec := doRequest(t, s, http.MethodGet, "/api/accounts/sync", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var report models.SyncReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 2, report.SyncedAccounts)
}

func TestAccountSync_GetBeforeAnySync(t *testing.T) {
	s := newTestServer(t, testServices{accounts: &mockAccountService{}})

	rec := doRequest(t, s, http.MethodGet, "/api/accounts/sync", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSymbolSentiment(t *testing.T) {
	s := newTestServer(t, testServices{
		sentiments: &mockSentimentService{record: &models.SentimentRecord{
			Symbol:    "AAPL",
			Score:     0.43,
			Label:     models.SentimentPositive,
			NewsCount: 3,
		}},
	})

	rec := doRequest(t, s, http.MethodGet, "/api/sentiment/AAPL", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var record models.SentimentRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, models.SentimentPositive, record.Label)
}

func TestNews_NoNewsIs404(t *testing.T) {
	s := newTestServer(t, testServices{
		sentiments: &mockSentimentService{err: models.ErrNoNews},
	})

	rec := doRequest(t, s, http.MethodGet, "/api/news/OBSCURE", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNews_AssistantOverviewRidesAlong(t *testing.T) {
	s := newTestServer(t, testServices{
		sentiments: &mockSentimentService{articles: []models.NewsArticle{
			{ID: "n1", Symbol: "AAPL", Title: "First", Summary: "Apple shipped a thing."},
		}},
	})
	s.app.GeminiClient = &mockGeminiClient{overview: "Coverage leans positive on the launch."}

	rec := doRequest(t, s, http.MethodGet, "/api/news/AAPL", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Coverage leans positive on the launch.", resp["summary"])
	assert.Contains(t, rec.Body.String(), "Apple shipped a thing.")
}

func TestNews_AssistantFailureStillReturnsArticles(t *testing.T) {
	s := newTestServer(t, testServices{
		sentiments: &mockSentimentService{articles: []models.NewsArticle{
			{ID: "n1", Symbol: "AAPL", Title: "First"},
		}},
	})
	s.app.GeminiClient = &mockGeminiClient{err: models.ErrAssistantUnavailable}

	rec := doRequest(t, s, http.MethodGet, "/api/news/AAPL", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	_, hasSummary := resp["summary"]
	assert.False(t, hasSummary, "failed overview must be omitted, not block the articles")
}

func TestConfigEndpoint_RedactsSecrets(t *testing.T) {
	s := newTestServer(t, testServices{})
	s.app.Config.Clients.Gemini.APIKey = "super-secret"

	rec := doRequest(t, s, http.MethodGet, "/api/config", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "super-secret")
	assert.Contains(t, rec.Body.String(), `"configured":true`)
}

func TestShutdown_BlockedInProduction(t *testing.T) {
	s := newTestServer(t, testServices{})
	s.app.Config.Environment = "production"

	rec := doRequest(t, s, http.MethodPost, "/api/shutdown", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
