package insight

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sambrennan/folio/internal/common"
	"github.com/sambrennan/folio/internal/interfaces"
	"github.com/sambrennan/folio/internal/models"
)

type mockPortfolioService struct {
	interfaces.PortfolioService
	summary *models.PortfolioSummary
	err     error
}

func (m *mockPortfolioService) GetSummary(_ context.Context, _ string) (*models.PortfolioSummary, error) {
	return m.summary, m.err
}

type mockSentimentService struct {
	interfaces.SentimentService
	records []models.SentimentRecord
	err     error
}

func (m *mockSentimentService) GetPortfolioSentiment(_ context.Context, _ []models.UnifiedHolding) ([]models.SentimentRecord, error) {
	return m.records, m.err
}

type mockAssistant struct {
	reply        string
	err          error
	lastInsight  *models.InsightContext
	lastUserText string
	calls        int
}

func (m *mockAssistant) Respond(_ context.Context, insight *models.InsightContext, userText string) (string, error) {
	m.calls++
	m.lastInsight = insight
	m.lastUserText = userText
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockAssistant) SummarizeNews(_ context.Context, _ string, _ []models.NewsArticle) (string, error) {
	return "", nil
}

func twoHoldingSummary() *models.PortfolioSummary {
	return &models.PortfolioSummary{
		PortfolioID:   "p1",
		PortfolioName: "Retirement",
		Holdings: []models.HoldingGroup{
			{Symbol: "AAPL", MarketValue: 1800},
			{Symbol: "MSFT", MarketValue: 1550},
		},
		TotalHoldings:        2,
		TotalCostBasis:       3000,
		TotalMarketValue:     3350,
		TotalGainLoss:        350,
		TotalGainLossPercent: 11.67,
	}
}

func TestSendMessage_AttachesContext(t *testing.T) {
	assistant := &mockAssistant{reply: "Looking good."}
	svc := NewService(
		&mockPortfolioService{summary: twoHoldingSummary()},
		&mockSentimentService{records: []models.SentimentRecord{{Symbol: "AAPL", Score: 0.5, Label: models.SentimentPositive}}},
		assistant,
		common.NewSilentLogger(),
	)

	reply, err := svc.SendMessage(context.Background(), "p1", "How am I doing?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "Looking good." {
		t.Errorf("reply = %q", reply)
	}
	if assistant.lastUserText != "How am I doing?" {
		t.Errorf("user text = %q", assistant.lastUserText)
	}
	if assistant.lastInsight == nil || assistant.lastInsight.Summary.TotalMarketValue != 3350 {
		t.Error("assistant must receive the live summary in context")
	}
	if len(assistant.lastInsight.Sentiments) != 1 {
		t.Error("assistant must receive per-symbol sentiment in context")
	}
}

func TestGetInsights_EmptyUserText(t *testing.T) {
	assistant := &mockAssistant{reply: "Overview here."}
	svc := NewService(
		&mockPortfolioService{summary: twoHoldingSummary()},
		&mockSentimentService{},
		assistant,
		common.NewSilentLogger(),
	)

	reply, err := svc.GetInsights(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "Overview here." {
		t.Errorf("reply = %q", reply)
	}
	if assistant.lastUserText != "" {
		t.Errorf("insights must call the assistant with empty user text, got %q", assistant.lastUserText)
	}
}

func TestRespond_EmptyPortfolioShortCircuits(t *testing.T) {
	assistant := &mockAssistant{reply: "should not be called"}
	svc := NewService(
		&mockPortfolioService{summary: &models.PortfolioSummary{PortfolioID: "p1"}},
		&mockSentimentService{},
		assistant,
		common.NewSilentLogger(),
	)

	reply, err := svc.GetInsights(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(reply, "no holdings") {
		t.Errorf("empty portfolio should get the standing reply, got %q", reply)
	}
	if assistant.calls != 0 {
		t.Error("assistant must not be called for an empty portfolio")
	}
}

func TestRespond_AssistantDownFallsBackToMetrics(t *testing.T) {
	svc := NewService(
		&mockPortfolioService{summary: twoHoldingSummary()},
		&mockSentimentService{records: []models.SentimentRecord{
			{Symbol: "AAPL", Label: models.SentimentPositive},
			{Symbol: "MSFT", Label: models.SentimentNeutral},
		}},
		&mockAssistant{err: models.ErrAssistantUnavailable},
		common.NewSilentLogger(),
	)

	reply, err := svc.SendMessage(context.Background(), "p1", "How am I doing?")
	if err != nil {
		t.Fatalf("assistant outage must degrade, not fail: %v", err)
	}
	if !strings.Contains(reply, "3350.00") {
		t.Errorf("fallback reply should carry real metrics, got %q", reply)
	}
	if !strings.Contains(reply, "AAPL") || strings.Contains(reply, "MSFT") {
		t.Errorf("fallback mentions non-neutral sentiment only, got %q", reply)
	}
}

func TestRespond_SentimentFailureDegrades(t *testing.T) {
	assistant := &mockAssistant{reply: "ok"}
	svc := NewService(
		&mockPortfolioService{summary: twoHoldingSummary()},
		&mockSentimentService{err: errors.New("news source down")},
		assistant,
		common.NewSilentLogger(),
	)

	if _, err := svc.GetInsights(context.Background(), "p1"); err != nil {
		t.Fatalf("sentiment outage must not block insights: %v", err)
	}
	if assistant.lastInsight == nil || len(assistant.lastInsight.Sentiments) != 0 {
		t.Error("context should carry empty sentiments when the source is down")
	}
}

func TestRespond_PortfolioErrorPropagates(t *testing.T) {
	svc := NewService(
		&mockPortfolioService{err: models.ErrPortfolioNotFound},
		&mockSentimentService{},
		&mockAssistant{},
		common.NewSilentLogger(),
	)

	if _, err := svc.SendMessage(context.Background(), "missing", "hi"); !errors.Is(err, models.ErrPortfolioNotFound) {
		t.Errorf("expected ErrPortfolioNotFound, got %v", err)
	}
}
