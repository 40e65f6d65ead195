package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/sambrennan/folio/internal/models"
	"github.com/sambrennan/folio/internal/services/portfolio"
)

// --- Portfolio handlers ---

func (s *Server) handlePortfoliosRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handlePortfolioList(w, r)
	case http.MethodPost:
		s.handlePortfolioCreate(w, r)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handlePortfolioList(w http.ResponseWriter, r *http.Request) {
	portfolios, err := s.app.PortfolioService.ListPortfolios(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"portfolios": portfolios,
	})
}

func (s *Server) handlePortfolioCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		WriteError(w, http.StatusBadRequest, "name is required")
		return
	}

	created, err := s.app.PortfolioService.CreatePortfolio(r.Context(), req.Name)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, created)
}

func (s *Server) handlePortfolioByID(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		found, err := s.app.PortfolioService.GetPortfolio(r.Context(), id)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, found)
	case http.MethodDelete:
		if err := s.app.PortfolioService.DeletePortfolio(r.Context(), id); err != nil {
			WriteServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodDelete)
	}
}

// --- Manual holding handlers ---

func (s *Server) handleHoldingsRoot(w http.ResponseWriter, r *http.Request, portfolioID string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Symbol      string  `json:"symbol"`
		Quantity    float64 `json:"quantity"`
		AverageCost float64 `json:"average_cost"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Symbol == "" || req.Quantity <= 0 || req.AverageCost < 0 {
		WriteError(w, http.StatusBadRequest, "symbol, positive quantity, and non-negative average_cost are required")
		return
	}

	holding, err := s.app.PortfolioService.AddHolding(r.Context(), portfolioID, &models.PortfolioHolding{
		Symbol:      req.Symbol,
		Quantity:    req.Quantity,
		AverageCost: req.AverageCost,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, holding)
}

func (s *Server) handleHoldingByID(w http.ResponseWriter, r *http.Request, portfolioID, holdingID string) {
	switch r.Method {
	case http.MethodPut, http.MethodPatch:
		var req struct {
			Quantity    float64 `json:"quantity"`
			AverageCost float64 `json:"average_cost"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}

		updated, err := s.app.PortfolioService.UpdateHolding(r.Context(), portfolioID, holdingID, &models.PortfolioHolding{
			Quantity:    req.Quantity,
			AverageCost: req.AverageCost,
		})
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := s.app.PortfolioService.DeleteHolding(r.Context(), portfolioID, holdingID); err != nil {
			WriteServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		RequireMethod(w, r, http.MethodPut, http.MethodPatch, http.MethodDelete)
	}
}

// --- Valuation handlers ---

func (s *Server) handlePortfolioSummary(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	summary, err := s.app.PortfolioService.GetSummary(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, summary)
}

func (s *Server) handlePortfolioPerformance(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			WriteError(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = n
	}

	report, err := s.app.PortfolioService.GetPerformance(r.Context(), id, days)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, report)
}

func (s *Server) handlePerformanceChart(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	days := 90
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			WriteError(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = n
	}

	report, err := s.app.PortfolioService.GetPerformance(r.Context(), id, days)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	png, err := portfolio.RenderPerformanceChart(report.PortfolioName, report.DataPoints)
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (s *Server) handlePortfolioSnapshot(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	snapshot, err := s.app.PortfolioService.RecordSnapshot(r.Context(), id, time.Now())
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, snapshot)
}

// --- Sentiment and insight handlers ---

func (s *Server) handlePortfolioSentiments(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	summary, err := s.app.PortfolioService.GetSummary(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	holdings := make([]models.UnifiedHolding, 0, len(summary.Holdings))
	for _, g := range summary.Holdings {
		holdings = append(holdings, models.UnifiedHolding{Symbol: g.Symbol})
	}

	records, err := s.app.SentimentService.GetPortfolioSentiment(r.Context(), holdings)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"portfolio_id": id,
		"sentiments":   records,
	})
}

func (s *Server) handlePortfolioInsights(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	insights, err := s.app.InsightService.GetInsights(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"portfolio_id": id,
		"insights":     insights,
	})
}

func (s *Server) handlePortfolioChat(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Message == "" {
		WriteError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := s.app.InsightService.SendMessage(r.Context(), id, req.Message)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"portfolio_id": id,
		"reply":        reply,
	})
}
