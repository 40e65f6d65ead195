package server

import (
	"net/http"
	"strconv"
	"strings"
)

// --- News and sentiment handlers ---

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := strings.TrimPrefix(r.URL.Path, "/api/news/")
	if symbol == "" || strings.Contains(symbol, "/") {
		WriteError(w, http.StatusBadRequest, "symbol is required in path")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			WriteError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	articles, err := s.app.SentimentService.GetNews(r.Context(), symbol, limit)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	response := map[string]interface{}{
		"symbol":   strings.ToUpper(symbol),
		"articles": articles,
		"count":    len(articles),
	}

	// Best effort: the assistant's overview rides along when available, the
	// article list never waits on it.
	if s.app.GeminiClient != nil {
		overview, err := s.app.GeminiClient.SummarizeNews(r.Context(), strings.ToUpper(symbol), articles)
		if err != nil {
			s.logger.Warn().Err(err).Str("symbol", symbol).Msg("News overview unavailable")
		} else if overview != "" {
			response["summary"] = overview
		}
	}

	WriteJSON(w, http.StatusOK, response)
}

func (s *Server) handleSymbolSentiment(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := strings.TrimPrefix(r.URL.Path, "/api/sentiment/")
	if symbol == "" || strings.Contains(symbol, "/") {
		WriteError(w, http.StatusBadRequest, "symbol is required in path")
		return
	}

	record, err := s.app.SentimentService.GetSentiment(r.Context(), symbol)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, record)
}
