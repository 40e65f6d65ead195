package server

import (
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/sambrennan/folio/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/diagnostics", s.handleDiagnostics)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)

	// Linked accounts
	mux.HandleFunc("/api/accounts/sync", s.handleAccountSync)
	mux.HandleFunc("/api/accounts/holdings", s.handleUnifiedHoldings)
	mux.HandleFunc("/api/accounts/", s.routeAccounts)
	mux.HandleFunc("/api/accounts", s.handleAccountsRoot)

	// Portfolios
	mux.HandleFunc("/api/portfolios/", s.routePortfolios)
	mux.HandleFunc("/api/portfolios", s.handlePortfoliosRoot)

	// Market news and sentiment
	mux.HandleFunc("/api/news/", s.handleNews)
	mux.HandleFunc("/api/sentiment/", s.handleSymbolSentiment)
}

// routeAccounts dispatches /api/accounts/{id} to the appropriate handler.
func (s *Server) routeAccounts(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/accounts/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	s.handleAccountByID(w, r, id)
}

// routePortfolios dispatches /api/portfolios/{id}/* to the appropriate handler.
func (s *Server) routePortfolios(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/portfolios/")
	if path == "" {
		WriteError(w, http.StatusBadRequest, "portfolio id is required in path")
		return
	}

	id := path
	rest := ""
	if idx := strings.Index(path, "/"); idx >= 0 {
		id = path[:idx]
		rest = path[idx+1:]
	}

	switch {
	case rest == "":
		s.handlePortfolioByID(w, r, id)
	case rest == "summary":
		s.handlePortfolioSummary(w, r, id)
	case rest == "performance":
		s.handlePortfolioPerformance(w, r, id)
	case rest == "performance/chart":
		s.handlePerformanceChart(w, r, id)
	case rest == "snapshot":
		s.handlePortfolioSnapshot(w, r, id)
	case rest == "sentiments":
		s.handlePortfolioSentiments(w, r, id)
	case rest == "insights":
		s.handlePortfolioInsights(w, r, id)
	case rest == "chat":
		s.handlePortfolioChat(w, r, id)
	case rest == "holdings":
		s.handleHoldingsRoot(w, r, id)
	case strings.HasPrefix(rest, "holdings/"):
		s.handleHoldingByID(w, r, id, strings.TrimPrefix(rest, "holdings/"))
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": common.GetVersion(),
		"uptime":  time.Since(s.app.StartupTime).String(),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"version": common.Version,
		"build":   common.Build,
		"commit":  common.GitCommit,
	})
}

// handleConfig reports the running configuration with secrets redacted.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	cfg := s.app.Config
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"environment": cfg.Environment,
		"server": map[string]interface{}{
			"host": cfg.Server.Host,
			"port": cfg.Server.Port,
		},
		"storage": map[string]interface{}{
			"path": cfg.Storage.Path,
		},
		"clients": map[string]interface{}{
			"yahoo": map[string]interface{}{
				"base_url":   cfg.Clients.Yahoo.BaseURL,
				"rate_limit": cfg.Clients.Yahoo.RateLimit,
			},
			"gemini": map[string]interface{}{
				"model":      cfg.Clients.Gemini.Model,
				"configured": cfg.Clients.Gemini.APIKey != "",
			},
		},
		"scheduler": map[string]interface{}{
			"snapshot_cron":  cfg.Scheduler.SnapshotCron,
			"sentiment_cron": cfg.Scheduler.SentimentCron,
		},
		"sentiment": map[string]interface{}{
			"freshness_hours": cfg.Sentiment.FreshnessHours,
			"news_limit":      cfg.Sentiment.NewsLimit,
			"max_concurrent":  cfg.Sentiment.MaxConcurrent,
		},
	})
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"version":       common.GetVersion(),
		"uptime":        time.Since(s.app.StartupTime).String(),
		"goroutines":    runtime.NumGoroutine(),
		"heap_alloc_mb": m.HeapAlloc / 1024 / 1024,
		"heap_sys_mb":   m.HeapSys / 1024 / 1024,
		"num_gc":        m.NumGC,
		"assistant_up":  s.app.GeminiClient != nil,
	})
}

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}
