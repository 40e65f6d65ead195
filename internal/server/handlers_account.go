package server

import (
	"net/http"

	"github.com/sambrennan/folio/internal/models"
)

// --- Linked account handlers ---

func (s *Server) handleAccountsRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleAccountList(w, r)
	case http.MethodPost:
		s.handleAccountLink(w, r)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleAccountList(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.app.AccountService.ListAccounts(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"accounts": accounts,
	})
}

func (s *Server) handleAccountLink(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Provider string `json:"provider"`
		Name     string `json:"name"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Provider == "" {
		WriteError(w, http.StatusBadRequest, "provider is required")
		return
	}

	account, err := s.app.AccountService.LinkAccount(r.Context(), &models.LinkedAccount{
		Provider: models.Provider(req.Provider),
		Name:     req.Name,
	})
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteJSON(w, http.StatusCreated, account)
}

func (s *Server) handleAccountByID(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	if err := s.app.AccountService.UnlinkAccount(r.Context(), id); err != nil {
		WriteServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleAccountSync triggers a sync of every linked account (POST) or
// returns the last recorded sync report (GET). Partial failures come back
// 200 with the failed accounts listed in the report; only total failure is
// an error status.
func (s *Server) handleAccountSync(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		report, err := s.app.AccountService.LastSyncReport(r.Context())
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		if report == nil {
			WriteError(w, http.StatusNotFound, "no sync recorded yet")
			return
		}
		WriteJSON(w, http.StatusOK, report)
	case http.MethodPost:
		report, err := s.app.AccountService.SyncAll(r.Context())
		if err != nil {
			WriteError(w, http.StatusBadGateway, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, report)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleUnifiedHoldings(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	holdings, err := s.app.AccountService.UnifiedHoldings(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"holdings": holdings,
		"count":    len(holdings),
	})
}
