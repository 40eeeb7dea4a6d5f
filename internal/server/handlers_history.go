package server

import (
	"net/http"

	"github.com/riskoslabs/riskos/internal/common"
	"github.com/riskoslabs/riskos/internal/models"
)

// handleHistory handles /api/history:
//
//	GET    list the owner's calculation history, newest first
//	DELETE clear the owner's history
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleHistoryList(w, r)
	case http.MethodDelete:
		s.handleHistoryClear(w, r)
	default:
		RequireMethod(w, r, http.MethodGet, http.MethodDelete)
	}
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	ownerID := common.ResolveOwnerID(r.Context())

	entries, err := s.app.HistoryService.List(r.Context(), ownerID)
	if err != nil {
		s.logger.Error().Str("owner", ownerID).Err(err).Msg("Failed to list history")
		WriteError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if entries == nil {
		entries = []*models.HistoryEntry{}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"history": entries,
		"count":   len(entries),
	})
}

func (s *Server) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	ownerID := common.ResolveOwnerID(r.Context())

	if err := s.app.HistoryService.Clear(r.Context(), ownerID); err != nil {
		s.logger.Error().Str("owner", ownerID).Err(err).Msg("Failed to clear history")
		WriteError(w, http.StatusInternalServerError, "failed to clear history")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
