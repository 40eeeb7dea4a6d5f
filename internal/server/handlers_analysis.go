package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/riskoslabs/riskos/internal/common"
	"github.com/riskoslabs/riskos/internal/models"
)

// handleAnalysis handles POST /api/analysis: the full risk analysis
// pipeline for the authenticated owner's submitted portfolio.
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.AnalysisRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	ownerID := common.ResolveOwnerID(r.Context())

	outcome, err := s.app.AnalysisService.Analyze(r.Context(), ownerID, &req)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, outcome)
}

// writeAnalysisError maps the analysis error taxonomy onto HTTP statuses.
// Engine rejection detail is surfaced verbatim so the caller can fix
// their input without resubmitting blind.
func writeAnalysisError(w http.ResponseWriter, err error) {
	if errors.Is(err, context.Canceled) {
		// Client went away; 499-style close. Use 408 for standard clients.
		WriteError(w, http.StatusRequestTimeout, "request cancelled")
		return
	}

	var ae *models.AnalysisError
	if !errors.As(err, &ae) {
		WriteError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	resp := ErrorResponse{Error: ae.Message, Code: string(ae.Kind)}
	if ae.Detail != nil {
		resp.AvailableStocks = ae.Detail.AvailableStocks
	}

	switch ae.Kind {
	case models.ErrKindInvalidInput:
		WriteJSON(w, http.StatusBadRequest, resp)
	case models.ErrKindEngineRejected:
		// The engine refused the submission; the fault lies with the
		// submitted portfolio, not this service.
		WriteJSON(w, http.StatusUnprocessableEntity, resp)
	case models.ErrKindEngineTimeout:
		WriteJSON(w, http.StatusGatewayTimeout, resp)
	case models.ErrKindEngineUnavailable:
		WriteJSON(w, http.StatusBadGateway, resp)
	case models.ErrKindEmptyResult:
		WriteJSON(w, http.StatusBadGateway, resp)
	default:
		WriteJSON(w, http.StatusInternalServerError, resp)
	}
}
