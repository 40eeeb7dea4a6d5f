package server

import (
	"net/http"

	"github.com/riskoslabs/riskos/internal/normalize"
)

// handleMarketPrice handles GET /api/market/price/{symbol}: a live quote
// for a single symbol, resolved through the same canonicalization the
// analysis pipeline uses.
func (s *Server) handleMarketPrice(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := PathParam(r, "/api/market/price/", "")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required in path")
		return
	}

	if s.app.QuoteClient == nil {
		WriteError(w, http.StatusServiceUnavailable, "live quotes are not configured")
		return
	}

	canonical := normalize.CanonicalSymbol(symbol)

	price, err := s.app.QuoteClient.GetPrice(r.Context(), symbol)
	if err != nil {
		s.logger.Warn().Str("symbol", symbol).Err(err).Msg("Quote lookup failed")
		WriteError(w, http.StatusBadGateway, "failed to fetch price for "+canonical)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"symbol": canonical,
		"price":  price,
	})
}
