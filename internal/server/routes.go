package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/riskoslabs/riskos/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)

	// Analysis
	mux.HandleFunc("/api/analysis", s.handleAnalysis)

	// History
	mux.HandleFunc("/api/history", s.handleHistory)

	// Market data
	mux.HandleFunc("/api/market/price/", s.handleMarketPrice)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}

	engineStatus := "ok"
	if err := s.app.EngineClient.Ping(r.Context()); err != nil {
		engineStatus = "unreachable"
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"engine": engineStatus,
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	ctx := r.Context()

	store := s.app.Storage.InternalStore()

	// Runtime settings from system KV, secrets masked
	kvAll := map[string]string{}
	for _, key := range []string{"riskos_schema_version", "engine_api_key", "quotes_api_key"} {
		if val, err := store.GetSystemKV(ctx, key); err == nil && val != "" {
			kvAll[key] = val
		}
	}
	for k, v := range kvAll {
		if strings.Contains(k, "api_key") {
			kvAll[k] = maskSecret(v)
		}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"runtime_settings":    kvAll,
		"environment":         s.app.Config.Environment,
		"engine_url":          s.app.Config.Clients.RiskEngine.BaseURL,
		"engine_configured":   s.app.EngineClient != nil,
		"quotes_configured":   s.app.QuoteClient != nil,
		"history_max_entries": s.app.Config.History.GetMaxEntries(),
		"storage_internal":    s.app.Config.Storage.Internal.Path,
		"storage_history":     s.app.Config.Storage.History.Path,
		"logging_level":       s.app.Config.Logging.Level,
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
