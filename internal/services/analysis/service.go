// Package analysis orchestrates the risk analysis pipeline:
// validate → submit → normalize → enrich → persist.
package analysis

import (
	"context"
	"time"

	"github.com/riskoslabs/riskos/internal/common"
	"github.com/riskoslabs/riskos/internal/interfaces"
	"github.com/riskoslabs/riskos/internal/models"
	"github.com/riskoslabs/riskos/internal/normalize"
)

// Service implements AnalysisService. The computed result is
// authoritative once normalization succeeds: enrichment and persistence
// failures degrade the outcome, they never roll it back.
type Service struct {
	engine   interfaces.RiskEngineClient
	enricher interfaces.EnrichmentService
	history  interfaces.HistoryService
	logger   *common.Logger
	now      func() time.Time
}

// NewService creates the analysis orchestrator. enricher and history may
// be nil: enrichment is then skipped and results are not persisted.
func NewService(engine interfaces.RiskEngineClient, enricher interfaces.EnrichmentService, history interfaces.HistoryService, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		engine:   engine,
		enricher: enricher,
		history:  history,
		logger:   logger,
		now:      time.Now,
	}
}

// Analyze runs one analysis for an owner. Validation failures and engine
// failures return typed errors and nothing is persisted. After a
// successful computation, a history write failure is reported through
// the outcome's Warning field. Cancelling ctx abandons the pipeline
// without a history write.
func (s *Service) Analyze(ctx context.Context, ownerID string, req *models.AnalysisRequest) (*interfaces.AnalysisOutcome, error) {
	if req == nil {
		return nil, models.NewInvalidInput("request body is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := s.now()
	s.logger.Info().
		Str("owner", ownerID).
		Str("mode", string(req.Mode)).
		Int("holdings", len(req.Portfolio)).
		Float64("confidence", req.ConfidenceLevel).
		Msg("Analysis started")

	raw, err := s.engine.Submit(ctx, req)
	if err != nil {
		s.logger.Error().Str("owner", ownerID).Err(err).Msg("Engine submission failed")
		return nil, err
	}

	result, err := normalize.Normalize(raw, req.Portfolio)
	if err != nil {
		s.logger.Error().Str("owner", ownerID).Err(err).Msg("Engine payload could not be normalized")
		return nil, err
	}

	if s.enricher != nil {
		s.enricher.Enrich(ctx, result)
	}

	// A cancelled request is abandoned before any persistence: the
	// client has gone away and must not accrue history.
	if err := ctx.Err(); err != nil {
		s.logger.Warn().Str("owner", ownerID).Err(err).Msg("Analysis abandoned before persistence")
		return nil, err
	}

	outcome := &interfaces.AnalysisOutcome{Result: result}

	if s.history != nil {
		entry := &models.HistoryEntry{
			Owner:           ownerID,
			Mode:            req.Mode,
			Portfolio:       req.Portfolio,
			ConfidenceLevel: req.ConfidenceLevel,
			ForecastDays:    req.ForecastDays,
			Result:          *result,
			CalculatedAt:    s.now(),
		}
		if err := s.history.Append(ctx, ownerID, entry); err != nil {
			// Compute-then-persist: the result stands, the failure is a
			// warning on the outcome.
			outcome.Warning = "analysis completed but could not be saved to history"
		} else {
			outcome.History = entry
		}
	}

	s.logger.Info().
		Str("owner", ownerID).
		Str("risk_level", string(result.Summary.RiskLevel)).
		Int("stocks", len(result.PerStock)).
		Dur("elapsed", s.now().Sub(start)).
		Msg("Analysis completed")

	return outcome, nil
}

// Ensure Service implements AnalysisService
var _ interfaces.AnalysisService = (*Service)(nil)
