// Package interfaces defines service contracts for Riskos
package interfaces

import (
	"context"

	"github.com/riskoslabs/riskos/internal/models"
)

// AnalysisService orchestrates the full risk analysis pipeline:
// validate → submit → normalize → enrich → persist.
type AnalysisService interface {
	// Analyze runs one analysis request for an owner. On success the
	// canonical result is returned together with the created history
	// entry reference (when persistence succeeded) and any persistence
	// warning. Cancelling ctx abandons the pipeline without a history
	// write.
	Analyze(ctx context.Context, ownerID string, req *models.AnalysisRequest) (*AnalysisOutcome, error)
}

// AnalysisOutcome is the two-phase result of a completed analysis:
// the computed result is authoritative; persistence failure is a
// recoverable side channel, never a rollback.
type AnalysisOutcome struct {
	Result  *models.PortfolioRiskResult `json:"result"`
	History *models.HistoryEntry        `json:"history,omitempty"`
	// Warning is set when the analysis succeeded but the history write
	// failed (PersistenceWarning).
	Warning string `json:"warning,omitempty"`
}

// HistoryService manages the bounded per-owner calculation history.
type HistoryService interface {
	// Append persists a completed calculation. It never fails the
	// caller's primary flow: a persistence failure is logged and
	// returned as a non-nil error for the caller to downgrade to a
	// warning.
	Append(ctx context.Context, ownerID string, entry *models.HistoryEntry) error

	// List returns the owner's entries ordered newest-first.
	List(ctx context.Context, ownerID string) ([]*models.HistoryEntry, error)

	// Clear removes all entries for the owner atomically.
	Clear(ctx context.Context, ownerID string) error
}

// EnrichmentService merges canonical results with live per-symbol prices.
// Best-effort: a failed lookup for one holding never aborts the others.
type EnrichmentService interface {
	Enrich(ctx context.Context, result *models.PortfolioRiskResult)
}
