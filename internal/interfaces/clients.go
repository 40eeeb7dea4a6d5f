// Package interfaces defines service contracts for Riskos
package interfaces

import (
	"context"
	"encoding/json"

	"github.com/riskoslabs/riskos/internal/models"
)

// RiskEngineClient submits validated portfolios to the external risk
// engine. The engine owns the statistical/ML computation; this client is
// stateless and performs no retries.
type RiskEngineClient interface {
	// Submit sends the request to /calculate-risk or /predict-portfolio
	// depending on mode and returns the raw engine payload. Failures are
	// typed: EngineUnavailable, EngineTimeout, or EngineRejected.
	Submit(ctx context.Context, req *models.AnalysisRequest) (json.RawMessage, error)

	// Ping probes engine liveness.
	Ping(ctx context.Context) error
}

// QuoteClient fetches a single current price for a ticker from the
// upstream quote source. Pure lookup, no state.
type QuoteClient interface {
	GetPrice(ctx context.Context, symbol string) (float64, error)
}
