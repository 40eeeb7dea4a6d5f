package models

import (
	"math"
	"time"
)

// RiskLevel is the qualitative portfolio risk classification.
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "Low"
	RiskLevelModerate RiskLevel = "Moderate"
	RiskLevelHigh     RiskLevel = "High"
)

// PerStockMetrics holds the normalized risk metrics for a single holding.
// VarAmount and CVarAmount are always non-negative magnitudes regardless
// of the sign the engine returned.
type PerStockMetrics struct {
	Symbol        string   `json:"symbol"`
	Quantity      float64  `json:"quantity"`
	BuyPrice      float64  `json:"buy_price"`
	CurrentPrice  *float64 `json:"current_price,omitempty"`
	PositionValue float64  `json:"position_value"`
	ProfitLoss    float64  `json:"profit_loss"`
	ReturnPct     float64  `json:"return_pct"`
	VarAmount     float64  `json:"var_amount"`
	CVarAmount    float64  `json:"cvar_amount"`
	SharpeRatio   float64  `json:"sharpe_ratio"`
	MaxDrawdown   float64  `json:"max_drawdown"`
}

// EffectivePrice returns the live price when available, otherwise the buy
// price. Value and return math always uses this.
func (m *PerStockMetrics) EffectivePrice() float64 {
	if m.CurrentPrice != nil {
		return *m.CurrentPrice
	}
	return m.BuyPrice
}

// Recompute refreshes position value, profit/loss, and percentage return
// from the effective price.
func (m *PerStockMetrics) Recompute() {
	price := m.EffectivePrice()
	m.PositionValue = m.Quantity * price
	m.ProfitLoss = (price - m.BuyPrice) * m.Quantity
	if m.BuyPrice > 0 {
		m.ReturnPct = ((price - m.BuyPrice) / m.BuyPrice) * 100
	}
}

// PortfolioSummary holds aggregate risk metrics for the portfolio.
type PortfolioSummary struct {
	TotalValue      float64   `json:"total_value"`
	ProfitLoss      float64   `json:"profit_loss"`
	Var             float64   `json:"var"`
	CVar            float64   `json:"cvar"`
	SharpeRatio     float64   `json:"sharpe_ratio"`
	MaxDrawdown     float64   `json:"max_drawdown"`
	PortfolioReturn float64   `json:"portfolio_return"`
	RiskLevel       RiskLevel `json:"risk_level"`
	Recommendation  string    `json:"recommendation"`
	// Derived is true when the engine omitted the portfolio summary and
	// it was reconstructed from per-stock metrics.
	Derived bool `json:"derived,omitempty"`
}

// PortfolioRiskResult is the canonical result every consumer relies on.
// Once normalized, no consumer touches engine-specific field names again.
type PortfolioRiskResult struct {
	PerStock map[string]*PerStockMetrics `json:"per_stock"`
	Summary  PortfolioSummary            `json:"summary"`
}

// HistoryEntry is an immutable snapshot of a completed calculation,
// exclusively owned by one user record.
type HistoryEntry struct {
	ID              string              `json:"id"`
	Owner           string              `json:"owner"`
	Mode            AnalysisMode        `json:"mode"`
	Portfolio       []PortfolioEntry    `json:"portfolio"`
	ConfidenceLevel float64             `json:"confidenceLevel"`
	ForecastDays    int                 `json:"forecastDays,omitempty"`
	Result          PortfolioRiskResult `json:"result"`
	CalculatedAt    time.Time           `json:"calculatedAt"`
}

// DeriveRiskLevel classifies risk from the Sharpe ratio and the drawdown
// magnitude when the engine omits a risk level. Drawdown sign is ignored;
// engines report it both ways.
func DeriveRiskLevel(sharpeRatio, maxDrawdown float64) RiskLevel {
	dd := math.Abs(maxDrawdown)
	switch {
	case sharpeRatio > 0.3 && dd < 0.2:
		return RiskLevelLow
	case sharpeRatio > 0.1 && dd < 0.45:
		return RiskLevelModerate
	default:
		return RiskLevelHigh
	}
}
