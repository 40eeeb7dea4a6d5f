package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/riskoslabs/riskos/internal/models"
)

// Engine payload structure keys. The calculate path returns stock and
// summary maps at the top level; the forecast path nests the same
// structure under "result".
const (
	stocksKey  = "individual_stocks"
	summaryKey = "portfolio_summary"
	wrapperKey = "result"
)

// Normalize converts a raw engine payload into the canonical
// PortfolioRiskResult for the submitted portfolio. Both known engine
// shapes are handled losslessly. If no stock entries can be extracted at
// all, a typed EmptyResult error is returned; an empty success would be
// indistinguishable from zero risk.
func Normalize(raw json.RawMessage, portfolio []models.PortfolioEntry) (*models.PortfolioRiskResult, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode engine payload: %w", err)
	}

	stocks, summary := locateSections(payload)
	if len(stocks) == 0 {
		return nil, models.NewEmptyResult()
	}

	perStock := extractPerStock(stocks, portfolio)
	if len(perStock) == 0 {
		return nil, models.NewEmptyResult()
	}

	result := &models.PortfolioRiskResult{
		PerStock: perStock,
	}

	if len(summary) > 0 {
		result.Summary = extractSummary(summary)
	} else {
		result.Summary = deriveSummary(perStock, portfolio)
	}

	return result, nil
}

// locateSections detects the engine response shape: stock entries at the
// top level (flat/calculate), or nested one level under "result"
// (wrapped/forecast).
func locateSections(payload map[string]interface{}) (stocks, summary map[string]interface{}) {
	if s, ok := payload[stocksKey].(map[string]interface{}); ok {
		summary, _ := payload[summaryKey].(map[string]interface{})
		return s, summary
	}
	if inner, ok := payload[wrapperKey].(map[string]interface{}); ok {
		if s, ok := inner[stocksKey].(map[string]interface{}); ok {
			summary, _ := inner[summaryKey].(map[string]interface{})
			return s, summary
		}
	}
	return nil, nil
}

// extractPerStock builds canonical per-stock metrics. Engine ticker keys
// are matched to input holdings case-insensitively and with or without an
// exchange suffix; the input holding's canonical symbol names the entry.
// Engine entries with no matching holding are kept under their own
// canonical symbol so no data is dropped.
func extractPerStock(stocks map[string]interface{}, portfolio []models.PortfolioEntry) map[string]*models.PerStockMetrics {
	holdingsByCanonical := make(map[string]models.PortfolioEntry, len(portfolio))
	for _, entry := range portfolio {
		holdingsByCanonical[CanonicalSymbol(entry.StockName)] = entry
	}

	perStock := make(map[string]*models.PerStockMetrics)
	for engineKey, rawEntry := range stocks {
		fields, ok := rawEntry.(map[string]interface{})
		if !ok {
			continue
		}

		canonical := CanonicalSymbol(engineKey)
		metrics := &models.PerStockMetrics{Symbol: canonical}

		if holding, ok := holdingsByCanonical[canonical]; ok {
			metrics.Quantity = float64(holding.Quantity)
			metrics.BuyPrice = float64(holding.BuyPrice)
		} else {
			metrics.Quantity, _ = lookupNumber(fields, quantityAliases)
			metrics.BuyPrice, _ = lookupNumber(fields, buyPriceAliases)
		}

		if price, ok := lookupNumber(fields, currentPriceAliases); ok && price > 0 {
			metrics.CurrentPrice = &price
		}

		// VaR and CVaR are magnitudes; the engine returns them signed
		// either way.
		varNum, _ := lookupNumber(fields, varAliases)
		metrics.VarAmount = math.Abs(varNum)
		cvarNum, _ := lookupNumber(fields, cvarAliases)
		metrics.CVarAmount = math.Abs(cvarNum)
		metrics.SharpeRatio, _ = lookupNumber(fields, sharpeAliases)
		metrics.MaxDrawdown, _ = lookupNumber(fields, drawdownAliases)

		metrics.Recompute()
		perStock[canonical] = metrics
	}

	return perStock
}

// extractSummary maps an engine-provided portfolio summary through the
// alias tables. A missing risk level is derived from the summary's own
// Sharpe ratio and drawdown.
func extractSummary(summary map[string]interface{}) models.PortfolioSummary {
	s := models.PortfolioSummary{}
	s.TotalValue, _ = lookupNumber(summary, totalValueAliases)
	s.ProfitLoss, _ = lookupNumber(summary, profitLossAliases)

	v, _ := lookupNumber(summary, varAliases)
	s.Var = math.Abs(v)
	cv, _ := lookupNumber(summary, cvarAliases)
	s.CVar = math.Abs(cv)
	s.SharpeRatio, _ = lookupNumber(summary, sharpeAliases)
	s.MaxDrawdown, _ = lookupNumber(summary, drawdownAliases)
	s.PortfolioReturn, _ = lookupNumber(summary, portfolioReturnAliases)

	if level, ok := lookupString(summary, riskLevelAliases); ok {
		s.RiskLevel = mapRiskLevel(level)
	}
	if s.RiskLevel == "" {
		s.RiskLevel = models.DeriveRiskLevel(s.SharpeRatio, s.MaxDrawdown)
	}

	if rec, ok := lookupString(summary, recommendationAliases); ok {
		s.Recommendation = rec
	} else {
		s.Recommendation = fallbackRecommendation(s.RiskLevel)
	}

	return s
}

// deriveSummary reconstructs an aggregate summary when the engine omitted
// one: totals are summed, the Sharpe ratio is position-value weighted, and
// the drawdown is the worst per-stock magnitude. A reconstructed summary
// never reports Low risk: derived numbers are a fallback, not a verdict,
// so the level is capped at Moderate.
func deriveSummary(perStock map[string]*models.PerStockMetrics, portfolio []models.PortfolioEntry) models.PortfolioSummary {
	s := models.PortfolioSummary{Derived: true}

	var invested, weightedSharpe, worstDrawdown float64
	for _, m := range perStock {
		s.TotalValue += m.PositionValue
		s.ProfitLoss += m.ProfitLoss
		s.Var += m.VarAmount
		s.CVar += m.CVarAmount
		weightedSharpe += m.SharpeRatio * m.PositionValue
		if math.Abs(m.MaxDrawdown) > math.Abs(worstDrawdown) {
			worstDrawdown = m.MaxDrawdown
		}
		invested += m.Quantity * m.BuyPrice
	}

	if s.TotalValue > 0 {
		s.SharpeRatio = weightedSharpe / s.TotalValue
	}
	s.MaxDrawdown = worstDrawdown
	if invested > 0 {
		s.PortfolioReturn = (s.ProfitLoss / invested) * 100
	}

	s.RiskLevel = models.DeriveRiskLevel(s.SharpeRatio, s.MaxDrawdown)
	if s.RiskLevel == models.RiskLevelLow {
		s.RiskLevel = models.RiskLevelModerate
	}
	s.Recommendation = fallbackRecommendation(s.RiskLevel)

	return s
}

// mapRiskLevel folds engine risk level strings into the canonical levels.
// Unknown strings fall through to High, never silently optimistic.
func mapRiskLevel(level string) models.RiskLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "low":
		return models.RiskLevelLow
	case "moderate", "medium":
		return models.RiskLevelModerate
	case "high", "very high":
		return models.RiskLevelHigh
	default:
		return models.RiskLevelHigh
	}
}

// fallbackRecommendation supplies presentation text when the engine
// omits one.
func fallbackRecommendation(level models.RiskLevel) string {
	switch level {
	case models.RiskLevelLow:
		return "Portfolio looks well-balanced. Continue current strategy"
	case models.RiskLevelModerate:
		return "Monitor portfolio performance and adjust as needed"
	default:
		return "High volatility detected. Consider diversifying your portfolio"
	}
}
