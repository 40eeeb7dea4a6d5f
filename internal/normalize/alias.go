// Package normalize converts raw risk engine payloads into the canonical
// PortfolioRiskResult. All engine key aliasing lives here; downstream
// consumers never see engine-specific field names.
package normalize

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Metric alias tables. The engine has shipped at least two response
// shapes with inconsistent per-stock key naming: currency-annotated keys
// from the calculate path ("VaR (₹)") and snake_case keys from the
// forecast path ("forecast_var"). Lookups try each alias in order and
// take the first key present.
var (
	varAliases = []string{
		"VaR (₹)", "Value at Risk (VaR)", "VaR", "var",
		"Value at Risk", "forecast_var", "var_amount",
	}
	cvarAliases = []string{
		"CVaR (₹)", "Conditional VaR (CVaR)", "CVaR", "cvar",
		"Conditional VaR", "forecast_cvar", "cvar_amount",
	}
	sharpeAliases = []string{
		"Sharpe Ratio", "sharpe_ratio", "sharpe", "Sharpe",
	}
	drawdownAliases = []string{
		"Max Drawdown", "Maximum Drawdown", "max_drawdown", "maxDrawdown", "drawdown",
	}
	quantityAliases = []string{
		"quantity", "Quantity", "qty",
	}
	buyPriceAliases = []string{
		"buy_price", "buyPrice", "Buy Price",
	}
	currentPriceAliases = []string{
		"current_price", "currentPrice", "Current Price", "price",
	}
	totalValueAliases = []string{
		"Total Portfolio Value (₹)", "Total Portfolio Value",
		"total_value", "totalValue", "portfolio_value",
	}
	profitLossAliases = []string{
		"Total Profit/Loss", "total_profit_loss", "profit_loss", "profitLoss",
	}
	portfolioReturnAliases = []string{
		"Portfolio Return", "portfolio_return", "return_pct", "roi",
	}
	riskLevelAliases = []string{
		"Risk Level", "risk_level", "riskLevel",
	}
	recommendationAliases = []string{
		"Recommendation", "recommendation",
	}
)

// CanonicalSymbol normalizes a ticker for matching: uppercase, trimmed,
// exchange suffix removed ("RELIANCE.NS" and "reliance" both yield
// "RELIANCE"). Suffixes are 1-4 alphanumeric characters after the final
// dot; anything longer is assumed to be part of the symbol itself.
func CanonicalSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if idx := strings.LastIndex(s, "."); idx > 0 {
		suffix := s[idx+1:]
		if len(suffix) >= 1 && len(suffix) <= 4 && isAlphaNum(suffix) {
			s = s[:idx]
		}
	}
	return s
}

func isAlphaNum(s string) bool {
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// lookupNumber finds the first alias present in the map and coerces its
// value to a number. A second pass matches keys case-insensitively to
// absorb casing drift between engine versions.
func lookupNumber(m map[string]interface{}, aliases []string) (float64, bool) {
	for _, alias := range aliases {
		if v, ok := m[alias]; ok {
			return coerceNumber(v), true
		}
	}
	for _, alias := range aliases {
		for key, v := range m {
			if strings.EqualFold(key, alias) {
				return coerceNumber(v), true
			}
		}
	}
	return 0, false
}

// lookupString finds the first alias present and returns its string value.
func lookupString(m map[string]interface{}, aliases []string) (string, bool) {
	for _, alias := range aliases {
		if v, ok := m[alias]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s), true
			}
		}
	}
	for _, alias := range aliases {
		for key, v := range m {
			if strings.EqualFold(key, alias) {
				if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
					return strings.TrimSpace(s), true
				}
			}
		}
	}
	return "", false
}

// coerceNumber converts an engine value to a float64. Formatted strings
// have currency symbols, separators, and percent signs stripped
// ("₹1,23,456.78" → 123456.78, "12.34%" → 12.34). Non-numeric or missing
// values yield 0; the normalizer never fails on a single bad value.
func coerceNumber(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		return parseNumericString(n)
	default:
		return 0
	}
}

func parseNumericString(s string) float64 {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-', r == '+':
			b.WriteRune(r)
		case r == ',', r == '%', r == ' ', r == ' ':
			// separators and annotations dropped
		case r == '₹', r == '$', r == '€', r == '£':
			// currency symbols dropped
		default:
			// any other character ends the numeric portion once digits
			// have been seen (e.g. "1234.5 estimated")
			if b.Len() > 0 {
				f, err := strconv.ParseFloat(b.String(), 64)
				if err != nil {
					return 0
				}
				return f
			}
			return 0
		}
	}
	if b.Len() == 0 {
		return 0
	}
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return f
}
