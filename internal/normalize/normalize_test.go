package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskoslabs/riskos/internal/models"
)

func portfolioFixture() []models.PortfolioEntry {
	return []models.PortfolioEntry{
		{StockName: "RELIANCE.NS", Quantity: 10, BuyPrice: 2450.50},
		{StockName: "TCS.NS", Quantity: 5, BuyPrice: 3600.00},
	}
}

func TestNormalize_FlatShape(t *testing.T) {
	raw := json.RawMessage(`{
		"individual_stocks": {
			"RELIANCE.NS": {
				"VaR (₹)": 1200.5,
				"CVaR (₹)": 1500.25,
				"Sharpe Ratio": 0.42,
				"Max Drawdown": -0.18
			},
			"TCS.NS": {
				"VaR (₹)": 800.0,
				"CVaR (₹)": 950.0,
				"Sharpe Ratio": 0.31,
				"Max Drawdown": -0.12
			}
		},
		"portfolio_summary": {
			"Total Portfolio Value (₹)": 42505.0,
			"VaR (₹)": 1900.0,
			"CVaR (₹)": 2300.0,
			"Sharpe Ratio": 0.38,
			"Max Drawdown": -0.18,
			"Risk Level": "Moderate",
			"Recommendation": "Hold current positions"
		}
	}`)

	result, err := Normalize(raw, portfolioFixture())
	require.NoError(t, err)
	require.NotNil(t, result)

	require.Contains(t, result.PerStock, "RELIANCE")
	require.Contains(t, result.PerStock, "TCS")

	rel := result.PerStock["RELIANCE"]
	assert.Equal(t, "RELIANCE", rel.Symbol)
	assert.Equal(t, 10.0, rel.Quantity)
	assert.Equal(t, 2450.50, rel.BuyPrice)
	assert.Equal(t, 1200.5, rel.VarAmount)
	assert.Equal(t, 1500.25, rel.CVarAmount)
	assert.Equal(t, 0.42, rel.SharpeRatio)
	assert.Equal(t, -0.18, rel.MaxDrawdown)
	assert.Equal(t, 24505.0, rel.PositionValue)

	assert.Equal(t, 42505.0, result.Summary.TotalValue)
	assert.Equal(t, models.RiskLevelModerate, result.Summary.RiskLevel)
	assert.Equal(t, "Hold current positions", result.Summary.Recommendation)
	assert.False(t, result.Summary.Derived)
}

func TestNormalize_WrappedShape(t *testing.T) {
	raw := json.RawMessage(`{
		"result": {
			"individual_stocks": {
				"RELIANCE.NS": {
					"forecast_var": 1200.5,
					"forecast_cvar": 1500.25,
					"sharpe_ratio": 0.42,
					"max_drawdown": -0.18,
					"current_price": 2500.0,
					"position_value": 25000.0
				}
			},
			"portfolio_summary": {
				"Total Portfolio Value (₹)": "₹25,000.00",
				"VaR (₹)": "₹1,200.50",
				"Portfolio Return": "2.02%",
				"Risk Level": "MODERATE",
				"Recommendation": "Hold"
			}
		}
	}`)

	result, err := Normalize(raw, portfolioFixture()[:1])
	require.NoError(t, err)

	rel := result.PerStock["RELIANCE"]
	require.NotNil(t, rel)
	assert.Equal(t, 1200.5, rel.VarAmount)
	assert.Equal(t, 1500.25, rel.CVarAmount)
	require.NotNil(t, rel.CurrentPrice)
	assert.Equal(t, 2500.0, *rel.CurrentPrice)
	// Position value recomputed from live price, not trusted verbatim.
	assert.Equal(t, 25000.0, rel.PositionValue)

	assert.Equal(t, 25000.0, result.Summary.TotalValue)
	assert.Equal(t, 1200.5, result.Summary.Var)
	assert.InDelta(t, 2.02, result.Summary.PortfolioReturn, 0.001)
	assert.Equal(t, models.RiskLevelModerate, result.Summary.RiskLevel)
}

// Both response shapes must produce identical canonical results when they
// carry the same numbers.
func TestNormalize_ShapeInvariance(t *testing.T) {
	flat := json.RawMessage(`{
		"individual_stocks": {
			"INFY.NS": {"VaR (₹)": 500.0, "CVaR (₹)": 600.0, "Sharpe Ratio": 0.5, "Max Drawdown": -0.1}
		}
	}`)
	wrapped := json.RawMessage(`{
		"result": {
			"individual_stocks": {
				"INFY.NS": {"forecast_var": 500.0, "forecast_cvar": 600.0, "sharpe_ratio": 0.5, "max_drawdown": -0.1}
			}
		}
	}`)
	portfolio := []models.PortfolioEntry{{StockName: "INFY", Quantity: 3, BuyPrice: 1500}}

	fromFlat, err := Normalize(flat, portfolio)
	require.NoError(t, err)
	fromWrapped, err := Normalize(wrapped, portfolio)
	require.NoError(t, err)

	assert.Equal(t, fromFlat.PerStock, fromWrapped.PerStock)
	assert.Equal(t, fromFlat.Summary, fromWrapped.Summary)
}

// Engines have reported VaR both as positive loss magnitudes and as
// negative returns. Canonical VaR/CVaR are always magnitudes.
func TestNormalize_NegativeVarBecomesMagnitude(t *testing.T) {
	raw := json.RawMessage(`{
		"individual_stocks": {
			"HDFC.NS": {"VaR (₹)": -1200.5, "CVaR (₹)": -1500.25, "Sharpe Ratio": 0.2, "Max Drawdown": -0.3}
		},
		"portfolio_summary": {
			"VaR (₹)": -1200.5,
			"CVaR (₹)": -1500.25,
			"Sharpe Ratio": 0.2,
			"Max Drawdown": -0.3,
			"Risk Level": "High"
		}
	}`)
	portfolio := []models.PortfolioEntry{{StockName: "HDFC", Quantity: 1, BuyPrice: 1600}}

	result, err := Normalize(raw, portfolio)
	require.NoError(t, err)

	assert.Equal(t, 1200.5, result.PerStock["HDFC"].VarAmount)
	assert.Equal(t, 1500.25, result.PerStock["HDFC"].CVarAmount)
	assert.Equal(t, 1200.5, result.Summary.Var)
	assert.Equal(t, 1500.25, result.Summary.CVar)
	// Drawdown keeps its sign; it is a return, not a magnitude.
	assert.Equal(t, -0.3, result.PerStock["HDFC"].MaxDrawdown)
}

func TestNormalize_DerivedSummaryCappedAtModerate(t *testing.T) {
	// No portfolio_summary section: the summary is reconstructed from
	// per-stock data. Sharpe 0.42 with |drawdown| 0.18 would rate Low,
	// but a derived summary never asserts better than Moderate.
	raw := json.RawMessage(`{
		"individual_stocks": {
			"RELIANCE.NS": {"VaR (₹)": 1200.0, "CVaR (₹)": 1500.0, "Sharpe Ratio": 0.42, "Max Drawdown": -0.18}
		}
	}`)
	portfolio := []models.PortfolioEntry{{StockName: "RELIANCE", Quantity: 10, BuyPrice: 2450.50}}

	result, err := Normalize(raw, portfolio)
	require.NoError(t, err)

	assert.True(t, result.Summary.Derived)
	assert.Equal(t, models.RiskLevelModerate, result.Summary.RiskLevel)
	assert.Equal(t, 24505.0, result.Summary.TotalValue)
	assert.NotEmpty(t, result.Summary.Recommendation)
}

func TestNormalize_DerivedSummaryHighRisk(t *testing.T) {
	raw := json.RawMessage(`{
		"individual_stocks": {
			"ZOMATO.NS": {"VaR (₹)": 900.0, "CVaR (₹)": 1100.0, "Sharpe Ratio": -0.2, "Max Drawdown": -0.6}
		}
	}`)
	portfolio := []models.PortfolioEntry{{StockName: "ZOMATO", Quantity: 100, BuyPrice: 80}}

	result, err := Normalize(raw, portfolio)
	require.NoError(t, err)

	assert.True(t, result.Summary.Derived)
	assert.Equal(t, models.RiskLevelHigh, result.Summary.RiskLevel)
}

func TestNormalize_SymbolMatchingIsCanonical(t *testing.T) {
	// Engine echoes bare uppercase symbols; request used suffixed
	// lowercase. The holding must still be matched.
	raw := json.RawMessage(`{
		"individual_stocks": {
			"RELIANCE": {"VaR (₹)": 100.0, "CVaR (₹)": 120.0, "Sharpe Ratio": 0.1, "Max Drawdown": -0.1}
		}
	}`)
	portfolio := []models.PortfolioEntry{{StockName: "reliance.ns", Quantity: 4, BuyPrice: 2000}}

	result, err := Normalize(raw, portfolio)
	require.NoError(t, err)

	rel := result.PerStock["RELIANCE"]
	require.NotNil(t, rel)
	assert.Equal(t, 4.0, rel.Quantity)
	assert.Equal(t, 2000.0, rel.BuyPrice)
}

func TestNormalize_EmptyResult(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty object", `{}`},
		{"empty stocks", `{"individual_stocks": {}}`},
		{"wrapped empty", `{"result": {"individual_stocks": {}}}`},
		{"unrelated keys", `{"status": "ok"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Normalize(json.RawMessage(tc.raw), portfolioFixture())
			require.Error(t, err)
			assert.True(t, models.IsKind(err, models.ErrKindEmptyResult))
		})
	}
}

func TestNormalize_MalformedPayload(t *testing.T) {
	_, err := Normalize(json.RawMessage(`not json`), portfolioFixture())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode engine payload")
}

func TestNormalize_StringNumbers(t *testing.T) {
	raw := json.RawMessage(`{
		"individual_stocks": {
			"TCS.NS": {
				"VaR (₹)": "₹1,234.56",
				"CVaR (₹)": "1500.25",
				"Sharpe Ratio": "0.9",
				"Max Drawdown": "-12.5%"
			}
		}
	}`)
	portfolio := []models.PortfolioEntry{{StockName: "TCS", Quantity: 2, BuyPrice: 3500}}

	result, err := Normalize(raw, portfolio)
	require.NoError(t, err)

	tcs := result.PerStock["TCS"]
	require.NotNil(t, tcs)
	assert.Equal(t, 1234.56, tcs.VarAmount)
	assert.Equal(t, 1500.25, tcs.CVarAmount)
	assert.Equal(t, 0.9, tcs.SharpeRatio)
	assert.Equal(t, -12.5, tcs.MaxDrawdown)
}

func TestMapRiskLevel(t *testing.T) {
	cases := []struct {
		in   string
		want models.RiskLevel
	}{
		{"Low", models.RiskLevelLow},
		{"low", models.RiskLevelLow},
		{"Moderate", models.RiskLevelModerate},
		{"MEDIUM", models.RiskLevelModerate},
		{"High", models.RiskLevelHigh},
		{"very high", models.RiskLevelHigh},
		{"garbage", models.RiskLevelHigh},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, mapRiskLevel(tc.in), "input %q", tc.in)
	}
}
