package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexFloat_Unmarshal(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want float64
	}{
		{"number", `12.5`, 12.5},
		{"integer", `10`, 10},
		{"numeric string", `"12.5"`, 12.5},
		{"padded string", `" 10 "`, 10},
		{"empty string", `""`, 0},
		{"n/a", `"N/A"`, 0},
		{"garbage string", `"abc"`, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var f FlexFloat
			require.NoError(t, json.Unmarshal([]byte(tc.in), &f))
			assert.Equal(t, tc.want, float64(f))
		})
	}

	var f FlexFloat
	assert.Error(t, json.Unmarshal([]byte(`{"x": 1}`), &f))
}

func TestPortfolioEntry_UnmarshalStringValues(t *testing.T) {
	raw := `{"stockName": "RELIANCE.NS", "quantity": "10", "buyPrice": "2450.50"}`
	var entry PortfolioEntry
	require.NoError(t, json.Unmarshal([]byte(raw), &entry))
	assert.Equal(t, FlexFloat(10), entry.Quantity)
	assert.Equal(t, FlexFloat(2450.50), entry.BuyPrice)
	assert.Equal(t, 24505.0, entry.InvestedValue())
}

func TestAnalysisRequest_Validate(t *testing.T) {
	valid := func() *AnalysisRequest {
		return &AnalysisRequest{
			Portfolio: []PortfolioEntry{
				{StockName: "RELIANCE", Quantity: 10, BuyPrice: 2450.50},
			},
			ConfidenceLevel: 95,
			Mode:            ModeCalculate,
		}
	}

	require.NoError(t, valid().Validate())

	cases := []struct {
		name   string
		mutate func(*AnalysisRequest)
	}{
		{"empty portfolio", func(r *AnalysisRequest) { r.Portfolio = nil }},
		{"missing stock name", func(r *AnalysisRequest) { r.Portfolio[0].StockName = " " }},
		{"zero quantity", func(r *AnalysisRequest) { r.Portfolio[0].Quantity = 0 }},
		{"negative quantity", func(r *AnalysisRequest) { r.Portfolio[0].Quantity = -1 }},
		{"zero buy price", func(r *AnalysisRequest) { r.Portfolio[0].BuyPrice = 0 }},
		{"zero confidence", func(r *AnalysisRequest) { r.ConfidenceLevel = 0 }},
		{"confidence at 100", func(r *AnalysisRequest) { r.ConfidenceLevel = 100 }},
		{"negative confidence", func(r *AnalysisRequest) { r.ConfidenceLevel = -5 }},
		{"unknown mode", func(r *AnalysisRequest) { r.Mode = "simulate" }},
		{"forecast without days", func(r *AnalysisRequest) { r.Mode = ModeForecast }},
		{"forecast negative days", func(r *AnalysisRequest) { r.Mode = ModeForecast; r.ForecastDays = -3 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid()
			tc.mutate(req)
			err := req.Validate()
			require.Error(t, err)
			assert.True(t, IsKind(err, ErrKindInvalidInput))
		})
	}

	// Fractional quantities are allowed
	req := valid()
	req.Portfolio[0].Quantity = 0.5
	assert.NoError(t, req.Validate())

	// forecastDays ignored in calculate mode
	req = valid()
	req.ForecastDays = 30
	assert.NoError(t, req.Validate())
}
