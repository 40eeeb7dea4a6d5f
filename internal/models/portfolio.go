// Package models defines data structures for Riskos
package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// AnalysisMode selects between a current-state calculation and a
// multi-day forecast.
type AnalysisMode string

const (
	ModeCalculate AnalysisMode = "calculate"
	ModeForecast  AnalysisMode = "forecast"
)

// FlexFloat handles JSON values that may be either a number or a string.
// Upstream forms routinely submit quantities and prices as strings.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = FlexFloat(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" || s == "N/A" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = FlexFloat(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

// PortfolioEntry is a single holding submitted for analysis.
type PortfolioEntry struct {
	StockName string    `json:"stockName"`
	Quantity  FlexFloat `json:"quantity"`
	BuyPrice  FlexFloat `json:"buyPrice"`
}

// InvestedValue returns the capital deployed into this holding.
func (e PortfolioEntry) InvestedValue() float64 {
	return float64(e.Quantity) * float64(e.BuyPrice)
}

// Validate checks a single entry. Quantity and buy price must be present,
// numeric, and positive; the symbol must be non-empty.
func (e PortfolioEntry) Validate() error {
	if strings.TrimSpace(e.StockName) == "" {
		return NewInvalidInput("each stock must have a stockName")
	}
	if e.Quantity <= 0 {
		return NewInvalidInput("stock '%s' must have a positive quantity", e.StockName)
	}
	if e.BuyPrice <= 0 {
		return NewInvalidInput("stock '%s' must have a positive buyPrice", e.StockName)
	}
	return nil
}

// AnalysisRequest is a validated portfolio submission.
type AnalysisRequest struct {
	Portfolio       []PortfolioEntry `json:"portfolio"`
	ConfidenceLevel float64          `json:"confidenceLevel"`
	Mode            AnalysisMode     `json:"mode"`
	ForecastDays    int              `json:"forecastDays,omitempty"`
}

// Validate checks the request before any external call is made.
// A Forecast request requires forecastDays explicitly; absence is a
// validation failure, never a default.
func (r *AnalysisRequest) Validate() error {
	if len(r.Portfolio) == 0 {
		return NewInvalidInput("portfolio must be a non-empty list of stocks")
	}
	for _, entry := range r.Portfolio {
		if err := entry.Validate(); err != nil {
			return err
		}
	}
	if r.ConfidenceLevel <= 0 || r.ConfidenceLevel >= 100 {
		return NewInvalidInput("confidenceLevel must be between 0 and 100 (exclusive)")
	}
	switch r.Mode {
	case ModeCalculate:
		// forecastDays ignored
	case ModeForecast:
		if r.ForecastDays <= 0 {
			return NewInvalidInput("forecastDays must be a positive integer for forecast mode")
		}
	default:
		return NewInvalidInput("mode must be 'calculate' or 'forecast'")
	}
	return nil
}
