// Package riskengine provides a client for the external risk engine API
package riskengine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/riskoslabs/riskos/internal/common"
	"github.com/riskoslabs/riskos/internal/interfaces"
	"github.com/riskoslabs/riskos/internal/models"
)

const (
	DefaultBaseURL   = "http://localhost:5002"
	DefaultTimeout   = 30 * time.Second // forecast calls can be long-running
	DefaultRateLimit = 5                // requests per second

	calculatePath = "/calculate-risk"
	forecastPath  = "/predict-portfolio"
	pingPath      = "/test"
)

// Client implements the RiskEngineClient interface
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new risk engine client. apiKey may be empty when the
// engine deployment does not require one.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// engineRequest is the wire format the engine expects.
type engineRequest struct {
	Portfolio       []models.PortfolioEntry `json:"portfolio"`
	ConfidenceLevel float64                 `json:"confidenceLevel"`
	ForecastDays    int                     `json:"forecastDays,omitempty"`
}

// Submit sends the portfolio to the engine endpoint matching the request
// mode and returns the raw payload. Failure mapping: no response →
// EngineUnavailable, deadline expiry → EngineTimeout, non-2xx →
// EngineRejected carrying the engine's error payload.
func (c *Client) Submit(ctx context.Context, req *models.AnalysisRequest) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	path := calculatePath
	if req.Mode == models.ModeForecast {
		path = forecastPath
	}

	body := engineRequest{
		Portfolio:       req.Portfolio,
		ConfidenceLevel: req.ConfidenceLevel,
	}
	if req.Mode == models.ModeForecast {
		body.ForecastDays = req.ForecastDays
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.logger.Debug().
		Str("path", path).
		Int("holdings", len(req.Portfolio)).
		Msg("Risk engine request")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, models.NewEngineUnavailable(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, models.NewEngineRejected(resp.StatusCode, parseErrorDetail(raw))
	}

	return raw, nil
}

// Ping probes engine liveness via its test route.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pingPath, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.NewEngineRejected(resp.StatusCode, nil)
	}
	return nil
}

// classifyTransportError maps a failed round trip to the error taxonomy.
// Caller cancellation propagates untouched so the orchestrator can abandon
// the pipeline.
func classifyTransportError(ctx context.Context, err error) error {
	if ctx.Err() == context.Canceled {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return models.NewEngineTimeout(err)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return models.NewEngineTimeout(err)
	}
	return models.NewEngineUnavailable(err)
}

// parseErrorDetail extracts the engine's error payload. The engine sends
// {"error": "...", "availableStocks": [...]} on rejection; anything else
// is preserved raw.
func parseErrorDetail(raw []byte) *models.EngineErrorDetail {
	detail := &models.EngineErrorDetail{Raw: json.RawMessage(raw)}
	if err := json.Unmarshal(raw, detail); err != nil {
		detail.Message = string(raw)
	}
	return detail
}

// Ensure Client implements RiskEngineClient
var _ interfaces.RiskEngineClient = (*Client)(nil)
