// Package enrich merges canonical risk results with live market prices.
// The stage is best-effort: partial results are valid results.
package enrich

import (
	"context"
	"sync"
	"time"

	"github.com/riskoslabs/riskos/internal/common"
	"github.com/riskoslabs/riskos/internal/interfaces"
	"github.com/riskoslabs/riskos/internal/models"
)

const (
	// DefaultLookupTimeout bounds each per-symbol price lookup so one
	// slow upstream call cannot stall the whole request.
	DefaultLookupTimeout = 5 * time.Second

	// DefaultCacheTTL bounds how long a fetched price may be reused
	// within a cache's scope.
	DefaultCacheTTL = 30 * time.Second
)

// PriceCache is an explicit, scoped price cache passed into the
// enrichment stage per request. It replaces process-wide client-held
// state: the orchestrator creates one per analysis, so entries never leak
// across requests beyond their TTL.
type PriceCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cachedPrice
	now     func() time.Time
}

type cachedPrice struct {
	price     float64
	fetchedAt time.Time
}

// NewPriceCache creates a price cache with the given TTL.
func NewPriceCache(ttl time.Duration) *PriceCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &PriceCache{
		ttl:     ttl,
		entries: make(map[string]cachedPrice),
		now:     time.Now,
	}
}

// Get returns a cached price that is still within its TTL.
func (c *PriceCache) Get(symbol string) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[symbol]
	if !ok || c.now().Sub(entry.fetchedAt) > c.ttl {
		return 0, false
	}
	return entry.price, true
}

// Put stores a freshly fetched price.
func (c *PriceCache) Put(symbol string, price float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[symbol] = cachedPrice{price: price, fetchedAt: c.now()}
}

// Service implements EnrichmentService using a QuoteClient.
type Service struct {
	quotes        interfaces.QuoteClient
	logger        *common.Logger
	lookupTimeout time.Duration
}

// NewService creates a new enrichment service. quotes may be nil, in
// which case enrichment is a no-op and results keep buy-price valuations.
func NewService(quotes interfaces.QuoteClient, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		quotes:        quotes,
		logger:        logger,
		lookupTimeout: DefaultLookupTimeout,
	}
}

// Enrich fetches a live price for each holding concurrently and recomputes
// position value, profit/loss, and percentage return. Per-symbol failures
// leave currentPrice unset; value math falls back to the buy price.
func (s *Service) Enrich(ctx context.Context, result *models.PortfolioRiskResult) {
	s.EnrichWithCache(ctx, result, NewPriceCache(DefaultCacheTTL))
}

// EnrichWithCache is Enrich with an explicit request-scoped price cache.
func (s *Service) EnrichWithCache(ctx context.Context, result *models.PortfolioRiskResult, cache *PriceCache) {
	if s.quotes == nil || result == nil || len(result.PerStock) == 0 {
		return
	}

	var wg sync.WaitGroup
	for symbol, metrics := range result.PerStock {
		wg.Add(1)
		go func(symbol string, metrics *models.PerStockMetrics) {
			defer wg.Done()
			s.enrichOne(ctx, symbol, metrics, cache)
		}(symbol, metrics)
	}
	wg.Wait()

	s.recomputeSummary(result)
}

// enrichOne resolves one symbol's live price. Independent failure
// isolation: errors are logged and swallowed.
func (s *Service) enrichOne(ctx context.Context, symbol string, metrics *models.PerStockMetrics, cache *PriceCache) {
	if cache != nil {
		if price, ok := cache.Get(symbol); ok {
			metrics.CurrentPrice = &price
			metrics.Recompute()
			return
		}
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()

	price, err := s.quotes.GetPrice(lookupCtx, symbol)
	if err != nil {
		s.logger.Warn().
			Str("symbol", symbol).
			Err(err).
			Msg("Price lookup failed, falling back to buy price")
		return
	}
	if price <= 0 {
		return
	}

	if cache != nil {
		cache.Put(symbol, price)
	}
	metrics.CurrentPrice = &price
	metrics.Recompute()
}

// recomputeSummary refreshes derived summary totals after prices changed.
// Engine-provided risk metrics (VaR, CVaR, Sharpe, drawdown, risk level)
// are left untouched; enrichment updates valuations, not risk.
func (s *Service) recomputeSummary(result *models.PortfolioRiskResult) {
	var total, profitLoss, invested float64
	for _, m := range result.PerStock {
		total += m.PositionValue
		profitLoss += m.ProfitLoss
		invested += m.Quantity * m.BuyPrice
	}
	result.Summary.TotalValue = total
	result.Summary.ProfitLoss = profitLoss
	if invested > 0 {
		result.Summary.PortfolioReturn = (profitLoss / invested) * 100
	}
}

// Ensure Service implements EnrichmentService
var _ interfaces.EnrichmentService = (*Service)(nil)
