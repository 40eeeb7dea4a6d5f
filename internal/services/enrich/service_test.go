package enrich

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskoslabs/riskos/internal/common"
	"github.com/riskoslabs/riskos/internal/models"
)

// --- Mocks ---

type mockQuotes struct {
	mu     sync.Mutex
	prices map[string]float64
	errs   map[string]error
	calls  map[string]int
	delay  time.Duration
}

func newMockQuotes() *mockQuotes {
	return &mockQuotes{
		prices: make(map[string]float64),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

func (m *mockQuotes) GetPrice(ctx context.Context, symbol string) (float64, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[symbol]++
	if err, ok := m.errs[symbol]; ok {
		return 0, err
	}
	if price, ok := m.prices[symbol]; ok {
		return price, nil
	}
	return 0, fmt.Errorf("no quote for %s", symbol)
}

func resultFixture(symbols ...string) *models.PortfolioRiskResult {
	perStock := make(map[string]*models.PerStockMetrics)
	for _, symbol := range symbols {
		m := &models.PerStockMetrics{
			Symbol:   symbol,
			Quantity: 10,
			BuyPrice: 100,
		}
		m.Recompute()
		perStock[symbol] = m
	}
	return &models.PortfolioRiskResult{PerStock: perStock}
}

// --- Tests ---

func TestEnrich_AppliesLivePrices(t *testing.T) {
	quotes := newMockQuotes()
	quotes.prices["RELIANCE"] = 120
	quotes.prices["TCS"] = 90

	svc := NewService(quotes, common.NewSilentLogger())
	result := resultFixture("RELIANCE", "TCS")

	svc.Enrich(context.Background(), result)

	rel := result.PerStock["RELIANCE"]
	require.NotNil(t, rel.CurrentPrice)
	assert.Equal(t, 120.0, *rel.CurrentPrice)
	assert.Equal(t, 1200.0, rel.PositionValue)
	assert.Equal(t, 200.0, rel.ProfitLoss)
	assert.InDelta(t, 20.0, rel.ReturnPct, 0.001)

	tcs := result.PerStock["TCS"]
	require.NotNil(t, tcs.CurrentPrice)
	assert.Equal(t, 900.0, tcs.PositionValue)
	assert.Equal(t, -100.0, tcs.ProfitLoss)

	assert.Equal(t, 2100.0, result.Summary.TotalValue)
	assert.Equal(t, 100.0, result.Summary.ProfitLoss)
	assert.InDelta(t, 5.0, result.Summary.PortfolioReturn, 0.001)
}

func TestEnrich_PartialFailureIsolated(t *testing.T) {
	quotes := newMockQuotes()
	quotes.prices["RELIANCE"] = 120
	quotes.prices["INFY"] = 200
	quotes.errs["TCS"] = fmt.Errorf("upstream 502")

	svc := NewService(quotes, common.NewSilentLogger())
	result := resultFixture("RELIANCE", "TCS", "INFY")

	svc.Enrich(context.Background(), result)

	require.NotNil(t, result.PerStock["RELIANCE"].CurrentPrice)
	require.NotNil(t, result.PerStock["INFY"].CurrentPrice)

	// The failed holding keeps buy-price valuation.
	tcs := result.PerStock["TCS"]
	assert.Nil(t, tcs.CurrentPrice)
	assert.Equal(t, 1000.0, tcs.PositionValue)
	assert.Equal(t, 0.0, tcs.ProfitLoss)
}

func TestEnrich_NilQuotesIsNoop(t *testing.T) {
	svc := NewService(nil, common.NewSilentLogger())
	result := resultFixture("RELIANCE")

	svc.Enrich(context.Background(), result)

	assert.Nil(t, result.PerStock["RELIANCE"].CurrentPrice)
	assert.Equal(t, 1000.0, result.PerStock["RELIANCE"].PositionValue)
}

func TestEnrich_CacheSkipsRepeatLookups(t *testing.T) {
	quotes := newMockQuotes()
	quotes.prices["RELIANCE"] = 120

	svc := NewService(quotes, common.NewSilentLogger())
	cache := NewPriceCache(time.Minute)

	first := resultFixture("RELIANCE")
	svc.EnrichWithCache(context.Background(), first, cache)
	second := resultFixture("RELIANCE")
	svc.EnrichWithCache(context.Background(), second, cache)

	assert.Equal(t, 1, quotes.calls["RELIANCE"], "second enrichment should hit the cache")
	require.NotNil(t, second.PerStock["RELIANCE"].CurrentPrice)
	assert.Equal(t, 120.0, *second.PerStock["RELIANCE"].CurrentPrice)
}

func TestPriceCache_TTLExpiry(t *testing.T) {
	cache := NewPriceCache(time.Minute)
	now := time.Now()
	cache.now = func() time.Time { return now }

	cache.Put("RELIANCE", 120)

	price, ok := cache.Get("RELIANCE")
	require.True(t, ok)
	assert.Equal(t, 120.0, price)

	now = now.Add(2 * time.Minute)
	_, ok = cache.Get("RELIANCE")
	assert.False(t, ok, "entry past its TTL must not be served")
}

func TestEnrich_LookupTimeoutFallsBack(t *testing.T) {
	quotes := newMockQuotes()
	quotes.prices["RELIANCE"] = 120
	quotes.delay = 50 * time.Millisecond

	svc := NewService(quotes, common.NewSilentLogger())
	svc.lookupTimeout = 5 * time.Millisecond
	result := resultFixture("RELIANCE")

	svc.Enrich(context.Background(), result)

	assert.Nil(t, result.PerStock["RELIANCE"].CurrentPrice)
	assert.Equal(t, 1000.0, result.PerStock["RELIANCE"].PositionValue)
}
