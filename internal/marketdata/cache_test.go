package marketdata

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"folio-backend/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	stubProvider
	calls int64
}

func (p *countingProvider) GetPrice(ctx context.Context, symbol, source, exchange string) (*Quote, error) {
	atomic.AddInt64(&p.calls, 1)
	return p.stubProvider.GetPrice(ctx, symbol, source, exchange)
}

func setupCacheTest(t *testing.T) (*Cache, *countingProvider, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	provider := &countingProvider{stubProvider: stubProvider{
		prices: map[string]decimal.Decimal{"AAPL": decimal.NewFromInt(200)},
	}}
	return NewCache(provider, rdb, time.Minute), provider, mr
}

func TestCache_GetPriceCachesQuotes(t *testing.T) {
	cache, provider, _ := setupCacheTest(t)
	ctx := context.Background()

	first, err := cache.GetPrice(ctx, "AAPL", domain.DataSourceEODHD, "US")
	require.NoError(t, err)
	second, err := cache.GetPrice(ctx, "AAPL", domain.DataSourceEODHD, "US")
	require.NoError(t, err)

	assert.True(t, first.Price.Equal(second.Price))
	assert.EqualValues(t, 1, atomic.LoadInt64(&provider.calls), "second lookup must hit the cache")
}

func TestCache_ExpiryRefetches(t *testing.T) {
	cache, provider, mr := setupCacheTest(t)
	ctx := context.Background()

	_, err := cache.GetPrice(ctx, "AAPL", domain.DataSourceEODHD, "US")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = cache.GetPrice(ctx, "AAPL", domain.DataSourceEODHD, "US")
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt64(&provider.calls))
}

func TestCache_KeysAreSourceScoped(t *testing.T) {
	cache, provider, _ := setupCacheTest(t)
	ctx := context.Background()
	provider.prices["BTC"] = decimal.NewFromInt(95000)

	_, err := cache.GetPrice(ctx, "BTC", domain.DataSourceCoinGecko, "")
	require.NoError(t, err)
	_, err = cache.GetPrice(ctx, "BTC", domain.DataSourceEODHD, "US")
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt64(&provider.calls), "different sources must not share cache entries")
}

func TestCache_ProviderErrorNotCached(t *testing.T) {
	cache, provider, _ := setupCacheTest(t)
	ctx := context.Background()

	_, err := cache.GetPrice(ctx, "MISSING", domain.DataSourceEODHD, "US")
	require.Error(t, err)
	_, err = cache.GetPrice(ctx, "MISSING", domain.DataSourceEODHD, "US")
	require.Error(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt64(&provider.calls))
}
