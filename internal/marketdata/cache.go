package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const DefaultCacheTTL = 5 * time.Minute

// Cache decorates a Provider with a Redis quote cache. Search and History
// pass through uncached. Cache errors degrade to a direct provider call.
type Cache struct {
	Next Provider
	Rdb  *redis.Client
	TTL  time.Duration

	log zerolog.Logger
}

func NewCache(next Provider, rdb *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		Next: next,
		Rdb:  rdb,
		TTL:  ttl,
		log:  log.With().Str("component", "price_cache").Logger(),
	}
}

func cacheKey(symbol, source, exchange string) string {
	return fmt.Sprintf("price:%s:%s:%s", source, symbol, exchange)
}

func (c *Cache) GetPrice(ctx context.Context, symbol, source, exchange string) (*Quote, error) {
	key := cacheKey(symbol, source, exchange)

	if b, err := c.Rdb.Get(ctx, key).Bytes(); err == nil {
		var quote Quote
		if json.Unmarshal(b, &quote) == nil {
			return &quote, nil
		}
	}

	quote, err := c.Next.GetPrice(ctx, symbol, source, exchange)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(quote); err == nil {
		if err := c.Rdb.Set(ctx, key, b, c.TTL).Err(); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("Failed to cache quote")
		}
	}
	return quote, nil
}

func (c *Cache) Search(ctx context.Context, query string) ([]SearchResult, error) {
	return c.Next.Search(ctx, query)
}

func (c *Cache) History(ctx context.Context, symbol, source, period, exchange string) ([]Candle, error) {
	return c.Next.History(ctx, symbol, source, period, exchange)
}
