package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/imbonda/mm-bot/internal/domain"
)

// TickerCache stores oracle tickers as JSON strings at key
// "ticker:{symbol}" with a TTL, so repeated reconciliation rounds within the
// TTL reuse one oracle read.
type TickerCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTickerCache creates a TickerCache backed by the given Client.
func NewTickerCache(c *Client, ttl time.Duration) *TickerCache {
	return &TickerCache{rdb: c.Underlying(), ttl: ttl}
}

func tickerKey(symbol string) string {
	return "ticker:" + symbol
}

// SetTicker stores the ticker under its symbol with the cache TTL.
func (tc *TickerCache) SetTicker(ctx context.Context, ticker domain.Ticker) error {
	payload, err := json.Marshal(ticker)
	if err != nil {
		return fmt.Errorf("redis: marshal ticker %s: %w", ticker.Symbol, err)
	}
	if err := tc.rdb.Set(ctx, tickerKey(ticker.Symbol), payload, tc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set ticker %s: %w", ticker.Symbol, err)
	}
	return nil
}

// GetTicker retrieves a cached ticker. It returns domain.ErrNotFound when no
// fresh entry exists.
func (tc *TickerCache) GetTicker(ctx context.Context, symbol string) (domain.Ticker, error) {
	payload, err := tc.rdb.Get(ctx, tickerKey(symbol)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Ticker{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Ticker{}, fmt.Errorf("redis: get ticker %s: %w", symbol, err)
	}
	var ticker domain.Ticker
	if err := json.Unmarshal(payload, &ticker); err != nil {
		return domain.Ticker{}, fmt.Errorf("redis: decode ticker %s: %w", symbol, err)
	}
	return ticker, nil
}
