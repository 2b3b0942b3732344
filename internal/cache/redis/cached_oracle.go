package redis

import (
	"context"
	"errors"
	"log/slog"

	"github.com/imbonda/mm-bot/internal/domain"
)

// CachedOracle is a read-through decorator over a price oracle. Cache
// failures degrade to a direct oracle read; writing back is best effort.
type CachedOracle struct {
	inner  domain.Oracle
	cache  *TickerCache
	logger *slog.Logger
}

var _ domain.Oracle = (*CachedOracle)(nil)

// NewCachedOracle wraps oracle with the given ticker cache.
func NewCachedOracle(oracle domain.Oracle, cache *TickerCache, logger *slog.Logger) *CachedOracle {
	return &CachedOracle{
		inner:  oracle,
		cache:  cache,
		logger: logger.With("component", "cached_oracle"),
	}
}

// GetLastTicker serves the ticker from cache when a fresh entry exists,
// otherwise reads the oracle and caches the result.
func (o *CachedOracle) GetLastTicker(ctx context.Context, symbol string) (domain.Ticker, error) {
	ticker, err := o.cache.GetTicker(ctx, symbol)
	if err == nil {
		return ticker, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		o.logger.Warn("ticker cache read failed", "symbol", symbol, "error", err)
	}

	ticker, err = o.inner.GetLastTicker(ctx, symbol)
	if err != nil {
		return domain.Ticker{}, err
	}
	if cacheErr := o.cache.SetTicker(ctx, ticker); cacheErr != nil {
		o.logger.Warn("ticker cache write failed", "symbol", symbol, "error", cacheErr)
	}
	return ticker, nil
}
