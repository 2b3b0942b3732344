package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/imbonda/mm-bot/internal/cache/redis"
	"github.com/imbonda/mm-bot/internal/config"
	"github.com/imbonda/mm-bot/internal/domain"
	"github.com/imbonda/mm-bot/internal/notify"
	"github.com/imbonda/mm-bot/internal/platform/bingx"
	"github.com/imbonda/mm-bot/internal/platform/bybit"
	"github.com/imbonda/mm-bot/internal/ratelimit"
)

// Dependencies bundles every domain-level dependency the strategies need. It
// is constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Venue    domain.Exchange
	Oracle   domain.Oracle
	Limiter  *ratelimit.Limiter
	Notifier *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Rate limiter, shared by every venue call ---
	deps.Limiter = ratelimit.New(ratelimit.Config{
		MaxPerWindow:  cfg.RateLimit.MaxPerWindow,
		Window:        cfg.RateLimit.Window.Duration,
		MaxConcurrent: cfg.RateLimit.MaxConcurrent,
		QueueSize:     cfg.RateLimit.QueueSize,
		DropOverflow:  cfg.RateLimit.DropOverflow,
	})

	// --- Managed venue ---
	venue, err := bingx.NewClient(bingx.Config{
		BaseURL:        cfg.BingX.BaseURL,
		APIKey:         cfg.BingX.ApiKey,
		APISecret:      cfg.BingX.ApiSecret,
		Timeout:        cfg.BingX.Timeout.Duration,
		PriceDecimals:  cfg.Trading.PriceDecimals,
		AmountDecimals: cfg.Trading.AmountDecimals,
	}, deps.Limiter, logger)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: bingx: %w", err)
	}
	deps.Venue = venue

	// --- Oracle ---
	deps.Oracle = bybit.NewClient(bybit.Config{
		BaseURL: cfg.Oracle.BaseURL,
		Timeout: cfg.Oracle.Timeout.Duration,
	}, logger)

	// --- Redis ticker cache (optional) ---
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		cache := redis.NewTickerCache(redisClient, cfg.Redis.TickerTTL.Duration)
		deps.Oracle = redis.NewCachedOracle(deps.Oracle, cache, logger)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	events := make([]notify.Event, 0, len(cfg.Notify.Events))
	for _, e := range cfg.Notify.Events {
		events = append(events, notify.Event(e))
	}
	deps.Notifier = notify.NewNotifier(senders, events, logger)

	return deps, cleanup, nil
}
