// Package app provides the top-level application lifecycle for the
// market-making bot. It wires dependencies (venue client, oracle, rate
// limiter, cache, notifications) and drives the configured strategies until
// shutdown.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/imbonda/mm-bot/internal/config"
	"github.com/imbonda/mm-bot/internal/notify"
	"github.com/imbonda/mm-bot/internal/strategy"
)

// App is the root application object. It owns the configuration, logger, and
// a list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run wires all dependencies, starts one runner per enabled strategy, and
// blocks until the context is cancelled. A cancelled context waits for the
// in-flight round to finish before returning.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.String("symbol", a.cfg.Trading.Symbol),
		slog.String("log_level", a.cfg.LogLevel),
	)

	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	if err := deps.Notifier.Notify(ctx, notify.EventStartup, "bot started",
		fmt.Sprintf("quoting %s", a.cfg.Trading.Symbol)); err != nil {
		a.logger.WarnContext(ctx, "startup notification failed", slog.Any("error", err))
	}

	spread := strategy.NewSpreadReconciler(deps.Venue, deps.Oracle, strategy.SpreadConfig{
		Symbol:           a.cfg.Trading.Symbol,
		OracleSymbol:     a.cfg.Trading.OracleSymbol,
		Depth:            a.cfg.Trading.OrderBookDepth,
		LowSpread:        a.cfg.Trading.LowSpread,
		HighSpread:       a.cfg.Trading.HighSpread,
		MinBaseValue:     a.cfg.Trading.MinBaseAmount,
		MinQuoteValue:    a.cfg.Trading.MinQuoteAmount,
		BaseBudgetRatio:  a.cfg.Trading.BaseBudgetRatio,
		QuoteBudgetRatio: a.cfg.Trading.QuoteBudgetRatio,
		StaleAfter:       a.cfg.Trading.StaleAfter.Duration,
	}, deps.Notifier, a.logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		runner := strategy.NewRunner(spread, a.cfg.Trading.UpdateInterval.Duration, deps.Notifier, a.logger)
		return runner.Run(gctx)
	})

	if a.cfg.Volume.Enabled {
		volume := strategy.NewVolumeQuoter(deps.Venue, deps.Oracle, strategy.VolumeConfig{
			Symbol:       a.cfg.Trading.Symbol,
			OracleSymbol: a.cfg.Trading.OracleSymbol,
			Depth:        a.cfg.Trading.OrderBookDepth,
			MarginLower:  a.cfg.Volume.MarginLower,
			MarginUpper:  a.cfg.Volume.MarginUpper,
			MinAmount:    a.cfg.Volume.MinAmount,
			MaxAmount:    a.cfg.Volume.MaxAmount,
		}, a.logger)
		g.Go(func() error {
			runner := strategy.NewRunner(volume, a.cfg.Volume.UpdateInterval.Duration, deps.Notifier, a.logger)
			return runner.Run(gctx)
		})
	}

	return g.Wait()
}

// Close tears down all resources in reverse registration order. It is safe to
// call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
