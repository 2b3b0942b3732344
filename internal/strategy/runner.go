package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/imbonda/mm-bot/internal/notify"
)

// Runner drives one strategy round by round. The interval is a
// sleep-after-completion delay rather than a fixed-rate schedule, so a slow
// round pushes the next one later instead of overlapping it.
type Runner struct {
	strategy Strategy
	interval time.Duration
	notifier *notify.Notifier
	logger   *slog.Logger
}

// NewRunner creates a Runner executing strategy every interval.
func NewRunner(strategy Strategy, interval time.Duration, notifier *notify.Notifier, logger *slog.Logger) *Runner {
	return &Runner{
		strategy: strategy,
		interval: interval,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "runner"), slog.String("strategy", strategy.Name())),
	}
}

// Run loops until ctx is canceled. A failed round is logged and reported;
// the next round is always scheduled.
func (r *Runner) Run(ctx context.Context) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		r.runOnce(ctx)

		r.logger.DebugContext(ctx, "sleeping", slog.Duration("interval", r.interval))
		timer.Reset(r.interval)
	}
}

// runOnce executes a single round, containing both errors and panics so a bad
// round can never take the loop down.
func (r *Runner) runOnce(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			r.reportFailure(ctx, fmt.Errorf("panic: %v", rec))
		}
	}()

	start := time.Now()
	if err := r.strategy.Run(ctx); err != nil {
		r.reportFailure(ctx, err)
		return
	}
	r.logger.InfoContext(ctx, "round complete", slog.Duration("elapsed", time.Since(start)))
}

func (r *Runner) reportFailure(ctx context.Context, err error) {
	r.logger.ErrorContext(ctx, "round failed", slog.String("error", err.Error()))
	_ = r.notifier.Notify(ctx, notify.EventRoundFailed,
		"Round failed",
		fmt.Sprintf("strategy=%s: %v", r.strategy.Name(), err),
	)
}
