package strategy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/imbonda/mm-bot/internal/domain"
	"github.com/imbonda/mm-bot/internal/notify"
)

// SpreadConfig holds the spread reconciler parameters.
type SpreadConfig struct {
	Symbol           string        // managed-venue pair, e.g. "LTO-USDT"
	OracleSymbol     string        // oracle pair, e.g. "LTOUSDT"
	Depth            int           // bands (and target resting orders) per side
	LowSpread        float64       // relative distance of the nearest band edge
	HighSpread       float64       // relative distance of the farthest band edge
	MinBaseValue     float64       // minimum ask order size, base asset
	MinQuoteValue    float64       // minimum bid order value, quote asset
	BaseBudgetRatio  float64       // fraction of total base holdings kept in reserve
	QuoteBudgetRatio float64       // fraction of total quote holdings kept in reserve
	StaleAfter       time.Duration // resting age that triggers a full purge
}

// SpreadReconciler keeps a ladder of resting orders on both sides of the
// oracle price. Each round is stateless: it fetches a fresh market snapshot,
// diffs it against the desired ladder, and cancels/places the difference.
type SpreadReconciler struct {
	venue    domain.Exchange
	oracle   domain.Oracle
	cfg      SpreadConfig
	notifier *notify.Notifier
	rng      *rand.Rand
	logger   *slog.Logger
	now      func() time.Time
}

var _ Strategy = (*SpreadReconciler)(nil)

// NewSpreadReconciler creates a spread reconciler quoting on venue around
// oracle's last trade price.
func NewSpreadReconciler(
	venue domain.Exchange,
	oracle domain.Oracle,
	cfg SpreadConfig,
	notifier *notify.Notifier,
	logger *slog.Logger,
) *SpreadReconciler {
	return &SpreadReconciler{
		venue:    venue,
		oracle:   oracle,
		cfg:      cfg,
		notifier: notifier,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger:   logger.With(slog.String("component", "spread")),
		now:      time.Now,
	}
}

func (r *SpreadReconciler) Name() string { return "spread" }

// Run executes one reconciliation round.
func (r *SpreadReconciler) Run(ctx context.Context) error {
	return r.reconcile(ctx, true)
}

// reconcile fetches a snapshot, applies the stale-order guard, and mutates
// the book toward the desired ladder. retryAllowed bounds the purge-and-retry
// path to a single restart; stale orders surviving a clean cancel-all point
// at a persistent venue problem and fail the round instead of recursing.
func (r *SpreadReconciler) reconcile(ctx context.Context, retryAllowed bool) error {
	var (
		ticker  domain.Ticker
		orders  []domain.PendingOrder
		balance domain.AccountBalance
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ticker, err = r.oracle.GetLastTicker(gctx, r.cfg.OracleSymbol)
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = r.venue.GetOpenOrders(gctx, r.cfg.Symbol)
		return err
	})
	g.Go(func() error {
		var err error
		balance, err = r.venue.GetAccountBalance(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("spread: fetch snapshot: %w", err)
	}

	if !ticker.HasLastPrice() {
		return fmt.Errorf("spread: oracle ticker %s: %w", r.cfg.OracleSymbol, domain.ErrNoTicker)
	}

	if r.hasStaleOrders(orders) {
		r.logger.WarnContext(ctx, "stale orders detected, purging book",
			slog.String("symbol", r.cfg.Symbol),
			slog.Int("open_orders", len(orders)),
		)
		_ = r.notifier.Notify(ctx, notify.EventStaleOrders,
			"Stale orders purged",
			fmt.Sprintf("symbol=%s open_orders=%d", r.cfg.Symbol, len(orders)),
		)
		if err := r.venue.CancelAllOrders(ctx, r.cfg.Symbol); err != nil {
			return fmt.Errorf("spread: purge stale orders: %w", err)
		}
		if !retryAllowed {
			return fmt.Errorf("spread: stale orders persist after cancel-all on %s", r.cfg.Symbol)
		}
		return r.reconcile(ctx, false)
	}

	base, quote := r.venue.ParseSymbol(r.cfg.Symbol)
	asks, bids := partitionBySide(orders)

	askPlan := r.planSide(ticker.LastPrice, domain.SideAsk, asks,
		balance.Balance(base), r.cfg.BaseBudgetRatio, r.cfg.MinBaseValue)
	bidPlan := r.planSide(ticker.LastPrice, domain.SideBid, bids,
		balance.Balance(quote), r.cfg.QuoteBudgetRatio, r.cfg.MinQuoteValue)

	cancels := append(append([]domain.PendingOrder{}, askPlan.cancel...), bidPlan.cancel...)
	places := append(append([]domain.Order{}, askPlan.place...), bidPlan.place...)

	r.logger.InfoContext(ctx, "reconciling book",
		slog.String("symbol", r.cfg.Symbol),
		slog.Float64("target_price", ticker.LastPrice),
		slog.Int("open_orders", len(orders)),
		slog.Int("cancels", len(cancels)),
		slog.Int("placements", len(places)),
	)

	var exec errgroup.Group
	exec.Go(func() error {
		r.reportCancels(ctx, r.venue.CancelOrders(ctx, cancels))
		return nil
	})
	exec.Go(func() error {
		r.reportPlacements(ctx, r.venue.PlaceOrders(ctx, places))
		return nil
	})
	_ = exec.Wait()
	return nil
}

func (r *SpreadReconciler) hasStaleOrders(orders []domain.PendingOrder) bool {
	now := r.now()
	for _, order := range orders {
		if order.Age(now) > r.cfg.StaleAfter {
			return true
		}
	}
	return false
}

// sidePlan is the per-side reconciliation outcome.
type sidePlan struct {
	place  []domain.Order
	cancel []domain.PendingOrder
}

// planSide diffs one side's open orders against the desired bands.
//
// Orders are sorted best-first so that, when the side's budget has collapsed
// below the minimum tradable value, the worst-priced half of the ladder is
// evicted ahead of everything else. Each band retains at most one existing
// order; bands left unmatched get a fresh order at a random price strictly
// inside the band, funded by splitting the remaining budget (including the
// value reclaimed from the cancel set) with a per-order floor.
func (r *SpreadReconciler) planSide(
	target float64,
	side domain.Side,
	open []domain.PendingOrder,
	bal domain.AssetBalance,
	budgetRatio, minValue float64,
) sidePlan {
	sorted := sortBestFirst(side, open)
	budget := bal.Free - bal.Total*budgetRatio

	exceeding := make(map[int]bool)
	if budget < minValue && len(sorted) > 0 {
		evict := (len(sorted) + 1) / 2
		for i := len(sorted) - evict; i < len(sorted); i++ {
			exceeding[i] = true
		}
	}

	cancelSet := make(map[int]bool, len(sorted))
	for i := range sorted {
		cancelSet[i] = true
	}

	bands := GenerateBands(target, r.cfg.LowSpread, r.cfg.HighSpread, r.cfg.Depth, side)
	matched := make(map[int]bool, len(sorted))
	var newPrices []float64
	for _, band := range bands {
		idx := -1
		for i, order := range sorted {
			if matched[i] {
				continue
			}
			if band.Contains(order.Price) {
				idx = i
				break
			}
		}
		if idx >= 0 {
			matched[idx] = true
			if !exceeding[idx] {
				delete(cancelSet, idx)
				continue
			}
			// Evicted order stays in the cancel set; its band gets a
			// fresh, smaller order below.
		}
		newPrices = append(newPrices, randomInRange(r.rng, band.Low, band.High))
	}

	cancel := make([]domain.PendingOrder, 0, len(cancelSet))
	for i, order := range sorted {
		if !cancelSet[i] {
			continue
		}
		cancel = append(cancel, order)
		// Reclaim the remaining tradable value of everything we cancel.
		if side == domain.SideAsk {
			budget += order.RemainingAmount
		} else {
			budget += order.RemainingAmount * order.Price
		}
	}

	values := randomSplit(r.rng, budget, len(newPrices), minValue)
	place := make([]domain.Order, 0, len(values))
	for i, value := range values {
		price := newPrices[i]
		amount := value
		if side == domain.SideBid {
			amount = value / price
		}
		place = append(place, domain.Order{
			Symbol: r.cfg.Symbol,
			Price:  price,
			Amount: amount,
			Side:   side,
			Type:   domain.OrderTypeLimit,
		})
	}

	return sidePlan{place: place, cancel: cancel}
}

func (r *SpreadReconciler) reportCancels(ctx context.Context, results []domain.CancelResult) {
	for _, res := range results {
		if res.Err == nil {
			continue
		}
		r.logger.ErrorContext(ctx, "cancel failed",
			slog.String("order_id", res.Order.OrderID.String()),
			slog.Float64("price", res.Order.Price),
			slog.String("error", res.Err.Error()),
		)
	}
}

func (r *SpreadReconciler) reportPlacements(ctx context.Context, results []domain.PlaceResult) {
	for _, res := range results {
		if res.Err == nil {
			r.logger.InfoContext(ctx, "order placed",
				slog.String("order_id", res.Pending.OrderID.String()),
				slog.String("side", string(res.Order.Side)),
				slog.Float64("price", res.Order.Price),
				slog.Float64("amount", res.Order.Amount),
			)
			continue
		}
		r.logger.ErrorContext(ctx, "placement failed",
			slog.String("side", string(res.Order.Side)),
			slog.Float64("price", res.Order.Price),
			slog.String("error", res.Err.Error()),
		)
		var venueErr *domain.VenueError
		if errors.As(res.Err, &venueErr) {
			_ = r.notifier.Notify(ctx, notify.EventOrderRejected,
				"Order rejected",
				fmt.Sprintf("symbol=%s side=%s price=%f: %v", r.cfg.Symbol, res.Order.Side, res.Order.Price, venueErr),
			)
		}
	}
}

// partitionBySide splits open orders into asks and bids.
func partitionBySide(orders []domain.PendingOrder) (asks, bids []domain.PendingOrder) {
	for _, order := range orders {
		switch order.Side {
		case domain.SideAsk:
			asks = append(asks, order)
		case domain.SideBid:
			bids = append(bids, order)
		}
	}
	return asks, bids
}

// sortBestFirst orders a side's orders best-priced first: ascending asks,
// descending bids. The input slice is not modified.
func sortBestFirst(side domain.Side, orders []domain.PendingOrder) []domain.PendingOrder {
	sorted := append([]domain.PendingOrder{}, orders...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if side == domain.SideAsk {
			return sorted[i].Price < sorted[j].Price
		}
		return sorted[i].Price > sorted[j].Price
	})
	return sorted
}
