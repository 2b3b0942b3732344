package strategy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imbonda/mm-bot/internal/domain"
	"github.com/imbonda/mm-bot/internal/notify"
)

func testSpreadConfig() SpreadConfig {
	return SpreadConfig{
		Symbol:           "LTO-USDT",
		OracleSymbol:     "LTOUSDT",
		Depth:            2,
		LowSpread:        0.02,
		HighSpread:       0.10,
		MinBaseValue:     5,
		MinQuoteValue:    5,
		BaseBudgetRatio:  0,
		QuoteBudgetRatio: 0,
		StaleAfter:       2 * time.Hour,
	}
}

func newTestReconciler(venue domain.Exchange, oracle domain.Oracle, cfg SpreadConfig) *SpreadReconciler {
	logger := testLogger()
	notifier := notify.NewNotifier(nil, nil, logger)
	r := NewSpreadReconciler(venue, oracle, cfg, notifier, logger)
	r.rng = testRNG()
	return r
}

func ask(id domain.OrderID, price, remaining float64) domain.PendingOrder {
	return domain.PendingOrder{OrderID: id, Side: domain.SideAsk, Price: price, RemainingAmount: remaining}
}

func TestPlanSideRetainsMatchedOrders(t *testing.T) {
	r := newTestReconciler(nil, nil, testSpreadConfig())

	// Bands for target=100: [101,103] and [103,105]; both are covered.
	open := []domain.PendingOrder{ask("a", 102, 10), ask("b", 104, 10)}
	bal := domain.AssetBalance{Free: 1000, Total: 1000}

	plan := r.planSide(100, domain.SideAsk, open, bal, 0, 5)
	assert.Empty(t, plan.cancel)
	assert.Empty(t, plan.place)
}

func TestPlanSideRetentionIsIdempotent(t *testing.T) {
	r := newTestReconciler(nil, nil, testSpreadConfig())

	open := []domain.PendingOrder{ask("a", 102, 10), ask("x", 110, 10)}
	bal := domain.AssetBalance{Free: 1000, Total: 1000}

	first := r.planSide(100, domain.SideAsk, open, bal, 0, 5)
	second := r.planSide(100, domain.SideAsk, open, bal, 0, 5)

	require.Len(t, first.cancel, 1)
	assert.Equal(t, domain.OrderID("x"), first.cancel[0].OrderID)
	// Retain/cancel decisions are deterministic for an unchanged snapshot.
	require.Len(t, second.cancel, 1)
	assert.Equal(t, first.cancel[0].OrderID, second.cancel[0].OrderID)
}

func TestPlanSideFillsUnmatchedBands(t *testing.T) {
	r := newTestReconciler(nil, nil, testSpreadConfig())

	open := []domain.PendingOrder{ask("a", 102, 10)}
	bal := domain.AssetBalance{Free: 1000, Total: 1000}

	plan := r.planSide(100, domain.SideAsk, open, bal, 0, 5)
	require.Len(t, plan.place, 1)

	order := plan.place[0]
	assert.Greater(t, order.Price, 103.0)
	assert.Less(t, order.Price, 105.0)
	assert.GreaterOrEqual(t, order.Amount, 5.0)
	assert.LessOrEqual(t, order.Amount, 1000.0)
	assert.Equal(t, domain.SideAsk, order.Side)
	assert.Equal(t, domain.OrderTypeLimit, order.Type)
}

func TestPlanSideBudgetReservation(t *testing.T) {
	r := newTestReconciler(nil, nil, testSpreadConfig())

	// budget = free - total*ratio = 600 - 1000*0.5 = 100.
	bal := domain.AssetBalance{Free: 600, Total: 1000}
	plan := r.planSide(100, domain.SideAsk, nil, bal, 0.5, 5)

	require.Len(t, plan.place, 2)
	sum := 0.0
	for _, order := range plan.place {
		sum += order.Amount
	}
	assert.LessOrEqual(t, sum, 100.0+1e-6)
}

func TestPlanSideNegativeBudgetQuotesNothingWithoutReclaim(t *testing.T) {
	r := newTestReconciler(nil, nil, testSpreadConfig())

	// budget = 0 - 1000*0.5 = -500; no open orders to reclaim from.
	bal := domain.AssetBalance{Free: 0, Total: 1000}
	plan := r.planSide(100, domain.SideAsk, nil, bal, 0.5, 5)
	assert.Empty(t, plan.place)
	assert.Empty(t, plan.cancel)
}

func TestPlanSideEvictsWorstPricedHalf(t *testing.T) {
	r := newTestReconciler(nil, nil, testSpreadConfig())

	// Budget below the minimum forces eviction of ceil(4/2)=2 worst asks.
	open := []domain.PendingOrder{
		ask("best", 101.5, 10),
		ask("second", 102.5, 10),
		ask("third", 103.5, 10),
		ask("worst", 104.5, 10),
	}
	bal := domain.AssetBalance{Free: 0, Total: 0}

	plan := r.planSide(100, domain.SideAsk, open, bal, 0, 5)

	canceled := make(map[domain.OrderID]bool)
	for _, order := range plan.cancel {
		canceled[order.OrderID] = true
	}
	// "third" matched band [103,105] but is evicted anyway; "worst" is
	// evicted; "second" lost the band race to "best".
	assert.True(t, canceled["third"])
	assert.True(t, canceled["worst"])
	assert.True(t, canceled["second"])
	assert.False(t, canceled["best"])

	// Reclaimed value (3 x 10 base) funds replacement orders for the band
	// freed by the eviction.
	require.NotEmpty(t, plan.place)
	sum := 0.0
	for _, order := range plan.place {
		assert.GreaterOrEqual(t, order.Amount, 5.0)
		sum += order.Amount
	}
	assert.LessOrEqual(t, sum, 30.0+1e-6)
}

func TestPlanSideEvictionOddCount(t *testing.T) {
	r := newTestReconciler(nil, nil, testSpreadConfig())

	open := []domain.PendingOrder{
		ask("a", 101.5, 1),
		ask("b", 103.5, 1),
		ask("c", 104.5, 1),
	}
	bal := domain.AssetBalance{Free: 0, Total: 0}

	plan := r.planSide(100, domain.SideAsk, open, bal, 0, 5)

	// ceil(3/2)=2 worst-priced asks are forced out.
	canceled := make(map[domain.OrderID]bool)
	for _, order := range plan.cancel {
		canceled[order.OrderID] = true
	}
	assert.True(t, canceled["b"])
	assert.True(t, canceled["c"])
	assert.False(t, canceled["a"])
}

func TestPlanSideBidAmountsAreQuoteDenominated(t *testing.T) {
	r := newTestReconciler(nil, nil, testSpreadConfig())

	// budget = 100 quote; bands for bids sit below the target.
	bal := domain.AssetBalance{Free: 100, Total: 100}
	plan := r.planSide(100, domain.SideBid, nil, bal, 0, 5)

	require.Len(t, plan.place, 2)
	spent := 0.0
	for _, order := range plan.place {
		assert.Less(t, order.Price, 100.0)
		spent += order.Amount * order.Price
	}
	assert.LessOrEqual(t, spent, 100.0+1e-6)
}

func TestReconcileStaleOrdersPurgedAndRetriedOnce(t *testing.T) {
	venue := &fakeExchange{
		balance:      mustBalance(t, "1000", "1000"),
		clearOnPurge: true,
	}
	venue.orders = []domain.PendingOrder{
		{OrderID: "old", Side: domain.SideAsk, Price: 102, Time: time.Now().Add(-3 * time.Hour)},
	}
	oracle := &fakeOracle{ticker: domain.Ticker{Symbol: "LTOUSDT", LastPrice: 100}}

	r := newTestReconciler(venue, oracle, testSpreadConfig())
	require.NoError(t, r.Run(context.Background()))

	assert.Equal(t, 1, venue.cancelAllCalls)
	assert.NotEmpty(t, venue.placed)
}

func TestReconcileStalePersistenceFailsRound(t *testing.T) {
	venue := &fakeExchange{
		balance:      mustBalance(t, "1000", "1000"),
		clearOnPurge: false, // purge never takes; orders stay stale
	}
	venue.orders = []domain.PendingOrder{
		{OrderID: "old", Side: domain.SideAsk, Price: 102, Time: time.Now().Add(-3 * time.Hour)},
	}
	oracle := &fakeOracle{ticker: domain.Ticker{Symbol: "LTOUSDT", LastPrice: 100}}

	r := newTestReconciler(venue, oracle, testSpreadConfig())
	err := r.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, 2, venue.cancelAllCalls)
}

func TestReconcileFailsWithoutOraclePrice(t *testing.T) {
	venue := &fakeExchange{balance: mustBalance(t, "0", "0")}
	oracle := &fakeOracle{ticker: domain.Ticker{Symbol: "LTOUSDT"}}

	r := newTestReconciler(venue, oracle, testSpreadConfig())
	assert.ErrorIs(t, r.Run(context.Background()), domain.ErrNoTicker)
}

func mustBalance(t *testing.T, base, quote string) domain.AccountBalance {
	t.Helper()
	balance, err := domain.NewAccountBalance([]domain.RawAssetBalance{
		{Asset: "LTO", Free: base, Locked: "0"},
		{Asset: "USDT", Free: quote, Locked: "0"},
	})
	require.NoError(t, err)
	return balance
}
