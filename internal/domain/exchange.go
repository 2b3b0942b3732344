package domain

import "context"

// Oracle is the external venue whose last trade price is treated as ground
// truth for the target price.
type Oracle interface {
	GetLastTicker(ctx context.Context, symbol string) (Ticker, error)
}

// PlaceResult is the per-order outcome of a batch placement. Err is nil for
// orders the venue accepted; Pending is only meaningful when Err is nil.
type PlaceResult struct {
	Order   Order
	Pending PendingOrder
	Err     error
}

// CancelResult is the per-order outcome of a batch cancellation.
type CancelResult struct {
	Order PendingOrder
	Err   error
}

// Exchange is the managed venue the bot quotes on. All operations honor the
// client's configured per-call timeout and may fail with a *VenueError on
// non-success API status codes.
type Exchange interface {
	Oracle

	// GetAccountBalance fetches per-asset free/locked funds. Authenticated.
	GetAccountBalance(ctx context.Context) (AccountBalance, error)

	// GetOrderBook fetches up to depth levels per side.
	GetOrderBook(ctx context.Context, symbol string, depth int) (OrderBook, error)

	// GetOpenOrders lists the live orders on symbol. Authenticated.
	GetOpenOrders(ctx context.Context, symbol string) ([]PendingOrder, error)

	// PlaceOrder submits a single limit order with a fresh idempotency token.
	PlaceOrder(ctx context.Context, order Order) (PendingOrder, error)

	// PlaceOrders submits orders concurrently and reports each outcome.
	// Results preserve input order; partial failure is expected.
	PlaceOrders(ctx context.Context, orders []Order) []PlaceResult

	// CancelOrder cancels a single live order.
	CancelOrder(ctx context.Context, order PendingOrder) error

	// CancelOrders cancels orders concurrently and reports each outcome.
	CancelOrders(ctx context.Context, orders []PendingOrder) []CancelResult

	// CancelAllOrders purges every open order on symbol, used for
	// stale-state recovery.
	CancelAllOrders(ctx context.Context, symbol string) error

	// ParseSymbol splits a venue pair symbol into base and quote assets.
	ParseSymbol(symbol string) (base, quote string)
}
