package strategy

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/imbonda/mm-bot/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeOracle serves a fixed ticker.
type fakeOracle struct {
	ticker domain.Ticker
	err    error
}

func (f *fakeOracle) GetLastTicker(context.Context, string) (domain.Ticker, error) {
	return f.ticker, f.err
}

// fakeExchange is an in-memory venue recording every mutation.
type fakeExchange struct {
	mu sync.Mutex

	ticker  domain.Ticker
	book    domain.OrderBook
	balance domain.AccountBalance
	orders  []domain.PendingOrder

	placed         []domain.Order
	canceled       []domain.PendingOrder
	cancelAllCalls int
	clearOnPurge   bool
	nextOrderID    int
}

var _ domain.Exchange = (*fakeExchange)(nil)

func (f *fakeExchange) GetLastTicker(context.Context, string) (domain.Ticker, error) {
	return f.ticker, nil
}

func (f *fakeExchange) GetAccountBalance(context.Context) (domain.AccountBalance, error) {
	return f.balance, nil
}

func (f *fakeExchange) GetOrderBook(context.Context, string, int) (domain.OrderBook, error) {
	return f.book, nil
}

func (f *fakeExchange) GetOpenOrders(context.Context, string) ([]domain.PendingOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.PendingOrder{}, f.orders...), nil
}

func (f *fakeExchange) PlaceOrder(_ context.Context, order domain.Order) (domain.PendingOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.placed = append(f.placed, order)
	f.nextOrderID++
	return domain.PendingOrder{
		OrderID:         domain.OrderID(strconv.Itoa(f.nextOrderID)),
		Symbol:          order.Symbol,
		Side:            order.Side,
		Type:            order.Type,
		Price:           order.Price,
		OrigAmount:      order.Amount,
		RemainingAmount: order.Amount,
	}, nil
}

func (f *fakeExchange) PlaceOrders(ctx context.Context, orders []domain.Order) []domain.PlaceResult {
	results := make([]domain.PlaceResult, len(orders))
	for i, order := range orders {
		results[i].Order = order
		results[i].Pending, results[i].Err = f.PlaceOrder(ctx, order)
	}
	return results
}

func (f *fakeExchange) CancelOrder(_ context.Context, order domain.PendingOrder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.canceled = append(f.canceled, order)
	return nil
}

func (f *fakeExchange) CancelOrders(ctx context.Context, orders []domain.PendingOrder) []domain.CancelResult {
	results := make([]domain.CancelResult, len(orders))
	for i, order := range orders {
		results[i].Order = order
		results[i].Err = f.CancelOrder(ctx, order)
	}
	return results
}

func (f *fakeExchange) CancelAllOrders(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelAllCalls++
	if f.clearOnPurge {
		f.orders = nil
	}
	return nil
}

func (f *fakeExchange) ParseSymbol(symbol string) (base, quote string) {
	base, quote, _ = strings.Cut(symbol, "-")
	return base, quote
}
