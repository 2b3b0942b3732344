// Package bingx implements the REST client for the BingX spot API, the venue
// the bot quotes on.
package bingx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/imbonda/mm-bot/internal/crypto"
	"github.com/imbonda/mm-bot/internal/domain"
	"github.com/imbonda/mm-bot/internal/ratelimit"
)

const (
	venueName      = "bingx"
	defaultBaseURL = "https://open-api.bingx.com"
	apiV1Prefix    = "/openApi/spot/v1"
	headerAPIKey   = "X-BX-APIKEY"

	defaultTimeout  = 10 * time.Second
	defaultDecimals = 8

	pathAccountBalance = "/account/balance"
	pathOrderBook      = "/market/depth"
	pathOpenOrders     = "/trade/openOrders"
	pathBookTicker     = "/ticker/bookTicker"
	pathPriceTicker    = "/ticker/price"
	pathPlaceOrder     = "/trade/order"
	pathCancelOrder    = "/trade/cancel"
	pathBatchCancel    = "/trade/cancelOrders"
	pathCancelAll      = "/trade/cancelOpenOrders"
)

// Config holds the client settings.
type Config struct {
	BaseURL        string        // API root; empty means the production URL
	APIKey         string        // header credential
	APISecret      string        // HMAC signing secret
	Timeout        time.Duration // per-call budget, applied inside each operation
	PriceDecimals  int           // decimal places for submitted prices
	AmountDecimals int           // decimal places for submitted amounts
}

// Client is the REST client for the BingX spot API. Every outbound call first
// passes through the shared rate limiter.
type Client struct {
	baseURL        string
	auth           *crypto.QueryAuth
	limiter        *ratelimit.Limiter
	httpClient     *http.Client
	timeout        time.Duration
	priceDecimals  int
	amountDecimals int
	logger         *slog.Logger
}

var _ domain.Exchange = (*Client)(nil)

// NewClient creates a BingX REST client. Credentials are required; every
// write and the private reads are signed.
func NewClient(cfg Config, limiter *ratelimit.Limiter, logger *slog.Logger) (*Client, error) {
	auth, err := crypto.NewQueryAuth(cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("bingx: %w", err)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.PriceDecimals <= 0 {
		cfg.PriceDecimals = defaultDecimals
	}
	if cfg.AmountDecimals <= 0 {
		cfg.AmountDecimals = defaultDecimals
	}
	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		auth:           auth,
		limiter:        limiter,
		httpClient:     &http.Client{Timeout: cfg.Timeout + time.Second},
		timeout:        cfg.Timeout,
		priceDecimals:  cfg.PriceDecimals,
		amountDecimals: cfg.AmountDecimals,
		logger:         logger.With("component", "bingx"),
	}, nil
}

// ParseSymbol splits a BingX pair symbol ("LTO-USDT") into base and quote.
func (c *Client) ParseSymbol(symbol string) (base, quote string) {
	base, quote, _ = strings.Cut(symbol, "-")
	return base, quote
}

// GetAccountBalance fetches per-asset free and locked funds.
func (c *Client) GetAccountBalance(ctx context.Context) (domain.AccountBalance, error) {
	data, err := c.send(ctx, http.MethodGet, pathAccountBalance, url.Values{}, true)
	if err != nil {
		return domain.AccountBalance{}, fmt.Errorf("bingx: get account balance: %w", err)
	}
	var raw rawBalances
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.AccountBalance{}, fmt.Errorf("bingx: decode balances: %w", err)
	}
	return domain.NewAccountBalance(raw.Balances)
}

// GetOrderBook fetches up to depth levels per side for symbol.
func (c *Client) GetOrderBook(ctx context.Context, symbol string, depth int) (domain.OrderBook, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("limit", strconv.Itoa(depth))

	data, err := c.send(ctx, http.MethodGet, pathOrderBook, params, false)
	if err != nil {
		return domain.OrderBook{}, fmt.Errorf("bingx: get order book %s: %w", symbol, err)
	}
	var raw rawOrderBook
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.OrderBook{}, fmt.Errorf("bingx: decode order book: %w", err)
	}
	return domain.NewOrderBook(symbol, raw.Asks, raw.Bids)
}

// GetOpenOrders lists the live orders on symbol.
func (c *Client) GetOpenOrders(ctx context.Context, symbol string) ([]domain.PendingOrder, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	data, err := c.send(ctx, http.MethodGet, pathOpenOrders, params, true)
	if err != nil {
		return nil, fmt.Errorf("bingx: get open orders %s: %w", symbol, err)
	}
	var raw rawOrders
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("bingx: decode open orders: %w", err)
	}
	orders := make([]domain.PendingOrder, 0, len(raw.Orders))
	for _, entry := range raw.Orders {
		order, err := entry.pendingOrder()
		if err != nil {
			return nil, fmt.Errorf("bingx: open orders %s: %w", symbol, err)
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// GetLastTicker composes the last trade price with the top of the book. The
// two public reads run concurrently; an empty payload on either leaves the
// corresponding ticker fields zero rather than failing the call.
func (c *Client) GetLastTicker(ctx context.Context, symbol string) (domain.Ticker, error) {
	var (
		book  rawBookTicker
		trade rawTrade
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		book, err = c.lastBookTicker(gctx, symbol)
		return err
	})
	g.Go(func() error {
		var err error
		trade, err = c.lastTrade(gctx, symbol)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Ticker{}, fmt.Errorf("bingx: get last ticker %s: %w", symbol, err)
	}
	return domain.NewTicker(symbol, trade.Price, book.AskPrice, book.BidPrice)
}

// PlaceOrder submits a single limit order with a fresh client order ID.
func (c *Client) PlaceOrder(ctx context.Context, order domain.Order) (domain.PendingOrder, error) {
	params := url.Values{}
	params.Set("type", string(order.Type))
	params.Set("symbol", order.Symbol)
	params.Set("side", string(order.Side))
	params.Set("quantity", domain.FormatDecimal(order.Amount, c.amountDecimals))
	params.Set("price", domain.FormatDecimal(order.Price, c.priceDecimals))
	params.Set("newClientOrderId", newClientOrderID())
	params.Set("timeInForce", "GTC")

	data, err := c.send(ctx, http.MethodPost, pathPlaceOrder, params, true)
	if err != nil {
		return domain.PendingOrder{}, fmt.Errorf("bingx: place order: %w", err)
	}
	var raw rawOrder
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.PendingOrder{}, fmt.Errorf("bingx: decode placed order: %w", err)
	}
	return raw.pendingOrder()
}

// PlaceOrders submits orders concurrently, one request each, and reports the
// outcome per order. Results preserve the input order.
func (c *Client) PlaceOrders(ctx context.Context, orders []domain.Order) []domain.PlaceResult {
	results := make([]domain.PlaceResult, len(orders))
	var g errgroup.Group
	for i, order := range orders {
		results[i].Order = order
		g.Go(func() error {
			results[i].Pending, results[i].Err = c.PlaceOrder(ctx, order)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// CancelOrder cancels one live order.
func (c *Client) CancelOrder(ctx context.Context, order domain.PendingOrder) error {
	params := url.Values{}
	params.Set("symbol", order.Symbol)
	params.Set("orderId", order.OrderID.String())

	if _, err := c.send(ctx, http.MethodPost, pathCancelOrder, params, true); err != nil {
		return fmt.Errorf("bingx: cancel order %s: %w", order.OrderID, err)
	}
	return nil
}

// CancelOrders cancels orders concurrently, one request each, and reports the
// outcome per order. Results preserve the input order.
func (c *Client) CancelOrders(ctx context.Context, orders []domain.PendingOrder) []domain.CancelResult {
	results := make([]domain.CancelResult, len(orders))
	var g errgroup.Group
	for i, order := range orders {
		results[i].Order = order
		g.Go(func() error {
			results[i].Err = c.CancelOrder(ctx, order)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// CancelOrdersBatch cancels orders through the venue's batch endpoint in a
// single request. Unlike CancelOrders it cannot attribute failures to
// individual orders. All orders must share one symbol.
func (c *Client) CancelOrdersBatch(ctx context.Context, orders []domain.PendingOrder) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	for i, order := range orders {
		ids[i] = order.OrderID.String()
	}
	params := url.Values{}
	params.Set("symbol", orders[0].Symbol)
	params.Set("orderIds", strings.Join(ids, ","))

	if _, err := c.send(ctx, http.MethodPost, pathBatchCancel, params, true); err != nil {
		return fmt.Errorf("bingx: batch cancel: %w", err)
	}
	return nil
}

// CancelAllOrders purges every open order on symbol.
func (c *Client) CancelAllOrders(ctx context.Context, symbol string) error {
	params := url.Values{}
	params.Set("symbol", symbol)

	if _, err := c.send(ctx, http.MethodPost, pathCancelAll, params, true); err != nil {
		return fmt.Errorf("bingx: cancel all orders %s: %w", symbol, err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

func (c *Client) lastBookTicker(ctx context.Context, symbol string) (rawBookTicker, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	data, err := c.send(ctx, http.MethodGet, pathBookTicker, params, false)
	if err != nil {
		return rawBookTicker{}, fmt.Errorf("book ticker: %w", err)
	}
	var raw []rawBookTicker
	if err := json.Unmarshal(data, &raw); err != nil {
		return rawBookTicker{}, fmt.Errorf("decode book ticker: %w", err)
	}
	if len(raw) == 0 {
		return rawBookTicker{}, nil
	}
	return raw[0], nil
}

func (c *Client) lastTrade(ctx context.Context, symbol string) (rawTrade, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	data, err := c.send(ctx, http.MethodGet, pathPriceTicker, params, false)
	if err != nil {
		return rawTrade{}, fmt.Errorf("price ticker: %w", err)
	}
	var raw []rawSymbolTrades
	if err := json.Unmarshal(data, &raw); err != nil {
		return rawTrade{}, fmt.Errorf("decode price ticker: %w", err)
	}
	if len(raw) == 0 || len(raw[0].Trades) == 0 {
		return rawTrade{}, nil
	}
	return raw[0].Trades[0], nil
}

// send acquires a rate-limit slot, builds the (optionally signed) query,
// performs the HTTP call under the per-call timeout, and validates the
// response envelope. It returns the envelope's data payload.
//
// POST requests are always signed. GET requests are signed only when auth is
// set; public market-data reads go out unsigned.
func (c *Client) send(ctx context.Context, method, path string, params url.Values, auth bool) (json.RawMessage, error) {
	if err := c.limiter.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("acquire rate limit: %w", err)
	}
	defer c.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	signed := auth || method == http.MethodPost
	var query string
	if signed {
		query = c.auth.SignedQuery(params)
	} else {
		query = params.Encode()
	}

	fullURL := c.baseURL + apiV1Prefix + path
	if query != "" {
		fullURL += "?" + query
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if signed {
		req.Header.Set(headerAPIKey, c.auth.Key)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("api call", "method", method, "path", path, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, truncate(body, 256))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Code != 0 {
		return nil, &domain.VenueError{Venue: venueName, Code: env.Code, Message: env.Msg}
	}
	return env.Data, nil
}

// newClientOrderID returns a fresh 32-hex-char idempotency token; BingX
// rejects client order IDs containing dashes.
func newClientOrderID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
