// Package bybit implements a read-only client for the Bybit v5 market API,
// used as the price oracle.
package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/imbonda/mm-bot/internal/domain"
)

const (
	venueName      = "bybit"
	defaultBaseURL = "https://api.bybit.com"
	defaultTimeout = 10 * time.Second

	pathTickers = "/v5/market/tickers"
)

// Config holds the oracle client settings.
type Config struct {
	BaseURL string        // API root; empty means the production URL
	Timeout time.Duration // per-call budget
}

// Client reads market tickers from Bybit. All endpoints it touches are
// public, so it carries no credentials.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
}

var _ domain.Oracle = (*Client)(nil)

// NewClient creates a Bybit market-data client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout + time.Second},
		timeout:    cfg.Timeout,
		logger:     logger.With("component", "bybit"),
	}
}

type tickersResponse struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		List []struct {
			Symbol    string `json:"symbol"`
			LastPrice string `json:"lastPrice"`
			Ask1Price string `json:"ask1Price"`
			Bid1Price string `json:"bid1Price"`
		} `json:"list"`
	} `json:"result"`
}

// GetLastTicker fetches the spot ticker for symbol. An empty result list
// fails with domain.ErrNoTicker.
func (c *Client) GetLastTicker(ctx context.Context, symbol string) (domain.Ticker, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("category", "spot")
	params.Set("symbol", symbol)

	fullURL := c.baseURL + pathTickers + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.Ticker{}, fmt.Errorf("bybit: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Ticker{}, fmt.Errorf("bybit: get tickers %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Ticker{}, fmt.Errorf("bybit: read response: %w", err)
	}

	c.logger.Debug("api call", "path", pathTickers, "symbol", symbol, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.Ticker{}, fmt.Errorf("bybit: http %d", resp.StatusCode)
	}

	var parsed tickersResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return domain.Ticker{}, fmt.Errorf("bybit: decode tickers: %w", err)
	}
	if parsed.RetCode != 0 {
		return domain.Ticker{}, &domain.VenueError{Venue: venueName, Code: parsed.RetCode, Message: parsed.RetMsg}
	}
	if len(parsed.Result.List) == 0 {
		return domain.Ticker{}, fmt.Errorf("bybit: tickers %s: %w", symbol, domain.ErrNoTicker)
	}

	entry := parsed.Result.List[0]
	return domain.NewTicker(symbol, entry.LastPrice, entry.Ask1Price, entry.Bid1Price)
}
