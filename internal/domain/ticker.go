package domain

import "fmt"

// Ticker combines the last trade price with the top of the book. Fields that
// the feed could not supply are zero; callers that require a field (the
// reconciler needs LastPrice) must check before use.
type Ticker struct {
	Symbol    string  `json:"symbol"`
	LastPrice float64 `json:"lastPrice"`
	BestAsk   float64 `json:"bestAsk"`
	BestBid   float64 `json:"bestBid"`
}

// NewTicker parses the raw decimal strings of a ticker payload. Empty strings
// leave the corresponding field absent (zero).
func NewTicker(symbol, lastPrice, bestAsk, bestBid string) (Ticker, error) {
	last, err := ParseDecimal(lastPrice)
	if err != nil {
		return Ticker{}, fmt.Errorf("ticker %s: last price: %w", symbol, err)
	}
	ask, err := ParseDecimal(bestAsk)
	if err != nil {
		return Ticker{}, fmt.Errorf("ticker %s: best ask: %w", symbol, err)
	}
	bid, err := ParseDecimal(bestBid)
	if err != nil {
		return Ticker{}, fmt.Errorf("ticker %s: best bid: %w", symbol, err)
	}
	return Ticker{Symbol: symbol, LastPrice: last, BestAsk: ask, BestBid: bid}, nil
}

// HasLastPrice reports whether the last-trade feed supplied a usable price.
func (t Ticker) HasLastPrice() bool { return t.LastPrice > 0 }
