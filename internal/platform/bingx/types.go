package bingx

import (
	"encoding/json"

	"github.com/imbonda/mm-bot/internal/domain"
)

// envelope is the outer shape of every BingX spot API response. A non-zero
// code means the venue rejected the request even when HTTP status is 200.
type envelope struct {
	Code      int             `json:"code"`
	Timestamp int64           `json:"timestamp"`
	Msg       string          `json:"msg"`
	Data      json.RawMessage `json:"data"`
}

type rawBalances struct {
	Balances []domain.RawAssetBalance `json:"balances"`
}

type rawOrderBook struct {
	Asks         [][2]string `json:"asks"`
	Bids         [][2]string `json:"bids"`
	LastUpdateID string      `json:"lastUpdateId"`
	TS           int64       `json:"ts"`
}

type rawBookTicker struct {
	Symbol   string `json:"symbol"`
	AskPrice string `json:"askPrice"`
	BidPrice string `json:"bidPrice"`
}

type rawTrade struct {
	TradeID string `json:"tradeId"`
	Price   string `json:"price"`
	Amount  string `json:"amount"`
}

type rawSymbolTrades struct {
	Symbol string     `json:"symbol"`
	Trades []rawTrade `json:"trades"`
}

// rawOrder is the venue's order payload, shared by the place-order response
// and the open-orders listing. OrderID uses domain.OrderID so identifiers
// larger than float64 precision survive decoding intact.
type rawOrder struct {
	Symbol        string         `json:"symbol"`
	OrderID       domain.OrderID `json:"orderId"`
	ClientOrderID string         `json:"clientOrderID"`
	Type          string         `json:"type"`
	Side          string         `json:"side"`
	Status        string         `json:"status"`
	Price         string         `json:"price"`
	OrigQty       string         `json:"origQty"`
	ExecutedQty   string         `json:"executedQty"`
	Time          int64          `json:"time"`
}

type rawOrders struct {
	Orders []rawOrder `json:"orders"`
}

func (o rawOrder) pendingOrder() (domain.PendingOrder, error) {
	return domain.NewPendingOrder(domain.PendingOrderInput{
		OrderID:       o.OrderID,
		ClientOrderID: o.ClientOrderID,
		Symbol:        o.Symbol,
		Side:          o.Side,
		Type:          o.Type,
		Status:        o.Status,
		Price:         o.Price,
		OrigAmount:    o.OrigQty,
		FilledAmount:  o.ExecutedQty,
		TimeMillis:    o.Time,
	})
}
