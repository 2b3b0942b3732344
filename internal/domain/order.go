package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Side indicates which side of the book an order rests on. The values match
// the venue's wire representation.
type Side string

const (
	SideAsk Side = "SELL"
	SideBid Side = "BUY"
)

// OrderType is the venue order type. Only limit orders are placed by the bot.
type OrderType string

const (
	OrderTypeLimit OrderType = "LIMIT"
)

// OrderID is a venue-assigned order identifier. Venues report it either as a
// JSON string or as a bare integer that can exceed float64 precision, so it is
// decoded directly from the raw token and kept as an opaque decimal string.
type OrderID string

// UnmarshalJSON accepts both quoted and bare-number identifiers, preserving
// the digits verbatim in either case.
func (id *OrderID) UnmarshalJSON(data []byte) error {
	token := strings.TrimSpace(string(data))
	if token == "null" {
		*id = ""
		return nil
	}
	if len(token) >= 2 && token[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("order id: %w", err)
		}
		*id = OrderID(s)
		return nil
	}
	for i, c := range token {
		if c >= '0' && c <= '9' {
			continue
		}
		if i == 0 && c == '-' {
			continue
		}
		return fmt.Errorf("order id: invalid numeric token %q", token)
	}
	*id = OrderID(token)
	return nil
}

// MarshalJSON always encodes the identifier as a string so it survives any
// further JSON round trip untouched.
func (id OrderID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(id))
}

func (id OrderID) String() string { return string(id) }

// Order is a new order to submit to the venue.
type Order struct {
	Symbol string
	Price  float64
	Amount float64
	Side   Side
	Type   OrderType
}

// PendingOrder is a live (or just-accepted) order as reported by the venue.
type PendingOrder struct {
	OrderID         OrderID
	ClientOrderID   string
	Symbol          string
	Side            Side
	Type            OrderType
	Status          string
	Price           float64
	OrigAmount      float64
	FilledAmount    float64
	RemainingAmount float64
	Time            time.Time
}

// PendingOrderInput carries the raw wire fields used to build a PendingOrder.
// Numeric fields are decimal strings exactly as the venue returned them.
type PendingOrderInput struct {
	OrderID       OrderID
	ClientOrderID string
	Symbol        string
	Side          string
	Type          string
	Status        string
	Price         string
	OrigAmount    string
	FilledAmount  string
	TimeMillis    int64
}

// NewPendingOrder normalizes a raw order payload into a PendingOrder. The
// remaining amount is derived as original minus filled.
func NewPendingOrder(in PendingOrderInput) (PendingOrder, error) {
	price, err := ParseDecimal(in.Price)
	if err != nil {
		return PendingOrder{}, fmt.Errorf("pending order %s: price: %w", in.OrderID, err)
	}
	orig, err := ParseDecimal(in.OrigAmount)
	if err != nil {
		return PendingOrder{}, fmt.Errorf("pending order %s: orig amount: %w", in.OrderID, err)
	}
	filled, err := ParseDecimal(in.FilledAmount)
	if err != nil {
		return PendingOrder{}, fmt.Errorf("pending order %s: filled amount: %w", in.OrderID, err)
	}
	return PendingOrder{
		OrderID:         in.OrderID,
		ClientOrderID:   in.ClientOrderID,
		Symbol:          in.Symbol,
		Side:            Side(in.Side),
		Type:            OrderType(in.Type),
		Status:          in.Status,
		Price:           price,
		OrigAmount:      orig,
		FilledAmount:    filled,
		RemainingAmount: orig - filled,
		Time:            time.UnixMilli(in.TimeMillis),
	}, nil
}

// Age returns how long the order has been resting relative to now.
func (o PendingOrder) Age(now time.Time) time.Duration {
	return now.Sub(o.Time)
}

// PriceBand is a contiguous price interval assigned to exactly one potential
// resting order. Low <= High always holds.
type PriceBand struct {
	Low  float64
	High float64
}

// Contains reports whether price falls inside the closed band.
func (b PriceBand) Contains(price float64) bool {
	return b.Low <= price && price <= b.High
}
