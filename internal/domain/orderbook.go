package domain

import "fmt"

// BookLevel is one resting-liquidity level: a price and the amount available
// at that price.
type BookLevel struct {
	Price  float64
	Amount float64
}

// OrderBook is a snapshot of resting liquidity on both sides of a symbol.
type OrderBook struct {
	Symbol string
	Asks   []BookLevel
	Bids   []BookLevel
}

// NewOrderBook parses raw [price, amount] string pairs into an OrderBook
// snapshot.
func NewOrderBook(symbol string, asks, bids [][2]string) (OrderBook, error) {
	parsedAsks, err := parseLevels(asks)
	if err != nil {
		return OrderBook{}, fmt.Errorf("order book %s: asks: %w", symbol, err)
	}
	parsedBids, err := parseLevels(bids)
	if err != nil {
		return OrderBook{}, fmt.Errorf("order book %s: bids: %w", symbol, err)
	}
	return OrderBook{Symbol: symbol, Asks: parsedAsks, Bids: parsedBids}, nil
}

// BestAsk returns the best (lowest) ask level. The venue returns asks in
// descending order ending at the best ask, so this is the LAST element of the
// ask array. Verify against the venue contract before pointing the client at
// a different exchange.
func (ob OrderBook) BestAsk() (BookLevel, bool) {
	if len(ob.Asks) == 0 {
		return BookLevel{}, false
	}
	return ob.Asks[len(ob.Asks)-1], true
}

// BestBid returns the best (highest) bid level, the first bid entry.
func (ob OrderBook) BestBid() (BookLevel, bool) {
	if len(ob.Bids) == 0 {
		return BookLevel{}, false
	}
	return ob.Bids[0], true
}

func parseLevels(raw [][2]string) ([]BookLevel, error) {
	levels := make([]BookLevel, 0, len(raw))
	for _, pair := range raw {
		price, err := ParseDecimal(pair[0])
		if err != nil {
			return nil, err
		}
		amount, err := ParseDecimal(pair[1])
		if err != nil {
			return nil, err
		}
		levels = append(levels, BookLevel{Price: price, Amount: amount})
	}
	return levels, nil
}
