package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderBookBestLevels(t *testing.T) {
	// Asks arrive descending, ending at the best (lowest) ask; bids arrive
	// descending starting at the best (highest) bid.
	book, err := NewOrderBook("LTO-USDT",
		[][2]string{{"0.130", "10"}, {"0.128", "5"}, {"0.126", "7"}},
		[][2]string{{"0.124", "3"}, {"0.122", "8"}},
	)
	require.NoError(t, err)

	ask, ok := book.BestAsk()
	require.True(t, ok)
	assert.InDelta(t, 0.126, ask.Price, 1e-9)

	bid, ok := book.BestBid()
	require.True(t, ok)
	assert.InDelta(t, 0.124, bid.Price, 1e-9)
}

func TestOrderBookEmptySides(t *testing.T) {
	book, err := NewOrderBook("LTO-USDT", nil, nil)
	require.NoError(t, err)

	_, ok := book.BestAsk()
	assert.False(t, ok)
	_, ok = book.BestBid()
	assert.False(t, ok)
}

func TestFormatDecimal(t *testing.T) {
	assert.Equal(t, "0.125000", FormatDecimal(0.125, 6))
	assert.Equal(t, "10.13", FormatDecimal(10.1251, 2))
	assert.Equal(t, "3.00", FormatDecimal(3, 2))
}

func TestParseDecimal(t *testing.T) {
	v, err := ParseDecimal("")
	require.NoError(t, err)
	assert.Zero(t, v)

	v, err = ParseDecimal("0.126")
	require.NoError(t, err)
	assert.InDelta(t, 0.126, v, 1e-9)

	_, err = ParseDecimal("not-a-number")
	assert.Error(t, err)
}
