package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imbonda/mm-bot/internal/domain"
)

func TestGenerateBandsAskSide(t *testing.T) {
	bands := GenerateBands(100, 0.02, 0.10, 2, domain.SideAsk)
	require.Len(t, bands, 2)

	assert.InDelta(t, 101, bands[0].Low, 1e-9)
	assert.InDelta(t, 103, bands[0].High, 1e-9)
	assert.InDelta(t, 103, bands[1].Low, 1e-9)
	assert.InDelta(t, 105, bands[1].High, 1e-9)
}

func TestGenerateBandsBidSideMirrors(t *testing.T) {
	bands := GenerateBands(100, 0.02, 0.10, 2, domain.SideBid)
	require.Len(t, bands, 2)

	// Nearest-to-target first, each normalized to Low <= High.
	assert.InDelta(t, 97, bands[0].Low, 1e-9)
	assert.InDelta(t, 99, bands[0].High, 1e-9)
	assert.InDelta(t, 95, bands[1].Low, 1e-9)
	assert.InDelta(t, 97, bands[1].High, 1e-9)
}

func TestGenerateBandsSpanAndAdjacency(t *testing.T) {
	const (
		target = 0.126
		low    = 0.01
		high   = 0.07
		n      = 5
	)
	bands := GenerateBands(target, low, high, n, domain.SideAsk)
	require.Len(t, bands, n)

	assert.InDelta(t, target*(1+low/2), bands[0].Low, 1e-12)
	assert.InDelta(t, target*(1+high/2), bands[n-1].High, 1e-12)

	width := bands[0].High - bands[0].Low
	for i, band := range bands {
		assert.InDelta(t, width, band.High-band.Low, 1e-12, "band %d width", i)
		if i > 0 {
			assert.InDelta(t, bands[i-1].High, band.Low, 1e-12, "band %d adjacency", i)
		}
	}
}

func TestGenerateBandsZeroDepth(t *testing.T) {
	assert.Nil(t, GenerateBands(100, 0.02, 0.10, 0, domain.SideAsk))
}
