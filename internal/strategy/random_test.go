package strategy

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewPCG(7, 13))
}

func TestRandomInRangeStrictlyInside(t *testing.T) {
	rng := testRNG()
	for i := 0; i < 1000; i++ {
		v := randomInRange(rng, 101, 103)
		assert.Greater(t, v, 101.0)
		assert.Less(t, v, 103.0)
	}
}

func TestRandomInRangeDegenerateInterval(t *testing.T) {
	rng := testRNG()
	assert.Equal(t, 5.0, randomInRange(rng, 5, 5))
	assert.Equal(t, 5.0, randomInRange(rng, 5, 4))
}

func TestRandomSplitRespectsFloorAndSum(t *testing.T) {
	rng := testRNG()
	parts := randomSplit(rng, 1000, 4, 100)
	require.Len(t, parts, 4)

	sum := 0.0
	for _, p := range parts {
		assert.GreaterOrEqual(t, p, 100.0)
		sum += p
	}
	assert.InDelta(t, 1000, sum, 1e-6)
}

func TestRandomSplitShrinksWhenInfeasible(t *testing.T) {
	rng := testRNG()
	// Four pieces of at least 100 cannot fit into 250; two can.
	parts := randomSplit(rng, 250, 4, 100)
	require.Len(t, parts, 2)

	sum := 0.0
	for _, p := range parts {
		assert.GreaterOrEqual(t, p, 100.0)
		sum += p
	}
	assert.InDelta(t, 250, sum, 1e-6)
}

func TestRandomSplitInfeasible(t *testing.T) {
	rng := testRNG()
	assert.Nil(t, randomSplit(rng, 50, 3, 100))
	assert.Nil(t, randomSplit(rng, 0, 3, 1))
	assert.Nil(t, randomSplit(rng, -10, 3, 1))
	assert.Nil(t, randomSplit(rng, 100, 0, 1))
}
