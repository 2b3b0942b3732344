package strategy

import (
	"math/rand/v2"
	"sort"
)

// randomInRange returns a uniformly random value strictly inside the open
// interval (low, high). Endpoints are rejected so band-edge prices never
// collide with a neighboring band.
func randomInRange(rng *rand.Rand, low, high float64) float64 {
	if high <= low {
		return low
	}
	for {
		v := low + rng.Float64()*(high-low)
		if v != low && v != high {
			return v
		}
	}
}

// randomSplit cuts amount into n random positive pieces, each at least min,
// summing to amount. When n pieces cannot all reach the floor, n is reduced
// until the split becomes feasible; an amount below a single floor yields no
// pieces at all.
func randomSplit(rng *rand.Rand, amount float64, n int, min float64) []float64 {
	if amount <= 0 {
		return nil
	}

	for ; n > 0; n-- {
		if min*float64(n) > amount {
			continue
		}
		remaining := amount - min*float64(n)

		cuts := make([]float64, n-1)
		for i := range cuts {
			cuts[i] = rng.Float64() * remaining
		}
		sort.Float64s(cuts)

		parts := make([]float64, 0, n)
		prev := 0.0
		for _, cut := range cuts {
			parts = append(parts, cut-prev+min)
			prev = cut
		}
		parts = append(parts, remaining-prev+min)
		return parts
	}

	return nil
}
