package strategy

import "github.com/imbonda/mm-bot/internal/domain"

// GenerateBands returns n equal-width, non-overlapping price bands for one
// side of the book around target. Ask bands span
// [target*(1+lowSpread/2), target*(1+highSpread/2)]; bid bands mirror below
// the target. Bands are ordered nearest-to-target first and adjacent bands
// share an endpoint.
func GenerateBands(target, lowSpread, highSpread float64, n int, side domain.Side) []domain.PriceBand {
	if n <= 0 {
		return nil
	}

	sign := 1.0
	if side == domain.SideBid {
		sign = -1.0
	}
	lowEnd := target * (1 + sign*lowSpread/2)
	highEnd := target * (1 + sign*highSpread/2)
	width := (highEnd - lowEnd) / float64(n)
	if width < 0 {
		width = -width
	}

	bands := make([]domain.PriceBand, n)
	for i := range bands {
		low := lowEnd + sign*width*float64(i)
		high := low + sign*width
		if low > high {
			low, high = high, low
		}
		bands[i] = domain.PriceBand{Low: low, High: high}
	}
	return bands
}
