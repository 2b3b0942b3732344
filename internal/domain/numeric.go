package domain

import (
	"fmt"
	"strconv"
)

// ParseDecimal parses a wire-format decimal string into a float64. Empty
// strings mean "field absent" and parse to zero, which keeps balance and
// order construction tolerant of venues that omit zero-valued fields.
func ParseDecimal(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse decimal %q: %w", s, err)
	}
	return v, nil
}

// FormatDecimal renders v with a fixed number of decimal places, as required
// by the venue's numeric formatting contract for submitted prices and
// amounts.
func FormatDecimal(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64)
}
