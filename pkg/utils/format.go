// Package utils provides small helpers shared across tickerpulse: ticker
// normalization, UTC time handling and numeric formatting for sheet cells.
package utils

import (
	"math"
)

// RoundTo rounds x to the given number of decimal places (half away from zero).
func RoundTo(x float64, places int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
