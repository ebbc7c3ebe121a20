package utils

import "math"

// Min returns the minimum of two integers.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Max returns the maximum of two integers.
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// MinF returns the minimum of two float64 values.
func MinF(a, b float64) float64 {
	return math.Min(a, b)
}

// CeilHours returns the lateness in whole hours, rounding any started
// hour up.
func CeilHours(d float64) float64 {
	return math.Ceil(d)
}
