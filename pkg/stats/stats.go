// Package stats holds the numeric primitives behind training analytics.
// Every helper degrades to 0 on empty input instead of producing NaN.
package stats

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean of xs, or 0 when xs is empty.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var total float64
	for _, x := range xs {
		total += x
	}
	return total / float64(len(xs))
}

// Median returns the middle value of xs (the mean of the two central values
// for even lengths), or 0 when xs is empty. xs is not modified.
func Median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// Min returns the smallest value of xs, or 0 when xs is empty.
func Min(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

// Max returns the largest value of xs, or 0 when xs is empty.
func Max(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

// GrowthRate returns the percentage change from previous to current. A metric
// that appears from nothing reports 100, and one that stays at zero reports 0.
func GrowthRate(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - previous) / previous * 100
}

// PercentileRank converts a 0-based leaderboard position into a percentile
// where index 0 is best.
func PercentileRank(index, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(total-index) / float64(total) * 100
}

// Rate returns part/total as a percentage in [0,100], or 0 when total is not positive.
func Rate(part, total int) float64 {
	if total <= 0 || part <= 0 {
		return 0
	}
	r := float64(part) / float64(total) * 100
	return math.Min(r, 100)
}
