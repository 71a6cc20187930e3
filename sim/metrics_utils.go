// sim/metrics_utils.go
package sim

import (
	"math"
	"slices"
)

type IntOrFloat64 interface {
	int | int64 | float64
}

// CalculatePercentile returns the nearest-rank p-th quantile (p in [0,1])
// of sorted data: index ceil(p·n) − 1, clamped to the slice. Empty data
// yields 0.
func CalculatePercentile[T IntOrFloat64](sorted []T, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	idx := int(math.Ceil(p*float64(n))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	return float64(sorted[idx])
}

// CalculateMean returns the arithmetic mean of numbers, or 0 when empty.
func CalculateMean[T IntOrFloat64](numbers []T) float64 {
	if len(numbers) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, number := range numbers {
		sum += float64(number)
	}
	return sum / float64(len(numbers))
}

// percentiles sorts data in place and returns p50, p95 and p99.
func percentiles(data []float64) (p50, p95, p99 float64) {
	slices.Sort(data)
	return CalculatePercentile(data, 0.50), CalculatePercentile(data, 0.95), CalculatePercentile(data, 0.99)
}
