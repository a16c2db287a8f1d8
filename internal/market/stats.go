package market

import (
	"math"
	"sort"

	"github.com/mrosen/ebay-pricer/internal/model"
)

// DefaultOutlierThreshold is the z-score beyond which a sold price is
// discarded.
const DefaultOutlierThreshold = 2.5

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Median returns the median, 0 for an empty slice. The input is not
// modified.
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

// sampleStdDev returns the sample standard deviation (n-1 denominator).
// Requires len(xs) >= 2.
func sampleStdDev(xs []float64, mean float64) float64 {
	var sum float64
	for _, x := range xs {
		d := x - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)-1))
}

// RemoveOutliers drops prices whose z-score exceeds threshold. Slices with
// fewer than three samples, or with zero variance, are returned unchanged.
// If every price is an outlier the median alone survives, so downstream
// stats always have at least one sample to work with.
func RemoveOutliers(prices []float64, threshold float64) []float64 {
	if threshold <= 0 {
		threshold = DefaultOutlierThreshold
	}
	if len(prices) < 3 {
		return prices
	}

	mean := Mean(prices)
	stdev := sampleStdDev(prices, mean)
	if stdev == 0 {
		return prices
	}

	filtered := make([]float64, 0, len(prices))
	for _, p := range prices {
		if math.Abs((p-mean)/stdev) <= threshold {
			filtered = append(filtered, p)
		}
	}

	if len(filtered) == 0 {
		return []float64{Median(prices)}
	}
	return filtered
}

// SoldStats summarizes sold comps after outlier rejection. Count is the raw
// listing count, before filtering.
type SoldStats struct {
	AvgPrice    float64
	MedianPrice float64
	RangeLow    float64
	RangeHigh   float64
	Count       int
}

// CalculateSoldStats computes summary statistics over the sold listings.
// Returns the zero value when the slice is empty.
func CalculateSoldStats(listings []model.SoldListing, outlierThreshold float64) SoldStats {
	if len(listings) == 0 {
		return SoldStats{}
	}

	prices := make([]float64, 0, len(listings))
	for _, l := range listings {
		prices = append(prices, l.Price)
	}

	filtered := RemoveOutliers(prices, outlierThreshold)

	low, high := filtered[0], filtered[0]
	for _, p := range filtered[1:] {
		if p < low {
			low = p
		}
		if p > high {
			high = p
		}
	}

	return SoldStats{
		AvgPrice:    Mean(filtered),
		MedianPrice: Median(filtered),
		RangeLow:    low,
		RangeHigh:   high,
		Count:       len(listings),
	}
}
