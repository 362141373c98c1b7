package analysis

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/guarzo/cardprice/internal/model"
)

const (
	// MinSales is the smallest sample the IQR fence is applied to.
	MinSales = 3

	// TukeyK scales the IQR when building outlier fences.
	TukeyK = 1.5
)

// EstimatePrice reduces a price sample to a robust estimate. Samples of at
// least MinSales prices are trimmed to the Tukey fence
// [Q1 - 1.5*IQR, Q3 + 1.5*IQR] first. Returns nil for an empty sample or
// when nothing survives the fence.
func EstimatePrice(prices []float64) *model.PriceStats {
	if len(prices) == 0 {
		return nil
	}

	sorted := make([]float64, len(prices))
	copy(sorted, prices)
	sort.Float64s(sorted)

	if len(sorted) < MinSales {
		return summarize(sorted, nil)
	}

	q1 := Percentile(sorted, 25)
	q3 := Percentile(sorted, 75)
	iqr := q3 - q1

	lower := q1 - TukeyK*iqr
	upper := q3 + TukeyK*iqr

	filtered := make([]float64, 0, len(sorted))
	for _, p := range sorted {
		if p >= lower && p <= upper {
			filtered = append(filtered, p)
		}
	}

	if len(filtered) == 0 {
		return nil
	}

	roundedIQR := round2(iqr)
	return summarize(filtered, &roundedIQR)
}

// summarize expects sorted input.
func summarize(sorted []float64, iqr *float64) *model.PriceStats {
	return &model.PriceStats{
		Estimate: round2(Percentile(sorted, 50)),
		Low:      round2(Percentile(sorted, 25)),
		High:     round2(Percentile(sorted, 75)),
		NumSales: len(sorted),
		IQR:      iqr,
	}
}

// Percentile returns the p-th percentile (0-100) of an ascending slice,
// interpolating linearly between the two closest ranks.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	pos := (p / 100) * float64(n-1)
	lo := int(math.Floor(pos))
	if lo >= n-1 {
		return sorted[n-1]
	}
	if lo < 0 {
		return sorted[0]
	}

	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// round2 rounds a monetary amount to cents.
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
