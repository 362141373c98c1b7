package analysis

import (
	"math"
	"testing"

	"github.com/guarzo/cardprice/internal/model"
)

func TestConfidence(t *testing.T) {
	tests := []struct {
		name     string
		stats    *model.PriceStats
		expected float64
	}{
		{
			name:     "absent stats",
			stats:    nil,
			expected: 0,
		},
		{
			name:     "tight small sample",
			stats:    &model.PriceStats{Estimate: 10, NumSales: 4, IQR: floatPtr(0)},
			expected: 52,
		},
		{
			name:     "no iqr below min sales",
			stats:    &model.PriceStats{Estimate: 15, NumSales: 2},
			expected: 46,
		},
		{
			name:     "zero estimate is maximal spread",
			stats:    &model.PriceStats{Estimate: 0, NumSales: 20, IQR: floatPtr(0)},
			expected: 60,
		},
		{
			name:     "spread wider than estimate clamps to zero",
			stats:    &model.PriceStats{Estimate: 10, NumSales: 20, IQR: floatPtr(20)},
			expected: 60,
		},
		{
			name:     "sample score capped",
			stats:    &model.PriceStats{Estimate: 10, NumSales: 40, IQR: floatPtr(1)},
			expected: 96,
		},
		{
			name:     "perfect",
			stats:    &model.PriceStats{Estimate: 25, NumSales: 25, IQR: floatPtr(0)},
			expected: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Confidence(tt.stats)
			if math.Abs(got-tt.expected) > 0.001 {
				t.Errorf("Expected confidence %.2f, got %.2f", tt.expected, got)
			}
		})
	}
}

func TestConfidence_MonotonicInSales(t *testing.T) {
	prev := -1.0
	for n := 1; n <= 20; n++ {
		stats := &model.PriceStats{Estimate: 50, NumSales: n, IQR: floatPtr(10)}
		got := Confidence(stats)
		if got < prev {
			t.Errorf("Confidence decreased at %d sales: %.2f < %.2f", n, got, prev)
		}
		prev = got
	}
}

func TestConfidence_MonotonicInSpread(t *testing.T) {
	prev := math.Inf(1)
	for _, iqr := range []float64{0, 1, 2.5, 5, 10, 25, 50, 100} {
		stats := &model.PriceStats{Estimate: 50, NumSales: MinSales + 5, IQR: floatPtr(iqr)}
		got := Confidence(stats)
		if got > prev {
			t.Errorf("Confidence increased with IQR %.2f: %.2f > %.2f", iqr, got, prev)
		}
		prev = got
	}
}

func TestConfidence_Range(t *testing.T) {
	samples := [][]float64{
		{1},
		{10, 20},
		{10, 10, 10, 10, 1000},
		{1, 5, 9, 13, 17, 21, 25, 29, 33, 37, 41, 45, 49, 53, 57, 61, 65, 69, 73, 77, 81},
	}

	for _, s := range samples {
		got := Confidence(EstimatePrice(s))
		if got < 0 || got > 100 {
			t.Errorf("Confidence %.2f out of range for %v", got, s)
		}
	}
}
