package analysis

import (
	"math"
	"testing"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestEstimatePrice(t *testing.T) {
	tests := []struct {
		name     string
		prices   []float64
		estimate float64
		low      float64
		high     float64
		numSales int
		iqr      *float64
	}{
		{
			name:     "single extreme outlier removed",
			prices:   []float64{10, 10, 10, 10, 1000},
			estimate: 10, low: 10, high: 10,
			numSales: 4,
			iqr:      floatPtr(0),
		},
		{
			name:     "below min sales skips filtering",
			prices:   []float64{10, 20},
			estimate: 15, low: 12.5, high: 17.5,
			numSales: 2,
			iqr:      nil,
		},
		{
			name:     "single sale",
			prices:   []float64{42.5},
			estimate: 42.5, low: 42.5, high: 42.5,
			numSales: 1,
			iqr:      nil,
		},
		{
			name:     "outlier above fence",
			prices:   []float64{100, 1, 3, 2, 4},
			estimate: 2.5, low: 1.75, high: 3.25,
			numSales: 4,
			iqr:      floatPtr(2),
		},
		{
			name:     "no outliers",
			prices:   []float64{12, 10, 11, 13, 14},
			estimate: 12, low: 11, high: 13,
			numSales: 5,
			iqr:      floatPtr(2),
		},
		{
			name:     "rounded to cents",
			prices:   []float64{1.234, 2.345, 3.456},
			estimate: 2.35, low: 1.79, high: 2.90,
			numSales: 3,
			iqr:      floatPtr(1.11),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := EstimatePrice(tt.prices)
			if stats == nil {
				t.Fatal("Expected stats, got nil")
			}

			if math.Abs(stats.Estimate-tt.estimate) > 0.001 {
				t.Errorf("Expected estimate %.2f, got %.2f", tt.estimate, stats.Estimate)
			}
			if math.Abs(stats.Low-tt.low) > 0.001 {
				t.Errorf("Expected low %.2f, got %.2f", tt.low, stats.Low)
			}
			if math.Abs(stats.High-tt.high) > 0.001 {
				t.Errorf("Expected high %.2f, got %.2f", tt.high, stats.High)
			}
			if stats.NumSales != tt.numSales {
				t.Errorf("Expected %d sales, got %d", tt.numSales, stats.NumSales)
			}

			switch {
			case tt.iqr == nil && stats.IQR != nil:
				t.Errorf("Expected no IQR, got %.2f", *stats.IQR)
			case tt.iqr != nil && stats.IQR == nil:
				t.Errorf("Expected IQR %.2f, got none", *tt.iqr)
			case tt.iqr != nil && math.Abs(*stats.IQR-*tt.iqr) > 0.001:
				t.Errorf("Expected IQR %.2f, got %.2f", *tt.iqr, *stats.IQR)
			}

			if stats.Low > stats.Estimate || stats.Estimate > stats.High {
				t.Errorf("Expected low <= estimate <= high, got %.2f / %.2f / %.2f", stats.Low, stats.Estimate, stats.High)
			}
		})
	}
}

func TestEstimatePrice_Empty(t *testing.T) {
	if stats := EstimatePrice(nil); stats != nil {
		t.Errorf("Expected nil for nil sample, got %+v", stats)
	}
	if stats := EstimatePrice([]float64{}); stats != nil {
		t.Errorf("Expected nil for empty sample, got %+v", stats)
	}
}

func TestEstimatePrice_DoesNotReorderInput(t *testing.T) {
	prices := []float64{30, 10, 20}
	EstimatePrice(prices)

	if prices[0] != 30 || prices[1] != 10 || prices[2] != 20 {
		t.Errorf("Input was modified: %v", prices)
	}
}

func TestEstimatePrice_OrderIndependent(t *testing.T) {
	a := EstimatePrice([]float64{5, 1, 9, 3, 7, 250})
	b := EstimatePrice([]float64{250, 9, 7, 5, 3, 1})

	if a == nil || b == nil {
		t.Fatal("Expected stats for both orderings")
	}
	if a.Estimate != b.Estimate || a.Low != b.Low || a.High != b.High || a.NumSales != b.NumSales {
		t.Errorf("Order changed result: %+v vs %+v", a, b)
	}
}

func TestPercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}

	tests := []struct {
		p        float64
		expected float64
	}{
		{0, 1},
		{25, 1.75},
		{50, 2.5},
		{75, 3.25},
		{100, 4},
	}

	for _, tt := range tests {
		if got := Percentile(sorted, tt.p); math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("Percentile(%v) = %v, want %v", tt.p, got, tt.expected)
		}
	}

	if got := Percentile(nil, 50); got != 0 {
		t.Errorf("Percentile of empty slice = %v, want 0", got)
	}
}

func TestSanitizePrices(t *testing.T) {
	in := []float64{10, 0, -5, math.NaN(), math.Inf(1), math.Inf(-1), 0.01, 99.99}
	out := SanitizePrices(in)

	expected := []float64{10, 0.01, 99.99}
	if len(out) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, out)
	}
	for i := range expected {
		if out[i] != expected[i] {
			t.Errorf("Index %d: expected %v, got %v", i, expected[i], out[i])
		}
	}

	if len(in) != 8 {
		t.Error("Input slice should not be modified")
	}
}
