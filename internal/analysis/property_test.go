package analysis

import (
	"testing"

	"github.com/guarzo/cardprice/internal/testutil"
)

func TestEstimatePrice_ExtremeOutlierNeverWins(t *testing.T) {
	factory := testutil.NewTestDataFactory(7)

	for trial := 0; trial < 200; trial++ {
		n := 4 + trial%20
		sales := append(factory.GenerateTestSales(n, 100, 10), 10000)

		stats := EstimatePrice(sales)
		if stats == nil {
			t.Fatalf("trial %d: expected stats", trial)
		}
		if stats.Estimate < 90 || stats.Estimate > 110 {
			t.Errorf("trial %d: estimate %.2f pulled away from the cluster", trial, stats.Estimate)
		}
		if stats.High >= 10000 {
			t.Errorf("trial %d: outlier survived the fence (high %.2f)", trial, stats.High)
		}
		if stats.NumSales > n {
			t.Errorf("trial %d: %d sales kept from a cluster of %d", trial, stats.NumSales, n)
		}
	}
}

func TestEstimatePrice_BandContainsEstimate(t *testing.T) {
	factory := testutil.NewTestDataFactory(11)

	for trial := 0; trial < 200; trial++ {
		sales := make([]float64, 1+trial%30)
		for i := range sales {
			sales[i] = factory.GenerateTestPrice()
		}

		stats := EstimatePrice(sales)
		if stats == nil {
			t.Fatalf("trial %d: expected stats for %d sales", trial, len(sales))
		}
		if stats.Low > stats.Estimate || stats.Estimate > stats.High {
			t.Errorf("trial %d: band %.2f <= %.2f <= %.2f violated", trial, stats.Low, stats.Estimate, stats.High)
		}
		if stats.NumSales < 1 || stats.NumSales > len(sales) {
			t.Errorf("trial %d: NumSales %d out of range", trial, stats.NumSales)
		}

		score := Confidence(stats)
		if score < 0 || score > 100 {
			t.Errorf("trial %d: confidence %.2f out of range", trial, score)
		}
	}
}
