package analysis

import (
	"math"

	"github.com/guarzo/cardprice/internal/model"
)

const (
	// FullSampleSales is the sale count at which sample size stops adding confidence.
	FullSampleSales = 20

	sampleWeight = 0.6
	spreadWeight = 0.4
)

// Confidence scores an estimate from 0 to 100. Sample size carries 60% of
// the score and tightness of the middle 50% of prices carries 40%.
// A zero estimate is treated as maximal spread.
func Confidence(stats *model.PriceStats) float64 {
	if stats == nil {
		return 0
	}

	sampleScore := math.Min(1.0, float64(stats.NumSales)/FullSampleSales)

	iqr := 0.0
	if stats.IQR != nil {
		iqr = *stats.IQR
	}

	spreadRatio := 1.0
	if stats.Estimate != 0 {
		spreadRatio = iqr / stats.Estimate
	}
	spreadScore := math.Max(0.0, 1.0-spreadRatio)

	return round2(100 * (sampleWeight*sampleScore + spreadWeight*spreadScore))
}
