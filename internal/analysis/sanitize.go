package analysis

import "math"

// SanitizePrices drops values that cannot be a sale price: NaN, infinities,
// zero and negative amounts. The input slice is not modified.
func SanitizePrices(prices []float64) []float64 {
	clean := make([]float64, 0, len(prices))
	for _, p := range prices {
		if isInvalidPrice(p) {
			continue
		}
		clean = append(clean, p)
	}
	return clean
}

func isInvalidPrice(price float64) bool {
	return math.IsNaN(price) || math.IsInf(price, 0) || price <= 0
}
