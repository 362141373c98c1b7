package model

import "strings"

// DefaultCardType marks a card with no parallel, insert or variant.
const DefaultCardType = "Base"

// CardFields are the confirmed identity fields of a scanned card.
type CardFields struct {
	Name   string `json:"name"`
	Series string `json:"card_series"`
	Number string `json:"card_number"`
	Type   string `json:"card_type"`
}

// WithDefaults returns a copy with an empty Type replaced by DefaultCardType.
func (f CardFields) WithDefaults() CardFields {
	if strings.TrimSpace(f.Type) == "" {
		f.Type = DefaultCardType
	}
	return f
}

// PriceStats summarizes a cleaned price sample.
// IQR is nil when the sample was too small for outlier filtering.
type PriceStats struct {
	Estimate float64  `json:"estimate"`
	Low      float64  `json:"low"`
	High     float64  `json:"high"`
	NumSales int      `json:"num_sales"`
	IQR      *float64 `json:"iqr,omitempty"`
}

// PriceEstimate is the pricing result handed back to callers.
type PriceEstimate struct {
	Query      string  `json:"query"`
	Estimate   float64 `json:"price_estimate"`
	Low        float64 `json:"price_low"`
	High       float64 `json:"price_high"`
	Confidence float64 `json:"confidence"` // 0-100
	SalesCount int     `json:"sales_count"`
}
