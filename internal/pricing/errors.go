package pricing

import (
	"fmt"

	"github.com/guarzo/cardprice/internal/model"
)

// InvalidQueryError means the card fields produced no searchable term.
type InvalidQueryError struct {
	Fields model.CardFields
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("invalid query: card fields %+v normalize to an empty search", e.Fields)
}

// NoSalesDataError means the marketplace returned no usable sale prices
// for the query, after retries and outlier filtering.
type NoSalesDataError struct {
	Query string
}

func (e *NoSalesDataError) Error() string {
	return fmt.Sprintf("no sales data found for %q", e.Query)
}
