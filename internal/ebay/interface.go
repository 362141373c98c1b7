package ebay

import "context"

// Provider defines the interface for sold-listing price sources
type Provider interface {
	Available() bool
	SoldPrices(ctx context.Context, query string, limit int) ([]float64, error)
}

// Ensure Client implements Provider
var _ Provider = (*Client)(nil)
