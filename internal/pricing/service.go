package pricing

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/guarzo/cardprice/internal/analysis"
	"github.com/guarzo/cardprice/internal/cache"
	"github.com/guarzo/cardprice/internal/ebay"
	"github.com/guarzo/cardprice/internal/model"
	"github.com/guarzo/cardprice/internal/prices"
)

// Service turns confirmed card fields into a market price estimate
type Service struct {
	provider   ebay.Provider
	cache      *cache.PricingCache
	salesLimit int
	logger     logrus.FieldLogger
}

// Option configures a Service.
type Option func(*Service)

// WithCache replaces the default 256-entry cache.
func WithCache(c *cache.PricingCache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithSalesLimit sets how many sold listings are requested per search.
func WithSalesLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.salesLimit = limit
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a pricing service. Each service owns its own cache.
func NewService(provider ebay.Provider, opts ...Option) *Service {
	s := &Service{
		provider:   provider,
		cache:      cache.NewPricingCache(cache.DefaultPricingCapacity),
		salesLimit: ebay.DefaultLimit,
		logger:     logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.logger = s.logger.WithField("component", "pricing")

	return s
}

// EstimatePrice prices a card from its sold listings.
//
// Failures are typed: *InvalidQueryError when the fields normalize to a
// blank query, *NoSalesDataError when there is nothing to price from, and
// the marketplace's *ebay.ConfigError or *ebay.AuthError (wrapped) when
// the marketplace cannot be reached with the configured credentials.
func (s *Service) EstimatePrice(ctx context.Context, fields model.CardFields) (*model.PriceEstimate, error) {
	query := prices.NormalizeQuery(fields)
	s.logger.WithField("query", query).Info("query_built")

	if strings.TrimSpace(query) == "" {
		return nil, &InvalidQueryError{Fields: fields}
	}

	entry, hit, err := s.cache.GetOrCompute(ctx, query, func(ctx context.Context) (cache.Entry, error) {
		return s.compute(ctx, query)
	})

	stats := s.cache.Stats()
	s.logger.WithFields(logrus.Fields{
		"query":  query,
		"hit":    hit,
		"hits":   stats.Hits,
		"misses": stats.Misses,
		"size":   stats.Size,
	}).Info("cache_stats")

	if err != nil {
		return nil, fmt.Errorf("pricing %q: %w", query, err)
	}
	if entry.NoData() {
		return nil, &NoSalesDataError{Query: query}
	}

	return entry.Estimate, nil
}

// compute runs fetch, cleaning, estimation and scoring for one query.
func (s *Service) compute(ctx context.Context, query string) (cache.Entry, error) {
	sold, err := s.provider.SoldPrices(ctx, query, s.salesLimit)
	if err != nil {
		return cache.Entry{}, err
	}

	stats := analysis.EstimatePrice(analysis.SanitizePrices(sold))
	if stats == nil {
		s.logger.WithFields(logrus.Fields{
			"query":   query,
			"fetched": len(sold),
		}).Info("no usable sales")
		return cache.Entry{}, nil
	}

	return cache.Entry{Estimate: &model.PriceEstimate{
		Query:      query,
		Estimate:   stats.Estimate,
		Low:        stats.Low,
		High:       stats.High,
		Confidence: analysis.Confidence(stats),
		SalesCount: stats.NumSales,
	}}, nil
}

// CacheStats returns the memoization counters
func (s *Service) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// Available reports whether the marketplace provider is configured
func (s *Service) Available() bool {
	return s.provider != nil && s.provider.Available()
}
