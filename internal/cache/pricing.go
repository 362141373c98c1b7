package cache

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/guarzo/cardprice/internal/model"
)

const (
	// DefaultPricingCapacity bounds the number of memoized queries.
	DefaultPricingCapacity = 256

	// DefaultComputeTimeout bounds a shared computation, which no longer
	// follows any single caller's deadline.
	DefaultComputeTimeout = 2 * time.Minute
)

// Entry is a memoized pricing outcome. A nil Estimate records that the
// marketplace had no usable sales for the query.
type Entry struct {
	Estimate *model.PriceEstimate
}

// NoData reports whether the entry is the "no sales" marker.
func (e Entry) NoData() bool {
	return e.Estimate == nil
}

func (e Entry) clone() Entry {
	if e.Estimate == nil {
		return Entry{}
	}
	estimate := *e.Estimate
	return Entry{Estimate: &estimate}
}

// PricingCache memoizes estimates per normalized query. Concurrent misses
// on the same query share a single computation.
type PricingCache struct {
	store          *MemoryCache
	group          singleflight.Group
	cacheNoData    bool
	computeTimeout time.Duration
}

// PricingOption configures a PricingCache.
type PricingOption func(*PricingCache)

// WithNegativeCaching also memoizes "no sales" outcomes.
func WithNegativeCaching(enabled bool) PricingOption {
	return func(c *PricingCache) {
		c.cacheNoData = enabled
	}
}

// WithComputeTimeout overrides DefaultComputeTimeout.
func WithComputeTimeout(d time.Duration) PricingOption {
	return func(c *PricingCache) {
		if d > 0 {
			c.computeTimeout = d
		}
	}
}

// NewPricingCache creates a pricing cache; capacity <= 0 selects the default
func NewPricingCache(capacity int, opts ...PricingOption) *PricingCache {
	if capacity <= 0 {
		capacity = DefaultPricingCapacity
	}

	c := &PricingCache{
		store:          NewMemoryCache(capacity),
		computeTimeout: DefaultComputeTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrCompute returns the cached entry for key, or runs compute and stores
// its result. Errors are never cached. The bool reports a cache hit.
//
// Concurrent misses on key share one compute call. It ignores caller
// cancellation and is bounded by the compute timeout instead; each caller
// stops waiting when its own ctx ends.
func (c *PricingCache) GetOrCompute(ctx context.Context, key string, compute func(context.Context) (Entry, error)) (Entry, bool, error) {
	if v, ok := c.store.Get(key); ok {
		return v.(Entry).clone(), true, nil
	}

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		computeCtx, cancel := context.WithTimeout(detached, c.computeTimeout)
		defer cancel()

		entry, err := compute(computeCtx)
		if err != nil {
			return Entry{}, err
		}
		if !entry.NoData() || c.cacheNoData {
			c.store.Set(key, entry.clone())
		}
		return entry, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return Entry{}, false, res.Err
		}
		return res.Val.(Entry).clone(), false, nil
	case <-ctx.Done():
		return Entry{}, false, ctx.Err()
	}
}

// Stats returns hit, miss and size counters
func (c *PricingCache) Stats() Stats {
	return c.store.Stats()
}

// Clear drops every memoized entry
func (c *PricingCache) Clear() {
	c.store.Clear()
}
