package concurrent

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/guarzo/cardprice/internal/model"
)

// Estimator prices a single card
type Estimator interface {
	EstimatePrice(ctx context.Context, fields model.CardFields) (*model.PriceEstimate, error)
}

// Result is the outcome for one input row. Index is the row's position
// in the input slice.
type Result struct {
	Index    int
	Fields   model.CardFields
	Estimate *model.PriceEstimate
	Error    error
	Latency  time.Duration
}

// Progress represents progress information
type Progress struct {
	Completed int
	Total     int
	Errors    int
	Current   string
}

// Config holds configuration for the batch pricer
type Config struct {
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // Deadline per card
	OnProgress func(Progress)
}

// Metrics tracks batch performance
type Metrics struct {
	Total        int
	Succeeded    int
	Failed       int
	TotalLatency time.Duration
	StartTime    time.Time
	EndTime      time.Time
}

// AverageLatency is the mean per-card latency over completed cards
func (m Metrics) AverageLatency() time.Duration {
	done := m.Succeeded + m.Failed
	if done == 0 {
		return 0
	}
	return m.TotalLatency / time.Duration(done)
}

// BatchPricer prices many cards with a bounded worker pool. Outbound
// request pacing is left to the marketplace client.
type BatchPricer struct {
	workers    int
	timeout    time.Duration
	onProgress func(Progress)

	mu      sync.Mutex
	metrics Metrics
}

// NewBatchPricer creates a batch pricer
func NewBatchPricer(config Config) *BatchPricer {
	workers := config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers > 4 {
			workers = 4 // Cap at 4
		}
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &BatchPricer{
		workers:    workers,
		timeout:    timeout,
		onProgress: config.OnProgress,
	}
}

type job struct {
	index  int
	fields model.CardFields
}

// PriceAll prices every card and returns one result per input row, in
// input order. Rows not reached before ctx ends carry ctx's error.
func (b *BatchPricer) PriceAll(ctx context.Context, est Estimator, cards []model.CardFields) []Result {
	b.mu.Lock()
	b.metrics = Metrics{Total: len(cards), StartTime: time.Now()}
	b.mu.Unlock()

	results := make([]Result, len(cards))
	if len(cards) == 0 {
		b.finish()
		return results
	}

	jobs := make(chan job)
	out := make(chan Result, len(cards))

	var wg sync.WaitGroup
	for w := 0; w < b.workers; w++ {
		wg.Add(1)
		go b.worker(ctx, est, jobs, out, &wg)
	}

	go func() {
		defer close(jobs)
		for i, fields := range cards {
			select {
			case jobs <- job{index: i, fields: fields}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	seen := make([]bool, len(cards))
	completed, failed := 0, 0
	for result := range out {
		results[result.Index] = result
		seen[result.Index] = true
		completed++
		if result.Error != nil {
			failed++
		}

		if b.onProgress != nil {
			b.onProgress(Progress{
				Completed: completed,
				Total:     len(cards),
				Errors:    failed,
				Current:   result.Fields.Name,
			})
		}
	}

	for i := range results {
		if !seen[i] {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			results[i] = Result{Index: i, Fields: cards[i], Error: err}
		}
	}

	b.finish()
	return results
}

// worker processes jobs from the jobs channel
func (b *BatchPricer) worker(ctx context.Context, est Estimator, jobs <-chan job, out chan<- Result, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case j, ok := <-jobs:
			if !ok {
				return
			}
			result := b.price(ctx, est, j)
			b.record(result)
			out <- result

		case <-ctx.Done():
			return
		}
	}
}

func (b *BatchPricer) price(ctx context.Context, est Estimator, j job) Result {
	timeoutCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	start := time.Now()
	estimate, err := est.EstimatePrice(timeoutCtx, j.fields)

	return Result{
		Index:    j.index,
		Fields:   j.fields,
		Estimate: estimate,
		Error:    err,
		Latency:  time.Since(start),
	}
}

func (b *BatchPricer) record(result Result) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if result.Error != nil {
		b.metrics.Failed++
	} else {
		b.metrics.Succeeded++
	}
	b.metrics.TotalLatency += result.Latency
}

func (b *BatchPricer) finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.metrics.EndTime = time.Now()
}

// Metrics returns a snapshot of the last run's metrics
func (b *BatchPricer) Metrics() Metrics {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.metrics
}
