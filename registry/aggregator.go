package registry

import (
	"context"
	"time"

	"github.com/verimed/verimed/observability"
)

// defaultTimeout bounds one aggregated search across all sources.
const defaultTimeout = 10 * time.Second

// Aggregator fans a name query out to every configured source concurrently
// and merges the results.
type Aggregator struct {
	sources []Source
	timeout time.Duration
	logger  observability.Logger
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithTimeout sets the per-search deadline covering all sources.
func WithTimeout(d time.Duration) AggregatorOption {
	return func(a *Aggregator) { a.timeout = d }
}

// WithLogger sets the aggregator's logger.
func WithLogger(l observability.Logger) AggregatorOption {
	return func(a *Aggregator) { a.logger = l }
}

// NewAggregator constructs an aggregator over the given sources.
func NewAggregator(sources []Source, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		sources: sources,
		timeout: defaultTimeout,
		logger:  observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Search returns the best-effort union of records across all sources. A
// source that errors or times out contributes zero records. Result ordering
// across sources is unspecified.
func (a *Aggregator) Search(ctx context.Context, name string) []Record {
	var merged []Record
	for _, out := range a.SearchOutcomes(ctx, name) {
		if out.Err != nil {
			a.logger.Warn("registry source failed",
				observability.String("source", out.Source),
				observability.String("name", name),
				observability.Error("error", out.Err))
			continue
		}
		merged = append(merged, out.Records...)
	}
	return merged
}

// SearchOutcomes queries every source concurrently and returns one outcome
// per source, success or failure. Outcomes appear in source registration
// order. Cancelling ctx cancels all outstanding queries.
func (a *Aggregator) SearchOutcomes(ctx context.Context, name string) []Outcome {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	outcomes := make([]Outcome, len(a.sources))
	done := make(chan int, len(a.sources))
	for i, src := range a.sources {
		go func(i int, src Source) {
			records, err := src.Search(ctx, name)
			outcomes[i] = Outcome{Source: src.Name(), Records: records, Err: err}
			done <- i
		}(i, src)
	}
	for range a.sources {
		<-done
	}
	return outcomes
}
