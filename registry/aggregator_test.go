package registry

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeSource struct {
	name    string
	records []Record
	err     error
	delay   time.Duration
}

func (f fakeSource) Name() string { return f.name }

func (f fakeSource) Search(ctx context.Context, name string) ([]Record, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func TestAggregatorMergesAllSources(t *testing.T) {
	agg := NewAggregator([]Source{
		fakeSource{name: "a", records: []Record{{Source: "a", BrandName: "DOLO"}}},
		fakeSource{name: "b", records: []Record{{Source: "b", BrandName: "DOLO 650"}, {Source: "b", BrandName: "DOLO FORTE"}}},
	})
	got := agg.Search(context.Background(), "DOLO")
	if len(got) != 3 {
		t.Fatalf("expected 3 merged records, got %d: %+v", len(got), got)
	}
}

func TestAggregatorToleratesPartialFailure(t *testing.T) {
	agg := NewAggregator([]Source{
		fakeSource{name: "down", err: errors.New("connection refused")},
		fakeSource{name: "up", records: []Record{{Source: "up", BrandName: "ASPIRIN"}}},
	})
	got := agg.Search(context.Background(), "ASPIRIN")
	if len(got) != 1 || got[0].Source != "up" {
		t.Fatalf("failing source must not suppress others: %+v", got)
	}
}

func TestAggregatorAllSourcesFail(t *testing.T) {
	agg := NewAggregator([]Source{
		fakeSource{name: "a", err: errors.New("boom")},
		fakeSource{name: "b", err: errors.New("boom")},
	})
	got := agg.Search(context.Background(), "X")
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %+v", got)
	}
}

func TestAggregatorOutcomesPreserveErrors(t *testing.T) {
	want := errors.New("auth failure")
	agg := NewAggregator([]Source{
		fakeSource{name: "a", err: want},
		fakeSource{name: "b", records: []Record{{BrandName: "X"}}},
	})
	outcomes := agg.SearchOutcomes(context.Background(), "X")
	if len(outcomes) != 2 {
		t.Fatalf("expected one outcome per source, got %d", len(outcomes))
	}
	if outcomes[0].Source != "a" || !errors.Is(outcomes[0].Err, want) {
		t.Fatalf("first outcome should carry the source error: %+v", outcomes[0])
	}
	if outcomes[1].Err != nil || len(outcomes[1].Records) != 1 {
		t.Fatalf("second outcome should carry records: %+v", outcomes[1])
	}
}

func TestAggregatorTimeoutTreatedAsFailure(t *testing.T) {
	agg := NewAggregator([]Source{
		fakeSource{name: "slow", delay: time.Second, records: []Record{{BrandName: "LATE"}}},
		fakeSource{name: "fast", records: []Record{{Source: "fast", BrandName: "ONTIME"}}},
	}, WithTimeout(50*time.Millisecond))
	start := time.Now()
	got := agg.Search(context.Background(), "X")
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("search did not respect timeout, took %v", elapsed)
	}
	if len(got) != 1 || got[0].Source != "fast" {
		t.Fatalf("slow source should contribute nothing: %+v", got)
	}
}

func TestAggregatorHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	agg := NewAggregator([]Source{
		fakeSource{name: "slow", delay: time.Second, records: []Record{{BrandName: "X"}}},
	})
	got := agg.Search(ctx, "X")
	if len(got) != 0 {
		t.Fatalf("cancelled search should yield nothing, got %+v", got)
	}
}
