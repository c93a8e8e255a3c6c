// Package verify orchestrates registry aggregation and fuzzy scoring into a
// graded authenticity verdict for one extracted label.
package verify

import (
	"context"
	"sync"

	"github.com/verimed/verimed/extract"
	"github.com/verimed/verimed/match"
	"github.com/verimed/verimed/observability"
	"github.com/verimed/verimed/registry"
)

// Risk buckets authenticity confidence.
type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
	// RiskCritical is declared in the taxonomy but no classification rule
	// produces it yet; the slot is reserved for a stricter future policy.
	RiskCritical Risk = "critical"
	RiskUnknown  Risk = "unknown"
)

// MatchResult pairs one registry record with its similarity to the extracted
// name it was found for. Derived per request, never persisted.
type MatchResult struct {
	Record   registry.Record `json:"record"`
	Query    string          `json:"query"`
	Score    float64         `json:"similarity_score"`
	Verified bool            `json:"verified"`
}

// Verdict is the terminal output of one verification request.
type Verdict struct {
	IsAuthentic     bool                   `json:"is_authentic"`
	ConfidenceScore float64                `json:"confidence_score"`
	RiskLevel       Risk                   `json:"risk_level"`
	MatchesFound    int                    `json:"matches_found"`
	Details         map[string]interface{} `json:"verification_details"`
	Warnings        []string               `json:"warning_flags"`
}

// Searcher is the registry lookup seam, satisfied by *registry.Aggregator.
type Searcher interface {
	Search(ctx context.Context, name string) []registry.Record
}

const (
	// scoreThreshold is the 0-100 floor below which a candidate's
	// similarity collapses to zero.
	scoreThreshold = 50
	// verifiedThreshold marks a match strong enough to call verified.
	verifiedThreshold = 0.7
)

// Engine runs one verification pass: fan out registry lookups per extracted
// name, score every returned record, classify the best score.
type Engine struct {
	searcher Searcher
	logger   observability.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(l observability.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// NewEngine constructs a verification engine over the given registry
// searcher.
func NewEngine(searcher Searcher, opts ...EngineOption) *Engine {
	e := &Engine{searcher: searcher, logger: observability.NopLogger{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Verify produces a verdict for the extracted label. Lookups for the
// candidate names run concurrently; every returned record yields one
// MatchResult and the flat list is classified as a whole. On cancellation no
// partial verdict is emitted. The second return value carries the full match
// list for the response boundary.
func (e *Engine) Verify(ctx context.Context, info extract.Info) (Verdict, []MatchResult, error) {
	recordsByName := make([][]registry.Record, len(info.Names))
	var wg sync.WaitGroup
	for i, cand := range info.Names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			recordsByName[i] = e.searcher.Search(ctx, name)
		}(i, cand.Name)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return Verdict{}, nil, err
	}

	var all []MatchResult
	for i, cand := range info.Names {
		for _, rec := range recordsByName[i] {
			score := match.Best(cand.Name, rec.BrandName, scoreThreshold)
			all = append(all, MatchResult{
				Record:   rec,
				Query:    cand.Name,
				Score:    score,
				Verified: score > verifiedThreshold,
			})
		}
	}

	if len(all) == 0 {
		return Verdict{
			IsAuthentic:     false,
			ConfidenceScore: 0,
			RiskLevel:       RiskUnknown,
			MatchesFound:    0,
			Details:         map[string]interface{}{},
		}, nil, nil
	}

	best := all[0]
	for _, m := range all[1:] {
		if m.Score > best.Score {
			best = m
		}
	}

	verdict := Verdict{
		IsAuthentic:     best.Verified,
		ConfidenceScore: best.Score,
		RiskLevel:       ClassifyRisk(best.Score, len(all)),
		MatchesFound:    len(all),
		Details:         map[string]interface{}{"best_match": best},
	}
	e.logger.Info("verification complete",
		observability.String("best", best.Record.BrandName),
		observability.Float64("score", best.Score),
		observability.Int("matches", len(all)))
	return verdict, all, nil
}

// ClassifyRisk buckets a confidence score. It is a pure function of the
// score and the zero-match case; RiskCritical has no trigger condition.
func ClassifyRisk(confidence float64, matchesFound int) Risk {
	switch {
	case matchesFound == 0:
		return RiskUnknown
	case confidence >= 0.8:
		return RiskLow
	case confidence >= 0.5:
		return RiskMedium
	default:
		return RiskHigh
	}
}
