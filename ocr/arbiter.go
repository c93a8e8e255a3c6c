package ocr

import (
	"context"
	"fmt"
	"image"

	"github.com/verimed/verimed/imaging"
	"github.com/verimed/verimed/observability"
)

// Outcome carries the winning hypothesis plus the full hypothesis set as
// provenance for the response boundary.
type Outcome struct {
	Winner      Hypothesis   `json:"winner"`
	Hypotheses  []Hypothesis `json:"all_results"`
	EnginesUsed int          `json:"engines_used"`
}

// Arbiter runs the configured engines over one preprocessed image and selects
// the best textual hypothesis. Engine failures are recorded as zero-confidence
// hypotheses; arbitration itself never fails on a decodable image.
type Arbiter struct {
	engines    []Engine
	inputOpts  []InputOption
	confidence func(string) float64
	logger     observability.Logger
}

// ArbiterOption configures an Arbiter.
type ArbiterOption func(*Arbiter)

// WithLogger sets the arbiter's logger.
func WithLogger(l observability.Logger) ArbiterOption {
	return func(a *Arbiter) { a.logger = l }
}

// WithConfidence replaces the confidence heuristic applied to recognized text.
func WithConfidence(f func(string) float64) ArbiterOption {
	return func(a *Arbiter) { a.confidence = f }
}

// WithInputOptions sets options applied to every input the arbiter builds.
func WithInputOptions(opts ...InputOption) ArbiterOption {
	return func(a *Arbiter) { a.inputOpts = opts }
}

// NewArbiter constructs an arbiter over the given engines.
func NewArbiter(engines []Engine, opts ...ArbiterOption) *Arbiter {
	a := &Arbiter{
		engines:    engines,
		confidence: LengthConfidence,
		logger:     observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ExtractText runs every engine over img and picks the hypothesis maximizing
// (confidence, text length) among those with positive confidence. When no
// engine yields positive confidence the sentinel empty hypothesis with method
// "none" wins. The only returned error is context cancellation or a
// non-encodable image.
func (a *Arbiter) ExtractText(ctx context.Context, img image.Image, id string) (Outcome, error) {
	data, err := imaging.EncodePNG(img)
	if err != nil {
		return Outcome{}, fmt.Errorf("prepare ocr input: %w", err)
	}
	in := Input{ID: id, Image: data, Format: ImageFormatPNG}
	for _, opt := range a.inputOpts {
		opt(&in)
	}

	hyps := make([]Hypothesis, 0, len(a.engines))
	for _, eng := range a.engines {
		select {
		case <-ctx.Done():
			return Outcome{}, ctx.Err()
		default:
		}
		h, err := eng.Recognize(ctx, in)
		if err != nil {
			if ctx.Err() != nil {
				return Outcome{}, ctx.Err()
			}
			a.logger.Warn("ocr engine unavailable",
				observability.String("engine", eng.Name()),
				observability.Error("error", err))
			hyps = append(hyps, Hypothesis{Method: UnavailableMethod(eng.Name())})
			continue
		}
		h.Confidence = clamp(a.confidence(h.Text))
		if h.Method == "" {
			h.Method = eng.Name()
		}
		hyps = append(hyps, h)
	}

	winner := Hypothesis{Method: MethodNone}
	found := false
	for _, h := range hyps {
		if h.Confidence <= 0 {
			continue
		}
		if !found || better(h, winner) {
			winner = h
			found = true
		}
	}
	return Outcome{Winner: winner, Hypotheses: hyps, EnginesUsed: len(a.engines)}, nil
}

// better reports whether a beats b by the (confidence, text length)
// lexicographic rule.
func better(a, b Hypothesis) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	return len(a.Text) > len(b.Text)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
