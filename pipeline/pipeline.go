// Package pipeline composes the full verification flow for one uploaded
// image: decode, preprocess, OCR arbitration, field extraction, registry
// verification, recommendations and best-effort audit. The pipeline is
// request-scoped; all intermediate structures are built once per call and
// discarded.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/verimed/verimed/extract"
	"github.com/verimed/verimed/imaging"
	"github.com/verimed/verimed/observability"
	"github.com/verimed/verimed/ocr"
	"github.com/verimed/verimed/report"
	"github.com/verimed/verimed/store"
	"github.com/verimed/verimed/verify"
)

// Result carries every artifact of one verification request for the response
// boundary.
type Result struct {
	RequestID       string
	Fingerprint     string
	ProcessingTime  time.Duration
	Quality         imaging.Quality
	OCR             ocr.Outcome
	Extracted       extract.Info
	Matches         []verify.MatchResult
	Verdict         verify.Verdict
	Recommendations []string
}

// ReportData adapts the result for report rendering.
func (r *Result) ReportData() report.Data {
	return report.Data{
		RequestID: r.RequestID,
		Verdict:   r.Verdict,
		Matches:   r.Matches,
		Extracted: r.Extracted,
		OCR:       r.OCR,
		Quality:   r.Quality,
	}
}

// Auditor records verdicts after the fact; satisfied by *store.Store.
type Auditor interface {
	Record(ctx context.Context, v store.Verification) error
}

// Pipeline wires the arbiter and verification engine together.
type Pipeline struct {
	arbiter *ocr.Arbiter
	engine  *verify.Engine
	auditor Auditor
	logger  observability.Logger
	tracer  observability.Tracer
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithAuditor enables best-effort verdict persistence.
func WithAuditor(a Auditor) Option {
	return func(p *Pipeline) { p.auditor = a }
}

// WithLogger sets the pipeline's logger.
func WithLogger(l observability.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithTracer sets the pipeline's tracer.
func WithTracer(t observability.Tracer) Option {
	return func(p *Pipeline) { p.tracer = t }
}

// New constructs a pipeline over the given arbiter and engine.
func New(arbiter *ocr.Arbiter, engine *verify.Engine, opts ...Option) *Pipeline {
	p := &Pipeline{
		arbiter: arbiter,
		engine:  engine,
		logger:  observability.NopLogger{},
		tracer:  observability.NopTracer(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Verify processes one encoded image into a verdict. The only failure that
// crosses this boundary besides cancellation is imaging.ErrInvalidImage;
// engine and registry failures degrade inside their components.
func (p *Pipeline) Verify(ctx context.Context, imageBytes []byte) (*Result, error) {
	start := time.Now()
	ctx, span := p.tracer.StartSpan(ctx, "pipeline.verify")
	defer span.Finish()

	requestID := uuid.NewString()
	res := &Result{
		RequestID:   requestID,
		Fingerprint: imaging.Fingerprint(imageBytes),
	}

	img, err := imaging.Decode(imageBytes)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	res.Quality = imaging.AnalyzeQuality(img)
	variants := imaging.Preprocess(img)

	outcome, err := p.arbiter.ExtractText(ctx, variants.Enhanced, requestID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	res.OCR = outcome
	res.Extracted = extract.Fields(outcome.Winner.Text)

	verdict, matches, err := p.engine.Verify(ctx, res.Extracted)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	res.Verdict = verdict
	res.Matches = matches
	res.Recommendations = report.Recommendations(verdict, res.Quality)
	res.ProcessingTime = time.Since(start)

	p.audit(ctx, res)
	p.logger.Info("request verified",
		observability.String("request_id", requestID),
		observability.String("risk", string(verdict.RiskLevel)),
		observability.Float64("score", verdict.ConfidenceScore),
		observability.Int("matches", verdict.MatchesFound))
	return res, nil
}

func (p *Pipeline) audit(ctx context.Context, res *Result) {
	if p.auditor == nil {
		return
	}
	row := store.Verification{
		RequestID:    res.RequestID,
		Fingerprint:  res.Fingerprint,
		Score:        res.Verdict.ConfidenceScore,
		RiskLevel:    string(res.Verdict.RiskLevel),
		MatchesFound: res.Verdict.MatchesFound,
		IsAuthentic:  res.Verdict.IsAuthentic,
		DurationMS:   res.ProcessingTime.Milliseconds(),
	}
	if len(res.Extracted.Names) > 0 {
		row.BestName = res.Extracted.Names[0].Name
	}
	if err := p.auditor.Record(ctx, row); err != nil {
		p.logger.Warn("audit write failed",
			observability.String("request_id", res.RequestID),
			observability.Error("error", err))
	}
}
