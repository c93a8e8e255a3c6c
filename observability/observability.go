package observability

import (
	"context"
	"fmt"
	"log"
	"strings"
)

type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

type Field interface {
	Key() string
	Value() interface{}
}

type stringField struct{ key, val string }

func (f stringField) Key() string        { return f.key }
func (f stringField) Value() interface{} { return f.val }

type intField struct {
	key string
	val int
}

func (f intField) Key() string        { return f.key }
func (f intField) Value() interface{} { return f.val }

type float64Field struct {
	key string
	val float64
}

func (f float64Field) Key() string        { return f.key }
func (f float64Field) Value() interface{} { return f.val }

type errorField struct {
	key string
	err error
}

func (f errorField) Key() string        { return f.key }
func (f errorField) Value() interface{} { return f.err }

func String(key, value string) Field      { return stringField{key, value} }
func Int(key string, value int) Field     { return intField{key, value} }
func Float64(key string, v float64) Field { return float64Field{key, v} }
func Error(key string, err error) Field   { return errorField{key, err} }

type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}
func (NopLogger) With(...Field) Logger   { return NopLogger{} }

// StdLogger writes through the standard library logger. The service binary
// wires it as its default; library packages default to NopLogger.
type StdLogger struct {
	fields []Field
}

func NewStdLogger() *StdLogger { return &StdLogger{} }

func (l *StdLogger) log(level, msg string, fields []Field) {
	all := append(append([]Field(nil), l.fields...), fields...)
	if len(all) == 0 {
		log.Printf("%s %s", level, msg)
		return
	}
	var b strings.Builder
	for _, f := range all {
		fmt.Fprintf(&b, " %s=%v", f.Key(), f.Value())
	}
	log.Printf("%s %s%s", level, msg, b.String())
}

func (l *StdLogger) Debug(msg string, fields ...Field) { l.log("DEBUG", msg, fields) }
func (l *StdLogger) Info(msg string, fields ...Field)  { l.log("INFO", msg, fields) }
func (l *StdLogger) Warn(msg string, fields ...Field)  { l.log("WARN", msg, fields) }
func (l *StdLogger) Error(msg string, fields ...Field) { l.log("ERROR", msg, fields) }

func (l *StdLogger) With(fields ...Field) Logger {
	return &StdLogger{fields: append(append([]Field(nil), l.fields...), fields...)}
}

// Tracer provides distributed tracing hooks for pipeline operations.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, Span)
}

// Span represents a tracing span.
type Span interface {
	SetTag(key string, value interface{})
	SetError(err error)
	Finish()
}

type nopTracer struct{}

func (nopTracer) StartSpan(ctx context.Context, _ string) (context.Context, Span) {
	return ctx, nopSpan{}
}

// NopTracer returns a tracer that does nothing.
func NopTracer() Tracer { return nopTracer{} }

type nopSpan struct{}

func (nopSpan) SetTag(string, interface{}) {}
func (nopSpan) SetError(error)             {}
func (nopSpan) Finish()                    {}

// Standard metric names emitted by the pipeline.
const (
	MetricOCRTime        = "verify.ocr.duration"
	MetricExtractTime    = "verify.extract.duration"
	MetricRegistryTime   = "verify.registry.duration"
	MetricRegistryErrors = "verify.registry.errors"
	MetricVerifyTime     = "verify.total.duration"
	MetricMatchesFound   = "verify.matches.count"
)
