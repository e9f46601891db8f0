// Package otel adapts an OpenTelemetry span into a logcore Diagnostic,
// the closest pack analogue to original_source's fastrace diagnostic
// (fastrace has no Go port in the example pack; OTel's trace package is
// the pack's established tracing stack, grounded on the teacher's
// pkg/tracing.ExtractTraceInfo).
package otel

import (
	"context"

	"github.com/ssw-logs/logbroker/logcore"
	"go.opentelemetry.io/otel/trace"
)

const (
	keyTraceID = "trace_id"
	keySpanID  = "span_id"
)

// Span visits the trace ID and span ID of the span active in ctx, if
// any, as two static-key kv pairs. Visit is a no-op when ctx carries no
// valid span, matching Diagnostic's "produces zero or more pairs"
// contract.
type Span struct {
	ctx context.Context
}

// NewSpan builds a Diagnostic over the span active in ctx at construction
// time. Dispatches that want the *current* span on every record should
// rebuild the diagnostic (or pass a diagnostic.Func closing over a
// context accessor) rather than reuse one Span value across contexts.
func NewSpan(ctx context.Context) *Span {
	return &Span{ctx: ctx}
}

func (s *Span) Visit(visitor logcore.Visitor) error {
	sc := trace.SpanFromContext(s.ctx).SpanContext()
	if !sc.IsValid() {
		return nil
	}
	if err := visitor.Visit(logcore.StaticStr(keyTraceID), logcore.StringValue(sc.TraceID().String())); err != nil {
		return err
	}
	return visitor.Visit(logcore.StaticStr(keySpanID), logcore.StringValue(sc.SpanID().String()))
}
