// Package otlp is an Appender collaborator that forwards each record as a
// zero-duration span over OTLP/HTTP, grounded on pkg/tracing.go's TracerProvider
// setup (otlptracehttp exporter, batch span processor, resource merge) in
// the teacher, repurposed here: instead of instrumenting application
// code, every Appender.Append call opens and immediately ends a span
// named after the record's target, carrying the record's level, message,
// and kv pairs as span attributes — the closest OTLP concept to "forward
// a log line" without requiring the newer, less broadly supported OTLP
// logs signal.
package otlp

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/ssw-logs/logbroker/logcore"
	logappend "github.com/ssw-logs/logbroker/logcore/append"
	"github.com/ssw-logs/logbroker/logcore/diagnostic"
	"github.com/ssw-logs/logbroker/logcore/logerr"
)

// Config configures the OTLP/HTTP span exporter.
type Config struct {
	Endpoint    string
	Insecure    bool
	Headers     map[string]string
	ServiceName string
}

// Sink is an Appender that re-emits every record as a zero-duration span.
type Sink struct {
	provider *sdktrace.TracerProvider
	tracer   oteltrace.Tracer
}

var _ logappend.Appender = (*Sink)(nil)
var _ logappend.Closer = (*Sink)(nil)

// New configures an OTLP/HTTP exporter for the collector at cfg.Endpoint
// and returns a ready-to-use sink backed by a batch span processor. It
// does not contact the collector; the exporter connects when it first
// exports.
func New(ctx context.Context, cfg Config) (*Sink, error) {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
	}

	exporter, err := otlptrace.New(ctx, otlptracehttp.NewClient(opts...))
	if err != nil {
		return nil, logerr.IO("otlp sink: failed to create exporter").WithCause(err)
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "logbroker"
	}
	res, err := sdkresource.Merge(
		sdkresource.Default(),
		sdkresource.NewSchemaless(attribute.String("service.name", serviceName)),
	)
	if err != nil {
		return nil, logerr.Configuration("otlp sink: failed to build resource").WithCause(err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	return &Sink{
		provider: provider,
		tracer:   provider.Tracer("github.com/ssw-logs/logbroker/sink/otlp"),
	}, nil
}

func (s *Sink) Append(rec logcore.Record, diags []diagnostic.Diagnostic) error {
	attrs := []attribute.KeyValue{
		attribute.String("level", rec.Level().String()),
		attribute.String("message", rec.Message()),
	}

	visitor := logcore.VisitorFunc(func(key logcore.Key, value logcore.Value) error {
		attrs = append(attrs, attribute.String(key.Get(), value.String()))
		return nil
	})
	if err := rec.KVs().Visit(visitor); err != nil {
		return logerr.Visitor("otlp sink: failed to visit record kvs").WithCause(err)
	}
	if err := diagnostic.VisitAll(diags, visitor); err != nil {
		return logerr.Visitor("otlp sink: failed to visit diagnostic kvs").WithCause(err)
	}

	_, span := s.tracer.Start(context.Background(), rec.Target(), oteltrace.WithTimestamp(rec.Time()))
	span.SetAttributes(attrs...)
	span.End(oteltrace.WithTimestamp(rec.Time()))
	return nil
}

// Flush forces the batch span processor to export everything buffered.
func (s *Sink) Flush() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.provider.ForceFlush(ctx); err != nil {
		return logerr.IO("otlp sink: failed to flush span processor").WithCause(err)
	}
	return nil
}

// Close shuts down the tracer provider and its exporter.
func (s *Sink) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.provider.Shutdown(ctx); err != nil {
		return logerr.IO("otlp sink: failed to shut down tracer provider").WithCause(err)
	}
	return nil
}
