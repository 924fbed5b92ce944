// Package tracing provides OpenTelemetry-based tracing for batch, file and
// tokenizer operations. Tracing is a no-op unless an exporter is configured.
package tracing

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	// TracerName is the name used for the beancounter tracer.
	TracerName = "github.com/jbctechsolutions/beancounter"

	// Version is the semantic version of the tracer.
	Version = "1.0.0"
)

// ExporterType defines the type of trace exporter.
type ExporterType string

const (
	ExporterNone   ExporterType = "none"
	ExporterStdout ExporterType = "stdout"
	ExporterOTLP   ExporterType = "otlp"
)

// Config holds tracing configuration.
type Config struct {
	Enabled      bool
	ExporterType ExporterType
	OTLPEndpoint string
	ServiceName  string
	SampleRate   float64   // 0.0 to 1.0
	Output       io.Writer // stdout exporter only; defaults to os.Stdout
}

// DefaultConfig returns sensible default tracing configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:      false,
		ExporterType: ExporterNone,
		ServiceName:  "beancounter",
		SampleRate:   1.0,
	}
}

// Tracer wraps an OpenTelemetry tracer with domain-specific span helpers.
type Tracer struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	config   Config
}

// Noop returns a tracer that records nothing.
func Noop() *Tracer {
	return &Tracer{
		tracer: noop.NewTracerProvider().Tracer(TracerName),
		config: DefaultConfig(),
	}
}

// New creates a new Tracer with the provided configuration.
func New(ctx context.Context, cfg Config) (*Tracer, error) {
	if !cfg.Enabled || cfg.ExporterType == ExporterNone || cfg.ExporterType == "" {
		t := Noop()
		t.config = cfg
		return t, nil
	}

	exporter, err := createExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	// Not merged with resource.Default() to avoid schema URL conflicts.
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(Version),
		),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	var sampler sdktrace.Sampler
	if cfg.SampleRate >= 1.0 {
		sampler = sdktrace.AlwaysSample()
	} else if cfg.SampleRate <= 0.0 {
		sampler = sdktrace.NeverSample()
	} else {
		sampler = sdktrace.TraceIDRatioBased(cfg.SampleRate)
	}

	// Spans are exported synchronously: the process is short-lived.
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)

	otel.SetTracerProvider(provider)

	return &Tracer{
		tracer:   provider.Tracer(TracerName, trace.WithInstrumentationVersion(Version)),
		provider: provider,
		config:   cfg,
	}, nil
}

// createExporter creates the appropriate exporter based on configuration.
func createExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	switch cfg.ExporterType {
	case ExporterStdout:
		opts := []stdouttrace.Option{
			stdouttrace.WithPrettyPrint(),
		}
		if cfg.Output != nil {
			opts = append(opts, stdouttrace.WithWriter(cfg.Output))
		}
		return stdouttrace.New(opts...)

	case ExporterOTLP:
		opts := []otlptracehttp.Option{
			otlptracehttp.WithInsecure(),
		}
		if cfg.OTLPEndpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpoint(cfg.OTLPEndpoint))
		}
		return otlptracehttp.New(ctx, opts...)

	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", cfg.ExporterType)
	}
}

// Shutdown flushes and shuts down the tracer provider.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.provider != nil {
		return t.provider.Shutdown(ctx)
	}
	return nil
}

// Start starts a new span with the given name.
func (t *Tracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// --- Domain-specific span helpers ---

// Span wraps a trace.Span with typed setters.
type Span struct {
	span trace.Span
}

// StartBatchSpan starts a span covering one batch of files.
func (t *Tracer) StartBatchSpan(ctx context.Context, tokenizer string, files int) (context.Context, *Span) {
	ctx, span := t.tracer.Start(ctx, "batch.analyze",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("tokenizer.id", tokenizer),
			attribute.Int("batch.files", files),
		),
	)
	return ctx, &Span{span: span}
}

// StartFileSpan starts a span for analyzing one file.
func (t *Tracer) StartFileSpan(ctx context.Context, path string) (context.Context, *Span) {
	ctx, span := t.tracer.Start(ctx, "file.analyze",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("file.path", path)),
	)
	return ctx, &Span{span: span}
}

// StartTokenizerSpan starts a span for one token count.
func (t *Tracer) StartTokenizerSpan(ctx context.Context, identifier, kind string) (context.Context, *Span) {
	ctx, span := t.tracer.Start(ctx, "tokenizer.count",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("tokenizer.id", identifier),
			attribute.String("tokenizer.kind", kind),
		),
	)
	return ctx, &Span{span: span}
}

// SetCounts records the statistics of an analyzed file.
func (s *Span) SetCounts(tokens, words, chars int) {
	s.span.SetAttributes(
		attribute.Int("file.tokens", tokens),
		attribute.Int("file.words", words),
		attribute.Int("file.characters", chars),
	)
}

// SetTokens records a token count and whether it came from the fallback.
func (s *Span) SetTokens(tokens int, fallback bool) {
	s.span.SetAttributes(
		attribute.Int("tokenizer.tokens", tokens),
		attribute.Bool("tokenizer.fallback", fallback),
	)
}

// SetCacheHit marks whether the count came from the token cache.
func (s *Span) SetCacheHit(hit bool) {
	s.span.SetAttributes(attribute.Bool("tokenizer.cache_hit", hit))
}

// SetFailed records the number of files whose analysis failed.
func (s *Span) SetFailed(failed int) {
	s.span.SetAttributes(attribute.Int("batch.failed", failed))
}

// RecordError records err on the span without ending it.
func (s *Span) RecordError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// End ends the span.
func (s *Span) End() {
	s.span.End()
}
