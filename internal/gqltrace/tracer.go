// Package gqltrace wires the runtime's three phase spans
// (graphql.parse, graphql.validate, graphql.execute) to OpenTelemetry,
// with pluggable Jaeger, Zipkin, or OTLP exporters and W3C
// trace-context propagation helpers for HTTP. It also provides
// FieldSpan for per-field spans; the execution engine does not open
// per-field spans itself.
package gqltrace

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Config selects the sampler and exporter(s) a Manager builds its
// provider from.
type Config struct {
	Enabled     bool
	ServiceName string
	Version     string
	Environment string
	Sampler     string // always_on, always_off, traceid_ratio
	Ratio       float64

	JaegerEndpoint string
	ZipkinEndpoint string
	OTLPEndpoint   string
}

// DefaultConfig returns a disabled config; callers opt in explicitly
// rather than pay exporter-dial cost by default.
func DefaultConfig() *Config {
	return &Config{
		Enabled:     false,
		ServiceName: "gqlrt",
		Sampler:     "traceid_ratio",
		Ratio:       1.0,
	}
}

// Manager owns the tracer provider and is the concrete type behind the
// gqlexec.Tracer interface. Its per-field (FieldSpan) and HTTP-context
// (ExtractHTTP/InjectHTTP) operations are not called by the engine or
// the demo server.
type Manager struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	config   *Config
	logger   *zap.Logger
}

// New builds a Manager. With Config.Enabled false (or nil config), it
// returns a manager backed by OpenTelemetry's no-op tracer so callers
// never need to branch on whether tracing is on.
func New(cfg *Config, logger *zap.Logger) (*Manager, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		return &Manager{tracer: trace.NewNoopTracerProvider().Tracer("noop"), config: cfg, logger: logger}, nil
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(cfg.Version),
			semconv.DeploymentEnvironmentKey.String(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("gqltrace: building resource: %w", err)
	}

	var sampler sdktrace.Sampler
	switch cfg.Sampler {
	case "always_on":
		sampler = sdktrace.AlwaysSample()
	case "always_off":
		sampler = sdktrace.NeverSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(cfg.Ratio)
	}

	var exporters []sdktrace.SpanExporter
	if cfg.JaegerEndpoint != "" {
		exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(cfg.JaegerEndpoint)))
		if err != nil {
			logger.Warn("gqltrace: jaeger exporter unavailable", zap.Error(err))
		} else {
			exporters = append(exporters, exp)
		}
	}
	if cfg.ZipkinEndpoint != "" {
		exp, err := zipkin.New(cfg.ZipkinEndpoint)
		if err != nil {
			logger.Warn("gqltrace: zipkin exporter unavailable", zap.Error(err))
		} else {
			exporters = append(exporters, exp)
		}
	}
	if cfg.OTLPEndpoint != "" {
		exp, err := otlptracehttp.New(context.Background(), otlptracehttp.WithEndpoint(cfg.OTLPEndpoint))
		if err != nil {
			logger.Warn("gqltrace: otlp exporter unavailable", zap.Error(err))
		} else {
			exporters = append(exporters, exp)
		}
	}
	if len(exporters) == 0 {
		return nil, fmt.Errorf("gqltrace: tracing enabled but no exporter could be constructed")
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(&multiExporter{exporters: exporters}),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Manager{
		tracer:   provider.Tracer(cfg.ServiceName),
		provider: provider,
		config:   cfg,
		logger:   logger,
	}, nil
}

// StartSpan implements gqlexec.Tracer: open a span, return the child
// context and an end func that closes it. Satisfies the narrow
// interface the execution engine depends on for its three phase spans.
func (m *Manager) StartSpan(ctx context.Context, name string) (context.Context, func()) {
	ctx, span := m.tracer.Start(ctx, name)
	return ctx, func() { span.End() }
}

// FieldSpan opens a graphql.field span carrying the resolved field's
// identity (§4.10: "one graphql.field span per resolved field (name,
// path, parent type attributes)"). The returned func records failure
// status on the span, if any, before ending it.
func (m *Manager) FieldSpan(ctx context.Context, typeName, fieldName, path string) (context.Context, func(error)) {
	ctx, span := m.tracer.Start(ctx, "graphql.field", trace.WithAttributes(
		attribute.String("graphql.type", typeName),
		attribute.String("graphql.field", fieldName),
		attribute.String("graphql.path", path),
	))
	return ctx, func(err error) {
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

// ExtractHTTP pulls a W3C traceparent/tracestate pair off inbound
// headers into ctx (spec.md §6).
func (m *Manager) ExtractHTTP(ctx context.Context, headers http.Header) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(headers))
}

// InjectHTTP writes ctx's trace context onto outbound headers.
func (m *Manager) InjectHTTP(ctx context.Context, headers http.Header) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(headers))
}

// Shutdown flushes and stops the provider. A no-op when tracing was
// never enabled.
func (m *Manager) Shutdown(ctx context.Context) error {
	if m.provider == nil {
		return nil
	}
	return m.provider.Shutdown(ctx)
}

// multiExporter fans a batch of spans out to every configured
// exporter, succeeding as long as at least one does.
type multiExporter struct {
	exporters []sdktrace.SpanExporter
}

func (e *multiExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	var lastErr error
	for _, exp := range e.exporters {
		if err := exp.ExportSpans(ctx, spans); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func (e *multiExporter) Shutdown(ctx context.Context) error {
	var lastErr error
	for _, exp := range e.exporters {
		if err := exp.Shutdown(ctx); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
