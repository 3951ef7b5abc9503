// Package observability builds the logger, tracer provider and metrics
// registry shared by every module.
package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Black-And-White-Club/card-scorekeeper/internal/observability/servicemetrics"
)

// MetricsNamespace prefixes every application metric.
const MetricsNamespace = "scorekeeper"

// Config controls how observability is initialised.
type Config struct {
	ServiceName  string
	Environment  string
	Version      string
	LogLevel     string
	OTLPEndpoint string
	SampleRate   float64
	// LogOutput defaults to stdout.
	LogOutput io.Writer
}

// Observability bundles the logger, tracing and metrics handles.
type Observability struct {
	Logger         *slog.Logger
	TracerProvider trace.TracerProvider
	Registry       *prometheus.Registry

	serviceName string
	shutdown    func(context.Context) error
}

// Init builds an Observability from cfg. Tracing is exported over OTLP/HTTP
// only when an endpoint is configured.
func Init(ctx context.Context, cfg Config) (*Observability, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "card-scorekeeper"
	}

	logger := NewLogger(cfg)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	obs := &Observability{
		Logger:         logger,
		TracerProvider: noop.NewTracerProvider(),
		Registry:       registry,
		serviceName:    cfg.ServiceName,
		shutdown:       func(context.Context) error { return nil },
	}

	if cfg.OTLPEndpoint == "" {
		logger.InfoContext(ctx, "Tracing disabled, no OTLP endpoint configured")
		return obs, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.OTLPEndpoint))
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.Version),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build trace resource: %w", err)
	}

	sampler := sdktrace.AlwaysSample()
	if cfg.SampleRate > 0 && cfg.SampleRate < 1 {
		sampler = sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRate))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	obs.TracerProvider = tp
	obs.shutdown = tp.Shutdown

	logger.InfoContext(ctx, "Tracing enabled", slog.String("otlp_endpoint", cfg.OTLPEndpoint))
	return obs, nil
}

// NewNoop returns an Observability that discards traces and logs to stderr.
// Used by CLIs and tests.
func NewNoop() *Observability {
	return &Observability{
		Logger:         slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
		TracerProvider: noop.NewTracerProvider(),
		Registry:       prometheus.NewRegistry(),
		serviceName:    "card-scorekeeper",
		shutdown:       func(context.Context) error { return nil },
	}
}

// NewLogger builds the JSON slog logger described by cfg.
func NewLogger(cfg Config) *slog.Logger {
	out := cfg.LogOutput
	if out == nil {
		out = os.Stdout
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: ParseLevel(cfg.LogLevel)})
	logger := slog.New(handler)
	if cfg.ServiceName != "" {
		logger = logger.With(slog.String("service", cfg.ServiceName))
	}
	if cfg.Environment != "" {
		logger = logger.With(slog.String("env", cfg.Environment))
	}
	return logger
}

// ParseLevel maps a level name to a slog level, defaulting to Info.
func ParseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Tracer returns a named tracer from the configured provider.
func (o *Observability) Tracer(name string) trace.Tracer {
	return o.TracerProvider.Tracer(o.serviceName + "/" + name)
}

// ServiceMetrics returns the service metrics registered on the registry.
// Calling it from several modules shares one set of collectors.
func (o *Observability) ServiceMetrics() servicemetrics.Metrics {
	return servicemetrics.NewPrometheus(o.Registry, MetricsNamespace)
}

// MetricsHandler exposes the Prometheus registry.
func (o *Observability) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(o.Registry, promhttp.HandlerOpts{Registry: o.Registry})
}

// Shutdown flushes pending spans.
func (o *Observability) Shutdown(ctx context.Context) error {
	if o.shutdown == nil {
		return nil
	}
	return o.shutdown(ctx)
}
