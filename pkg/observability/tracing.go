// Package observability sets up OpenTelemetry tracing for the paging spans.
package observability

import (
	"context"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/ajitpratap0/ocf/pkg/config"
	"github.com/ajitpratap0/ocf/pkg/ocferrors"
)

// Exporter names accepted by TracingConfig.
const (
	ExporterStdout = "stdout"
	ExporterNone   = "none"
)

// TracingConfig contains tracing configuration
type TracingConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Exporter       string
	SamplingRate   float64
	BatchTimeout   time.Duration
	// Writer receives stdout exporter output; os.Stdout when nil
	Writer io.Writer
}

// TracingConfigFrom builds the tracing configuration from the observability
// section.
func TracingConfigFrom(cfg config.ObservabilityConfig, version string) TracingConfig {
	return TracingConfig{
		Enabled:        cfg.EnableTracing,
		ServiceName:    cfg.ServiceName,
		ServiceVersion: version,
		Exporter:       cfg.TracingExporter,
		SamplingRate:   1,
		BatchTimeout:   5 * time.Second,
	}
}

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(ctx context.Context) error

// InitTracing installs a global tracer provider. When tracing is disabled a
// no-op provider is installed so that spans cost nothing.
func InitTracing(cfg TracingConfig) (ShutdownFunc, error) {
	if !cfg.Enabled || cfg.Exporter == ExporterNone {
		otel.SetTracerProvider(noop.NewTracerProvider())
		return func(context.Context) error { return nil }, nil
	}
	if cfg.Exporter != "" && cfg.Exporter != ExporterStdout {
		return nil, ocferrors.New(ocferrors.ErrorTypeConfig, "unsupported tracing exporter").
			WithDetail("exporter", cfg.Exporter)
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "ocf"
	}
	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}

	res := resource.NewSchemaless(
		semconv.ServiceNameKey.String(cfg.ServiceName),
		semconv.ServiceVersionKey.String(cfg.ServiceVersion),
	)

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, ocferrors.Wrap(err, ocferrors.ErrorTypeConfig, "failed to create stdout exporter")
	}

	var sampler sdktrace.Sampler
	switch {
	case cfg.SamplingRate <= 0:
		sampler = sdktrace.NeverSample()
	case cfg.SamplingRate >= 1:
		sampler = sdktrace.AlwaysSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(cfg.SamplingRate)
	}

	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = 5 * time.Second
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler)),
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(batchTimeout)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}
