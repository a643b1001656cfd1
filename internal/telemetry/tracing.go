package telemetry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/khirotaka/weather-mcp-server/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

// ShutdownFunc flushes and stops the tracer provider
type ShutdownFunc func(ctx context.Context) error

func noopShutdown(context.Context) error { return nil }

// Setup installs a global tracer provider exporting to Zipkin.
// Without a Zipkin URL the global no-op provider stays in place.
func Setup(cfg config.TracingConfig) (ShutdownFunc, error) {
	if cfg.ZipkinURL == "" {
		slog.Debug("Tracing disabled")
		return noopShutdown, nil
	}

	tp, err := NewTracerProvider(cfg)
	if err != nil {
		return nil, err
	}

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	slog.Info("Tracing enabled", "zipkin_url", cfg.ZipkinURL, "service", cfg.ServiceName)

	return tp.Shutdown, nil
}

// NewTracerProvider builds a provider batching spans to the configured Zipkin collector
func NewTracerProvider(cfg config.TracingConfig) (*sdktrace.TracerProvider, error) {
	exporter, err := zipkin.New(cfg.ZipkinURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create zipkin exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(cfg.ServiceName),
		)),
	)
	return tp, nil
}
