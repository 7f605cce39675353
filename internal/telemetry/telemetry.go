// Package telemetry provides OpenTelemetry instrumentation for the milestone tracker:
// metrics exported in Prometheus format and traces exported over OTLP/HTTP.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultServiceName is the service name attached to exported metrics
	DefaultServiceName = "milestone-tracker"
)

// Telemetry owns the meter and tracer providers and the metrics exposition handler
type Telemetry struct {
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	handler        http.Handler
}

// Option is a function that configures the telemetry setup
type Option func(*telemetryConfig)

type telemetryConfig struct {
	enabled        bool
	serviceVersion string
	tracerOpts     []TracerProviderOption
}

// WithMetricsEnabled turns on the SDK meter provider and the Prometheus exporter
func WithMetricsEnabled(enabled bool) Option {
	return func(tc *telemetryConfig) {
		tc.enabled = enabled
	}
}

// WithServiceVersion sets the service version resource attribute
func WithServiceVersion(version string) Option {
	return func(tc *telemetryConfig) {
		tc.serviceVersion = version
	}
}

// WithTracing configures trace export; without it the tracer provider is a no-op
func WithTracing(opts ...TracerProviderOption) Option {
	return func(tc *telemetryConfig) {
		tc.tracerOpts = append(tc.tracerOpts, opts...)
	}
}

// New creates a Telemetry instance. When metrics are disabled the meter provider is a
// no-op and Handler returns nil. The caller is responsible for calling Shutdown.
func New(ctx context.Context, opts ...Option) (*Telemetry, error) {
	cfg := &telemetryConfig{serviceVersion: "unknown"}
	for _, opt := range opts {
		opt(cfg)
	}

	tracerOpts := append([]TracerProviderOption{WithTracerServiceVersion(cfg.serviceVersion)}, cfg.tracerOpts...)
	tracerProvider, err := NewTracerProvider(ctx, tracerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer provider: %w", err)
	}

	if !cfg.enabled {
		slog.Info("Metrics disabled, using no-op meter provider")
		return &Telemetry{meterProvider: noop.NewMeterProvider(), tracerProvider: tracerProvider}, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(DefaultServiceName),
			semconv.ServiceVersion(cfg.serviceVersion),
		),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	slog.Info("Metrics initialized", "service_version", cfg.serviceVersion)

	return &Telemetry{
		meterProvider:  mp,
		tracerProvider: tracerProvider,
		handler:        promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}, nil
}

// MeterProvider returns the configured meter provider
func (t *Telemetry) MeterProvider() metric.MeterProvider {
	return t.meterProvider
}

// TracerProvider returns the configured tracer provider
func (t *Telemetry) TracerProvider() trace.TracerProvider {
	return t.tracerProvider
}

// Tracer returns a named tracer from the tracer provider
func (t *Telemetry) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	return t.tracerProvider.Tracer(name, opts...)
}

// Handler returns the Prometheus exposition handler, or nil when metrics are disabled
func (t *Telemetry) Handler() http.Handler {
	return t.handler
}

// Shutdown flushes and stops the tracer and meter providers
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if tp, ok := t.tracerProvider.(*sdktrace.TracerProvider); ok {
		if err := tp.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown tracer provider: %w", err)
		}
	}
	if mp, ok := t.meterProvider.(*sdkmetric.MeterProvider); ok {
		if err := mp.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown meter provider: %w", err)
		}
		slog.Debug("Meter provider shutdown complete")
	}
	return nil
}
