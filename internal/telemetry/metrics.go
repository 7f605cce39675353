package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// TrackerMetricsMeterName is the name used for the tracker metrics meter
	TrackerMetricsMeterName = "github.com/stacklok/milestone-tracker/tracker"

	// BackendMetricsMeterName is the name used for the backend client metrics meter
	BackendMetricsMeterName = "github.com/stacklok/milestone-tracker/backend"
)

// TrackerMetrics holds the instruments describing tracker decisions
type TrackerMetrics struct {
	checks     metric.Int64Counter
	dispatches metric.Int64Counter
	sessions   metric.Int64Counter
}

// NewTrackerMetrics creates a new TrackerMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewTrackerMetrics(provider metric.MeterProvider) (*TrackerMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(TrackerMetricsMeterName)

	checks, err := meter.Int64Counter(
		"milestone_tracker_checks_total",
		metric.WithDescription("Milestone evaluations by trigger source and outcome"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, err
	}

	dispatches, err := meter.Int64Counter(
		"milestone_tracker_dispatches_total",
		metric.WithDescription("Celebrations handed to the presentation layer"),
		metric.WithUnit("{dispatch}"),
	)
	if err != nil {
		return nil, err
	}

	sessions, err := meter.Int64Counter(
		"milestone_tracker_polling_sessions_total",
		metric.WithDescription("Polling sessions by how they ended"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, err
	}

	return &TrackerMetrics{
		checks:     checks,
		dispatches: dispatches,
		sessions:   sessions,
	}, nil
}

// RecordCheck records one evaluation
func (m *TrackerMetrics) RecordCheck(ctx context.Context, source, outcome string) {
	if m == nil || m.checks == nil {
		return
	}
	m.checks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("outcome", outcome),
	))
}

// RecordDispatch records one celebration dispatch
func (m *TrackerMetrics) RecordDispatch(ctx context.Context, presented, recorded bool) {
	if m == nil || m.dispatches == nil {
		return
	}
	m.dispatches.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("presented", presented),
		attribute.Bool("recorded", recorded),
	))
}

// RecordSessionEnd records how a polling session ended
func (m *TrackerMetrics) RecordSessionEnd(ctx context.Context, reason string) {
	if m == nil || m.sessions == nil {
		return
	}
	m.sessions.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// BackendMetrics holds the instruments describing backend calls
type BackendMetrics struct {
	requestDuration metric.Float64Histogram
}

// NewBackendMetrics creates a new BackendMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewBackendMetrics(provider metric.MeterProvider) (*BackendMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(BackendMetricsMeterName)

	requestDuration, err := meter.Float64Histogram(
		"milestone_backend_request_duration_seconds",
		metric.WithDescription("Duration of milestone backend requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, err
	}

	return &BackendMetrics{requestDuration: requestDuration}, nil
}

// RecordRequest records the duration of one backend request
func (m *BackendMetrics) RecordRequest(ctx context.Context, operation string, duration time.Duration, success bool) {
	if m == nil || m.requestDuration == nil {
		return
	}
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.Bool("success", success),
	))
}
