package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectMetricNames(t *testing.T, reader *sdkmetric.ManualReader, scopeName string) []string {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var names []string
	for _, scope := range rm.ScopeMetrics {
		if scope.Scope.Name != scopeName {
			continue
		}
		for _, m := range scope.Metrics {
			names = append(names, m.Name)
		}
	}
	return names
}

func TestNewTrackerMetrics(t *testing.T) {
	t.Parallel()

	t.Run("returns nil when provider is nil", func(t *testing.T) {
		t.Parallel()

		metrics, err := NewTrackerMetrics(nil)
		require.NoError(t, err)
		assert.Nil(t, metrics)
	})

	t.Run("nil metrics are a no-op", func(t *testing.T) {
		t.Parallel()

		var metrics *TrackerMetrics
		metrics.RecordCheck(context.Background(), "scheduled", "pending")
		metrics.RecordDispatch(context.Background(), true, true)
		metrics.RecordSessionEnd(context.Background(), "max_attempts")
	})

	t.Run("records tracker instruments", func(t *testing.T) {
		t.Parallel()

		reader := sdkmetric.NewManualReader()
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		defer func() { _ = mp.Shutdown(context.Background()) }()

		metrics, err := NewTrackerMetrics(mp)
		require.NoError(t, err)
		require.NotNil(t, metrics)

		ctx := context.Background()
		metrics.RecordCheck(ctx, "scheduled", "pending")
		metrics.RecordCheck(ctx, "out_of_band", "dispatched")
		metrics.RecordDispatch(ctx, true, false)
		metrics.RecordSessionEnd(ctx, "max_attempts")

		names := collectMetricNames(t, reader, TrackerMetricsMeterName)
		assert.ElementsMatch(t, []string{
			"milestone_tracker_checks_total",
			"milestone_tracker_dispatches_total",
			"milestone_tracker_polling_sessions_total",
		}, names)
	})
}

func TestBackendMetrics_RecordRequest(t *testing.T) {
	t.Parallel()

	t.Run("nil metrics are a no-op", func(t *testing.T) {
		t.Parallel()

		var metrics *BackendMetrics
		metrics.RecordRequest(context.Background(), "query", time.Second, true)
	})

	t.Run("records histogram data points", func(t *testing.T) {
		t.Parallel()

		reader := sdkmetric.NewManualReader()
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		defer func() { _ = mp.Shutdown(context.Background()) }()

		metrics, err := NewBackendMetrics(mp)
		require.NoError(t, err)

		metrics.RecordRequest(context.Background(), "query", 120*time.Millisecond, true)
		metrics.RecordRequest(context.Background(), "record", 2*time.Second, false)

		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(context.Background(), &rm))

		var found bool
		for _, scope := range rm.ScopeMetrics {
			if scope.Scope.Name != BackendMetricsMeterName {
				continue
			}
			for _, m := range scope.Metrics {
				if m.Name != "milestone_backend_request_duration_seconds" {
					continue
				}
				found = true
				hist, ok := m.Data.(metricdata.Histogram[float64])
				require.True(t, ok)
				assert.Len(t, hist.DataPoints, 2)
			}
		}
		assert.True(t, found)
	})
}
