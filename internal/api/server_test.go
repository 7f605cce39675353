package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/milestone-tracker/internal/api"
	v1 "github.com/stacklok/milestone-tracker/internal/api/v1"
	"github.com/stacklok/milestone-tracker/internal/lifecycle"
	"github.com/stacklok/milestone-tracker/internal/milestone"
	"github.com/stacklok/milestone-tracker/internal/milestone/mocks"
	"github.com/stacklok/milestone-tracker/internal/tracker"
)

func newServer(t *testing.T, opts ...api.ServerOption) (http.Handler, *mocks.MockStatusQuerier, *mocks.MockCompletionRecorder, *mocks.MockPresenter) {
	t.Helper()
	ctrl := gomock.NewController(t)

	querier := mocks.NewMockStatusQuerier(ctrl)
	recorder := mocks.NewMockCompletionRecorder(ctrl)
	presenter := mocks.NewMockPresenter(ctrl)

	tr := tracker.New(querier, recorder, presenter, tracker.WithInterval(time.Hour))
	t.Cleanup(tr.Close)

	bridge := lifecycle.New(tr, lifecycle.WithResumeDelay(time.Millisecond))
	t.Cleanup(bridge.Close)

	opts = append(opts,
		api.WithMiddlewares(middleware.RequestID, api.LoggingMiddleware),
		api.WithRouteOptions(v1.WithLifecycle(bridge)),
	)
	return api.NewServer(tr, opts...), querier, recorder, presenter
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, path, nil))
	return rr
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	server, _, _, _ := newServer(t)
	rr := do(t, server, http.MethodGet, "/health")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var response map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response["status"])
}

func TestReadinessEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		check          v1.ReadinessCheck
		expectedStatus int
	}{
		{name: "ready", check: func(context.Context) error { return nil }, expectedStatus: http.StatusOK},
		{name: "not ready", check: func(context.Context) error { return errors.New("circuit open") }, expectedStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server, _, _, _ := newServer(t, api.WithReadinessCheck(tt.check))
			assert.Equal(t, tt.expectedStatus, do(t, server, http.MethodGet, "/readiness").Code)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("absent without handler", func(t *testing.T) {
		t.Parallel()

		server, _, _, _ := newServer(t)
		assert.Equal(t, http.StatusNotFound, do(t, server, http.MethodGet, "/metrics").Code)
	})

	t.Run("served when configured", func(t *testing.T) {
		t.Parallel()

		metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("milestone_tracker_checks_total 1\n"))
		})
		server, _, _, _ := newServer(t, api.WithMetricsHandler(metrics))

		rr := do(t, server, http.MethodGet, "/metrics")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "milestone_tracker_checks_total")
	})
}

func TestControlFlow_MonitorThenManualCheck(t *testing.T) {
	t.Parallel()

	server, querier, recorder, presenter := newServer(t)

	querier.EXPECT().Query(gomock.Any(), "user-1").Return(&milestone.Status{HasCompleted: true, ShouldCelebrate: true})
	presenter.EXPECT().Present(gomock.Any(), "user-1", milestone.BuildPayload(nil)).Return(nil)
	recorder.EXPECT().RecordCompleted(gomock.Any(), "user-1").Return(true)

	assert.Equal(t, http.StatusAccepted, do(t, server, http.MethodPost, "/v1/identities/user-1/monitor").Code)
	assert.Equal(t, http.StatusConflict, do(t, server, http.MethodPost, "/v1/identities/user-2/monitor").Code)

	rr := do(t, server, http.MethodPost, "/v1/identities/user-1/check")
	require.Equal(t, http.StatusOK, rr.Code)

	var check v1.CheckResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &check))
	assert.True(t, check.Dispatched)

	rr = do(t, server, http.MethodGet, "/v1/tracker")
	var snap tracker.Snapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	assert.Equal(t, tracker.StateCompleted, snap.State)
	assert.False(t, snap.TaskRunning)
}

func TestControlFlow_LifecycleResume(t *testing.T) {
	t.Parallel()

	server, querier, _, _ := newServer(t)

	checked := make(chan struct{})
	querier.EXPECT().Query(gomock.Any(), "user-1").DoAndReturn(func(context.Context, string) *milestone.Status {
		close(checked)
		return &milestone.Status{}
	})

	assert.Equal(t, http.StatusAccepted, do(t, server, http.MethodPost, "/v1/lifecycle/foreground?identity=user-1").Code)

	select {
	case <-checked:
	case <-time.After(time.Second):
		t.Fatal("resume check did not reach the backend")
	}
}
