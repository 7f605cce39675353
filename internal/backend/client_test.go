package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/stacklok/milestone-tracker/internal/httpclient"
	"github.com/stacklok/milestone-tracker/internal/milestone"
	"github.com/stacklok/milestone-tracker/internal/otel"
)

const testIdentity = "user-123"

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{WithRecordRetry(3, time.Millisecond)}, opts...)
	return NewClient(httpclient.NewDefaultClient(time.Second), server.URL+"/", opts...)
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestClient_Query(t *testing.T) {
	t.Parallel()

	createdAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		handler  func(t *testing.T) http.HandlerFunc
		expected *milestone.Status
	}{
		{
			name: "not yet completed",
			handler: func(t *testing.T) http.HandlerFunc {
				return func(w http.ResponseWriter, _ *http.Request) {
					writeJSON(t, w, StatusResponse{Success: true})
				}
			},
			expected: &milestone.Status{},
		},
		{
			name: "should celebrate with investment",
			handler: func(t *testing.T) http.HandlerFunc {
				return func(w http.ResponseWriter, _ *http.Request) {
					_, _ = w.Write([]byte(`{"success":true,"hasCompleted":true,"shouldCelebrate":true,` +
						`"firstInvestment":{"targetAsset":"BTC","amountUsd":10,"createdAt":"2024-01-01T00:00:00Z"}}`))
				}
			},
			expected: &milestone.Status{
				HasCompleted:    true,
				ShouldCelebrate: true,
				FirstInvestment: &milestone.FirstInvestment{TargetAsset: "BTC", AmountUSD: 10, CreatedAt: createdAt},
			},
		},
		{
			name: "completed and already celebrated",
			handler: func(t *testing.T) http.HandlerFunc {
				return func(w http.ResponseWriter, _ *http.Request) {
					writeJSON(t, w, StatusResponse{Success: true, HasCompleted: true})
				}
			},
			expected: &milestone.Status{HasCompleted: true},
		},
		{
			name: "backend reports failure",
			handler: func(t *testing.T) http.HandlerFunc {
				return func(w http.ResponseWriter, _ *http.Request) {
					writeJSON(t, w, StatusResponse{Success: false, HasCompleted: true, ShouldCelebrate: true})
				}
			},
			expected: nil,
		},
		{
			name: "celebrate without completion is malformed",
			handler: func(t *testing.T) http.HandlerFunc {
				return func(w http.ResponseWriter, _ *http.Request) {
					writeJSON(t, w, StatusResponse{Success: true, ShouldCelebrate: true})
				}
			},
			expected: nil,
		},
		{
			name: "malformed json",
			handler: func(*testing.T) http.HandlerFunc {
				return func(w http.ResponseWriter, _ *http.Request) {
					_, _ = w.Write([]byte(`{"success":`))
				}
			},
			expected: nil,
		},
		{
			name: "server error",
			handler: func(*testing.T) http.HandlerFunc {
				return func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(http.StatusInternalServerError)
				}
			},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, tt.handler(t))
			assert.Equal(t, tt.expected, client.Query(context.Background(), testIdentity))
		})
	}
}

func TestClient_Query_SendsIdentity(t *testing.T) {
	t.Parallel()

	var gotPath, gotIdentity string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotIdentity = r.URL.Query().Get("identity")
		writeJSON(t, w, StatusResponse{Success: true})
	})

	require.NotNil(t, client.Query(context.Background(), "user with spaces&more"))
	assert.Equal(t, StatusPath, gotPath)
	assert.Equal(t, "user with spaces&more", gotIdentity)
}

func TestClient_Query_EmptyIdentity(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		writeJSON(t, w, StatusResponse{Success: true})
	})

	assert.Nil(t, client.Query(context.Background(), ""))
	assert.Zero(t, calls.Load())
}

func TestClient_Query_CircuitBreakerOpens(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}, WithCircuitBreaker(2, time.Hour))

	ctx := context.Background()
	assert.Nil(t, client.Query(ctx, testIdentity))
	assert.Nil(t, client.Query(ctx, testIdentity))
	assert.Equal(t, "open", client.BreakerState())

	// Open breaker answers without reaching the backend
	assert.Nil(t, client.Query(ctx, testIdentity))
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_Query_CancelledDoesNotTripBreaker(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, StatusResponse{Success: true})
	}, WithCircuitBreaker(1, time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Nil(t, client.Query(ctx, testIdentity))
	assert.Equal(t, "closed", client.BreakerState())
	assert.NotNil(t, client.Query(context.Background(), testIdentity))
}

func TestClient_RecordCompleted(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		responses     []int
		successBody   bool
		expected      bool
		expectedCalls int32
	}{
		{
			name:          "succeeds first time",
			responses:     []int{http.StatusOK},
			successBody:   true,
			expected:      true,
			expectedCalls: 1,
		},
		{
			name:          "retries transient failures",
			responses:     []int{http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusOK},
			successBody:   true,
			expected:      true,
			expectedCalls: 3,
		},
		{
			name:          "gives up after max tries",
			responses:     []int{http.StatusInternalServerError, http.StatusInternalServerError, http.StatusInternalServerError},
			expected:      false,
			expectedCalls: 3,
		},
		{
			name:          "client errors are permanent",
			responses:     []int{http.StatusBadRequest},
			expected:      false,
			expectedCalls: 1,
		},
		{
			name:          "too many requests is retried",
			responses:     []int{http.StatusTooManyRequests, http.StatusOK},
			successBody:   true,
			expected:      true,
			expectedCalls: 2,
		},
		{
			name:          "success false is retried then fails",
			responses:     []int{http.StatusOK, http.StatusOK, http.StatusOK},
			successBody:   false,
			expected:      false,
			expectedCalls: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var calls atomic.Int32
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				n := calls.Add(1)
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, CompletePath, r.URL.Path)

				var req CompleteRequest
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, testIdentity, req.Identity)

				code := tt.responses[len(tt.responses)-1]
				if int(n) <= len(tt.responses) {
					code = tt.responses[n-1]
				}
				if code != http.StatusOK {
					w.WriteHeader(code)
					return
				}
				writeJSON(t, w, CompleteResponse{Success: tt.successBody})
			})

			assert.Equal(t, tt.expected, client.RecordCompleted(context.Background(), testIdentity))
			assert.Equal(t, tt.expectedCalls, calls.Load())
		})
	}
}

func TestClient_RecordCompleted_EmptyIdentity(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		writeJSON(t, w, CompleteResponse{Success: true})
	})

	assert.False(t, client.RecordCompleted(context.Background(), ""))
	assert.Zero(t, calls.Load())
}

func TestClient_Spans(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		writeJSON(t, w, StatusResponse{Success: true})
	}, WithTracer(tp.Tracer("backend-test")))

	ctx := context.Background()
	require.NotNil(t, client.Query(ctx, testIdentity))
	assert.False(t, client.RecordCompleted(ctx, testIdentity))

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	query := spans[0]
	assert.Equal(t, "backend.query", query.Name)
	assert.Contains(t, query.Attributes, otel.IdentityAttr(testIdentity))
	assert.Contains(t, query.Attributes, otel.AttrBreakerState.String("closed"))
	assert.Equal(t, codes.Unset, query.Status.Code)

	record := spans[1]
	assert.Equal(t, "backend.record_completed", record.Name)
	assert.Contains(t, record.Attributes, otel.AttrRecorded.Bool(false))
	assert.Equal(t, codes.Error, record.Status.Code)
}
