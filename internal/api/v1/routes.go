// Package v1 provides the control API for the milestone tracker.
package v1

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/stacklok/milestone-tracker/internal/api/common"
	"github.com/stacklok/milestone-tracker/internal/lifecycle"
	"github.com/stacklok/milestone-tracker/internal/tracker"
	"github.com/stacklok/milestone-tracker/internal/versions"
)

// Tracker is the subset of tracker.Tracker the control API drives
//
//go:generate mockgen -destination=mocks/mock_tracker.go -package=mocks -source=routes.go Tracker,LifecycleHandler
type Tracker interface {
	StartMonitoring(ctx context.Context, identity string) bool
	StopMonitoring()
	CheckNow(ctx context.Context, identity string) bool
	Acknowledge(ctx context.Context, identity string) bool
	Snapshot() tracker.Snapshot
}

// LifecycleHandler receives lifecycle transitions reported over the API
type LifecycleHandler interface {
	Handle(ctx context.Context, tr lifecycle.Transition)
}

// MonitorResponse reports whether a monitoring session was started
type MonitorResponse struct {
	Identity string `json:"identity"`
	Started  bool   `json:"started"`
}

// CheckResponse reports whether a manual check dispatched a celebration
type CheckResponse struct {
	Identity   string `json:"identity"`
	Dispatched bool   `json:"dispatched"`
}

// AcknowledgeResponse reports whether the acknowledgement was recorded by the backend
type AcknowledgeResponse struct {
	Identity string `json:"identity"`
	Recorded bool   `json:"recorded"`
}

// LifecycleResponse echoes an accepted lifecycle transition
type LifecycleResponse struct {
	Identity string          `json:"identity"`
	Event    lifecycle.Event `json:"event"`
}

// Routes holds the handlers of the control API
type Routes struct {
	tracker   Tracker
	lifecycle LifecycleHandler
	limiter   *rate.Limiter
}

// RouterOption configures the control API routes
type RouterOption func(*Routes)

// WithManualCheckLimit throttles manual checks; requests over the limit get 429
func WithManualCheckLimit(perSecond float64, burst int) RouterOption {
	return func(r *Routes) {
		if perSecond > 0 && burst > 0 {
			r.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// WithLifecycle routes lifecycle transitions to handler
func WithLifecycle(handler LifecycleHandler) RouterOption {
	return func(r *Routes) {
		r.lifecycle = handler
	}
}

// Router creates the control API router
func Router(t Tracker, opts ...RouterOption) http.Handler {
	routes := &Routes{tracker: t}
	for _, opt := range opts {
		opt(routes)
	}

	r := chi.NewRouter()

	r.Get("/tracker", routes.getTracker)
	r.Delete("/monitor", routes.stopMonitoring)
	r.Route("/identities/{identity}", func(r chi.Router) {
		r.Post("/monitor", routes.startMonitoring)
		r.Post("/check", routes.checkNow)
		r.Post("/acknowledge", routes.acknowledge)
	})
	r.Post("/lifecycle/{transition}", routes.lifecycleTransition)

	return r
}

func (rr *Routes) getTracker(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, rr.tracker.Snapshot(), http.StatusOK)
}

func (rr *Routes) startMonitoring(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrError(w, r)
	if !ok {
		return
	}

	started := rr.tracker.StartMonitoring(r.Context(), identity)
	status := http.StatusAccepted
	if !started {
		status = http.StatusConflict
	}
	common.WriteJSONResponse(w, MonitorResponse{Identity: identity, Started: started}, status)
}

func (rr *Routes) stopMonitoring(w http.ResponseWriter, _ *http.Request) {
	rr.tracker.StopMonitoring()
	common.WriteJSONResponse(w, rr.tracker.Snapshot(), http.StatusOK)
}

func (rr *Routes) checkNow(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrError(w, r)
	if !ok {
		return
	}

	if rr.limiter != nil && !rr.limiter.Allow() {
		w.Header().Set("Retry-After", "1")
		common.WriteErrorResponse(w, "too many manual checks", http.StatusTooManyRequests)
		return
	}

	dispatched := rr.tracker.CheckNow(r.Context(), identity)
	common.WriteJSONResponse(w, CheckResponse{Identity: identity, Dispatched: dispatched}, http.StatusOK)
}

func (rr *Routes) acknowledge(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOrError(w, r)
	if !ok {
		return
	}

	recorded := rr.tracker.Acknowledge(r.Context(), identity)
	common.WriteJSONResponse(w, AcknowledgeResponse{Identity: identity, Recorded: recorded}, http.StatusOK)
}

func (rr *Routes) lifecycleTransition(w http.ResponseWriter, r *http.Request) {
	if rr.lifecycle == nil {
		common.WriteErrorResponse(w, "lifecycle events are not enabled", http.StatusNotImplemented)
		return
	}

	event, err := lifecycle.ParseEvent(chi.URLParam(r, "transition"))
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	identity, ok := identityOrError(w, r)
	if !ok {
		return
	}

	rr.lifecycle.Handle(r.Context(), lifecycle.Transition{Event: event, Identity: identity})
	common.WriteJSONResponse(w, LifecycleResponse{Identity: identity, Event: event}, http.StatusAccepted)
}

func identityOrError(w http.ResponseWriter, r *http.Request) (string, bool) {
	identity, err := common.IdentityParam(r, "identity")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	return identity, true
}

// ReadinessCheck reports an error while the service cannot do useful work
type ReadinessCheck func(ctx context.Context) error

// ErrNotReady is returned by readiness checks that have no more specific cause
var ErrNotReady = errors.New("not ready")

// HealthRouter creates a router for health check endpoints
func HealthRouter(ready ReadinessCheck) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", healthHandler)
	r.Get("/readiness", readinessHandler(ready))
	r.Get("/version", versionHandler)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, map[string]string{"status": "healthy"}, http.StatusOK)
}

func readinessHandler(ready ReadinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			if err := ready(r.Context()); err != nil {
				slog.Warn("Readiness check failed", "error", err)
				common.WriteErrorResponse(w, "not ready: "+err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		common.WriteJSONResponse(w, map[string]string{"status": "ready"}, http.StatusOK)
	}
}

func versionHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, versions.GetVersionInfo(), http.StatusOK)
}
