// Package tracker decides when an identity has crossed the first-investment milestone and
// makes sure its celebration is dispatched at most once per process.
//
// A Tracker runs bounded, fixed-interval polling for one identity at a time and also accepts
// out-of-band checks from lifecycle transitions or manual callers. All evaluations pass
// through a single-flight guard: an evaluation that starts while another is in flight is
// dropped, not queued.
package tracker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/milestone-tracker/internal/milestone"
	"github.com/stacklok/milestone-tracker/internal/otel"
	"github.com/stacklok/milestone-tracker/internal/status"
	"github.com/stacklok/milestone-tracker/internal/telemetry"
)

const (
	// DefaultInterval is the spacing between scheduled checks
	DefaultInterval = 10 * time.Second

	// DefaultMaxAttempts is the number of scheduled checks before polling gives up
	DefaultMaxAttempts = 30
)

const (
	sourceScheduled = "scheduled"
	sourceOutOfBand = "out_of_band"

	outcomeInert      = "inert"
	outcomeSkipped    = "already_completed"
	outcomeDropped    = "dropped"
	outcomeAbsent     = "absent"
	outcomePending    = "pending"
	outcomeStale      = "stale"
	outcomeDispatched = "dispatched"

	// StopReasonMaxAttempts means polling used up its attempt budget
	StopReasonMaxAttempts = "max_attempts"
	// StopReasonRequested means StopMonitoring was called
	StopReasonRequested = "requested"
	// StopReasonClosed means the tracker was closed
	StopReasonClosed = "closed"
)

// Snapshot is a point-in-time copy of the tracker runtime state
type Snapshot struct {
	State          State  `json:"state"`
	Identity       string `json:"identity,omitempty"`
	AttemptCount   int    `json:"attemptCount"`
	MaxAttempts    int    `json:"maxAttempts"`
	IntervalMs     int64  `json:"intervalMs"`
	Checking       bool   `json:"checking"`
	TaskRunning    bool   `json:"taskRunning"`
	StopReason     string `json:"stopReason,omitempty"`
	CompletedCount int    `json:"completedCount"`
}

// Tracker is the milestone detection state machine
type Tracker struct {
	querier   milestone.StatusQuerier
	recorder  milestone.CompletionRecorder
	presenter milestone.Presenter
	ledger    status.Ledger
	metrics   *telemetry.TrackerMetrics
	tracer    trace.Tracer

	interval    time.Duration
	maxAttempts int

	mu           sync.Mutex
	state        State
	identity     string
	attemptCount int
	task         *Task
	// generation identifies the polling session a tick belongs to
	generation uint64
	// stops counts StopMonitoring/Close calls; a detection that began before a stop is discarded
	stops      uint64
	checking   bool
	completed  map[string]struct{}
	stopReason string
	closed     bool
}

// Option is a function that configures the tracker
type Option func(*Tracker)

// WithInterval sets the spacing between scheduled checks
func WithInterval(interval time.Duration) Option {
	return func(t *Tracker) {
		if interval > 0 {
			t.interval = interval
		}
	}
}

// WithMaxAttempts sets the number of scheduled checks per monitoring session
func WithMaxAttempts(maxAttempts int) Option {
	return func(t *Tracker) {
		if maxAttempts > 0 {
			t.maxAttempts = maxAttempts
		}
	}
}

// WithLedger persists dispatch outcomes so failed recordings can be retried after a restart
func WithLedger(ledger status.Ledger) Option {
	return func(t *Tracker) {
		t.ledger = ledger
	}
}

// WithMetrics sets the tracker metrics
func WithMetrics(metrics *telemetry.TrackerMetrics) Option {
	return func(t *Tracker) {
		t.metrics = metrics
	}
}

// WithTracer enables a span per evaluation
func WithTracer(tracer trace.Tracer) Option {
	return func(t *Tracker) {
		t.tracer = tracer
	}
}

// New creates an idle tracker
func New(
	querier milestone.StatusQuerier,
	recorder milestone.CompletionRecorder,
	presenter milestone.Presenter,
	opts ...Option,
) *Tracker {
	t := &Tracker{
		querier:     querier,
		recorder:    recorder,
		presenter:   presenter,
		interval:    DefaultInterval,
		maxAttempts: DefaultMaxAttempts,
		state:       StateIdle,
		completed:   make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// StartMonitoring begins scheduled checks for identity. It returns false without doing
// anything when the identity is empty, already celebrated, or another session is polling.
func (t *Tracker) StartMonitoring(ctx context.Context, identity string) bool {
	if identity == "" {
		slog.Warn("Ignoring monitoring request without identity")
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return false
	}
	if t.state == StatePolling {
		slog.Warn("Milestone monitoring already active, ignoring start",
			"identity", identity,
			"active_identity", t.identity)
		return false
	}
	if _, done := t.completed[identity]; done {
		slog.Info("Milestone already celebrated, not monitoring", "identity", identity)
		return false
	}
	if !t.transitionLocked(StatePolling) {
		return false
	}

	t.identity = identity
	t.attemptCount = 0
	t.stopReason = ""
	t.generation++
	gen := t.generation

	// The session outlives the request that started it
	t.task = Every(context.WithoutCancel(ctx), t.interval, func(taskCtx context.Context) {
		t.tick(taskCtx, gen)
	})

	slog.Info("Started milestone monitoring",
		"identity", identity,
		"interval", t.interval,
		"max_attempts", t.maxAttempts)
	return true
}

// StopMonitoring cancels any active polling session. Always safe to call.
func (t *Tracker) StopMonitoring() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked(StopReasonRequested)
}

// CheckNow evaluates the milestone once, outside the polling schedule, and reports
// whether a celebration was dispatched. It does not count against the attempt budget.
func (t *Tracker) CheckNow(ctx context.Context, identity string) bool {
	return t.evaluate(ctx, identity, sourceOutOfBand)
}

// Close stops polling and makes every later operation inert
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked(StopReasonClosed)
	if t.state == StateStopped {
		t.transitionLocked(StateIdle)
	}
	t.closed = true
}

// Snapshot returns a copy of the runtime state
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	return Snapshot{
		State:          t.state,
		Identity:       t.identity,
		AttemptCount:   t.attemptCount,
		MaxAttempts:    t.maxAttempts,
		IntervalMs:     t.interval.Milliseconds(),
		Checking:       t.checking,
		TaskRunning:    t.task.Running(),
		StopReason:     t.stopReason,
		CompletedCount: len(t.completed),
	}
}

// tick is one scheduled check of the session identified by gen
func (t *Tracker) tick(ctx context.Context, gen uint64) {
	t.mu.Lock()
	if t.generation != gen || t.state != StatePolling {
		t.mu.Unlock()
		return
	}
	t.attemptCount++
	attempt := t.attemptCount
	identity := t.identity
	t.mu.Unlock()

	slog.Debug("Checking milestone status",
		"identity", identity,
		"attempt", attempt,
		"max_attempts", t.maxAttempts)

	t.evaluate(ctx, identity, sourceScheduled)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.generation == gen && t.state == StatePolling && t.attemptCount >= t.maxAttempts {
		slog.Info("Milestone not detected within attempt budget, stopping",
			"identity", identity,
			"attempts", t.attemptCount)
		t.stopLocked(StopReasonMaxAttempts)
	}
}

// evaluate queries the backend once and dispatches the celebration if it is due
func (t *Tracker) evaluate(ctx context.Context, identity, source string) bool {
	ctx, span := otel.StartSpan(ctx, t.tracer, "tracker.evaluate",
		trace.WithAttributes(otel.AttrCheckSource.String(source), otel.IdentityAttr(identity)))
	defer span.End()

	outcome := t.evaluateOnce(ctx, identity, source)
	span.SetAttributes(otel.AttrCheckOutcome.String(outcome))
	return outcome == outcomeDispatched
}

func (t *Tracker) evaluateOnce(ctx context.Context, identity, source string) string {
	if identity == "" {
		return t.checkOutcome(ctx, source, outcomeInert)
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return t.checkOutcome(ctx, source, outcomeInert)
	}
	if _, done := t.completed[identity]; done {
		t.mu.Unlock()
		return t.checkOutcome(ctx, source, outcomeSkipped)
	}
	if t.checking {
		t.mu.Unlock()
		slog.Debug("Milestone check already in progress, dropping", "identity", identity, "source", source)
		return t.checkOutcome(ctx, source, outcomeDropped)
	}
	t.checking = true
	stops := t.stops
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.checking = false
		t.mu.Unlock()
	}()

	st := t.querier.Query(ctx, identity)
	if st == nil {
		return t.checkOutcome(ctx, source, outcomeAbsent)
	}
	if !st.ShouldCelebrate {
		return t.checkOutcome(ctx, source, outcomePending)
	}

	t.mu.Lock()
	if t.closed || t.stops != stops {
		t.mu.Unlock()
		slog.Info("Discarding milestone detection from a cancelled check", "identity", identity)
		return t.checkOutcome(ctx, source, outcomeStale)
	}
	// Claiming under the lock is what makes the dispatch at-most-once
	t.completed[identity] = struct{}{}
	// A manual check for another identity must not disturb an active session
	ownsState := t.state != StatePolling || t.identity == identity
	if ownsState {
		t.task.Stop()
		t.task = nil
		t.attemptCount = 0
		t.identity = identity
		t.transitionLocked(StateDetected)
	}
	t.mu.Unlock()

	t.checkOutcome(ctx, source, outcomeDispatched)

	// Stopping the task above cancels ctx when this is a scheduled tick
	dispatchCtx := context.WithoutCancel(ctx)
	t.dispatch(dispatchCtx, identity, st.FirstInvestment)

	if ownsState {
		t.mu.Lock()
		if t.state == StateDetected {
			t.transitionLocked(StateCompleted)
		}
		t.mu.Unlock()
	}

	return outcomeDispatched
}

func (t *Tracker) checkOutcome(ctx context.Context, source, outcome string) string {
	t.metrics.RecordCheck(ctx, source, outcome)
	return outcome
}

// dispatch hands the payload to the presentation layer and records the completion
func (t *Tracker) dispatch(ctx context.Context, identity string, investment *milestone.FirstInvestment) {
	payload := milestone.BuildPayload(investment)
	trace.SpanFromContext(ctx).SetAttributes(otel.AttrAssetCode.String(payload.TargetAssetCode))

	presented := true
	if err := t.presenter.Present(ctx, identity, payload); err != nil {
		presented = false
		slog.Error("Failed to present milestone celebration", "identity", identity, "error", err)
	}

	now := time.Now()
	entry := &status.DispatchEntry{
		Identity:     identity,
		Phase:        status.DispatchPhaseDispatched,
		Payload:      payload,
		DispatchedAt: &now,
	}
	t.saveEntry(ctx, entry)

	recorded := t.recorder.RecordCompleted(ctx, identity)
	t.applyRecordResult(entry, recorded, status.DispatchPhaseRecorded)
	t.saveEntry(ctx, entry)

	t.metrics.RecordDispatch(ctx, presented, recorded)
	trace.SpanFromContext(ctx).SetAttributes(otel.AttrRecorded.Bool(recorded))

	if recorded {
		slog.Info("Milestone celebration dispatched",
			"identity", identity,
			"asset", payload.TargetAssetCode,
			"purchase_value_cents", payload.PurchaseValueCents)
	} else {
		// The backend may still report shouldCelebrate to other clients
		slog.Warn("Milestone celebration dispatched but completion was not recorded",
			"identity", identity)
	}
}

// stopLocked ends the polling session; t.mu must be held
func (t *Tracker) stopLocked(reason string) {
	if t.task != nil {
		t.task.Stop()
		t.task = nil
	}
	t.generation++
	t.stops++
	t.attemptCount = 0

	if t.state == StatePolling && t.transitionLocked(StateStopped) {
		t.stopReason = reason
		t.metrics.RecordSessionEnd(context.Background(), reason)
		slog.Info("Stopped milestone monitoring", "identity", t.identity, "reason", reason)
	}
}

// transitionLocked moves to next if the transition table allows it; t.mu must be held
func (t *Tracker) transitionLocked(next State) bool {
	if !t.state.CanTransitionTo(next) {
		slog.Error("Rejected illegal tracker transition", "from", t.state, "to", next)
		return false
	}
	t.state = next
	return true
}
