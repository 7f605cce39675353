// Package lifecycle turns application lifecycle transitions into out-of-band milestone checks.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// DefaultResumeDelay lets remote processing settle before checking after a resume
const DefaultResumeDelay = 2 * time.Second

// Event is an application lifecycle transition
type Event string

const (
	// EventForeground means the application came back to the foreground
	EventForeground Event = "foreground"
	// EventBackground means the application moved to the background
	EventBackground Event = "background"
)

// ParseEvent converts a transition name into an Event
func ParseEvent(name string) (Event, error) {
	switch Event(strings.ToLower(strings.TrimSpace(name))) {
	case EventForeground, "active", "resume":
		return EventForeground, nil
	case EventBackground, "inactive", "pause":
		return EventBackground, nil
	default:
		return "", fmt.Errorf("unknown lifecycle transition %q", name)
	}
}

// Transition is a lifecycle event for an identity
type Transition struct {
	Event    Event
	Identity string
}

// Checker is the single entry point lifecycle transitions call into
//
//go:generate mockgen -destination=mocks/mock_checker.go -package=mocks -source=bridge.go Checker
type Checker interface {
	CheckNow(ctx context.Context, identity string) bool
}

// Bridge schedules a delayed check whenever the application returns to the foreground.
// A background transition cancels a check that has not fired yet.
type Bridge struct {
	checker Checker
	delay   time.Duration

	mu      sync.Mutex
	pending *time.Timer
	closed  bool
	// fired is notified after each delayed check completes; used by tests
	fired func(identity string, dispatched bool)
}

// Option is a function that configures the bridge
type Option func(*Bridge)

// WithResumeDelay sets the delay between a foreground transition and the check
func WithResumeDelay(delay time.Duration) Option {
	return func(b *Bridge) {
		if delay >= 0 {
			b.delay = delay
		}
	}
}

// New creates a bridge that calls checker on resume
func New(checker Checker, opts ...Option) *Bridge {
	b := &Bridge{
		checker: checker,
		delay:   DefaultResumeDelay,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Handle applies a single transition. It never blocks on the check itself.
func (b *Bridge) Handle(ctx context.Context, tr Transition) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	switch tr.Event {
	case EventForeground:
		if tr.Identity == "" {
			slog.Debug("Ignoring foreground transition without identity")
			return
		}
		b.cancelLocked()
		checkCtx := context.WithoutCancel(ctx)
		identity := tr.Identity
		var timer *time.Timer
		timer = time.AfterFunc(b.delay, func() {
			b.mu.Lock()
			if b.pending != timer || b.closed {
				b.mu.Unlock()
				return
			}
			b.pending = nil
			onFired := b.fired
			b.mu.Unlock()

			dispatched := b.checker.CheckNow(checkCtx, identity)
			slog.Debug("Resume milestone check finished", "identity", identity, "dispatched", dispatched)
			if onFired != nil {
				onFired(identity, dispatched)
			}
		})
		b.pending = timer
		slog.Debug("Scheduled resume milestone check", "identity", identity, "delay", b.delay)
	case EventBackground:
		b.cancelLocked()
	default:
		slog.Warn("Ignoring unknown lifecycle event", "event", tr.Event)
	}
}

// Run applies transitions from events until the channel closes or ctx is done
func (b *Bridge) Run(ctx context.Context, events <-chan Transition) error {
	defer b.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case tr, ok := <-events:
			if !ok {
				return nil
			}
			b.Handle(ctx, tr)
		}
	}
}

// Pending reports whether a resume check is scheduled but has not fired
func (b *Bridge) Pending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending != nil
}

// Close cancels any pending check; later transitions are ignored
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cancelLocked()
	b.closed = true
}

func (b *Bridge) cancelLocked() {
	if b.pending != nil {
		b.pending.Stop()
		b.pending = nil
	}
}

// Feed is a buffered event source for Run. Handle never blocks; transitions arriving
// while the buffer is full are dropped.
type Feed chan Transition

// NewFeed creates a feed with room for size pending transitions
func NewFeed(size int) Feed {
	return make(Feed, size)
}

// Handle queues tr for the bridge
func (f Feed) Handle(_ context.Context, tr Transition) {
	select {
	case f <- tr:
	default:
		slog.Warn("Lifecycle event buffer full, dropping transition", "event", tr.Event, "identity", tr.Identity)
	}
}
