// Package backend talks to the remote milestone backend: it queries the first-investment
// milestone status and records that a celebration was shown.
package backend

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/milestone-tracker/internal/httpclient"
	"github.com/stacklok/milestone-tracker/internal/milestone"
	"github.com/stacklok/milestone-tracker/internal/telemetry"
)

const (
	// StatusPath is the status query route, relative to the backend endpoint
	StatusPath = "/api/v1/milestones/first-investment"

	// CompletePath is the mark-completed route, relative to the backend endpoint
	CompletePath = "/api/v1/milestones/first-investment/complete"

	defaultBreakerFailures    = 5
	defaultBreakerOpenTimeout = 30 * time.Second
	defaultRecordMaxTries     = 3
	defaultRecordInterval     = 500 * time.Millisecond
)

// StatusResponse is the wire shape of the status query response
type StatusResponse struct {
	Success         bool                       `json:"success"`
	HasCompleted    bool                       `json:"hasCompleted"`
	ShouldCelebrate bool                       `json:"shouldCelebrate"`
	FirstInvestment *milestone.FirstInvestment `json:"firstInvestment,omitempty"`
}

// CompleteRequest is the wire shape of the mark-completed request
type CompleteRequest struct {
	Identity string `json:"identity"`
}

// CompleteResponse is the wire shape of the mark-completed response
type CompleteResponse struct {
	Success bool `json:"success"`
}

// Client implements milestone.StatusQuerier and milestone.CompletionRecorder
type Client struct {
	http     httpclient.Client
	endpoint string
	breaker  *gobreaker.CircuitBreaker
	metrics  *telemetry.BackendMetrics
	tracer   trace.Tracer

	breakerFailures    uint32
	breakerOpenTimeout time.Duration
	recordMaxTries     uint
	recordInterval     time.Duration
}

var (
	_ milestone.StatusQuerier      = (*Client)(nil)
	_ milestone.CompletionRecorder = (*Client)(nil)
)

// Option is a function that configures the client
type Option func(*Client)

// WithCircuitBreaker sets when status queries stop reaching the backend
func WithCircuitBreaker(consecutiveFailures uint32, openTimeout time.Duration) Option {
	return func(c *Client) {
		if consecutiveFailures > 0 {
			c.breakerFailures = consecutiveFailures
		}
		if openTimeout > 0 {
			c.breakerOpenTimeout = openTimeout
		}
	}
}

// WithRecordRetry sets the bounded retry policy for completion recording
func WithRecordRetry(maxTries uint, initialInterval time.Duration) Option {
	return func(c *Client) {
		if maxTries > 0 {
			c.recordMaxTries = maxTries
		}
		if initialInterval > 0 {
			c.recordInterval = initialInterval
		}
	}
}

// WithMetrics sets the backend metrics
func WithMetrics(metrics *telemetry.BackendMetrics) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// WithTracer enables spans around backend calls
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = tracer
	}
}

// NewClient creates a backend client for the given base endpoint
func NewClient(httpClient httpclient.Client, endpoint string, opts ...Option) *Client {
	c := &Client{
		http:               httpClient,
		endpoint:           strings.TrimRight(endpoint, "/"),
		breakerFailures:    defaultBreakerFailures,
		breakerOpenTimeout: defaultBreakerOpenTimeout,
		recordMaxTries:     defaultRecordMaxTries,
		recordInterval:     defaultRecordInterval,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "milestone-status",
		Timeout: c.breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= c.breakerFailures
		},
		// Cancelled queries say nothing about backend health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String())
		},
	})

	return c
}

// BreakerState returns the current circuit breaker state, e.g. "closed" or "open"
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

func (c *Client) statusURL(identity string) string {
	return c.endpoint + StatusPath + "?" + url.Values{"identity": {identity}}.Encode()
}

func (c *Client) completeURL() string {
	return c.endpoint + CompletePath
}
