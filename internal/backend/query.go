package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/milestone-tracker/internal/milestone"
	"github.com/stacklok/milestone-tracker/internal/otel"
)

var (
	errBackendFailure    = errors.New("backend reported failure")
	errInvariantViolated = errors.New("shouldCelebrate set without hasCompleted")
)

// Query fetches the current milestone status. Every failure collapses to nil.
func (c *Client) Query(ctx context.Context, identity string) *milestone.Status {
	if identity == "" {
		return nil
	}

	ctx, span := otel.StartSpan(ctx, c.tracer, "backend.query",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(otel.IdentityAttr(identity)))
	defer span.End()

	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetchStatus(ctx, identity)
	})
	c.metrics.RecordRequest(ctx, "query", time.Since(start), err == nil)
	span.SetAttributes(otel.AttrBreakerState.String(c.BreakerState()))

	if err != nil {
		otel.RecordError(span, err)
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			slog.Debug("Milestone status query short-circuited", "breaker_state", c.BreakerState())
		case ctx.Err() != nil:
			slog.Debug("Milestone status query cancelled", "error", err)
		default:
			slog.Warn("Milestone status query failed", "error", err)
		}
		return nil
	}

	status, ok := result.(*milestone.Status)
	if !ok {
		return nil
	}
	return status
}

func (c *Client) fetchStatus(ctx context.Context, identity string) (*milestone.Status, error) {
	body, err := c.http.Get(ctx, c.statusURL(identity))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch milestone status: %w", err)
	}

	var resp StatusResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse milestone status: %w", err)
	}

	if !resp.Success {
		return nil, errBackendFailure
	}

	status := &milestone.Status{
		HasCompleted:    resp.HasCompleted,
		ShouldCelebrate: resp.ShouldCelebrate,
		FirstInvestment: resp.FirstInvestment,
	}
	if !status.Valid() {
		return nil, errInvariantViolated
	}

	return status, nil
}
