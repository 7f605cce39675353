package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/milestone-tracker/internal/httpclient"
	"github.com/stacklok/milestone-tracker/internal/otel"
)

// RecordCompleted marks the celebration as shown for identity, retrying transient
// failures with exponential backoff up to the configured number of tries.
// Client errors other than 429 are not retried.
func (c *Client) RecordCompleted(ctx context.Context, identity string) bool {
	if identity == "" {
		return false
	}

	ctx, span := otel.StartSpan(ctx, c.tracer, "backend.record_completed",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(otel.IdentityAttr(identity)))
	defer span.End()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.recordInterval

	start := time.Now()
	_, err := backoff.Retry(ctx,
		func() (struct{}, error) {
			err := c.postComplete(ctx, identity)
			var httpErr *httpclient.HTTPError
			if errors.As(err, &httpErr) && httpErr.IsClientError() && httpErr.StatusCode != http.StatusTooManyRequests {
				return struct{}{}, backoff.Permanent(err)
			}
			return struct{}{}, err
		},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(c.recordMaxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			slog.Warn("Recording milestone completion failed, retrying",
				"error", err,
				"retry_in", next)
		}),
	)
	c.metrics.RecordRequest(ctx, "record", time.Since(start), err == nil)
	span.SetAttributes(otel.AttrRecorded.Bool(err == nil))

	if err != nil {
		otel.RecordError(span, err)
		slog.Error("Failed to record milestone completion", "error", err)
		return false
	}
	return true
}

func (c *Client) postComplete(ctx context.Context, identity string) error {
	body, err := c.http.PostJSON(ctx, c.completeURL(), CompleteRequest{Identity: identity})
	if err != nil {
		return fmt.Errorf("failed to record completion: %w", err)
	}

	var resp CompleteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to parse completion response: %w", err)
	}
	if !resp.Success {
		return errBackendFailure
	}
	return nil
}
