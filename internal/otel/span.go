// Package otel provides span helpers shared by the tracker and the backend client.
package otel

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys used on milestone spans
const (
	AttrIdentityHash = attribute.Key("milestone.identity_hash")
	AttrCheckSource  = attribute.Key("milestone.check.source")
	AttrCheckOutcome = attribute.Key("milestone.check.outcome")
	AttrAssetCode    = attribute.Key("milestone.asset_code")
	AttrRecorded     = attribute.Key("milestone.recorded")
	AttrBreakerState = attribute.Key("backend.breaker_state")
)

// IdentityAttr identifies an identity on a span without exporting it
func IdentityAttr(identity string) attribute.KeyValue {
	sum := sha256.Sum256([]byte(identity))
	return AttrIdentityHash.String(hex.EncodeToString(sum[:8]))
}

// StartSpan starts a new span if the tracer is non-nil, otherwise returns a no-op span
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError records err on span and marks the span failed. The status description is
// generic; backend URLs and response bodies only appear in the exception event.
func RecordError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "operation failed")
	}
}
