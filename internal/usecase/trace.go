package usecase

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer   = otel.Tracer("matchsync/internal/usecase")
	noopSpan = trace.SpanFromContext(context.Background())
)

// startUsecaseSpan opens a child span only when the caller already carries a
// sampled trace, so CLI runs without tracing stay span free.
func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if name == "" || !trace.SpanFromContext(ctx).SpanContext().IsValid() {
		return ctx, noopSpan
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func seasonAttr(seasonID int64) attribute.KeyValue {
	return attribute.Int64("matchsync.season_id", seasonID)
}

func matchAttr(matchID int64) attribute.KeyValue {
	return attribute.Int64("matchsync.match_id", matchID)
}
