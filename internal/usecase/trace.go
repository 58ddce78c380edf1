package usecase

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	usecaseTracer = otel.Tracer("dynasty-lineage/internal/usecase")
	noopSpan      = trace.SpanFromContext(context.Background())
)

// startUsecaseSpan only opens a child span. Scheduler and CLI calls carry
// no parent and stay untraced instead of producing orphan roots.
func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if !trace.SpanFromContext(ctx).SpanContext().IsValid() {
		return ctx, noopSpan
	}
	return usecaseTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func assetSpanAttrs(assetRef, leagueID string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("asset.ref", assetRef),
		attribute.String("league.id", leagueID),
	}
}
