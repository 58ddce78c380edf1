package httpapi

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	apiTracer = otel.Tracer("dynasty-lineage/internal/interfaces/httpapi")
	noopSpan  = trace.SpanFromContext(context.Background())
)

// startSpan opens a handler span under the otelhttp request span. Filtered
// routes such as /healthz have no parent and stay untraced.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if !trace.SpanFromContext(ctx).SpanContext().IsValid() {
		return ctx, noopSpan
	}
	return apiTracer.Start(ctx, name)
}

// recordSpanError marks the current span failed for server side errors only;
// client mistakes are recorded as events.
func recordSpanError(ctx context.Context, status int, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	if status >= 500 {
		span.SetStatus(codes.Error, err.Error())
	}
}

// spanRoute collapses league ids and asset refs so request span names stay
// low-cardinality.
func spanRoute(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) > 3 && parts[1] == "v1" && parts[2] == "leagues" {
		parts[3] = "{leagueID}"
		if len(parts) > 5 && parts[4] == "assets" {
			parts[5] = "{assetRef}"
		}
	}
	return strings.Join(parts, "/")
}
