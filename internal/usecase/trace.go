package usecase

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var usecaseTracer = otel.Tracer("survivor-league/internal/usecase")

// startUsecaseSpan only opens a child span when the caller is already traced;
// sweeps started without a parent stay untraced.
func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if name == "" || !parent.SpanContext().IsValid() {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return usecaseTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func seasonAttr(seasonID string) attribute.KeyValue {
	return attribute.String("survivor.season_id", seasonID)
}

func gameweekAttr(number int) attribute.KeyValue {
	return attribute.Int("survivor.gameweek", number)
}
