package httpapi

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var apiTracer = otel.Tracer("survivor-league/internal/interfaces/httpapi")

// Probes and scrapes never get a root span.
var untracedPaths = map[string]struct{}{
	"/healthz": {},
	"/health":  {},
	"/livez":   {},
	"/readyz":  {},
	"/metrics": {},
}

func shouldTraceRequest(path string) bool {
	_, skip := untracedPaths[strings.ToLower(strings.TrimSpace(path))]
	return !skip
}

// startSpan opens a child span for handler methods only. Middleware and
// helpers reuse the request span so traces stay one level deep.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	current := trace.SpanFromContext(ctx)
	if !current.SpanContext().IsValid() || !strings.HasPrefix(name, "httpapi.Handler.") {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return apiTracer.Start(ctx, name)
}

func traceMetaFromContext(ctx context.Context) (traceID, spanID string) {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if sc.IsValid() {
		traceID, spanID = sc.TraceID().String(), sc.SpanID().String()
	}
	return traceID, spanID
}
