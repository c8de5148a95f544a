package httpapi

import (
	"context"
	"fmt"

	"github.com/riskibarqy/survivor-league/internal/domain/user"
	"github.com/riskibarqy/survivor-league/internal/usecase"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type principalKey struct{}

// withPrincipal stores the authenticated caller and tags the active span with
// its user id.
func withPrincipal(ctx context.Context, p user.Principal) context.Context {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("enduser.id", p.UserID))
	return context.WithValue(ctx, principalKey{}, p)
}

func requirePrincipal(ctx context.Context) (user.Principal, error) {
	p, ok := ctx.Value(principalKey{}).(user.Principal)
	if !ok || p.UserID == "" {
		return user.Principal{}, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized)
	}
	return p, nil
}
