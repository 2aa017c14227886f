package fault

import (
	"context"

	"github.com/go-chi/chi/v5/middleware"
)

type ctxInstanceIDKey struct{}

// WithInstanceID attaches the dashboard instance ID to ctx for fault context
func WithInstanceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxInstanceIDKey{}, id)
}

// InstanceIDFrom returns the dashboard instance ID in ctx, or ""
func InstanceIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxInstanceIDKey{}).(string)
	return id
}

// RequestIDFrom returns the request ID assigned by the router middleware, or ""
func RequestIDFrom(ctx context.Context) string {
	return middleware.GetReqID(ctx)
}
