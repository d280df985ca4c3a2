package obs

import "context"

type routePatternKey struct{}

// WithRoutePattern stores the matched chi route pattern in the context.
func WithRoutePattern(ctx context.Context, pattern string) context.Context {
	return context.WithValue(ctx, routePatternKey{}, pattern)
}

// RoutePatternFromContext returns the matched route pattern, if any.
func RoutePatternFromContext(ctx context.Context) string {
	if pattern, ok := ctx.Value(routePatternKey{}).(string); ok {
		return pattern
	}
	return ""
}
