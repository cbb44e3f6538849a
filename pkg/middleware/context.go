package middleware

import (
	"context"
	"time"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// Context keys for storing values in request context.
const (
	// StartTimeKey stores the request start time for latency calculation.
	StartTimeKey contextKey = "start_time"

	// CookiesKey stores the parsed request cookies.
	CookiesKey contextKey = "cookies"

	// SessionKey stores the request session.
	SessionKey contextKey = "session"

	// JSONBodyKey stores the decoded JSON request body.
	JSONBodyKey contextKey = "json_body"

	// routeInfoKey stores the mutable per-request route label.
	routeInfoKey contextKey = "route_info"
)

// GetStartTime extracts the request start time from the context.
// Returns zero time if not found.
func GetStartTime(ctx context.Context) time.Time {
	if startTime, ok := ctx.Value(StartTimeKey).(time.Time); ok {
		return startTime
	}
	return time.Time{}
}

// routeInfo is filled in by the route table once a route matches so the
// access log and metrics can label the request by pattern, not raw path.
type routeInfo struct {
	pattern string
}

// SetRoutePattern records the matched route pattern for the current request.
// It is a no-op when the request did not pass through Logging.
func SetRoutePattern(ctx context.Context, pattern string) {
	if info, ok := ctx.Value(routeInfoKey).(*routeInfo); ok {
		info.pattern = pattern
	}
}

// GetRoutePattern returns the matched route pattern, or "" when none matched.
func GetRoutePattern(ctx context.Context) string {
	if info, ok := ctx.Value(routeInfoKey).(*routeInfo); ok {
		return info.pattern
	}
	return ""
}
