// Package requestcontext stores per-request values that services read without
// depending on net/http. Middleware sets them; tests inject them directly.
package requestcontext

import (
	"context"
	"time"
)

type key int

const (
	clientIPKey key = iota
	userAgentKey
	requestIDKey
	requestTimeKey
)

func stringValue(ctx context.Context, k key) string {
	v, _ := ctx.Value(k).(string)
	return v
}

// ClientIP is the resolved caller address, or "" outside an HTTP request.
func ClientIP(ctx context.Context) string {
	return stringValue(ctx, clientIPKey)
}

func UserAgent(ctx context.Context) string {
	return stringValue(ctx, userAgentKey)
}

func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey, clientIP)
	return context.WithValue(ctx, userAgentKey, userAgent)
}

// RequestID is the correlation ID echoed in X-Request-ID and attached to
// logs and published events.
func RequestID(ctx context.Context) string {
	return stringValue(ctx, requestIDKey)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// Now returns the instant pinned to the request, so the admission check, the
// count cache and the stored createdAt agree. Without one it is time.Now.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey).(time.Time); ok {
		return t
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey, t)
}
