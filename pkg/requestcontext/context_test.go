package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNowFallsBackToWallClock(t *testing.T) {
	before := time.Now()
	got := Now(context.Background())
	after := time.Now()

	assert.False(t, got.Before(before))
	assert.False(t, got.After(after))
}

func TestWithTime(t *testing.T) {
	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	second := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	ctx := WithTime(context.Background(), first)
	assert.Equal(t, first, Now(ctx))

	ctx = WithTime(ctx, second)
	assert.Equal(t, second, Now(ctx), "inner value wins")
}

func TestStringValues(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestID(ctx))
	assert.Empty(t, ClientIP(ctx))
	assert.Empty(t, UserAgent(ctx))

	ctx = WithRequestID(ctx, "req-42")
	ctx = WithClientMetadata(ctx, "203.0.113.7", "curl/8.5.0")

	assert.Equal(t, "req-42", RequestID(ctx))
	assert.Equal(t, "203.0.113.7", ClientIP(ctx))
	assert.Equal(t, "curl/8.5.0", UserAgent(ctx))
}
