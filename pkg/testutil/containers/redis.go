//go:build integration

package containers

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"registro/internal/platform/redis"
)

// RedisContainer is a throwaway Redis reached through the platform client.
// Pool metrics go to Registry, which is private to the container.
type RedisContainer struct {
	Container testcontainers.Container
	URL       string
	Client    *redis.Client
	Registry  *prometheus.Registry
}

func NewRedisContainer(t *testing.T) *RedisContainer {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("start redis container: %v", err)
	}

	url, err := container.ConnectionString(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("redis connection string: %v", err)
	}

	reg := prometheus.NewRegistry()
	client, err := redis.New(ctx, redis.DefaultConfig(url), reg)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("connect redis: %v", err)
	}

	return &RedisContainer{Container: container, URL: url, Client: client, Registry: reg}
}

// FlushAll removes every key so tests do not observe each other's records.
func (r *RedisContainer) FlushAll(ctx context.Context) error {
	return r.Client.FlushAll(ctx).Err()
}
