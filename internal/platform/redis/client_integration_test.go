//go:build integration

package redis

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestClientAgainstRedis(t *testing.T) {
	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	client, err := New(ctx, DefaultConfig(url), reg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Health(ctx))

	require.NoError(t, client.Set(ctx, "k", "v", 0).Err())
	require.NoError(t, client.Get(ctx, "k").Err())
	client.RecordPoolStats()

	assert.GreaterOrEqual(t, testutil.ToFloat64(client.metrics.totalConns), 1.0)

	n, err := testutil.GatherAndCount(reg, "registro_redis_pool_total_conns")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
