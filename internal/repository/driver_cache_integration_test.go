//go:build integration

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftlogistics/driver-service/internal/repository"
	"github.com/swiftlogistics/driver-service/pkg/testutil/containers"
)

func TestRedisDriverCache(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	rc := containers.NewRedisContainer(t)
	cache := repository.NewRedisDriverCache(rc.Client, time.Minute)
	ctx := context.Background()

	_, err := cache.GetDriverID(ctx, "jane@x.com")
	require.ErrorIs(t, err, repository.ErrCacheMiss)

	require.NoError(t, cache.SetDriverID(ctx, "jane@x.com", "DRV0000000A"))

	driverID, err := cache.GetDriverID(ctx, "jane@x.com")
	require.NoError(t, err)
	assert.Equal(t, "DRV0000000A", driverID)

	ttl := rc.Client.TTL(ctx, "driver:email:jane@x.com").Val()
	assert.Greater(t, ttl, time.Duration(0))

	keys, err := rc.Client.Keys(ctx, "*").Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"driver:email:jane@x.com"}, keys, "only the email mapping is cached")
}
