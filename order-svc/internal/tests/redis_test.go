package tests

import (
	"context"
	"testing"
	"time"

	"kebab-orders/order-svc/internal/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisMarker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	marker := storage.NewRedisMarker(client, time.Hour)
	ctx := context.Background()

	reserved, err := marker.Reserve(ctx, "ORD-1")
	require.NoError(t, err)
	assert.True(t, reserved)
	assert.True(t, mr.Exists("order:ORD-1"))
	assert.Equal(t, time.Hour, mr.TTL("order:ORD-1"))

	reserved, err = marker.Reserve(ctx, "ORD-1")
	require.NoError(t, err)
	assert.False(t, reserved)

	require.NoError(t, marker.Release(ctx, "ORD-1"))
	assert.False(t, mr.Exists("order:ORD-1"))

	reserved, err = marker.Reserve(ctx, "ORD-1")
	require.NoError(t, err)
	assert.True(t, reserved)

	mr.FastForward(2 * time.Hour)
	assert.False(t, mr.Exists("order:ORD-1"))
}
