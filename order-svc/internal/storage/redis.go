package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisMarker records submitted order ids for TTL.
type RedisMarker struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisMarker(client *redis.Client, ttl time.Duration) *RedisMarker {
	return &RedisMarker{Client: client, TTL: ttl}
}

func (m *RedisMarker) OrderMarkerKey(id string) string {
	return "order:" + id
}

// Reserve sets the marker and reports false when it already existed.
func (m *RedisMarker) Reserve(ctx context.Context, id string) (bool, error) {
	return m.Client.SetNX(ctx, m.OrderMarkerKey(id), "1", m.TTL).Result()
}

func (m *RedisMarker) Release(ctx context.Context, id string) error {
	return m.Client.Del(ctx, m.OrderMarkerKey(id)).Err()
}
