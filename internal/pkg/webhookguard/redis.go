package webhookguard

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces event ids in Redis.
const KeyPrefix = "webhook:processed:"

// RedisGuard stores processed event ids in Redis with a TTL so every instance
// of the service shares one view and restarts do not reopen the window.
type RedisGuard struct {
	client    *redis.Client
	retention time.Duration
}

// NewRedisGuard creates a Redis-backed guard.
func NewRedisGuard(client *redis.Client, retention time.Duration) *RedisGuard {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &RedisGuard{client: client, retention: retention}
}

func (g *RedisGuard) key(eventID string) string {
	return KeyPrefix + eventID
}

func (g *RedisGuard) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	n, err := g.client.Exists(ctx, g.key(eventID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (g *RedisGuard) MarkAsProcessed(ctx context.Context, eventID string) error {
	return g.client.Set(ctx, g.key(eventID), time.Now().UTC().Format(time.RFC3339), g.retention).Err()
}

func (g *RedisGuard) Claim(ctx context.Context, eventID string) (bool, error) {
	return g.client.SetNX(ctx, g.key(eventID), time.Now().UTC().Format(time.RFC3339), g.retention).Result()
}

func (g *RedisGuard) Release(ctx context.Context, eventID string) error {
	return g.client.Del(ctx, g.key(eventID)).Err()
}
