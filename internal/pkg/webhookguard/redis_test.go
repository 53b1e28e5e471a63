package webhookguard

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/StoreFox/internal/pkg/env"
)

const isolatedGuardTestRedisDB = 13

func newIsolatedRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	hosts := []string{env.GetEnv("CACHE_HOST", "localhost"), "cache", "127.0.0.1"}
	port := env.GetEnv("CACHE_PORT", "6379")

	var lastErr error
	for _, host := range hosts {
		client := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", host, port),
			Password: env.GetEnv("CACHE_PASSWORD", ""),
			DB:       isolatedGuardTestRedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		_, err := client.Ping(ctx).Result()
		cancel()
		if err != nil {
			lastErr = err
			_ = client.Close()
			continue
		}

		require.NoError(t, client.FlushDB(context.Background()).Err())
		t.Cleanup(func() {
			_ = client.FlushDB(context.Background()).Err()
			_ = client.Close()
		})
		return client
	}

	t.Skipf("Skipping Redis-dependent test: no reachable Redis endpoint (%v)", lastErr)
	return nil
}

func TestRedisGuard_MarkAndCheck(t *testing.T) {
	client := newIsolatedRedisClient(t)
	g := NewRedisGuard(client, time.Hour)
	ctx := context.Background()
	id := EventID("stripe", "evt_123")

	seen, err := g.IsProcessed(ctx, id)
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, g.MarkAsProcessed(ctx, id))
	seen, err = g.IsProcessed(ctx, id)
	require.NoError(t, err)
	assert.True(t, seen)

	ttl, err := client.TTL(ctx, KeyPrefix+id).Result()
	require.NoError(t, err)
	assert.True(t, ttl > 59*time.Minute && ttl <= time.Hour, "unexpected ttl %s", ttl)

	seen, _ = g.IsProcessed(ctx, EventID("paypal", "evt_123"))
	assert.False(t, seen)
}

func TestRedisGuard_ClaimAndExpiry(t *testing.T) {
	client := newIsolatedRedisClient(t)
	g := NewRedisGuard(client, time.Second)
	ctx := context.Background()

	first, err := g.Claim(ctx, "stripe_evt_1")
	require.NoError(t, err)
	assert.True(t, first)

	second, err := g.Claim(ctx, "stripe_evt_1")
	require.NoError(t, err)
	assert.False(t, second)

	assert.Eventually(t, func() bool {
		seen, err := g.IsProcessed(ctx, "stripe_evt_1")
		return err == nil && !seen
	}, 3*time.Second, 100*time.Millisecond)
}

func TestRedisGuard_Release(t *testing.T) {
	client := newIsolatedRedisClient(t)
	g := NewRedisGuard(client, time.Hour)
	ctx := context.Background()

	claimed, err := g.Claim(ctx, "mollie_tr_1")
	require.NoError(t, err)
	require.True(t, claimed)

	require.NoError(t, g.Release(ctx, "mollie_tr_1"))
	claimed, err = g.Claim(ctx, "mollie_tr_1")
	require.NoError(t, err)
	assert.True(t, claimed)
}
