package webhookguard

import (
	"context"
	"strings"
	"time"

	"github.com/ManuelReschke/StoreFox/internal/pkg/cache"
	"github.com/ManuelReschke/StoreFox/internal/pkg/env"
	"github.com/gofiber/fiber/v2/log"
)

const (
	// DefaultRetention is how long a processed event id is remembered.
	DefaultRetention = time.Hour
	// DefaultSweepInterval is how often expired ids are purged from memory.
	DefaultSweepInterval = time.Hour

	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Guard gives at-most-once handling to webhook deliveries. Callers check and
// mark an event before doing any state-changing work for it.
type Guard interface {
	// IsProcessed reports whether the id was marked within the retention window.
	IsProcessed(ctx context.Context, eventID string) (bool, error)
	// MarkAsProcessed records the id now, refreshing an existing entry.
	MarkAsProcessed(ctx context.Context, eventID string) error
	// Claim atomically marks the id and reports whether this caller was first.
	Claim(ctx context.Context, eventID string) (bool, error)
	// Release forgets the id so a later delivery is processed again.
	Release(ctx context.Context, eventID string) error
}

// EventID qualifies a provider's event id so ids from different providers never collide.
func EventID(provider, providerEventID string) string {
	return strings.ToLower(strings.TrimSpace(provider)) + "_" + strings.TrimSpace(providerEventID)
}

// NewFromEnv builds the guard selected by WEBHOOK_DEDUP_BACKEND. The in-memory
// guard is started and must be stopped by the caller.
func NewFromEnv() Guard {
	switch strings.ToLower(env.GetEnv("WEBHOOK_DEDUP_BACKEND", BackendMemory)) {
	case BackendRedis:
		log.Info("[WebhookGuard] Using Redis backend")
		return NewRedisGuard(cache.GetClient(), DefaultRetention)
	default:
		log.Info("[WebhookGuard] Using in-memory backend")
		g := NewMemoryGuard(DefaultRetention, DefaultSweepInterval)
		g.Start()
		return g
	}
}
