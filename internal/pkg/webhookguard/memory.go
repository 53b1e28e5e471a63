package webhookguard

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

// MemoryGuard keeps processed event ids in process memory. Entries are lost on
// restart and are not shared between instances; use RedisGuard when running
// more than one process.
type MemoryGuard struct {
	mu        sync.Mutex
	entries   map[string]time.Time
	retention time.Duration
	interval  time.Duration
	now       func() time.Time

	stopCh  chan struct{}
	wg      sync.WaitGroup
	running bool
}

// NewMemoryGuard creates an in-memory guard. Non-positive durations fall back to the defaults.
func NewMemoryGuard(retention, sweepInterval time.Duration) *MemoryGuard {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}
	return &MemoryGuard{
		entries:   make(map[string]time.Time),
		retention: retention,
		interval:  sweepInterval,
		now:       time.Now,
	}
}

// SetClock replaces the time source.
func (g *MemoryGuard) SetClock(now func() time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = now
}

func (g *MemoryGuard) expired(seenAt, now time.Time) bool {
	return !now.Before(seenAt.Add(g.retention))
}

// IsProcessed evicts the entry when it is older than the retention window.
func (g *MemoryGuard) IsProcessed(_ context.Context, eventID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	seenAt, ok := g.entries[eventID]
	if !ok {
		return false, nil
	}
	if g.expired(seenAt, g.now()) {
		delete(g.entries, eventID)
		return false, nil
	}
	return true, nil
}

func (g *MemoryGuard) MarkAsProcessed(_ context.Context, eventID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.entries[eventID] = g.now()
	return nil
}

func (g *MemoryGuard) Claim(_ context.Context, eventID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if seenAt, ok := g.entries[eventID]; ok && !g.expired(seenAt, now) {
		return false, nil
	}
	g.entries[eventID] = now
	return true, nil
}

func (g *MemoryGuard) Release(_ context.Context, eventID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.entries, eventID)
	return nil
}

// Sweep removes all expired entries and returns how many were removed.
func (g *MemoryGuard) Sweep() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	removed := 0
	for id, seenAt := range g.entries {
		if g.expired(seenAt, now) {
			delete(g.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked ids, expired or not.
func (g *MemoryGuard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries)
}

// Start launches the periodic sweep.
func (g *MemoryGuard) Start() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.running {
		return
	}
	g.running = true
	g.stopCh = make(chan struct{})

	g.wg.Add(1)
	go g.sweeper(g.stopCh)
}

// Stop ends the periodic sweep and waits for it to exit.
func (g *MemoryGuard) Stop() {
	g.mu.Lock()
	if !g.running {
		g.mu.Unlock()
		return
	}
	g.running = false
	close(g.stopCh)
	g.mu.Unlock()

	g.wg.Wait()
}

func (g *MemoryGuard) sweeper(stopCh <-chan struct{}) {
	defer g.wg.Done()
	log.Infof("[WebhookGuard] Sweeper running (retention=%s, interval=%s)", g.retention, g.interval)

	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			log.Info("[WebhookGuard] Sweeper stopping")
			return
		case <-ticker.C:
			if removed := g.Sweep(); removed > 0 {
				log.Debugf("[WebhookGuard] Evicted %d expired event ids", removed)
			}
		}
	}
}
