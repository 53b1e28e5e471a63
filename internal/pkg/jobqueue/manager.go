package jobqueue

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

// DefaultSweepInterval is how often lapsed suspensions are written back.
const DefaultSweepInterval = 15 * time.Minute

// ExpiredSuspensionSweeper reactivates accounts whose suspension has lapsed.
type ExpiredSuspensionSweeper interface {
	AutoReactivateExpiredSuspensions(ctx context.Context) (int, error)
}

// Manager runs the job queue together with the periodic background tasks.
type Manager struct {
	queue         *Queue
	sweeper       ExpiredSuspensionSweeper
	sweepInterval time.Duration
	sweepTicker   *time.Ticker
	stopCh        chan struct{}
	wg            sync.WaitGroup
	mu            sync.Mutex
	running       bool
}

// NewManager wires a queue and a sweeper. sweeper may be nil when no
// periodic reactivation is wanted.
func NewManager(queue *Queue, sweeper ExpiredSuspensionSweeper, sweepInterval time.Duration) *Manager {
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}
	return &Manager{
		queue:         queue,
		sweeper:       sweeper,
		sweepInterval: sweepInterval,
		stopCh:        make(chan struct{}),
	}
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// Start starts the job queue and background tasks
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// A fresh channel per cycle so the manager can be restarted.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue and background tasks")

	if m.queue != nil {
		m.queue.Start()
	}

	if m.sweeper != nil {
		m.sweepTicker = time.NewTicker(m.sweepInterval)
		m.wg.Add(1)
		go m.sweepWorker(m.stopCh, m.sweepTicker.C)
	}

	log.Info("[JobQueue Manager] Started successfully")
}

// Stop stops the job queue and background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping job queue and background tasks...")

	if m.sweepTicker != nil {
		m.sweepTicker.Stop()
	}

	close(m.stopCh)
	m.running = false
	m.wg.Wait()

	if m.queue != nil {
		m.queue.Stop()
	}

	log.Info("[JobQueue Manager] Stopped successfully")
}

func (m *Manager) sweepWorker(stopCh <-chan struct{}, tick <-chan time.Time) {
	defer m.wg.Done()
	log.Infof("[JobQueue Manager] Started suspension sweep worker (interval: %s)", m.sweepInterval)

	for {
		select {
		case <-stopCh:
			log.Info("[JobQueue Manager] Suspension sweep worker stopping")
			return
		case <-tick:
			if _, err := m.RunSweepOnce(context.Background()); err != nil {
				log.Errorf("[JobQueue Manager] Suspension sweep error: %v", err)
			}
		}
	}
}

// RunSweepOnce performs a single reactivation sweep (admin use).
func (m *Manager) RunSweepOnce(ctx context.Context) (int, error) {
	if m.sweeper == nil {
		return 0, nil
	}
	n, err := m.sweeper.AutoReactivateExpiredSuspensions(ctx)
	if n > 0 {
		log.Infof("[JobQueue Manager] Reactivated %d customers with lapsed suspensions", n)
	}
	return n, err
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}
