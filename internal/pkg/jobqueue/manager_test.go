package jobqueue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSweeper struct {
	calls int32
	n     int
	err   error
}

func (s *countingSweeper) AutoReactivateExpiredSuspensions(context.Context) (int, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.n, s.err
}

func (s *countingSweeper) Calls() int {
	return int(atomic.LoadInt32(&s.calls))
}

func TestNewManager(t *testing.T) {
	queue := NewQueue(nil, 1)
	manager := NewManager(queue, nil, 0)

	assert.Same(t, queue, manager.GetQueue())
	assert.Equal(t, DefaultSweepInterval, manager.sweepInterval)
	assert.NotNil(t, manager.stopCh)
	assert.False(t, manager.IsRunning())
}

func TestManager_StopWithoutStart(t *testing.T) {
	manager := NewManager(nil, nil, time.Minute)

	assert.False(t, manager.IsRunning())
	manager.Stop()
	assert.False(t, manager.IsRunning())
}

func TestManager_RunSweepOnce(t *testing.T) {
	sweeper := &countingSweeper{n: 2}
	manager := NewManager(nil, sweeper, time.Minute)

	n, err := manager.RunSweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, sweeper.Calls())
}

func TestManager_RunSweepOnce_PropagatesError(t *testing.T) {
	sweeper := &countingSweeper{n: 1, err: errors.New("store unavailable")}
	manager := NewManager(nil, sweeper, time.Minute)

	n, err := manager.RunSweepOnce(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, n)
}

func TestManager_RunSweepOnce_NoSweeper(t *testing.T) {
	n, err := NewManager(nil, nil, time.Minute).RunSweepOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestManager_SweepsOnInterval(t *testing.T) {
	sweeper := &countingSweeper{}
	manager := NewManager(nil, sweeper, 10*time.Millisecond)

	manager.Start()
	manager.Start()
	assert.True(t, manager.IsRunning())

	assert.Eventually(t, func() bool { return sweeper.Calls() >= 2 }, time.Second, 5*time.Millisecond)

	manager.Stop()
	assert.False(t, manager.IsRunning())
	calls := sweeper.Calls()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, sweeper.Calls(), "no sweeps after stop")
}

func TestManager_Restart(t *testing.T) {
	sweeper := &countingSweeper{}
	manager := NewManager(nil, sweeper, 10*time.Millisecond)

	manager.Start()
	manager.Stop()
	before := sweeper.Calls()

	manager.Start()
	defer manager.Stop()
	assert.Eventually(t, func() bool { return sweeper.Calls() > before }, time.Second, 5*time.Millisecond)
}

func TestManager_StartsQueue(t *testing.T) {
	client := newIsolatedRedisClient(t, isolatedJobQueueTestRedisDB)
	queue := NewQueue(client, 1)
	manager := NewManager(queue, nil, time.Minute)

	manager.Start()
	assert.True(t, queue.running)
	manager.Stop()
	assert.False(t, queue.running)
}
