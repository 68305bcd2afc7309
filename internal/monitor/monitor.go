// Package monitor runs named recurring jobs, one goroutine per job. Starting
// a key that is already running is a no-op, so campaign monitors can be
// (re)registered freely without doubling up pollers.
package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dropforge/airdrop-engine/internal/adapter"
	"github.com/dropforge/airdrop-engine/internal/logger"
)

// JobFunc is one tick of a monitor job. Errors are logged, not fatal.
type JobFunc func(ctx context.Context) error

// Manager owns a set of named recurring jobs
type Manager struct {
	clock adapter.Clock

	mu   sync.Mutex
	jobs map[string]context.CancelFunc
	wg   sync.WaitGroup
}

// NewManager creates a monitor manager
func NewManager(clock adapter.Clock) *Manager {
	return &Manager{
		clock: clock,
		jobs:  make(map[string]context.CancelFunc),
	}
}

// Start begins running fn every interval under the given key. It returns
// true when a new job was started and false when the key was already
// running.
func (m *Manager) Start(ctx context.Context, key string, interval time.Duration, fn JobFunc) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, running := m.jobs[key]; running {
		return false
	}

	jobCtx, cancel := context.WithCancel(ctx)
	m.jobs[key] = cancel
	m.wg.Add(1)

	go m.run(jobCtx, key, interval, fn)

	logger.InfoCtx(ctx, "monitor started",
		zap.String("key", key),
		zap.Duration("interval", interval))
	return true
}

func (m *Manager) run(ctx context.Context, key string, interval time.Duration, fn JobFunc) {
	defer m.wg.Done()

	ticker := m.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if err := fn(ctx); err != nil {
				logger.WarnCtx(ctx, "monitor tick failed",
					zap.String("key", key),
					zap.Error(err))
			}
		}
	}
}

// Stop cancels the job under the given key. It returns false when no such
// job is running.
func (m *Manager) Stop(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	cancel, running := m.jobs[key]
	if !running {
		return false
	}
	cancel()
	delete(m.jobs, key)

	logger.Info("monitor stopped", zap.String("key", key))
	return true
}

// Running reports whether a job is active under the given key
func (m *Manager) Running(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, running := m.jobs[key]
	return running
}

// StopAll cancels every job and waits for their goroutines to exit
func (m *Manager) StopAll() {
	m.mu.Lock()
	for key, cancel := range m.jobs {
		cancel()
		delete(m.jobs, key)
	}
	m.mu.Unlock()

	m.wg.Wait()
}
