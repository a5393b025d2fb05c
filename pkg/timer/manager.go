package timer

import (
	"sync"
	"time"

	"github.com/lmrt-project/lmrt-go/pkg/engine"
)

// Timer describes a running timer.
type Timer struct {
	Token     engine.TimerToken
	StartTime time.Time
	Duration  time.Duration
}

// ExpiresAt returns when the timer will expire.
func (t *Timer) ExpiresAt() time.Time {
	return t.StartTime.Add(t.Duration)
}

// RemainingTime returns time until expiry.
func (t *Timer) RemainingTime() time.Duration {
	remaining := t.Duration - time.Since(t.StartTime)
	if remaining < 0 {
		return 0
	}
	return remaining
}

type entry struct {
	info  Timer
	gen   uint64
	timer *time.Timer
}

// Manager manages the engine timers, one per token.
type Manager struct {
	mu sync.Mutex

	timers map[engine.TimerToken]*entry
	gen    uint64

	onExpiry func(token engine.TimerToken)
}

// NewManager creates a timer manager with nothing running.
func NewManager() *Manager {
	return &Manager{
		timers: make(map[engine.TimerToken]*entry),
	}
}

// Start arms token to expire after delay, replacing a running timer for
// the same token.
func (m *Manager) Start(delay time.Duration, token engine.TimerToken) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.timers[token]; ok {
		existing.timer.Stop()
	}

	m.gen++
	gen := m.gen
	e := &entry{
		info: Timer{Token: token, StartTime: time.Now(), Duration: delay},
		gen:  gen,
	}
	e.timer = time.AfterFunc(delay, func() {
		m.expire(token, gen)
	})
	m.timers[token] = e
}

// Stop cancels token without triggering the expiry callback.
func (m *Manager) Stop(token engine.TimerToken) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.timers[token]; ok {
		e.timer.Stop()
		delete(m.timers, token)
	}
}

// StopAll cancels every running timer.
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for token, e := range m.timers {
		e.timer.Stop()
		delete(m.timers, token)
	}
}

// Get returns a copy of the running timer for token, or nil.
func (m *Manager) Get(token engine.TimerToken) *Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.timers[token]; ok {
		info := e.info
		return &info
	}
	return nil
}

// Count returns the number of running timers.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

// OnExpiry sets the callback for timer expiry.
func (m *Manager) OnExpiry(fn func(token engine.TimerToken)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpiry = fn
}

func (m *Manager) expire(token engine.TimerToken, gen uint64) {
	m.mu.Lock()

	e, ok := m.timers[token]
	if !ok || e.gen != gen {
		m.mu.Unlock()
		return
	}
	delete(m.timers, token)
	callback := m.onExpiry

	m.mu.Unlock()

	// Call callback outside lock
	if callback != nil {
		callback(token)
	}
}

var _ engine.Timer = (*Manager)(nil)
