package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type entry struct {
	count   int
	resetAt time.Time
}

// Memory is a process-local fixed-window limiter.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*entry
	max     int
	window  time.Duration
	now     func() time.Time
}

// NewMemory creates a limiter accepting limit requests per key per window.
func NewMemory(limit int, window time.Duration) *Memory {
	return &Memory{
		entries: make(map[string]*entry),
		max:     limit,
		window:  window,
		now:     time.Now,
	}
}

// WithClock replaces the time source. Intended for tests.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

func (m *Memory) Allow(_ context.Context, key string) (Decision, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.entries[key]
	if !ok || !now.Before(w.resetAt) {
		w = &entry{resetAt: now.Add(m.window)}
		m.entries[key] = w
	}

	if w.count >= m.max {
		return Decision{Allowed: false, Remaining: 0, ResetAt: w.resetAt}, nil
	}

	w.count++
	return Decision{Allowed: true, Remaining: m.max - w.count, ResetAt: w.resetAt}, nil
}

// Sweep drops keys whose window has ended and returns how many were removed.
func (m *Memory) Sweep() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, w := range m.entries {
		if !now.Before(w.resetAt) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Run sweeps every interval until ctx is cancelled.
func (m *Memory) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				slog.Debug("rate limit sweep", "removed", n)
			}
		}
	}
}
