// Package ratelimit provides a minimum-interval gate keyed by name, so
// throttling one kind of emission never delays another.
package ratelimit

import (
	"sync"
	"time"
)

type IntervalGate struct {
	mu       sync.Mutex
	interval time.Duration
	last     map[string]time.Time
}

func NewIntervalGate(interval time.Duration) *IntervalGate {
	return &IntervalGate{
		interval: interval,
		last:     make(map[string]time.Time),
	}
}

// Allow reports whether an emission under the given key may fire at now,
// recording the emission time if allowed.
func (g *IntervalGate) Allow(key string, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	last, ok := g.last[key]
	if ok && now.Sub(last) < g.interval {
		return false
	}

	g.last[key] = now

	return true
}

// Mark records an emission at now without gating it, so later Allow calls
// count their interval from it.
func (g *IntervalGate) Mark(key string, now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.last[key] = now
}

// Reset forgets the last emission time for the given key.
func (g *IntervalGate) Reset(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.last, key)
}
