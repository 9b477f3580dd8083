package service

import (
	"sync"
	"time"
)

// RateGate lets a keyed condition fire at most once per interval.
// Two fires of the same key are always separated by more than interval.
type RateGate struct {
	interval time.Duration

	mu   sync.Mutex
	last map[string]time.Time
}

// NewRateGate creates a gate with the given minimum spacing
func NewRateGate(interval time.Duration) *RateGate {
	return &RateGate{
		interval: interval,
		last:     make(map[string]time.Time),
	}
}

// Allow reports whether key may fire at now, and records the fire if so
func (g *RateGate) Allow(key string, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if last, ok := g.last[key]; ok && now.Sub(last) <= g.interval {
		return false
	}
	g.last[key] = now
	return true
}

// Interval returns the configured spacing
func (g *RateGate) Interval() time.Duration {
	return g.interval
}
