package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"
)

// MemoryLimiter is a per-process token bucket. A rule of Limit per Window refills at
// Limit/Window tokens per second with a burst of Limit.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	identity string
	tokens   float64
	last     time.Time
}

func NewMemoryLimiter(now func() time.Time) *MemoryLimiter {
	if now == nil {
		now = time.Now
	}
	return &MemoryLimiter{
		buckets: make(map[string]*bucket),
		now:     now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, route, identity string, rule Rule) (Decision, error) {
	if l == nil || !rule.Enabled() {
		return Decision{Allowed: true}, nil
	}
	rate := float64(rule.Limit) / rule.Window.Seconds()
	now := l.now()
	key := Key(route, identity)

	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{identity: identity, tokens: float64(rule.Limit), last: now}
		l.buckets[key] = b
	}
	elapsed := now.Sub(b.last).Seconds()
	if elapsed > 0 {
		b.tokens = math.Min(float64(rule.Limit), b.tokens+elapsed*rate)
		b.last = now
	}
	if b.tokens >= 1 {
		b.tokens--
		return Decision{Allowed: true}, nil
	}
	waitSec := (1 - b.tokens) / rate
	retryAfter := time.Duration(math.Ceil(waitSec*1000.0)) * time.Millisecond
	return Decision{Allowed: false, RetryAfter: retryAfter}, nil
}

func (l *MemoryLimiter) Reset(_ context.Context, identity string, keep ...string) error {
	if l == nil {
		return nil
	}
	kept := make(map[string]bool, len(keep))
	for _, route := range keep {
		kept[Key(route, identity)] = true
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if b.identity == identity && !kept[key] {
			delete(l.buckets, key)
		}
	}
	return nil
}
