package ratelimit

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// bucket pairs a token bucket with the last time its key was seen, which is
// what the sweeper uses to decide staleness.
type bucket struct {
	tb      *rate.Limiter
	touched time.Time
}

// MemoryLimiter keeps one token bucket per key, all in process memory. A
// background goroutine sweeps out buckets whose key has been quiet for two
// sweep intervals, so one-off clients do not accumulate forever.
type MemoryLimiter struct {
	refill     rate.Limit
	burst      int
	perMinute  int
	sweepEvery time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket

	stop      chan struct{}
	closeOnce sync.Once
}

// NewMemoryLimiter builds a limiter that admits requestsPerMinute sustained
// requests per key with the given burst headroom, and starts the sweeper.
func NewMemoryLimiter(requestsPerMinute int, burst int, cleanupInterval time.Duration) *MemoryLimiter {
	// Config validation permits zero values; a zero rate would divide by zero
	// below, a zero burst would deny every request, and a zero interval would
	// panic in time.NewTicker.
	if requestsPerMinute < 1 {
		requestsPerMinute = 1
	}
	if burst < 1 {
		burst = 1
	}
	if cleanupInterval <= 0 {
		cleanupInterval = 5 * time.Minute
	}

	m := &MemoryLimiter{
		refill:     rate.Every(time.Minute / time.Duration(requestsPerMinute)),
		burst:      burst,
		perMinute:  requestsPerMinute,
		sweepEvery: cleanupInterval,
		buckets:    make(map[string]*bucket),
		stop:       make(chan struct{}),
	}
	go m.janitor()
	return m
}

// Allow consumes a token from the key's bucket if one is available and
// reports the bucket state either way.
func (m *MemoryLimiter) Allow(key string) (bool, Info) {
	tb := m.bucketFor(key)
	allowed := tb.Allow()

	info := m.snapshot(tb)
	if !allowed {
		// Delay on a cancelled reservation tells us when the next token lands
		// without actually consuming it.
		r := tb.Reserve()
		info.RetryAfter = r.Delay()
		r.Cancel()
	}
	return allowed, info
}

// bucketFor returns the key's bucket, creating it on first sight, and marks
// the key as recently seen.
func (m *MemoryLimiter) bucketFor(key string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.buckets[key]
	if !ok {
		b = &bucket{tb: rate.NewLimiter(m.refill, m.burst)}
		m.buckets[key] = b
	}
	b.touched = time.Now()
	return b.tb
}

// snapshot derives the header-facing view of a bucket: remaining tokens,
// rounded down, and the time at which the bucket refills completely.
func (m *MemoryLimiter) snapshot(tb *rate.Limiter) Info {
	now := time.Now()
	tokens := tb.TokensAt(now)

	resetAt := now
	if deficit := float64(m.burst) - tokens; deficit > 0 {
		resetAt = now.Add(time.Duration(deficit / float64(m.refill) * float64(time.Second)))
	}

	return Info{
		Limit:     m.perMinute,
		Remaining: int(math.Max(0, math.Floor(tokens))),
		ResetAt:   resetAt,
	}
}

// Close stops the sweeper. Safe to call more than once.
func (m *MemoryLimiter) Close() {
	m.closeOnce.Do(func() { close(m.stop) })
}

func (m *MemoryLimiter) janitor() {
	ticker := time.NewTicker(m.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.sweep(time.Now().Add(-2 * m.sweepEvery))
		case <-m.stop:
			return
		}
	}
}

// sweep drops every bucket whose key has not been seen since the cutoff.
func (m *MemoryLimiter) sweep(cutoff time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, b := range m.buckets {
		if b.touched.Before(cutoff) {
			delete(m.buckets, key)
		}
	}
}
