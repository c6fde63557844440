// Package ratelimit throttles HTTP clients with per-IP token buckets and
// reports bucket state through standard X-RateLimit response headers.
package ratelimit

import "time"

// Limiter hands out per-key admission decisions. Implementations must be
// safe for concurrent use.
type Limiter interface {
	// Allow reports whether one request under key may proceed, along with
	// the bucket state the middleware turns into response headers.
	Allow(key string) (allowed bool, info Info)

	// Close stops any background work the limiter runs.
	Close()
}

// Info is the bucket state behind the X-RateLimit response headers.
type Info struct {
	Limit      int           // sustained requests per minute
	Remaining  int           // whole tokens left in the bucket
	ResetAt    time.Time     // when the bucket is full again
	RetryAfter time.Duration // wait before retrying; set only on denial
}
