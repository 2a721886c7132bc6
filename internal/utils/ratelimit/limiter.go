// Package ratelimit provides token bucket rate limiting for abuse-prone
// endpoints such as the contact form and gallery uploads. Session issuance
// uses its own fixed-window counter in the cache layer; this package covers
// the per-process, per-client case where no shared state is needed.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a token bucket for a single client identity. Tokens refill at a
// fixed rate and each allowed request consumes one.
type Limiter struct {
	// tokens is the current number of tokens in the bucket
	tokens float64

	// lastTime is the last time tokens were added to the bucket
	lastTime time.Time

	// lastAccess is the last time the limiter was consulted, used by the
	// store to evict idle limiters
	lastAccess time.Time

	// rate is the token refill rate (tokens per second)
	rate float64

	// capacity is the maximum number of tokens the bucket can hold
	capacity float64

	// mu protects concurrent access to the bucket
	mu sync.Mutex
}

// Rate controls how many requests per second are allowed.
type Rate struct {
	// RequestsPerSecond defines how many tokens are added per second
	RequestsPerSecond float64

	// Burst defines the maximum size of the token bucket
	Burst int
}

// NewLimiter creates a rate limiter that starts with a full bucket of the
// given burst capacity and refills at the given per-second rate.
func NewLimiter(rate float64, burst int) *Limiter {
	now := time.Now()
	return &Limiter{
		tokens:     float64(burst),
		lastTime:   now,
		lastAccess: now,
		rate:       rate,
		capacity:   float64(burst),
	}
}

// Allow reports whether a request should proceed, consuming a token when it
// does. It returns false once the bucket is empty.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Refill based on elapsed time since the last check.
	now := time.Now()
	elapsed := now.Sub(l.lastTime).Seconds()
	l.lastTime = now
	l.lastAccess = now

	l.tokens += elapsed * l.rate
	if l.tokens > l.capacity {
		l.tokens = l.capacity
	}

	if l.tokens < 1 {
		return false
	}

	l.tokens--
	return true
}

// ResetTokens refills the bucket to capacity. Used by tests and
// administrative resets.
func (l *Limiter) ResetTokens() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tokens = l.capacity
	l.lastTime = time.Now()
}

// idleSince reports how long ago the limiter was last consulted.
func (l *Limiter) idleSince(now time.Time) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return now.Sub(l.lastAccess)
}
