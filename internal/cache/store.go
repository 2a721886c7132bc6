// Package cache provides the expiring key-value store behind viewing
// sessions and their issuance counters. Two implementations exist: a Redis
// client for deployments that share state across processes, and an
// in-process map for single-instance and test use. Both enforce per-key
// TTLs so abandoned sessions disappear without a reaper.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned when a key is absent or has expired.
var ErrKeyNotFound = errors.New("cache: key not found")

// Store is the contract both cache backends satisfy.
type Store interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A positive ttl bounds its lifetime; a
	// zero ttl stores it without expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Increment adds one to the integer counter under key and returns the
	// new value. A counter created by this call gets the ttl; an existing
	// counter keeps its original deadline so fixed windows do not slide.
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
