package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore(t *testing.T) {
	t.Run("Store initialized with default rate", func(t *testing.T) {
		// Arrange
		defaultRate := Rate{RequestsPerSecond: 5, Burst: 10}

		// Act
		store := NewStore(defaultRate, time.Hour)

		// Assert
		require.NotNil(t, store)
		assert.Equal(t, defaultRate, store.rates[CategoryDefault])
		assert.Empty(t, store.limiters)
	})
}

func TestGetLimiter(t *testing.T) {
	t.Run("Creates a limiter on first sight", func(t *testing.T) {
		// Arrange
		store := NewStore(Rate{RequestsPerSecond: 5, Burst: 10}, time.Hour)

		// Act
		limiter := store.GetLimiter("192.0.2.1", CategoryDefault)

		// Assert
		require.NotNil(t, limiter)
		assert.Equal(t, float64(5), limiter.rate)
		assert.Equal(t, float64(10), limiter.capacity)
	})

	t.Run("Returns the same limiter for repeated lookups", func(t *testing.T) {
		// Arrange
		store := NewStore(Rate{RequestsPerSecond: 5, Burst: 10}, time.Hour)

		// Act
		first := store.GetLimiter("192.0.2.1", CategoryDefault)
		second := store.GetLimiter("192.0.2.1", CategoryDefault)

		// Assert
		assert.Same(t, first, second)
	})

	t.Run("Distinct clients get distinct limiters", func(t *testing.T) {
		// Arrange
		store := NewStore(Rate{RequestsPerSecond: 5, Burst: 10}, time.Hour)

		// Act
		a := store.GetLimiter("192.0.2.1", CategoryDefault)
		b := store.GetLimiter("192.0.2.2", CategoryDefault)

		// Assert
		assert.NotSame(t, a, b)
	})

	t.Run("Same client in different categories gets distinct limiters", func(t *testing.T) {
		// Arrange
		store := NewStore(Rate{RequestsPerSecond: 5, Burst: 10}, time.Hour)
		store.SetRate(CategoryContact, Rate{RequestsPerSecond: 1, Burst: 2})

		// Act
		browse := store.GetLimiter("192.0.2.1", CategoryDefault)
		contact := store.GetLimiter("192.0.2.1", CategoryContact)

		// Assert
		assert.NotSame(t, browse, contact)
		assert.Equal(t, float64(2), contact.capacity)
	})

	t.Run("Unknown category falls back to default rate", func(t *testing.T) {
		// Arrange
		store := NewStore(Rate{RequestsPerSecond: 5, Burst: 10}, time.Hour)

		// Act
		limiter := store.GetLimiter("192.0.2.1", "nonexistent")

		// Assert
		assert.Equal(t, float64(5), limiter.rate)
		assert.Equal(t, float64(10), limiter.capacity)
	})

	t.Run("Concurrent lookups for one client create one limiter", func(t *testing.T) {
		// Arrange
		store := NewStore(Rate{RequestsPerSecond: 5, Burst: 10}, time.Hour)
		var wg sync.WaitGroup
		results := make([]*Limiter, 20)

		// Act
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				results[idx] = store.GetLimiter("192.0.2.1", CategoryDefault)
			}(i)
		}
		wg.Wait()

		// Assert
		for _, limiter := range results {
			assert.Same(t, results[0], limiter)
		}
		assert.Len(t, store.limiters, 1)
	})
}

func TestSetRate(t *testing.T) {
	t.Run("New category rate applies to new limiters only", func(t *testing.T) {
		// Arrange
		store := NewStore(Rate{RequestsPerSecond: 5, Burst: 10}, time.Hour)
		existing := store.GetLimiter("192.0.2.1", CategoryUpload)

		// Act
		store.SetRate(CategoryUpload, Rate{RequestsPerSecond: 1, Burst: 1})
		fresh := store.GetLimiter("192.0.2.2", CategoryUpload)

		// Assert
		assert.Equal(t, float64(5), existing.rate)
		assert.Equal(t, float64(1), fresh.rate)
	})
}

func TestCleanup(t *testing.T) {
	t.Run("Evicts idle limiters and keeps active ones", func(t *testing.T) {
		// Arrange
		store := NewStore(Rate{RequestsPerSecond: 5, Burst: 10}, time.Hour)
		idle := store.GetLimiter("192.0.2.1", CategoryDefault)
		active := store.GetLimiter("192.0.2.2", CategoryDefault)

		idle.mu.Lock()
		idle.lastAccess = time.Now().Add(-maxIdle - time.Minute)
		idle.mu.Unlock()
		active.Allow()

		// Act
		store.cleanup()

		// Assert
		store.mu.RLock()
		defer store.mu.RUnlock()
		assert.Len(t, store.limiters, 1)
		_, exists := store.limiters[CategoryDefault+"|192.0.2.2"]
		assert.True(t, exists)
	})

	t.Run("Handles a large population without error", func(t *testing.T) {
		// Arrange
		store := NewStore(Rate{RequestsPerSecond: 5, Burst: 10}, time.Hour)
		for i := 0; i < 500; i++ {
			store.GetLimiter(fmt.Sprintf("10.0.0.%d", i), CategoryDefault)
		}

		// Act
		store.cleanup()

		// Assert: nothing idle yet, so everything survives
		store.mu.RLock()
		defer store.mu.RUnlock()
		assert.Len(t, store.limiters, 500)
	})
}
