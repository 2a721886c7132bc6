package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	store := NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestMemoryStoreGetSet(t *testing.T) {
	ctx := context.Background()

	t.Run("Round trip", func(t *testing.T) {
		// Arrange
		store := newTestStore(t)

		// Act
		require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
		got, err := store.Get(ctx, "k")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), got)
	})

	t.Run("Missing key", func(t *testing.T) {
		store := newTestStore(t)
		_, err := store.Get(ctx, "absent")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("Expired key behaves as missing", func(t *testing.T) {
		// Arrange
		store := newTestStore(t)
		require.NoError(t, store.Set(ctx, "k", []byte("v"), 10*time.Millisecond))

		// Act
		time.Sleep(30 * time.Millisecond)
		_, err := store.Get(ctx, "k")

		// Assert
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("Zero ttl never expires", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Set(ctx, "k", []byte("v"), 0))
		time.Sleep(20 * time.Millisecond)
		_, err := store.Get(ctx, "k")
		assert.NoError(t, err)
	})

	t.Run("Overwrite replaces value and deadline", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Set(ctx, "k", []byte("old"), 10*time.Millisecond))
		require.NoError(t, store.Set(ctx, "k", []byte("new"), time.Minute))

		time.Sleep(30 * time.Millisecond)
		got, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("new"), got)
	})

	t.Run("Caller cannot mutate stored value", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Set(ctx, "k", []byte("abc"), time.Minute))

		got, err := store.Get(ctx, "k")
		require.NoError(t, err)
		got[0] = 'X'

		again, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), again)
	})
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("Delete removes the key", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
		require.NoError(t, store.Delete(ctx, "k"))
		_, err := store.Get(ctx, "k")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("Deleting an absent key is not an error", func(t *testing.T) {
		store := newTestStore(t)
		assert.NoError(t, store.Delete(ctx, "absent"))
	})
}

func TestMemoryStoreIncrement(t *testing.T) {
	ctx := context.Background()

	t.Run("Counts from one", func(t *testing.T) {
		// Arrange
		store := newTestStore(t)

		// Act & Assert
		for want := int64(1); want <= 3; want++ {
			got, err := store.Increment(ctx, "counter", time.Minute)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	})

	t.Run("Window is fixed, not sliding", func(t *testing.T) {
		// Arrange: first increment sets the deadline
		store := newTestStore(t)
		_, err := store.Increment(ctx, "counter", 50*time.Millisecond)
		require.NoError(t, err)

		// Act: later increments must not push the deadline out
		time.Sleep(30 * time.Millisecond)
		_, err = store.Increment(ctx, "counter", 50*time.Millisecond)
		require.NoError(t, err)
		time.Sleep(30 * time.Millisecond)

		// Assert: the original 50ms window has passed, counter restarts
		got, err := store.Increment(ctx, "counter", 50*time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got)
	})

	t.Run("Expired counter restarts at one", func(t *testing.T) {
		store := newTestStore(t)
		_, err := store.Increment(ctx, "counter", 10*time.Millisecond)
		require.NoError(t, err)

		time.Sleep(30 * time.Millisecond)
		got, err := store.Increment(ctx, "counter", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got)
	})

	t.Run("Concurrent increments all land", func(t *testing.T) {
		// Arrange
		store := newTestStore(t)
		var wg sync.WaitGroup

		// Act
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.Increment(ctx, "counter", time.Minute)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		// Assert
		got, err := store.Increment(ctx, "counter", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(51), got)
	})
}

func TestMemoryStoreLifecycle(t *testing.T) {
	t.Run("Ping always succeeds", func(t *testing.T) {
		store := newTestStore(t)
		assert.NoError(t, store.Ping(context.Background()))
	})

	t.Run("Close is idempotent", func(t *testing.T) {
		store := NewMemoryStore()
		assert.NoError(t, store.Close())
		assert.NoError(t, store.Close())
	})
}
