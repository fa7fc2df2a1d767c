package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore(t *testing.T) (*InMemoryIdempotencyStore, *clock) {
	t.Helper()
	c := &clock{now: time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)}
	store := NewInMemoryIdempotencyStore(time.Hour)
	store.now = c.Now
	t.Cleanup(func() { _ = store.Close() })
	return store, c
}

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	ctx := context.Background()

	t.Run("first mark wins", func(t *testing.T) {
		store, _ := newTestStore(t)

		fresh, err := store.MarkProcessed(ctx, "pay-1", time.Hour)
		require.NoError(t, err)
		assert.True(t, fresh)

		fresh, err = store.MarkProcessed(ctx, "pay-1", time.Hour)
		require.NoError(t, err)
		assert.False(t, fresh)
	})

	t.Run("key is accepted again after ttl", func(t *testing.T) {
		store, c := newTestStore(t)

		_, err := store.MarkProcessed(ctx, "pay-2", time.Minute)
		require.NoError(t, err)
		c.Advance(time.Minute)

		fresh, err := store.MarkProcessed(ctx, "pay-2", time.Minute)
		require.NoError(t, err)
		assert.True(t, fresh)
	})
}

func TestInMemoryIdempotencyStore_IsProcessed(t *testing.T) {
	ctx := context.Background()
	store, c := newTestStore(t)

	processed, err := store.IsProcessed(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, processed)

	_, err = store.MarkProcessed(ctx, "evt", 10*time.Second)
	require.NoError(t, err)
	processed, err = store.IsProcessed(ctx, "evt")
	require.NoError(t, err)
	assert.True(t, processed)

	c.Advance(11 * time.Second)
	processed, err = store.IsProcessed(ctx, "evt")
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestInMemoryIdempotencyStore_Release(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	_, err := store.MarkProcessed(ctx, "pay-3", time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, "pay-3"))

	fresh, err := store.MarkProcessed(ctx, "pay-3", time.Hour)
	require.NoError(t, err)
	assert.True(t, fresh, "released key can be claimed again")

	assert.NoError(t, store.Release(ctx, "never-marked"))
}

func TestInMemoryIdempotencyStore_Sweep(t *testing.T) {
	ctx := context.Background()
	store, c := newTestStore(t)

	_, _ = store.MarkProcessed(ctx, "short-1", time.Second)
	_, _ = store.MarkProcessed(ctx, "short-2", time.Second)
	_, _ = store.MarkProcessed(ctx, "long", time.Hour)
	assert.Equal(t, 3, store.Size())

	c.Advance(2 * time.Second)
	store.sweep()

	assert.Equal(t, 1, store.Size())
	processed, err := store.IsProcessed(ctx, "long")
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestInMemoryIdempotencyStore_ConcurrentMark(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	const workers = 100
	var wg sync.WaitGroup
	results := make(chan bool, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fresh, err := store.MarkProcessed(ctx, "same-key", time.Hour)
			results <- err == nil && fresh
		}()
	}
	wg.Wait()
	close(results)

	winners := 0
	for fresh := range results {
		if fresh {
			winners++
		}
	}
	assert.Equal(t, 1, winners)
}

func TestInMemoryIdempotencyStore_Close(t *testing.T) {
	store := NewInMemoryIdempotencyStore(0)
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
