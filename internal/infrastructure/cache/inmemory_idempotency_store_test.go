package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_Record(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Close()

	ctx := context.Background()

	t.Run("unknown key is not remembered", func(t *testing.T) {
		_, found, err := store.Remember(ctx, "key-1")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("recorded key returns the stored value", func(t *testing.T) {
		rowID := "6b5e6c9f-0000-0000-0000-000000000001"
		require.NoError(t, store.Record(ctx, "key-2", rowID, time.Hour))

		value, found, err := store.Remember(ctx, "key-2")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, rowID, value)
	})

	t.Run("expired key is forgotten", func(t *testing.T) {
		require.NoError(t, store.Record(ctx, "key-3", "value", 10*time.Millisecond))

		time.Sleep(20 * time.Millisecond)

		_, found, err := store.Remember(ctx, "key-3")
		require.NoError(t, err)
		assert.False(t, found, "expired key should not be remembered")
	})
}

func TestInMemoryIdempotencyStore_Cleanup(t *testing.T) {
	store := NewInMemoryIdempotencyStore(10 * time.Millisecond)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Record(ctx, "key", "value", 5*time.Millisecond))

	time.Sleep(40 * time.Millisecond)

	store.mu.RLock()
	_, exists := store.entries["key"]
	store.mu.RUnlock()
	assert.False(t, exists, "cleanup should remove expired entries")
}

func TestInMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}
