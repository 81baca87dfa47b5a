package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopstack/backend/internal/domain/shared"
)

func TestInMemoryCache_GetMissReturnsNil(t *testing.T) {
	c := NewInMemoryCache()
	defer c.Close()

	value, err := c.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestInMemoryCache_SetThenGet(t *testing.T) {
	c := NewInMemoryCache()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "inventory:warehouse:w1", []byte(`[]`), time.Minute, shared.CacheTagInventory))

	value, err := c.Get(ctx, "inventory:warehouse:w1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), value)
}

func TestInMemoryCache_ExpiredEntryIsAMiss(t *testing.T) {
	c := NewInMemoryCache()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	value, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestInMemoryCache_RemoveByTagDropsAllMembers(t *testing.T) {
	c := NewInMemoryCache()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "inventory:warehouse:w1", []byte("a"), time.Minute, shared.CacheTagInventory))
	require.NoError(t, c.Set(ctx, "inventory:product:p1", []byte("b"), time.Minute, shared.CacheTagInventory))
	require.NoError(t, c.Set(ctx, "warehouse:list:1::", []byte("c"), time.Minute, shared.CacheTagWarehouse))

	require.NoError(t, c.RemoveByTag(ctx, shared.CacheTagInventory))

	for _, key := range []string{"inventory:warehouse:w1", "inventory:product:p1"} {
		value, err := c.Get(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, value, "key %s should have been invalidated", key)
	}

	// Entries under other tags survive.
	value, err := c.Get(ctx, "warehouse:list:1::")
	require.NoError(t, err)
	assert.Equal(t, []byte("c"), value)
}

func TestInMemoryCache_RemoveUnknownTagIsNoop(t *testing.T) {
	c := NewInMemoryCache()
	defer c.Close()

	assert.NoError(t, c.RemoveByTag(context.Background(), "never-used"))
}

func TestInMemoryCache_CallerCannotMutateStoredValue(t *testing.T) {
	c := NewInMemoryCache()
	defer c.Close()
	ctx := context.Background()

	original := []byte("original")
	require.NoError(t, c.Set(ctx, "k", original, time.Minute))
	original[0] = 'X'

	first, err := c.Get(ctx, "k")
	require.NoError(t, err)
	first[0] = 'Y'

	second, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), second)
}
