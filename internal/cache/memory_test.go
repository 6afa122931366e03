package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// entry stands in for a stored credential without importing the identity
// package.
type entry struct {
	Value string
}

func TestMemory_GetMissing(t *testing.T) {
	store, err := NewMemory[entry](time.Minute, 10)
	require.NoError(t, err)

	value, found, err := store.Get(context.Background(), "absent")

	assert.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, entry{}, value)
}

func TestMemory_SetThenGet(t *testing.T) {
	ctx := context.Background()
	store, err := NewMemory[entry](time.Minute, 10)
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, "scope", entry{Value: "first"}))
	require.NoError(t, store.Set(ctx, "scope", entry{Value: "second"}))

	value, found, err := store.Get(ctx, "scope")

	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, entry{Value: "second"}, value)
}

func TestMemory_Invalidate(t *testing.T) {
	ctx := context.Background()
	store, err := NewMemory[entry](time.Minute, 10)
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, "scope", entry{Value: "v"}))
	require.NoError(t, store.Invalidate(ctx, "scope"))
	require.NoError(t, store.Invalidate(ctx, "never-set"))

	_, found, err := store.Get(ctx, "scope")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestMemory_RetentionExpiry(t *testing.T) {
	ctx := context.Background()
	store, err := NewMemory[entry](100*time.Millisecond, 10)
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, "scope", entry{Value: "v"}))

	_, found, _ := store.Get(ctx, "scope")
	assert.True(t, found)

	time.Sleep(150 * time.Millisecond)

	_, found, _ = store.Get(ctx, "scope")
	assert.False(t, found)
}

func TestMemory_Stats(t *testing.T) {
	ctx := context.Background()
	store, err := NewMemory[entry](time.Minute, 10)
	require.NoError(t, err)

	_, _, _ = store.Get(ctx, "scope")
	require.NoError(t, store.Set(ctx, "scope", entry{Value: "v"}))
	_, _, _ = store.Get(ctx, "scope")
	_, _, _ = store.Get(ctx, "scope")

	assert.Equal(t, Stats{Hits: 2, Misses: 1}, store.Stats())
}
