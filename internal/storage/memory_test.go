package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)

	_, found, err := store.Get(ctx, KeyMoodEntries)
	require.NoError(t, err)
	assert.False(t, found, "missing key must not be found")

	require.NoError(t, store.Set(ctx, KeyMoodEntries, `[]`))
	value, found, err := store.Get(ctx, KeyMoodEntries)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[]`, value)

	require.NoError(t, store.Set(ctx, KeyMoodEntries, `[{"id":"1"}]`))
	value, _, _ = store.Get(ctx, KeyMoodEntries)
	assert.Equal(t, `[{"id":"1"}]`, value, "set must overwrite")
}

func TestMemoryStoreMultiRemove(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	require.NoError(t, store.Set(ctx, KeyMessages, "a"))
	require.NoError(t, store.Set(ctx, KeyUserSessions, "b"))
	require.NoError(t, store.Set(ctx, KeyAppPIN, "c"))

	require.NoError(t, store.MultiRemove(ctx, KeyMessages, KeyUserSessions, "never-set"))

	_, found, _ := store.Get(ctx, KeyMessages)
	assert.False(t, found)
	_, found, _ = store.Get(ctx, KeyUserSessions)
	assert.False(t, found)
	_, found, _ = store.Get(ctx, KeyAppPIN)
	assert.True(t, found, "untouched key must survive")
}

func TestMemoryStoreQuota(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(64)

	require.NoError(t, store.Set(ctx, "k", strings.Repeat("x", 40)))

	err := store.Set(ctx, "other", strings.Repeat("y", 40))
	require.ErrorIs(t, err, ErrQuotaExceeded)

	// Replacing an existing key only counts the new value.
	require.NoError(t, store.Set(ctx, "k", strings.Repeat("z", 60)))
	value, _, _ := store.Get(ctx, "k")
	assert.Len(t, value, 60)
}

func TestMemoryStoreCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewMemoryStore(0)
	assert.ErrorIs(t, store.Set(ctx, "k", "v"), context.Canceled)
	_, _, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}
