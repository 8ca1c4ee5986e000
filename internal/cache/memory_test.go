package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "k", "v", time.Minute))

	val, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", val)
}

func TestMemoryStoreTTLExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return now })

	require.NoError(t, store.Set(ctx, AnalyticsKey("u1"), "payload", AnalyticsTTL))

	// Still inside the TTL.
	now = now.Add(AnalyticsTTL - time.Second)
	_, ok, err := store.Get(ctx, AnalyticsKey("u1"))
	require.NoError(t, err)
	assert.True(t, ok)

	// Past the TTL the entry is gone.
	now = now.Add(2 * time.Second)
	_, ok, err = store.Get(ctx, AnalyticsKey("u1"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreDel(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, store.Set(ctx, "b", "2", time.Minute))

	require.NoError(t, store.Del(ctx, "a", "b", "never-existed"))

	_, ok, _ := store.Get(ctx, "a")
	assert.False(t, ok)
	_, ok, _ = store.Get(ctx, "b")
	assert.False(t, ok)
}

func TestInvalidateOwnerDropsBothKeys(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, LeadListKey("u1"), "[]", LeadListTTL))
	require.NoError(t, store.Set(ctx, AnalyticsKey("u1"), "{}", AnalyticsTTL))
	require.NoError(t, store.Set(ctx, LeadListKey("u2"), "[]", LeadListTTL))

	InvalidateOwner(ctx, store, "u1")

	_, ok, _ := store.Get(ctx, LeadListKey("u1"))
	assert.False(t, ok)
	_, ok, _ = store.Get(ctx, AnalyticsKey("u1"))
	assert.False(t, ok)

	// Other owners are untouched.
	_, ok, _ = store.Get(ctx, LeadListKey("u2"))
	assert.True(t, ok)
}

func TestKeyFormats(t *testing.T) {
	assert.Equal(t, "leads:all:abc", LeadListKey("abc"))
	assert.Equal(t, "analytics:dashboard:abc", AnalyticsKey("abc"))
}
