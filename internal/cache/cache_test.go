package cache_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpons/itinerary-api/internal/cache"
)

// newTestStore opens a Store on a fresh temp file and closes it when the
// test finishes.
func newTestStore(t *testing.T) *cache.Store {
	t.Helper()
	s := cache.Open(filepath.Join(t.TempDir(), "cache.db"), cache.Options{})
	require.True(t, s.Enabled(), "store on a fresh temp file must open")
	t.Cleanup(func() { _ = s.Close() })
	return s
}

type payload struct {
	Name string `json:"name"`
	N    int    `json:"n"`
}

func TestStore_SetGet_Roundtrip(t *testing.T) {
	s := newTestStore(t)

	in := payload{Name: "Valldemossa", N: 3}
	require.True(t, s.Set("k", in, cache.DefaultTTL))

	var out payload
	require.True(t, s.Get("k", &out))
	assert.Equal(t, in, out)
}

func TestStore_Get_Miss(t *testing.T) {
	s := newTestStore(t)

	var out payload
	assert.False(t, s.Get("nope", &out))
	assert.True(t, s.IsExpired("nope"), "an absent key reports expired")
}

func TestStore_Set_ZeroTTLIsAlreadyExpired(t *testing.T) {
	s := newTestStore(t)

	require.True(t, s.Set("k", payload{Name: "x"}, 0))

	var out payload
	assert.False(t, s.Get("k", &out), "ttl <= 0 must never produce a fresh read")
	assert.True(t, s.IsExpired("k"))
}

func TestStore_Get_ExpiredIsMissButRetained(t *testing.T) {
	s := newTestStore(t)

	require.True(t, s.Set("k", payload{Name: "x"}, -time.Minute))

	var out payload
	require.False(t, s.Get("k", &out))

	// The row survives the miss so a degraded-mode stale read can still use it.
	_, ok := s.Info("k")
	assert.True(t, ok, "expired entry must remain until cleanup")
	assert.True(t, s.GetStale("k", &out))
}

func TestStore_GetStale_ServesExpired(t *testing.T) {
	s := newTestStore(t)

	in := payload{Name: "stale but usable"}
	require.True(t, s.Set("k", in, -time.Minute))

	var out payload
	require.True(t, s.GetStale("k", &out), "stale read must ignore expiry")
	assert.Equal(t, in, out)
	assert.True(t, s.IsExpired("k"))
}

func TestStore_Remove(t *testing.T) {
	s := newTestStore(t)

	require.True(t, s.Set("k", payload{}, cache.DefaultTTL))
	s.Remove("k")

	var out payload
	assert.False(t, s.Get("k", &out))

	// Removing again is a no-op, not an error.
	s.Remove("k")
}

func TestStore_Clear_ScopedToNamespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	// Two namespaces on the same file. bbolt allows one open handle at a
	// time, so open them sequentially.
	a := cache.Open(path, cache.Options{Namespace: "ns_a"})
	require.True(t, a.Enabled())
	require.True(t, a.Set("k", payload{Name: "a"}, cache.DefaultTTL))
	require.NoError(t, a.Close())

	b := cache.Open(path, cache.Options{Namespace: "ns_b"})
	require.True(t, b.Enabled())
	require.True(t, b.Set("k", payload{Name: "b"}, cache.DefaultTTL))
	b.Clear()
	require.NoError(t, b.Close())

	a = cache.Open(path, cache.Options{Namespace: "ns_a"})
	defer a.Close()
	var out payload
	assert.True(t, a.Get("k", &out), "Clear on ns_b must not touch ns_a")
	assert.Equal(t, "a", out.Name)

	b = cache.Open(path, cache.Options{Namespace: "ns_b"})
	t.Cleanup(func() { _ = b.Close() })
	assert.False(t, b.Get("k", &out))
}

func TestStore_Info(t *testing.T) {
	s := newTestStore(t)

	before := time.Now()
	require.True(t, s.Set("k", payload{}, cache.DefaultTTL))

	info, ok := s.Info("k")
	require.True(t, ok)
	assert.WithinDuration(t, before, info.Timestamp, 2*time.Second)
	assert.WithinDuration(t, before.Add(cache.DefaultTTL), info.ExpiresAt, 2*time.Second)
	assert.GreaterOrEqual(t, info.Age, time.Duration(0))
}

func TestStore_CleanupExpired(t *testing.T) {
	s := newTestStore(t)

	require.True(t, s.Set("fresh", payload{}, cache.DefaultTTL))
	require.True(t, s.Set("old1", payload{}, -time.Minute))
	require.True(t, s.Set("old2", payload{}, 0))

	assert.Equal(t, 2, s.CleanupExpired())

	var out payload
	assert.True(t, s.Get("fresh", &out), "fresh entries survive cleanup")
	_, ok := s.Info("old1")
	assert.False(t, ok)
}

func TestStore_Disabled_NoOps(t *testing.T) {
	// A directory path cannot be opened as a bbolt file, so the store comes
	// back disabled.
	s := cache.Open(t.TempDir(), cache.Options{})
	t.Cleanup(func() { _ = s.Close() })

	assert.False(t, s.Enabled())
	assert.False(t, s.Set("k", payload{}, cache.DefaultTTL))

	var out payload
	assert.False(t, s.Get("k", &out))
	assert.False(t, s.GetStale("k", &out))
	assert.True(t, s.IsExpired("k"))
	assert.Zero(t, s.CleanupExpired())
	s.Remove("k")
	s.Clear()
	_, ok := s.Info("k")
	assert.False(t, ok)
	assert.NoError(t, s.Close())
}
