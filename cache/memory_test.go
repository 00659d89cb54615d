package cache

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

func TestMemoryTTLExpiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := NewMemory(clock)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", "v", 10*time.Second))
	val, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v", val)

	clock.Advance(10 * time.Second)
	_, ok, err = m.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryZeroTTLNeverExpires(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := NewMemory(clock)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", "v", 0))
	clock.Advance(24 * time.Hour)
	_, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestMemorySetNX(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := NewMemory(clock)
	ctx := context.Background()

	wrote, err := m.SetNX(ctx, "k", "a", 5*time.Second)
	require.NoError(t, err)
	require.True(t, wrote)

	wrote, err = m.SetNX(ctx, "k", "b", 5*time.Second)
	require.NoError(t, err)
	require.False(t, wrote, "present key blocks the write")

	// Expiry frees the key for the next SetNX.
	clock.Advance(5 * time.Second)
	wrote, err = m.SetNX(ctx, "k", "c", 0)
	require.NoError(t, err)
	require.True(t, wrote)
}

func TestGetInt64Roundtrip(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := NewMemory(clock)
	ctx := context.Background()

	require.NoError(t, SetInt64(ctx, m, "n", 42, 0))
	n, ok, err := GetInt64(ctx, m, "n")
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 42, n)

	require.NoError(t, m.Set(ctx, "bad", "not-a-number", 0))
	_, ok, err = GetInt64(ctx, m, "bad")
	require.NoError(t, err)
	require.False(t, ok)
}
