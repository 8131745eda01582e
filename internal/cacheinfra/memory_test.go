package cacheinfra

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemory(t *testing.T, cfg MemoryConfig) *Memory {
	t.Helper()
	m, err := NewMemory(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestNewMemory_ValidatesConfig(t *testing.T) {
	_, err := NewMemory(MemoryConfig{Capacity: 0})
	require.Error(t, err)

	_, err = NewMemory(MemoryConfig{Capacity: 100, MaxTTL: -time.Second})
	require.Error(t, err)
}

func TestMemory_PutGet(t *testing.T) {
	m := newTestMemory(t, DefaultMemoryConfig())
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, "k", "v", time.Minute))

	found, val, remaining, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "v", val)
	assert.Greater(t, remaining, time.Duration(0))
	assert.LessOrEqual(t, remaining, time.Minute)
}

func TestMemory_GetMiss(t *testing.T) {
	m := newTestMemory(t, DefaultMemoryConfig())

	found, val, _, err := m.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, val)
}

func TestMemory_MaxTTLCapsEntries(t *testing.T) {
	m := newTestMemory(t, MemoryConfig{Capacity: 100, MaxTTL: time.Second})
	ctx := context.Background()

	// A promotion carrying a long remaining TTL must not outlive the local cap.
	require.NoError(t, m.Put(ctx, "k", "v", time.Hour))

	found, _, remaining, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.LessOrEqual(t, remaining, time.Second)
}

func TestMemory_Evict(t *testing.T) {
	m := newTestMemory(t, DefaultMemoryConfig())
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, "k", "v", time.Minute))
	require.NoError(t, m.Evict(ctx, "k"))

	found, _, _, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemory_EvictPattern(t *testing.T) {
	m := newTestMemory(t, DefaultMemoryConfig())
	ctx := context.Background()

	keys := []string{
		"product:get_by_id:1",
		"product:list:all",
		"product:count",
		"order:list:all",
	}
	for _, k := range keys {
		require.NoError(t, m.Put(ctx, k, k, time.Minute))
	}

	require.NoError(t, m.EvictPattern(ctx, "product:*"))

	for _, k := range keys[:3] {
		found, _, _, err := m.Get(ctx, k)
		require.NoError(t, err)
		assert.False(t, found, "key %s should be evicted", k)
	}
	found, _, _, err := m.Get(ctx, "order:list:all")
	require.NoError(t, err)
	assert.True(t, found, "unrelated namespace must survive")
}

func TestMemory_Exists(t *testing.T) {
	m := newTestMemory(t, DefaultMemoryConfig())
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, "k", "v", time.Minute))

	found, err := m.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = m.Exists(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemory_Clear(t *testing.T) {
	m := newTestMemory(t, DefaultMemoryConfig())
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, "a", 1, time.Minute))
	require.NoError(t, m.Put(ctx, "b", 2, time.Minute))
	require.NoError(t, m.Clear(ctx))

	for _, k := range []string{"a", "b"} {
		found, _, _, err := m.Get(ctx, k)
		require.NoError(t, err)
		assert.False(t, found)
	}
	// Pattern eviction after clear has nothing stale in the key index.
	require.NoError(t, m.EvictPattern(ctx, "*"))
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	m := newTestMemory(t, DefaultMemoryConfig())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("worker:%d", n)
			for j := 0; j < 50; j++ {
				if err := m.Put(ctx, key, j, time.Minute); err != nil {
					t.Errorf("put: %v", err)
					return
				}
				found, val, _, err := m.Get(ctx, key)
				if err != nil || !found || val != j {
					t.Errorf("get %s = %v, %v, %v (want %d)", key, found, val, err, j)
					return
				}
			}
			if err := m.EvictPattern(ctx, key+"*"); err != nil {
				t.Errorf("evict pattern: %v", err)
			}
		}(i)
	}
	wg.Wait()
}

func TestMemory_Expiry(t *testing.T) {
	m := newTestMemory(t, DefaultMemoryConfig())
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, "k", "v", 50*time.Millisecond))
	time.Sleep(120 * time.Millisecond)

	found, _, _, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found, "entry should have expired")
}
