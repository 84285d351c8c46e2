package render

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), mr
}

func TestCacheRendersOnMiss(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	calls := 0
	data, err := cache.GetOrRender(ctx, "pdf:invoice:1:100", func() ([]byte, error) {
		calls++
		return []byte("rendered"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("rendered"), data)
	assert.Equal(t, 1, calls)
	assert.True(t, mr.Exists("pdf:invoice:1:100"))
}

func TestCacheHitSkipsRender(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	_, err := cache.GetOrRender(ctx, "k", func() ([]byte, error) { return []byte("v1"), nil })
	require.NoError(t, err)

	data, err := cache.GetOrRender(ctx, "k", func() ([]byte, error) {
		t.Fatal("render should not run on cache hit")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), data)
}

func TestCacheRenderErrorNotCached(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	boom := errors.New("boom")
	_, err := cache.GetOrRender(ctx, "bad", func() ([]byte, error) { return nil, boom })
	require.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("bad"))

	// Next attempt retries the render.
	data, err := cache.GetOrRender(ctx, "bad", func() ([]byte, error) { return []byte("ok"), nil })
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), data)
}

func TestCacheKeyChangesOnUpdate(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	old, err := cache.GetOrRender(ctx, "pdf:invoice:1:100", func() ([]byte, error) { return []byte("old"), nil })
	require.NoError(t, err)

	// A bumped updated_at yields a different key and a fresh render.
	fresh, err := cache.GetOrRender(ctx, "pdf:invoice:1:200", func() ([]byte, error) { return []byte("new"), nil })
	require.NoError(t, err)

	assert.NotEqual(t, old, fresh)
}
