package schemacache

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T, ttl time.Duration) (*RedisCache, *mr.Miniredis) {
	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	return NewRedisCache(client, "test:schema:", ttl), m
}

func TestRedisCache_SetGet(t *testing.T) {
	c, _ := newCache(t, time.Minute)
	ctx := context.Background()
	key := Key("c1", "t1", time.Unix(0, 42), "default")
	assert.Equal(t, "c1:t1:42:default", key)

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, key, []byte(`{"type":"object"}`)))
	b, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"type":"object"}`, string(b))
}

func TestRedisCache_TTLExpiry(t *testing.T) {
	c, m := newCache(t, time.Second)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", []byte("v")))

	// advance miniredis clock past TTL
	m.FastForward(2 * time.Second)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_Invalidate(t *testing.T) {
	c, m := newCache(t, 0)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, Key("c1", "t1", time.Unix(1, 0), "default"), []byte("a")))
	require.NoError(t, c.Set(ctx, Key("c1", "t1", time.Unix(2, 0), "legacy"), []byte("b")))
	require.NoError(t, c.Set(ctx, Key("c1", "t2", time.Unix(1, 0), "default"), []byte("c")))

	require.NoError(t, c.Invalidate(ctx, "c1", "t1"))
	assert.Len(t, m.Keys(), 1)
	assert.True(t, m.Exists("test:schema:"+Key("c1", "t2", time.Unix(1, 0), "default")))
	require.NoError(t, c.Invalidate(ctx, "c9", "none"))
}

func TestRedisCache_GetErrorWhenServerDown(t *testing.T) {
	c, m := newCache(t, 0)
	m.Close()
	_, ok, err := c.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.False(t, ok)
}
