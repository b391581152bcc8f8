package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xyz-asif/mangrovewatch/internal/pkg/clock"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewManual(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	c := NewMemory(clk)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, c.Set(ctx, "forever", []byte("f"), 0))

	v, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	clk.Advance(time.Minute)
	_, ok, _ = c.Get(ctx, "k")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "forever")
	assert.True(t, ok)

	require.NoError(t, c.Delete(ctx, "forever", "absent"))
	_, ok, _ = c.Get(ctx, "forever")
	assert.False(t, ok)
}

func TestMemory_ValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(nil)

	value := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", value, 0))
	value[0] = 'X'

	got, _, _ := c.Get(ctx, "k")
	assert.Equal(t, "abc", string(got))
}

func TestMemory_Incr(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(nil)

	n, err := c.Incr(ctx, "gen")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = c.Incr(ctx, "gen")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	raw, ok, err := c.Get(ctx, "gen")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2", string(raw))

	require.NoError(t, c.Set(ctx, "word", []byte("abc"), 0))
	_, err = c.Incr(ctx, "word")
	require.Error(t, err)
}

func TestConnect_RejectsBadURL(t *testing.T) {
	_, err := Connect(context.Background(), "http://not-redis")
	require.Error(t, err)
}

func TestRedis_DeleteNothingIsNoop(t *testing.T) {
	c := NewRedis(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), "mw:")
	require.NoError(t, c.Delete(context.Background()))
}
