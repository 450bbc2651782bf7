package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stwalsh4118/estatedesk/internal/config"
)

type cachedCaller struct {
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id"`
	Role           string `json:"role"`
}

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

func TestJSONCache_SetGet(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := NewJSONCache(client, "caller:", time.Minute)
	ctx := context.Background()

	want := cachedCaller{UserID: "u1", OrganizationID: "org-1", Role: "developer"}
	require.NoError(t, c.Set(ctx, "u1", want))

	assert.True(t, mr.Exists("caller:u1"))
	assert.Equal(t, time.Minute, mr.TTL("caller:u1"))

	var got cachedCaller
	found, err := c.Get(ctx, "u1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)
}

func TestJSONCache_Miss(t *testing.T) {
	client, _ := setupTestRedis(t)
	c := NewJSONCache(client, "caller:", time.Minute)

	var got cachedCaller
	found, err := c.Get(context.Background(), "nobody", &got)

	require.NoError(t, err)
	assert.False(t, found)
}

func TestJSONCache_Expiry(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := NewJSONCache(client, "caller:", time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "u1", cachedCaller{UserID: "u1"}))
	mr.FastForward(2 * time.Minute)

	var got cachedCaller
	found, err := c.Get(ctx, "u1", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestJSONCache_CorruptValueIsMiss(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := NewJSONCache(client, "caller:", time.Minute)
	require.NoError(t, mr.Set("caller:u1", "{not json"))

	var got cachedCaller
	found, err := c.Get(context.Background(), "u1", &got)

	require.NoError(t, err)
	assert.False(t, found)
	assert.False(t, mr.Exists("caller:u1"))
}

func TestJSONCache_Delete(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := NewJSONCache(client, "caller:", 0)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "u1", cachedCaller{UserID: "u1"}))
	require.NoError(t, c.Delete(ctx, "u1"))
	require.NoError(t, c.Delete(ctx, "never-set"))

	assert.False(t, mr.Exists("caller:u1"))
}

func TestJSONCache_ReadErrorWhenRedisDown(t *testing.T) {
	client, mr := setupTestRedis(t)
	c := NewJSONCache(client, "caller:", time.Minute)
	mr.Close()

	var got cachedCaller
	_, err := c.Get(context.Background(), "u1", &got)

	assert.Error(t, err)
	assert.Error(t, c.Ping(context.Background()))
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisClient(context.Background(), config.RedisConfig{Addr: addr})

	assert.Error(t, err)
}
