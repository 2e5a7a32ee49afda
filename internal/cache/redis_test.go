package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/classifieds-backend/internal/config"
	"github.com/magabrotheeeer/classifieds-backend/internal/models"
)

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	t.Cleanup(func() { mr.Close() })

	cfg := config.RedisConnection{
		AddressRedis: mr.Addr(),
		Password:     "",
		DB:           0,
		User:         "",
	}

	cache, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	return cache, mr
}

func TestSetAndGet(t *testing.T) {
	cache, _ := setupTestCache(t)

	expected := models.Plan{ID: "instant_79", Name: "Мгновенный", Price: 79, DurationDays: 3, ContactLimit: 50}
	err := cache.Set("plan:instant_79", expected, time.Hour)
	require.NoError(t, err)

	var actual models.Plan
	found, err := cache.Get("plan:instant_79", &actual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected, actual)
}

func TestGetNotFound(t *testing.T) {
	cache, _ := setupTestCache(t)

	var out models.Plan
	found, err := cache.Get("no_such_key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	cache, _ := setupTestCache(t)

	err := cache.Set("key", "value", time.Minute)
	require.NoError(t, err)

	err = cache.Invalidate("key")
	require.NoError(t, err)

	var out string
	found, err := cache.Get("key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetInvalidJSON(t *testing.T) {
	cache, _ := setupTestCache(t)

	err := cache.Db.Set(context.Background(), "bad", []byte("not-json"), time.Minute).Err()
	require.NoError(t, err)

	var out models.Plan
	found, err := cache.Get("bad", &out)
	assert.False(t, found)
	assert.Error(t, err)
}

func TestHit(t *testing.T) {
	cache, mr := setupTestCache(t)

	count, err := cache.Hit(context.Background(), "ratelimit:reveal:42", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = cache.Hit(context.Background(), "ratelimit:reveal:42", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// После истечения окна счёт начинается заново.
	mr.FastForward(2 * time.Minute)
	count, err = cache.Hit(context.Background(), "ratelimit:reveal:42", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestInitServerInvalidAddr(t *testing.T) {
	cfg := config.RedisConnection{
		AddressRedis: "127.0.0.1:9999",
	}

	cache, err := InitServer(context.Background(), cfg)
	assert.Nil(t, cache)
	assert.Error(t, err)
}
