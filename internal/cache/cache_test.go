package cache

import (
	"context"
	"testing"
	"time"

	platformconfig "github.com/qolzam/telar/apps/social/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheFactory(t *testing.T) {
	factory := NewCacheFactory()

	t.Run("CreateMemoryCache", func(t *testing.T) {
		c, err := factory.CreateCache(DefaultCacheConfig())
		require.NoError(t, err)
		defer c.Close()

		ctx := context.Background()
		require.NoError(t, c.Set(ctx, "test", []byte("value"), time.Minute))

		value, err := c.Get(ctx, "test")
		require.NoError(t, err)
		assert.Equal(t, []byte("value"), value)

		require.NoError(t, c.Delete(ctx, "test"))
		_, err = c.Get(ctx, "test")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("InvalidCacheType", func(t *testing.T) {
		config := DefaultCacheConfig()
		config.Backend = CacheType("invalid")

		_, err := factory.CreateCache(config)
		assert.ErrorIs(t, err, ErrInvalidCacheType)
	})
}

func TestMemoryCacheExpiryAndPatterns(t *testing.T) {
	c := NewMemoryCache(DefaultCacheConfig())
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", []byte("x"), time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	_, err := c.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	exists, err := c.Exists(ctx, "short")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, c.Set(ctx, "social:posts:list", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "social:posts:get:1", []byte("2"), time.Minute))
	require.NoError(t, c.Set(ctx, "social:users:1", []byte("3"), time.Minute))

	require.NoError(t, c.DeletePattern(ctx, "social:posts:*"))

	_, err = c.Get(ctx, "social:posts:list")
	assert.ErrorIs(t, err, ErrKeyNotFound)
	_, err = c.Get(ctx, "social:posts:get:1")
	assert.ErrorIs(t, err, ErrKeyNotFound)
	value, err := c.Get(ctx, "social:users:1")
	require.NoError(t, err)
	assert.Equal(t, []byte("3"), value)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Keys)
	assert.True(t, stats.Hits >= 1)
}

func TestMemoryCacheEvictsOverLimit(t *testing.T) {
	config := DefaultCacheConfig()
	config.MaxMemory = 200
	c := NewMemoryCache(config)
	defer c.Close()
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c", "d"} {
		require.NoError(t, c.Set(ctx, key, make([]byte, 40), time.Minute))
	}

	stats := c.Stats()
	assert.LessOrEqual(t, stats.MemoryUsage, int64(200))
	assert.Greater(t, stats.Evictions, int64(0))

	_, err := c.Get(ctx, "d")
	assert.NoError(t, err, "most recent key survives eviction")
}

func TestMemoryCacheClosed(t *testing.T) {
	c := NewMemoryCache(nil)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	assert.ErrorIs(t, c.Set(context.Background(), "k", []byte("v"), time.Minute), ErrCacheDisabled)
	_, err := c.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrCacheDisabled)
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		text, pattern string
		want          bool
	}{
		{"anything", "*", true},
		{"posts:list", "posts:list", true},
		{"posts:list", "posts:*", true},
		{"users:1", "posts:*", false},
		{"a:b:c", "a:*:c", true},
		{"a:c", "a:*:c", false},
		{"ab", "a*b*", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, matchPattern(tt.text, tt.pattern), "%s ~ %s", tt.text, tt.pattern)
	}
}

func TestGenericCacheService(t *testing.T) {
	ctx := context.Background()
	config := DefaultCacheConfig()
	config.Prefix = "test"
	svc := NewGenericCacheService(NewMemoryCache(config), config)
	defer svc.Close()

	type payload struct {
		Name string `json:"name"`
	}

	require.NoError(t, svc.CacheData(ctx, "posts:1", payload{Name: "hello"}))

	var got payload
	require.NoError(t, svc.GetCached(ctx, "posts:1", &got))
	assert.Equal(t, "hello", got.Name)

	require.NoError(t, svc.InvalidatePattern(ctx, "posts:*"))
	assert.ErrorIs(t, svc.GetCached(ctx, "posts:1", &got), ErrKeyNotFound)

	require.NoError(t, svc.CacheData(ctx, "posts:2", payload{Name: "x"}))
	require.NoError(t, svc.InvalidateKey(ctx, "posts:2"))
	assert.ErrorIs(t, svc.GetCached(ctx, "posts:2", &got), ErrKeyNotFound)
}

func TestGenericCacheServiceDisabled(t *testing.T) {
	svc, err := NewCacheService(FromPlatformConfig(platformconfig.CacheConfig{Enabled: false}))
	require.NoError(t, err)
	assert.False(t, svc.IsEnabled())

	var target map[string]interface{}
	assert.ErrorIs(t, svc.GetCached(context.Background(), "k", &target), ErrCacheDisabled)
	assert.ErrorIs(t, svc.CacheData(context.Background(), "k", 1), ErrCacheDisabled)
	assert.Equal(t, CacheStats{}, svc.GetStats())
	assert.NoError(t, svc.Close())
}

func TestParseRedisInfo(t *testing.T) {
	info := "# Memory\r\nused_memory:1024\r\nused_memory_human:1K\r\n# Keyspace\r\ndb0:keys=10,expires=0,avg_ttl=0\r\ndb1:keys=5,expires=1,avg_ttl=3\r\n"
	memory, keys := parseRedisInfo(info)
	assert.Equal(t, int64(1024), memory)
	assert.Equal(t, int64(15), keys)
}
