package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/driplog/backend/pkg/config"
)

func TestNewClient_Disabled(t *testing.T) {
	client, err := New(context.Background(), config.RedisConfig{Enabled: false})
	require.NoError(t, err)
	assert.False(t, client.Enabled())
	assert.Nil(t, client.Redis())
	assert.NoError(t, client.Close())
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(Disabled(), "test")
	ctx := context.Background()

	// When Redis is disabled, cache operations should be no-ops
	var result []string
	found, err := cache.Get(ctx, "key", &result)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, cache.Set(ctx, "key", []string{"a"}, TTLShort))
	assert.NoError(t, cache.Delete(ctx, "key"))
	assert.False(t, cache.Enabled())
}

func TestCacheKeys(t *testing.T) {
	tests := []struct {
		name     string
		fn       func() string
		expected string
	}{
		{
			name:     "AveragesKey",
			fn:       func() string { return AveragesKey("clean") },
			expected: "stats:avg:clean",
		},
		{
			name:     "ScopeBestKey",
			fn:       func() string { return ScopeBestKey("b1", "dark", "natural", "low density") },
			expected: "stats:scope:b1:dark:natural:low+density",
		},
		{
			name:     "ScopeBestKey escapes separators",
			fn:       func() string { return ScopeBestKey("b:2", "city", "", "") },
			expected: "stats:scope:b%3A2:city::",
		},
		{
			name:     "prefixed",
			fn:       func() string { return NewCache(Disabled(), "driplog").Key("stats:avg:body") },
			expected: "driplog:cache:stats:avg:body",
		},
		{
			name:     "Addr",
			fn:       func() string { return Addr(config.RedisConfig{Host: "localhost", Port: "6379"}) },
			expected: "localhost:6379",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.fn())
		})
	}
}

func TestCache_RoundTrip(t *testing.T) {
	host := os.Getenv("REDIS_HOST")
	if host == "" || testing.Short() {
		t.Skip("REDIS_HOST not set, skipping integration test")
	}

	ctx := context.Background()
	client, err := New(ctx, config.RedisConfig{Enabled: true, Host: host, Port: "6379"})
	require.NoError(t, err)
	defer client.Close()

	cache := NewCache(client, "driplog-test")
	key := "roundtrip:" + time.Now().Format("150405.000")
	require.NoError(t, cache.Set(ctx, key, map[string]float64{"ハリオV60": 7.5}, time.Minute))
	defer cache.Delete(ctx, key)

	var got map[string]float64
	found, err := cache.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 7.5, got["ハリオV60"])
}

func TestCache_GetOrSetDisabled(t *testing.T) {
	cache := NewCache(Disabled(), "test")
	calls := 0

	var got []string
	err := cache.GetOrSet(context.Background(), "k", &got, TTLShort, func() (interface{}, error) {
		calls++
		return []string{"クレバー"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"クレバー"}, got)
	assert.Equal(t, 1, calls)
}
