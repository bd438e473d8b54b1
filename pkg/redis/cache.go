package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache provides typed JSON caching under a key prefix
// ⭐ SSOT: 캐시 헬퍼는 여기서만
type Cache struct {
	client *Client
	prefix string
}

// NewCache creates a new cache helper
func NewCache(client *Client, prefix string) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
	}
}

// Enabled reports whether reads and writes reach Redis
func (c *Cache) Enabled() bool {
	return c.client != nil && c.client.Enabled()
}

// Key returns the full Redis key for key
func (c *Cache) Key(key string) string {
	return fmt.Sprintf("%s:cache:%s", c.prefix, key)
}

// Get retrieves a cached value
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}

	data, err := c.client.Redis().Get(ctx, c.Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}

	return true, nil
}

// Set stores a value in cache with TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	return c.client.Redis().Set(ctx, c.Key(key), data, ttl).Err()
}

// Delete removes a cached value
func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.Enabled() {
		return nil
	}

	return c.client.Redis().Del(ctx, c.Key(key)).Err()
}

// GetOrSet retrieves from cache or calls fn to populate it.
// A failed cache write is not an error: the fresh value is still returned.
func (c *Cache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, fn func() (interface{}, error)) error {
	// Try cache first
	found, err := c.Get(ctx, key, dest)
	if err == nil && found {
		return nil
	}

	// Cache miss - call function
	value, err := fn()
	if err != nil {
		return err
	}

	_ = c.Set(ctx, key, value, ttl)

	// Unmarshal into dest
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}
	return json.Unmarshal(data, dest)
}

// Predefined TTLs
const (
	TTLShort  = 1 * time.Minute  // 실측 평균 (세션 중)
	TTLMedium = 10 * time.Minute // 실측 평균 기본값
	TTLLong   = 1 * time.Hour    // scope-best
)

// Common cache key generators

// AveragesKey is the key of the per-device average table for a metric
func AveragesKey(metric string) string {
	return fmt.Sprintf("stats:avg:%s", metric)
}

// ScopeBestKey is the key of the scope-best list for one bean.
// 제공자가 원문 값과 bean id로 조회하므로 키도 원문 그대로 (분류 태그로 묶지 않음)
func ScopeBestKey(beanID, roast, process, origin string) string {
	return fmt.Sprintf("stats:scope:%s:%s:%s:%s",
		url.QueryEscape(beanID), url.QueryEscape(roast), url.QueryEscape(process), url.QueryEscape(origin))
}
