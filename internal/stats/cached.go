package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/driplog/backend/internal/contracts"
	"github.com/wonny/driplog/backend/pkg/logger"
	"github.com/wonny/driplog/backend/pkg/redis"
)

// CachedProvider wraps a StatsProvider with the redis JSON cache.
// A disabled cache passes every call through.
type CachedProvider struct {
	next   contracts.StatsProvider
	cache  *redis.Cache
	ttl    time.Duration
	logger *logger.Logger
}

// NewCachedProvider creates a new caching provider
func NewCachedProvider(next contracts.StatsProvider, cache *redis.Cache, ttl time.Duration, log *logger.Logger) *CachedProvider {
	if ttl <= 0 {
		ttl = redis.TTLMedium
	}
	return &CachedProvider{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: log,
	}
}

// DeviceAverages serves the table from cache, falling back to the wrapped provider
func (p *CachedProvider) DeviceAverages(ctx context.Context, metric contracts.Metric) ([]contracts.DeviceAverage, error) {
	var rows []contracts.DeviceAverage
	err := p.cache.GetOrSet(ctx, redis.AveragesKey(string(metric)), &rows, p.ttl, func() (interface{}, error) {
		return p.next.DeviceAverages(ctx, metric)
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ScopeBest caches per bean (id + raw roast/process/origin)
func (p *CachedProvider) ScopeBest(ctx context.Context, bean contracts.BeanRecord) ([]string, error) {
	var devices []string
	key := redis.ScopeBestKey(bean.ID, bean.Roast, bean.Process, bean.Origin)
	err := p.cache.GetOrSet(ctx, key, &devices, redis.TTLLong, func() (interface{}, error) {
		return p.next.ScopeBest(ctx, bean)
	})
	if err != nil {
		return nil, err
	}
	return devices, nil
}

// Refresh re-reads the metric table from the wrapped provider and overwrites the cache
func (p *CachedProvider) Refresh(ctx context.Context, metric contracts.Metric) (int, error) {
	rows, err := p.next.DeviceAverages(ctx, metric)
	if err != nil {
		return 0, fmt.Errorf("refresh %s: %w", metric, err)
	}

	if err := p.cache.Set(ctx, redis.AveragesKey(string(metric)), rows, p.ttl); err != nil {
		p.logger.WithError(err).WithField("metric", string(metric)).Warn("Failed to write stats cache")
		return len(rows), err
	}
	return len(rows), nil
}
