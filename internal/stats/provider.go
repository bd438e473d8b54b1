package stats

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/driplog/backend/internal/contracts"
	"github.com/wonny/driplog/backend/pkg/config"
	"github.com/wonny/driplog/backend/pkg/database"
	"github.com/wonny/driplog/backend/pkg/httputil"
	"github.com/wonny/driplog/backend/pkg/logger"
	"github.com/wonny/driplog/backend/pkg/redis"
)

// ErrNotFound is returned when a bean does not exist
var ErrNotFound = errors.New("not found")

// cachePrefix namespaces every redis key written by this module
const cachePrefix = "driplog"

// Sources bundles the collaborators selected by configuration
type Sources struct {
	Stats contracts.StatsProvider
	Beans contracts.BeanProvider

	// Cached is non-nil when the redis cache wraps Stats
	Cached *CachedProvider

	closers []func()
}

// Close releases pools and connections in reverse order of creation
func (s *Sources) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// Open wires the providers for cfg.Stats.Source
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Sources, error) {
	src := &Sources{}

	var provider interface {
		contracts.StatsProvider
		contracts.BeanProvider
	}

	switch cfg.Stats.Source {
	case config.StatsSourceNone:
		provider = NoopProvider{}

	case config.StatsSourceFile:
		fp, err := LoadFile(cfg.Stats.File)
		if err != nil {
			return nil, err
		}
		provider = fp

	case config.StatsSourceDB:
		db, err := database.New(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		src.closers = append(src.closers, db.Close)
		provider = NewRepository(db.Pool)

	case config.StatsSourceAPI:
		hc := httputil.New(cfg.StatsAPI, log.WithComponent("stats-api"))
		provider = NewClient(hc, cfg.StatsAPI.BaseURL)

	default:
		return nil, fmt.Errorf("unknown stats source %q", cfg.Stats.Source)
	}

	src.Stats = provider
	src.Beans = provider

	if cfg.Redis.Enabled && cfg.Stats.Source != config.StatsSourceNone {
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			src.Close()
			return nil, err
		}
		src.closers = append(src.closers, func() { _ = client.Close() })

		src.Cached = NewCachedProvider(provider, redis.NewCache(client, cachePrefix), cfg.Stats.CacheTTL, log.WithComponent("stats-cache"))
		src.Stats = src.Cached
	}

	log.WithFields(map[string]interface{}{
		"source": cfg.Stats.Source,
		"cached": src.Cached != nil,
	}).Info("Stats sources ready")

	return src, nil
}
