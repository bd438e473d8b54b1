package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/wonny/driplog/backend/internal/advisor"
	"github.com/wonny/driplog/backend/internal/catalog"
	"github.com/wonny/driplog/backend/internal/matcher"
	"github.com/wonny/driplog/backend/internal/recipe"
	"github.com/wonny/driplog/backend/internal/selection"
	"github.com/wonny/driplog/backend/internal/stats"
	"github.com/wonny/driplog/backend/pkg/config"
	"github.com/wonny/driplog/backend/pkg/logger"
)

// app bundles the wired components a command needs
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	catalog *catalog.Catalog
	ranker  *selection.Ranker
	engine  *recipe.Engine
}

// loadApp reads config, builds the logger and compiles the catalog.
// ⭐ SSOT: 커맨드 공통 초기화는 여기서만
func loadApp() (*app, error) {
	if env != "" {
		os.Setenv("ENV", env)
	}
	if verbose {
		os.Setenv("LOG_LEVEL", "debug")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if catalogPath != "" {
		cfg.CatalogPath = catalogPath
	}

	log := logger.New(cfg)

	cat, err := catalog.Open(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	for _, w := range cat.Warnings() {
		log.WithFields(map[string]interface{}{
			"code":    w.Code,
			"message": w.Message,
		}).Debug("Catalog warning")
	}

	engine, err := recipe.NewEngine(cat, log.WithComponent("recipe"))
	if err != nil {
		return nil, fmt.Errorf("compile rules: %w", err)
	}

	return &app{
		cfg:     cfg,
		log:     log,
		catalog: cat,
		ranker:  selection.NewRanker(cat, matcher.New(cat), selection.DefaultWeights(), log.WithComponent("ranker")),
		engine:  engine,
	}, nil
}

// openStats opens the configured stats sources; callers must Close them
func (a *app) openStats(ctx context.Context) (*stats.Sources, error) {
	return stats.Open(ctx, a.cfg, a.log)
}

// advisor wires an Advisor over the given stats provider
func (a *app) advisor(src *stats.Sources) *advisor.Advisor {
	return advisor.New(a.catalog, a.ranker, a.engine, src.Stats, a.log.WithComponent("advisor"))
}
