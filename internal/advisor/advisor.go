package advisor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/driplog/backend/internal/catalog"
	"github.com/wonny/driplog/backend/internal/contracts"
	"github.com/wonny/driplog/backend/internal/recipe"
	"github.com/wonny/driplog/backend/internal/selection"
	"github.com/wonny/driplog/backend/pkg/logger"
)

// Advisor coordinates one recommendation: stats → rank → baseline → derive
// ⭐ SSOT: 추천 흐름 조율은 여기서만
type Advisor struct {
	catalog *catalog.Catalog
	ranker  *selection.Ranker
	engine  *recipe.Engine
	stats   contracts.StatsProvider

	now    func() time.Time
	logger *logger.Logger
}

// Request holds the inputs of one advice run
type Request struct {
	Bean         contracts.BeanRecord
	Theory       string
	Metric       contracts.Metric
	AllowNonDrip bool

	// Device overrides the ranked primary (empty = primary)
	Device string
	// Baseline overrides the catalog guide recipe
	Baseline *contracts.Recipe
}

// Advice is the result of one advice run
type Advice struct {
	RunID          string                    `json:"run_id"`
	CatalogHash    string                    `json:"catalog_hash"`
	CatalogVersion string                    `json:"catalog_version"`
	Device         string                    `json:"device"`
	Context        contracts.BrewContext     `json:"context"`
	Ranking        contracts.RecommendResult `json:"ranking"`
	Derivation     contracts.Derivation      `json:"derivation"`
	Warnings       []string                  `json:"warnings"`
	Duration       time.Duration             `json:"duration_ns"`
}

// New creates a new advisor
func New(
	cat *catalog.Catalog,
	ranker *selection.Ranker,
	engine *recipe.Engine,
	stats contracts.StatsProvider,
	log *logger.Logger,
) *Advisor {
	return &Advisor{
		catalog: cat,
		ranker:  ranker,
		engine:  engine,
		stats:   stats,
		now:     time.Now,
		logger:  log,
	}
}

// Advise ranks the devices for the bean and derives the recipe for the chosen one.
// Collaborator failures degrade to empty tables and a warning; only ctx cancellation fails.
func (a *Advisor) Advise(ctx context.Context, req Request) (*Advice, error) {
	startTime := a.now()
	metric := req.Metric
	if metric == "" {
		metric = contracts.MetricOverall
	}

	advice := &Advice{
		RunID:          uuid.New().String(),
		CatalogHash:    a.catalog.Hash(),
		CatalogVersion: a.catalog.Version(),
		Warnings:       make([]string, 0),
	}

	log := a.logger.WithFields(map[string]interface{}{
		"run_id": advice.RunID,
		"bean":   req.Bean.ID,
		"metric": string(metric),
	})
	log.Info("Starting advice run")

	averages, scopeBest, warnings := a.fetchStats(ctx, req.Bean, metric)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("advice cancelled: %w", err)
	}
	advice.Warnings = append(advice.Warnings, warnings...)

	advice.Ranking = a.ranker.Rank(contracts.RecommendInput{
		Roast:        req.Bean.Roast,
		Process:      req.Bean.Process,
		Theory:       req.Theory,
		BestMetric:   metric,
		ScopeBest:    scopeBest,
		Averages:     averages,
		AllowNonDrip: req.AllowNonDrip,
	})

	advice.Device = advice.Ranking.Primary
	if req.Device != "" {
		advice.Device = req.Device
	}

	baseline, warning := a.baseline(advice.Device, req.Baseline)
	if warning != "" {
		advice.Warnings = append(advice.Warnings, warning)
	}

	advice.Context = contracts.BrewContext{
		Device:    advice.Device,
		Roast:     req.Bean.Roast,
		Process:   req.Bean.Process,
		Origin:    req.Bean.Origin,
		AgingDays: req.Bean.AgingAt(startTime),
		Storage:   req.Bean.Storage,
		Baseline:  baseline,
	}
	advice.Derivation = a.engine.Derive(advice.Context)
	advice.Duration = a.now().Sub(startTime)

	log.WithFields(map[string]interface{}{
		"device":   advice.Device,
		"rules":    len(advice.Derivation.Trace),
		"warnings": len(advice.Warnings),
		"duration": advice.Duration,
	}).Info("Advice run completed")

	return advice, nil
}

// AdviseBean looks the bean up first, then runs Advise
func (a *Advisor) AdviseBean(ctx context.Context, beans contracts.BeanProvider, id string, req Request) (*Advice, error) {
	bean, err := beans.Bean(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load bean: %w", err)
	}
	req.Bean = *bean
	return a.Advise(ctx, req)
}

// fetchStats reads averages and scope-best concurrently.
// 조회 실패는 빈 테이블로 대체 (랭킹은 실측 없이도 동작)
func (a *Advisor) fetchStats(ctx context.Context, bean contracts.BeanRecord, metric contracts.Metric) ([]contracts.DeviceAverage, []string, []string) {
	var (
		averages  []contracts.DeviceAverage
		scopeBest []string
		avgErr    error
		scopeErr  error
	)

	var g errgroup.Group
	g.Go(func() error {
		averages, avgErr = a.stats.DeviceAverages(ctx, metric)
		return nil
	})
	g.Go(func() error {
		scopeBest, scopeErr = a.stats.ScopeBest(ctx, bean)
		return nil
	})
	_ = g.Wait()

	warnings := make([]string, 0, 2)
	if avgErr != nil {
		a.logger.WithError(avgErr).Warn("Device averages unavailable, ranking without empirical scores")
		warnings = append(warnings, fmt.Sprintf("device averages unavailable: %v", avgErr))
		averages = nil
	}
	if scopeErr != nil {
		a.logger.WithError(scopeErr).Warn("Scope best unavailable")
		warnings = append(warnings, fmt.Sprintf("scope best unavailable: %v", scopeErr))
		scopeBest = nil
	}

	if averages == nil {
		averages = []contracts.DeviceAverage{}
	}
	if scopeBest == nil {
		scopeBest = []string{}
	}
	return averages, scopeBest, warnings
}

// baseline picks the starting recipe: explicit override, catalog guide, or the generic recipe
func (a *Advisor) baseline(device string, override *contracts.Recipe) (contracts.Recipe, string) {
	if override != nil {
		return override.Clone(), ""
	}
	if r, ok := a.catalog.BaselineRecipe(device); ok {
		return r, ""
	}
	return GenericBaseline(), fmt.Sprintf("no brewing guide for %q, using generic baseline", device)
}

// GenericBaseline is the starting recipe for devices outside the catalog
func GenericBaseline() contracts.Recipe {
	return contracts.Recipe{
		Grind:        contracts.GrindMedium,
		TemperatureC: 92,
		TimeSec:      180,
		Ratio:        15,
		Pour: contracts.Pour{
			Style: contracts.PourPulse,
			Notes: []string{},
		},
		Agitation: contracts.AgitationNone,
	}
}
