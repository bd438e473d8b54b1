package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/driplog/backend/internal/contracts"
	"github.com/wonny/driplog/backend/pkg/logger"
)

// DefaultWarmSchedule refreshes the average tables every 10 minutes
const DefaultWarmSchedule = "0 */10 * * * *"

// Refresher re-reads one metric table into the cache
type Refresher interface {
	Refresh(ctx context.Context, metric contracts.Metric) (int, error)
}

// StatsWarmJob keeps the cached per-device average tables warm
// ⭐ SSOT: 실측 평균 캐시 갱신은 이 Job에서만
type StatsWarmJob struct {
	refresher Refresher
	schedule  string
	metrics   []contracts.Metric
	logger    *logger.Logger
}

// NewStatsWarmJob creates a new warm job over every metric
func NewStatsWarmJob(r Refresher, schedule string, log *logger.Logger) *StatsWarmJob {
	if schedule == "" {
		schedule = DefaultWarmSchedule
	}
	return &StatsWarmJob{
		refresher: r,
		schedule:  schedule,
		metrics:   contracts.AllMetrics,
		logger:    log,
	}
}

// Name returns the job name
func (j *StatsWarmJob) Name() string {
	return "stats_warm"
}

// Schedule returns the cron schedule
func (j *StatsWarmJob) Schedule() string {
	return j.schedule
}

// Run refreshes every metric; one failing metric does not stop the others
func (j *StatsWarmJob) Run(ctx context.Context) error {
	j.logger.Debug("Starting stats cache warm")

	var errs []error
	rows := 0
	for _, m := range j.metrics {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := j.refresher.Refresh(ctx, m)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rows += n
	}

	j.logger.WithFields(map[string]interface{}{
		"metrics": len(j.metrics),
		"failed":  len(errs),
		"rows":    rows,
	}).Info("Stats cache warm completed")

	if len(errs) > 0 {
		return fmt.Errorf("warm %d/%d metrics failed: %w", len(errs), len(j.metrics), errors.Join(errs...))
	}
	return nil
}
