package stats

import (
	"context"
	"fmt"

	"github.com/wonny/driplog/backend/internal/contracts"
)

// NoopProvider has no statistics (STATS_SOURCE=none)
type NoopProvider struct{}

// DeviceAverages returns an empty table
func (NoopProvider) DeviceAverages(ctx context.Context, metric contracts.Metric) ([]contracts.DeviceAverage, error) {
	return []contracts.DeviceAverage{}, nil
}

// ScopeBest returns an empty list
func (NoopProvider) ScopeBest(ctx context.Context, bean contracts.BeanRecord) ([]string, error) {
	return []string{}, nil
}

// Bean always reports not found
func (NoopProvider) Bean(ctx context.Context, id string) (*contracts.BeanRecord, error) {
	return nil, fmt.Errorf("bean %s: %w", id, ErrNotFound)
}
