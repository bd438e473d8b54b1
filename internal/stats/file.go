package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/wonny/driplog/backend/internal/classify"
	"github.com/wonny/driplog/backend/internal/contracts"
)

// Snapshot is an offline export of the brew log statistics
type Snapshot struct {
	Averages  map[contracts.Metric][]contracts.DeviceAverage `json:"averages"`
	ScopeBest []ScopeEntry                                  `json:"scope_best"`
	Beans     []contracts.BeanRecord                        `json:"beans"`
}

// ScopeEntry lists the best devices for one bean scope.
// Empty tags match anything.
type ScopeEntry struct {
	Roast   classify.Tag `json:"roast"`
	Process classify.Tag `json:"process"`
	Origin  classify.Tag `json:"origin"`
	Devices []string     `json:"devices"`
}

func (e ScopeEntry) matches(axes classify.Axes) bool {
	return (e.Roast == "" || e.Roast == axes.Roast) &&
		(e.Process == "" || e.Process == axes.Process) &&
		(e.Origin == "" || e.Origin == axes.Origin)
}

// FileProvider serves statistics from a JSON snapshot
type FileProvider struct {
	snapshot Snapshot
}

// LoadFile reads a JSON snapshot
func LoadFile(path string) (*FileProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode stats snapshot %s: %w", path, err)
	}
	return NewFileProvider(snap), nil
}

// NewFileProvider wraps an in-memory snapshot
func NewFileProvider(snap Snapshot) *FileProvider {
	return &FileProvider{snapshot: snap}
}

// DeviceAverages returns the snapshot table for the metric (empty if absent)
func (p *FileProvider) DeviceAverages(ctx context.Context, metric contracts.Metric) ([]contracts.DeviceAverage, error) {
	rows := p.snapshot.Averages[metric]
	out := make([]contracts.DeviceAverage, len(rows))
	copy(out, rows)
	return out, nil
}

// ScopeBest returns the devices of the first entry matching the bean's classified scope
func (p *FileProvider) ScopeBest(ctx context.Context, bean contracts.BeanRecord) ([]string, error) {
	axes := classify.All(bean.Roast, bean.Process, bean.Origin)
	for _, e := range p.snapshot.ScopeBest {
		if e.matches(axes) {
			out := make([]string, len(e.Devices))
			copy(out, e.Devices)
			return out, nil
		}
	}
	return []string{}, nil
}

// Bean looks up a bean by id
func (p *FileProvider) Bean(ctx context.Context, id string) (*contracts.BeanRecord, error) {
	for i := range p.snapshot.Beans {
		if p.snapshot.Beans[i].ID == id {
			b := p.snapshot.Beans[i]
			return &b, nil
		}
	}
	return nil, fmt.Errorf("bean %s: %w", id, ErrNotFound)
}
