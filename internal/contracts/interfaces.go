package contracts

import (
	"context"
	"time"
)

// BeanRecord is a bean as supplied by the brew log store
type BeanRecord struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Roast     string     `json:"roast"`
	Process   string     `json:"process"`
	Origin    string     `json:"origin"`
	RoastedAt *time.Time `json:"roasted_at,omitempty"`
	AgingDays *int       `json:"aging_days,omitempty"`
	Storage   string     `json:"storage,omitempty"`
}

// AgingAt returns the aging in days at the given time, preferring an explicit AgingDays
func (b *BeanRecord) AgingAt(now time.Time) *int {
	if b.AgingDays != nil {
		d := *b.AgingDays
		return &d
	}
	if b.RoastedAt == nil {
		return nil
	}
	d := int(now.Sub(*b.RoastedAt).Hours() / 24)
	if d < 0 {
		d = 0
	}
	return &d
}

// StatsProvider supplies empirical outcome statistics
// ⭐ SSOT: 통계 조회 인터페이스
type StatsProvider interface {
	DeviceAverages(ctx context.Context, metric Metric) ([]DeviceAverage, error)
	ScopeBest(ctx context.Context, bean BeanRecord) ([]string, error)
}

// BeanProvider supplies bean records
type BeanProvider interface {
	Bean(ctx context.Context, id string) (*BeanRecord, error)
}
