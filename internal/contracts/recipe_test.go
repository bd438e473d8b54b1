package contracts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGrindShift(t *testing.T) {
	tests := []struct {
		name  string
		start GrindGroup
		steps int
		want  GrindGroup
	}{
		{"one finer", GrindMedium, 1, GrindMediumFine},
		{"one coarser", GrindMedium, -1, GrindMediumCoarse},
		{"clamp fine end", GrindFine, 5, GrindExtraFine},
		{"clamp coarse end", GrindMediumCoarse, -3, GrindCoarse},
		{"zero", GrindCoarse, 0, GrindCoarse},
		{"unknown unchanged", GrindGroup("turkish"), 1, GrindGroup("turkish")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.start.Shift(tt.steps))
		})
	}
}

func TestGrindOrder(t *testing.T) {
	assert.Equal(t, 0, GrindCoarse.Index())
	assert.Equal(t, 5, GrindExtraFine.Index())
	assert.Equal(t, -1, GrindGroup("").Index())
	assert.False(t, GrindGroup("").Valid())
}

func TestRecipeClone(t *testing.T) {
	bloom := 30.0
	pulses := 3
	r := Recipe{
		Grind:        GrindMedium,
		TemperatureC: 92,
		Pour: Pour{
			Style:      PourPulse,
			BloomSec:   &bloom,
			PulseCount: &pulses,
			Notes:      []string{"a"},
		},
	}

	c := r.Clone()
	*c.Pour.BloomSec = 45
	*c.Pour.PulseCount = 5
	c.Pour.Notes[0] = "b"
	c.Pour.Notes = append(c.Pour.Notes, "c")

	assert.Equal(t, 30.0, *r.Pour.BloomSec)
	assert.Equal(t, 3, *r.Pour.PulseCount)
	assert.Equal(t, []string{"a"}, r.Pour.Notes)
}

func TestRangeClamp(t *testing.T) {
	r := Range{Lo: 80, Hi: 96}

	v, clamped := r.Clamp(100)
	assert.Equal(t, 96.0, v)
	assert.True(t, clamped)

	v, clamped = r.Clamp(70)
	assert.Equal(t, 80.0, v)
	assert.True(t, clamped)

	v, clamped = r.Clamp(96)
	assert.Equal(t, 96.0, v)
	assert.False(t, clamped)

	assert.True(t, r.Contains(80))
	assert.False(t, r.Contains(79.9))
}

func TestDeviceClass(t *testing.T) {
	assert.True(t, ClassPress.Valid())
	assert.True(t, ClassPress.IsDrip())
	assert.False(t, ClassEspresso.IsDrip())
	assert.False(t, ClassMoka.IsDrip())
	assert.False(t, ClassOther.IsDrip())
	assert.False(t, DeviceClass("cold-brew").Valid())
}

func TestParseMetric(t *testing.T) {
	assert.Equal(t, MetricClean, ParseMetric(" Clean "))
	assert.Equal(t, MetricOverall, ParseMetric(""))
	assert.Equal(t, MetricOverall, ParseMetric("umami"))
}

func TestBeanAgingAt(t *testing.T) {
	roasted := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	b := BeanRecord{RoastedAt: &roasted}

	got := b.AgingAt(time.Date(2026, 10, 11, 8, 0, 0, 0, time.UTC))
	if assert.NotNil(t, got) {
		assert.Equal(t, 9, *got)
	}

	// 명시값 우선
	explicit := 4
	b.AgingDays = &explicit
	assert.Equal(t, 4, *b.AgingAt(time.Now()))

	assert.Nil(t, (&BeanRecord{}).AgingAt(time.Now()))
}
