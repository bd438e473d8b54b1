package recipe

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/driplog/backend/internal/catalog"
	"github.com/wonny/driplog/backend/internal/contracts"
	"github.com/wonny/driplog/backend/pkg/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func intPtr(v int) *int { return &v }

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(catalog.MustDefault(), logger.Nop())
	require.NoError(t, err)
	return e
}

func always(f *facts) bool { return true }

func pressContext() contracts.BrewContext {
	return contracts.BrewContext{
		Device:    "フレンチプレス",
		Roast:     "フレンチ",
		Process:   "ナチュラル",
		Origin:    "ブラジル",
		AgingDays: intPtr(10),
		Baseline: contracts.Recipe{
			Grind:        contracts.GrindCoarse,
			TemperatureC: 80,
			TimeSec:      240,
			Ratio:        14,
			Pour:         contracts.Pour{Style: contracts.PourContinuous},
			Agitation:    contracts.AgitationLight,
		},
	}
}

func ruleIDs(d contracts.Derivation) []string {
	ids := make([]string, len(d.Trace))
	for i, te := range d.Trace {
		ids[i] = te.RuleID
	}
	return ids
}

func TestDeriveFrenchPress(t *testing.T) {
	e := newEngine(t)
	bc := pressContext()

	got := e.Derive(bc)

	assert.Equal(t, []string{"roast-dark", "process-natural", "origin-low-density", "device-press-dark"}, ruleIDs(got))
	assert.GreaterOrEqual(t, len(got.Trace), 2)

	r := got.Recipe
	assert.Equal(t, contracts.PourImmersion, r.Pour.Style)
	assert.Equal(t, contracts.AgitationNone, r.Agitation)
	assert.Equal(t, contracts.GrindCoarse, r.Grind)

	lim := catalog.MustDefault().LimitsFor("フレンチプレス")
	assert.Less(t, r.TemperatureC, bc.Baseline.TemperatureC)
	assert.Less(t, r.TimeSec, bc.Baseline.TimeSec)
	assert.True(t, lim.Temp.Contains(r.TemperatureC))
	assert.True(t, lim.Time.Contains(r.TimeSec))
	assert.Equal(t, 75.0, r.TemperatureC) // 80-4-1-1 → clamp lo
	assert.Equal(t, 185.0, r.TimeSec)     // 240-20-10-10-15
	assert.Equal(t, 14.5, r.Ratio)

	assert.Equal(t, []bool{true, false, true, false}, []bool{
		got.Trace[0].Clamped, got.Trace[1].Clamped, got.Trace[2].Clamped, got.Trace[3].Clamped,
	})

	// 근거 id는 중복 제거하지 않음
	assert.Equal(t, []string{
		"dark-roast-bitterness", "roast-solubility",
		"process-fermentation",
		"low-density-beans",
		"press-technique", "dark-roast-bitterness",
	}, got.EvidenceIDs)

	// baseline은 변경되지 않아야 함
	assert.Equal(t, 80.0, bc.Baseline.TemperatureC)
	assert.Equal(t, contracts.PourContinuous, bc.Baseline.Pour.Style)
	assert.Empty(t, bc.Baseline.Pour.Notes)
}

func TestDeriveLightWashedFresh(t *testing.T) {
	e := newEngine(t)
	baseline, ok := catalog.MustDefault().BaselineRecipe("ハリオV60")
	require.True(t, ok)

	got := e.Derive(contracts.BrewContext{
		Device:    "ハリオV60",
		Roast:     "浅煎り",
		Process:   "Washed",
		Origin:    "エチオピア",
		AgingDays: intPtr(2),
		Baseline:  baseline,
	})

	assert.Equal(t, []string{"roast-light", "process-washed", "origin-high-grown", "aging-fresh", "device-fast-light"}, ruleIDs(got))
	assert.Equal(t, contracts.GrindExtraFine, got.Recipe.Grind)
	assert.Equal(t, 96.0, got.Recipe.TemperatureC) // 92+2+1+1, V60 hi
	assert.Equal(t, 200.0, got.Recipe.TimeSec)
	assert.Equal(t, contracts.PourPulse, got.Recipe.Pour.Style)
	assert.Len(t, got.Recipe.Pour.Notes, 4) // baseline note + light + fresh + fast-light
}

func TestDeriveAgingThresholds(t *testing.T) {
	e := newEngine(t)

	tests := []struct {
		name  string
		aging *int
		want  []string
	}{
		{"unknown aging", nil, []string{}},
		{"fresh boundary", intPtr(3), []string{"aging-fresh"}},
		{"between", intPtr(4), []string{}},
		{"stale boundary not yet", intPtr(25), []string{}},
		{"stale", intPtr(26), []string{"aging-stale"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Derive(contracts.BrewContext{
				Device:    "カリタウェーブ",
				AgingDays: tt.aging,
				Baseline:  contracts.Recipe{Grind: contracts.GrindMedium, TemperatureC: 90, TimeSec: 200, Ratio: 15},
			})
			assert.Equal(t, tt.want, ruleIDs(got))
		})
	}
}

func TestDeriveStorageAndDeviceClass(t *testing.T) {
	e := newEngine(t)

	got := e.Derive(contracts.BrewContext{
		Device:   "コーノ名門",
		Storage:  "冷凍庫",
		Baseline: contracts.Recipe{Grind: contracts.GrindMedium, TemperatureC: 88, TimeSec: 210, Ratio: 14.5},
	})

	assert.Equal(t, []string{"storage-frozen", "device-restricted-flow"}, ruleIDs(got))
	assert.Equal(t, 230.0, got.Recipe.TimeSec)
	assert.Equal(t, contracts.PourPulse, got.Recipe.Pour.Style)
}

func TestDeriveGrindClamp(t *testing.T) {
	cat := catalog.MustDefault()

	tests := []struct {
		name    string
		start   contracts.GrindGroup
		shift   int
		want    contracts.GrindGroup
		clamped bool
	}{
		{"finer past end", contracts.GrindFine, 3, contracts.GrindExtraFine, true},
		{"coarser past start", contracts.GrindMediumCoarse, -5, contracts.GrindCoarse, true},
		{"within range", contracts.GrindMedium, 1, contracts.GrindMediumFine, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngineWithRules(cat, []Rule{
				{ID: "shift", Applies: always, Delta: contracts.Delta{GrindShift: tt.shift}, Confidence: contracts.ConfidenceMid},
			}, logger.Nop())

			got := e.Derive(contracts.BrewContext{
				Device:   "ハリオV60",
				Baseline: contracts.Recipe{Grind: tt.start, TemperatureC: 90, TimeSec: 180, Ratio: 15},
			})
			assert.Equal(t, tt.want, got.Recipe.Grind)
			assert.Equal(t, tt.clamped, got.Trace[0].Clamped)
		})
	}
}

func TestDeriveTemperatureClampOnBound(t *testing.T) {
	cat := catalog.MustDefault()
	lim := cat.LimitsFor("ハリオV60")
	hot := Rule{ID: "hot", Applies: always, Delta: contracts.Delta{TemperatureC: 10}}
	cold := Rule{ID: "cold", Applies: always, Delta: contracts.Delta{TemperatureC: -30}}
	bc := contracts.BrewContext{
		Device:   "ハリオV60",
		Baseline: contracts.Recipe{Grind: contracts.GrindMedium, TemperatureC: 92, TimeSec: 180, Ratio: 15},
	}

	got := NewEngineWithRules(cat, []Rule{hot}, logger.Nop()).Derive(bc)
	assert.Equal(t, lim.Temp.Hi, got.Recipe.TemperatureC)
	assert.True(t, got.Trace[0].Clamped)

	// 누적 clamp: 92 → 96(hi) → 66 → 82(lo)
	got = NewEngineWithRules(cat, []Rule{hot, cold}, logger.Nop()).Derive(bc)
	assert.Equal(t, lim.Temp.Lo, got.Recipe.TemperatureC)
	assert.True(t, got.Trace[1].Clamped)
}

func TestDeriveUnknownDeviceUsesGenericLimits(t *testing.T) {
	cat := catalog.MustDefault()
	e := NewEngineWithRules(cat, []Rule{
		{ID: "long", Applies: always, Delta: contracts.Delta{TimeSec: 500, Ratio: -10}},
	}, logger.Nop())

	got := e.Derive(contracts.BrewContext{
		Device:   "自作ドリッパー",
		Baseline: contracts.Recipe{Grind: contracts.GrindMedium, TemperatureC: 90, TimeSec: 180, Ratio: 15},
	})

	generic := contracts.GenericLimits()
	assert.Equal(t, generic.Time.Hi, got.Recipe.TimeSec)
	assert.Equal(t, generic.Ratio.Lo, got.Recipe.Ratio)
	assert.Equal(t, contracts.PourPulse, got.Recipe.Pour.Style)
}

func TestDeriveUntouchedFieldsNotClamped(t *testing.T) {
	cat := catalog.MustDefault()
	e := NewEngineWithRules(cat, []Rule{
		{ID: "note", Applies: always, Delta: contracts.Delta{PourNote: "ゆっくり"}},
	}, logger.Nop())

	// baseline temp 99 is above V60 hi; no rule touches temp
	got := e.Derive(contracts.BrewContext{
		Device:   "ハリオV60",
		Baseline: contracts.Recipe{Grind: contracts.GrindMedium, TemperatureC: 99, TimeSec: 180, Ratio: 15},
	})
	assert.Equal(t, 99.0, got.Recipe.TemperatureC)
	assert.Equal(t, []string{"ゆっくり"}, got.Recipe.Pour.Notes)
	assert.False(t, got.Trace[0].Clamped)
}

func TestDerivePourStyleIndependentOfBaseline(t *testing.T) {
	e := newEngine(t)

	devices := []struct {
		name string
		want contracts.PourStyle
	}{
		{"ハリオV60", contracts.PourPulse},
		{"コーノ名門", contracts.PourPulse},
		{"ハリオスイッチ", contracts.PourSwitch},
		{"クレバー", contracts.PourImmersion},
		{"フレンチプレス", contracts.PourImmersion},
		{"サイフォン", contracts.PourImmersion},
		{"エアロプレス", contracts.PourPulse},
		{"未知のドリッパー", contracts.PourPulse},
	}
	styles := []contracts.PourStyle{
		contracts.PourPulse, contracts.PourContinuous, contracts.PourImmersion, contracts.PourSwitch,
	}

	for _, dev := range devices {
		device, want := dev.name, dev.want
		for _, style := range styles {
			got := e.Derive(contracts.BrewContext{
				Device: device,
				Baseline: contracts.Recipe{
					Grind: contracts.GrindMedium, TemperatureC: 90, TimeSec: 180, Ratio: 15,
					Pour:      contracts.Pour{Style: style},
					Agitation: contracts.AgitationMedium,
				},
			})
			assert.Equal(t, want, got.Recipe.Pour.Style, "%s from %s", device, style)
			if want == contracts.PourImmersion {
				assert.Equal(t, contracts.AgitationNone, got.Recipe.Agitation)
			} else {
				assert.Equal(t, contracts.AgitationMedium, got.Recipe.Agitation)
			}
		}
	}
}

func TestDeriveDeterministic(t *testing.T) {
	e := newEngine(t)
	bc := pressContext()
	bloom := 30.0
	bc.Baseline.Pour.BloomSec = &bloom

	first := e.Derive(bc)
	for i := 0; i < 20; i++ {
		if diff := cmp.Diff(first, e.Derive(bc)); diff != "" {
			t.Fatalf("derive not deterministic (-first +got):\n%s", diff)
		}
	}

	// 결과의 포인터는 baseline과 공유하지 않음
	*first.Recipe.Pour.BloomSec = 99
	assert.Equal(t, 30.0, bloom)
}

func TestDeriveConcurrent(t *testing.T) {
	e := newEngine(t)
	want := e.Derive(pressContext())

	var g errgroup.Group
	results := make([]contracts.Derivation, 32)
	for i := range results {
		i := i
		g.Go(func() error {
			results[i] = e.Derive(pressContext())
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for i, got := range results {
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("result %d differs (-want +got):\n%s", i, diff)
		}
	}
}

func TestCompileRegistryOrder(t *testing.T) {
	cat := catalog.MustDefault()
	rules, err := Compile(cat)
	require.NoError(t, err)

	specs := cat.Rules()
	require.Len(t, rules, len(specs))
	for i := range specs {
		assert.Equal(t, specs[i].ID, rules[i].ID)
		assert.Equal(t, specs[i].Weight, rules[i].Weight)
	}
}
