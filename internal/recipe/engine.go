package recipe

import (
	"github.com/wonny/driplog/backend/internal/catalog"
	"github.com/wonny/driplog/backend/internal/classify"
	"github.com/wonny/driplog/backend/internal/contracts"
	"github.com/wonny/driplog/backend/pkg/logger"
)

// Engine applies the ordered rule registry to a baseline recipe.
// Read-only after NewEngine; every Derive owns its working recipe.
// ⭐ SSOT: 레시피 보정 로직은 여기서만
type Engine struct {
	catalog *catalog.Catalog
	rules   []Rule
	logger  *logger.Logger
}

// NewEngine compiles the catalog rules
func NewEngine(cat *catalog.Catalog, log *logger.Logger) (*Engine, error) {
	rules, err := Compile(cat)
	if err != nil {
		return nil, err
	}
	return NewEngineWithRules(cat, rules, log), nil
}

// NewEngineWithRules uses an explicit registry (order = application order)
func NewEngineWithRules(cat *catalog.Catalog, rules []Rule, log *logger.Logger) *Engine {
	return &Engine{
		catalog: cat,
		rules:   rules,
		logger:  log,
	}
}

// Rules returns the registry in application order
func (e *Engine) Rules() []Rule {
	return e.rules
}

// Derive adjusts bc.Baseline with every matching rule. Pure and deterministic; never fails.
func (e *Engine) Derive(bc contracts.BrewContext) contracts.Derivation {
	out := contracts.Derivation{
		Recipe:      bc.Baseline.Clone(),
		Trace:       []contracts.TraceEntry{},
		EvidenceIDs: []string{},
	}

	lim := e.catalog.LimitsFor(bc.Device)
	f := newFacts(bc, e.catalog)
	clampedCount := 0

	for _, rule := range e.rules {
		if !rule.Applies(f) {
			continue
		}

		clamped := applyDelta(&out.Recipe, rule.Delta, lim)
		if clamped {
			clampedCount++
		}

		evidence := make([]string, len(rule.EvidenceIDs))
		copy(evidence, rule.EvidenceIDs)

		out.Trace = append(out.Trace, contracts.TraceEntry{
			RuleID:      rule.ID,
			Label:       rule.Label,
			Delta:       rule.Delta,
			Weight:      rule.Weight,
			Confidence:  rule.Confidence,
			EvidenceIDs: evidence,
			Clamped:     clamped,
		})
		// 중복 제거하지 않음
		out.EvidenceIDs = append(out.EvidenceIDs, rule.EvidenceIDs...)
	}

	e.finalize(&out.Recipe, bc.Device)

	e.logger.WithFields(map[string]interface{}{
		"device":  bc.Device,
		"matched": len(out.Trace),
		"clamped": clampedCount,
		"roast":   string(f.roast),
		"process": string(f.process),
	}).Debug("Derivation completed")

	return out
}

// finalize sets the pour style from device identity only
func (e *Engine) finalize(r *contracts.Recipe, device string) {
	switch {
	case e.catalog.IsImmersion(classify.Normalize(device)):
		r.Pour.Style = contracts.PourImmersion
		r.Agitation = contracts.AgitationNone
	case e.catalog.IsSwitch(device):
		r.Pour.Style = contracts.PourSwitch
	default:
		r.Pour.Style = contracts.PourPulse
	}
}

// applyDelta adds d to r and clamps each touched field to lim.
// Reports whether any clamp fired.
func applyDelta(r *contracts.Recipe, d contracts.Delta, lim contracts.Limits) bool {
	clamped := false

	if d.GrindShift != 0 {
		before := r.Grind.Index()
		r.Grind = r.Grind.Shift(d.GrindShift)
		if before >= 0 && r.Grind.Index()-before != d.GrindShift {
			clamped = true
		}
	}

	// 값이 있는 필드만 clamp (baseline이 범위 밖이어도 룰이 건드리지 않으면 유지)
	if d.TemperatureC != 0 {
		v, c := lim.Temp.Clamp(r.TemperatureC + d.TemperatureC)
		r.TemperatureC = v
		clamped = clamped || c
	}
	if d.TimeSec != 0 {
		v, c := lim.Time.Clamp(r.TimeSec + d.TimeSec)
		r.TimeSec = v
		clamped = clamped || c
	}
	if d.Ratio != 0 {
		v, c := lim.Ratio.Clamp(r.Ratio + d.Ratio)
		r.Ratio = v
		clamped = clamped || c
	}

	if d.PourNote != "" {
		r.Pour.Notes = append(r.Pour.Notes, d.PourNote)
	}

	return clamped
}
