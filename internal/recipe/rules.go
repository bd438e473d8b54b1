package recipe

import (
	"fmt"
	"regexp"

	"github.com/wonny/driplog/backend/internal/catalog"
	"github.com/wonny/driplog/backend/internal/classify"
	"github.com/wonny/driplog/backend/internal/contracts"
)

// facts is the classified view of a BrewContext, computed once per derivation
type facts struct {
	ctx     contracts.BrewContext
	device  string // normalized device name
	class   contracts.DeviceClass
	known   bool
	roast   classify.Tag
	process classify.Tag
	origin  classify.Tag
	storage string // normalized
}

func newFacts(bc contracts.BrewContext, cat *catalog.Catalog) *facts {
	f := &facts{
		ctx:     bc,
		device:  classify.Normalize(bc.Device),
		roast:   classify.Roast.Classify(bc.Roast),
		process: classify.Process.Classify(bc.Process),
		origin:  classify.Origin.Classify(bc.Origin),
		storage: classify.Normalize(bc.Storage),
	}
	if d, ok := cat.Device(bc.Device); ok {
		f.class = d.Class
		f.known = true
	}
	return f
}

// Predicate decides whether a rule applies
type Predicate func(f *facts) bool

// Rule is one compiled adjustment rule. Stateless.
type Rule struct {
	ID          string
	Label       string
	Applies     Predicate
	Delta       contracts.Delta
	Weight      float64
	Confidence  contracts.Confidence
	EvidenceIDs []string
}

// Compile turns the catalog's declarative rules into predicates, preserving registry order
func Compile(cat *catalog.Catalog) ([]Rule, error) {
	specs := cat.Rules()
	rules := make([]Rule, 0, len(specs))

	for i, spec := range specs {
		pred, err := compileCondition(spec.When)
		if err != nil {
			return nil, fmt.Errorf("rule[%d] %s: %w", i, spec.ID, err)
		}

		evidence := make([]string, len(spec.Evidence))
		copy(evidence, spec.Evidence)

		rules = append(rules, Rule{
			ID:          spec.ID,
			Label:       spec.Label,
			Applies:     pred,
			Delta:       spec.Delta,
			Weight:      spec.Weight,
			Confidence:  spec.Confidence,
			EvidenceIDs: evidence,
		})
	}

	return rules, nil
}

// compileCondition builds the conjunction of every non-empty clause
func compileCondition(c catalog.Condition) (Predicate, error) {
	var clauses []Predicate

	if len(c.Roast) > 0 {
		set := tagSet(c.Roast)
		clauses = append(clauses, func(f *facts) bool { return set[f.roast] })
	}
	if len(c.Process) > 0 {
		set := tagSet(c.Process)
		clauses = append(clauses, func(f *facts) bool { return set[f.process] })
	}
	if len(c.Origin) > 0 {
		set := tagSet(c.Origin)
		clauses = append(clauses, func(f *facts) bool { return set[f.origin] })
	}
	if len(c.Devices) > 0 {
		set := make(map[string]bool, len(c.Devices))
		for _, d := range c.Devices {
			set[d] = true
		}
		clauses = append(clauses, func(f *facts) bool { return set[f.ctx.Device] })
	}
	if len(c.DeviceClasses) > 0 {
		set := make(map[contracts.DeviceClass]bool, len(c.DeviceClasses))
		for _, cls := range c.DeviceClasses {
			set[cls] = true
		}
		clauses = append(clauses, func(f *facts) bool { return f.known && set[f.class] })
	}
	if c.DevicePattern != "" {
		re, err := regexp.Compile(c.DevicePattern)
		if err != nil {
			return nil, fmt.Errorf("device_pattern: %w", err)
		}
		clauses = append(clauses, func(f *facts) bool { return f.device != "" && re.MatchString(f.device) })
	}
	if c.AgingMax != nil {
		maxDays := *c.AgingMax
		clauses = append(clauses, func(f *facts) bool { return f.ctx.AgingDays != nil && *f.ctx.AgingDays <= maxDays })
	}
	if c.AgingOver != nil {
		overDays := *c.AgingOver
		clauses = append(clauses, func(f *facts) bool { return f.ctx.AgingDays != nil && *f.ctx.AgingDays > overDays })
	}
	if c.Storage != "" {
		re, err := regexp.Compile(c.Storage)
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
		clauses = append(clauses, func(f *facts) bool { return f.storage != "" && re.MatchString(f.storage) })
	}

	return func(f *facts) bool {
		for _, clause := range clauses {
			if !clause(f) {
				return false
			}
		}
		return true
	}, nil
}

func tagSet(values []string) map[classify.Tag]bool {
	set := make(map[classify.Tag]bool, len(values))
	for _, v := range values {
		set[classify.Tag(v)] = true
	}
	return set
}
