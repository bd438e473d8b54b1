package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/wonny/driplog/backend/internal/classify"
	"github.com/wonny/driplog/backend/internal/contracts"
)

// ValidationError 검증 실패 (로드 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
// 실패 시 error 반환 (카탈로그 로드 중단)
func Validate(f *File) error {
	// === Meta ===
	if f.Meta.CatalogID == "" {
		return ValidationError{"meta.catalog_id", "required"}
	}

	// === Evidence ===
	evidence := make(map[string]bool, len(f.Evidence))
	for i, e := range f.Evidence {
		if e.ID == "" {
			return ValidationError{fmt.Sprintf("evidence[%d].id", i), "required"}
		}
		if evidence[e.ID] {
			return ValidationError{fmt.Sprintf("evidence[%d].id", i), fmt.Sprintf("duplicate id %q", e.ID)}
		}
		evidence[e.ID] = true
	}

	// === Devices ===
	if len(f.Devices) == 0 {
		return ValidationError{"devices", "must not be empty"}
	}
	devices := make(map[string]bool, len(f.Devices))
	for i, d := range f.Devices {
		field := fmt.Sprintf("devices[%d]", i)
		if d.Name == "" {
			return ValidationError{field + ".name", "required"}
		}
		if devices[d.Name] {
			return ValidationError{field + ".name", fmt.Sprintf("duplicate device %q", d.Name)}
		}
		devices[d.Name] = true

		if !d.Class.Valid() {
			return ValidationError{field + ".class", fmt.Sprintf("unknown class %q", d.Class)}
		}
		for _, v := range d.Profile.Values() {
			if err := validateUnitRange(v, field+".profile"); err != nil {
				return err
			}
		}

		howto := d.Knowledge.HowTo
		if !howto.Grind.Valid() {
			return ValidationError{field + ".knowledge.howto.grind", fmt.Sprintf("unknown grind group %q", howto.Grind)}
		}
		if howto.PourStyle != "" && !howto.PourStyle.Valid() {
			return ValidationError{field + ".knowledge.howto.pour_style", fmt.Sprintf("unknown pour style %q", howto.PourStyle)}
		}
		if howto.Agitation != "" && !howto.Agitation.Valid() {
			return ValidationError{field + ".knowledge.howto.agitation", fmt.Sprintf("unknown agitation %q", howto.Agitation)}
		}
		if howto.TemperatureC <= 0 || howto.TimeSec <= 0 || howto.Ratio <= 0 {
			return ValidationError{field + ".knowledge.howto", "temp_c, time_sec and ratio must be > 0"}
		}

		for j, src := range d.Evidence.Sources {
			if !evidence[src] {
				return ValidationError{fmt.Sprintf("%s.evidence.sources[%d]", field, j), fmt.Sprintf("unknown evidence id %q", src)}
			}
		}
	}

	// === Limits ===
	for name, lim := range f.Limits {
		field := fmt.Sprintf("limits[%s]", name)
		if !devices[name] {
			return ValidationError{field, "unknown device"}
		}
		if err := validateRange(lim.Temp, field+".temp"); err != nil {
			return err
		}
		if err := validateRange(lim.Time, field+".time"); err != nil {
			return err
		}
		if err := validateRange(lim.Ratio, field+".ratio"); err != nil {
			return err
		}
	}

	// === Class keywords ===
	for i, ck := range f.ClassKeywords {
		for _, c := range ck.Classes {
			if !c.Valid() {
				return ValidationError{fmt.Sprintf("class_keywords[%d].classes", i), fmt.Sprintf("unknown class %q", c)}
			}
		}
		if len(ck.Keywords) == 0 {
			return ValidationError{fmt.Sprintf("class_keywords[%d].keywords", i), "must not be empty"}
		}
	}

	// === Finalize ===
	if _, err := regexp.Compile(f.Finalize.ImmersionPattern); err != nil {
		return ValidationError{"finalize.immersion_pattern", err.Error()}
	}
	for i, name := range f.Finalize.SwitchDevices {
		if !devices[name] {
			return ValidationError{fmt.Sprintf("finalize.switch_devices[%d]", i), fmt.Sprintf("unknown device %q", name)}
		}
	}

	// === Rules ===
	ruleIDs := make(map[string]bool, len(f.Rules))
	for i, r := range f.Rules {
		field := fmt.Sprintf("rules[%d]", i)
		if r.ID == "" {
			return ValidationError{field + ".id", "required"}
		}
		if ruleIDs[r.ID] {
			return ValidationError{field + ".id", fmt.Sprintf("duplicate rule %q", r.ID)}
		}
		ruleIDs[r.ID] = true

		if r.Weight < 0 || r.Weight > 2 {
			return ValidationError{field + ".weight", "must be in range [0, 2]"}
		}
		if !r.Confidence.Valid() {
			return ValidationError{field + ".confidence", fmt.Sprintf("unknown confidence %q", r.Confidence)}
		}
		for j, id := range r.Evidence {
			if !evidence[id] {
				return ValidationError{fmt.Sprintf("%s.evidence[%d]", field, j), fmt.Sprintf("unknown evidence id %q", id)}
			}
		}
		if err := validateCondition(r.When, field+".when", devices); err != nil {
			return err
		}
	}

	return nil
}

func validateCondition(c Condition, field string, devices map[string]bool) error {
	if err := validateTags(c.Roast, classify.Roast, field+".roast"); err != nil {
		return err
	}
	if err := validateTags(c.Process, classify.Process, field+".process"); err != nil {
		return err
	}
	if err := validateTags(c.Origin, classify.Origin, field+".origin"); err != nil {
		return err
	}
	for i, name := range c.Devices {
		if !devices[name] {
			return ValidationError{fmt.Sprintf("%s.devices[%d]", field, i), fmt.Sprintf("unknown device %q", name)}
		}
	}
	for i, cls := range c.DeviceClasses {
		if !cls.Valid() {
			return ValidationError{fmt.Sprintf("%s.device_classes[%d]", field, i), fmt.Sprintf("unknown class %q", cls)}
		}
	}
	if c.DevicePattern != "" {
		if _, err := regexp.Compile(c.DevicePattern); err != nil {
			return ValidationError{field + ".device_pattern", err.Error()}
		}
	}
	if c.Storage != "" {
		if _, err := regexp.Compile(c.Storage); err != nil {
			return ValidationError{field + ".storage", err.Error()}
		}
	}
	if c.AgingMax != nil && *c.AgingMax < 0 {
		return ValidationError{field + ".aging_max", "must be >= 0"}
	}
	if c.AgingOver != nil && *c.AgingOver < 0 {
		return ValidationError{field + ".aging_over", "must be >= 0"}
	}
	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(f *File) []Warning {
	var warnings []Warning

	for _, d := range f.Devices {
		if _, ok := f.Limits[d.Name]; !ok {
			warnings = append(warnings, Warning{
				Code:    "NO_LIMITS",
				Message: fmt.Sprintf("%s: limits 없음, generic 범위 사용", d.Name),
			})
		}
		if len(d.Keywords) == 0 {
			warnings = append(warnings, Warning{
				Code:    "NO_KEYWORDS",
				Message: fmt.Sprintf("%s: keywords 없음, theory 매칭 불가", d.Name),
			})
		}
	}

	// 기준 레시피가 자기 limits 밖이면 첫 룰부터 clamp됨
	for _, d := range f.Devices {
		lim, ok := f.Limits[d.Name]
		if !ok {
			continue
		}
		h := d.Knowledge.HowTo
		if !lim.Temp.Contains(h.TemperatureC) || !lim.Time.Contains(h.TimeSec) || !lim.Ratio.Contains(h.Ratio) {
			warnings = append(warnings, Warning{
				Code:    "BASELINE_OUT_OF_LIMITS",
				Message: fmt.Sprintf("%s: howto 기준값이 limits 범위 밖", d.Name),
			})
		}
	}

	for _, r := range f.Rules {
		if r.When.IsEmpty() {
			warnings = append(warnings, Warning{
				Code:    "UNCONDITIONAL_RULE",
				Message: fmt.Sprintf("%s: when 조건 없음, 모든 컨텍스트에 적용", r.ID),
			})
		}
		if len(r.Evidence) == 0 {
			warnings = append(warnings, Warning{
				Code:    "NO_EVIDENCE",
				Message: fmt.Sprintf("%s: 근거 없음", r.ID),
			})
		}
	}

	return warnings
}

// === Helper Functions ===

func validateTags(values []string, table *classify.Table, field string) error {
	for i, v := range values {
		if !table.Has(classify.Tag(v)) {
			return ValidationError{fmt.Sprintf("%s[%d]", field, i), fmt.Sprintf("unknown %s tag %q (want one of %s)", table.Name(), v, joinTags(table.Tags()))}
		}
	}
	return nil
}

func joinTags(tags []classify.Tag) string {
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

func validateRange(r contracts.Range, field string) error {
	if r.Lo > r.Hi {
		return ValidationError{field, fmt.Sprintf("lo=%.2f must be <= hi=%.2f", r.Lo, r.Hi)}
	}
	return nil
}

// validateUnitRange는 값이 0~1 범위인지 검증
func validateUnitRange(v float64, field string) error {
	if v < 0 || v > 1 {
		return ValidationError{field, "must be in range [0, 1]"}
	}
	return nil
}
