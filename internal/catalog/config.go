package catalog

import "github.com/wonny/driplog/backend/internal/contracts"

// File는 카탈로그 YAML 전체 구조
type File struct {
	Meta          Meta                        `yaml:"meta" json:"meta"`
	Evidence      []contracts.EvidenceSource  `yaml:"evidence" json:"evidence"`
	Devices       []contracts.Device          `yaml:"devices" json:"devices"`
	Limits        map[string]contracts.Limits `yaml:"limits" json:"limits"`
	ClassKeywords []ClassKeywords             `yaml:"class_keywords" json:"class_keywords"`
	Finalize      Finalize                    `yaml:"finalize" json:"finalize"`
	Rules         []RuleSpec                  `yaml:"rules" json:"rules"`
}

// Meta 메타 정보
type Meta struct {
	CatalogID string `yaml:"catalog_id" json:"catalog_id"`
	Version   string `yaml:"version" json:"version"`
}

// ClassKeywords maps generic shape/technique words to device classes
type ClassKeywords struct {
	Classes  []contracts.DeviceClass `yaml:"classes" json:"classes"`
	Keywords []string                `yaml:"keywords" json:"keywords"`
}

// Finalize decides the pour style from device identity only
type Finalize struct {
	ImmersionPattern string   `yaml:"immersion_pattern" json:"immersion_pattern"`
	SwitchDevices    []string `yaml:"switch_devices" json:"switch_devices"`
}

// RuleSpec is the declarative form of one adjustment rule
type RuleSpec struct {
	ID         string               `yaml:"id" json:"id"`
	Label      string               `yaml:"label" json:"label"`
	When       Condition            `yaml:"when" json:"when"`
	Delta      contracts.Delta      `yaml:"delta" json:"delta"`
	Weight     float64              `yaml:"weight" json:"weight"`
	Confidence contracts.Confidence `yaml:"confidence" json:"confidence"`
	Evidence   []string             `yaml:"evidence" json:"evidence"`
}

// Condition is a conjunction: every non-empty field must hold.
// Within one list field any listed value matches.
type Condition struct {
	Roast         []string                `yaml:"roast,omitempty" json:"roast,omitempty"`     // roast bands
	Process       []string                `yaml:"process,omitempty" json:"process,omitempty"` // process families
	Origin        []string                `yaml:"origin,omitempty" json:"origin,omitempty"`   // origin groups
	Devices       []string                `yaml:"devices,omitempty" json:"devices,omitempty"`
	DeviceClasses []contracts.DeviceClass `yaml:"device_classes,omitempty" json:"device_classes,omitempty"`
	DevicePattern string                  `yaml:"device_pattern,omitempty" json:"device_pattern,omitempty"`
	AgingMax      *int                    `yaml:"aging_max,omitempty" json:"aging_max,omitempty"`   // agingDays <= N
	AgingOver     *int                    `yaml:"aging_over,omitempty" json:"aging_over,omitempty"` // agingDays > N
	Storage       string                  `yaml:"storage,omitempty" json:"storage,omitempty"`       // regexp
}

// IsEmpty reports whether the condition has no predicate (always true)
func (c Condition) IsEmpty() bool {
	return len(c.Roast) == 0 && len(c.Process) == 0 && len(c.Origin) == 0 &&
		len(c.Devices) == 0 && len(c.DeviceClasses) == 0 && c.DevicePattern == "" &&
		c.AgingMax == nil && c.AgingOver == nil && c.Storage == ""
}
