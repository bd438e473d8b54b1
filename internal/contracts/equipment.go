package contracts

// DeviceClass classifies a brewing device
type DeviceClass string

const (
	ClassConicalFast       DeviceClass = "conical-fast"
	ClassConicalRestricted DeviceClass = "conical-restricted"
	ClassFlatBed           DeviceClass = "flat-bed"
	ClassImmersionSwitch   DeviceClass = "immersion-switch"
	ClassPress             DeviceClass = "press"
	ClassAero              DeviceClass = "aero"
	ClassSiphon            DeviceClass = "siphon"
	ClassMoka              DeviceClass = "moka"
	ClassEspresso          DeviceClass = "espresso"
	ClassOther             DeviceClass = "other"
)

// AllDeviceClasses lists the closed class enumeration in declaration order
var AllDeviceClasses = []DeviceClass{
	ClassConicalFast,
	ClassConicalRestricted,
	ClassFlatBed,
	ClassImmersionSwitch,
	ClassPress,
	ClassAero,
	ClassSiphon,
	ClassMoka,
	ClassEspresso,
	ClassOther,
}

// Valid reports whether c belongs to the class enumeration
func (c DeviceClass) Valid() bool {
	for _, known := range AllDeviceClasses {
		if c == known {
			return true
		}
	}
	return false
}

// IsDrip reports whether the class belongs to the default (non-espresso/moka/other) candidate set
func (c DeviceClass) IsDrip() bool {
	switch c {
	case ClassConicalFast, ClassConicalRestricted, ClassFlatBed, ClassImmersionSwitch,
		ClassPress, ClassAero, ClassSiphon:
		return true
	default:
		return false
	}
}

// Device is one cataloged brewing apparatus
// ⭐ SSOT: 기구 정의는 catalog에서만 로드
type Device struct {
	Name      string             `yaml:"name" json:"name"` // canonical id
	Class     DeviceClass        `yaml:"class" json:"class"`
	Profile   PhysicalProfile    `yaml:"profile" json:"profile"`
	Runtime   *RuntimeAdjustment `yaml:"runtime,omitempty" json:"runtime,omitempty"`
	Knowledge KnowledgeBase      `yaml:"knowledge" json:"knowledge"`
	Evidence  DeviceEvidence     `yaml:"evidence" json:"evidence"`
	Keywords  []string           `yaml:"keywords" json:"keywords"`
}

// PhysicalProfile is descriptive only, values in [0,1]
type PhysicalProfile struct {
	Clarity   float64 `yaml:"clarity" json:"clarity"`
	Body      float64 `yaml:"body" json:"body"`
	Oil       float64 `yaml:"oil" json:"oil"`
	Speed     float64 `yaml:"speed" json:"speed"`
	Immersion float64 `yaml:"immersion" json:"immersion"`
}

// Values returns the profile in field order
func (p PhysicalProfile) Values() []float64 {
	return []float64{p.Clarity, p.Body, p.Oil, p.Speed, p.Immersion}
}

// RuntimeAdjustment is consumed by external brew-time prediction
type RuntimeAdjustment struct {
	TimeScale  float64 `yaml:"time_scale" json:"time_scale"`
	TempOffset float64 `yaml:"temp_offset" json:"temp_offset"`
}

// KnowledgeBase holds the brewing guide for a device
type KnowledgeBase struct {
	Pros  []string `yaml:"pros" json:"pros"`
	Cons  []string `yaml:"cons" json:"cons"`
	HowTo HowTo    `yaml:"howto" json:"howto"`
}

// HowTo is the baseline brewing guide
type HowTo struct {
	Grind        GrindGroup `yaml:"grind" json:"grind"`
	TemperatureC float64    `yaml:"temp_c" json:"temp_c"`
	TimeSec      float64    `yaml:"time_sec" json:"time_sec"`
	Ratio        float64    `yaml:"ratio" json:"ratio"`
	Pour         string     `yaml:"pour" json:"pour"`
	PourStyle    PourStyle  `yaml:"pour_style" json:"pour_style"`
	BloomSec     *float64   `yaml:"bloom_sec,omitempty" json:"bloom_sec,omitempty"`
	PulseCount   *int       `yaml:"pulse_count,omitempty" json:"pulse_count,omitempty"`
	Agitation    Agitation  `yaml:"agitation" json:"agitation"`
	Pairings     []string   `yaml:"pairings" json:"pairings"`
}

// DeviceEvidence is purely explanatory
type DeviceEvidence struct {
	Features []string `yaml:"features" json:"features"`
	Claims   []string `yaml:"claims" json:"claims"`
	Sources  []string `yaml:"sources" json:"sources"` // evidence ids
}

// EvidenceSource is a citable source referenced by devices and rules
type EvidenceSource struct {
	ID    string `yaml:"id" json:"id"`
	Title string `yaml:"title" json:"title"`
	URL   string `yaml:"url,omitempty" json:"url,omitempty"`
}

// Range is a closed interval [Lo, Hi]
type Range struct {
	Lo float64 `yaml:"lo" json:"lo"`
	Hi float64 `yaml:"hi" json:"hi"`
}

// Clamp returns v bounded to the range and whether it had to move
func (r Range) Clamp(v float64) (float64, bool) {
	if v < r.Lo {
		return r.Lo, true
	}
	if v > r.Hi {
		return r.Hi, true
	}
	return v, false
}

// Contains reports whether v lies within the range
func (r Range) Contains(v float64) bool {
	return v >= r.Lo && v <= r.Hi
}

// Limits bounds a derived recipe for one device
type Limits struct {
	Temp  Range `yaml:"temp" json:"temp"`
	Time  Range `yaml:"time" json:"time"`
	Ratio Range `yaml:"ratio" json:"ratio"`
}

// GenericLimits is the fallback for devices absent from the limits table
func GenericLimits() Limits {
	return Limits{
		Temp:  Range{Lo: 75, Hi: 93},
		Time:  Range{Lo: 80, Hi: 240},
		Ratio: Range{Lo: 13, Hi: 18},
	}
}
