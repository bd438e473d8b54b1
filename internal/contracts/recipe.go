package contracts

// GrindGroup is a coarseness bucket on a six-step ordinal scale
type GrindGroup string

const (
	GrindCoarse       GrindGroup = "coarse"
	GrindMediumCoarse GrindGroup = "medium-coarse"
	GrindMedium       GrindGroup = "medium"
	GrindMediumFine   GrindGroup = "medium-fine"
	GrindFine         GrindGroup = "fine"
	GrindExtraFine    GrindGroup = "extra-fine"
)

// GrindOrder is the total order coarse → fine
var GrindOrder = []GrindGroup{
	GrindCoarse,
	GrindMediumCoarse,
	GrindMedium,
	GrindMediumFine,
	GrindFine,
	GrindExtraFine,
}

// Index returns the position in GrindOrder, or -1 if unknown
func (g GrindGroup) Index() int {
	for i, known := range GrindOrder {
		if g == known {
			return i
		}
	}
	return -1
}

// Valid reports whether g is a known grind group
func (g GrindGroup) Valid() bool {
	return g.Index() >= 0
}

// Shift moves g by steps along GrindOrder (positive = finer), clamped to both ends.
// Unknown groups are returned unchanged.
func (g GrindGroup) Shift(steps int) GrindGroup {
	idx := g.Index()
	if idx < 0 {
		return g
	}
	idx += steps
	if idx < 0 {
		idx = 0
	}
	if idx > len(GrindOrder)-1 {
		idx = len(GrindOrder) - 1
	}
	return GrindOrder[idx]
}

// PourStyle describes how water is delivered
type PourStyle string

const (
	PourPulse      PourStyle = "pulse"
	PourContinuous PourStyle = "continuous"
	PourImmersion  PourStyle = "immersion"
	PourSwitch     PourStyle = "switch"
)

// Valid reports whether s is a known pour style
func (s PourStyle) Valid() bool {
	switch s {
	case PourPulse, PourContinuous, PourImmersion, PourSwitch:
		return true
	}
	return false
}

// Agitation level during the brew
type Agitation string

const (
	AgitationNone   Agitation = "none"
	AgitationLight  Agitation = "light"
	AgitationMedium Agitation = "medium"
)

// Valid reports whether a is a known agitation level
func (a Agitation) Valid() bool {
	switch a {
	case AgitationNone, AgitationLight, AgitationMedium:
		return true
	}
	return false
}

// Pour describes the pour technique
type Pour struct {
	Style      PourStyle `json:"style"`
	BloomSec   *float64  `json:"bloom_sec,omitempty"`
	PulseCount *int      `json:"pulse_count,omitempty"`
	Notes      []string  `json:"notes"`
}

// Recipe is a concrete brew recipe
type Recipe struct {
	Grind        GrindGroup `json:"grind_group"`
	TemperatureC float64    `json:"temperature_c"`
	TimeSec      float64    `json:"time_sec"`
	Ratio        float64    `json:"ratio"` // water mass / dose mass
	Pour         Pour       `json:"pour"`
	Agitation    Agitation  `json:"agitation"`
}

// Clone returns a deep copy that shares no memory with r
func (r Recipe) Clone() Recipe {
	out := r
	if r.Pour.BloomSec != nil {
		v := *r.Pour.BloomSec
		out.Pour.BloomSec = &v
	}
	if r.Pour.PulseCount != nil {
		v := *r.Pour.PulseCount
		out.Pour.PulseCount = &v
	}
	out.Pour.Notes = make([]string, len(r.Pour.Notes))
	copy(out.Pour.Notes, r.Pour.Notes)
	return out
}
