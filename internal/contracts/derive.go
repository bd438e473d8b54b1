package contracts

// Confidence tags how well-supported a rule is
type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceMid  Confidence = "mid"
	ConfidenceLow  Confidence = "low"
)

// Valid reports whether c is a known confidence tag
func (c Confidence) Valid() bool {
	return c == ConfidenceHigh || c == ConfidenceMid || c == ConfidenceLow
}

// BrewContext is the immutable input of one derivation
type BrewContext struct {
	Device    string `json:"device"`
	Roast     string `json:"roast"`
	Process   string `json:"process"`
	Origin    string `json:"origin"`
	AgingDays *int   `json:"aging_days,omitempty"`
	Storage   string `json:"storage,omitempty"`
	Baseline  Recipe `json:"baseline"`
}

// Delta is the adjustment a rule contributes
type Delta struct {
	TemperatureC float64 `yaml:"temp_c" json:"temp_c"`
	TimeSec      float64 `yaml:"time_sec" json:"time_sec"`
	Ratio        float64 `yaml:"ratio" json:"ratio"`
	GrindShift   int     `yaml:"grind_shift" json:"grind_shift"` // + = finer
	PourNote     string  `yaml:"pour_note" json:"pour_note,omitempty"`
}

// TraceEntry records one applied rule
type TraceEntry struct {
	RuleID      string     `json:"rule_id"`
	Label       string     `json:"label"`
	Delta       Delta      `json:"delta"`
	Weight      float64    `json:"weight"`
	Confidence  Confidence `json:"confidence"`
	EvidenceIDs []string   `json:"evidence_ids"`
	Clamped     bool       `json:"clamped"`
}

// Derivation is the rule engine output
type Derivation struct {
	Recipe      Recipe       `json:"recipe"`
	Trace       []TraceEntry `json:"trace"`
	EvidenceIDs []string     `json:"evidence_ids"`
}
