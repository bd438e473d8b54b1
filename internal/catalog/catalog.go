package catalog

import (
	"fmt"
	"regexp"

	"github.com/wonny/driplog/backend/internal/contracts"
)

// Catalog is the read-only device registry shared by both engines.
// Safe for concurrent use once built.
type Catalog struct {
	file     *File
	hash     string
	index    map[string]int
	evidence map[string]contracts.EvidenceSource

	immersion *regexp.Regexp
	switches  map[string]bool
}

// New builds a Catalog from a validated File
func New(f *File) (*Catalog, error) {
	if err := Validate(f); err != nil {
		return nil, err
	}

	hash, err := Hash(f)
	if err != nil {
		return nil, fmt.Errorf("hash catalog: %w", err)
	}

	c := &Catalog{
		file:      f,
		hash:      hash,
		index:     make(map[string]int, len(f.Devices)),
		evidence:  make(map[string]contracts.EvidenceSource, len(f.Evidence)),
		immersion: regexp.MustCompile(f.Finalize.ImmersionPattern), // Validate에서 컴파일 확인됨
		switches:  make(map[string]bool, len(f.Finalize.SwitchDevices)),
	}
	for i, d := range f.Devices {
		c.index[d.Name] = i
	}
	for _, e := range f.Evidence {
		c.evidence[e.ID] = e
	}
	for _, name := range f.Finalize.SwitchDevices {
		c.switches[name] = true
	}

	return c, nil
}

// Default returns the embedded catalog
func Default() (*Catalog, error) {
	f, err := Parse(defaultYAML)
	if err != nil {
		return nil, fmt.Errorf("embedded catalog: %w", err)
	}
	return New(f)
}

// MustDefault is Default for tests and package-level wiring
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Open loads the catalog from path, or the embedded one when path is empty
func Open(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	f, _, err := LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return New(f)
}

// File returns the underlying declarative catalog
func (c *Catalog) File() *File {
	return c.file
}

// Hash returns the SHA256 of the catalog revision
func (c *Catalog) Hash() string {
	return c.hash
}

// Version returns meta.version
func (c *Catalog) Version() string {
	return c.file.Meta.Version
}

// Devices returns all devices in declaration order
func (c *Catalog) Devices() []contracts.Device {
	return c.file.Devices
}

// Names returns device names in declaration order
func (c *Catalog) Names() []string {
	names := make([]string, len(c.file.Devices))
	for i, d := range c.file.Devices {
		names[i] = d.Name
	}
	return names
}

// Device looks up a device by canonical name
func (c *Catalog) Device(name string) (*contracts.Device, bool) {
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}
	return &c.file.Devices[i], true
}

// LimitsFor returns the bounds for a device; unknown ids get the generic range.
// Never fails.
func (c *Catalog) LimitsFor(name string) contracts.Limits {
	if lim, ok := c.file.Limits[name]; ok {
		return lim
	}
	return contracts.GenericLimits()
}

// HasLimits reports whether the device has its own limits entry
func (c *Catalog) HasLimits(name string) bool {
	_, ok := c.file.Limits[name]
	return ok
}

// Evidence resolves an evidence id
func (c *Catalog) Evidence(id string) (contracts.EvidenceSource, bool) {
	e, ok := c.evidence[id]
	return e, ok
}

// ClassKeywords returns the class-level keyword table
func (c *Catalog) ClassKeywords() []ClassKeywords {
	return c.file.ClassKeywords
}

// Rules returns rule specs in registry order
func (c *Catalog) Rules() []RuleSpec {
	return c.file.Rules
}

// IsImmersion reports whether the device name belongs to the immersion family
func (c *Catalog) IsImmersion(name string) bool {
	return c.immersion.MatchString(name)
}

// IsSwitch reports whether the device is a switch-style dripper
func (c *Catalog) IsSwitch(name string) bool {
	return c.switches[name]
}

// Warnings returns non-fatal findings for this catalog
func (c *Catalog) Warnings() []Warning {
	return Warn(c.file)
}

// BaselineRecipe builds the starting recipe from the device's brewing guide
func (c *Catalog) BaselineRecipe(name string) (contracts.Recipe, bool) {
	d, ok := c.Device(name)
	if !ok {
		return contracts.Recipe{}, false
	}

	h := d.Knowledge.HowTo
	style := h.PourStyle
	if style == "" {
		style = contracts.PourPulse
	}
	agitation := h.Agitation
	if agitation == "" {
		agitation = contracts.AgitationNone
	}

	r := contracts.Recipe{
		Grind:        h.Grind,
		TemperatureC: h.TemperatureC,
		TimeSec:      h.TimeSec,
		Ratio:        h.Ratio,
		Pour: contracts.Pour{
			Style:      style,
			BloomSec:   h.BloomSec,
			PulseCount: h.PulseCount,
		},
		Agitation: agitation,
	}
	if h.Pour != "" {
		r.Pour.Notes = []string{h.Pour}
	}

	// catalog 데이터와 메모리를 공유하지 않도록 복사
	return r.Clone(), true
}
