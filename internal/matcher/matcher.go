package matcher

import (
	"strings"

	"github.com/wonny/driplog/backend/internal/catalog"
	"github.com/wonny/driplog/backend/internal/classify"
	"github.com/wonny/driplog/backend/internal/contracts"
)

// Match is the result of a theory-hint lookup
type Match struct {
	Classes []contracts.DeviceClass `json:"classes"`
	Names   []string                `json:"names"`
}

// HasName reports whether the device name was matched
func (m Match) HasName(name string) bool {
	for _, n := range m.Names {
		if n == name {
			return true
		}
	}
	return false
}

// HasClass reports whether the class was matched
func (m Match) HasClass(c contracts.DeviceClass) bool {
	for _, mc := range m.Classes {
		if mc == c {
			return true
		}
	}
	return false
}

// IsEmpty reports whether nothing matched
func (m Match) IsEmpty() bool {
	return len(m.Names) == 0 && len(m.Classes) == 0
}

type deviceKeywords struct {
	name     string
	class    contracts.DeviceClass
	keywords []string // normalized
}

type classKeywords struct {
	classes  []contracts.DeviceClass
	keywords []string // normalized
}

// Matcher maps free-text hints to devices by keyword containment.
// Immutable after New; safe for concurrent use.
type Matcher struct {
	devices []deviceKeywords
	classes []classKeywords
}

// New builds the keyword tables from the catalog
func New(cat *catalog.Catalog) *Matcher {
	m := &Matcher{}

	for _, d := range cat.Devices() {
		dk := deviceKeywords{name: d.Name, class: d.Class}
		// 정식 이름도 키워드로 취급
		dk.keywords = appendNormalized(dk.keywords, d.Name)
		for _, kw := range d.Keywords {
			dk.keywords = appendNormalized(dk.keywords, kw)
		}
		m.devices = append(m.devices, dk)
	}

	for _, ck := range cat.ClassKeywords() {
		entry := classKeywords{classes: ck.Classes}
		for _, kw := range ck.Keywords {
			entry.keywords = appendNormalized(entry.keywords, kw)
		}
		m.classes = append(m.classes, entry)
	}

	return m
}

// MatchTheory returns every device and class whose keywords occur in text.
// Empty input or no hit yields empty (non-nil) sets. Never fails.
func (m *Matcher) MatchTheory(text string) Match {
	out := Match{
		Classes: []contracts.DeviceClass{},
		Names:   []string{},
	}

	norm := classify.Normalize(text)
	if norm == "" {
		return out
	}

	seenClass := make(map[contracts.DeviceClass]bool)
	addClass := func(c contracts.DeviceClass) {
		if !seenClass[c] {
			seenClass[c] = true
			out.Classes = append(out.Classes, c)
		}
	}

	hits := m.deviceHits(norm)
	for i, dk := range m.devices {
		if hits[i] {
			out.Names = append(out.Names, dk.name)
			addClass(dk.class)
		}
	}

	for _, ck := range m.classes {
		if containsAny(norm, ck.keywords) {
			for _, c := range ck.classes {
				addClass(c)
			}
		}
	}

	return out
}

// span is one keyword occurrence in the normalized text
type span struct {
	device     int
	start, end int
}

func (s span) within(o span) bool {
	return o.start <= s.start && s.end <= o.end && o.end-o.start > s.end-s.start
}

// deviceHits reports, per device, whether at least one of its keyword occurrences
// is not swallowed by a longer keyword of another device
// (ハリオスイッチ는 ハリオV60의 "ハリオ"로 잡히지 않음)
func (m *Matcher) deviceHits(text string) []bool {
	var spans []span
	for i, dk := range m.devices {
		for _, kw := range dk.keywords {
			for from := 0; from < len(text); {
				idx := strings.Index(text[from:], kw)
				if idx < 0 {
					break
				}
				start := from + idx
				spans = append(spans, span{device: i, start: start, end: start + len(kw)})
				from = start + 1
			}
		}
	}

	hits := make([]bool, len(m.devices))
	for _, s := range spans {
		if hits[s.device] {
			continue
		}
		covered := false
		for _, o := range spans {
			if o.device != s.device && s.within(o) {
				covered = true
				break
			}
		}
		if !covered {
			hits[s.device] = true
		}
	}
	return hits
}

// === Helper Functions ===

func appendNormalized(dst []string, kw string) []string {
	if n := classify.Normalize(kw); n != "" {
		return append(dst, n)
	}
	return dst
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
