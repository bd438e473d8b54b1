package classify

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

// Tag is the result of classifying one free-text axis ("" = no match)
type Tag string

// Roast bands
const (
	RoastLight Tag = "light"
	RoastCity  Tag = "city"
	RoastDark  Tag = "dark"
)

// Process families
const (
	ProcessWashed    Tag = "washed"
	ProcessNatural   Tag = "natural"
	ProcessAnaerobic Tag = "anaerobic"
)

// Origin groups
const (
	OriginHighGrown  Tag = "high-grown"
	OriginLowDensity Tag = "low-density"
)

// Unknown means no pattern matched
const Unknown Tag = ""

type entry struct {
	tag     Tag
	pattern *regexp.Regexp
}

// Table is an ordered list of (pattern, tag) pairs; first match wins
type Table struct {
	name    string
	entries []entry
}

func newTable(name string, pairs ...string) *Table {
	t := &Table{name: name}
	for i := 0; i+1 < len(pairs); i += 2 {
		t.entries = append(t.entries, entry{
			tag:     Tag(pairs[i]),
			pattern: regexp.MustCompile(pairs[i+1]),
		})
	}
	return t
}

// Name returns the axis name ("roast", "process", "origin")
func (t *Table) Name() string {
	return t.name
}

// Classify returns the tag of the first matching entry
func (t *Table) Classify(text string) Tag {
	norm := Normalize(text)
	if norm == "" {
		return Unknown
	}
	for _, e := range t.entries {
		if e.pattern.MatchString(norm) {
			return e.tag
		}
	}
	return Unknown
}

// Tags lists every tag in table order
func (t *Table) Tags() []Tag {
	tags := make([]Tag, 0, len(t.entries))
	for _, e := range t.entries {
		tags = append(tags, e.tag)
	}
	return tags
}

// Has reports whether tag is produced by this table
func (t *Table) Has(tag Tag) bool {
	for _, e := range t.entries {
		if e.tag == tag {
			return true
		}
	}
	return false
}

// ⭐ SSOT: 분류 테이블 (순서 = 우선순위)
// シティ/フルシティ は 中深煎 なので dark/light より先に判定
var (
	Roast = newTable("roast",
		string(RoastCity), `フルシティ|シティ|full[\s-]?city|\bcity\b|中深煎`,
		string(RoastDark), `フレンチ|イタリアン|french|italian|dark|深煎`,
		string(RoastLight), `ライト|シナモン|ミディアム|ハイ|light|cinnamon|medium|high|浅煎|中煎`,
	)

	// anaerobic を natural より先に: "anaerobic natural" は発酵扱い
	Process = newTable("process",
		string(ProcessAnaerobic), `アナエロ|嫌気|anaerobic|ferment|発酵|カーボニック|carbonic|イースト|yeast`,
		string(ProcessNatural), `ナチュラル|natural|ハニー|honey|pulped`,
		string(ProcessWashed), `ウォッシュ|washed|水洗|wet[\s-]?process`,
	)

	Origin = newTable("origin",
		string(OriginHighGrown), `エチオピア|ケニア|コロンビア|グアテマラ|パナマ|コスタリカ|ルワンダ|ethiopia|kenya|colombia|guatemala|panama|costa ?rica|rwanda`,
		string(OriginLowDensity), `ブラジル|インドネシア|スマトラ|インド|ベトナム|brazil|indonesia|sumatra|india|vietnam`,
	)
)

// Normalize folds full-width Latin and half-width katakana to their canonical
// width and lower-cases the result
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.ToLower(width.Fold.String(s))
}

// Axes classifies roast, process and origin in one call
type Axes struct {
	Roast   Tag `json:"roast"`
	Process Tag `json:"process"`
	Origin  Tag `json:"origin"`
}

// All classifies every axis of a bean description
func All(roast, process, origin string) Axes {
	return Axes{
		Roast:   Roast.Classify(roast),
		Process: Process.Classify(process),
		Origin:  Origin.Classify(origin),
	}
}
