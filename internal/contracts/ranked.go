package contracts

import "strings"

// Metric is the outcome the ranking should favour
type Metric string

const (
	MetricOverall    Metric = "overall"
	MetricClean      Metric = "clean"
	MetricFlavor     Metric = "flavor"
	MetricAcidity    Metric = "acidity"
	MetricBitterness Metric = "bitterness"
	MetricSweetness  Metric = "sweetness"
	MetricBody       Metric = "body"
	MetricAftertaste Metric = "aftertaste"
)

// AllMetrics lists the closed metric set
var AllMetrics = []Metric{
	MetricOverall,
	MetricClean,
	MetricFlavor,
	MetricAcidity,
	MetricBitterness,
	MetricSweetness,
	MetricBody,
	MetricAftertaste,
}

// ParseMetric maps free input to a Metric, defaulting to overall
func ParseMetric(s string) Metric {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, m := range AllMetrics {
		if string(m) == s {
			return m
		}
	}
	return MetricOverall
}

// DeviceAverage is one row of the empirical per-device average table
type DeviceAverage struct {
	Device string  `json:"device"`
	Avg    float64 `json:"avg"`
}

// RecommendInput is the ranking engine input
type RecommendInput struct {
	Roast        string          `json:"roast"`
	Process      string          `json:"process"`
	Theory       string          `json:"theory"`
	BestMetric   Metric          `json:"best_metric"`
	ScopeBest    []string        `json:"scope_best"`
	Averages     []DeviceAverage `json:"averages,omitempty"`
	AllowNonDrip bool            `json:"allow_non_drip"`
}

// RankedDevice is one entry of the ranked list
// ⭐ SSOT: 랭킹 결과 전달
type RankedDevice struct {
	Device string      `json:"device"`
	Class  DeviceClass `json:"class"`
	Rank   int         `json:"rank"` // 1-based
	Score  float64     `json:"score"`
	Scores ScoreDetail `json:"scores"`
}

// ScoreDetail contains the per-factor contributions of a score
type ScoreDetail struct {
	Empirical float64 `json:"empirical"`
	Theory    float64 `json:"theory"`
	Roast     float64 `json:"roast"`
	Process   float64 `json:"process"`
	Metric    float64 `json:"metric"`
	Scope     float64 `json:"scope"`
}

// RecommendResult is the ranking engine output
type RecommendResult struct {
	Primary string         `json:"primary"`
	Ranked  []RankedDevice `json:"ranked"`
	Explain string         `json:"explain"`
}
