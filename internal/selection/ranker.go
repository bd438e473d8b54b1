package selection

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/wonny/driplog/backend/internal/catalog"
	"github.com/wonny/driplog/backend/internal/classify"
	"github.com/wonny/driplog/backend/internal/contracts"
	"github.com/wonny/driplog/backend/internal/matcher"
	"github.com/wonny/driplog/backend/pkg/logger"
)

// Theory weight split between an exact device hit and a class hit
const (
	theoryNameShare  = 0.8
	theoryClassShare = 0.2
)

// scopeBestMax is how many scope-best devices share the scope weight
const scopeBestMax = 3

// explainTopN is how many entries the explanation lists
const explainTopN = 5

// Ranker scores candidate devices with a weighted multi-factor sum
// ⭐ SSOT: 기구 랭킹 로직은 여기서만
type Ranker struct {
	weights  Weights
	screener *Screener
	matcher  *matcher.Matcher
	logger   *logger.Logger
}

// Weights defines factor weights for the total score
type Weights struct {
	Empirical float64 // 실측 평균 (기본: 0.50) ⭐
	Theory    float64 // 이론 힌트 (기본: 0.20)
	Roast     float64 // 로스트 (기본: 0.10)
	Process   float64 // 가공 (기본: 0.10)
	Metric    float64 // 목표 지표 (기본: 0.05)
	ScopeBest float64 // 유사 원두 베스트 (기본: 0.05)
}

// DefaultWeights returns the standard weights
func DefaultWeights() Weights {
	return Weights{
		Empirical: 0.50, // 50% - 실측
		Theory:    0.20, // 20% - 이론
		Roast:     0.10, // 10% - 로스트
		Process:   0.10, // 10% - 가공
		Metric:    0.05, // 5%  - 지표
		ScopeBest: 0.05, // 5%  - 유사 원두
	}
	// Total: 100%
}

// Sum returns the total of all weights
func (w Weights) Sum() float64 {
	return w.Empirical + w.Theory + w.Roast + w.Process + w.Metric + w.ScopeBest
}

// ValidateWeights checks if weights sum to 1.0
func (w Weights) ValidateWeights() bool {
	// Allow small floating point error
	return math.Abs(w.Sum()-1.0) < 1e-9
}

type classBonus struct {
	class contracts.DeviceClass
	value float64
}

// 클래스 보너스 테이블 (factor 내 상대값, 0~1)
var (
	roastBonus = map[classify.Tag][]classBonus{
		classify.RoastLight: {{contracts.ClassConicalFast, 1.0}, {contracts.ClassFlatBed, 0.5}},
		classify.RoastCity:  {{contracts.ClassFlatBed, 1.0}, {contracts.ClassConicalRestricted, 0.5}},
		classify.RoastDark:  {{contracts.ClassPress, 1.0}, {contracts.ClassImmersionSwitch, 0.5}},
	}

	processBonus = map[classify.Tag][]classBonus{
		classify.ProcessWashed:    {{contracts.ClassConicalFast, 1.0}},
		classify.ProcessNatural:   {{contracts.ClassFlatBed, 0.5}, {contracts.ClassConicalRestricted, 0.5}},
		classify.ProcessAnaerobic: {{contracts.ClassFlatBed, 0.7}, {contracts.ClassImmersionSwitch, 0.3}},
	}

	metricBonus = map[contracts.Metric][]classBonus{
		contracts.MetricClean:  {{contracts.ClassConicalFast, 1.0}},
		contracts.MetricFlavor: {{contracts.ClassConicalRestricted, 0.6}, {contracts.ClassFlatBed, 0.4}},
		contracts.MetricBody:   {{contracts.ClassPress, 1.0}},
	}
)

// NewRanker creates a new ranker
func NewRanker(cat *catalog.Catalog, m *matcher.Matcher, weights Weights, log *logger.Logger) *Ranker {
	return &Ranker{
		weights:  weights,
		screener: NewScreener(cat, log),
		matcher:  m,
		logger:   log,
	}
}

// Weights returns the weights in use
func (r *Ranker) Weights() Weights {
	return r.weights
}

// Rank scores and orders candidate devices. Pure and deterministic; never fails.
func (r *Ranker) Rank(input contracts.RecommendInput) contracts.RecommendResult {
	candidates := r.screener.Screen(input.AllowNonDrip)
	if len(candidates) == 0 {
		return contracts.RecommendResult{
			Primary: r.screener.Fallback(),
			Ranked:  []contracts.RankedDevice{},
			Explain: r.explain(nil),
		}
	}

	ranked := make([]contracts.RankedDevice, len(candidates))
	pos := make(map[string]int, len(candidates))
	for i, d := range candidates {
		ranked[i] = contracts.RankedDevice{Device: d.Name, Class: d.Class}
		pos[d.Name] = i
	}

	// Empirical: 행마다 누적 (중복 행도 각각 가산)
	for _, row := range input.Averages {
		if i, ok := pos[row.Device]; ok {
			ranked[i].Scores.Empirical += r.weights.Empirical * clamp01(row.Avg/10)
		}
	}

	match := r.matcher.MatchTheory(input.Theory)
	roast := roastBonus[classify.Roast.Classify(input.Roast)]
	process := processBonus[classify.Process.Classify(input.Process)]
	metric := metricBonus[input.BestMetric]

	for i := range ranked {
		s := &ranked[i].Scores
		if match.HasName(ranked[i].Device) {
			s.Theory += r.weights.Theory * theoryNameShare
		}
		if match.HasClass(ranked[i].Class) {
			s.Theory += r.weights.Theory * theoryClassShare
		}
		s.Roast = r.weights.Roast * bonusFor(roast, ranked[i].Class)
		s.Process = r.weights.Process * bonusFor(process, ranked[i].Class)
		s.Metric = r.weights.Metric * bonusFor(metric, ranked[i].Class)
	}

	if scope := firstDistinct(input.ScopeBest, pos, scopeBestMax); len(scope) > 0 {
		share := r.weights.ScopeBest / float64(len(scope))
		for _, name := range scope {
			ranked[pos[name]].Scores.Scope += share
		}
	}

	for i := range ranked {
		ranked[i].Score = total(ranked[i].Scores)
	}

	// 동점은 카탈로그 선언 순서 유지
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	// Assign ranks
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	r.logger.WithFields(map[string]interface{}{
		"candidates":  len(ranked),
		"top_score":   ranked[0].Score,
		"top_device":  ranked[0].Device,
		"theory_hits": len(match.Names),
	}).Debug("Ranking completed")

	return contracts.RecommendResult{
		Primary: ranked[0].Device,
		Ranked:  ranked,
		Explain: r.explain(ranked),
	}
}

// explain renders the weight constants followed by the top entries
func (r *Ranker) explain(ranked []contracts.RankedDevice) string {
	var b strings.Builder
	w := r.weights
	fmt.Fprintf(&b, "weights: empirical=%.2f theory=%.2f(name %.1f/class %.1f) roast=%.2f process=%.2f metric=%.2f scope=%.2f",
		w.Empirical, w.Theory, theoryNameShare, theoryClassShare, w.Roast, w.Process, w.Metric, w.ScopeBest)

	for i, rd := range ranked {
		if i >= explainTopN {
			break
		}
		fmt.Fprintf(&b, "\n%d. %s %.3f", rd.Rank, rd.Device, rd.Score)
	}
	return b.String()
}

// === Helper Functions ===

func bonusFor(bonuses []classBonus, class contracts.DeviceClass) float64 {
	sum := 0.0
	for _, b := range bonuses {
		if b.class == class {
			sum += b.value
		}
	}
	return sum
}

// firstDistinct returns up to n distinct names that are candidates, in input order
func firstDistinct(names []string, candidates map[string]int, n int) []string {
	out := make([]string, 0, n)
	seen := make(map[string]bool, n)
	for _, name := range names {
		if len(out) == n {
			break
		}
		if _, ok := candidates[name]; !ok || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

func total(s contracts.ScoreDetail) float64 {
	return s.Empirical + s.Theory + s.Roast + s.Process + s.Metric + s.Scope
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
