package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/wonny/driplog/backend/internal/advisor"
	"github.com/wonny/driplog/backend/internal/catalog"
	"github.com/wonny/driplog/backend/internal/contracts"
)

// beanFlags are the inline bean attributes shared by derive and advise
type beanFlags struct {
	roast   string
	process string
	origin  string
	aging   int
	storage string
}

func (b *beanFlags) register(f *pflag.FlagSet) {
	f.StringVar(&b.roast, "roast", "", "배전도 (예: 浅煎り, シティ, フレンチ)")
	f.StringVar(&b.process, "process", "", "정제 방식")
	f.StringVar(&b.origin, "origin", "", "산지 · 표고")
	f.IntVar(&b.aging, "aging", -1, "로스팅 후 경과일 (-1 = 모름)")
	f.StringVar(&b.storage, "storage", "", "보관 방법 (예: 冷凍)")
}

func (b *beanFlags) record() contracts.BeanRecord {
	r := contracts.BeanRecord{
		Roast:   b.roast,
		Process: b.process,
		Origin:  b.origin,
		Storage: b.storage,
	}
	if b.aging >= 0 {
		days := b.aging
		r.AgingDays = &days
	}
	return r
}

// baselineFlags override single fields of the catalog baseline
type baselineFlags struct {
	grind string
	temp  float64
	time  float64
	ratio float64
}

func (o *baselineFlags) register(f *pflag.FlagSet) {
	f.StringVar(&o.grind, "grind", "", "기본 분쇄도 덮어쓰기 (coarse ... extra-fine)")
	f.Float64Var(&o.temp, "temp", 0, "기본 물 온도 덮어쓰기 (°C)")
	f.Float64Var(&o.time, "time", 0, "기본 추출 시간 덮어쓰기 (초)")
	f.Float64Var(&o.ratio, "ratio", 0, "기본 물:원두 비율 덮어쓰기")
}

func (o *baselineFlags) changed() bool {
	return o.grind != "" || o.temp != 0 || o.time != 0 || o.ratio != 0
}

// apply returns the baseline with overrides, or nil when nothing is overridden
func (o *baselineFlags) apply(cat *catalog.Catalog, device string) (*contracts.Recipe, error) {
	if !o.changed() {
		return nil, nil
	}

	r, ok := cat.BaselineRecipe(device)
	if !ok {
		r = advisor.GenericBaseline()
	}
	if o.grind != "" {
		g := contracts.GrindGroup(o.grind)
		if !g.Valid() {
			return nil, fmt.Errorf("unknown grind group %q", o.grind)
		}
		r.Grind = g
	}
	if o.temp != 0 {
		r.TemperatureC = o.temp
	}
	if o.time != 0 {
		r.TimeSec = o.time
	}
	if o.ratio != 0 {
		r.Ratio = o.ratio
	}
	return &r, nil
}

type deriveOptions struct {
	device   string
	bean     beanFlags
	baseline baselineFlags
	asJSON   bool
}

func newDeriveCmd() *cobra.Command {
	opts := &deriveOptions{}

	cmd := &cobra.Command{
		Use:   "derive",
		Short: "레시피 보정",
		Long: `기구의 기본 레시피에 룰 레지스트리를 순서대로 적용합니다.

- 기본 레시피: 카탈로그 가이드 (없으면 범용 레시피)
- 각 룰의 조정은 기구별 한계값으로 clamp
- 적용된 룰은 trace와 근거 id로 출력

Example:
  go run ./cmd/brew derive --device フレンチプレス --roast フレンチ --process ナチュラル
  go run ./cmd/brew derive --device ハリオV60 --roast 浅煎り --aging 2 --temp 90`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDerive(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.device, "device", "", "기구명 (카탈로그 이름)")
	opts.bean.register(f)
	opts.baseline.register(f)
	f.BoolVar(&opts.asJSON, "json", false, "JSON 출력")
	_ = cmd.MarkFlagRequired("device")

	return cmd
}

func runDerive(cmd *cobra.Command, opts *deriveOptions) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	baseline, err := opts.baseline.apply(a.catalog, opts.device)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if baseline == nil {
		r, ok := a.catalog.BaselineRecipe(opts.device)
		if !ok {
			PrintWarning(cmd.ErrOrStderr(), fmt.Sprintf("no brewing guide for %q, using generic baseline", opts.device))
			r = advisor.GenericBaseline()
		}
		baseline = &r
	}

	bean := opts.bean.record()
	bc := contracts.BrewContext{
		Device:    opts.device,
		Roast:     bean.Roast,
		Process:   bean.Process,
		Origin:    bean.Origin,
		AgingDays: bean.AgingDays,
		Storage:   bean.Storage,
		Baseline:  *baseline,
	}
	d := a.engine.Derive(bc)

	if opts.asJSON {
		return PrintJSON(out, d)
	}

	printDerivation(out, a.catalog, opts.device, bc.Baseline, d)
	return nil
}

func printRecipe(w io.Writer, r contracts.Recipe) {
	PrintKeyValue(w, "Grind", string(r.Grind), 11)
	PrintKeyValue(w, "Temp", fmt.Sprintf("%g °C", r.TemperatureC), 11)
	PrintKeyValue(w, "Time", fmt.Sprintf("%g s", r.TimeSec), 11)
	PrintKeyValue(w, "Ratio", fmt.Sprintf("1:%g", r.Ratio), 11)
	PrintKeyValue(w, "Pour", string(r.Pour.Style), 11)
	if r.Pour.BloomSec != nil {
		PrintKeyValue(w, "Bloom", fmt.Sprintf("%g s", *r.Pour.BloomSec), 11)
	}
	if r.Pour.PulseCount != nil {
		PrintKeyValue(w, "Pulses", fmt.Sprintf("%d", *r.Pour.PulseCount), 11)
	}
	PrintKeyValue(w, "Agitation", string(r.Agitation), 11)
	if len(r.Pour.Notes) > 0 {
		fmt.Fprintln(w, "   Notes:")
		PrintList(w, r.Pour.Notes)
	}
}

func printDerivation(w io.Writer, cat *catalog.Catalog, device string, baseline contracts.Recipe, d contracts.Derivation) {
	PrintHeader(w, "Recipe · "+device)
	fmt.Fprintf(w, "   baseline: %s, %g °C, %g s, 1:%g\n\n",
		baseline.Grind, baseline.TemperatureC, baseline.TimeSec, baseline.Ratio)
	printRecipe(w, d.Recipe)

	PrintHeader(w, "Trace")
	if len(d.Trace) == 0 {
		fmt.Fprintln(w, "   (no rule matched)")
		return
	}

	widths := []int{24, 6, 6, 6, 5, 7, 7}
	PrintTableHeader(w, []string{"Rule", "Temp", "Time", "Ratio", "Grind", "Conf", "Clamped"}, widths)
	for _, te := range d.Trace {
		clamped := ""
		if te.Clamped {
			clamped = "yes"
		}
		PrintTableRow(w, []string{
			te.RuleID,
			formatSigned(te.Delta.TemperatureC),
			formatSigned(te.Delta.TimeSec),
			formatSigned(te.Delta.Ratio),
			formatSigned(float64(te.Delta.GrindShift)),
			string(te.Confidence),
			clamped,
		}, widths)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "   Evidence:")
	seen := make(map[string]bool, len(d.EvidenceIDs))
	for _, id := range d.EvidenceIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		title := id
		if e, ok := cat.Evidence(id); ok {
			title = fmt.Sprintf("%s (%s)", e.Title, id)
		}
		fmt.Fprintf(w, "   • %s\n", title)
	}
}
