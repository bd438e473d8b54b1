package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wonny/driplog/backend/internal/advisor"
	"github.com/wonny/driplog/backend/internal/contracts"
)

type adviseOptions struct {
	beanID       string
	bean         beanFlags
	baseline     baselineFlags
	theory       string
	metric       string
	device       string
	allowNonDrip bool
	asJSON       bool
}

func newAdviseCmd() *cobra.Command {
	opts := &adviseOptions{}

	cmd := &cobra.Command{
		Use:   "advise",
		Short: "랭킹 + 레시피 보정 (전체 흐름)",
		Long: `원두 하나에 대해 기구 랭킹과 레시피 보정을 한 번에 실행합니다.

흐름:
1. 실측 평균 · scope-best 조회 (STATS_SOURCE, 실패 시 빈 테이블)
2. 기구 랭킹
3. 기구 선택 (--device 또는 1위)
4. 기본 레시피 보정

원두는 --bean id(통계 소스에서 조회) 또는 --roast/--process/... 로 지정합니다.

Example:
  go run ./cmd/brew advise --bean 42
  go run ./cmd/brew advise --roast フレンチ --process ナチュラル --origin ブラジル --aging 10
  go run ./cmd/brew advise --bean 42 --device ハリオV60 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdvise(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.beanID, "bean", "", "원두 id (통계 소스에서 조회)")
	opts.bean.register(f)
	opts.baseline.register(f)
	f.StringVar(&opts.theory, "theory", "", "이론 메모")
	f.StringVar(&opts.metric, "metric", string(contracts.MetricOverall), "목표 지표")
	f.StringVar(&opts.device, "device", "", "기구 지정 (기본: 랭킹 1위)")
	f.BoolVar(&opts.allowNonDrip, "allow-non-drip", false, "비드립 기구 포함")
	f.BoolVar(&opts.asJSON, "json", false, "JSON 출력")

	return cmd
}

func runAdvise(cmd *cobra.Command, opts *adviseOptions) error {
	ctx := cmd.Context()

	a, err := loadApp()
	if err != nil {
		return err
	}

	src, err := a.openStats(ctx)
	if err != nil {
		return err
	}
	defer src.Close()

	req := advisor.Request{
		Bean:         opts.bean.record(),
		Theory:       opts.theory,
		Metric:       contracts.ParseMetric(opts.metric),
		AllowNonDrip: opts.allowNonDrip,
		Device:       opts.device,
	}
	// 기구가 정해진 경우에만 기본 레시피를 덮어쓸 수 있음
	if opts.device != "" {
		req.Baseline, err = opts.baseline.apply(a.catalog, opts.device)
		if err != nil {
			return err
		}
	} else if opts.baseline.changed() {
		return fmt.Errorf("baseline overrides require --device")
	}

	adv := a.advisor(src)

	var advice *advisor.Advice
	if opts.beanID != "" {
		advice, err = adv.AdviseBean(ctx, src.Beans, opts.beanID, req)
	} else {
		advice, err = adv.Advise(ctx, req)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.asJSON {
		return PrintJSON(out, advice)
	}

	printAdvice(out, a, advice)
	return nil
}

func printAdvice(w io.Writer, a *app, advice *advisor.Advice) {
	PrintHeader(w, "Advice")
	PrintKeyValue(w, "Run ID", advice.RunID, 8)
	PrintKeyValue(w, "Catalog", fmt.Sprintf("%s (%s)", advice.CatalogVersion, advice.CatalogHash[:12]), 8)
	PrintKeyValue(w, "Device", advice.Device, 8)
	for _, warning := range advice.Warnings {
		PrintWarning(w, warning)
	}

	printRanking(w, advice.Ranking)
	printDerivation(w, a.catalog, advice.Device, advice.Context.Baseline, advice.Derivation)
}
