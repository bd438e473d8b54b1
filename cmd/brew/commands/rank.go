package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/driplog/backend/internal/contracts"
)

type rankOptions struct {
	roast        string
	process      string
	theory       string
	metric       string
	scopeBest    []string
	averagesFile string
	allowNonDrip bool
	asJSON       bool
}

func newRankCmd() *cobra.Command {
	opts := &rankOptions{}

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "추출 기구 랭킹",
		Long: `원두와 실측 통계로 후보 기구를 랭킹합니다.

점수 구성:
- 실측 평균 (--averages 파일 또는 STATS_SOURCE)
- 이론 텍스트 매칭 (--theory)
- 배전도 · 정제 방식 보너스
- 목표 지표 보너스 (--metric)
- 같은 스코프에서 최고였던 기구 (--scope-best)

Example:
  go run ./cmd/brew rank --roast 深煎り --process natural
  go run ./cmd/brew rank --theory "ハリオV60で速めに" --metric clean
  go run ./cmd/brew rank --averages stats.json --allow-non-drip --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRank(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.roast, "roast", "", "배전도 (예: 浅煎り, シティ, フレンチ)")
	f.StringVar(&opts.process, "process", "", "정제 방식 (예: washed, ナチュラル)")
	f.StringVar(&opts.theory, "theory", "", "이론 메모 (기구명 · 키워드 매칭)")
	f.StringVar(&opts.metric, "metric", string(contracts.MetricOverall), "목표 지표")
	f.StringSliceVar(&opts.scopeBest, "scope-best", nil, "같은 스코프 최고 기구 (순서대로)")
	f.StringVar(&opts.averagesFile, "averages", "", "기구별 실측 평균 JSON 파일 ([{device, avg}])")
	f.BoolVar(&opts.allowNonDrip, "allow-non-drip", false, "에스프레소 · 모카 등 비드립 기구 포함")
	f.BoolVar(&opts.asJSON, "json", false, "JSON 출력")

	return cmd
}

func runRank(cmd *cobra.Command, opts *rankOptions) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	metric := contracts.ParseMetric(opts.metric)

	var averages []contracts.DeviceAverage
	if opts.averagesFile != "" {
		averages, err = readAverages(opts.averagesFile)
		if err != nil {
			return err
		}
	} else {
		src, err := a.openStats(cmd.Context())
		if err != nil {
			return err
		}
		defer src.Close()

		averages, err = src.Stats.DeviceAverages(cmd.Context(), metric)
		if err != nil {
			a.log.WithError(err).Warn("Device averages unavailable, ranking without empirical scores")
			averages = []contracts.DeviceAverage{}
		}
	}

	result := a.ranker.Rank(contracts.RecommendInput{
		Roast:        opts.roast,
		Process:      opts.process,
		Theory:       opts.theory,
		BestMetric:   metric,
		ScopeBest:    opts.scopeBest,
		Averages:     averages,
		AllowNonDrip: opts.allowNonDrip,
	})

	out := cmd.OutOrStdout()
	if opts.asJSON {
		return PrintJSON(out, result)
	}

	printRanking(out, result)
	return nil
}

func readAverages(path string) ([]contracts.DeviceAverage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rows []contracts.DeviceAverage
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode averages %s: %w", path, err)
	}
	return rows, nil
}

func printRanking(w io.Writer, result contracts.RecommendResult) {
	PrintHeader(w, "Ranking")
	PrintKeyValue(w, "Primary", result.Primary, 8)
	fmt.Fprintln(w)

	widths := []int{4, 18, 18, 7, 6, 6, 6, 6, 6, 6}
	PrintTableHeader(w, []string{"#", "Device", "Class", "Score", "Emp", "Theory", "Roast", "Proc", "Metric", "Scope"}, widths)
	for _, rd := range result.Ranked {
		PrintTableRow(w, []string{
			fmt.Sprintf("%d", rd.Rank),
			truncate(rd.Device, widths[1]),
			string(rd.Class),
			formatFloat(rd.Score),
			formatFloat(rd.Scores.Empirical),
			formatFloat(rd.Scores.Theory),
			formatFloat(rd.Scores.Roast),
			formatFloat(rd.Scores.Process),
			formatFloat(rd.Scores.Metric),
			formatFloat(rd.Scores.Scope),
		}, widths)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, result.Explain)
}
