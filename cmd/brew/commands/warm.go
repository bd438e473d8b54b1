package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/driplog/backend/internal/scheduler"
	"github.com/wonny/driplog/backend/internal/scheduler/jobs"
)

func newWarmCmd() *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "warm",
		Short: "실측 평균 캐시 갱신",
		Long: `Redis에 캐시된 기구별 실측 평균 테이블을 모든 지표에 대해 갱신합니다.

REDIS_ENABLED=true 와 STATS_SOURCE(file|db|api)가 필요합니다.
기본은 WARM_SCHEDULE(cron, 초 단위 포함)에 따라 계속 실행되며 Ctrl+C로 종료합니다.

Example:
  go run ./cmd/brew warm --once
  WARM_SCHEDULE="0 */5 * * * *" go run ./cmd/brew warm`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			a, err := loadApp()
			if err != nil {
				return err
			}

			src, err := a.openStats(ctx)
			if err != nil {
				return err
			}
			defer src.Close()

			if src.Cached == nil {
				return fmt.Errorf("stats cache is not enabled (REDIS_ENABLED=true and STATS_SOURCE other than none required)")
			}

			sched := scheduler.New(a.log.WithComponent("scheduler"))
			job := jobs.NewStatsWarmJob(src.Cached, a.cfg.WarmSchedule, a.log.WithComponent("stats-warm"))
			if err := sched.AddJob(job); err != nil {
				return err
			}

			if once {
				result, err := sched.RunJob(ctx, job.Name())
				if err != nil {
					PrintError(out, err.Error())
					return err
				}
				PrintSuccess(out, fmt.Sprintf("%s completed in %s", job.Name(), result.Duration))
				return nil
			}

			sched.Start()
			PrintSuccess(out, fmt.Sprintf("Scheduler started (%s %s)", job.Name(), job.Schedule()))
			fmt.Fprintln(out, "Press Ctrl+C to stop")

			<-ctx.Done()
			sched.Stop()

			st := sched.GetJobStats()[job.Name()]
			PrintKeyValue(out, "Runs", fmt.Sprintf("%d (%d failed)", st.TotalRuns, st.FailureCount), 4)
			return nil
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "한 번만 실행하고 종료")
	return cmd
}
