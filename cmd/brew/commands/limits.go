package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wonny/driplog/backend/internal/catalog"
)

func newLimitsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "limits [device]",
		Short: "기구별 조정 한계값",
		Long: `레시피 보정 시 사용하는 온도 · 시간 · 비율 한계값을 출력합니다.
카탈로그에 없는 기구는 범용 한계값을 사용합니다.

Example:
  go run ./cmd/brew limits ハリオV60
  go run ./cmd/brew limits ケメックス`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			printLimits(cmd.OutOrStdout(), a.catalog, args[0])
			return nil
		},
	}
}

func printLimits(w io.Writer, cat *catalog.Catalog, device string) {
	lim := cat.LimitsFor(device)

	widths := []int{8, 8, 8}
	PrintTableHeader(w, []string{"Field", "Lo", "Hi"}, widths)
	PrintTableRow(w, []string{"temp", fmt.Sprintf("%g", lim.Temp.Lo), fmt.Sprintf("%g", lim.Temp.Hi)}, widths)
	PrintTableRow(w, []string{"time", fmt.Sprintf("%g", lim.Time.Lo), fmt.Sprintf("%g", lim.Time.Hi)}, widths)
	PrintTableRow(w, []string{"ratio", fmt.Sprintf("%g", lim.Ratio.Lo), fmt.Sprintf("%g", lim.Ratio.Hi)}, widths)

	if !cat.HasLimits(device) {
		PrintWarning(w, fmt.Sprintf("%s has no device limits, generic limits shown", device))
	}
}
