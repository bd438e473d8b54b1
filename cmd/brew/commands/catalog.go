package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/driplog/backend/internal/catalog"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "카탈로그 · 룰 레지스트리 조회",
		Long: `기구 카탈로그와 룰 레지스트리를 조회 · 검증합니다.

Subcommands:
  list      - 기구 목록
  show      - 기구 상세 (가이드 · 한계값 · 근거)
  validate  - YAML 파일 검증 (경고 포함)
  hash      - 레지스트리 해시

Example:
  go run ./cmd/brew catalog list
  go run ./cmd/brew catalog show ハリオV60
  go run ./cmd/brew catalog validate ./my_catalog.yaml`,
	}

	var asJSON bool

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "기구 목록",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return PrintJSON(out, a.catalog.Names())
			}

			widths := []int{4, 20, 20, 6, 8}
			PrintTableHeader(out, []string{"#", "Device", "Class", "Drip", "Limits"}, widths)
			for i, d := range a.catalog.Devices() {
				drip, limits := "", "generic"
				if d.Class.IsDrip() {
					drip = "yes"
				}
				if a.catalog.HasLimits(d.Name) {
					limits = "device"
				}
				PrintTableRow(out, []string{fmt.Sprintf("%d", i+1), d.Name, string(d.Class), drip, limits}, widths)
			}
			return nil
		},
	}
	listCmd.Flags().BoolVar(&asJSON, "json", false, "JSON 출력")

	showCmd := &cobra.Command{
		Use:   "show [device]",
		Short: "기구 상세",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			d, ok := a.catalog.Device(args[0])
			if !ok {
				return fmt.Errorf("unknown device %q", args[0])
			}

			out := cmd.OutOrStdout()
			PrintHeader(out, d.Name)
			PrintKeyValue(out, "Class", string(d.Class), 9)
			PrintKeyValue(out, "Keywords", strings.Join(d.Keywords, ", "), 9)
			PrintKeyValue(out, "Profile", fmt.Sprintf("clarity %.2f  body %.2f  oil %.2f  speed %.2f  immersion %.2f",
				d.Profile.Clarity, d.Profile.Body, d.Profile.Oil, d.Profile.Speed, d.Profile.Immersion), 9)

			if r, ok := a.catalog.BaselineRecipe(d.Name); ok {
				PrintHeader(out, "Guide")
				printRecipe(out, r)
			}

			PrintHeader(out, "Limits")
			printLimits(out, a.catalog, d.Name)

			if len(d.Knowledge.Pros) > 0 {
				fmt.Fprintln(out, "\n   Pros:")
				PrintList(out, d.Knowledge.Pros)
			}
			if len(d.Knowledge.Cons) > 0 {
				fmt.Fprintln(out, "   Cons:")
				PrintList(out, d.Knowledge.Cons)
			}
			if len(d.Evidence.Sources) > 0 {
				fmt.Fprintln(out, "   Evidence:")
				for _, id := range d.Evidence.Sources {
					if e, ok := a.catalog.Evidence(id); ok {
						fmt.Fprintf(out, "   • %s (%s)\n", e.Title, id)
					}
				}
			}
			return nil
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "카탈로그 YAML 검증",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			var f *catalog.File
			var err error
			source := "embedded"
			if len(args) == 1 {
				source = args[0]
				f, _, err = catalog.LoadFile(args[0])
			} else {
				f, err = catalog.Parse(catalog.DefaultYAML())
			}
			if err != nil {
				PrintError(out, err.Error())
				return err
			}

			hash, err := catalog.Hash(f)
			if err != nil {
				return err
			}

			PrintSuccess(out, fmt.Sprintf("%s: %s v%s (%d devices, %d rules)",
				source, f.Meta.CatalogID, f.Meta.Version, len(f.Devices), len(f.Rules)))
			PrintKeyValue(out, "Hash", hash, 4)
			for _, w := range catalog.Warn(f) {
				PrintWarning(out, fmt.Sprintf("[%s] %s", w.Code, w.Message))
			}
			return nil
		},
	}

	hashCmd := &cobra.Command{
		Use:   "hash",
		Short: "레지스트리 해시",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.catalog.Hash())
			return nil
		},
	}

	cmd.AddCommand(listCmd, showCmd, validateCmd, hashCmd)
	return cmd
}
