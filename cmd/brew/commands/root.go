package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	catalogPath string
	env         string
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "brew",
		Short: "driplog - 추출 기구 추천 · 레시피 보정",
		Long: `driplog brew CLI

원두 정보와 실측 통계로 추출 기구를 랭킹하고,
선택한 기구의 기본 레시피를 룰 레지스트리로 보정합니다.

Usage:
  go run ./cmd/brew [command]

Examples:
  go run ./cmd/brew rank --roast 深煎り --process natural
  go run ./cmd/brew derive --device ハリオV60 --roast 浅煎り --aging 5
  go run ./cmd/brew advise --bean 42 --json
  go run ./cmd/brew catalog list
  go run ./cmd/brew warm --once`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&catalogPath, "catalog", "", "catalog YAML (default: embedded catalog or CATALOG_PATH)")
	root.PersistentFlags().StringVar(&env, "env", "", "environment (development|staging|production)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newRankCmd(),
		newDeriveCmd(),
		newAdviseCmd(),
		newCatalogCmd(),
		newLimitsCmd(),
		newWarmCmd(),
	)
	return root
}

// Execute runs the root command; SIGINT/SIGTERM cancel the command context.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
