package main

import (
	"os"

	"github.com/wonny/driplog/backend/cmd/brew/commands"
)

// main is the entry point for the driplog brew CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/brew [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
