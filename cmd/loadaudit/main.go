package main

import (
	"os"

	"github.com/wonny/loadaudit/cmd/loadaudit/commands"
)

// main is the entry point for the loadaudit CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/loadaudit [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
