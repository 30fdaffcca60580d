package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	rulesFile string
	env       string
	verbose   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "loadaudit",
	Short: "Loadaudit - 적재 라벨 품질 감사 시스템",
	Long: `Loadaudit Unified CLI

계약(contract) 단위 텔레메트리 스트림을 적재 구간으로 분할하고
구간별 품질 규칙을 평가하는 배치 감사 시스템.

Usage:
  go run ./cmd/loadaudit [command]

Examples:
  go run ./cmd/loadaudit run --input telemetry.csv --output audited.csv
  go run ./cmd/loadaudit api
  go run ./cmd/loadaudit status
  go run ./cmd/loadaudit test-db`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&rulesFile, "rules", "", "rules file (default from AUDIT_RULES_PATH)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
