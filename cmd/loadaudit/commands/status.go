package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/loadaudit/internal/ruleconfig"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "현재 규칙 구성 확인",
	Long: `현재 로드된 감사 규칙 임계값을 출력합니다.

Example:
  go run ./cmd/loadaudit status
  go run ./cmd/loadaudit status --rules rules.yaml`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Audit Rules Status ===")

	_, _, rules, err := initDeps()
	if err != nil {
		return err
	}

	hash, err := ruleconfig.Hash(rules)
	if err != nil {
		return fmt.Errorf("hash rules: %w", err)
	}

	fmt.Println()
	fmt.Println("🎯 Thresholds")
	fmt.Printf("  Contract Gap Ceiling:  %s\n", rules.ContractGapThreshold.Std())
	fmt.Printf("  Load Gap Threshold:    %s\n", rules.LoadGapThreshold.Std())
	fmt.Printf("  Duration Bounds:       %s ~ %s\n", rules.DurationMin.Std(), rules.DurationMax.Std())
	fmt.Printf("  Point Count Bounds:    %d ~ %d\n", rules.PointCountMin, rules.PointCountMax)
	fmt.Printf("  Ping Rate Tolerance:   %s\n", rules.PingRateThreshold.Std())
	fmt.Println()
	fmt.Println("⚙️  Behavior")
	fmt.Printf("  Flag Unknown Delta:    %v\n", rules.FlagUnknownDelta)
	fmt.Println()
	fmt.Printf("🔑 Rules Hash: %s\n", hash)
	fmt.Println()
	fmt.Println("💡 Use 'run --input <csv> --output <csv>' for a batch audit")

	return nil
}
