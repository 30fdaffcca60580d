package commands

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wonny/loadaudit/internal/contracts"
	"github.com/wonny/loadaudit/internal/pipeline"
	"github.com/wonny/loadaudit/internal/s0_ingest"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "CSV 파일에 대한 배치 감사 실행",
	Long: `입력 CSV의 전체 레코드를 감사하고 판정 컬럼 10개를 덧붙여 출력합니다.

입력 행 수와 순서는 보존됩니다 (파싱 실패 행만 제외).

Example:
  go run ./cmd/loadaudit run --input telemetry.csv --output audited.csv
  go run ./cmd/loadaudit run --input telemetry.csv --output audited.csv --rules rules.yaml`,
	RunE: runRun,
}

var (
	runInput    string
	runOutput   string
	runWorkers  int
	runMaxShown int
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runInput, "input", "", "input CSV path (required)")
	runCmd.Flags().StringVar(&runOutput, "output", "", "output CSV path (required)")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "contract shards processed concurrently (default from config)")
	runCmd.Flags().IntVar(&runMaxShown, "max-rejected", 10, "rejected rows shown in the summary")
	_ = runCmd.MarkFlagRequired("input")
	_ = runCmd.MarkFlagRequired("output")
}

func runRun(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Load Audit ===")

	ctx := cmd.Context()

	cfg, log, rules, err := initDeps()
	if err != nil {
		return err
	}

	workers := cfg.Audit.Workers
	if runWorkers > 0 {
		workers = runWorkers
	}

	// Read
	in, err := os.Open(runInput)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	reader := s0_ingest.NewReader(s0_ingest.DefaultColumns(), log)
	ds, rejected, err := reader.Read(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	fmt.Printf("📥 Input: %s (%d records, %d rejected)\n", runInput, len(ds.Records), len(rejected))

	// Audit
	pipe, err := pipeline.New(*rules, workers, log)
	if err != nil {
		return err
	}

	report, _, err := pipe.Run(ctx, ds, rejected)
	if err != nil {
		return fmt.Errorf("audit run: %w", err)
	}

	// Write
	out, err := os.Create(runOutput)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	if err := s0_ingest.NewWriter().Write(out, ds); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	printReport(report)
	fmt.Printf("\n📤 Output: %s\n", runOutput)

	return nil
}

// printReport renders the run summary
func printReport(report *contracts.Report) {
	fmt.Println()
	fmt.Println("📊 Audit Summary")
	fmt.Printf("  Run ID:        %s\n", report.RunID)
	fmt.Printf("  Rules Hash:    %.12s\n", report.RulesHash)
	fmt.Printf("  Duration:      %s\n", report.Duration)
	fmt.Printf("  Contracts:     %d\n", report.ContractCount)
	fmt.Printf("  Intervals:     %d (%d invalid, %.1f%%)\n",
		report.IntervalCount, report.InvalidIntervals, report.InvalidRate()*100)
	fmt.Printf("  Records:       %d (%d flagged)\n", report.TotalRecords, report.FlaggedRecords)

	if len(report.FlagCounts) > 0 {
		fmt.Println("\n🚩 Flag Counts")
		for _, name := range contracts.FlagColumns {
			if count := report.FlagCounts[name]; count > 0 {
				fmt.Printf("  %-20s %d\n", name, count)
			}
		}
	}

	if len(report.Warnings) > 0 {
		fmt.Printf("\n⚠️  Warnings (%d)\n", len(report.Warnings))
		shown := report.Warnings
		if len(shown) > runMaxShown {
			shown = shown[:runMaxShown]
		}
		for _, warn := range shown {
			if warn.GroupID > 0 {
				fmt.Printf("  contract %d group %d: %s\n", warn.ContractID, warn.GroupID, warn.Reason)
			} else {
				fmt.Printf("  contract %d: %s\n", warn.ContractID, warn.Reason)
			}
		}
		if len(report.Warnings) > len(shown) {
			fmt.Printf("  ... and %d more\n", len(report.Warnings)-len(shown))
		}
	}

	if len(report.Rejected) > 0 {
		fmt.Printf("\n🚫 Rejected Rows (%d)\n", len(report.Rejected))
		rejected := report.Rejected
		sort.Slice(rejected, func(i, j int) bool { return rejected[i].Line < rejected[j].Line })
		shown := rejected
		if len(shown) > runMaxShown {
			shown = shown[:runMaxShown]
		}
		for _, row := range shown {
			fmt.Printf("  line %d: %s\n", row.Line, row.Reason)
		}
		if len(rejected) > len(shown) {
			fmt.Printf("  ... and %d more\n", len(rejected)-len(shown))
		}
	}

	if report.InvalidIntervals == 0 {
		fmt.Println("\n✅ All intervals passed")
	} else {
		fmt.Printf("\n❌ %d interval(s) failed at least one rule\n", report.InvalidIntervals)
	}
}
