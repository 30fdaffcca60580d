package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/loadaudit/internal/audit"
	"github.com/wonny/loadaudit/internal/pipeline"
	"github.com/wonny/loadaudit/internal/scheduler"
	"github.com/wonny/loadaudit/internal/scheduler/jobs"
	"github.com/wonny/loadaudit/internal/store"
	"github.com/wonny/loadaudit/pkg/redis"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "정기 감사 스케줄러 실행",
	Long: `설정된 크론 스케줄에 따라 정기 감사를 실행합니다.

Example:
  go run ./cmd/loadaudit scheduler
  AUDIT_SCHEDULE="0 0 5 * * *" go run ./cmd/loadaudit scheduler`,
	RunE: runScheduler,
}

var schedulerRunNow bool

func init() {
	rootCmd.AddCommand(schedulerCmd)

	schedulerCmd.Flags().BoolVar(&schedulerRunNow, "now", false, "run the audit job immediately on startup")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	cfg, log, rules, db, err := initStoreDeps()
	if err != nil {
		return err
	}
	defer db.Close()

	rdb, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer rdb.Close()
	cache := redis.NewCache(rdb, "loadaudit")

	pipe, err := pipeline.New(*rules, cfg.Audit.Workers, log)
	if err != nil {
		return err
	}

	telemetryRepo := store.NewTelemetryRepository(db.Pool)
	auditRepo := store.NewAuditRepository(db.Pool)
	runner := audit.NewRunner(telemetryRepo, auditRepo, cache, pipe,
		time.Duration(cfg.Audit.LookbackDays)*24*time.Hour, log)

	sched := scheduler.New(log)
	auditJob := jobs.NewAuditJob(runner, cfg, log)
	if err := sched.AddJob(auditJob); err != nil {
		return fmt.Errorf("add audit job: %w", err)
	}

	sched.Start()
	defer sched.Stop()

	if schedulerRunNow {
		if err := sched.RunJob(auditJob.Name()); err != nil {
			return err
		}
	}

	fmt.Printf("⏰ Scheduler running (schedule: %s). Ctrl+C to stop.\n", cfg.Audit.Schedule)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	return nil
}
