package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/loadaudit/internal/audit"
	"github.com/wonny/loadaudit/pkg/config"
	"github.com/wonny/loadaudit/pkg/logger"
)

// AuditJob runs the load audit over the configured lookback window
// ⭐ SSOT: 정기 감사 스케줄은 이 Job에서만
type AuditJob struct {
	runner *audit.Runner
	config *config.Config
	logger *logger.Logger
}

// NewAuditJob creates a new audit job
func NewAuditJob(runner *audit.Runner, cfg *config.Config, log *logger.Logger) *AuditJob {
	return &AuditJob{
		runner: runner,
		config: cfg,
		logger: log,
	}
}

// Name returns the job name
func (j *AuditJob) Name() string {
	return "load_audit"
}

// Schedule returns the cron schedule from config
func (j *AuditJob) Schedule() string {
	return j.config.Audit.Schedule
}

// Run executes the scheduled audit
func (j *AuditJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled load audit")

	report, err := j.runner.RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("scheduled audit: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":    report.RunID,
		"intervals": report.IntervalCount,
		"invalid":   report.InvalidIntervals,
	}).Info("Scheduled load audit finished")

	return nil
}
