package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/loadaudit/internal/contracts"
	"github.com/wonny/loadaudit/internal/pipeline"
	"github.com/wonny/loadaudit/internal/store"
	"github.com/wonny/loadaudit/pkg/logger"
	"github.com/wonny/loadaudit/pkg/redis"
)

// CacheKeyLatestReport is the cache slot for the most recent report.
const CacheKeyLatestReport = "latest_report"

// Runner executes store-backed audit runs: load a telemetry window, run the
// pipeline, persist report and intervals, refresh the report cache.
// The CSV path in cmd/ bypasses the runner entirely.
type Runner struct {
	telemetry *store.TelemetryRepository
	auditRepo *store.AuditRepository
	cache     *redis.Cache
	pipe      *pipeline.Pipeline
	lookback  time.Duration
	log       *logger.Logger
}

// NewRunner creates a runner. cache may be a disabled client's cache.
func NewRunner(
	telemetry *store.TelemetryRepository,
	auditRepo *store.AuditRepository,
	cache *redis.Cache,
	pipe *pipeline.Pipeline,
	lookback time.Duration,
	log *logger.Logger,
) *Runner {
	return &Runner{
		telemetry: telemetry,
		auditRepo: auditRepo,
		cache:     cache,
		pipe:      pipe,
		lookback:  lookback,
		log:       log,
	}
}

// RunOnce audits the lookback window ending now.
func (r *Runner) RunOnce(ctx context.Context) (*contracts.Report, error) {
	to := time.Now()
	from := to.Add(-r.lookback)

	return r.RunWindow(ctx, from, to)
}

// RunWindow audits the records with msg_time in [from, to).
func (r *Runner) RunWindow(ctx context.Context, from, to time.Time) (*contracts.Report, error) {
	r.log.WithFields(map[string]interface{}{
		"from": from,
		"to":   to,
	}).Info("Starting store-backed audit run")

	ds, err := r.telemetry.GetByTimeRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load telemetry: %w", err)
	}

	if len(ds.Records) == 0 {
		r.log.Warn("Audit window contains no records")
	}

	// Store-backed records are pre-parsed, so there are no rejected rows.
	report, intervals, err := r.pipe.Run(ctx, ds, nil)
	if err != nil {
		return nil, fmt.Errorf("audit run: %w", err)
	}

	if err := r.auditRepo.SaveRun(ctx, report, intervals); err != nil {
		return nil, fmt.Errorf("save run: %w", err)
	}

	if err := r.cache.Set(ctx, CacheKeyLatestReport, report, time.Hour); err != nil {
		// Cache refresh failures never fail the run
		r.log.WithError(err).Warn("Failed to cache latest report")
	}

	return report, nil
}
