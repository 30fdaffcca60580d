package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/loadaudit/internal/contracts"
)

// AuditRepository persists run reports and interval verdicts.
// ⭐ SSOT: 감사 결과 저장은 여기서만
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new audit repository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// SaveRun stores one report and its intervals in a single transaction.
func (r *AuditRepository) SaveRun(ctx context.Context, report *contracts.Report, intervals []*contracts.Interval) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	flagCounts, err := json.Marshal(report.FlagCounts)
	if err != nil {
		return fmt.Errorf("marshal flag counts: %w", err)
	}
	warnings, err := json.Marshal(report.Warnings)
	if err != nil {
		return fmt.Errorf("marshal warnings: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO audit.load_runs (
			run_id, rules_hash, started_at, duration_ms,
			total_records, rejected_rows, contract_count, interval_count,
			invalid_intervals, flagged_records, flag_counts, warnings
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		report.RunID, report.RulesHash, report.StartedAt, report.Duration.Milliseconds(),
		report.TotalRecords, report.RejectedRows, report.ContractCount, report.IntervalCount,
		report.InvalidIntervals, report.FlaggedRecords, flagCounts, warnings,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	batch := &pgx.Batch{}
	for _, iv := range intervals {
		f := iv.Flags
		var avgDeltaMs *int64
		if iv.AvgDelta != nil {
			ms := iv.AvgDelta.Milliseconds()
			avgDeltaMs = &ms
		}

		batch.Queue(`
			INSERT INTO audit.load_intervals (
				run_id, contract_id, group_id, load_number,
				time_min, time_max, avg_delta_ms, point_count,
				duration_short, duration_long, point_count_low, point_count_high,
				reporting_gap, ping_rate_mismatch, duplicate_label,
				overlap_flag, noncontiguous, invalid_load
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		`,
			report.RunID, iv.ContractID, iv.GroupID, iv.LoadNumber,
			iv.TimeMin, iv.TimeMax, avgDeltaMs, iv.PointCount,
			f.DurationShort, f.DurationLong, f.PointCountLow, f.PointCountHigh,
			f.ReportingGap, f.PingRateMismatch, f.DuplicateLabel,
			f.Overlap, f.Noncontiguous, f.Invalid(),
		)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert intervals: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}

	return nil
}

// GetLatestRun retrieves the most recent report.
func (r *AuditRepository) GetLatestRun(ctx context.Context) (*contracts.Report, error) {
	query := `
		SELECT run_id, rules_hash, started_at, duration_ms,
			total_records, rejected_rows, contract_count, interval_count,
			invalid_intervals, flagged_records, flag_counts, warnings
		FROM audit.load_runs
		ORDER BY started_at DESC
		LIMIT 1
	`

	report, err := scanRun(r.pool.QueryRow(ctx, query))
	if err != nil {
		return nil, fmt.Errorf("query latest run: %w", err)
	}
	return report, nil
}

// ListRuns retrieves the latest n reports, newest first.
func (r *AuditRepository) ListRuns(ctx context.Context, n int) ([]*contracts.Report, error) {
	query := `
		SELECT run_id, rules_hash, started_at, duration_ms,
			total_records, rejected_rows, contract_count, interval_count,
			invalid_intervals, flagged_records, flag_counts, warnings
		FROM audit.load_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var reports []*contracts.Report
	for rows.Next() {
		report, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate runs: %w", rows.Err())
	}

	return reports, nil
}

func scanRun(row pgx.Row) (*contracts.Report, error) {
	var report contracts.Report
	var durationMs int64
	var flagCounts, warnings []byte

	err := row.Scan(
		&report.RunID, &report.RulesHash, &report.StartedAt, &durationMs,
		&report.TotalRecords, &report.RejectedRows, &report.ContractCount, &report.IntervalCount,
		&report.InvalidIntervals, &report.FlaggedRecords, &flagCounts, &warnings,
	)
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}

	report.Duration = time.Duration(durationMs) * time.Millisecond

	if err := json.Unmarshal(flagCounts, &report.FlagCounts); err != nil {
		return nil, fmt.Errorf("unmarshal flag counts: %w", err)
	}
	if len(warnings) > 0 {
		if err := json.Unmarshal(warnings, &report.Warnings); err != nil {
			return nil, fmt.Errorf("unmarshal warnings: %w", err)
		}
	}

	return &report, nil
}
