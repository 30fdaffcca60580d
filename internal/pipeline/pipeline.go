package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/loadaudit/internal/contracts"
	"github.com/wonny/loadaudit/internal/ruleconfig"
	"github.com/wonny/loadaudit/internal/s0_ingest"
	"github.com/wonny/loadaudit/internal/s1_segment"
	"github.com/wonny/loadaudit/internal/s2_quality"
	"github.com/wonny/loadaudit/internal/s3_backfill"
	"github.com/wonny/loadaudit/pkg/logger"
)

// Event reports pipeline progress to an optional observer.
type Event struct {
	RunID string    `json:"run_id"`
	Stage string    `json:"stage"`
	At    time.Time `json:"at"`
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithProgress registers a progress observer. Called synchronously between
// stages; keep it cheap.
func WithProgress(fn func(Event)) Option {
	return func(p *Pipeline) {
		p.progress = fn
	}
}

// Pipeline coordinates the full audit:
// order → segment → aggregate → rules → backfill.
// ⭐ SSOT: 단계 조율은 여기서만
//
// The global sort is the only cross-contract step. Everything after it is
// strictly contract-scoped, so aggregation and rule evaluation run per
// contract shard concurrently and the results are concatenated — union, no
// merge logic.
type Pipeline struct {
	orderer    *s0_ingest.Orderer
	segmenter  *s1_segment.Segmenter
	aggregator *s1_segment.Aggregator
	engine     *s2_quality.Engine
	backfiller *s3_backfill.Backfiller

	rules     ruleconfig.Rules
	rulesHash string
	workers   int
	log       *logger.Logger
	progress  func(Event)
}

// New builds a pipeline. Rules are validated up front; an invalid threshold
// aborts before any processing (ConfigError).
func New(rules ruleconfig.Rules, workers int, log *logger.Logger, opts ...Option) (*Pipeline, error) {
	if err := ruleconfig.Validate(&rules); err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = 1
	}

	hash, err := ruleconfig.Hash(&rules)
	if err != nil {
		return nil, fmt.Errorf("hash rules: %w", err)
	}

	p := &Pipeline{
		orderer:    s0_ingest.NewOrderer(rules.ContractGapThreshold.Std(), log),
		segmenter:  s1_segment.NewSegmenter(log),
		aggregator: s1_segment.NewAggregator(log),
		engine:     s2_quality.NewEngine(rules, log),
		backfiller: s3_backfill.NewBackfiller(log),
		rules:      rules,
		rulesHash:  hash,
		workers:    workers,
		log:        log,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// RulesHash returns the hash recorded on every report.
func (p *Pipeline) RulesHash() string {
	return p.rulesHash
}

// Run executes one batch audit over the dataset. Records are annotated in
// place; the returned report summarizes the run and the intervals carry the
// per-group verdicts. Batch semantics: the run either completes over the
// full dataset or fails entirely.
func (p *Pipeline) Run(ctx context.Context, ds *contracts.Dataset, rejected []contracts.RejectedRow) (*contracts.Report, []*contracts.Interval, error) {
	started := time.Now()
	runID := uuid.NewString()

	report := &contracts.Report{
		RunID:        runID,
		RulesHash:    p.rulesHash,
		StartedAt:    started,
		TotalRecords: len(ds.Records),
		RejectedRows: len(rejected),
		Rejected:     rejected,
		FlagCounts:   make(map[string]int),
	}

	p.emit(runID, "order")
	report.Warnings = append(report.Warnings, p.orderer.Order(ds.Records)...)

	p.emit(runID, "segment")
	p.segmenter.Segment(ds.Records)

	shards := shardByContract(ds.Records)
	report.ContractCount = len(shards)

	p.emit(runID, "evaluate")
	intervals, warnings, err := p.evaluateShards(ctx, shards)
	if err != nil {
		return nil, nil, err
	}
	report.Warnings = append(report.Warnings, warnings...)
	report.IntervalCount = len(intervals)

	p.emit(runID, "backfill")
	if err := p.backfiller.Backfill(ds.Records, intervals); err != nil {
		return nil, nil, err
	}

	for _, iv := range intervals {
		for i, set := range iv.Flags.Values() {
			if set {
				report.FlagCounts[contracts.FlagColumns[i]]++
			}
		}
		if iv.Flags.Invalid() {
			report.InvalidIntervals++
		}
	}
	for _, rec := range ds.Records {
		if rec.Flags.Invalid() {
			report.FlaggedRecords++
		}
	}

	report.Duration = time.Since(started)
	p.emit(runID, "done")

	p.log.WithFields(map[string]interface{}{
		"run_id":    runID,
		"records":   report.TotalRecords,
		"rejected":  report.RejectedRows,
		"contracts": report.ContractCount,
		"intervals": report.IntervalCount,
		"invalid":   report.InvalidIntervals,
		"duration":  report.Duration,
	}).Info("Audit run completed")

	return report, intervals, nil
}

// evaluateShards aggregates and evaluates every contract shard concurrently.
func (p *Pipeline) evaluateShards(ctx context.Context, shards map[int64][]*contracts.Record) ([]*contracts.Interval, []contracts.Warning, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	var mu sync.Mutex
	var intervals []*contracts.Interval
	var warnings []contracts.Warning

	for contractID, shard := range shards {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			shardIntervals := p.aggregator.Aggregate(shard)
			shardWarnings := p.engine.Evaluate(shardIntervals)

			mu.Lock()
			intervals = append(intervals, shardIntervals...)
			warnings = append(warnings, shardWarnings...)
			mu.Unlock()

			p.log.WithFields(map[string]interface{}{
				"contract":  contractID,
				"records":   len(shard),
				"intervals": len(shardIntervals),
			}).Debug("Evaluated contract shard")

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	// Deterministic output regardless of shard completion order
	sort.Slice(intervals, func(i, j int) bool {
		if intervals[i].ContractID != intervals[j].ContractID {
			return intervals[i].ContractID < intervals[j].ContractID
		}
		return intervals[i].GroupID < intervals[j].GroupID
	})
	sort.Slice(warnings, func(i, j int) bool {
		if warnings[i].ContractID != warnings[j].ContractID {
			return warnings[i].ContractID < warnings[j].ContractID
		}
		return warnings[i].GroupID < warnings[j].GroupID
	})

	return intervals, warnings, nil
}

// shardByContract splits the ordered records per contract, preserving order
// within each shard.
func shardByContract(records []*contracts.Record) map[int64][]*contracts.Record {
	shards := make(map[int64][]*contracts.Record)
	for _, rec := range records {
		shards[rec.ContractID] = append(shards[rec.ContractID], rec)
	}
	return shards
}

func (p *Pipeline) emit(runID, stage string) {
	if p.progress == nil {
		return
	}
	p.progress(Event{RunID: runID, Stage: stage, At: time.Now()})
}
