package s2_quality

import (
	"fmt"
	"sort"
	"time"

	"github.com/wonny/loadaudit/internal/contracts"
	"github.com/wonny/loadaudit/internal/ruleconfig"
	"github.com/wonny/loadaudit/pkg/logger"
)

// Engine evaluates the outlier rules for every interval.
// ⭐ SSOT: 품질 플래그 판정은 이 엔진에서만
//
// All nine rules are independent booleans; any single positive flag condemns
// the interval. Rules never cross contract boundaries.
type Engine struct {
	rules ruleconfig.Rules
	log   *logger.Logger
}

// NewEngine creates a rule engine with validated rules.
func NewEngine(rules ruleconfig.Rules, log *logger.Logger) *Engine {
	return &Engine{rules: rules, log: log}
}

// Evaluate sets the flags of every interval in place and returns the
// collected data-integrity warnings. Intervals may span any number of
// contracts; evaluation is partitioned internally.
func (e *Engine) Evaluate(intervals []*contracts.Interval) []contracts.Warning {
	var warnings []contracts.Warning

	byContract := make(map[int64][]*contracts.Interval)
	contractIDs := make([]int64, 0)
	for _, iv := range byOrder(intervals) {
		if _, ok := byContract[iv.ContractID]; !ok {
			contractIDs = append(contractIDs, iv.ContractID)
		}
		byContract[iv.ContractID] = append(byContract[iv.ContractID], iv)
	}
	sort.Slice(contractIDs, func(i, j int) bool { return contractIDs[i] < contractIDs[j] })

	for _, contractID := range contractIDs {
		siblings := byContract[contractID]

		for _, iv := range siblings {
			warnings = append(warnings, e.evaluateThresholds(iv)...)
		}

		e.flagDuplicateLabels(siblings)
		e.detectOverlaps(siblings)
		e.checkContiguity(siblings)
	}

	return warnings
}

// evaluateThresholds applies the per-interval numeric rules.
func (e *Engine) evaluateThresholds(iv *contracts.Interval) []contracts.Warning {
	total := iv.TotalTime()

	iv.Flags.DurationShort = total < e.rules.DurationMin.Std()
	iv.Flags.DurationLong = total > e.rules.DurationMax.Std()
	iv.Flags.PointCountLow = iv.PointCount < e.rules.PointCountMin
	iv.Flags.PointCountHigh = iv.PointCount > e.rules.PointCountMax

	if iv.AvgDelta == nil {
		// Unknown average: comparisons are undefined. reporting_gap and
		// ping_rate_mismatch short-circuit to false unless the rules ask for
		// unknown averages to be flagged outright.
		iv.Flags.ReportingGap = e.rules.FlagUnknownDelta
		iv.Flags.PingRateMismatch = false

		return []contracts.Warning{{
			ContractID: iv.ContractID,
			GroupID:    iv.GroupID,
			Reason:     "average delta undefined: all deltas were null",
		}}
	}

	iv.Flags.ReportingGap = *iv.AvgDelta > e.rules.LoadGapThreshold.Std()

	// point_count >= 1 by construction; guard anyway
	if iv.PointCount > 0 {
		estimated := total / time.Duration(iv.PointCount)
		iv.Flags.PingRateMismatch = absDuration(estimated-*iv.AvgDelta) > e.rules.PingRateThreshold.Std()
	}

	return nil
}

// flagDuplicateLabels flags every interval whose label occurs in two or more
// intervals of the same contract. Symmetric: all co-occurring intervals are
// flagged, not just the repeats. Null labels are skipped — a missing label
// is not a repeated one.
func (e *Engine) flagDuplicateLabels(siblings []*contracts.Interval) {
	byLabel := make(map[int64][]*contracts.Interval)
	for _, iv := range siblings {
		if iv.LoadNumber == nil {
			continue
		}
		byLabel[*iv.LoadNumber] = append(byLabel[*iv.LoadNumber], iv)
	}

	for label, group := range byLabel {
		if len(group) < 2 {
			continue
		}
		for _, iv := range group {
			iv.Flags.DuplicateLabel = true
		}
		e.log.WithFields(map[string]interface{}{
			"contract":  group[0].ContractID,
			"load":      label,
			"intervals": len(group),
		}).Warn("Load label reused across non-adjacent intervals")
	}
}

// byOrder returns intervals sorted by (contract, group) without touching the
// caller's slice.
func byOrder(intervals []*contracts.Interval) []*contracts.Interval {
	sorted := make([]*contracts.Interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].ContractID != sorted[j].ContractID {
			return sorted[i].ContractID < sorted[j].ContractID
		}
		return sorted[i].GroupID < sorted[j].GroupID
	})
	return sorted
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func intervalRef(iv *contracts.Interval) string {
	return fmt.Sprintf("%d/%d", iv.ContractID, iv.GroupID)
}
