package s3_backfill

import (
	"fmt"
	"sort"

	"github.com/wonny/loadaudit/internal/contracts"
	"github.com/wonny/loadaudit/pkg/logger"
)

// Backfiller projects interval verdicts back onto every source record.
// ⭐ SSOT: 판정 역전파는 이 단계에서만
//
// Each interval is keyed by its own time_min; each record matches the
// interval with the greatest key not after the record's msg_time. Correct
// because the aggregated intervals partition each contract's timeline
// contiguously in sorted order — cross-interval overlaps flagged upstream
// are a signal about the source labels, not a structural problem for this
// join. Record count and order are preserved exactly.
type Backfiller struct {
	log *logger.Logger
}

// NewBackfiller creates a backfiller.
func NewBackfiller(log *logger.Logger) *Backfiller {
	return &Backfiller{log: log}
}

// Backfill attaches flags in place. A record matching no interval, or
// falling outside its matched interval's closed range, breaks the partition
// invariant and aborts the run.
func (b *Backfiller) Backfill(records []*contracts.Record, intervals []*contracts.Interval) error {
	byContract := make(map[int64][]*contracts.Interval)
	for _, iv := range intervals {
		byContract[iv.ContractID] = append(byContract[iv.ContractID], iv)
	}
	for _, siblings := range byContract {
		sort.Slice(siblings, func(i, j int) bool {
			return siblings[i].TimeMin.Before(siblings[j].TimeMin)
		})
	}

	matched := make(map[int64]int)

	for _, rec := range records {
		siblings, ok := byContract[rec.ContractID]
		if !ok {
			return fmt.Errorf("contract %d has records but no intervals: %w",
				rec.ContractID, contracts.ErrPartitionViolation)
		}

		// Greatest time_min <= msg_time: first index whose time_min is
		// after msg_time, minus one.
		idx := sort.Search(len(siblings), func(i int) bool {
			return siblings[i].TimeMin.After(rec.MsgTime)
		}) - 1
		if idx < 0 {
			return fmt.Errorf("contract %d: record at %s precedes every interval: %w",
				rec.ContractID, rec.MsgTime, contracts.ErrPartitionViolation)
		}

		iv := siblings[idx]
		if rec.MsgTime.After(iv.TimeMax) {
			// Matched by preceding key but past the interval's closed end:
			// the partition does not cover this record.
			return fmt.Errorf("contract %d: record at %s outside interval %d/%d: %w",
				rec.ContractID, rec.MsgTime, iv.ContractID, iv.GroupID,
				contracts.ErrPartitionViolation)
		}

		rec.Flags = &iv.Flags
		matched[rec.ContractID]++
	}

	// Partition completeness: every contract's interval point counts must
	// sum to its record count.
	for contractID, siblings := range byContract {
		sum := 0
		for _, iv := range siblings {
			sum += iv.PointCount
		}
		if sum != matched[contractID] {
			return fmt.Errorf("contract %d: interval point counts sum to %d, matched %d records: %w",
				contractID, sum, matched[contractID], contracts.ErrPartitionViolation)
		}
	}

	b.log.WithFields(map[string]interface{}{
		"records":   len(records),
		"intervals": len(intervals),
	}).Debug("Backfilled interval verdicts onto records")

	return nil
}
