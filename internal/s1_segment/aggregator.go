package s1_segment

import (
	"sort"
	"time"

	"github.com/wonny/loadaudit/internal/contracts"
	"github.com/wonny/loadaudit/pkg/logger"
)

// Aggregator reduces each (contract, group) partition to one Interval.
type Aggregator struct {
	log *logger.Logger
}

// NewAggregator creates an aggregator.
func NewAggregator(log *logger.Logger) *Aggregator {
	return &Aggregator{log: log}
}

type groupKey struct {
	contractID int64
	groupID    int
}

type groupAcc struct {
	interval  *contracts.Interval
	deltaSum  time.Duration
	deltaSeen int
}

// Aggregate folds segmented records into intervals, one per (contract,
// group), sorted by contract then group. The input must be time-ordered and
// segmented; records may span any number of contracts.
//
// AvgDelta is the mean of non-null deltas. A group whose only record has no
// predecessor, or whose sole delta was nulled, yields a nil average — that
// propagates as "unknown" into the rule engine, never as zero.
func (a *Aggregator) Aggregate(records []*contracts.Record) []*contracts.Interval {
	accs := make(map[groupKey]*groupAcc)
	order := make([]groupKey, 0)

	for _, rec := range records {
		key := groupKey{rec.ContractID, rec.GroupID}
		acc, ok := accs[key]
		if !ok {
			acc = &groupAcc{
				interval: &contracts.Interval{
					ContractID: rec.ContractID,
					GroupID:    rec.GroupID,
					LoadNumber: rec.LoadNumber,
					TimeMin:    rec.MsgTime,
					TimeMax:    rec.MsgTime,
				},
			}
			accs[key] = acc
			order = append(order, key)
		}

		iv := acc.interval
		if rec.MsgTime.Before(iv.TimeMin) {
			iv.TimeMin = rec.MsgTime
		}
		if rec.MsgTime.After(iv.TimeMax) {
			iv.TimeMax = rec.MsgTime
		}
		iv.PointCount++

		if rec.TimeDelta != nil {
			acc.deltaSum += *rec.TimeDelta
			acc.deltaSeen++
		}
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].contractID != order[j].contractID {
			return order[i].contractID < order[j].contractID
		}
		return order[i].groupID < order[j].groupID
	})

	intervals := make([]*contracts.Interval, 0, len(order))
	for _, key := range order {
		acc := accs[key]
		if acc.deltaSeen > 0 {
			avg := acc.deltaSum / time.Duration(acc.deltaSeen)
			acc.interval.AvgDelta = &avg
		}
		intervals = append(intervals, acc.interval)
	}

	a.log.WithFields(map[string]interface{}{
		"records":   len(records),
		"intervals": len(intervals),
	}).Debug("Aggregated load intervals")

	return intervals
}
