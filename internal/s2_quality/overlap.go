package s2_quality

import (
	"sort"

	"github.com/wonny/loadaudit/internal/contracts"
)

// detectOverlaps flags both members of every same-contract pair whose closed
// time ranges intersect: a.time_min <= b.time_max AND b.time_min <= a.time_max.
//
// Sweep line over intervals sorted by time_min: an interval can only overlap
// the intervals still active when it starts, so each one is compared against
// the active set instead of every sibling. Same result set as the pairwise
// scan at O(n log n). Self-comparison excluded by construction.
func (e *Engine) detectOverlaps(siblings []*contracts.Interval) {
	if len(siblings) < 2 {
		return
	}

	sorted := make([]*contracts.Interval, len(siblings))
	copy(sorted, siblings)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].TimeMin.Equal(sorted[j].TimeMin) {
			return sorted[i].TimeMin.Before(sorted[j].TimeMin)
		}
		return sorted[i].GroupID < sorted[j].GroupID
	})

	active := make([]*contracts.Interval, 0, 4)
	for _, cur := range sorted {
		// Retire intervals that ended before cur starts. Ranges are closed
		// on both ends, so an interval ending exactly at cur.TimeMin still
		// overlaps.
		kept := active[:0]
		for _, prev := range active {
			if prev.TimeMax.Before(cur.TimeMin) {
				continue
			}
			kept = append(kept, prev)

			prev.Flags.Overlap = true
			cur.Flags.Overlap = true
			e.log.WithFields(map[string]interface{}{
				"contract": cur.ContractID,
				"a":        intervalRef(prev),
				"b":        intervalRef(cur),
			}).Warn("Interval time ranges overlap")
		}
		active = append(kept, cur)
	}
}
