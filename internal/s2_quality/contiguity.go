package s2_quality

import (
	"sort"

	"github.com/wonny/loadaudit/internal/contracts"
)

// checkContiguity flags intervals whose gap to their same-contract
// predecessor exceeds the load gap threshold. The first interval of a
// contract has no predecessor and is never flagged. The predecessor is
// always taken from the same contract's siblings, never across contracts.
func (e *Engine) checkContiguity(siblings []*contracts.Interval) {
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

	for i := 1; i < len(sorted); i++ {
		gap := absDuration(sorted[i].TimeMin.Sub(sorted[i-1].TimeMax))
		if gap > e.rules.LoadGapThreshold.Std() {
			sorted[i].Flags.Noncontiguous = true
		}
	}
}
