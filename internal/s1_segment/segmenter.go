package s1_segment

import (
	"github.com/wonny/loadaudit/internal/contracts"
	"github.com/wonny/loadaudit/pkg/logger"
)

// Segmenter assigns group ids: a monotonically increasing counter per
// contract that increments whenever the reported load label changes from the
// previous record in that contract.
// ⭐ SSOT: group id 부여는 이 단계에서만
//
// Null labels compare as distinct from any value, including another null, so
// consecutive unlabeled records each open a new group. That mirrors strict
// difference semantics: "unknown" never equals "unknown".
type Segmenter struct {
	log *logger.Logger
}

// NewSegmenter creates a segmenter.
func NewSegmenter(log *logger.Logger) *Segmenter {
	return &Segmenter{log: log}
}

// Segment walks the time-ordered records once and fills GroupID in place.
// Requires ordered input; group ids are 1-based and contract-scoped.
// Returns the total number of groups.
func (s *Segmenter) Segment(records []*contracts.Record) int {
	type state struct {
		group int
		label *int64
	}

	states := make(map[int64]*state)
	total := 0

	for _, rec := range records {
		st, ok := states[rec.ContractID]
		if !ok {
			st = &state{}
			states[rec.ContractID] = st
		}

		if st.group == 0 || !sameLabel(st.label, rec.LoadNumber) {
			st.group++
			total++
		}
		st.label = rec.LoadNumber
		rec.GroupID = st.group
	}

	s.log.WithFields(map[string]interface{}{
		"records": len(records),
		"groups":  total,
	}).Debug("Segmented records into load groups")

	return total
}

// sameLabel reports whether two labels are equal. Any null involvement is a
// difference.
func sameLabel(a, b *int64) bool {
	return a != nil && b != nil && *a == *b
}
