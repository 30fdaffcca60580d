package s0_ingest

import (
	"sort"
	"time"

	"github.com/wonny/loadaudit/internal/contracts"
	"github.com/wonny/loadaudit/pkg/logger"
)

// Orderer produces the globally time-sorted record sequence and computes
// per-contract deltas to the preceding record.
// ⭐ SSOT: 전역 정렬은 이 단계에서만, 이후 단계는 순서를 신뢰함
type Orderer struct {
	gapCeiling time.Duration
	log        *logger.Logger
}

// NewOrderer creates an orderer. Deltas above gapCeiling are nulled, not
// zeroed and not removed: a long outage between shifts carries no sampling
// information.
func NewOrderer(gapCeiling time.Duration, log *logger.Logger) *Orderer {
	return &Orderer{gapCeiling: gapCeiling, log: log}
}

// Order sorts records ascending by msg_time and fills TimeDelta in place.
// Ties break on (contract_id, arrival sequence) so repeated runs over the
// same input are byte-identical. Returns data-integrity warnings for
// single-record contracts.
func (o *Orderer) Order(records []*contracts.Record) []contracts.Warning {
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.MsgTime.Equal(b.MsgTime) {
			return a.MsgTime.Before(b.MsgTime)
		}
		if a.ContractID != b.ContractID {
			return a.ContractID < b.ContractID
		}
		return a.Seq < b.Seq
	})

	lastSeen := make(map[int64]time.Time)
	perContract := make(map[int64]int)

	for _, rec := range records {
		perContract[rec.ContractID]++
		rec.TimeDelta = nil

		prev, ok := lastSeen[rec.ContractID]
		lastSeen[rec.ContractID] = rec.MsgTime
		if !ok {
			continue
		}

		delta := rec.MsgTime.Sub(prev)
		if delta > o.gapCeiling {
			// Outlier suppression: treated as "no information"
			continue
		}
		rec.TimeDelta = &delta
	}

	var warnings []contracts.Warning
	for contractID, count := range perContract {
		if count == 1 {
			warnings = append(warnings, contracts.Warning{
				ContractID: contractID,
				Reason:     "contract has a single record",
			})
		}
	}
	sort.Slice(warnings, func(i, j int) bool {
		return warnings[i].ContractID < warnings[j].ContractID
	})

	o.log.WithFields(map[string]interface{}{
		"records":   len(records),
		"contracts": len(perContract),
	}).Debug("Ordered records")

	return warnings
}
