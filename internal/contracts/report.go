package contracts

import "time"

// Warning is a non-fatal data-integrity finding surfaced to the caller.
// Warnings never block output.
type Warning struct {
	ContractID int64  `json:"contract_id"`
	GroupID    int    `json:"group_id,omitempty"`
	Reason     string `json:"reason"`
}

// RejectedRow records one input row dropped for a parse failure.
type RejectedRow struct {
	Line   int    `json:"line"` // 1-based, header included
	Reason string `json:"reason"`
}

// Report summarizes one complete audit run.
type Report struct {
	RunID     string        `json:"run_id"`
	RulesHash string        `json:"rules_hash"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`

	TotalRecords     int `json:"total_records"`
	RejectedRows     int `json:"rejected_rows"`
	ContractCount    int `json:"contract_count"`
	IntervalCount    int `json:"interval_count"`
	InvalidIntervals int `json:"invalid_intervals"`
	FlaggedRecords   int `json:"flagged_records"`

	// Positive verdicts per rule, keyed by FlagColumns names
	FlagCounts map[string]int `json:"flag_counts"`

	Rejected []RejectedRow `json:"rejected,omitempty"`
	Warnings []Warning     `json:"warnings,omitempty"`
}

// InvalidRate returns the share of intervals condemned by at least one rule.
func (r *Report) InvalidRate() float64 {
	if r.IntervalCount == 0 {
		return 0.0
	}
	return float64(r.InvalidIntervals) / float64(r.IntervalCount)
}
