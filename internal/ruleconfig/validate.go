package ruleconfig

import (
	"github.com/wonny/loadaudit/internal/contracts"
)

// Validate checks every threshold before a run starts. Any violation is a
// ConfigError and aborts before processing.
func Validate(rules *Rules) error {
	if rules.ContractGapThreshold <= 0 {
		return &contracts.ConfigError{Field: "contract_gap_threshold", Reason: "must be positive"}
	}

	if rules.LoadGapThreshold <= 0 {
		return &contracts.ConfigError{Field: "load_gap_threshold", Reason: "must be positive"}
	}

	if rules.DurationMin < 0 {
		return &contracts.ConfigError{Field: "duration_min", Reason: "must not be negative"}
	}

	if rules.DurationMax <= 0 {
		return &contracts.ConfigError{Field: "duration_max", Reason: "must be positive"}
	}

	if rules.DurationMax < rules.DurationMin {
		return &contracts.ConfigError{Field: "duration_max", Reason: "must not be below duration_min"}
	}

	if rules.PointCountMin < 1 {
		return &contracts.ConfigError{Field: "point_count_min", Reason: "must be at least 1"}
	}

	if rules.PointCountMax < rules.PointCountMin {
		return &contracts.ConfigError{Field: "point_count_max", Reason: "must not be below point_count_min"}
	}

	if rules.PingRateThreshold <= 0 {
		return &contracts.ConfigError{Field: "ping_rate_threshold", Reason: "must be positive"}
	}

	return nil
}
