package ruleconfig

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "20s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}

	*d = Duration(parsed)
	return nil
}

// MarshalJSON renders the duration as its canonical string form.
// 주의: Hash() 재현성 때문에 문자열로 고정
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Std returns the standard library duration value.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Rules holds every threshold the outlier rule engine evaluates against.
// Loaded once at startup, immutable for the run.
type Rules struct {
	// Deltas above this ceiling are nulled during ordering so long outages
	// between shifts do not pollute the average-delta statistic.
	ContractGapThreshold Duration `yaml:"contract_gap_threshold" json:"contract_gap_threshold"`

	// Used by both the reporting-gap and noncontiguity checks.
	LoadGapThreshold Duration `yaml:"load_gap_threshold" json:"load_gap_threshold"`

	// Interval length bounds
	DurationMin Duration `yaml:"duration_min" json:"duration_min"`
	DurationMax Duration `yaml:"duration_max" json:"duration_max"`

	// Interval size bounds
	PointCountMin int `yaml:"point_count_min" json:"point_count_min"`
	PointCountMax int `yaml:"point_count_max" json:"point_count_max"`

	// Tolerance between estimated sampling rate (total/count) and the
	// observed average delta.
	PingRateThreshold Duration `yaml:"ping_rate_threshold" json:"ping_rate_threshold"`

	// When true, an interval with an unknown (null) average delta is flagged
	// reporting_gap in addition to the data-integrity warning it always gets.
	FlagUnknownDelta bool `yaml:"flag_unknown_delta" json:"flag_unknown_delta"`
}

// Default returns a permissive rule set suitable for smoke runs.
func Default() Rules {
	return Rules{
		ContractGapThreshold: Duration(1 * time.Hour),
		LoadGapThreshold:     Duration(60 * time.Second),
		DurationMin:          Duration(5 * time.Minute),
		DurationMax:          Duration(24 * time.Hour),
		PointCountMin:        1,
		PointCountMax:        1_000_000,
		PingRateThreshold:    Duration(5 * time.Second),
		FlagUnknownDelta:     false,
	}
}
