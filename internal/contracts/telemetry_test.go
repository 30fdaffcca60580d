package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlagSet_Invalid(t *testing.T) {
	assert.False(t, FlagSet{}.Invalid())

	tests := []struct {
		name  string
		flags FlagSet
	}{
		{name: "duration_short", flags: FlagSet{DurationShort: true}},
		{name: "duration_long", flags: FlagSet{DurationLong: true}},
		{name: "point_count_low", flags: FlagSet{PointCountLow: true}},
		{name: "point_count_high", flags: FlagSet{PointCountHigh: true}},
		{name: "reporting_gap", flags: FlagSet{ReportingGap: true}},
		{name: "ping_rate_mismatch", flags: FlagSet{PingRateMismatch: true}},
		{name: "duplicate_label", flags: FlagSet{DuplicateLabel: true}},
		{name: "overlap", flags: FlagSet{Overlap: true}},
		{name: "noncontiguous", flags: FlagSet{Noncontiguous: true}},
	}

	// Any single positive flag condemns the interval
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.flags.Invalid())
		})
	}
}

func TestFlagSet_Values(t *testing.T) {
	values := FlagSet{ReportingGap: true}.Values()
	assert.Len(t, values, len(FlagColumns))

	for i, col := range FlagColumns {
		switch col {
		case "reporting_gap", "invalid_load":
			assert.True(t, values[i], col)
		default:
			assert.False(t, values[i], col)
		}
	}
}

func TestReport_InvalidRate(t *testing.T) {
	assert.Equal(t, 0.0, (&Report{}).InvalidRate())

	r := &Report{IntervalCount: 4, InvalidIntervals: 1}
	assert.Equal(t, 0.25, r.InvalidRate())
}
