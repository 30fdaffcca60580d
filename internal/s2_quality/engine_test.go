package s2_quality

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/loadaudit/internal/contracts"
	"github.com/wonny/loadaudit/internal/ruleconfig"
	"github.com/wonny/loadaudit/pkg/logger"
)

// permissiveRules returns thresholds no well-formed test interval trips, so
// each test tightens exactly the rule it exercises.
func permissiveRules() ruleconfig.Rules {
	return ruleconfig.Rules{
		ContractGapThreshold: ruleconfig.Duration(time.Hour),
		LoadGapThreshold:     ruleconfig.Duration(time.Hour),
		DurationMin:          0,
		DurationMax:          ruleconfig.Duration(240 * time.Hour),
		PointCountMin:        1,
		PointCountMax:        1_000_000,
		PingRateThreshold:    ruleconfig.Duration(time.Hour),
	}
}

func i64p(v int64) *int64 {
	return &v
}

func durp(d time.Duration) *time.Duration {
	return &d
}

// iv builds an interval starting at base+start lasting total with the given
// point count, average delta and label.
func iv(contractID int64, groupID int, start, total time.Duration, points int, avg *time.Duration, load *int64) *contracts.Interval {
	base := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	return &contracts.Interval{
		ContractID: contractID,
		GroupID:    groupID,
		LoadNumber: load,
		TimeMin:    base.Add(start),
		TimeMax:    base.Add(start + total),
		AvgDelta:   avg,
		PointCount: points,
	}
}

func TestEngine_Evaluate_thresholdRules(t *testing.T) {
	tests := []struct {
		name   string
		tweak  func(*ruleconfig.Rules)
		target *contracts.Interval
		want   contracts.FlagSet
	}{
		{
			name:   "duration short",
			tweak:  func(r *ruleconfig.Rules) { r.DurationMin = ruleconfig.Duration(5 * time.Minute) },
			target: iv(7, 1, 0, time.Minute, 6, durp(10*time.Second), i64p(1)),
			want:   contracts.FlagSet{DurationShort: true},
		},
		{
			name:   "duration long",
			tweak:  func(r *ruleconfig.Rules) { r.DurationMax = ruleconfig.Duration(time.Minute) },
			target: iv(7, 1, 0, 10*time.Minute, 60, durp(10*time.Second), i64p(1)),
			want:   contracts.FlagSet{DurationLong: true},
		},
		{
			name:   "point count low",
			tweak:  func(r *ruleconfig.Rules) { r.PointCountMin = 10 },
			target: iv(7, 1, 0, time.Minute, 6, durp(10*time.Second), i64p(1)),
			want:   contracts.FlagSet{PointCountLow: true},
		},
		{
			name:   "point count high",
			tweak:  func(r *ruleconfig.Rules) { r.PointCountMax = 5 },
			target: iv(7, 1, 0, time.Minute, 6, durp(10*time.Second), i64p(1)),
			want:   contracts.FlagSet{PointCountHigh: true},
		},
		{
			name:   "reporting gap",
			tweak:  func(r *ruleconfig.Rules) { r.LoadGapThreshold = ruleconfig.Duration(5 * time.Second) },
			target: iv(7, 1, 0, time.Minute, 6, durp(10*time.Second), i64p(1)),
			want:   contracts.FlagSet{ReportingGap: true},
		},
		{
			name:  "ping rate mismatch",
			tweak: func(r *ruleconfig.Rules) { r.PingRateThreshold = ruleconfig.Duration(time.Second) },
			// estimated = 60s/6 = 10s, observed avg = 20s, diff 10s > 1s
			target: iv(7, 1, 0, time.Minute, 6, durp(20*time.Second), i64p(1)),
			want:   contracts.FlagSet{PingRateMismatch: true},
		},
		{
			name:   "clean interval",
			tweak:  func(r *ruleconfig.Rules) {},
			target: iv(7, 1, 0, time.Minute, 6, durp(10*time.Second), i64p(1)),
			want:   contracts.FlagSet{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := permissiveRules()
			tt.tweak(&rules)

			engine := NewEngine(rules, logger.NewNop())
			engine.Evaluate([]*contracts.Interval{tt.target})

			assert.Equal(t, tt.want, tt.target.Flags)
			assert.Equal(t, tt.want != (contracts.FlagSet{}), tt.target.Flags.Invalid())
		})
	}
}

func TestEngine_Evaluate_nullAvgDelta(t *testing.T) {
	t.Run("comparisons short-circuit to false", func(t *testing.T) {
		rules := permissiveRules()
		// Thresholds that would condemn any known average
		rules.LoadGapThreshold = ruleconfig.Duration(time.Nanosecond)
		rules.PingRateThreshold = ruleconfig.Duration(time.Nanosecond)

		target := iv(7, 1, 0, time.Minute, 6, nil, i64p(1))
		engine := NewEngine(rules, logger.NewNop())
		warnings := engine.Evaluate([]*contracts.Interval{target})

		assert.False(t, target.Flags.ReportingGap)
		assert.False(t, target.Flags.PingRateMismatch)

		// Unknown average always surfaces as a data-integrity warning
		require.Len(t, warnings, 1)
		assert.Equal(t, int64(7), warnings[0].ContractID)
		assert.Equal(t, 1, warnings[0].GroupID)
	})

	t.Run("flag_unknown_delta forces reporting_gap", func(t *testing.T) {
		rules := permissiveRules()
		rules.FlagUnknownDelta = true

		target := iv(7, 1, 0, time.Minute, 6, nil, i64p(1))
		engine := NewEngine(rules, logger.NewNop())
		warnings := engine.Evaluate([]*contracts.Interval{target})

		assert.True(t, target.Flags.ReportingGap)
		assert.False(t, target.Flags.PingRateMismatch)
		assert.Len(t, warnings, 1)
	})
}

func TestEngine_Evaluate_duplicateLabels(t *testing.T) {
	avg := durp(10 * time.Second)

	// Label 1 appears in groups 1 and 3; label 2 once; two null labels
	intervals := []*contracts.Interval{
		iv(7, 1, 0, time.Minute, 6, avg, i64p(1)),
		iv(7, 2, 2*time.Minute, time.Minute, 6, avg, i64p(2)),
		iv(7, 3, 4*time.Minute, time.Minute, 6, avg, i64p(1)),
		iv(7, 4, 6*time.Minute, time.Minute, 6, avg, nil),
		iv(7, 5, 8*time.Minute, time.Minute, 6, avg, nil),
	}

	engine := NewEngine(permissiveRules(), logger.NewNop())
	engine.Evaluate(intervals)

	// Symmetric: both reuses flagged, not just the later one
	assert.True(t, intervals[0].Flags.DuplicateLabel)
	assert.True(t, intervals[2].Flags.DuplicateLabel)
	assert.False(t, intervals[1].Flags.DuplicateLabel)

	// Two missing labels are not a repeated label
	assert.False(t, intervals[3].Flags.DuplicateLabel)
	assert.False(t, intervals[4].Flags.DuplicateLabel)
}

func TestEngine_Evaluate_contractScoped(t *testing.T) {
	avg := durp(10 * time.Second)

	// Same label on different contracts is not a duplicate
	intervals := []*contracts.Interval{
		iv(7, 1, 0, time.Minute, 6, avg, i64p(1)),
		iv(9, 1, 0, time.Minute, 6, avg, i64p(1)),
	}

	engine := NewEngine(permissiveRules(), logger.NewNop())
	engine.Evaluate(intervals)

	assert.False(t, intervals[0].Flags.DuplicateLabel)
	assert.False(t, intervals[1].Flags.DuplicateLabel)

	// Identical time ranges on different contracts do not overlap either
	assert.False(t, intervals[0].Flags.Overlap)
	assert.False(t, intervals[1].Flags.Overlap)
}
