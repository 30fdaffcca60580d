package s2_quality

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/loadaudit/internal/contracts"
	"github.com/wonny/loadaudit/pkg/logger"
)

func TestEngine_detectOverlaps(t *testing.T) {
	avg := durp(10 * time.Second)

	tests := []struct {
		name      string
		intervals []*contracts.Interval
		wantFlags []bool
	}{
		{
			name: "disjoint",
			intervals: []*contracts.Interval{
				iv(7, 1, 0, time.Minute, 6, avg, i64p(1)),
				iv(7, 2, 2*time.Minute, time.Minute, 6, avg, i64p(2)),
			},
			wantFlags: []bool{false, false},
		},
		{
			name: "partial overlap flags both",
			intervals: []*contracts.Interval{
				iv(7, 1, 0, 2*time.Minute, 12, avg, i64p(1)),
				iv(7, 2, time.Minute, 2*time.Minute, 12, avg, i64p(2)),
			},
			wantFlags: []bool{true, true},
		},
		{
			name: "touching endpoints overlap (closed ranges)",
			intervals: []*contracts.Interval{
				iv(7, 1, 0, time.Minute, 6, avg, i64p(1)),
				iv(7, 2, time.Minute, time.Minute, 6, avg, i64p(2)),
			},
			wantFlags: []bool{true, true},
		},
		{
			name: "containment flags both",
			intervals: []*contracts.Interval{
				iv(7, 1, 0, 10*time.Minute, 60, avg, i64p(1)),
				iv(7, 2, 2*time.Minute, time.Minute, 6, avg, i64p(2)),
			},
			wantFlags: []bool{true, true},
		},
		{
			name: "middle interval overlaps neighbors but ends do not touch",
			intervals: []*contracts.Interval{
				iv(7, 1, 0, 2*time.Minute, 12, avg, i64p(1)),
				iv(7, 2, time.Minute, 4*time.Minute, 24, avg, i64p(2)),
				iv(7, 3, 4*time.Minute, 2*time.Minute, 12, avg, i64p(3)),
				iv(7, 4, 10*time.Minute, time.Minute, 6, avg, i64p(4)),
			},
			wantFlags: []bool{true, true, true, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(permissiveRules(), logger.NewNop())
			engine.detectOverlaps(tt.intervals)

			for i, want := range tt.wantFlags {
				assert.Equal(t, want, tt.intervals[i].Flags.Overlap, "interval %d", i)
			}
		})
	}
}

func TestEngine_detectOverlaps_unsortedInput(t *testing.T) {
	avg := durp(10 * time.Second)

	// Same shape as the partial-overlap case, handed over out of order
	a := iv(7, 2, time.Minute, 2*time.Minute, 12, avg, i64p(2))
	b := iv(7, 1, 0, 2*time.Minute, 12, avg, i64p(1))

	engine := NewEngine(permissiveRules(), logger.NewNop())
	engine.detectOverlaps([]*contracts.Interval{a, b})

	assert.True(t, a.Flags.Overlap)
	assert.True(t, b.Flags.Overlap)
}
