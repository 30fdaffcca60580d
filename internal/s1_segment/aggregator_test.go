package s1_segment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/loadaudit/internal/contracts"
	"github.com/wonny/loadaudit/pkg/logger"
)

func durp(d time.Duration) *time.Duration {
	return &d
}

func segRec(contractID int64, groupID int, offset time.Duration, load *int64, delta *time.Duration) *contracts.Record {
	r := rec(contractID, offset, load)
	r.GroupID = groupID
	r.TimeDelta = delta
	return r
}

func TestAggregator_Aggregate(t *testing.T) {
	records := []*contracts.Record{
		segRec(7, 1, 0, i64p(1), nil),
		segRec(7, 1, 10*time.Second, i64p(1), durp(10*time.Second)),
		segRec(7, 1, 30*time.Second, i64p(1), durp(20*time.Second)),
		segRec(7, 2, 40*time.Second, i64p(2), durp(10*time.Second)),
	}

	intervals := NewAggregator(logger.NewNop()).Aggregate(records)
	require.Len(t, intervals, 2)

	first := intervals[0]
	assert.Equal(t, int64(7), first.ContractID)
	assert.Equal(t, 1, first.GroupID)
	require.NotNil(t, first.LoadNumber)
	assert.Equal(t, int64(1), *first.LoadNumber)
	assert.Equal(t, records[0].MsgTime, first.TimeMin)
	assert.Equal(t, records[2].MsgTime, first.TimeMax)
	assert.Equal(t, 3, first.PointCount)
	assert.Equal(t, 30*time.Second, first.TotalTime())
	require.NotNil(t, first.AvgDelta)
	assert.Equal(t, 15*time.Second, *first.AvgDelta)

	second := intervals[1]
	assert.Equal(t, 2, second.GroupID)
	assert.Equal(t, 1, second.PointCount)
	assert.Equal(t, time.Duration(0), second.TotalTime())
	require.NotNil(t, second.AvgDelta)
	assert.Equal(t, 10*time.Second, *second.AvgDelta)
}

func TestAggregator_Aggregate_nullAvgPropagates(t *testing.T) {
	// Every delta null: average is unknown, never zero
	records := []*contracts.Record{
		segRec(7, 1, 0, i64p(1), nil),
		segRec(7, 1, 2*time.Hour, i64p(1), nil),
	}

	intervals := NewAggregator(logger.NewNop()).Aggregate(records)
	require.Len(t, intervals, 1)
	assert.Nil(t, intervals[0].AvgDelta)
	assert.Equal(t, 2, intervals[0].PointCount)
}

func TestAggregator_Aggregate_partitionComplete(t *testing.T) {
	records := []*contracts.Record{
		segRec(7, 1, 0, i64p(1), nil),
		segRec(9, 1, 1*time.Second, i64p(5), nil),
		segRec(7, 1, 2*time.Second, i64p(1), durp(2*time.Second)),
		segRec(7, 2, 3*time.Second, i64p(2), durp(time.Second)),
		segRec(9, 1, 4*time.Second, i64p(5), durp(3*time.Second)),
	}

	intervals := NewAggregator(logger.NewNop()).Aggregate(records)
	require.Len(t, intervals, 3)

	// Sorted by (contract, group); point counts sum to the record count
	assert.Equal(t, int64(7), intervals[0].ContractID)
	assert.Equal(t, int64(7), intervals[1].ContractID)
	assert.Equal(t, int64(9), intervals[2].ContractID)

	sum := 0
	for _, iv := range intervals {
		sum += iv.PointCount
	}
	assert.Equal(t, len(records), sum)
}

func TestInterval_MidTime(t *testing.T) {
	records := []*contracts.Record{
		segRec(7, 1, 0, i64p(1), nil),
		segRec(7, 1, 10*time.Second, i64p(1), durp(10*time.Second)),
	}

	intervals := NewAggregator(logger.NewNop()).Aggregate(records)
	require.Len(t, intervals, 1)
	assert.Equal(t, intervals[0].TimeMin.Add(5*time.Second), intervals[0].MidTime())
}
