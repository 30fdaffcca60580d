package s0_ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/loadaudit/pkg/logger"
)

func mkTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := ParseTime(value)
	require.NoError(t, err)
	return ts
}

func TestReader_Read(t *testing.T) {
	input := strings.Join([]string{
		"contract_id,msg_time,load_number,extra",
		"7,2026-01-05T08:00:00,1,a",
		"7,2026-01-05T08:00:10,,b",
		"8,2026-01-05 08:00:20.500,3.0,c",
	}, "\n")

	reader := NewReader(DefaultColumns(), logger.NewNop())
	ds, rejected, err := reader.Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Empty(t, rejected)
	require.Len(t, ds.Records, 3)

	assert.Equal(t, []string{"contract_id", "msg_time", "load_number", "extra"}, ds.Header)

	first := ds.Records[0]
	assert.Equal(t, int64(7), first.ContractID)
	assert.Equal(t, mkTime(t, "2026-01-05T08:00:00"), first.MsgTime)
	require.NotNil(t, first.LoadNumber)
	assert.Equal(t, int64(1), *first.LoadNumber)
	assert.Equal(t, 0, first.Seq)
	assert.Equal(t, []string{"7", "2026-01-05T08:00:00", "1", "a"}, first.Raw)

	// Empty load number is missing, not zero
	assert.Nil(t, ds.Records[1].LoadNumber)

	// Float-rendered integers are accepted
	third := ds.Records[2]
	require.NotNil(t, third.LoadNumber)
	assert.Equal(t, int64(3), *third.LoadNumber)
	assert.Equal(t, 2, third.Seq)
}

func TestReader_Read_rejectsBadRows(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{name: "bad timestamp", row: "7,not-a-time,1"},
		{name: "bad contract id", row: "seven,2026-01-05T08:00:00,1"},
		{name: "fractional load", row: "7,2026-01-05T08:00:00,1.5"},
		{name: "short row", row: "7,2026-01-05T08:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := "contract_id,msg_time,load_number\n" +
				tt.row + "\n" +
				"7,2026-01-05T08:00:10,2\n"

			reader := NewReader(DefaultColumns(), logger.NewNop())
			ds, rejected, err := reader.Read(strings.NewReader(input))
			require.NoError(t, err)

			// The bad row is isolated; the good row survives
			require.Len(t, rejected, 1)
			assert.Equal(t, 2, rejected[0].Line)
			require.Len(t, ds.Records, 1)
			assert.Equal(t, 0, ds.Records[0].Seq)
		})
	}
}

func TestReader_Read_missingColumnIsFatal(t *testing.T) {
	input := "contract_id,msg_time\n7,2026-01-05T08:00:00\n"

	reader := NewReader(DefaultColumns(), logger.NewNop())
	_, _, err := reader.Read(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load_number")
}

func TestParseTime_layouts(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "naive T", value: "2026-01-05T08:00:00"},
		{name: "naive T fractional", value: "2026-01-05T08:00:00.123456"},
		{name: "naive space", value: "2026-01-05 08:00:00"},
		{name: "rfc3339", value: "2026-01-05T08:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTime(tt.value)
			assert.NoError(t, err)
		})
	}

	_, err := ParseTime("05/01/2026 08:00")
	assert.Error(t, err)
}

func TestParseTime_normalizesToUTC(t *testing.T) {
	zoned, err := ParseTime("2026-01-05T09:00:00+01:00")
	require.NoError(t, err)
	naive, err := ParseTime("2026-01-05T08:00:00")
	require.NoError(t, err)

	// Same instant, same clock: mixed naive/zoned files sort correctly
	assert.True(t, zoned.Equal(naive))
	assert.Equal(t, time.UTC, zoned.Location())
	assert.Equal(t, time.UTC, naive.Location())
}
