package contracts

import "time"

// Record is one telemetry observation reported by a contract unit.
// ⭐ SSOT: 파이프라인 전 단계가 공유하는 레코드 타입
//
// ContractID, MsgTime and LoadNumber are the only fields the core inspects;
// Raw carries the source row untouched for the output boundary. Seq is the
// arrival position and serves as the final sort tie-break so runs are
// reproducible. TimeDelta and GroupID are derived in place by the ordering
// and segmentation stages and are never emitted.
type Record struct {
	ContractID int64
	MsgTime    time.Time
	LoadNumber *int64 // operator-reported, nil when missing
	Seq        int

	// Passthrough payload, never inspected
	Raw []string

	// Derived fields
	TimeDelta *time.Duration // nil: no predecessor or gap above ceiling
	GroupID   int            // assigned by the segmenter, 1-based per contract
	Flags     *FlagSet       // attached by the backfiller
}

// Dataset is a full batch of records plus the source header.
type Dataset struct {
	Header  []string
	Records []*Record
}

// Interval is the aggregated summary of one maximal run of records sharing
// a load label within a contract.
type Interval struct {
	ContractID int64
	GroupID    int
	LoadNumber *int64 // uniform across the group by construction

	TimeMin    time.Time
	TimeMax    time.Time
	AvgDelta   *time.Duration // mean of non-null deltas, nil when none
	PointCount int

	Flags FlagSet
}

// TotalTime returns the closed-range duration of the interval.
func (iv *Interval) TotalTime() time.Duration {
	return iv.TimeMax.Sub(iv.TimeMin)
}

// MidTime returns the midpoint of the interval's time range.
func (iv *Interval) MidTime() time.Time {
	return iv.TimeMin.Add(iv.TotalTime() / 2)
}

// FlagSet holds the nine independent quality verdicts for one interval.
// No flag implies or excludes another.
type FlagSet struct {
	DurationShort    bool `json:"duration_short"`
	DurationLong     bool `json:"duration_long"`
	PointCountLow    bool `json:"point_count_low"`
	PointCountHigh   bool `json:"point_count_high"`
	ReportingGap     bool `json:"reporting_gap"`
	PingRateMismatch bool `json:"ping_rate_mismatch"`
	DuplicateLabel   bool `json:"duplicate_label"`
	Overlap          bool `json:"overlap"`
	Noncontiguous    bool `json:"noncontiguous"`
}

// Invalid reports whether any single rule condemned the interval.
func (f FlagSet) Invalid() bool {
	return f.DurationShort || f.DurationLong ||
		f.PointCountLow || f.PointCountHigh ||
		f.ReportingGap || f.PingRateMismatch ||
		f.DuplicateLabel || f.Overlap || f.Noncontiguous
}

// FlagColumns is the fixed emission order of the appended output columns.
var FlagColumns = []string{
	"duration_short",
	"duration_long",
	"point_count_low",
	"point_count_high",
	"reporting_gap",
	"ping_rate_mismatch",
	"duplicate_label",
	"overlap",
	"noncontiguous",
	"invalid_load",
}

// Values returns the flag values in FlagColumns order, invalid_load last.
func (f FlagSet) Values() []bool {
	return []bool{
		f.DurationShort,
		f.DurationLong,
		f.PointCountLow,
		f.PointCountHigh,
		f.ReportingGap,
		f.PingRateMismatch,
		f.DuplicateLabel,
		f.Overlap,
		f.Noncontiguous,
		f.Invalid(),
	}
}
