package s0_ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/loadaudit/internal/contracts"
	"github.com/wonny/loadaudit/pkg/logger"
)

// Columns maps the required fields onto source column names.
type Columns struct {
	Contract string
	Time     string
	Load     string
}

// DefaultColumns returns the standard telemetry column names.
func DefaultColumns() Columns {
	return Columns{
		Contract: "contract_id",
		Time:     "msg_time",
		Load:     "load_number",
	}
}

// Accepted timestamp layouts, tried in order. Naive layouts are taken as
// UTC; RFC3339 inputs carry their own offset and are normalized to UTC, so a
// file mixing both still sorts on one clock.
var timeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

// Reader reads delimited telemetry rows into a Dataset.
// 행 단위 파싱 실패는 격리: 거부 목록에 쌓고 나머지로 계속 진행
type Reader struct {
	cols Columns
	log  *logger.Logger
}

// NewReader creates a reader with the given column mapping.
func NewReader(cols Columns, log *logger.Logger) *Reader {
	return &Reader{cols: cols, log: log}
}

// Read parses all rows from src. Rows with an unparseable timestamp,
// contract id or load number are rejected and reported, never silently
// dropped. A missing required column is fatal.
func (r *Reader) Read(src io.Reader) (*contracts.Dataset, []contracts.RejectedRow, error) {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1 // row length validated against the header below

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	contractIdx, err := columnIndex(header, r.cols.Contract)
	if err != nil {
		return nil, nil, err
	}
	timeIdx, err := columnIndex(header, r.cols.Time)
	if err != nil {
		return nil, nil, err
	}
	loadIdx, err := columnIndex(header, r.cols.Load)
	if err != nil {
		return nil, nil, err
	}

	ds := &contracts.Dataset{Header: header}
	var rejected []contracts.RejectedRow

	line := 1 // header consumed
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			rejected = append(rejected, contracts.RejectedRow{Line: line, Reason: err.Error()})
			continue
		}
		if len(row) != len(header) {
			rejected = append(rejected, contracts.RejectedRow{
				Line:   line,
				Reason: fmt.Sprintf("expected %d fields, got %d", len(header), len(row)),
			})
			continue
		}

		rec, perr := r.parseRow(row, line, contractIdx, timeIdx, loadIdx)
		if perr != nil {
			rejected = append(rejected, contracts.RejectedRow{Line: line, Reason: perr.Error()})
			continue
		}

		rec.Seq = len(ds.Records)
		ds.Records = append(ds.Records, rec)
	}

	if len(rejected) > 0 {
		r.log.WithFields(map[string]interface{}{
			"rejected": len(rejected),
			"accepted": len(ds.Records),
		}).Warn("Rejected unparseable rows")
	}

	return ds, rejected, nil
}

// parseRow converts one validated-length row into a Record.
func (r *Reader) parseRow(row []string, line, contractIdx, timeIdx, loadIdx int) (*contracts.Record, *contracts.ParseError) {
	contractID, err := strconv.ParseInt(strings.TrimSpace(row[contractIdx]), 10, 64)
	if err != nil {
		return nil, &contracts.ParseError{
			Line: line, Field: r.cols.Contract, Value: row[contractIdx], Reason: "not an integer",
		}
	}

	msgTime, err := ParseTime(row[timeIdx])
	if err != nil {
		return nil, &contracts.ParseError{
			Line: line, Field: r.cols.Time, Value: row[timeIdx], Reason: "unparseable timestamp",
		}
	}

	load, err := parseLoad(row[loadIdx])
	if err != nil {
		return nil, &contracts.ParseError{
			Line: line, Field: r.cols.Load, Value: row[loadIdx], Reason: "not an integer",
		}
	}

	raw := make([]string, len(row))
	copy(raw, row)

	return &contracts.Record{
		ContractID: contractID,
		MsgTime:    msgTime,
		LoadNumber: load,
		Raw:        raw,
	}, nil
}

// ParseTime parses a timestamp against the accepted layouts. The result is
// always in UTC.
func ParseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", value)
}

// parseLoad parses an operator-reported load number. Empty means missing.
// Exporters sometimes render integers as floats ("3.0"); those are accepted
// when integral.
func parseLoad(value string) (*int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return &n, nil
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f != math.Trunc(f) {
		return nil, fmt.Errorf("invalid load number %q", value)
	}

	n := int64(f)
	return &n, nil
}

func columnIndex(header []string, name string) (int, error) {
	for i, col := range header {
		if strings.TrimSpace(col) == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("required column %q not found in header", name)
}
