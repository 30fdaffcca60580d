package s0_ingest

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/wonny/loadaudit/internal/contracts"
)

// Writer emits the annotated dataset: every source column unchanged, in the
// original order, plus the ten verdict columns. Working fields (group id,
// time delta) are never written.
type Writer struct{}

// NewWriter creates a writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write streams the dataset to dst. Every record must carry backfilled
// flags; a record without them indicates the pipeline was short-circuited.
func (w *Writer) Write(dst io.Writer, ds *contracts.Dataset) error {
	cw := csv.NewWriter(dst)

	header := append(append([]string{}, ds.Header...), contracts.FlagColumns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, 0, len(header))
	for i, rec := range ds.Records {
		if rec.Flags == nil {
			return fmt.Errorf("record %d has no verdict: %w", i, contracts.ErrPartitionViolation)
		}

		row = row[:0]
		row = append(row, rec.Raw...)
		for _, v := range rec.Flags.Values() {
			if v {
				row = append(row, "1")
			} else {
				row = append(row, "0")
			}
		}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
