package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/loadaudit/internal/contracts"
)

// TelemetryRepository reads raw telemetry records from the store.
// ⭐ SSOT: 텔레메트리 조회는 여기서만
type TelemetryRepository struct {
	pool *pgxpool.Pool
}

// NewTelemetryRepository creates a new telemetry repository.
func NewTelemetryRepository(pool *pgxpool.Pool) *TelemetryRepository {
	return &TelemetryRepository{pool: pool}
}

// GetByTimeRange retrieves all records with msg_time in [from, to), every
// contract included. The pipeline re-sorts, so the query order is only a
// stable arrival order for tie-breaking.
func (r *TelemetryRepository) GetByTimeRange(ctx context.Context, from, to time.Time) (*contracts.Dataset, error) {
	query := `
		SELECT contract_id, msg_time, load_number
		FROM telemetry.messages
		WHERE msg_time >= $1 AND msg_time < $2
		ORDER BY msg_time, contract_id, id
	`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("query telemetry: %w", err)
	}
	defer rows.Close()

	ds := &contracts.Dataset{
		Header: []string{"contract_id", "msg_time", "load_number"},
	}

	for rows.Next() {
		var rec contracts.Record
		if err := rows.Scan(&rec.ContractID, &rec.MsgTime, &rec.LoadNumber); err != nil {
			return nil, fmt.Errorf("scan telemetry record: %w", err)
		}

		rec.Seq = len(ds.Records)
		ds.Records = append(ds.Records, &rec)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate telemetry records: %w", rows.Err())
	}

	return ds, nil
}

// CountByContract returns per-contract record counts in [from, to).
func (r *TelemetryRepository) CountByContract(ctx context.Context, from, to time.Time) (map[int64]int, error) {
	query := `
		SELECT contract_id, COUNT(*)
		FROM telemetry.messages
		WHERE msg_time >= $1 AND msg_time < $2
		GROUP BY contract_id
	`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("query contract counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var contractID int64
		var count int
		if err := rows.Scan(&contractID, &count); err != nil {
			return nil, fmt.Errorf("scan contract count: %w", err)
		}
		counts[contractID] = count
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate contract counts: %w", rows.Err())
	}

	return counts, nil
}
