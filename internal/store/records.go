package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
)

// Record is the sum of raw point deltas applied on one calendar day.
type Record struct {
	ID        int64  `db:"id" json:"id"`
	Points    int16  `db:"points" json:"points"`
	CreatedAt string `db:"created_at" json:"created_at"`
}

// ListRecords returns every record ordered by id.
func ListRecords(ctx context.Context, q Querier) ([]Record, error) {
	records := []Record{}
	if err := q.SelectContext(ctx, &records, `SELECT id, points, created_at FROM records ORDER BY id`); err != nil {
		return nil, Classify(fmt.Errorf("list records: %w", err))
	}
	return records, nil
}

// GetRecord returns the record for a day label, or nil if none exists.
func GetRecord(ctx context.Context, q Querier, label string) (*Record, error) {
	var r Record
	err := q.GetContext(ctx, &r, `SELECT id, points, created_at FROM records WHERE created_at = ?`, label)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, Classify(fmt.Errorf("get record: %w", err))
	}
	return &r, nil
}

// InsertRecord creates the record for a day label.
func InsertRecord(ctx context.Context, q Querier, label string, points int16) (int64, error) {
	result, err := q.ExecContext(ctx, `INSERT INTO records (points, created_at) VALUES (?, ?)`, points, label)
	if err != nil {
		return 0, Classify(fmt.Errorf("insert record: %w", err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, Classify(fmt.Errorf("insert record: last insert id: %w", err))
	}
	return id, nil
}

// SetRecordPoints overwrites the point sum for a day label.
func SetRecordPoints(ctx context.Context, q Querier, label string, points int16) error {
	_, err := q.ExecContext(ctx, `UPDATE records SET points = ? WHERE created_at = ?`, points, label)
	if err != nil {
		return Classify(fmt.Errorf("update record: %w", err))
	}
	return nil
}

// DeleteRecords removes every record and returns how many were removed.
func DeleteRecords(ctx context.Context, q Querier) (int64, error) {
	result, err := q.ExecContext(ctx, `DELETE FROM records`)
	if err != nil {
		return 0, Classify(fmt.Errorf("delete records: %w", err))
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

// SaturateInt16 narrows v to the int16 range, pinning at the bounds instead
// of wrapping.
func SaturateInt16(v int64) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
