// Package records keeps the daily log of point deltas, one row per
// calendar-day label.
package records

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lazypower/habits/internal/clock"
	apperr "github.com/lazypower/habits/internal/errors"
	"github.com/lazypower/habits/internal/store"
)

// Log reads and writes the records table.
type Log struct {
	db  *store.DB
	log *zap.Logger
}

// New creates a Log. A nil logger disables logging.
func New(db *store.DB, log *zap.Logger) *Log {
	if log == nil {
		log = zap.NewNop()
	}
	return &Log{db: db, log: log.Named("records")}
}

// GetAll returns every record.
func (l *Log) GetAll(ctx context.Context) ([]store.Record, error) {
	return store.ListRecords(ctx, l.db)
}

// Reset deletes every record and returns how many were removed. Users and
// habits are left alone.
func (l *Log) Reset(ctx context.Context) (int64, error) {
	n, err := store.DeleteRecords(ctx, l.db)
	if err != nil {
		return 0, err
	}
	l.log.Info("records reset", zap.Int64("removed", n))
	return n, nil
}

// ApplyDelta adds the raw delta to the record for label, creating the record
// on the first delta of the day. It runs on q so callers can include it in
// their own transaction. The day sum saturates at the int16 bounds.
func (l *Log) ApplyDelta(ctx context.Context, q store.Querier, label string, delta int16) (store.Record, error) {
	if !clock.ValidLabel(label) {
		return store.Record{}, apperr.BadRequestf("invalid day label %q", label)
	}

	existing, err := store.GetRecord(ctx, q, label)
	if err != nil {
		return store.Record{}, err
	}

	if existing == nil {
		id, err := store.InsertRecord(ctx, q, label, delta)
		if err != nil {
			return store.Record{}, fmt.Errorf("apply delta: %w", err)
		}
		return store.Record{ID: id, Points: delta, CreatedAt: label}, nil
	}

	sum := store.SaturateInt16(int64(existing.Points) + int64(delta))
	if err := store.SetRecordPoints(ctx, q, label, sum); err != nil {
		return store.Record{}, fmt.Errorf("apply delta: %w", err)
	}
	existing.Points = sum
	return *existing, nil
}
