// Package scoring owns the user profile: clamped point updates, the daily
// aggregation of raw deltas, and inactivity decay.
package scoring

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/lazypower/habits/internal/clock"
	apperr "github.com/lazypower/habits/internal/errors"
	"github.com/lazypower/habits/internal/metrics"
	"github.com/lazypower/habits/internal/store"
)

// DayMS is the length of one decay tick in milliseconds. It is one tenth of
// a calendar day; existing profiles have decayed at this cadence since the
// first release, so it is kept as is.
const DayMS int64 = 8_640_000

// DeltaApplier records a raw point delta against a calendar day. It must run
// its statements on q so they join the caller's transaction.
type DeltaApplier interface {
	ApplyDelta(ctx context.Context, q store.Querier, label string, delta int16) (store.Record, error)
}

// Engine applies scoring transitions to the single user row.
type Engine struct {
	db      *store.DB
	clock   clock.Clock
	records DeltaApplier
	log     *zap.Logger
}

// New creates an Engine. A nil logger disables logging.
func New(db *store.DB, clk clock.Clock, records DeltaApplier, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		db:      db,
		clock:   clk,
		records: records,
		log:     log.Named("scoring"),
	}
}

// EnsureUser returns the user, creating it with zero points on first call.
func (e *Engine) EnsureUser(ctx context.Context) (*store.User, error) {
	var user *store.User
	err := e.db.WithTx(ctx, func(q store.Querier) error {
		existing, err := store.LoadUser(ctx, q)
		if err != nil {
			return err
		}
		if existing != nil {
			user = existing
			return nil
		}

		now := e.clock.NowMs()
		if err := store.InsertUser(ctx, q, 0, now); err != nil {
			return err
		}
		user, err = store.LoadUser(ctx, q)
		if err != nil {
			return err
		}
		if user == nil {
			return errors.New("user not readable after insert")
		}
		e.log.Info("user created", zap.Int64("updated_at", now))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}
	metrics.UserPoints.Set(float64(user.Points))
	return user, nil
}

// User returns the current user without modifying it.
func (e *Engine) User(ctx context.Context) (*store.User, error) {
	u, err := store.LoadUser(ctx, e.db)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.ErrUserMissing
	}
	return u, nil
}

// UpdateUserPoints applies delta to the user and returns the new total,
// floored at zero. The raw delta, not the clamped difference, is added to
// today's record. updated_at is left alone.
//
// The read, the record write and the user write share one transaction, so
// concurrent updates cannot lose a delta.
func (e *Engine) UpdateUserPoints(ctx context.Context, delta int16) (int16, error) {
	var (
		before, after int16
		day           store.Record
	)
	err := e.db.WithTx(ctx, func(q store.Querier) error {
		u, err := loadUser(ctx, q)
		if err != nil {
			return err
		}
		before = u.Points
		after = addPoints(u.Points, delta)

		day, err = e.records.ApplyDelta(ctx, q, e.clock.TodayLabel(), delta)
		if err != nil {
			return err
		}
		return store.SaveUserPoints(ctx, q, after)
	})
	if err != nil {
		return 0, fmt.Errorf("update user points: %w", err)
	}

	metrics.ObserveDelta(delta)
	metrics.UserPoints.Set(float64(after))
	e.log.Debug("points updated",
		zap.Int16("delta", delta),
		zap.Int16("before", before),
		zap.Int16("after", after),
		zap.String("day", day.CreatedAt),
		zap.Int16("day_points", day.Points),
	)
	return after, nil
}

// CheckUserUpdate applies inactivity decay: leagueEntryPoints are subtracted
// for every full DayMS elapsed since the last decay, the total is floored at
// zero and updated_at moves to now. Less than one tick elapsed leaves the row
// untouched. Decay never writes a record.
func (e *Engine) CheckUserUpdate(ctx context.Context, leagueEntryPoints int16) (int16, error) {
	if leagueEntryPoints < 0 {
		return 0, apperr.BadRequestf("league entry points %d is negative", leagueEntryPoints)
	}

	var (
		ticks  int64
		before int16
		after  int16
	)
	err := e.db.WithTx(ctx, func(q store.Querier) error {
		u, err := loadUser(ctx, q)
		if err != nil {
			return err
		}
		before, after = u.Points, u.Points

		now := e.clock.NowMs()
		elapsed := now - u.UpdatedAt
		if elapsed < DayMS {
			return nil
		}

		ticks = elapsed / DayMS
		after = decayPoints(u.Points, ticks, leagueEntryPoints)
		return store.SaveUser(ctx, q, &store.User{ID: u.ID, Points: after, UpdatedAt: now})
	})
	if err != nil {
		return 0, fmt.Errorf("check user update: %w", err)
	}

	if ticks > 0 {
		metrics.DecayTicksTotal.Add(float64(ticks))
		metrics.UserPoints.Set(float64(after))
		e.log.Info("inactivity decay applied",
			zap.Int64("ticks", ticks),
			zap.Int16("league_entry_points", leagueEntryPoints),
			zap.Int16("before", before),
			zap.Int16("after", after),
		)
	}
	return after, nil
}

func loadUser(ctx context.Context, q store.Querier) (*store.User, error) {
	u, err := store.LoadUser(ctx, q)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.ErrUserMissing
	}
	return u, nil
}
