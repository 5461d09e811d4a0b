package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"math"

	apperr "github.com/lazypower/habits/internal/errors"
	"github.com/lazypower/habits/internal/habits"
	"github.com/lazypower/habits/internal/league"
	"github.com/lazypower/habits/internal/records"
	"github.com/lazypower/habits/internal/scoring"
	"github.com/lazypower/habits/internal/store"
)

type handlers struct {
	habits  *habits.Registry
	records *records.Log
	engine  *scoring.Engine
}

type habitArgs struct {
	Habit json.RawMessage `json:"habit"`
}

type idArgs struct {
	ID *int64 `json:"id"`
}

type pointsArgs struct {
	Points *int16 `json:"points"`
	Delta  *int16 `json:"delta"`
}

type checkArgs struct {
	LeagueEntryPoints      *int16 `json:"leagueEntryPoints"`
	LeagueEntryPointsSnake *int16 `json:"league_entry_points"`
}

func (h *handlers) ensureUser(ctx context.Context, _ json.RawMessage) (any, error) {
	u, err := h.engine.EnsureUser(ctx)
	if err != nil {
		return nil, err
	}
	return []store.User{*u}, nil
}

func (h *handlers) createHabit(ctx context.Context, args json.RawMessage) (any, error) {
	habit, err := decodeHabit(args)
	if err != nil {
		return nil, err
	}
	return h.habits.Create(ctx, habit.HabitName, habit.Points)
}

func (h *handlers) getHabits(ctx context.Context, _ json.RawMessage) (any, error) {
	return h.habits.List(ctx)
}

func (h *handlers) updateHabit(ctx context.Context, args json.RawMessage) (any, error) {
	habit, err := decodeHabit(args)
	if err != nil {
		return nil, err
	}
	return h.habits.Update(ctx, habit.ID, habit.HabitName, habit.Points)
}

func (h *handlers) deleteHabit(ctx context.Context, args json.RawMessage) (any, error) {
	id, err := decodeID(args)
	if err != nil {
		return nil, err
	}
	return h.habits.Delete(ctx, id)
}

// completeHabit applies a habit's points to the user as one update.
func (h *handlers) completeHabit(ctx context.Context, args json.RawMessage) (any, error) {
	id, err := decodeID(args)
	if err != nil {
		return nil, err
	}
	habit, err := h.habits.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if habit == nil {
		return nil, apperr.BadRequestf("no habit with id %d", id)
	}
	return h.engine.UpdateUserPoints(ctx, habit.Points)
}

func (h *handlers) updateUserPoints(ctx context.Context, args json.RawMessage) (any, error) {
	var a pointsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	delta := a.Points
	if delta == nil {
		delta = a.Delta
	}
	if delta == nil {
		return nil, apperr.BadRequestf("points is required")
	}
	return h.engine.UpdateUserPoints(ctx, *delta)
}

func (h *handlers) checkUserUpdate(ctx context.Context, args json.RawMessage) (any, error) {
	var a checkArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	lep := a.LeagueEntryPoints
	if lep == nil {
		lep = a.LeagueEntryPointsSnake
	}
	if lep == nil {
		return nil, apperr.BadRequestf("leagueEntryPoints is required")
	}
	return h.engine.CheckUserUpdate(ctx, *lep)
}

func (h *handlers) getRecords(ctx context.Context, _ json.RawMessage) (any, error) {
	return h.records.GetAll(ctx)
}

func (h *handlers) resetRecords(ctx context.Context, _ json.RawMessage) (any, error) {
	if _, err := h.records.Reset(ctx); err != nil {
		return nil, err
	}
	return nil, nil
}

func (h *handlers) getLeague(ctx context.Context, _ json.RawMessage) (any, error) {
	u, err := h.engine.User(ctx)
	if err != nil {
		return nil, err
	}
	return league.StatusFor(u.Points), nil
}

// decodeArgs unmarshals the arguments object into v. Empty args leave v at
// its zero value.
func decodeArgs(args json.RawMessage, v any) error {
	args = bytes.TrimSpace(args)
	if len(args) == 0 || bytes.Equal(args, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return apperr.BadRequestf("invalid arguments: %v", err)
	}
	return nil
}

func decodeID(args json.RawMessage) (int64, error) {
	var a idArgs
	if err := decodeArgs(args, &a); err != nil {
		return 0, err
	}
	if a.ID == nil {
		return 0, apperr.BadRequestf("id is required")
	}
	if err := checkID(*a.ID); err != nil {
		return 0, err
	}
	return *a.ID, nil
}

// checkID rejects ids outside the u16 range the UI uses.
func checkID(id int64) error {
	if id < 0 || id > math.MaxUint16 {
		return apperr.BadRequestf("habit id %d out of range 0-%d", id, math.MaxUint16)
	}
	return nil
}

// decodeHabit accepts the habit either as a JSON object or as a string
// holding its JSON encoding.
func decodeHabit(args json.RawMessage) (store.Habit, error) {
	var a habitArgs
	if err := decodeArgs(args, &a); err != nil {
		return store.Habit{}, err
	}
	raw := bytes.TrimSpace(a.Habit)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return store.Habit{}, apperr.BadRequestf("habit is required")
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return store.Habit{}, apperr.BadRequestf("invalid habit: %v", err)
		}
		raw = []byte(s)
	}

	var habit store.Habit
	if err := json.Unmarshal(raw, &habit); err != nil {
		return store.Habit{}, apperr.BadRequestf("invalid habit: %v", err)
	}
	if err := checkID(habit.ID); err != nil {
		return store.Habit{}, err
	}
	return habit, nil
}
