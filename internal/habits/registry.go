// Package habits manages the catalog of habit definitions.
//
// A habit's points are the delta handed to the scoring engine when the habit
// is completed. The registry itself never touches the user or the records.
package habits

import (
	"context"
	"strings"

	"go.uber.org/zap"

	apperr "github.com/lazypower/habits/internal/errors"
	"github.com/lazypower/habits/internal/store"
)

// Registry provides CRUD over habits. Every mutation returns fresh rows so
// the UI can refresh in one round trip.
type Registry struct {
	db  *store.DB
	log *zap.Logger
}

// New creates a Registry. A nil logger disables logging.
func New(db *store.DB, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{db: db, log: log.Named("habits")}
}

// List returns every habit ordered by id.
func (r *Registry) List(ctx context.Context) ([]store.Habit, error) {
	return store.ListHabits(ctx, r.db)
}

// Get returns a habit by id, or nil if none exists.
func (r *Registry) Get(ctx context.Context, id int64) (*store.Habit, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return store.GetHabit(ctx, r.db, id)
}

// Create inserts a habit and returns the full list.
func (r *Registry) Create(ctx context.Context, name string, points int16) ([]store.Habit, error) {
	name, err := validateHabit(name, points)
	if err != nil {
		return nil, err
	}
	id, err := store.InsertHabit(ctx, r.db, name, points)
	if err != nil {
		return nil, err
	}
	r.log.Debug("habit created", zap.Int64("id", id), zap.String("name", name), zap.Int16("points", points))
	return r.List(ctx)
}

// Update overwrites name and points of the habit with the given id and
// returns the matching rows. An unknown id is a silent no-op that returns an
// empty list.
func (r *Registry) Update(ctx context.Context, id int64, name string, points int16) ([]store.Habit, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	name, err := validateHabit(name, points)
	if err != nil {
		return nil, err
	}
	n, err := store.UpdateHabit(ctx, r.db, id, name, points)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		r.log.Debug("habit updated", zap.Int64("id", id), zap.String("name", name), zap.Int16("points", points))
	}
	return store.FindHabits(ctx, r.db, id)
}

// Delete removes the habit if present and returns the full list.
func (r *Registry) Delete(ctx context.Context, id int64) ([]store.Habit, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	n, err := store.DeleteHabit(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		r.log.Debug("habit deleted", zap.Int64("id", id))
	}
	return r.List(ctx)
}

func validateID(id int64) error {
	if id < 0 {
		return apperr.BadRequestf("habit id %d is negative", id)
	}
	return nil
}

// validateHabit returns the trimmed name.
func validateHabit(name string, points int16) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.BadRequestf("habit name is required")
	}
	if points == 0 {
		return "", apperr.BadRequestf("habit points cannot be 0")
	}
	return name, nil
}
