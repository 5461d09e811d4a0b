// Package commands maps the named commands of the UI bridge onto the habit
// registry, the record log and the scoring engine.
package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	apperr "github.com/lazypower/habits/internal/errors"
	"github.com/lazypower/habits/internal/habits"
	"github.com/lazypower/habits/internal/metrics"
	"github.com/lazypower/habits/internal/records"
	"github.com/lazypower/habits/internal/scoring"
)

// ErrUnknownCommand is returned by Invoke for a name with no handler.
var ErrUnknownCommand = errors.New("unknown command")

// unknownLabel is the metrics command label for names with no handler.
const unknownLabel = "unknown"

// Handler runs one command. args is the raw JSON arguments object and may be
// empty. The result must be JSON-encodable.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Dispatcher routes command names to handlers.
type Dispatcher struct {
	handlers map[string]Handler
	log      *zap.Logger
}

// New builds a Dispatcher over the given components. A nil logger disables
// logging.
func New(reg *habits.Registry, recs *records.Log, eng *scoring.Engine, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	h := &handlers{habits: reg, records: recs, engine: eng}

	d := &Dispatcher{log: log.Named("commands")}
	d.handlers = map[string]Handler{
		"ensure_user":        h.ensureUser,
		"create_or_get_user": h.ensureUser,
		"create_habit":       h.createHabit,
		"get_habits":         h.getHabits,
		"update_habit":       h.updateHabit,
		"delete_habit":       h.deleteHabit,
		"complete_habit":     h.completeHabit,
		"update_user_points": h.updateUserPoints,
		"check_user_update":  h.checkUserUpdate,
		"get_records":        h.getRecords,
		"reset_records":      h.resetRecords,
		"get_league":         h.getLeague,
	}
	return d
}

// Register adds or replaces the handler for name.
func (d *Dispatcher) Register(name string, h Handler) {
	d.handlers[name] = h
}

// Commands returns the registered command names, sorted.
func (d *Dispatcher) Commands() []string {
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke runs the named command.
func (d *Dispatcher) Invoke(ctx context.Context, name string, args json.RawMessage) (any, error) {
	h, ok := d.handlers[name]
	if !ok {
		// Caller-supplied names all share one label.
		metrics.ObserveCommand(unknownLabel, "UnknownCommand", 0)
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}

	start := time.Now()
	result, err := h(ctx, args)
	took := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = apperr.Kind(err)
		d.log.Debug("command failed",
			zap.String("command", name),
			zap.String("kind", outcome),
			zap.Error(err))
	}
	metrics.ObserveCommand(name, outcome, took)
	return result, err
}
