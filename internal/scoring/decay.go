package scoring

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	apperr "github.com/lazypower/habits/internal/errors"
)

// PenaltyFunc picks the league entry points charged per decay tick for the
// user's current total.
type PenaltyFunc func(points int16) int16

// DecayTimer runs CheckUserUpdate periodically on behalf of a host that has
// no UI polling it.
type DecayTimer struct {
	engine   *Engine
	interval time.Duration
	penalty  PenaltyFunc
	onFatal  func(error)
	stopCh   chan struct{}
	done     chan struct{}
}

// StartDecayTimer runs a decay check on startup and then every interval.
// onFatal, if set, receives errors that mean the store is corrupt.
// Call Stop to shut it down.
func (e *Engine) StartDecayTimer(interval time.Duration, penalty PenaltyFunc, onFatal func(error)) *DecayTimer {
	t := &DecayTimer{
		engine:   e,
		interval: interval,
		penalty:  penalty,
		onFatal:  onFatal,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}

	// Run once at startup
	t.check()

	go func() {
		defer close(t.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				t.check()
			case <-t.stopCh:
				return
			}
		}
	}()
	return t
}

// Stop shuts down the timer and waits for an in-flight check to finish.
func (t *DecayTimer) Stop() {
	close(t.stopCh)
	<-t.done
}

func (t *DecayTimer) check() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	u, err := t.engine.User(ctx)
	if errors.Is(err, apperr.ErrUserMissing) {
		return // nothing to decay until the UI creates the user
	}
	if err != nil {
		t.fail("decay check: load user", err)
		return
	}

	if _, err := t.engine.CheckUserUpdate(ctx, t.penalty(u.Points)); err != nil {
		t.fail("decay check", err)
	}
}

func (t *DecayTimer) fail(msg string, err error) {
	if apperr.IsFatal(err) {
		t.engine.log.Error(msg, zap.Error(err))
		if t.onFatal != nil {
			t.onFatal(err)
		}
		return
	}
	t.engine.log.Warn(msg, zap.Error(err))
}
