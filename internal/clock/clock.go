// Package clock supplies wall-clock time to the scoring engine.
//
// The day label is the unique key of the records table, so every Clock must
// format it with LabelLayout in the host's local timezone.
package clock

import (
	"sync"
	"time"
)

// LabelLayout formats a calendar day as "07 Mar 2025".
const LabelLayout = "02 Jan 2006"

// Clock is the source of time used by the scoring engine.
type Clock interface {
	NowMs() int64
	TodayLabel() string
}

// Label returns the calendar-day label of t in the local timezone.
func Label(t time.Time) string {
	return t.Local().Format(LabelLayout)
}

// ValidLabel reports whether s is a well-formed calendar-day label.
func ValidLabel(s string) bool {
	t, err := time.ParseInLocation(LabelLayout, s, time.Local)
	if err != nil {
		return false
	}
	// Parsing accepts some non-canonical spellings; require the round trip.
	return t.Format(LabelLayout) == s
}

// System reads the host clock.
type System struct{}

func (System) NowMs() int64 { return time.Now().UnixMilli() }

func (System) TodayLabel() string { return Label(time.Now()) }

// Fixed is a manually driven clock for tests and replays.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixed returns a clock frozen at t.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{now: t}
}

func (f *Fixed) NowMs() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now.UnixMilli()
}

func (f *Fixed) TodayLabel() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Label(f.now)
}

// Set moves the clock to t.
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

// Advance moves the clock forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}
