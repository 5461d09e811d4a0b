package clock

import (
	"testing"
	"time"
)

func TestLabelFormat(t *testing.T) {
	cases := []struct {
		t    time.Time
		want string
	}{
		{time.Date(2025, time.March, 7, 12, 0, 0, 0, time.Local), "07 Mar 2025"},
		{time.Date(2024, time.December, 31, 23, 59, 59, 0, time.Local), "31 Dec 2024"},
		{time.Date(2026, time.January, 1, 0, 0, 0, 0, time.Local), "01 Jan 2026"},
	}
	for _, c := range cases {
		if got := Label(c.t); got != c.want {
			t.Errorf("Label(%v) = %q, want %q", c.t, got, c.want)
		}
	}
}

func TestValidLabel(t *testing.T) {
	valid := []string{"07 Mar 2025", "29 Feb 2024"}
	for _, s := range valid {
		if !ValidLabel(s) {
			t.Errorf("ValidLabel(%q) = false, want true", s)
		}
	}

	invalid := []string{"", "7 Mar 2025", "07 March 2025", "2025-03-07", "30 Feb 2025", "07 mar 2025"}
	for _, s := range invalid {
		if ValidLabel(s) {
			t.Errorf("ValidLabel(%q) = true, want false", s)
		}
	}
}

func TestFixed(t *testing.T) {
	start := time.Date(2025, time.March, 7, 22, 0, 0, 0, time.Local)
	c := NewFixed(start)

	if c.NowMs() != start.UnixMilli() {
		t.Errorf("NowMs = %d, want %d", c.NowMs(), start.UnixMilli())
	}
	if c.TodayLabel() != "07 Mar 2025" {
		t.Errorf("TodayLabel = %q", c.TodayLabel())
	}

	c.Advance(3 * time.Hour)
	if c.TodayLabel() != "08 Mar 2025" {
		t.Errorf("TodayLabel after advance = %q, want 08 Mar 2025", c.TodayLabel())
	}
	if c.NowMs()-start.UnixMilli() != (3 * time.Hour).Milliseconds() {
		t.Errorf("Advance moved %d ms", c.NowMs()-start.UnixMilli())
	}

	c.Set(start)
	if c.NowMs() != start.UnixMilli() {
		t.Errorf("Set did not move the clock back")
	}
}

func TestSystemLabelIsValid(t *testing.T) {
	var c Clock = System{}
	if !ValidLabel(c.TodayLabel()) {
		t.Errorf("System label %q is not valid", c.TodayLabel())
	}
	if c.NowMs() <= 0 {
		t.Errorf("NowMs = %d", c.NowMs())
	}
}
