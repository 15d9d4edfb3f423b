package scheduler

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func TestRolloverCheck(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 1, 23, 59, 30, 0, time.Local)}
	r := NewRollover(time.Minute, clock.Now)

	if got := r.Today(); got != "2025-03-01" {
		t.Fatalf("Today() = %s, want 2025-03-01", got)
	}
	if _, changed := r.Check(); changed {
		t.Error("Check() reported a change before midnight")
	}

	// One poll interval later the day has changed.
	clock.Set(clock.Now().Add(r.Interval()))
	date, changed := r.Check()
	if !changed || date != "2025-03-02" {
		t.Errorf("Check() = %s, %v; want 2025-03-02, true", date, changed)
	}
	if _, changed := r.Check(); changed {
		t.Error("second Check() on the same day reported a change")
	}
}

func TestRolloverUsesLocalCalendar(t *testing.T) {
	// 00:30 in UTC+10 is still the previous day in UTC.
	loc := time.FixedZone("UTC+10", 10*60*60)
	clock := &fakeClock{now: time.Date(2025, 6, 1, 0, 30, 0, 0, loc)}
	r := NewRollover(time.Minute, clock.Now)

	if got := r.Today(); got != "2025-06-01" {
		t.Errorf("Today() = %s, want 2025-06-01", got)
	}
}
