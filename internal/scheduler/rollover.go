package scheduler

import (
	"sync"
	"time"

	"github.com/julianstephens/daylog/internal/logger"
	"github.com/julianstephens/daylog/internal/utils"
)

// Clock returns the current time.
type Clock func() time.Time

// Rollover tracks the reference date and notices when the local calendar
// day changes. Polling means a change is seen within one interval of
// midnight.
type Rollover struct {
	interval time.Duration
	now      Clock

	mu      sync.Mutex
	current string
}

func NewRollover(interval time.Duration, now Clock) *Rollover {
	if now == nil {
		now = time.Now
	}
	return &Rollover{interval: interval, now: now, current: utils.FormatISODate(now())}
}

// Interval returns the poll interval.
func (r *Rollover) Interval() time.Duration {
	return r.interval
}

// Today returns the date key last observed.
func (r *Rollover) Today() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Check re-reads the clock and reports the date key and whether it changed
// since the previous check.
func (r *Rollover) Check() (string, bool) {
	today := utils.FormatISODate(r.now())

	r.mu.Lock()
	defer r.mu.Unlock()
	if today == r.current {
		return today, false
	}
	logger.Debug("Date rolled over", "from", r.current, "to", today)
	r.current = today
	return today, true
}
