package scheduler

import (
	"sync"
	"time"
)

// SaveFunc persists the latest value for key.
type SaveFunc func(key, value string)

// Debouncer delays a save until input has been quiet for the configured
// delay. A single timer is kept: every Push resets it, and only the most
// recent value is written when it fires.
type Debouncer struct {
	delay time.Duration
	save  SaveFunc

	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64
	key     string
	value   string
	pending bool
}

func NewDebouncer(delay time.Duration, save SaveFunc) *Debouncer {
	return &Debouncer{delay: delay, save: save}
}

// Push records value for key and restarts the timer. A pending value for a
// different key is saved first so switching keys never drops an edit.
func (d *Debouncer) Push(key, value string) {
	d.mu.Lock()
	var flushKey, flushValue string
	flush := d.pending && d.key != key
	if flush {
		flushKey, flushValue = d.key, d.value
	}

	d.key, d.value, d.pending = key, value, true
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(seq) })
	d.mu.Unlock()

	if flush {
		d.save(flushKey, flushValue)
	}
}

func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	// A later Push or Flush superseded this timer.
	if seq != d.seq || !d.pending {
		d.mu.Unlock()
		return
	}
	key, value := d.key, d.value
	d.pending = false
	d.mu.Unlock()

	d.save(key, value)
}

// Flush saves the pending value now, if there is one.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return
	}
	key, value := d.key, d.value
	d.pending = false
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()

	d.save(key, value)
}

// Stop discards the pending value without saving it.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = false
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
	}
}

// Pending reports whether a value is waiting to be saved.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}
