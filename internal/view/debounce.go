package view

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// debouncer is a two-state machine, idle or pending(term), driven by a
// single timer. Push always restarts the timer; when it fires the pending
// term is handed to fire unless it equals the last term that was fired.
type debouncer struct {
	clock clock.Clock
	quiet time.Duration
	fire  func(term string)

	mu      sync.Mutex
	timer   *clock.Timer
	gen     uint64
	pending string
	last    string
}

func newDebouncer(c clock.Clock, quiet time.Duration, fire func(string)) *debouncer {
	return &debouncer{clock: c, quiet: quiet, fire: fire}
}

func (d *debouncer) Push(term string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = term
	d.timer = d.clock.AfterFunc(d.quiet, func() { d.elapse(gen) })
}

func (d *debouncer) elapse(gen uint64) {
	d.mu.Lock()
	// A stopped timer can still fire if it raced with Push.
	if gen != d.gen || d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	term := d.pending
	if term == d.last {
		d.mu.Unlock()
		return
	}
	d.last = term
	d.mu.Unlock()

	d.fire(term)
}

// Pending reports the term waiting for the quiet period, if any.
func (d *debouncer) Pending() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer == nil {
		return "", false
	}
	return d.pending, true
}

func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}
