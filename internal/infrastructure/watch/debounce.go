// Package watch follows the board document on disk and reports settled changes.
package watch

import (
	"sync"
	"time"
)

// debouncer coalesces a burst of board events into one callback carrying the last of them.
type debouncer struct {
	window   time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	last     BoardEvent
	callback func(BoardEvent)
}

func newDebouncer(window time.Duration, callback func(BoardEvent)) *debouncer {
	return &debouncer{window: window, callback: callback}
}

// trigger records ev and restarts the window.
func (d *debouncer) trigger(ev BoardEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.last = ev
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

func (d *debouncer) fire() {
	d.mu.Lock()
	ev := d.last
	d.mu.Unlock()
	d.callback(ev)
}

// stop cancels any pending callback.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
}
