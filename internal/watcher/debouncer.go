// Package watcher reports changes to a single file, coalescing bursts of
// filesystem events.
package watcher

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultDebounceDuration is the default debounce window.
const DefaultDebounceDuration = 250 * time.Millisecond

// Debouncer coalesces rapid triggers into one callback run after the
// window elapses with no further triggers.
type Debouncer struct {
	clock    clockwork.Clock
	duration time.Duration
	timer    clockwork.Timer
	mu       sync.Mutex
}

// NewDebouncer creates a Debouncer. A zero duration uses
// DefaultDebounceDuration and a nil clock uses the real clock.
func NewDebouncer(duration time.Duration, clock clockwork.Clock) *Debouncer {
	if duration <= 0 {
		duration = DefaultDebounceDuration
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Debouncer{clock: clock, duration: duration}
}

// Trigger schedules callback, replacing any pending one.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.clock.AfterFunc(d.duration, callback)
}

// Cancel drops any pending callback.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Duration returns the debounce window.
func (d *Debouncer) Duration() time.Duration {
	return d.duration
}
