// Package countdown derives a per-second countdown from a server-supplied
// remaining-seconds value.
package countdown

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Parts is a floor decomposition of a duration in whole seconds.
type Parts struct {
	Days    int64
	Hours   int64
	Minutes int64
	Seconds int64
}

// Decompose splits total seconds into days, hours, minutes and seconds.
// Negative input is treated as zero.
func Decompose(total int64) Parts {
	if total < 0 {
		total = 0
	}
	return Parts{
		Days:    total / 86400,
		Hours:   (total / 3600) % 24,
		Minutes: (total / 60) % 60,
		Seconds: total % 60,
	}
}

// Padded returns each field zero-padded to at least two digits.
func (p Parts) Padded() [4]string {
	return [4]string{
		fmt.Sprintf("%02d", p.Days),
		fmt.Sprintf("%02d", p.Hours),
		fmt.Sprintf("%02d", p.Minutes),
		fmt.Sprintf("%02d", p.Seconds),
	}
}

// String renders "DD:HH:MM:SS".
func (p Parts) String() string {
	f := p.Padded()
	return f[0] + ":" + f[1] + ":" + f[2] + ":" + f[3]
}

// Engine anchors a remaining-seconds value to a clock reading and counts
// down locally until the next Set.
type Engine struct {
	clock clockwork.Clock

	mu     sync.Mutex
	active bool
	base   int64
	anchor time.Time
}

// New returns an engine with no active countdown.
func New(clock clockwork.Clock) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Engine{clock: clock}
}

// Set starts counting down from remaining seconds as of now.
func (e *Engine) Set(remaining int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if remaining < 0 {
		remaining = 0
	}
	e.active = true
	e.base = remaining
	e.anchor = e.clock.Now()
}

// Clear stops the countdown.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active = false
	e.base = 0
}

// Active reports whether a countdown is set.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Remaining returns the seconds left, decreasing by one per elapsed whole
// second and clamped at zero.
func (e *Engine) Remaining() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active {
		return 0
	}
	elapsed := int64(e.clock.Since(e.anchor) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	if left := e.base - elapsed; left > 0 {
		return left
	}
	return 0
}

// Parts decomposes Remaining.
func (e *Engine) Parts() Parts {
	return Decompose(e.Remaining())
}
