// Package debounce coalesces bursts of calls into one trailing call.
package debounce

import (
	"context"
	"sync"
	"time"
)

// DefaultDelay is the quiet period used by schemactl sync.
const DefaultDelay = time.Second

// Debouncer runs fn once the delay has passed without another Trigger.
// Only the last call in a burst runs.
type Debouncer struct {
	delay time.Duration
	fn    func()

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// New returns a Debouncer for fn. A non-positive delay uses DefaultDelay.
func New(delay time.Duration, fn func()) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay, fn: fn}
}

// NewWithContext is New plus Stop when ctx is done.
func NewWithContext(ctx context.Context, delay time.Duration, fn func()) *Debouncer {
	d := New(delay, fn)
	go func() {
		<-ctx.Done()
		d.Stop()
	}()
	return d
}

// Trigger (re)starts the quiet period. It is a no-op after Stop.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()
	d.fn()
}

// Flush runs a pending call immediately. It reports whether one was pending.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	if d.stopped || d.timer == nil || !d.timer.Stop() {
		d.mu.Unlock()
		return false
	}
	d.timer = nil
	d.mu.Unlock()
	d.fn()
	return true
}

// Stop drops any pending call and disables the debouncer.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
