// Package schedule holds timing helpers shared by the interactive components.
package schedule

import (
	"sync"
	"time"
)

// Debouncer runs the most recently scheduled function once no new schedule
// has arrived for the given delay.
type Debouncer struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending func()
	gen     uint64
	running sync.WaitGroup
	idle    *sync.Cond // signalled when a timer call returns
	firing  int        // timer calls currently running
	stopped bool
}

// NewDebouncer creates an idle debouncer.
func NewDebouncer() *Debouncer {
	d := &Debouncer{}
	d.idle = sync.NewCond(&d.mu)
	return d
}

// Schedule cancels any pending call and schedules fn to run after delay.
// It returns false once the debouncer is stopped.
func (d *Debouncer) Schedule(fn func(), delay time.Duration) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return false
	}
	d.cancelLocked()

	d.gen++
	gen := d.gen
	d.pending = fn
	d.running.Add(1)
	d.timer = time.AfterFunc(delay, func() {
		defer d.running.Done()
		d.fire(gen)
	})
	return true
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.pending == nil {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.firing++
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.firing--
		d.idle.Broadcast()
		d.mu.Unlock()
	}()
	fn()
}

// Cancel drops the pending call, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
}

func (d *Debouncer) cancelLocked() {
	if d.timer != nil && d.timer.Stop() {
		// the timer func never runs, release its slot
		d.running.Done()
	}
	d.timer = nil
	d.pending = nil
	d.gen++
}

// Flush waits for a call the timer already started, then runs the pending
// call immediately on the caller's goroutine. It reports whether there was a
// pending call. It must not be called from a scheduled function.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	fn := d.pending
	d.cancelLocked()
	for d.firing > 0 {
		d.idle.Wait()
	}
	d.mu.Unlock()

	if fn == nil {
		return false
	}
	fn()
	return true
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Stop cancels the pending call, refuses further schedules and waits for
// a call that is already running to return. It must not be called from a
// scheduled function.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.cancelLocked()
	d.mu.Unlock()

	d.running.Wait()
}
