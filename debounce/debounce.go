// ABOUTME: Debouncer coalesces rapid edits into one call with the latest value
// ABOUTME: Firing again cancels the context handed to the previous call
package debounce

import (
	"context"
	"sync"
	"time"
)

// DefaultDelay is the autosave quiet period.
const DefaultDelay = 500 * time.Millisecond

// Debouncer runs fn with the most recent value once no new value has arrived
// for the delay. A call still running when the next one starts has its
// context cancelled.
type Debouncer[T any] struct {
	delay time.Duration
	fn    func(context.Context, T)

	mu       sync.Mutex
	timer    *time.Timer
	pending  T
	hasValue bool
	cancel   context.CancelCauseFunc
	running  sync.WaitGroup
	closed   bool
}

func New[T any](delay time.Duration, fn func(context.Context, T)) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Trigger records v and restarts the quiet period.
func (d *Debouncer[T]) Trigger(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.pending = v
	d.hasValue = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

// Flush runs a pending value now instead of waiting.
func (d *Debouncer[T]) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()
	d.fire()
}

// Cancel drops a pending value and aborts the running call, if any.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

// Close cancels everything and waits for a running call to return.
func (d *Debouncer[T]) Close() {
	d.mu.Lock()
	d.closed = true
	d.stopLocked()
	d.mu.Unlock()
	d.running.Wait()
}

// Wait blocks until the currently running call, if any, returns.
func (d *Debouncer[T]) Wait() {
	d.running.Wait()
}

func (d *Debouncer[T]) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	var zero T
	d.pending = zero
	d.hasValue = false
	if d.cancel != nil {
		d.cancel(context.Canceled)
		d.cancel = nil
	}
}

func (d *Debouncer[T]) fire() {
	d.mu.Lock()
	if !d.hasValue || d.closed {
		d.mu.Unlock()
		return
	}
	v := d.pending
	var zero T
	d.pending = zero
	d.hasValue = false
	d.timer = nil

	if d.cancel != nil {
		d.cancel(ErrSuperseded)
	}
	ctx, cancel := context.WithCancelCause(context.Background())
	d.cancel = cancel
	d.running.Add(1)
	d.mu.Unlock()

	defer d.running.Done()
	d.fn(ctx, v)

	d.mu.Lock()
	// a newer call may already own d.cancel
	if ctx.Err() == nil {
		d.cancel = nil
	}
	d.mu.Unlock()
	cancel(nil)
}
