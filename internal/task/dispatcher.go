package task

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// ErrBusy is returned when a task is requested while another is in
// flight. Requests are rejected outright; there is no queue.
var ErrBusy = fmt.Errorf("a task is already running")

// Run identifies one dispatched task.
type Run struct {
	// ID is a unique identifier for this run.
	ID string

	// Label names the action ("compile", "run").
	Label string

	// Started is when the run was dispatched.
	Started time.Time

	// Err is the task's outcome, set before the done callback fires.
	// A panic in the task body is converted to an error here.
	Err error
}

// Dispatcher owns the single-flight running flag and the background
// worker. At most one task is in flight at a time; a second request while
// Busy is rejected, never queued.
//
// Workers must not touch UI state. Completion callbacks are delivered
// through the post function, which must marshal them onto the UI-owning
// goroutine.
type Dispatcher struct {
	running atomic.Bool
	post    func(func())
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher. post delivers completion callbacks
// to the UI-owning goroutine; a nil post runs them on the worker, which
// is only acceptable in tests.
func NewDispatcher(post func(func())) *Dispatcher {
	return &Dispatcher{post: post}
}

// SetPost sets the UI delivery function. Must be called before the first
// Dispatch; the UI layer binds it once its queue exists.
func (d *Dispatcher) SetPost(post func(func())) {
	d.post = post
}

// Busy reports whether a task is in flight.
func (d *Dispatcher) Busy() bool {
	return d.running.Load()
}

// Dispatch transitions Idle to Busy and starts fn on a background
// goroutine. It returns ErrBusy without side effects when a task is
// already in flight.
//
// The done callback always runs after the task finishes, whether fn
// returned nil, an error, or panicked, and always after the running flag
// has been cleared. It is delivered through the post function.
func (d *Dispatcher) Dispatch(label string, fn func() error, done func(Run)) error {
	if !d.running.CompareAndSwap(false, true) {
		return ErrBusy
	}

	run := Run{
		ID:      uuid.NewString(),
		Label:   label,
		Started: time.Now(),
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				run.Err = fmt.Errorf("task panic: %v", r)
			}
			// Busy -> Idle is unconditional, even on panic.
			d.running.Store(false)
			if done != nil {
				d.deliver(func() { done(run) })
			}
		}()

		run.Err = fn()
	}()

	return nil
}

// deliver hands a callback to the UI goroutine, or runs it inline when no
// post function is bound.
func (d *Dispatcher) deliver(fn func()) {
	if d.post != nil {
		d.post(fn)
		return
	}
	fn()
}

// Wait blocks until the in-flight task, if any, has finished. Intended
// for shutdown and tests; it does not prevent new dispatches.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
