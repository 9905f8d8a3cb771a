// Package executor provides the single-threaded cooperative scheduling
// primitives that the link layer and master task scheduler are built on:
// a monotonic clock, a serialized work queue, and one-shot timers whose
// Cancel is guaranteed to never produce a late callback.
package executor

import (
	"sync"
	"time"
)

// Clock supplies the current time. SystemClock is the production
// implementation; tests substitute a manual clock to drive timers
// deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock is a Clock backed by the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// Executor runs posted work one item at a time on a single goroutine.
// Every public method on the link layer and scheduler is expected to be
// invoked from inside that goroutine; other goroutines (transport
// readers, OS timers) must hand work in via Post.
type Executor struct {
	clock Clock

	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	closed  bool
	closeCh chan struct{}
	done    chan struct{}
}

// New creates an Executor driven by clock. Call Run in its own goroutine
// to start processing posted work.
func New(clock Clock) *Executor {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Executor{
		clock:   clock,
		wake:    make(chan struct{}, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// GetTime returns the executor's current time.
func (e *Executor) GetTime() time.Time {
	return e.clock.Now()
}

// Post enqueues fn to run on the executor goroutine. Safe to call from
// any goroutine, including from within a callback already running on
// the executor (the item runs after the current one completes).
func (e *Executor) Post(fn func()) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.queue = append(e.queue, fn)
	e.mu.Unlock()

	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// Run drains posted work until Stop is called. Intended to be the body
// of the single executor goroutine.
func (e *Executor) Run() {
	defer close(e.done)
	for {
		fn, ok := e.pop()
		if ok {
			fn()
			continue
		}

		select {
		case <-e.wake:
			continue
		case <-e.closeCh:
			return
		}
	}
}

func (e *Executor) pop() (func(), bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return nil, false
	}
	fn := e.queue[0]
	e.queue = e.queue[1:]
	return fn, true
}

// Stop signals Run to return once the current queue drains, and waits
// for it to do so.
func (e *Executor) Stop() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()

	close(e.closeCh)
	<-e.done
}

// NewTimer creates a one-shot Timer bound to this executor. The timer
// starts disarmed; call Restart to arm it.
func (e *Executor) NewTimer() *Timer {
	return &Timer{exec: e}
}

// Timer is a single-shot, restartable timer. Restart replaces any
// pending callback; Cancel guarantees the callback will not fire after
// Cancel returns, even though the underlying OS timer may already have
// an event in flight. This is achieved with a generation counter: a
// stale wakeup checks its generation against the timer's current one
// before invoking the callback, so a cancelled (or superseded) timer
// never reaches user code.
type Timer struct {
	exec *Executor

	mu         sync.Mutex
	generation uint64
	armed      bool
	deadline   time.Time
	osTimer    *time.Timer
}

// Restart arms the timer to fire callback at deadline, replacing any
// previously pending callback (which will not fire).
func (t *Timer) Restart(deadline time.Time, callback func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	t.generation++
	gen := t.generation
	t.armed = true
	t.deadline = deadline

	delay := deadline.Sub(t.exec.GetTime())
	if delay < 0 {
		delay = 0
	}

	t.osTimer = time.AfterFunc(delay, func() {
		t.exec.Post(func() { t.fire(gen, callback) })
	})
}

// Cancel disarms the timer. No callback passed to a prior Restart will
// run after Cancel returns.
func (t *Timer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.armed = false
	t.generation++
	t.stopLocked()
}

func (t *Timer) stopLocked() {
	if t.osTimer != nil {
		t.osTimer.Stop()
		t.osTimer = nil
	}
}

// IsArmed reports whether the timer currently has a pending callback.
func (t *Timer) IsArmed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.armed
}

func (t *Timer) fire(gen uint64, callback func()) {
	t.mu.Lock()
	if !t.armed || gen != t.generation {
		t.mu.Unlock()
		return
	}
	t.armed = false
	t.mu.Unlock()

	if callback != nil {
		callback()
	}
}
