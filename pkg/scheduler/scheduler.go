// Package scheduler selects which master task runs next against a link,
// and enforces a start-timeout across the pool of pending tasks. It is
// built on the executor package's monotonic clock and non-posting
// timer, and is itself single-threaded cooperative: every method must
// run on the owning executor's goroutine.
package scheduler

import (
	"time"

	"avaneesh/dnp3-go/pkg/executor"
)

// Never is the sentinel "no deadline" value returned by GetNext when the
// pool is empty, and used internally as the identity element of the
// start-timeout minimum.
var Never = time.Unix(1<<62, 0)

// Task is a unit of schedulable master-stack work: a one-shot or
// recurring action with a priority rank, an expiration time (when it
// next wants to run) and a start-expiration time (the latest moment a
// non-recurring task's start is still useful).
type Task interface {
	// ExpirationTime is the instant this task becomes eligible to run.
	ExpirationTime() time.Time
	// StartExpirationTime is the instant after which, if the task still
	// hasn't started, OnStartTimeout fires. Ignored for recurring tasks.
	StartExpirationTime() time.Time
	// IsRecurring reports whether the task re-schedules itself and is
	// therefore exempt from start-timeout enforcement.
	IsRecurring() bool
	// Priority is the task-type rank; lower values run first.
	Priority() int

	OnStart()
	OnResponse()
	OnStartTimeout(now time.Time)
	OnFailure()
}

// entry wraps a Task with its insertion order, used to break ties
// between tasks that otherwise compare equal.
type entry struct {
	task  Task
	order uint64
}

// Scheduler holds the pending pool of master tasks and picks the next
// one to run, plus a single timer enforcing start-timeout across the
// non-recurring members of that pool.
type Scheduler struct {
	entries []entry
	nextSeq uint64

	timer *executor.Timer
	exec  *executor.Executor
}

// New creates a Scheduler whose start-timeout timer runs on exec.
func New(exec *executor.Executor) *Scheduler {
	return &Scheduler{
		exec:  exec,
		timer: exec.NewTimer(),
	}
}

// Schedule adds task to the pending pool and recomputes the
// start-timeout timer.
func (s *Scheduler) Schedule(task Task) {
	s.entries = append(s.entries, entry{task: task, order: s.nextSeq})
	s.nextSeq++
	s.recalculateStartTimeout()
}

// GetNext returns the highest-priority expired task, removing it from
// the pool, along with a zero next-deadline. If no task is expired, it
// returns (nil, deadline) where deadline is the earliest ExpirationTime
// across the pool, or Never if the pool is empty.
func (s *Scheduler) GetNext(now time.Time) (Task, time.Time) {
	idx := s.selectBest(now)
	if idx < 0 {
		return nil, Never
	}

	winner := s.entries[idx]
	if !winner.task.ExpirationTime().After(now) {
		s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
		return winner.task, time.Time{}
	}
	return nil, winner.task.ExpirationTime()
}

// selectBest pairwise-reduces the pending pool under the total order:
// expired outranks unexpired, then lower Priority() wins, then earlier
// ExpirationTime wins, then earlier insertion order wins. Returns -1 if
// the pool is empty.
func (s *Scheduler) selectBest(now time.Time) int {
	if len(s.entries) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(s.entries); i++ {
		if isHigherPriority(now, s.entries[i], s.entries[best]) {
			best = i
		}
	}
	return best
}

// isHigherPriority reports whether candidate outranks current under the
// selection total order.
func isHigherPriority(now time.Time, candidate, current entry) bool {
	cExpired := !candidate.task.ExpirationTime().After(now)
	curExpired := !current.task.ExpirationTime().After(now)
	if cExpired != curExpired {
		return cExpired
	}

	cp, curp := candidate.task.Priority(), current.task.Priority()
	if cp != curp {
		return cp < curp
	}

	ce, cure := candidate.task.ExpirationTime(), current.task.ExpirationTime()
	if !ce.Equal(cure) {
		return ce.Before(cure)
	}

	return candidate.order < current.order
}

// Shutdown cancels the start-timeout timer and drops every pending task
// without invoking any callback.
func (s *Scheduler) Shutdown() {
	s.timer.Cancel()
	s.entries = nil
}

// checkStartTimeout fires OnStartTimeout on every non-recurring task
// whose StartExpirationTime has passed, removes them from the pool, and
// re-arms the start-timeout timer over what remains.
func (s *Scheduler) checkStartTimeout() {
	now := s.exec.GetTime()

	remaining := s.entries[:0]
	for _, e := range s.entries {
		if !e.task.IsRecurring() && !e.task.StartExpirationTime().After(now) {
			e.task.OnStartTimeout(now)
			continue
		}
		remaining = append(remaining, e)
	}
	s.entries = remaining

	s.recalculateStartTimeout()
}

// recalculateStartTimeout restarts the timer at the earliest
// StartExpirationTime among non-recurring pending tasks, or cancels it
// if none remain.
func (s *Scheduler) recalculateStartTimeout() {
	min := Never
	for _, e := range s.entries {
		if e.task.IsRecurring() {
			continue
		}
		if e.task.StartExpirationTime().Before(min) {
			min = e.task.StartExpirationTime()
		}
	}

	if min.Equal(Never) {
		s.timer.Cancel()
		return
	}
	s.timer.Restart(min, s.checkStartTimeout)
}
