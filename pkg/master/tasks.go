package master

import (
	"time"

	"avaneesh/dnp3-go/pkg/app"
	"avaneesh/dnp3-go/pkg/types"
)

// Task is a unit of master-stack work executed against a link session.
type Task interface {
	Execute(m *master) error
	Priority() int
	Type() TaskType
}

// Priority levels. Higher values run first; scheduledTask.Priority
// negates these into the scheduler's lower-rank-wins convention.
const (
	PriorityHigh   = 100
	PriorityNormal = 50
	PriorityLow    = 10
)

// scheduledTask adapts a Task to scheduler.Task, carrying the
// expiration/start-expiration/recurrence state the scheduler needs.
// Recurring tasks reschedule themselves after every run, matching the
// teacher's original reschedulePeriodicScans behavior but driven by
// the scheduler's own pairwise-reduce selection instead of a ticker.
type scheduledTask struct {
	m      *master
	inner  Task
	id     int
	scanID int // 0 for one-shot tasks; >0 ties back to a PeriodicScan

	expiration      time.Time
	startExpiration time.Time
	period          time.Duration
}

func (t *scheduledTask) ExpirationTime() time.Time      { return t.expiration }
func (t *scheduledTask) StartExpirationTime() time.Time { return t.startExpiration }
func (t *scheduledTask) IsRecurring() bool              { return t.scanID != 0 }
func (t *scheduledTask) Priority() int                  { return -t.inner.Priority() }

// OnStart runs the task body. Blocking I/O (sendAndWait) happens here,
// on the master's task-processor goroutine, never on the scheduler's
// own executor goroutine.
func (t *scheduledTask) OnStart() {
	t.m.callbacks.OnTaskStart(t.inner.Type(), t.id)
	if err := t.inner.Execute(t.m); err != nil {
		t.m.logger.Error("Master %s: task failed: %v", t.m.config.ID, err)
		t.OnFailure()
		return
	}
	t.OnResponse()
}

// OnResponse and OnFailure run on the task-processor goroutine (same as
// OnStart); rescheduling a periodic task therefore crosses onto the
// scheduler's own executor via the post-and-block scheduleTask helper.
func (t *scheduledTask) OnResponse() {
	t.m.callbacks.OnTaskComplete(t.inner.Type(), t.id, TaskResultSuccess)
	if next := t.m.nextPeriodicRun(t); next != nil {
		t.m.scheduleTask(next)
	}
}

func (t *scheduledTask) OnFailure() {
	t.m.callbacks.OnTaskComplete(t.inner.Type(), t.id, TaskResultFailure)
	if next := t.m.nextPeriodicRun(t); next != nil {
		t.m.scheduleTask(next)
	}
}

// OnStartTimeout is invoked by scheduler.Scheduler itself from within
// checkStartTimeout, which runs on the scheduler's own executor
// goroutine. Rescheduling here must therefore add directly to the
// scheduler's pool instead of going through scheduleTask's
// post-and-block, which would deadlock against that same goroutine.
func (t *scheduledTask) OnStartTimeout(now time.Time) {
	t.m.logger.Warn("Master %s: task %d start-timed-out before running", t.m.config.ID, t.id)
	t.m.callbacks.OnTaskComplete(t.inner.Type(), t.id, TaskResultTimeout)
	if next := t.m.nextPeriodicRun(t); next != nil {
		t.m.scheduler.Schedule(next)
		t.m.pingTaskProcessor()
	}
}

// IntegrityScanTask performs a Class 0 (integrity) scan
type IntegrityScanTask struct {
	id       int
	priority int
}

func (t *IntegrityScanTask) Execute(m *master) error { return m.performIntegrityScan() }
func (t *IntegrityScanTask) Priority() int           { return t.priority }
func (t *IntegrityScanTask) Type() TaskType           { return TaskTypeIntegrityScan }

// ClassScanTask performs a class scan
type ClassScanTask struct {
	id       int
	classes  app.ClassField
	priority int
}

func (t *ClassScanTask) Execute(m *master) error { return m.performClassScan(t.classes) }
func (t *ClassScanTask) Priority() int           { return t.priority }
func (t *ClassScanTask) Type() TaskType          { return TaskTypeClassScan }

// RangeScanTask performs a range scan
type RangeScanTask struct {
	id        int
	group     uint8
	variation uint8
	start     uint16
	stop      uint16
	priority  int
}

func (t *RangeScanTask) Execute(m *master) error {
	return m.performRangeScan(t.group, t.variation, t.start, t.stop)
}
func (t *RangeScanTask) Priority() int  { return t.priority }
func (t *RangeScanTask) Type() TaskType { return TaskTypeRangeScan }

// CommandTask executes a command
type CommandTask struct {
	commands     []types.Command
	selectBefore bool
	priority     int
	result       chan CommandResult
}

type CommandResult struct {
	Statuses []types.CommandStatus
	Error    error
}

func (t *CommandTask) Execute(m *master) error {
	var statuses []types.CommandStatus
	var err error

	if t.selectBefore {
		statuses, err = m.performSelectAndOperate(t.commands)
	} else {
		statuses, err = m.performDirectOperate(t.commands)
	}

	select {
	case t.result <- CommandResult{Statuses: statuses, Error: err}:
	default:
	}

	return err
}

func (t *CommandTask) Priority() int  { return t.priority }
func (t *CommandTask) Type() TaskType { return TaskTypeCommand }

// PeriodicScan tracks a recurring scan's enable/demand state; the
// scheduledTask it owns reschedules itself after every run.
type PeriodicScan struct {
	id      int
	task    *scheduledTask
	period  time.Duration
	enabled bool
}

// ScanHandleImpl implements ScanHandle
type ScanHandleImpl struct {
	id     int
	master *master
}

func (h *ScanHandleImpl) Demand() error {
	return h.master.demandScan(h.id)
}

func (h *ScanHandleImpl) Remove() error {
	return h.master.removeScan(h.id)
}
