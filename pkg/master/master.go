package master

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"avaneesh/dnp3-go/pkg/app"
	"avaneesh/dnp3-go/pkg/channel"
	"avaneesh/dnp3-go/pkg/executor"
	"avaneesh/dnp3-go/pkg/internal/logger"
	"avaneesh/dnp3-go/pkg/link"
	"avaneesh/dnp3-go/pkg/scheduler"
	"avaneesh/dnp3-go/pkg/types"
)

var (
	ErrMasterDisabled = errors.New("master is disabled")
	ErrTimeout        = errors.New("operation timeout")
)

// MasterConfig and callback interfaces moved here to avoid circular import
// These will be type-aliased or wrapped in dnp3 package

// master implements the Master interface
type master struct {
	config    MasterConfig
	callbacks MasterCallbacks
	logger    logger.Logger

	// Session
	session *session

	// Task management: schedulerExec runs the scheduler's own pool and
	// start-timeout bookkeeping on its own goroutine; taskProcessor
	// drives task bodies (which block on I/O) on a separate goroutine,
	// so that fetching the next task from schedulerExec never races
	// against the blocking task it is about to run.
	scheduler     *scheduler.Scheduler
	schedulerExec *executor.Executor
	wake          chan struct{}
	scans         map[int]*PeriodicScan
	nextScanID    int
	nextTaskID    int
	scansMu       sync.RWMutex

	// State
	enabled    bool
	seqCounter *app.SequenceCounter
	lastIIN    types.IIN
	stateMu    sync.RWMutex

	// Concurrency
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Response handling
	pendingResp chan *app.APDU
	pendingMu   sync.Mutex
}

// New creates a new master
func New(config MasterConfig, callbacks MasterCallbacks, ch *channel.Channel, log logger.Logger) (*master, error) {
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	ctx, cancel := context.WithCancel(context.Background())

	schedulerExec := executor.New(nil)
	m := &master{
		config:        config,
		callbacks:     callbacks,
		logger:        log,
		schedulerExec: schedulerExec,
		scheduler:     scheduler.New(schedulerExec),
		wake:          make(chan struct{}, 1),
		scans:         make(map[int]*PeriodicScan),
		nextScanID:    1,
		nextTaskID:    1,
		enabled:       false,
		seqCounter:    app.NewSequenceCounter(),
		ctx:           ctx,
		cancel:        cancel,
		pendingResp:   make(chan *app.APDU, 1),
	}
	go m.schedulerExec.Run()

	// Create session, driven by a link-layer state machine configured
	// per MasterConfig's confirm/retry/timeout settings.
	linkCfg := link.DefaultConfig()
	linkCfg.UseConfirms = config.UseConfirms
	if config.NumRetry > 0 {
		linkCfg.NumRetry = config.NumRetry
	}
	if config.ResponseTimeout > 0 {
		linkCfg.Timeout = config.ResponseTimeout
	}
	m.session = newSession(config.LocalAddress, config.RemoteAddress, ch, m, linkCfg)

	// Add session to channel
	if err := ch.AddSession(m.session); err != nil {
		cancel()
		return nil, err
	}

	m.logger.Info("Master %s created: local=%d, remote=%d", config.ID, config.LocalAddress, config.RemoteAddress)
	return m, nil
}

// Enable enables the master
func (m *master) Enable() error {
	m.stateMu.Lock()
	if m.enabled {
		m.stateMu.Unlock()
		return nil
	}
	m.enabled = true
	m.stateMu.Unlock()

	m.logger.Info("Master %s enabled", m.config.ID)

	// Start task processor
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.taskProcessor()
	}()

	// Perform startup sequence
	if m.config.DisableUnsolOnStartup {
		// TODO: Send disable unsolicited
	}

	if m.config.StartupIntegrityScan {
		go func() {
			time.Sleep(100 * time.Millisecond)
			m.ScanIntegrity()
		}()
	}

	// Start automatic integrity scan if configured
	if m.config.IntegrityPeriod > 0 {
		m.AddIntegrityScan(m.config.IntegrityPeriod)
	}

	return nil
}

// Disable disables the master
func (m *master) Disable() error {
	m.stateMu.Lock()
	m.enabled = false
	m.stateMu.Unlock()

	m.logger.Info("Master %s disabled", m.config.ID)
	return nil
}

// Shutdown shuts down the master
func (m *master) Shutdown() error {
	m.logger.Info("Master %s shutting down", m.config.ID)

	m.Disable()
	m.cancel()
	m.wg.Wait()
	m.scheduler.Shutdown()
	m.schedulerExec.Stop()
	m.session.close()

	m.logger.Info("Master %s shutdown complete", m.config.ID)
	return nil
}

// taskProcessor drains the scheduler's pool and runs each selected
// task's body on this goroutine. It never calls into schedulerExec
// except through the post-and-block getNextTask/scheduleTask helpers,
// so a task's blocking I/O (sendAndWait) never runs on the same
// goroutine that must service those calls.
func (m *master) taskProcessor() {
	for {
		if m.ctx.Err() != nil {
			return
		}

		task, deadline := m.getNextTask()
		if task != nil {
			if m.isEnabled() {
				task.OnStart()
			}
			continue
		}

		var wait time.Duration
		if deadline.Equal(scheduler.Never) {
			wait = time.Hour
		} else {
			wait = time.Until(deadline)
			if wait < 0 {
				wait = 0
			}
		}

		select {
		case <-m.ctx.Done():
			return
		case <-m.wake:
		case <-time.After(wait):
		}
	}
}

// getNextTask posts GetNext onto schedulerExec and blocks the calling
// (taskProcessor) goroutine for the result.
func (m *master) getNextTask() (*scheduledTask, time.Time) {
	type result struct {
		task     scheduler.Task
		deadline time.Time
	}
	ch := make(chan result, 1)
	m.schedulerExec.Post(func() {
		t, d := m.scheduler.GetNext(time.Now())
		ch <- result{task: t, deadline: d}
	})
	r := <-ch
	if r.task == nil {
		return nil, r.deadline
	}
	return r.task.(*scheduledTask), r.deadline
}

// scheduleTask posts Schedule onto schedulerExec, blocks until it has
// taken effect, and wakes taskProcessor so it re-polls promptly.
func (m *master) scheduleTask(t *scheduledTask) {
	done := make(chan struct{})
	m.schedulerExec.Post(func() {
		m.scheduler.Schedule(t)
		close(done)
	})
	<-done
	m.pingTaskProcessor()
}

// pingTaskProcessor nudges taskProcessor out of its wait without
// blocking the caller.
func (m *master) pingTaskProcessor() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// nextPeriodicRun returns the scheduledTask to re-add to the pool after
// t finishes, or nil if t is one-shot or its scan has been disabled.
func (m *master) nextPeriodicRun(t *scheduledTask) *scheduledTask {
	if t.scanID == 0 {
		return nil
	}

	m.scansMu.Lock()
	defer m.scansMu.Unlock()

	scan, ok := m.scans[t.scanID]
	if !ok || !scan.enabled {
		return nil
	}

	now := time.Now()
	next := &scheduledTask{
		m: m, inner: t.inner, id: t.id, scanID: t.scanID, period: t.period,
		expiration:      now.Add(t.period),
		startExpiration: now.Add(m.config.TaskStartTimeout),
	}
	scan.task = next
	return next
}

// isEnabled returns true if master is enabled
func (m *master) isEnabled() bool {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.enabled
}

// getNextSequence returns the next sequence number using app layer helper
func (m *master) getNextSequence() uint8 {
	return m.seqCounter.Next()
}

// onReceiveAPDU handles received APDU
func (m *master) onReceiveAPDU(data []byte) error {
	apdu, err := app.Parse(data)
	if err != nil {
		m.logger.Error("Master %s: APDU parse error: %v", m.config.ID, err)
		return err
	}

	m.logger.Debug("Master %s: Received APDU: %s", m.config.ID, apdu)

	// Update IIN
	if apdu.IsResponse() {
		m.stateMu.Lock()
		m.lastIIN = apdu.IIN
		m.stateMu.Unlock()
		m.callbacks.OnReceiveIIN(apdu.IIN)
	}

	// Send to pending response channel
	m.pendingMu.Lock()
	select {
	case m.pendingResp <- apdu:
	default:
		m.logger.Warn("Master %s: Dropped response (no pending request)", m.config.ID)
	}
	m.pendingMu.Unlock()

	// Process measurements
	if apdu.IsResponse() && len(apdu.Objects) > 0 {
		m.processMeasurements(apdu)
	}

	return nil
}

// sendAndWait sends an APDU and waits for response
func (m *master) sendAndWait(apdu *app.APDU, timeout time.Duration) (*app.APDU, error) {
	// Serialize and send
	data := apdu.Serialize()
	if err := m.session.sendAPDU(data); err != nil {
		return nil, err
	}

	m.logger.Debug("Master %s: Sent APDU: %s", m.config.ID, apdu)

	// Wait for response
	select {
	case resp := <-m.pendingResp:
		return resp, nil
	case <-time.After(timeout):
		return nil, ErrTimeout
	case <-m.ctx.Done():
		return nil, m.ctx.Err()
	}
}

// Session returns the session (for channel registration)
func (m *master) Session() channel.Session {
	return m.session
}

// String returns string representation
func (m *master) String() string {
	return fmt.Sprintf("Master{ID=%s, Local=%d, Remote=%d}",
		m.config.ID, m.config.LocalAddress, m.config.RemoteAddress)
}
