package link

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"avaneesh/dnp3-go/pkg/executor"
)

// recordingWriter and recordingUpper are touched both from the test
// goroutine (via onExec, serialized onto the executor) and read back
// afterward; the mutex keeps -race happy across that handoff.
type recordingWriter struct {
	mu     sync.Mutex
	frames [][]byte
}

func (w *recordingWriter) Transmit(frame []byte) {
	cp := make([]byte, len(frame))
	copy(cp, frame)
	w.mu.Lock()
	w.frames = append(w.frames, cp)
	w.mu.Unlock()
}

func (w *recordingWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.frames)
}

func (w *recordingWriter) at(i int) []byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frames[i]
}

func (w *recordingWriter) last() []byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.frames) == 0 {
		return nil
	}
	return w.frames[len(w.frames)-1]
}

type recordingUpper struct {
	mu          sync.Mutex
	received    [][]byte
	sendResults []bool
	online      []bool
}

func (u *recordingUpper) OnReceive(payload []byte) {
	cp := make([]byte, len(payload))
	copy(cp, payload)
	u.mu.Lock()
	u.received = append(u.received, cp)
	u.mu.Unlock()
}

func (u *recordingUpper) OnSendResult(success bool) {
	u.mu.Lock()
	u.sendResults = append(u.sendResults, success)
	u.mu.Unlock()
}

func (u *recordingUpper) OnStateChange(online bool) {
	u.mu.Lock()
	u.online = append(u.online, online)
	u.mu.Unlock()
}

func (u *recordingUpper) receivedCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.received)
}

func (u *recordingUpper) receivedAt(i int) []byte {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.received[i]
}

func (u *recordingUpper) sendResultCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.sendResults)
}

func (u *recordingUpper) lastSendResult() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.sendResults[len(u.sendResults)-1]
}

// harness bundles a StateMachine with its executor and fakes, and runs
// every stimulus through the executor goroutine via onExec so that
// test-driven calls never race with timer-driven retries — exactly the
// single-threaded-cooperative contract the link layer depends on in
// production.
type harness struct {
	t      *testing.T
	sm     *StateMachine
	writer *recordingWriter
	upper  *recordingUpper
	exec   *executor.Executor
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()
	exec := executor.New(nil)
	writer := &recordingWriter{}
	upper := &recordingUpper{}
	sm := New(cfg, upper, writer, exec, nil)
	go exec.Run()
	t.Cleanup(exec.Stop)
	return &harness{t: t, sm: sm, writer: writer, upper: upper, exec: exec}
}

// onExec runs fn on the executor goroutine and blocks until it
// completes.
func (h *harness) onExec(fn func()) {
	done := make(chan struct{})
	h.exec.Post(func() {
		fn()
		close(done)
	})
	<-done
}

func (h *harness) up() {
	h.onExec(h.sm.OnLowerLayerUp)
}

func (h *harness) send(payload []byte) error {
	var err error
	h.onExec(func() { err = h.sm.Send(payload) })
	return err
}

func (h *harness) transmitResult(success bool) {
	h.onExec(func() { h.sm.OnTransmitResult(success) })
}

func (h *harness) frame(fc FunctionCode, isMaster, fcb, fcv bool, dest, src uint16, payload []byte) {
	h.onExec(func() { h.sm.OnFrame(fc, isMaster, fcb, fcv, dest, src, payload) })
}

func (h *harness) down() {
	h.onExec(h.sm.OnLowerLayerDown)
}

// waitForWrites polls until writer has at least n recorded frames or
// deadline elapses.
func waitForWrites(writer *recordingWriter, n int, deadline time.Duration) bool {
	const step = 5 * time.Millisecond
	elapsed := time.Duration(0)
	for elapsed < deadline {
		if writer.count() >= n {
			return true
		}
		time.Sleep(step)
		elapsed += step
	}
	return writer.count() >= n
}

func waitForSendResult(upper *recordingUpper, deadline time.Duration) bool {
	const step = 5 * time.Millisecond
	elapsed := time.Duration(0)
	for elapsed < deadline {
		if upper.sendResultCount() > 0 {
			return true
		}
		time.Sleep(step)
		elapsed += step
	}
	return upper.sendResultCount() > 0
}

func confirmedConfig(numRetry uint, timeout time.Duration) Config {
	return Config{
		IsMaster:    true,
		LocalAddr:   1,
		RemoteAddr:  1024,
		UseConfirms: true,
		NumRetry:    numRetry,
		Timeout:     timeout,
	}
}

// Scenario 1: Secondary Reset.
func TestSecondaryReset(t *testing.T) {
	h := newHarness(t, Config{IsMaster: false, LocalAddr: 1, RemoteAddr: 1024})
	h.up()

	h.frame(FuncResetLink, true, false, false, 1, 1024, nil)

	if h.writer.count() != 1 {
		t.Fatalf("expected exactly one transmission, got %d", h.writer.count())
	}
	expected, err := FormatAck(1024, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(h.writer.at(0), expected) {
		t.Fatal("expected FormatAck(dest=1024, src=1)")
	}
	if h.upper.receivedCount() != 0 {
		t.Fatal("expected no upstream delivery on a reset")
	}
	if h.sm.secondaryState != SecondaryReset {
		t.Fatal("expected secondary state Reset after PRI_RESET_LINK_STATES")
	}
}

// Round-trip invariant: two consecutive resets both ACK and leave Reset.
func TestSecondaryReset_RepeatedLeavesReset(t *testing.T) {
	h := newHarness(t, Config{IsMaster: false, LocalAddr: 1, RemoteAddr: 1024})
	h.up()

	h.frame(FuncResetLink, true, false, false, 1, 1024, nil)
	h.frame(FuncResetLink, true, false, false, 1, 1024, nil)

	if h.writer.count() != 2 {
		t.Fatalf("expected two ACKs, got %d", h.writer.count())
	}
	if h.sm.secondaryState != SecondaryReset {
		t.Fatal("expected secondary state Reset")
	}
}

// Scenario 2: Unconfirmed passthrough.
func TestUnconfirmedPassthrough(t *testing.T) {
	h := newHarness(t, Config{IsMaster: false, LocalAddr: 1, RemoteAddr: 1024})
	h.up()

	payload := make([]byte, 250)
	h.frame(FuncUserDataUnconfirmed, true, false, false, 1, 1024, payload)

	if h.writer.count() != 0 {
		t.Fatal("expected no transmission for unconfirmed data")
	}
	if h.upper.receivedCount() != 1 || len(h.upper.receivedAt(0)) != 250 {
		t.Fatal("expected the 250 byte payload delivered upstream")
	}
}

// Scenario 3: Confirmed data, wrong FCB (duplicate suppression).
func TestConfirmedData_DuplicateFCBSuppressed(t *testing.T) {
	h := newHarness(t, Config{IsMaster: false, LocalAddr: 1, RemoteAddr: 1024})
	h.up()

	h.frame(FuncResetLink, true, false, false, 1, 1024, nil)
	h.writer.mu.Lock()
	h.writer.frames = nil
	h.writer.mu.Unlock()

	payload := []byte{1, 2, 3}
	h.frame(FuncUserDataConfirmed, true, false, true, 1, 1024, payload)
	if h.upper.receivedCount() != 1 {
		t.Fatal("expected first confirmed delivery")
	}

	// The peer never saw our ACK and retransmits with the same FCB.
	h.frame(FuncUserDataConfirmed, true, false, true, 1, 1024, payload)
	if h.upper.receivedCount() != 1 {
		t.Fatal("expected duplicate delivery suppressed")
	}
	if h.writer.count() != 2 {
		t.Fatal("expected an ACK transmitted for both the original and the duplicate")
	}
}

// Scenario 4: Reset-link timer expiration, numRetry=0.
func TestResetLinkTimerExpiration_NoRetry(t *testing.T) {
	h := newHarness(t, confirmedConfig(0, 50*time.Millisecond))

	h.up()
	if err := h.send(make([]byte, 250)); err != nil {
		t.Fatal(err)
	}
	h.transmitResult(true)

	if h.writer.count() != 1 {
		t.Fatalf("expected exactly one RESET_LINK_STATES, got %d", h.writer.count())
	}

	if !waitForSendResult(h.upper, 400*time.Millisecond) {
		t.Fatal("expected a terminal OnSendResult after the timeout")
	}

	if h.upper.sendResultCount() != 1 || h.upper.lastSendResult() != false {
		t.Fatalf("expected exactly one OnSendResult(false), got count=%d", h.upper.sendResultCount())
	}
	if h.writer.count() != 1 {
		t.Fatal("expected no further transmissions after exhausting retries")
	}
}

// Scenario 5: Reset-link with retry, numRetry=1.
func TestResetLinkWithRetry(t *testing.T) {
	h := newHarness(t, confirmedConfig(1, 80*time.Millisecond))

	h.up()
	payload := []byte{9, 9, 9}
	if err := h.send(payload); err != nil {
		t.Fatal(err)
	}
	h.transmitResult(true)
	if h.writer.count() != 1 {
		t.Fatalf("expected the first RESET_LINK_STATES, got %d writes", h.writer.count())
	}

	if !waitForWrites(h.writer, 2, time.Second) {
		t.Fatalf("expected a retransmitted RESET_LINK_STATES (2 total writes), got %d", h.writer.count())
	}
	h.transmitResult(true) // ack the retransmission promptly, before a third timeout can fire

	h.frame(FuncAck, false, false, false, 1, 1024, nil)
	if h.writer.count() != 3 {
		t.Fatalf("expected CONFIRMED_USER_DATA emitted after ACK-of-reset, got %d writes", h.writer.count())
	}
	h.transmitResult(true)

	h.frame(FuncAck, false, false, false, 1, 1024, nil)
	if h.upper.sendResultCount() != 1 || h.upper.lastSendResult() != true {
		t.Fatalf("expected a single OnSendResult(true), got count=%d", h.upper.sendResultCount())
	}
	if !h.sm.sessionReset {
		t.Fatal("expected the session to be known-reset after a successful confirmed exchange")
	}
}

// Scenario 7: NACK triggers link reset.
func TestNackTriggersLinkReset(t *testing.T) {
	h := newHarness(t, confirmedConfig(1, 2*time.Second))

	h.up()
	if err := h.send([]byte{1, 2}); err != nil {
		t.Fatal(err)
	}
	h.transmitResult(true)
	h.frame(FuncAck, false, false, false, 1, 1024, nil) // ACK of reset
	h.transmitResult(true)                              // CONFIRMED_USER_DATA now in flight

	writesBeforeNack := h.writer.count()

	h.frame(FuncNack, false, false, false, 1, 1024, nil)

	if h.writer.count() != writesBeforeNack+1 {
		t.Fatal("expected a new RESET_LINK_STATES emission after SEC_NACK")
	}
	expected, _ := FormatResetLinkStates(1024, 1)
	if !bytes.Equal(h.writer.last(), expected) {
		t.Fatal("expected the NACK-triggered retransmission to be RESET_LINK_STATES")
	}
	if h.upper.sendResultCount() != 0 {
		t.Fatal("expected no terminal callback yet, the reset is retrying")
	}
}

// Invariant: while offline, no upstream callback fires and no transmit occurs.
func TestOffline_NoCallbacksNoTransmit(t *testing.T) {
	h := newHarness(t, Config{IsMaster: false, LocalAddr: 1, RemoteAddr: 1024})

	h.frame(FuncResetLink, true, false, false, 1, 1024, nil)

	if h.writer.count() != 0 {
		t.Fatal("expected no transmission while offline")
	}
	if h.upper.receivedCount() != 0 || h.upper.sendResultCount() != 0 {
		t.Fatal("expected no upstream callbacks while offline")
	}
}

// Invariant: mismatching source is logged and rejected; state unchanged.
func TestUnknownSource_StateUnchanged(t *testing.T) {
	h := newHarness(t, Config{IsMaster: false, LocalAddr: 1, RemoteAddr: 1024})
	h.up()

	h.frame(FuncResetLink, true, false, false, 1, 2048, nil)

	if h.writer.count() != 0 {
		t.Fatal("expected no ACK for a frame from an unknown source")
	}
	if h.sm.secondaryState != SecondaryUnreset {
		t.Fatal("expected secondary state unchanged by a rejected frame")
	}
}

// Invariant: a confirmed send whose peer never responds, then canceled by
// lower-layer-down, produces exactly one OnSendResult(false) — the
// response timer's Cancel produces no later callback of its own.
func TestLowerLayerDown_DuringWaitProducesExactlyOneFailure(t *testing.T) {
	h := newHarness(t, confirmedConfig(3, 30*time.Millisecond))

	h.up()
	if err := h.send([]byte{1}); err != nil {
		t.Fatal(err)
	}
	h.transmitResult(true)

	h.down()

	time.Sleep(100 * time.Millisecond)

	if h.upper.sendResultCount() != 1 || h.upper.lastSendResult() != false {
		t.Fatalf("expected exactly one OnSendResult(false), got count=%d", h.upper.sendResultCount())
	}
}

// Invariant: SEND_WHILE_BUSY is rejected without disturbing the in-flight
// transaction.
func TestSendWhileBusyRejected(t *testing.T) {
	h := newHarness(t, confirmedConfig(3, time.Second))
	h.up()

	if err := h.send([]byte{1}); err != nil {
		t.Fatal(err)
	}
	writesBefore := h.writer.count()

	if err := h.send([]byte{2}); err != ErrSendWhileBusy {
		t.Fatalf("expected ErrSendWhileBusy, got %v", err)
	}
	if h.writer.count() != writesBefore {
		t.Fatal("expected the rejected send to cause no transmission")
	}
}

// Invariant: Send while offline is rejected.
func TestSendWhileOfflineRejected(t *testing.T) {
	h := newHarness(t, confirmedConfig(3, time.Second))

	if err := h.send([]byte{1}); err != ErrOffline {
		t.Fatalf("expected ErrOffline, got %v", err)
	}
}
