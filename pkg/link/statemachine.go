package link

import (
	"time"

	"avaneesh/dnp3-go/pkg/executor"
	"avaneesh/dnp3-go/pkg/internal/logger"
)

// UpperLayer receives events from the link layer: delivered payloads,
// the outcome of a Send, and online/offline transitions.
type UpperLayer interface {
	OnReceive(payload []byte)
	OnSendResult(success bool)
	OnStateChange(online bool)
}

// FrameWriter hands encoded frames to the transport. The transport must
// later call StateMachine.OnTransmitResult exactly once for each frame
// handed to Transmit.
type FrameWriter interface {
	Transmit(frame []byte)
}

// Config configures a StateMachine instance.
type Config struct {
	IsMaster    bool
	LocalAddr   uint16
	RemoteAddr  uint16
	UseConfirms bool
	NumRetry    uint
	Timeout     time.Duration
}

// DefaultConfig returns the conformance-test default addressing: local 1,
// remote 1024, confirmed sends with 3 retries and a 2 second timeout.
func DefaultConfig() Config {
	return Config{
		IsMaster:    true,
		LocalAddr:   1,
		RemoteAddr:  1024,
		UseConfirms: true,
		NumRetry:    3,
		Timeout:     2 * time.Second,
	}
}

// sendPhase tracks which half of a confirmed transaction is in flight,
// since the reset handshake and the data frame each get their own
// NumRetry+1 transmission budget (§4.2, "retry budget").
type sendPhase int

const (
	phaseNone sendPhase = iota
	phaseReset
	phaseData
)

// StateMachine is the DNP3 link layer: it owns the secondary (receive)
// and primary (send) sub-state-machines, per-direction FCB tracking,
// the retry counter, the single response timer, and the online/offline
// gate described in §4.2. It is single-threaded cooperative: every
// method must be invoked from the owning executor's goroutine.
type StateMachine struct {
	config Config
	upper  UpperLayer
	writer FrameWriter
	exec   *executor.Executor
	timer  *executor.Timer
	log    logger.Logger

	online bool

	// Secondary (receive) sub-machine.
	secondaryState SecondaryState
	expectedRxFCB  bool

	// Primary (send) sub-machine.
	primaryState    PrimaryState
	sessionReset    bool // a confirmed handshake has completed and not since been invalidated
	expectedTxFCB   bool
	phase           sendPhase
	retriesLeft     uint
	pendingFrame    []byte // last frame bytes transmitted, kept for retransmission
	lastSendPayload []byte // user payload of the in-flight confirmed send, kept to rebuild the data frame after ACK-of-reset
}

// New creates a StateMachine. log may be nil, in which case log entries
// are discarded.
func New(config Config, upper UpperLayer, writer FrameWriter, exec *executor.Executor, log logger.Logger) *StateMachine {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &StateMachine{
		config:         config,
		upper:          upper,
		writer:         writer,
		exec:           exec,
		timer:          exec.NewTimer(),
		log:            log,
		secondaryState: SecondaryUnreset,
		primaryState:   PrimaryIdle,
	}
}

// IsOnline reports whether the lower layer is currently up.
func (sm *StateMachine) IsOnline() bool { return sm.online }

// OnLowerLayerUp notifies the link layer that the transport is
// available. The first call transitions offline->online and notifies
// upstream; a second call while already online is a logged error with
// no state change.
func (sm *StateMachine) OnLowerLayerUp() {
	if sm.online {
		sm.log.Error("OnLowerLayerUp called while already online")
		return
	}
	sm.online = true
	sm.upper.OnStateChange(true)
}

// OnLowerLayerDown notifies the link layer that the transport was lost.
// It cancels the response timer, aborts any in-flight send with exactly
// one failure callback, resets the primary state to Idle, resets FCB
// knowledge (a future confirmed send must start with RESET_LINK_STATES),
// and notifies upstream that the link is offline.
func (sm *StateMachine) OnLowerLayerDown() {
	if !sm.online {
		sm.log.Error("OnLowerLayerDown called while already offline")
		return
	}
	sm.online = false
	sm.timer.Cancel()

	inFlight := sm.primaryState != PrimaryIdle
	sm.primaryState = PrimaryIdle
	sm.sessionReset = false
	sm.expectedTxFCB = false
	sm.phase = phaseNone
	sm.pendingFrame = nil
	sm.lastSendPayload = nil
	sm.retriesLeft = 0

	sm.secondaryState = SecondaryUnreset
	sm.expectedRxFCB = false

	if inFlight {
		sm.upper.OnSendResult(false)
	}
	sm.upper.OnStateChange(false)
}

// Send asks the link layer to transmit payload. It fails fast with
// ErrOffline or ErrSendWhileBusy rather than queuing; upstream must
// serialize calls to Send. The payload slice is borrowed until the
// terminal OnSendResult callback fires.
func (sm *StateMachine) Send(payload []byte) error {
	if !sm.online {
		sm.log.Error("Send called while offline")
		return ErrOffline
	}
	if sm.primaryState != PrimaryIdle {
		sm.log.Error("SEND_WHILE_BUSY: send rejected, a transaction is already in flight")
		return ErrSendWhileBusy
	}

	if !sm.config.UseConfirms {
		frame, err := FormatUnconfirmedUserData(sm.config.RemoteAddr, sm.config.LocalAddr, payload)
		if err != nil {
			return err
		}
		sm.primaryState = PrimarySendingUnconfirmed
		sm.pendingFrame = frame
		sm.writer.Transmit(frame)
		return nil
	}

	sm.lastSendPayload = payload
	if sm.sessionReset {
		return sm.beginSendData(payload)
	}
	return sm.beginResetLink()
}

// beginResetLink starts (or restarts, under a fresh attempt counter) the
// reset handshake: emit RESET_LINK_STATES and arm the response timer.
func (sm *StateMachine) beginResetLink() error {
	frame, err := FormatResetLinkStates(sm.config.RemoteAddr, sm.config.LocalAddr)
	if err != nil {
		return err
	}
	sm.phase = phaseReset
	sm.retriesLeft = sm.config.NumRetry
	sm.pendingFrame = frame
	sm.primaryState = PrimaryResettingLink
	sm.writer.Transmit(frame)
	sm.armTimer()
	return nil
}

// beginSendData sends CONFIRMED_USER_DATA directly, skipping the reset
// handshake because the session is already known-reset. The response
// timer is armed only once the transmit completes (OnTransmitResult),
// matching the "awaiting transmit callback" SendingConfirmed state.
func (sm *StateMachine) beginSendData(payload []byte) error {
	frame, err := FormatConfirmedUserData(sm.expectedTxFCB, sm.config.RemoteAddr, sm.config.LocalAddr, payload)
	if err != nil {
		return err
	}
	sm.phase = phaseData
	sm.retriesLeft = sm.config.NumRetry
	sm.pendingFrame = frame
	sm.primaryState = PrimarySendingConfirmed
	sm.writer.Transmit(frame)
	return nil
}

// OnTransmitResult reports completion of the most recently emitted
// frame. It is delivered exactly once per Transmit call, in emission
// order.
func (sm *StateMachine) OnTransmitResult(success bool) {
	if !sm.online {
		sm.log.Error("OnTransmitResult called while offline")
		return
	}

	switch sm.primaryState {
	case PrimarySendingUnconfirmed:
		sm.primaryState = PrimaryIdle
		sm.pendingFrame = nil
		sm.upper.OnSendResult(success)

	case PrimarySendingConfirmed:
		if success {
			sm.primaryState = PrimaryWaitForConfirm
			sm.armTimer()
		} else {
			sm.retryOrFail()
		}

	case PrimaryResettingLink, PrimaryWaitForConfirm:
		if !success {
			sm.retryOrFail()
		}
		// A successful transmit here is a no-op: the response timer,
		// armed at emission time, continues to govern the wait.

	default:
		sm.log.Error("spurious OnTransmitResult in state %s", sm.primaryState)
	}
}

// OnFrame processes a decoded LPDU per the validation and dispatch
// rules of §4.2.
func (sm *StateMachine) OnFrame(fc FunctionCode, isMaster bool, fcb bool, fcv bool, dest, src uint16, payload []byte) {
	if !sm.online {
		sm.log.Error("OnFrame discarded: link layer offline")
		return
	}

	if isMaster == sm.config.IsMaster {
		sm.log.Error("WRONG_MASTER_BIT: frame direction bit matches our own role")
		return
	}
	if src != sm.config.RemoteAddr {
		sm.log.Error("UNKNOWN_SOURCE: frame from %d, expected %d", src, sm.config.RemoteAddr)
		return
	}
	if dest != sm.config.LocalAddr {
		sm.log.Error("UNKNOWN_DESTINATION: frame to %d, expected %d", dest, sm.config.LocalAddr)
		return
	}

	if sm.config.IsMaster {
		if !isSecondaryFunction(fc) {
			sm.log.Warn("UNEXPECTED_LPDU: master received non-SEC_* function %d", fc)
			return
		}
		sm.onSecondaryFrame(fc, payload)
		return
	}

	if !isPrimaryFunction(fc) {
		sm.log.Warn("UNEXPECTED_LPDU: secondary received non-PRI_* function %d", fc)
		return
	}
	sm.onPrimaryFrame(fc, fcb, fcv, payload)
}

// onSecondaryFrame dispatches a SEC_* reply received by a primary-role
// (master) endpoint.
func (sm *StateMachine) onSecondaryFrame(fc FunctionCode, payload []byte) {
	switch fc {
	case FuncAck:
		sm.onAck()
	case FuncNack:
		sm.onNack()
	case FuncLinkStatusResponse:
		// Liveness reply; nothing for the primary sub-machine to do.
	case FuncLinkNotFunctioning, FuncLinkNotUsed:
		sm.log.Error("UNEXPECTED_LPDU: peer reported SEC_NOT_SUPPORTED")
		if sm.primaryState == PrimaryResettingLink || sm.primaryState == PrimaryWaitForConfirm {
			sm.timer.Cancel()
			sm.failSend()
		}
	default:
		sm.log.Warn("UNEXPECTED_LPDU: unrecognized secondary function %d", fc)
	}
}

func (sm *StateMachine) onAck() {
	switch sm.primaryState {
	case PrimaryResettingLink:
		sm.timer.Cancel()
		sm.expectedTxFCB = false
		if err := sm.beginSendData(sm.dataPayload()); err != nil {
			sm.log.Error("failed to format confirmed user data: %v", err)
			sm.failSend()
		}

	case PrimaryWaitForConfirm:
		sm.timer.Cancel()
		sm.expectedTxFCB = !sm.expectedTxFCB
		sm.sessionReset = true
		sm.primaryState = PrimaryIdle
		sm.pendingFrame = nil
		sm.lastSendPayload = nil
		sm.upper.OnSendResult(true)

	default:
		sm.log.Warn("UNEXPECTED_LPDU: SEC_ACK received outside an active transaction")
	}
}

func (sm *StateMachine) onNack() {
	if sm.primaryState != PrimaryWaitForConfirm {
		sm.log.Warn("UNEXPECTED_LPDU: SEC_NACK received outside WaitForConfirm")
		return
	}
	sm.timer.Cancel()
	// A NACK means the outstation considers the link unreset; retry the
	// reset sequence under a fresh attempt budget (§4.2 step 4).
	if err := sm.beginResetLink(); err != nil {
		sm.log.Error("failed to format reset link states: %v", err)
		sm.failSend()
	}
}

// dataPayload returns the user payload of the in-flight confirmed send
// (lastSendPayload), so the ACK-of-reset transition (which
// must build a fresh CONFIRMED_USER_DATA frame with a cleared FCB) can
// reuse it without the caller re-supplying it.
func (sm *StateMachine) dataPayload() []byte {
	return sm.lastSendPayload
}

// onPrimaryFrame dispatches a PRI_* request received by a secondary-role
// (outstation) endpoint.
func (sm *StateMachine) onPrimaryFrame(fc FunctionCode, fcb, fcv bool, payload []byte) {
	switch fc {
	case FuncResetLink:
		sm.secondaryState = SecondaryReset
		sm.expectedRxFCB = false
		sm.sendAck()

	case FuncRequestLinkStatus:
		sm.sendLinkStatus()

	case FuncTestLinkStates:
		if sm.secondaryState == SecondaryUnreset {
			sm.log.Warn("UNEXPECTED_LPDU: TEST_LINK_STATES received while unreset")
			return
		}
		if fcb != sm.expectedRxFCB {
			return // drop, no response
		}
		sm.expectedRxFCB = !sm.expectedRxFCB
		sm.sendAck()

	case FuncUserDataConfirmed:
		if sm.secondaryState == SecondaryUnreset {
			sm.log.Warn("UNEXPECTED_LPDU: CONFIRMED_USER_DATA received while unreset")
			return
		}
		if fcb == sm.expectedRxFCB {
			sm.expectedRxFCB = !sm.expectedRxFCB
			sm.upper.OnReceive(payload)
		} else {
			sm.log.Warn("duplicate CONFIRMED_USER_DATA suppressed (FCB mismatch)")
		}
		sm.sendAck()

	case FuncUserDataUnconfirmed:
		sm.upper.OnReceive(payload)

	default:
		sm.log.Warn("UNEXPECTED_LPDU: unrecognized primary function %d", fc)
	}
}

func (sm *StateMachine) sendAck() {
	frame, err := FormatAck(sm.config.RemoteAddr, sm.config.LocalAddr)
	if err != nil {
		sm.log.Error("failed to format ACK: %v", err)
		return
	}
	sm.writer.Transmit(frame)
}

func (sm *StateMachine) sendLinkStatus() {
	frame, err := FormatLinkStatus(sm.config.RemoteAddr, sm.config.LocalAddr)
	if err != nil {
		sm.log.Error("failed to format LINK_STATUS: %v", err)
		return
	}
	sm.writer.Transmit(frame)
}

// armTimer (re)starts the single response timer for the current phase.
func (sm *StateMachine) armTimer() {
	sm.timer.Restart(sm.exec.GetTime().Add(sm.config.Timeout), sm.onResponseTimeout)
}

// onResponseTimeout fires when the peer fails to respond within
// config.Timeout while ResettingLink or WaitForConfirm.
func (sm *StateMachine) onResponseTimeout() {
	sm.retryOrFail()
}

// retryOrFail re-emits the pending frame if the current phase's retry
// budget allows it, otherwise reports a single send failure upstream.
func (sm *StateMachine) retryOrFail() {
	if sm.retriesLeft == 0 {
		sm.failSend()
		return
	}
	sm.retriesLeft--
	sm.writer.Transmit(sm.pendingFrame)
	sm.armTimer()
}

// failSend reports exactly one failure upstream and returns the primary
// sub-machine to Idle. If the failure occurred mid-data-phase, the
// session is no longer considered reset.
func (sm *StateMachine) failSend() {
	if sm.phase == phaseData {
		sm.sessionReset = false
	}
	sm.primaryState = PrimaryIdle
	sm.phase = phaseNone
	sm.pendingFrame = nil
	sm.lastSendPayload = nil
	sm.upper.OnSendResult(false)
}

func isSecondaryFunction(fc FunctionCode) bool {
	switch fc {
	case FuncAck, FuncNack, FuncLinkStatusResponse, FuncLinkNotFunctioning, FuncLinkNotUsed:
		return true
	default:
		return false
	}
}

func isPrimaryFunction(fc FunctionCode) bool {
	switch fc {
	case FuncResetLink, FuncResetUserProcess, FuncTestLinkStates, FuncUserDataConfirmed, FuncUserDataUnconfirmed, FuncRequestLinkStatus:
		return true
	default:
		return false
	}
}
