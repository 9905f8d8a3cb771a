package master

import (
	"avaneesh/dnp3-go/pkg/channel"
	"avaneesh/dnp3-go/pkg/executor"
	"avaneesh/dnp3-go/pkg/link"
	"avaneesh/dnp3-go/pkg/transport"
)

// session connects the master to a channel, running the link-layer
// state machine on its own executor. It implements channel.Session
// directly; link.FrameWriter is implemented directly too (Transmit is
// unique to that interface), but link.UpperLayer is implemented by the
// embedded sessionUpper adapter, since link.UpperLayer's OnReceive and
// channel.Session's OnReceive have incompatible signatures.
type session struct {
	linkAddress uint16
	remoteAddr  uint16
	channel     *channel.Channel
	master      *master
	transport   *transport.Layer

	exec *executor.Executor
	sm   *link.StateMachine

	// sendDone receives the result of the in-flight segment's
	// confirmed delivery; sessionUpper.OnSendResult writes to it.
	sendDone chan bool
}

// sessionUpper adapts session to link.UpperLayer.
type sessionUpper struct{ s *session }

func (u sessionUpper) OnReceive(payload []byte) { u.s.deliverPayload(payload) }
func (u sessionUpper) OnSendResult(success bool) {
	select {
	case u.s.sendDone <- success:
	default:
	}
}
func (u sessionUpper) OnStateChange(online bool) { u.s.onLinkStateChange(online) }

// newSession creates a new master session.
func newSession(linkAddr, remoteAddr uint16, ch *channel.Channel, m *master, cfg link.Config) *session {
	cfg.LocalAddr = linkAddr
	cfg.RemoteAddr = remoteAddr
	cfg.IsMaster = true

	s := &session{
		linkAddress: linkAddr,
		remoteAddr:  remoteAddr,
		channel:     ch,
		master:      m,
		transport:   transport.NewLayer(),
		exec:        executor.New(nil),
		sendDone:    make(chan bool, 1),
	}
	s.sm = link.New(cfg, sessionUpper{s}, s, s.exec, m.logger)
	go s.exec.Run()
	s.exec.Post(s.sm.OnLowerLayerUp)
	return s
}

// close stops the session's executor. Called from master.Shutdown.
func (s *session) close() {
	s.exec.Stop()
}

// Transmit implements link.FrameWriter: writes the already-serialized
// frame to the channel and posts the transmit result back onto the
// state machine's executor, preserving the no-reentrant-callback rule.
func (s *session) Transmit(frame []byte) {
	err := s.channel.Write(frame)
	if err != nil {
		s.master.logger.Error("Master session %d: write failed: %v", s.linkAddress, err)
	}
	success := err == nil
	s.exec.Post(func() { s.sm.OnTransmitResult(success) })
}

// deliverPayload hands a confirmed or unconfirmed user-data payload
// (FCB/duplicate checks already cleared by the link layer) up to the
// transport reassembly layer.
func (s *session) deliverPayload(payload []byte) {
	apdu, err := s.transport.Receive(payload)
	if err != nil {
		s.master.logger.Debug("Master session %d: transport error: %v", s.linkAddress, err)
		return
	}
	if apdu == nil {
		return
	}
	if err := s.master.onReceiveAPDU(apdu); err != nil {
		s.master.logger.Error("Master session %d: APDU handling error: %v", s.linkAddress, err)
	}
}

func (s *session) onLinkStateChange(online bool) {
	if online {
		s.master.logger.Info("Master session %d: link online", s.linkAddress)
	} else {
		s.master.logger.Info("Master session %d: link offline", s.linkAddress)
	}
	s.transport.Reset()
}

// OnReceive implements channel.Session: the channel's read loop has
// already parsed the wire bytes into a link.Frame; post its fields
// onto the state machine's executor as OnFrame.
func (s *session) OnReceive(frame *link.Frame) error {
	s.exec.Post(func() {
		s.sm.OnFrame(frame.FunctionCode, bool(frame.Dir), frame.FCB, frame.FCV,
			frame.Destination, frame.Source, frame.UserData)
	})
	return nil
}

// LinkAddress returns the link address (implements channel.Session).
func (s *session) LinkAddress() uint16 {
	return s.linkAddress
}

// Type returns the session type (implements channel.Session).
func (s *session) Type() channel.SessionType {
	return channel.SessionTypeMaster
}

// OnConnectionEstablished resets transport layer when connection is
// established (implements channel.SessionWithConnectionState).
func (s *session) OnConnectionEstablished() {
	s.master.logger.Info("Master session %d: connection established, resetting transport layer", s.linkAddress)
	s.transport.Reset()
}

// OnConnectionLost handles connection loss (implements
// channel.SessionWithConnectionState).
func (s *session) OnConnectionLost() {
	s.master.logger.Info("Master session %d: connection lost", s.linkAddress)
	s.transport.Reset()
}

// sendAPDU segments apdu through the transport layer and drives each
// segment through the link-layer state machine sequentially, waiting
// for confirmed delivery of one before starting the next.
func (s *session) sendAPDU(apdu []byte) error {
	for _, segment := range s.transport.Send(apdu) {
		if err := s.sendSegment(segment); err != nil {
			return err
		}
	}
	return nil
}

func (s *session) sendSegment(segment []byte) error {
	errCh := make(chan error, 1)
	s.exec.Post(func() { errCh <- s.sm.Send(segment) })
	if err := <-errCh; err != nil {
		return err
	}
	if !<-s.sendDone {
		return ErrTimeout
	}
	return nil
}
