package client

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/huoshan017/mcnet/common"
	"github.com/huoshan017/mcnet/frame"
	"github.com/huoshan017/mcnet/log"
	"github.com/huoshan017/mcnet/packet"
)

// session is one transport lifetime. Its goroutine dials, then reads, decodes and
// dispatches until the transport ends.
type session struct {
	c      *Connection
	host   string
	port   uint16
	addr   string
	sm     *common.StateMachine
	enc    *frame.Encoder
	dec    *frame.Decoder
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	closed int32 // set by close; suppresses every later event

	// sendMu orders encoding and enqueueing, and guards state changes so a frame is
	// never encoded or decoded with a stale table.
	sendMu  sync.Mutex
	conn    *common.Conn
	endOnce sync.Once
}

func newSession(c *Connection, host string, port uint16) *session {
	s := &session{
		c:    c,
		host: host,
		port: port,
		addr: Address(host, port),
		sm:   common.NewStateMachine(),
		enc:  frame.NewEncoder(c.options.GetMaxFrameSize()),
		dec:  frame.NewDecoder(c.options.GetMaxFrameSize()),
		done: make(chan struct{}),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s
}

func (s *session) isClosed() bool {
	return atomic.LoadInt32(&s.closed) > 0
}

func (s *session) alive() bool {
	return !s.isClosed()
}

// emit delivers ev unless the session was closed, rechecking before every handler so
// nothing runs once Close has returned.
func (s *session) emit(ev common.Event) {
	if s.isClosed() {
		return
	}
	s.c.dispatcher.DispatchWhile(ev, s.alive)
}

func (s *session) observe(dir packet.Direction, state packet.State, f frame.Frame) {
	for _, o := range s.c.options.GetFrameObservers() {
		o.ObserveFrame(dir, state, f)
	}
}

func (s *session) run() {
	defer close(s.done)
	defer func() {
		if err := recover(); err != nil {
			log.WithStack(err)
			s.end(common.ConnectionFailed{Err: errors.Errorf("mcnet: session panic: %v", err)})
		}
	}()
	defer s.cancel()

	netConn, err := s.c.connector.Connect(s.ctx, s.addr)
	if err != nil {
		log.Infof("mcnet: connect %s failed: %v", s.addr, err)
		s.end(common.ConnectionFailed{Err: err})
		return
	}

	s.sendMu.Lock()
	if s.isClosed() {
		s.sendMu.Unlock()
		netConn.Close()
		return
	}
	s.conn = common.NewConn(netConn, s.c.options, s.enc.Release)
	s.conn.Run()
	s.sendMu.Unlock()

	log.Debugf("mcnet: connected to %s", s.addr)
	s.emit(common.ConnectionReady{Addr: s.addr})

	reader := frame.NewReader(s.conn, s.dec, s.c.options.GetReadBuffSize())
	for {
		f, err := reader.ReadFrame()
		if err != nil {
			s.end(s.readFailure(err))
			return
		}
		if !s.handleFrame(f) {
			return
		}
	}
}

// readFailure turns the error that stopped the reader into the session's final event.
func (s *session) readFailure(err error) common.Event {
	if s.isClosed() {
		return nil
	}
	if werr := s.conn.WriteErr(); werr != nil {
		return common.ConnectionFailed{Err: common.NewTransportError("write", werr)}
	}
	if err == io.EOF {
		return common.Disconnected{Reason: "EOF"}
	}
	for _, frameErr := range []error{frame.ErrFrameTooLarge, frame.ErrMalformedLength, frame.ErrMalformedBody, frame.ErrBadCompression} {
		if errors.Is(err, frameErr) {
			return common.ConnectionFailed{Err: err}
		}
	}
	return common.ConnectionFailed{Err: common.NewTransportError("read", err)}
}

// end closes the session once and emits ev, if any. ev is dispatched outside the once
// so handlers may call Close or Restart.
func (s *session) end(ev common.Event) {
	first := false
	s.endOnce.Do(func() {
		first = true
		s.sendMu.Lock()
		s.sm.Close()
		conn := s.conn
		s.sendMu.Unlock()
		if conn != nil {
			conn.Close()
		}
	})
	if first && ev != nil {
		log.Debugf("mcnet: session %s ended: %v", s.addr, ev)
		s.emit(ev)
	}
}

func (s *session) close() {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return
	}
	s.cancel()
	s.end(nil)
}

// handleFrame decodes and dispatches f, and reports whether the session continues.
func (s *session) handleFrame(f frame.Frame) bool {
	s.sendMu.Lock()
	state := s.sm.State()
	switch state {
	case packet.StateStatus, packet.StateLogin, packet.StatePlay:
	case packet.StateClosed:
		s.sendMu.Unlock()
		return false
	default:
		s.sendMu.Unlock()
		s.end(common.ConnectionFailed{Err: errors.Wrapf(common.ErrProtocolViolation, "frame 0x%02x received in %s state", f.ID, state)})
		return false
	}
	s.observe(packet.Clientbound, state, f)
	p, err := s.c.codec.Decode(state, packet.Clientbound, f.ID, f.Payload)
	if err == nil {
		s.applyLocked(state, p)
	}
	s.sendMu.Unlock()

	if err != nil {
		if s.c.options.IsStrict() {
			s.end(common.ConnectionFailed{Err: err})
			return false
		}
		log.Debugf("mcnet: %v", err)
		s.emit(common.DecodeFailed{State: state, ID: f.ID, Err: err})
		return true
	}

	s.emit(common.PacketReceived{State: state, ID: f.ID, Packet: p})
	switch d := p.(type) {
	case packet.LoginDisconnect:
		s.end(common.Disconnected{Reason: d.Reason})
		return false
	case packet.PlayDisconnect:
		s.end(common.Disconnected{Reason: d.Reason})
		return false
	}
	return true
}

// applyLocked performs the state changes a received packet triggers, before the next
// frame is parsed.
func (s *session) applyLocked(state packet.State, p packet.Packet) {
	switch p := p.(type) {
	case packet.LoginSuccess:
		if err := s.sm.Transition(packet.StatePlay); err != nil {
			log.Warnf("mcnet: %v", err)
		}
	case packet.SetCompression:
		s.dec.SetCompressionThreshold(int(p.Threshold))
		s.enc.SetCompressionThreshold(int(p.Threshold))
		log.Debugf("mcnet: compression threshold %d in %s", p.Threshold, state)
	}
}

func (s *session) send(p packet.Packet) error {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if s.conn == nil {
		return common.ErrNotConnected
	}
	state := s.sm.State()
	if state == packet.StateClosed {
		return common.ErrConnClosed
	}
	return s.writeLocked(state, p, nil)
}

func (s *session) writeLocked(state packet.State, p packet.Packet, done chan error) error {
	id, payload, err := s.c.codec.Encode(state, packet.Serverbound, p)
	if err != nil {
		return err
	}
	buf, err := s.enc.Encode(id, payload)
	if err != nil {
		return errors.Wrapf(err, "frame %s", p.Name())
	}
	if err = s.conn.Send(buf, done); err != nil {
		s.enc.Release(buf)
		return err
	}
	s.observe(packet.Serverbound, state, frame.Frame{ID: id, Payload: payload})
	return nil
}

func (s *session) handshake(ctx context.Context, next packet.State) error {
	if next != packet.StateStatus && next != packet.StateLogin {
		return errors.Wrapf(common.ErrInvalidTransition, "handshake into %s", next)
	}
	done := make(chan error, 1)

	s.sendMu.Lock()
	if s.conn == nil {
		s.sendMu.Unlock()
		return common.ErrNotConnected
	}
	if err := s.sm.Transition(packet.StateHandshaking); err != nil {
		s.sendMu.Unlock()
		return err
	}
	hs := packet.Handshake{
		ProtocolVersion: int32(s.c.codec.Version()),
		ServerAddress:   s.host,
		ServerPort:      s.port,
		NextState:       next,
	}
	err := s.writeLocked(packet.StateHandshaking, hs, done)
	if err == nil {
		err = s.sm.Transition(next)
	}
	s.sendMu.Unlock()
	if err != nil {
		return err
	}

	select {
	case err = <-done:
		if err != nil && err != common.ErrConnClosed {
			return common.NewTransportError("write", err)
		}
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return common.ErrConnClosed
	}
}
