// Package mctest provides a scripted loopback server for connection tests.
package mctest

import (
	"net"
	"testing"
	"time"

	"github.com/huoshan017/mcnet/frame"
	"github.com/huoshan017/mcnet/packet"
)

const ioTimeout = 5 * time.Second

// Server accepts connections on 127.0.0.1 and hands each one out as a Peer.
type Server struct {
	ln    net.Listener
	codec *packet.Codec
	conns chan net.Conn
}

func NewServer(t testing.TB, v packet.Version) *Server {
	t.Helper()
	codec, err := packet.NewCodec(v)
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := &Server{ln: ln, codec: codec, conns: make(chan net.Conn, 8)}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				close(s.conns)
				return
			}
			s.conns <- conn
		}
	}()
	t.Cleanup(s.Close)
	return s
}

func (s *Server) Host() string {
	return "127.0.0.1"
}

func (s *Server) Port() uint16 {
	return uint16(s.ln.Addr().(*net.TCPAddr).Port)
}

func (s *Server) Close() {
	s.ln.Close()
}

// Accept waits for the next client.
func (s *Server) Accept(t testing.TB) *Peer {
	t.Helper()
	select {
	case conn, ok := <-s.conns:
		if !ok {
			t.Fatalf("listener closed")
		}
		p := &Peer{conn: conn, codec: s.codec, enc: frame.NewEncoder(0)}
		p.reader = frame.NewReader(conn, frame.NewDecoder(frame.DefaultMaxFrameSize), 0)
		t.Cleanup(p.Close)
		return p
	case <-time.After(ioTimeout):
		t.Fatalf("no client connected")
	}
	return nil
}

// Peer is the server side of one client connection. It tracks the protocol state from
// the packets it sees and sends, the way a server would.
type Peer struct {
	conn   net.Conn
	codec  *packet.Codec
	reader *frame.Reader
	enc    *frame.Encoder
	state  packet.State
}

func (p *Peer) State() packet.State {
	return p.state
}

func (p *Peer) SetState(state packet.State) {
	p.state = state
}

// Expect reads and decodes the next serverbound packet.
func (p *Peer) Expect(t testing.TB) packet.Packet {
	t.Helper()
	f := p.ReadFrame(t)
	state := p.state
	if state == packet.StateIdle {
		state = packet.StateHandshaking
	}
	pk, err := p.codec.Decode(state, packet.Serverbound, f.ID, f.Payload)
	if err != nil {
		t.Fatalf("decode serverbound 0x%02x in %s: %v", f.ID, state, err)
	}
	if hs, ok := pk.(packet.Handshake); ok {
		p.state = hs.NextState
	}
	return pk
}

func (p *Peer) ReadFrame(t testing.TB) frame.Frame {
	t.Helper()
	p.conn.SetReadDeadline(time.Now().Add(ioTimeout))
	f, err := p.reader.ReadFrame()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return f
}

// Send encodes pk with the clientbound table of the current state. SetCompression and
// LoginSuccess take effect for the frames after them.
func (p *Peer) Send(t testing.TB, pk packet.Packet) {
	t.Helper()
	id, payload, err := p.codec.Encode(p.state, packet.Clientbound, pk)
	if err != nil {
		t.Fatalf("encode %s: %v", pk.Name(), err)
	}
	p.SendFrame(t, id, payload)
	switch pk := pk.(type) {
	case packet.SetCompression:
		p.enc.SetCompressionThreshold(int(pk.Threshold))
		p.reader.Decoder().SetCompressionThreshold(int(pk.Threshold))
	case packet.LoginSuccess:
		p.state = packet.StatePlay
	}
}

// TrySend is Send for a client that may already be gone; failures are returned, not
// reported to the test.
func (p *Peer) TrySend(pk packet.Packet) error {
	id, payload, err := p.codec.Encode(p.state, packet.Clientbound, pk)
	if err != nil {
		return err
	}
	buf, err := p.enc.Encode(id, payload)
	if err != nil {
		return err
	}
	defer p.enc.Release(buf)
	p.conn.SetWriteDeadline(time.Now().Add(ioTimeout))
	_, err = p.conn.Write(*buf)
	return err
}

func (p *Peer) SendFrame(t testing.TB, id int32, payload []byte) {
	t.Helper()
	buf, err := p.enc.Encode(id, payload)
	if err != nil {
		t.Fatalf("frame 0x%02x: %v", id, err)
	}
	defer p.enc.Release(buf)
	p.Write(t, *buf)
}

// Write puts raw bytes on the wire.
func (p *Peer) Write(t testing.TB, b []byte) {
	t.Helper()
	p.conn.SetWriteDeadline(time.Now().Add(ioTimeout))
	if _, err := p.conn.Write(b); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// WaitClosed blocks until the client closes its end.
func (p *Peer) WaitClosed(t testing.TB) {
	t.Helper()
	p.conn.SetReadDeadline(time.Now().Add(ioTimeout))
	for {
		if _, err := p.reader.ReadFrame(); err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				t.Fatalf("client did not close the connection")
			}
			return
		}
	}
}

func (p *Peer) Close() {
	p.conn.Close()
}
