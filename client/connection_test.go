package client

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/huoshan017/mcnet/common"
	"github.com/huoshan017/mcnet/frame"
	"github.com/huoshan017/mcnet/internal/mctest"
	"github.com/huoshan017/mcnet/packet"
)

const waitTimeout = 5 * time.Second

func collect(c *Connection) chan common.Event {
	ch := make(chan common.Event, 128)
	c.RegisterHandler(func(ev common.Event) { ch <- ev })
	return ch
}

func nextEvent(t *testing.T, ch chan common.Event) common.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(waitTimeout):
		t.Fatalf("no event")
	}
	return nil
}

func nextPacket(t *testing.T, ch chan common.Event) packet.Packet {
	t.Helper()
	ev := nextEvent(t, ch)
	pr, ok := ev.(common.PacketReceived)
	if !ok {
		t.Fatalf("got %#v, want PacketReceived", ev)
	}
	return pr.Packet
}

func waitDone(t *testing.T, c *Connection) {
	t.Helper()
	select {
	case <-c.Done():
	case <-time.After(waitTimeout):
		t.Fatalf("session did not exit")
	}
}

func dial(t *testing.T, srv *mctest.Server, options ...common.Option) (*Connection, chan common.Event, *mctest.Peer) {
	t.Helper()
	c, err := NewConnection(options...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(c.Close)
	events := collect(c)
	if err := c.Connect(srv.Host(), srv.Port()); err != nil {
		t.Fatal(err)
	}
	peer := srv.Accept(t)
	if ev, ok := nextEvent(t, events).(common.ConnectionReady); !ok {
		t.Fatalf("got %#v, want ConnectionReady", ev)
	}
	return c, events, peer
}

func toPlay(t *testing.T, c *Connection, events chan common.Event, peer *mctest.Peer) {
	t.Helper()
	if err := c.Handshake(context.Background(), packet.StateLogin); err != nil {
		t.Fatalf("handshake: %v", err)
	}
	peer.Expect(t)
	if err := c.SendPacket(packet.LoginStart{Username: "Steve"}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(packet.LoginStart{Username: "Steve"}, peer.Expect(t)); diff != "" {
		t.Fatalf("login start (-want +got):\n%s", diff)
	}
	peer.Send(t, packet.LoginSuccess{UUID: uuid.New(), Username: "Steve"})
	if _, ok := nextPacket(t, events).(packet.LoginSuccess); !ok {
		t.Fatalf("want LoginSuccess")
	}
	if state := c.State(); state != packet.StatePlay {
		t.Fatalf("state = %s, want play", state)
	}
}

func TestStatusExchange(t *testing.T) {
	srv := mctest.NewServer(t, packet.V1_16_1)
	c, events, peer := dial(t, srv)
	if state := c.State(); state != packet.StateIdle {
		t.Fatalf("state = %s, want idle", state)
	}

	if err := c.Handshake(context.Background(), packet.StateStatus); err != nil {
		t.Fatalf("handshake: %v", err)
	}
	want := packet.Handshake{ProtocolVersion: 736, ServerAddress: "127.0.0.1", ServerPort: srv.Port(), NextState: packet.StateStatus}
	if diff := cmp.Diff(want, peer.Expect(t)); diff != "" {
		t.Fatalf("handshake (-want +got):\n%s", diff)
	}
	if state := c.State(); state != packet.StateStatus {
		t.Fatalf("state = %s, want status", state)
	}

	if err := c.SendPacket(packet.StatusRequest{}); err != nil {
		t.Fatal(err)
	}
	peer.Expect(t)
	peer.Send(t, packet.StatusResponse{JSON: `{"version":{"name":"1.16.1","protocol":736}}`})
	ev := nextEvent(t, events)
	wantEv := common.PacketReceived{State: packet.StateStatus, ID: 0x00, Packet: packet.StatusResponse{JSON: `{"version":{"name":"1.16.1","protocol":736}}`}}
	if diff := cmp.Diff(wantEv, ev); diff != "" {
		t.Fatalf("event (-want +got):\n%s", diff)
	}

	if err := c.SendPacket(packet.Ping{Payload: 99}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(packet.Ping{Payload: 99}, peer.Expect(t)); diff != "" {
		t.Fatalf("ping (-want +got):\n%s", diff)
	}
}

func TestHandshakeUsesConfiguredVersion(t *testing.T) {
	srv := mctest.NewServer(t, packet.V1_16_5)
	c, _, peer := dial(t, srv, common.WithVersion(packet.V1_16_5))
	if err := c.Handshake(context.Background(), packet.StateLogin); err != nil {
		t.Fatal(err)
	}
	hs, ok := peer.Expect(t).(packet.Handshake)
	if !ok || hs.ProtocolVersion != 754 || hs.NextState != packet.StateLogin {
		t.Fatalf("handshake = %#v", hs)
	}
}

func TestSendErrors(t *testing.T) {
	c, err := NewConnection()
	if err != nil {
		t.Fatal(err)
	}
	if err := c.SendPacket(packet.StatusRequest{}); !errors.Is(err, common.ErrNotConnected) {
		t.Fatalf("send before connect = %v", err)
	}
	if err := c.Restart(); !errors.Is(err, common.ErrNoAddress) {
		t.Fatalf("restart before connect = %v", err)
	}

	srv := mctest.NewServer(t, packet.DefaultVersion)
	c, _, _ = dial(t, srv)
	var wrong *packet.WrongStateError
	if err := c.SendPacket(packet.StatusRequest{}); !errors.As(err, &wrong) {
		t.Fatalf("send in idle = %v", err)
	}
	if err := c.Handshake(context.Background(), packet.StatePlay); !errors.Is(err, common.ErrInvalidTransition) {
		t.Fatalf("handshake into play = %v", err)
	}
	if err := c.Handshake(context.Background(), packet.StateStatus); err != nil {
		t.Fatal(err)
	}
	if err := c.Handshake(context.Background(), packet.StateStatus); !errors.Is(err, common.ErrInvalidTransition) {
		t.Fatalf("second handshake = %v", err)
	}
	if err := c.SendPacket(packet.LoginStart{Username: "x"}); !errors.As(err, &wrong) {
		t.Fatalf("login packet in status = %v", err)
	}
	// a rejected send leaves the session usable
	if err := c.SendPacket(packet.StatusRequest{}); err != nil {
		t.Fatalf("send after rejection: %v", err)
	}
}

func TestPlayFlowWithCompression(t *testing.T) {
	srv := mctest.NewServer(t, packet.DefaultVersion)
	c, events, peer := dial(t, srv)
	if err := c.Handshake(context.Background(), packet.StateLogin); err != nil {
		t.Fatal(err)
	}
	peer.Expect(t)
	if err := c.SendPacket(packet.LoginStart{Username: "Alex"}); err != nil {
		t.Fatal(err)
	}
	peer.Expect(t)

	peer.Send(t, packet.SetCompression{Threshold: 8})
	peer.Send(t, packet.LoginSuccess{UUID: uuid.New(), Username: "Alex"})
	peer.Send(t, packet.ClientboundKeepAlive{ID: 42})

	if _, ok := nextPacket(t, events).(packet.SetCompression); !ok {
		t.Fatalf("want SetCompression")
	}
	if _, ok := nextPacket(t, events).(packet.LoginSuccess); !ok {
		t.Fatalf("want LoginSuccess")
	}
	ev := nextEvent(t, events)
	if diff := cmp.Diff(common.PacketReceived{State: packet.StatePlay, ID: ev.(common.PacketReceived).ID, Packet: packet.ClientboundKeepAlive{ID: 42}}, ev); diff != "" {
		t.Fatalf("keep-alive (-want +got):\n%s", diff)
	}
	// the automatic reply travels compressed
	if diff := cmp.Diff(packet.ServerboundKeepAlive{ID: 42}, peer.Expect(t)); diff != "" {
		t.Fatalf("keep-alive reply (-want +got):\n%s", diff)
	}

	peer.Send(t, packet.PlayDisconnect{Reason: `{"text":"bye"}`})
	if _, ok := nextPacket(t, events).(packet.PlayDisconnect); !ok {
		t.Fatalf("want PlayDisconnect")
	}
	if diff := cmp.Diff(common.Disconnected{Reason: `{"text":"bye"}`}, nextEvent(t, events)); diff != "" {
		t.Fatalf("disconnect (-want +got):\n%s", diff)
	}
	waitDone(t, c)
	if state := c.State(); state != packet.StateClosed {
		t.Fatalf("state = %s, want closed", state)
	}
	if err := c.SendPacket(packet.ServerboundKeepAlive{ID: 1}); !errors.Is(err, common.ErrConnClosed) {
		t.Fatalf("send after disconnect = %v", err)
	}
}

func TestAutoKeepAliveDisabled(t *testing.T) {
	srv := mctest.NewServer(t, packet.DefaultVersion)
	c, events, peer := dial(t, srv, common.WithAutoKeepAlive(false))
	toPlay(t, c, events, peer)
	peer.Send(t, packet.ClientboundKeepAlive{ID: 7})
	nextPacket(t, events)
	if err := c.SendPacket(packet.ServerboundChatMessage{Message: "manual"}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(packet.ServerboundChatMessage{Message: "manual"}, peer.Expect(t)); diff != "" {
		t.Fatalf("first frame after keep-alive (-want +got):\n%s", diff)
	}
}

func TestReentrantSendsKeepOrder(t *testing.T) {
	srv := mctest.NewServer(t, packet.DefaultVersion)
	c, events, peer := dial(t, srv)
	toPlay(t, c, events, peer)

	c.RegisterHandler(func(ev common.Event) {
		pr, ok := ev.(common.PacketReceived)
		if !ok {
			return
		}
		if msg, ok := pr.Packet.(packet.ClientboundChatMessage); ok {
			if err := c.SendPacket(packet.ServerboundChatMessage{Message: msg.JSON}); err != nil {
				t.Errorf("reply: %v", err)
			}
		}
	})
	msgs := []string{`"a"`, `"b"`, `"c"`, `"d"`}
	for _, m := range msgs {
		peer.Send(t, packet.ClientboundChatMessage{JSON: m, Position: packet.ChatPositionSystem})
	}
	for _, m := range msgs {
		if got := nextPacket(t, events).(packet.ClientboundChatMessage).JSON; got != m {
			t.Fatalf("event %q, want %q", got, m)
		}
		if diff := cmp.Diff(packet.ServerboundChatMessage{Message: m}, peer.Expect(t)); diff != "" {
			t.Fatalf("reply (-want +got):\n%s", diff)
		}
	}
}

func TestEOFDisconnects(t *testing.T) {
	srv := mctest.NewServer(t, packet.DefaultVersion)
	c, events, peer := dial(t, srv)
	if err := c.Handshake(context.Background(), packet.StateStatus); err != nil {
		t.Fatal(err)
	}
	peer.Close()
	if diff := cmp.Diff(common.Disconnected{Reason: "EOF"}, nextEvent(t, events)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	waitDone(t, c)
}

func countTerminal(events chan common.Event) (failed []common.ConnectionFailed, disconnected int) {
	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case common.ConnectionFailed:
				failed = append(failed, ev)
			case common.Disconnected:
				disconnected++
			}
		default:
			return
		}
	}
}

func TestMalformedFrameFailsOnce(t *testing.T) {
	srv := mctest.NewServer(t, packet.DefaultVersion)
	c, events, peer := dial(t, srv)
	toPlay(t, c, events, peer)
	peer.Write(t, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0x01})
	peer.Close()
	waitDone(t, c)

	failed, disconnected := countTerminal(events)
	if len(failed) != 1 || disconnected != 0 {
		t.Fatalf("failed = %v, disconnected = %d", failed, disconnected)
	}
	if c.State() != packet.StateClosed {
		t.Fatalf("state = %s", c.State())
	}
}

func drain(events chan common.Event) []common.Event {
	var out []common.Event
	for {
		select {
		case ev := <-events:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestReadTimeoutInPlayFailsOnce(t *testing.T) {
	srv := mctest.NewServer(t, packet.DefaultVersion)
	c, events, peer := dial(t, srv, common.WithReadTimeout(300*time.Millisecond))
	toPlay(t, c, events, peer)

	ev, ok := nextEvent(t, events).(common.ConnectionFailed)
	if !ok || !errors.Is(ev.Err, common.ErrTimeout) {
		t.Fatalf("got %#v, want read timeout", ev)
	}
	var te *common.TransportError
	if !errors.As(ev.Err, &te) || te.Op != "read" {
		t.Fatalf("err = %v, want read transport error", ev.Err)
	}
	// the client has given up; this frame must not surface
	peer.TrySend(packet.ClientboundKeepAlive{ID: 5})
	waitDone(t, c)

	for _, ev := range drain(events) {
		t.Errorf("event after failure: %#v", ev)
	}
	if c.State() != packet.StateClosed {
		t.Fatalf("state = %s", c.State())
	}
}

func TestCloseStopsDispatchInProgress(t *testing.T) {
	srv := mctest.NewServer(t, packet.DefaultVersion)
	c, _, peer := dial(t, srv)
	if err := c.Handshake(context.Background(), packet.StateStatus); err != nil {
		t.Fatal(err)
	}
	peer.Expect(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	c.RegisterHandler(func(ev common.Event) {
		if pr, ok := ev.(common.PacketReceived); ok {
			if _, ok := pr.Packet.(packet.Pong); ok {
				close(entered)
				<-release
			}
		}
	})
	late := make(chan common.Event, 4)
	c.RegisterHandler(func(ev common.Event) { late <- ev })

	peer.Send(t, packet.Pong{Payload: 1})
	select {
	case <-entered:
	case <-time.After(waitTimeout):
		t.Fatalf("first handler never ran")
	}
	c.Close()
	close(release)
	waitDone(t, c)

	select {
	case ev := <-late:
		t.Fatalf("handler ran after Close returned: %#v", ev)
	default:
	}
}

func TestSendFrameTooLarge(t *testing.T) {
	srv := mctest.NewServer(t, packet.DefaultVersion)
	c, events, peer := dial(t, srv, common.WithMaxFrameSize(64))
	toPlay(t, c, events, peer)

	big := packet.ServerboundPluginMessage{Channel: "minecraft:brand", Data: make([]byte, 128)}
	if err := c.SendPacket(big); !errors.Is(err, frame.ErrFrameTooLarge) {
		t.Fatalf("oversized send = %v, want ErrFrameTooLarge", err)
	}
	// nothing reached the wire, so the session keeps going
	if err := c.SendPacket(packet.ServerboundKeepAlive{ID: 3}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(packet.ServerboundKeepAlive{ID: 3}, peer.Expect(t)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestFrameBeforeHandshake(t *testing.T) {
	srv := mctest.NewServer(t, packet.DefaultVersion)
	c, events, peer := dial(t, srv)
	peer.SendFrame(t, 0x00, []byte{0x00})
	ev, ok := nextEvent(t, events).(common.ConnectionFailed)
	if !ok || !errors.Is(ev.Err, common.ErrProtocolViolation) {
		t.Fatalf("got %#v, want protocol violation", ev)
	}
	waitDone(t, c)
}

func TestUnknownPacketTolerated(t *testing.T) {
	srv := mctest.NewServer(t, packet.DefaultVersion)
	c, events, peer := dial(t, srv)
	if err := c.Handshake(context.Background(), packet.StateStatus); err != nil {
		t.Fatal(err)
	}
	peer.Expect(t)
	peer.SendFrame(t, 0x7f, []byte{1, 2, 3})
	peer.Send(t, packet.Pong{Payload: 5})

	ev, ok := nextEvent(t, events).(common.DecodeFailed)
	if !ok {
		t.Fatalf("got %#v, want DecodeFailed", ev)
	}
	var unknown *packet.UnknownPacketIDError
	if !errors.As(ev.Err, &unknown) || unknown.ID != 0x7f || ev.State != packet.StateStatus {
		t.Fatalf("decode failure = %#v", ev)
	}
	if diff := cmp.Diff(packet.Pong{Payload: 5}, nextPacket(t, events)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestStrictDecodeFails(t *testing.T) {
	srv := mctest.NewServer(t, packet.DefaultVersion)
	c, events, peer := dial(t, srv, common.WithStrict(true))
	if err := c.Handshake(context.Background(), packet.StateStatus); err != nil {
		t.Fatal(err)
	}
	peer.Expect(t)
	// Pong with a truncated payload
	peer.SendFrame(t, 0x01, []byte{0, 0, 1})
	ev, ok := nextEvent(t, events).(common.ConnectionFailed)
	var malformed *packet.MalformedPacketError
	if !ok || !errors.As(ev.Err, &malformed) {
		t.Fatalf("got %#v, want malformed packet failure", ev)
	}
	waitDone(t, c)
}

func TestConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := uint16(ln.Addr().(*net.TCPAddr).Port)
	ln.Close()

	c, err := NewConnection()
	if err != nil {
		t.Fatal(err)
	}
	events := collect(c)
	if err := c.Connect("127.0.0.1", port); err != nil {
		t.Fatal(err)
	}
	ev, ok := nextEvent(t, events).(common.ConnectionFailed)
	if !ok || !errors.Is(ev.Err, common.ErrConnectionRefused) {
		t.Fatalf("got %#v, want connection refused", ev)
	}
	var te *common.TransportError
	if !errors.As(ev.Err, &te) || te.Op != "dial" {
		t.Fatalf("err = %v", ev.Err)
	}
	waitDone(t, c)
}

func TestRestartKeepsPersistentHandlers(t *testing.T) {
	srv := mctest.NewServer(t, packet.DefaultVersion)
	c, events, first := dial(t, srv)
	if err := c.Handshake(context.Background(), packet.StateStatus); err != nil {
		t.Fatal(err)
	}
	oneTime := c.RegisterOneTimeEventHandler(func(common.Event) {
		t.Errorf("one-time handler survived restart")
	}, common.EventConnectionReady)

	if err := c.Restart(); err != nil {
		t.Fatal(err)
	}
	if c.Unregister(oneTime) {
		t.Fatalf("one-time handler still registered")
	}
	second := srv.Accept(t)
	if ev, ok := nextEvent(t, events).(common.ConnectionReady); !ok {
		t.Fatalf("got %#v, want ConnectionReady", ev)
	}
	if state := c.State(); state != packet.StateIdle {
		t.Fatalf("state after restart = %s, want idle", state)
	}
	first.WaitClosed(t)

	if err := c.Handshake(context.Background(), packet.StateStatus); err != nil {
		t.Fatalf("handshake on new session: %v", err)
	}
	second.Expect(t)
	if failed, disconnected := countTerminal(events); len(failed) != 0 || disconnected != 0 {
		t.Fatalf("old session leaked events: %v %d", failed, disconnected)
	}
}

func TestCloseSuppressesEvents(t *testing.T) {
	srv := mctest.NewServer(t, packet.DefaultVersion)
	c, events, peer := dial(t, srv)
	if err := c.Handshake(context.Background(), packet.StateStatus); err != nil {
		t.Fatal(err)
	}
	peer.Expect(t)
	c.Close()
	peer.WaitClosed(t)
	waitDone(t, c)
	select {
	case ev := <-events:
		t.Fatalf("event after close: %#v", ev)
	default:
	}
	if err := c.SendPacket(packet.StatusRequest{}); !errors.Is(err, common.ErrConnClosed) {
		t.Fatalf("send after close = %v", err)
	}
}
