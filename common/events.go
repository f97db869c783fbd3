package common

import (
	"github.com/huoshan017/mcnet/packet"
)

// Event names, as passed to RegisterOneTimeEventHandler and Await.
const (
	EventPacketReceived   = "packetReceived"
	EventConnectionReady  = "connectionReady"
	EventConnectionFailed = "connectionFailed"
	EventDisconnected     = "disconnected"
	EventDecodeFailed     = "decodeFailed"
)

// Event is delivered to handlers in receipt order.
type Event interface {
	EventName() string
}

// PacketReceived carries one decoded clientbound packet and the state it was decoded in.
type PacketReceived struct {
	State  packet.State
	ID     int32
	Packet packet.Packet
}

func (PacketReceived) EventName() string { return EventPacketReceived }

// ConnectionReady is emitted once the transport is open.
type ConnectionReady struct {
	Addr string
}

func (ConnectionReady) EventName() string { return EventConnectionReady }

// ConnectionFailed ends a session because of a transport, frame or protocol error.
type ConnectionFailed struct {
	Err error
}

func (ConnectionFailed) EventName() string { return EventConnectionFailed }

// Disconnected ends a session that the server closed, either with a disconnect packet
// (Reason holds its chat JSON) or by closing the stream (Reason is "EOF").
type Disconnected struct {
	Reason string
}

func (Disconnected) EventName() string { return EventDisconnected }

// DecodeFailed reports a frame that could not be turned into a packet. The session
// keeps running.
type DecodeFailed struct {
	State packet.State
	ID    int32
	Err   error
}

func (DecodeFailed) EventName() string { return EventDecodeFailed }
