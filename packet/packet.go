// Package packet maps protocol frames to typed packet values for each supported
// protocol version.
package packet

import (
	"fmt"

	"github.com/huoshan017/mcnet/wire"
)

// State selects which id table is active on a connection.
type State int8

const (
	StateIdle State = iota
	StateHandshaking
	StateStatus
	StateLogin
	StatePlay
	StateClosed
)

var stateNames = [...]string{"idle", "handshaking", "status", "login", "play", "closed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int8(s))
	}
	return stateNames[s]
}

// Direction says who sends a packet.
type Direction int8

const (
	Serverbound Direction = iota
	Clientbound
)

func (d Direction) String() string {
	if d == Clientbound {
		return "clientbound"
	}
	return "serverbound"
}

// Version is a protocol version number as sent in the handshake.
type Version int32

const (
	V1_16_1 Version = 736
	V1_16_5 Version = 754

	DefaultVersion = V1_16_1
)

func (v Version) String() string {
	switch v {
	case V1_16_1:
		return "1.16.1"
	case V1_16_5:
		return "1.16.5"
	}
	return fmt.Sprintf("protocol %d", int32(v))
}

// Packet is implemented by one value type per packet. Encode writes the payload that
// follows the packet id.
type Packet interface {
	Name() string
	Encode(w *wire.Writer, v Version) error
}

type decodeFunc func(r *wire.Reader, v Version) (Packet, error)
