package packet

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedVersion = errors.New("packet: unsupported protocol version")
	ErrTrailingBytes      = errors.New("packet: payload has trailing bytes")
	ErrOutOfRange         = errors.New("packet: field value out of range")
)

// UnknownPacketIDError is returned by Decode when the active table has no entry for
// the id.
type UnknownPacketIDError struct {
	State     State
	Direction Direction
	ID        int32
}

func (e *UnknownPacketIDError) Error() string {
	return fmt.Sprintf("packet: unknown %s %s id 0x%02x", e.State, e.Direction, e.ID)
}

// MalformedPacketError wraps the reason a known packet failed to decode.
type MalformedPacketError struct {
	Name string
	ID   int32
	Err  error
}

func (e *MalformedPacketError) Error() string {
	return fmt.Sprintf("packet: malformed %s (0x%02x): %v", e.Name, e.ID, e.Err)
}

func (e *MalformedPacketError) Unwrap() error {
	return e.Err
}

// WrongStateError reports an attempt to encode a packet outside the state that
// defines it.
type WrongStateError struct {
	Name      string
	State     State
	Direction Direction
}

func (e *WrongStateError) Error() string {
	return fmt.Sprintf("packet: %s is not a %s %s packet", e.Name, e.State, e.Direction)
}
