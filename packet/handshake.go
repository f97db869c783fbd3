package packet

import "github.com/huoshan017/mcnet/wire"

const maxServerAddressLen = 255

// Handshake opens every connection. NextState is StateStatus or StateLogin.
type Handshake struct {
	ProtocolVersion int32
	ServerAddress   string
	ServerPort      uint16
	NextState       State
}

func (Handshake) Name() string { return "Handshake" }

func (p Handshake) Encode(w *wire.Writer, _ Version) error {
	var next int32
	switch p.NextState {
	case StateStatus:
		next = 1
	case StateLogin:
		next = 2
	default:
		return ErrOutOfRange
	}
	w.WriteVarInt(p.ProtocolVersion)
	if err := w.WriteString(p.ServerAddress, maxServerAddressLen); err != nil {
		return err
	}
	w.WriteUnsignedShort(p.ServerPort)
	w.WriteVarInt(next)
	return nil
}

func decodeHandshake(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	p := Handshake{
		ProtocolVersion: f.varInt(),
		ServerAddress:   f.string(maxServerAddressLen),
		ServerPort:      f.ushort(),
	}
	switch f.varInt() {
	case 1:
		p.NextState = StateStatus
	case 2:
		p.NextState = StateLogin
	default:
		f.check(false)
	}
	return p, f.err
}
