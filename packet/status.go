package packet

import "github.com/huoshan017/mcnet/wire"

// StatusRequest asks for the server list entry.
type StatusRequest struct{}

func (StatusRequest) Name() string { return "StatusRequest" }

func (StatusRequest) Encode(*wire.Writer, Version) error { return nil }

func decodeStatusRequest(*wire.Reader, Version) (Packet, error) {
	return StatusRequest{}, nil
}

// Ping carries an opaque value the server echoes back in Pong.
type Ping struct {
	Payload int64
}

func (Ping) Name() string { return "Ping" }

func (p Ping) Encode(w *wire.Writer, _ Version) error {
	w.WriteLong(p.Payload)
	return nil
}

func decodePing(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return Ping{Payload: f.long()}, f.err
}

// StatusResponse holds the server list JSON document.
type StatusResponse struct {
	JSON string
}

func (StatusResponse) Name() string { return "StatusResponse" }

func (p StatusResponse) Encode(w *wire.Writer, _ Version) error {
	return w.WriteString(p.JSON, wire.MaxStringLen)
}

func decodeStatusResponse(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return StatusResponse{JSON: f.string(wire.MaxStringLen)}, f.err
}

type Pong struct {
	Payload int64
}

func (Pong) Name() string { return "Pong" }

func (p Pong) Encode(w *wire.Writer, _ Version) error {
	w.WriteLong(p.Payload)
	return nil
}

func decodePong(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return Pong{Payload: f.long()}, f.err
}
