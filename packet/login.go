package packet

import (
	"github.com/google/uuid"

	"github.com/huoshan017/mcnet/wire"
)

const (
	maxUsernameLen = 16
	maxServerIDLen = 20
	maxKeyLen      = 1 << 12
)

// LoginDisconnect ends a login attempt. Reason is a chat component.
type LoginDisconnect struct {
	Reason string
}

func (LoginDisconnect) Name() string { return "LoginDisconnect" }

func (p LoginDisconnect) Encode(w *wire.Writer, _ Version) error {
	return w.WriteString(p.Reason, wire.MaxChatLen)
}

func decodeLoginDisconnect(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return LoginDisconnect{Reason: f.chat()}, f.err
}

type EncryptionRequest struct {
	ServerID    string
	PublicKey   []byte
	VerifyToken []byte
}

func (EncryptionRequest) Name() string { return "EncryptionRequest" }

func (p EncryptionRequest) Encode(w *wire.Writer, _ Version) error {
	return firstErr(
		w.WriteString(p.ServerID, maxServerIDLen),
		w.WritePrefixedBytes(p.PublicKey, maxKeyLen),
		w.WritePrefixedBytes(p.VerifyToken, maxKeyLen),
	)
}

func decodeEncryptionRequest(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return EncryptionRequest{
		ServerID:    f.string(maxServerIDLen),
		PublicKey:   f.prefixed(maxKeyLen),
		VerifyToken: f.prefixed(maxKeyLen),
	}, f.err
}

// LoginSuccess moves the connection into play.
type LoginSuccess struct {
	UUID     uuid.UUID
	Username string
}

func (LoginSuccess) Name() string { return "LoginSuccess" }

func (p LoginSuccess) Encode(w *wire.Writer, _ Version) error {
	w.WriteUUID(p.UUID)
	return w.WriteString(p.Username, maxUsernameLen)
}

func decodeLoginSuccess(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return LoginSuccess{UUID: f.uuid(), Username: f.string(maxUsernameLen)}, f.err
}

// SetCompression enables frame compression for payloads of at least Threshold bytes.
// A negative threshold disables it.
type SetCompression struct {
	Threshold int32
}

func (SetCompression) Name() string { return "SetCompression" }

func (p SetCompression) Encode(w *wire.Writer, _ Version) error {
	w.WriteVarInt(p.Threshold)
	return nil
}

func decodeSetCompression(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return SetCompression{Threshold: f.varInt()}, f.err
}

type LoginPluginRequest struct {
	MessageID int32
	Channel   string
	Data      []byte
}

func (LoginPluginRequest) Name() string { return "LoginPluginRequest" }

func (p LoginPluginRequest) Encode(w *wire.Writer, _ Version) error {
	w.WriteVarInt(p.MessageID)
	if err := w.WriteIdentifier(p.Channel); err != nil {
		return err
	}
	w.WriteByteArray(p.Data)
	return nil
}

func decodeLoginPluginRequest(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return LoginPluginRequest{
		MessageID: f.varInt(),
		Channel:   f.identifier(),
		Data:      f.rest(),
	}, f.err
}

type LoginStart struct {
	Username string
}

func (LoginStart) Name() string { return "LoginStart" }

func (p LoginStart) Encode(w *wire.Writer, _ Version) error {
	return w.WriteString(p.Username, maxUsernameLen)
}

func decodeLoginStart(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return LoginStart{Username: f.string(maxUsernameLen)}, f.err
}

type EncryptionResponse struct {
	SharedSecret []byte
	VerifyToken  []byte
}

func (EncryptionResponse) Name() string { return "EncryptionResponse" }

func (p EncryptionResponse) Encode(w *wire.Writer, _ Version) error {
	return firstErr(
		w.WritePrefixedBytes(p.SharedSecret, maxKeyLen),
		w.WritePrefixedBytes(p.VerifyToken, maxKeyLen),
	)
}

func decodeEncryptionResponse(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return EncryptionResponse{
		SharedSecret: f.prefixed(maxKeyLen),
		VerifyToken:  f.prefixed(maxKeyLen),
	}, f.err
}

// LoginPluginResponse answers a LoginPluginRequest. Data is only sent when Successful.
type LoginPluginResponse struct {
	MessageID  int32
	Successful bool
	Data       []byte
}

func (LoginPluginResponse) Name() string { return "LoginPluginResponse" }

func (p LoginPluginResponse) Encode(w *wire.Writer, _ Version) error {
	if !p.Successful && len(p.Data) > 0 {
		return ErrOutOfRange
	}
	w.WriteVarInt(p.MessageID)
	w.WriteBool(p.Successful)
	w.WriteByteArray(p.Data)
	return nil
}

func decodeLoginPluginResponse(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	p := LoginPluginResponse{MessageID: f.varInt(), Successful: f.bool()}
	if p.Successful {
		p.Data = f.rest()
	}
	return p, f.err
}
