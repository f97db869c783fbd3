package packet

import "github.com/huoshan017/mcnet/wire"

const (
	maxChatMessageLen = 256
	maxLocaleLen      = 16
)

type TeleportConfirm struct {
	TeleportID int32
}

func (TeleportConfirm) Name() string { return "TeleportConfirm" }

func (p TeleportConfirm) Encode(w *wire.Writer, _ Version) error {
	w.WriteVarInt(p.TeleportID)
	return nil
}

func decodeTeleportConfirm(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return TeleportConfirm{TeleportID: f.varInt()}, f.err
}

type ServerboundChatMessage struct {
	Message string
}

func (ServerboundChatMessage) Name() string { return "ServerboundChatMessage" }

func (p ServerboundChatMessage) Encode(w *wire.Writer, _ Version) error {
	return w.WriteString(p.Message, maxChatMessageLen)
}

func decodeServerboundChatMessage(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return ServerboundChatMessage{Message: f.string(maxChatMessageLen)}, f.err
}

// ClientStatus actions.
const (
	ClientActionRespawn int32 = iota
	ClientActionRequestStats
)

type ClientStatus struct {
	Action int32
}

func (ClientStatus) Name() string { return "ClientStatus" }

func (p ClientStatus) Encode(w *wire.Writer, _ Version) error {
	if p.Action < ClientActionRespawn || p.Action > ClientActionRequestStats {
		return ErrOutOfRange
	}
	w.WriteVarInt(p.Action)
	return nil
}

func decodeClientStatus(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	p := ClientStatus{Action: f.varInt()}
	f.check(p.Action >= ClientActionRespawn && p.Action <= ClientActionRequestStats)
	return p, f.err
}

// ClientSettings is sent once after joining and whenever the player changes options.
// ChatMode is 0 (enabled) through 2 (hidden); MainHand is 0 (left) or 1 (right).
type ClientSettings struct {
	Locale             string
	ViewDistance       int8
	ChatMode           int32
	ChatColors         bool
	DisplayedSkinParts uint8
	MainHand           int32
}

func (ClientSettings) Name() string { return "ClientSettings" }

func (p ClientSettings) valid() bool {
	return p.ChatMode >= 0 && p.ChatMode <= 2 && p.MainHand >= 0 && p.MainHand <= 1
}

func (p ClientSettings) Encode(w *wire.Writer, _ Version) error {
	if !p.valid() {
		return ErrOutOfRange
	}
	if err := w.WriteString(p.Locale, maxLocaleLen); err != nil {
		return err
	}
	w.WriteSignedByte(p.ViewDistance)
	w.WriteVarInt(p.ChatMode)
	w.WriteBool(p.ChatColors)
	w.WriteUnsignedByte(p.DisplayedSkinParts)
	w.WriteVarInt(p.MainHand)
	return nil
}

func decodeClientSettings(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	p := ClientSettings{
		Locale:             f.string(maxLocaleLen),
		ViewDistance:       f.byte(),
		ChatMode:           f.varInt(),
		ChatColors:         f.bool(),
		DisplayedSkinParts: f.ubyte(),
		MainHand:           f.varInt(),
	}
	f.check(p.valid())
	return p, f.err
}

type ServerboundPluginMessage struct {
	Channel string
	Data    []byte
}

func (ServerboundPluginMessage) Name() string { return "ServerboundPluginMessage" }

func (p ServerboundPluginMessage) Encode(w *wire.Writer, _ Version) error {
	if err := w.WriteIdentifier(p.Channel); err != nil {
		return err
	}
	w.WriteByteArray(p.Data)
	return nil
}

func decodeServerboundPluginMessage(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return ServerboundPluginMessage{Channel: f.identifier(), Data: f.rest()}, f.err
}

// ServerboundKeepAlive echoes the id of a ClientboundKeepAlive.
type ServerboundKeepAlive struct {
	ID int64
}

func (ServerboundKeepAlive) Name() string { return "ServerboundKeepAlive" }

func (p ServerboundKeepAlive) Encode(w *wire.Writer, _ Version) error {
	w.WriteLong(p.ID)
	return nil
}

func decodeServerboundKeepAlive(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return ServerboundKeepAlive{ID: f.long()}, f.err
}

type PlayerPosition struct {
	X, FeetY, Z float64
	OnGround    bool
}

func (PlayerPosition) Name() string { return "PlayerPosition" }

func (p PlayerPosition) Encode(w *wire.Writer, _ Version) error {
	w.WriteDouble(p.X)
	w.WriteDouble(p.FeetY)
	w.WriteDouble(p.Z)
	w.WriteBool(p.OnGround)
	return nil
}

func decodePlayerPosition(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return PlayerPosition{X: f.double(), FeetY: f.double(), Z: f.double(), OnGround: f.bool()}, f.err
}

type PlayerPositionAndRotation struct {
	X, FeetY, Z float64
	Yaw, Pitch  float32
	OnGround    bool
}

func (PlayerPositionAndRotation) Name() string { return "PlayerPositionAndRotation" }

func (p PlayerPositionAndRotation) Encode(w *wire.Writer, _ Version) error {
	w.WriteDouble(p.X)
	w.WriteDouble(p.FeetY)
	w.WriteDouble(p.Z)
	w.WriteFloat(p.Yaw)
	w.WriteFloat(p.Pitch)
	w.WriteBool(p.OnGround)
	return nil
}

func decodePlayerPositionAndRotation(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return PlayerPositionAndRotation{
		X:        f.double(),
		FeetY:    f.double(),
		Z:        f.double(),
		Yaw:      f.float(),
		Pitch:    f.float(),
		OnGround: f.bool(),
	}, f.err
}

type PlayerRotation struct {
	Yaw, Pitch float32
	OnGround   bool
}

func (PlayerRotation) Name() string { return "PlayerRotation" }

func (p PlayerRotation) Encode(w *wire.Writer, _ Version) error {
	w.WriteFloat(p.Yaw)
	w.WriteFloat(p.Pitch)
	w.WriteBool(p.OnGround)
	return nil
}

func decodePlayerRotation(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return PlayerRotation{Yaw: f.float(), Pitch: f.float(), OnGround: f.bool()}, f.err
}

type PlayerMovement struct {
	OnGround bool
}

func (PlayerMovement) Name() string { return "PlayerMovement" }

func (p PlayerMovement) Encode(w *wire.Writer, _ Version) error {
	w.WriteBool(p.OnGround)
	return nil
}

func decodePlayerMovement(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return PlayerMovement{OnGround: f.bool()}, f.err
}
