package packet

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/huoshan017/mcnet/wire"
)

var supportedVersions = []Version{V1_16_1, V1_16_5}

// SupportedVersions lists the protocol versions NewCodec accepts.
func SupportedVersions() []Version {
	return append([]Version(nil), supportedVersions...)
}

// registration ties a packet to its id in each supported version, in the order of
// supportedVersions.
type registration struct {
	state  State
	dir    Direction
	name   string
	ids    [2]int32
	decode decodeFunc
}

func same(id int32) [2]int32 { return [2]int32{id, id} }

// 1.16.2 moved MultiBlockChange to 0x3B, shifting clientbound play ids 0x10..0x3B
// down by one.
func shifted(id int32) [2]int32 { return [2]int32{id, id - 1} }

var registrations = []registration{
	{StateHandshaking, Serverbound, "Handshake", same(0x00), decodeHandshake},

	{StateStatus, Serverbound, "StatusRequest", same(0x00), decodeStatusRequest},
	{StateStatus, Serverbound, "Ping", same(0x01), decodePing},
	{StateStatus, Clientbound, "StatusResponse", same(0x00), decodeStatusResponse},
	{StateStatus, Clientbound, "Pong", same(0x01), decodePong},

	{StateLogin, Clientbound, "LoginDisconnect", same(0x00), decodeLoginDisconnect},
	{StateLogin, Clientbound, "EncryptionRequest", same(0x01), decodeEncryptionRequest},
	{StateLogin, Clientbound, "LoginSuccess", same(0x02), decodeLoginSuccess},
	{StateLogin, Clientbound, "SetCompression", same(0x03), decodeSetCompression},
	{StateLogin, Clientbound, "LoginPluginRequest", same(0x04), decodeLoginPluginRequest},
	{StateLogin, Serverbound, "LoginStart", same(0x00), decodeLoginStart},
	{StateLogin, Serverbound, "EncryptionResponse", same(0x01), decodeEncryptionResponse},
	{StateLogin, Serverbound, "LoginPluginResponse", same(0x02), decodeLoginPluginResponse},

	{StatePlay, Clientbound, "SpawnExperienceOrb", same(0x01), decodeSpawnExperienceOrb},
	{StatePlay, Clientbound, "SpawnPlayer", same(0x04), decodeSpawnPlayer},
	{StatePlay, Clientbound, "EntityAnimation", same(0x05), decodeEntityAnimation},
	{StatePlay, Clientbound, "BlockChange", same(0x0B), decodeBlockChange},
	{StatePlay, Clientbound, "ServerDifficulty", same(0x0D), decodeServerDifficulty},
	{StatePlay, Clientbound, "ClientboundChatMessage", same(0x0E), decodeClientboundChatMessage},
	{StatePlay, Clientbound, "ClientboundPluginMessage", shifted(0x18), decodeClientboundPluginMessage},
	{StatePlay, Clientbound, "PlayDisconnect", shifted(0x1A), decodePlayDisconnect},
	{StatePlay, Clientbound, "EntityStatus", shifted(0x1B), decodeEntityStatus},
	{StatePlay, Clientbound, "UnloadChunk", shifted(0x1D), decodeUnloadChunk},
	{StatePlay, Clientbound, "ChangeGameState", shifted(0x1E), decodeChangeGameState},
	{StatePlay, Clientbound, "ClientboundKeepAlive", shifted(0x20), decodeClientboundKeepAlive},
	{StatePlay, Clientbound, "JoinGame", shifted(0x25), decodeJoinGame},
	{StatePlay, Clientbound, "EntityPosition", shifted(0x28), decodeEntityPosition},
	{StatePlay, Clientbound, "EntityPositionAndRotation", shifted(0x29), decodeEntityPositionAndRotation},
	{StatePlay, Clientbound, "EntityRotation", shifted(0x2A), decodeEntityRotation},
	{StatePlay, Clientbound, "EntityMovement", shifted(0x2B), decodeEntityMovement},
	{StatePlay, Clientbound, "PlayerAbilities", shifted(0x31), decodePlayerAbilities},
	{StatePlay, Clientbound, "PlayerPositionAndLook", shifted(0x35), decodePlayerPositionAndLook},
	{StatePlay, Clientbound, "DestroyEntities", shifted(0x37), decodeDestroyEntities},
	{StatePlay, Clientbound, "EntityHeadLook", shifted(0x3B), decodeEntityHeadLook},
	{StatePlay, Clientbound, "HeldItemChange", same(0x3F), decodeHeldItemChange},
	{StatePlay, Clientbound, "UpdateViewPosition", same(0x40), decodeUpdateViewPosition},
	{StatePlay, Clientbound, "UpdateViewDistance", same(0x41), decodeUpdateViewDistance},
	{StatePlay, Clientbound, "SpawnPosition", same(0x42), decodeSpawnPosition},
	{StatePlay, Clientbound, "EntityVelocity", same(0x46), decodeEntityVelocity},
	{StatePlay, Clientbound, "SetExperience", same(0x48), decodeSetExperience},
	{StatePlay, Clientbound, "UpdateHealth", same(0x49), decodeUpdateHealth},
	{StatePlay, Clientbound, "TimeUpdate", same(0x4E), decodeTimeUpdate},
	{StatePlay, Clientbound, "EntityTeleport", same(0x56), decodeEntityTeleport},

	{StatePlay, Serverbound, "TeleportConfirm", same(0x00), decodeTeleportConfirm},
	{StatePlay, Serverbound, "ServerboundChatMessage", same(0x03), decodeServerboundChatMessage},
	{StatePlay, Serverbound, "ClientStatus", same(0x04), decodeClientStatus},
	{StatePlay, Serverbound, "ClientSettings", same(0x05), decodeClientSettings},
	{StatePlay, Serverbound, "ServerboundPluginMessage", same(0x0B), decodeServerboundPluginMessage},
	{StatePlay, Serverbound, "ServerboundKeepAlive", same(0x10), decodeServerboundKeepAlive},
	{StatePlay, Serverbound, "PlayerPosition", same(0x12), decodePlayerPosition},
	{StatePlay, Serverbound, "PlayerPositionAndRotation", same(0x13), decodePlayerPositionAndRotation},
	{StatePlay, Serverbound, "PlayerRotation", same(0x14), decodePlayerRotation},
	{StatePlay, Serverbound, "PlayerMovement", same(0x15), decodePlayerMovement},
}

type idKey struct {
	state State
	dir   Direction
	id    int32
}

type nameKey struct {
	state State
	dir   Direction
	name  string
}

type entry struct {
	name   string
	decode decodeFunc
}

// Codec translates between packet values and (id, payload) pairs for one protocol
// version. A Codec is immutable and safe for concurrent use.
type Codec struct {
	version Version
	byID    map[idKey]entry
	byName  map[nameKey]int32
}

var codecs = func() map[Version]*Codec {
	m := make(map[Version]*Codec, len(supportedVersions))
	for i, v := range supportedVersions {
		c := &Codec{
			version: v,
			byID:    make(map[idKey]entry, len(registrations)),
			byName:  make(map[nameKey]int32, len(registrations)),
		}
		for _, reg := range registrations {
			id := reg.ids[i]
			k := idKey{reg.state, reg.dir, id}
			if _, dup := c.byID[k]; dup {
				panic("packet: duplicate id registration for " + reg.name)
			}
			c.byID[k] = entry{name: reg.name, decode: reg.decode}
			c.byName[nameKey{reg.state, reg.dir, reg.name}] = id
		}
		m[v] = c
	}
	return m
}()

// NewCodec returns the codec for v.
func NewCodec(v Version) (*Codec, error) {
	c, ok := codecs[v]
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "version %d", int32(v))
	}
	return c, nil
}

func (c *Codec) Version() Version {
	return c.version
}

// Decode parses payload with the table for (state, dir). The decoder must consume the
// payload exactly.
func (c *Codec) Decode(state State, dir Direction, id int32, payload []byte) (Packet, error) {
	e, ok := c.byID[idKey{state, dir, id}]
	if !ok {
		return nil, &UnknownPacketIDError{State: state, Direction: dir, ID: id}
	}
	r := wire.NewReader(payload)
	p, err := e.decode(r, c.version)
	if err != nil {
		return nil, &MalformedPacketError{Name: e.name, ID: id, Err: err}
	}
	if r.Remaining() != 0 {
		return nil, &MalformedPacketError{Name: e.name, ID: id, Err: ErrTrailingBytes}
	}
	return p, nil
}

// Encode looks up the id of p in (state, dir) and serializes its payload.
func (c *Codec) Encode(state State, dir Direction, p Packet) (int32, []byte, error) {
	id, ok := c.byName[nameKey{state, dir, p.Name()}]
	if !ok {
		return 0, nil, &WrongStateError{Name: p.Name(), State: state, Direction: dir}
	}
	w := wire.NewWriter()
	if err := p.Encode(w, c.version); err != nil {
		return 0, nil, errors.Wrapf(err, "encode %s", p.Name())
	}
	return id, w.Bytes(), nil
}

// ID reports the id registered for a packet name.
func (c *Codec) ID(state State, dir Direction, name string) (int32, bool) {
	id, ok := c.byName[nameKey{state, dir, name}]
	return id, ok
}

// Lookup reports the packet name registered for an id.
func (c *Codec) Lookup(state State, dir Direction, id int32) (string, bool) {
	e, ok := c.byID[idKey{state, dir, id}]
	return e.name, ok
}

// Names lists every packet registered for (state, dir), ordered by id.
func (c *Codec) Names(state State, dir Direction) []string {
	type pair struct {
		id   int32
		name string
	}
	var ps []pair
	for k, e := range c.byID {
		if k.state == state && k.dir == dir {
			ps = append(ps, pair{k.id, e.name})
		}
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].id < ps[j].id })
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.name
	}
	return names
}
