package packet

import (
	"github.com/google/uuid"

	"github.com/huoshan017/mcnet/wire"
)

type SpawnExperienceOrb struct {
	EntityID int32
	Position wire.EntityPosition
	Count    int16
}

func (SpawnExperienceOrb) Name() string { return "SpawnExperienceOrb" }

func (p SpawnExperienceOrb) Encode(w *wire.Writer, _ Version) error {
	w.WriteVarInt(p.EntityID)
	w.WriteEntityPosition(p.Position)
	w.WriteShort(p.Count)
	return nil
}

func decodeSpawnExperienceOrb(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return SpawnExperienceOrb{
		EntityID: f.varInt(),
		Position: f.entityPosition(),
		Count:    f.short(),
	}, f.err
}

type SpawnPlayer struct {
	EntityID   int32
	PlayerUUID uuid.UUID
	Position   wire.EntityPosition
	Rotation   wire.EntityRotation
}

func (SpawnPlayer) Name() string { return "SpawnPlayer" }

func (p SpawnPlayer) Encode(w *wire.Writer, _ Version) error {
	w.WriteVarInt(p.EntityID)
	w.WriteUUID(p.PlayerUUID)
	w.WriteEntityPosition(p.Position)
	w.WriteEntityRotation(p.Rotation)
	return nil
}

func decodeSpawnPlayer(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return SpawnPlayer{
		EntityID:   f.varInt(),
		PlayerUUID: f.uuid(),
		Position:   f.entityPosition(),
		Rotation:   f.entityRotation(),
	}, f.err
}

// Animation ids carried by EntityAnimation.
const (
	AnimationSwingMainArm uint8 = iota
	AnimationTakeDamage
	AnimationLeaveBed
	AnimationSwingOffhand
	AnimationCriticalEffect
	AnimationMagicCriticalEffect
)

type EntityAnimation struct {
	EntityID  int32
	Animation uint8
}

func (EntityAnimation) Name() string { return "EntityAnimation" }

func (p EntityAnimation) Encode(w *wire.Writer, _ Version) error {
	if p.Animation > AnimationMagicCriticalEffect {
		return ErrOutOfRange
	}
	w.WriteVarInt(p.EntityID)
	w.WriteUnsignedByte(p.Animation)
	return nil
}

func decodeEntityAnimation(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	p := EntityAnimation{EntityID: f.varInt(), Animation: f.ubyte()}
	f.check(p.Animation <= AnimationMagicCriticalEffect)
	return p, f.err
}

type BlockChange struct {
	Location wire.Position
	BlockID  int32
}

func (BlockChange) Name() string { return "BlockChange" }

func (p BlockChange) Encode(w *wire.Writer, _ Version) error {
	w.WritePosition(p.Location)
	w.WriteVarInt(p.BlockID)
	return nil
}

func decodeBlockChange(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return BlockChange{Location: f.position(), BlockID: f.varInt()}, f.err
}

// Difficulty levels, peaceful through hard.
const (
	DifficultyPeaceful uint8 = iota
	DifficultyEasy
	DifficultyNormal
	DifficultyHard
)

type ServerDifficulty struct {
	Difficulty uint8
	Locked     bool
}

func (ServerDifficulty) Name() string { return "ServerDifficulty" }

func (p ServerDifficulty) Encode(w *wire.Writer, _ Version) error {
	if p.Difficulty > DifficultyHard {
		return ErrOutOfRange
	}
	w.WriteUnsignedByte(p.Difficulty)
	w.WriteBool(p.Locked)
	return nil
}

func decodeServerDifficulty(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	p := ServerDifficulty{Difficulty: f.ubyte(), Locked: f.bool()}
	f.check(p.Difficulty <= DifficultyHard)
	return p, f.err
}

// Chat positions.
const (
	ChatPositionChat int8 = iota
	ChatPositionSystem
	ChatPositionGameInfo
)

type ClientboundChatMessage struct {
	JSON     string
	Position int8
	Sender   uuid.UUID
}

func (ClientboundChatMessage) Name() string { return "ClientboundChatMessage" }

func (p ClientboundChatMessage) Encode(w *wire.Writer, _ Version) error {
	if p.Position < ChatPositionChat || p.Position > ChatPositionGameInfo {
		return ErrOutOfRange
	}
	if err := w.WriteString(p.JSON, wire.MaxChatLen); err != nil {
		return err
	}
	w.WriteSignedByte(p.Position)
	w.WriteUUID(p.Sender)
	return nil
}

func decodeClientboundChatMessage(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	p := ClientboundChatMessage{JSON: f.chat(), Position: f.byte()}
	f.check(p.Position >= ChatPositionChat && p.Position <= ChatPositionGameInfo)
	p.Sender = f.uuid()
	return p, f.err
}

type ClientboundPluginMessage struct {
	Channel string
	Data    []byte
}

func (ClientboundPluginMessage) Name() string { return "ClientboundPluginMessage" }

func (p ClientboundPluginMessage) Encode(w *wire.Writer, _ Version) error {
	if err := w.WriteIdentifier(p.Channel); err != nil {
		return err
	}
	w.WriteByteArray(p.Data)
	return nil
}

func decodeClientboundPluginMessage(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return ClientboundPluginMessage{Channel: f.identifier(), Data: f.rest()}, f.err
}

// PlayDisconnect ends a play session. Reason is a chat component.
type PlayDisconnect struct {
	Reason string
}

func (PlayDisconnect) Name() string { return "PlayDisconnect" }

func (p PlayDisconnect) Encode(w *wire.Writer, _ Version) error {
	return w.WriteString(p.Reason, wire.MaxChatLen)
}

func decodePlayDisconnect(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return PlayDisconnect{Reason: f.chat()}, f.err
}

type EntityStatus struct {
	EntityID int32
	Status   int8
}

func (EntityStatus) Name() string { return "EntityStatus" }

func (p EntityStatus) Encode(w *wire.Writer, _ Version) error {
	w.WriteInt(p.EntityID)
	w.WriteSignedByte(p.Status)
	return nil
}

func decodeEntityStatus(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return EntityStatus{EntityID: f.int(), Status: f.byte()}, f.err
}

type UnloadChunk struct {
	ChunkX, ChunkZ int32
}

func (UnloadChunk) Name() string { return "UnloadChunk" }

func (p UnloadChunk) Encode(w *wire.Writer, _ Version) error {
	w.WriteInt(p.ChunkX)
	w.WriteInt(p.ChunkZ)
	return nil
}

func decodeUnloadChunk(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return UnloadChunk{ChunkX: f.int(), ChunkZ: f.int()}, f.err
}

// maxGameStateReason is the highest reason code: enable respawn screen.
const maxGameStateReason = 11

type ChangeGameState struct {
	Reason uint8
	Value  float32
}

func (ChangeGameState) Name() string { return "ChangeGameState" }

func (p ChangeGameState) Encode(w *wire.Writer, _ Version) error {
	if p.Reason > maxGameStateReason {
		return ErrOutOfRange
	}
	w.WriteUnsignedByte(p.Reason)
	w.WriteFloat(p.Value)
	return nil
}

func decodeChangeGameState(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	p := ChangeGameState{Reason: f.ubyte(), Value: f.float()}
	f.check(p.Reason <= maxGameStateReason)
	return p, f.err
}

type ClientboundKeepAlive struct {
	ID int64
}

func (ClientboundKeepAlive) Name() string { return "ClientboundKeepAlive" }

func (p ClientboundKeepAlive) Encode(w *wire.Writer, _ Version) error {
	w.WriteLong(p.ID)
	return nil
}

func decodeClientboundKeepAlive(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return ClientboundKeepAlive{ID: f.long()}, f.err
}

// JoinGame starts play. Dimension is an identifier on 1.16.1; from 1.16.2 the
// dimension type is sent inline as NBT in DimensionType instead. DimensionCodec and
// DimensionType are raw NBT.
type JoinGame struct {
	EntityID            int32
	IsHardcore          bool
	Gamemode            uint8
	PreviousGamemode    int8
	WorldNames          []string
	DimensionCodec      []byte
	Dimension           string
	DimensionType       []byte
	WorldName           string
	HashedSeed          int64
	MaxPlayers          int32
	ViewDistance        int32
	ReducedDebugInfo    bool
	EnableRespawnScreen bool
	IsDebug             bool
	IsFlat              bool
}

// hardcoreFlag is folded into the gamemode byte before 1.16.2.
const hardcoreFlag = 0x08

func (JoinGame) Name() string { return "JoinGame" }

func (p JoinGame) Encode(w *wire.Writer, v Version) error {
	w.WriteInt(p.EntityID)
	if v >= V1_16_5 {
		w.WriteBool(p.IsHardcore)
		w.WriteUnsignedByte(p.Gamemode)
	} else {
		// the flag bit is reserved for IsHardcore
		if p.Gamemode&hardcoreFlag != 0 {
			return ErrOutOfRange
		}
		gm := p.Gamemode
		if p.IsHardcore {
			gm |= hardcoreFlag
		}
		w.WriteUnsignedByte(gm)
	}
	w.WriteSignedByte(p.PreviousGamemode)
	w.WriteVarInt(int32(len(p.WorldNames)))
	for _, name := range p.WorldNames {
		if err := w.WriteIdentifier(name); err != nil {
			return err
		}
	}
	w.WriteNBT(p.DimensionCodec)
	if v >= V1_16_5 {
		w.WriteNBT(p.DimensionType)
	} else if err := w.WriteIdentifier(p.Dimension); err != nil {
		return err
	}
	if err := w.WriteIdentifier(p.WorldName); err != nil {
		return err
	}
	w.WriteLong(p.HashedSeed)
	if v >= V1_16_5 {
		w.WriteVarInt(p.MaxPlayers)
	} else {
		if p.MaxPlayers < 0 || p.MaxPlayers > 0xff {
			return ErrOutOfRange
		}
		w.WriteUnsignedByte(uint8(p.MaxPlayers))
	}
	w.WriteVarInt(p.ViewDistance)
	w.WriteBool(p.ReducedDebugInfo)
	w.WriteBool(p.EnableRespawnScreen)
	w.WriteBool(p.IsDebug)
	w.WriteBool(p.IsFlat)
	return nil
}

func decodeJoinGame(r *wire.Reader, v Version) (Packet, error) {
	f := newFields(r)
	p := JoinGame{EntityID: f.int()}
	if v >= V1_16_5 {
		p.IsHardcore = f.bool()
		p.Gamemode = f.ubyte()
	} else {
		gm := f.ubyte()
		p.IsHardcore = gm&hardcoreFlag != 0
		p.Gamemode = gm &^ hardcoreFlag
	}
	p.PreviousGamemode = f.byte()
	n := f.count()
	if n > 0 {
		p.WorldNames = make([]string, 0, n)
	}
	for i := 0; i < n && f.err == nil; i++ {
		p.WorldNames = append(p.WorldNames, f.identifier())
	}
	p.DimensionCodec = f.nbt()
	if v >= V1_16_5 {
		p.DimensionType = f.nbt()
	} else {
		p.Dimension = f.identifier()
	}
	p.WorldName = f.identifier()
	p.HashedSeed = f.long()
	if v >= V1_16_5 {
		p.MaxPlayers = f.varInt()
	} else {
		p.MaxPlayers = int32(f.ubyte())
	}
	p.ViewDistance = f.varInt()
	p.ReducedDebugInfo = f.bool()
	p.EnableRespawnScreen = f.bool()
	p.IsDebug = f.bool()
	p.IsFlat = f.bool()
	return p, f.err
}

// EntityPosition moves an entity by a delta in 1/4096ths of a block.
type EntityPosition struct {
	EntityID               int32
	DeltaX, DeltaY, DeltaZ int16
	OnGround               bool
}

func (EntityPosition) Name() string { return "EntityPosition" }

func (p EntityPosition) Encode(w *wire.Writer, _ Version) error {
	w.WriteVarInt(p.EntityID)
	w.WriteShort(p.DeltaX)
	w.WriteShort(p.DeltaY)
	w.WriteShort(p.DeltaZ)
	w.WriteBool(p.OnGround)
	return nil
}

func decodeEntityPosition(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return EntityPosition{
		EntityID: f.varInt(),
		DeltaX:   f.short(),
		DeltaY:   f.short(),
		DeltaZ:   f.short(),
		OnGround: f.bool(),
	}, f.err
}

type EntityPositionAndRotation struct {
	EntityID               int32
	DeltaX, DeltaY, DeltaZ int16
	Rotation               wire.EntityRotation
	OnGround               bool
}

func (EntityPositionAndRotation) Name() string { return "EntityPositionAndRotation" }

func (p EntityPositionAndRotation) Encode(w *wire.Writer, _ Version) error {
	w.WriteVarInt(p.EntityID)
	w.WriteShort(p.DeltaX)
	w.WriteShort(p.DeltaY)
	w.WriteShort(p.DeltaZ)
	w.WriteEntityRotation(p.Rotation)
	w.WriteBool(p.OnGround)
	return nil
}

func decodeEntityPositionAndRotation(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return EntityPositionAndRotation{
		EntityID: f.varInt(),
		DeltaX:   f.short(),
		DeltaY:   f.short(),
		DeltaZ:   f.short(),
		Rotation: f.entityRotation(),
		OnGround: f.bool(),
	}, f.err
}

type EntityRotation struct {
	EntityID int32
	Rotation wire.EntityRotation
	OnGround bool
}

func (EntityRotation) Name() string { return "EntityRotation" }

func (p EntityRotation) Encode(w *wire.Writer, _ Version) error {
	w.WriteVarInt(p.EntityID)
	w.WriteEntityRotation(p.Rotation)
	w.WriteBool(p.OnGround)
	return nil
}

func decodeEntityRotation(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return EntityRotation{
		EntityID: f.varInt(),
		Rotation: f.entityRotation(),
		OnGround: f.bool(),
	}, f.err
}

type EntityMovement struct {
	EntityID int32
}

func (EntityMovement) Name() string { return "EntityMovement" }

func (p EntityMovement) Encode(w *wire.Writer, _ Version) error {
	w.WriteVarInt(p.EntityID)
	return nil
}

func decodeEntityMovement(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return EntityMovement{EntityID: f.varInt()}, f.err
}

type PlayerAbilities struct {
	Flags               int8
	FlyingSpeed         float32
	FieldOfViewModifier float32
}

func (PlayerAbilities) Name() string { return "PlayerAbilities" }

func (p PlayerAbilities) Encode(w *wire.Writer, _ Version) error {
	w.WriteSignedByte(p.Flags)
	w.WriteFloat(p.FlyingSpeed)
	w.WriteFloat(p.FieldOfViewModifier)
	return nil
}

func decodePlayerAbilities(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return PlayerAbilities{
		Flags:               f.byte(),
		FlyingSpeed:         f.float(),
		FieldOfViewModifier: f.float(),
	}, f.err
}

// PlayerPositionAndLook teleports the client; it must answer with TeleportConfirm.
// Flags mark which fields are relative.
type PlayerPositionAndLook struct {
	X, Y, Z    float64
	Yaw, Pitch float32
	Flags      int8
	TeleportID int32
}

func (PlayerPositionAndLook) Name() string { return "PlayerPositionAndLook" }

func (p PlayerPositionAndLook) Encode(w *wire.Writer, _ Version) error {
	w.WriteDouble(p.X)
	w.WriteDouble(p.Y)
	w.WriteDouble(p.Z)
	w.WriteFloat(p.Yaw)
	w.WriteFloat(p.Pitch)
	w.WriteSignedByte(p.Flags)
	w.WriteVarInt(p.TeleportID)
	return nil
}

func decodePlayerPositionAndLook(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return PlayerPositionAndLook{
		X:          f.double(),
		Y:          f.double(),
		Z:          f.double(),
		Yaw:        f.float(),
		Pitch:      f.float(),
		Flags:      f.byte(),
		TeleportID: f.varInt(),
	}, f.err
}

type DestroyEntities struct {
	EntityIDs []int32
}

func (DestroyEntities) Name() string { return "DestroyEntities" }

func (p DestroyEntities) Encode(w *wire.Writer, _ Version) error {
	w.WriteVarInt(int32(len(p.EntityIDs)))
	for _, id := range p.EntityIDs {
		w.WriteVarInt(id)
	}
	return nil
}

func decodeDestroyEntities(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	n := f.count()
	p := DestroyEntities{EntityIDs: make([]int32, 0, n)}
	for i := 0; i < n && f.err == nil; i++ {
		p.EntityIDs = append(p.EntityIDs, f.varInt())
	}
	return p, f.err
}

type EntityHeadLook struct {
	EntityID int32
	HeadYaw  wire.Angle
}

func (EntityHeadLook) Name() string { return "EntityHeadLook" }

func (p EntityHeadLook) Encode(w *wire.Writer, _ Version) error {
	w.WriteVarInt(p.EntityID)
	w.WriteAngle(p.HeadYaw)
	return nil
}

func decodeEntityHeadLook(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return EntityHeadLook{EntityID: f.varInt(), HeadYaw: f.angle()}, f.err
}

// maxHotbarSlot is the last hotbar index.
const maxHotbarSlot = 8

type HeldItemChange struct {
	Slot int8
}

func (HeldItemChange) Name() string { return "HeldItemChange" }

func (p HeldItemChange) Encode(w *wire.Writer, _ Version) error {
	if p.Slot < 0 || p.Slot > maxHotbarSlot {
		return ErrOutOfRange
	}
	w.WriteSignedByte(p.Slot)
	return nil
}

func decodeHeldItemChange(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	p := HeldItemChange{Slot: f.byte()}
	f.check(p.Slot >= 0 && p.Slot <= maxHotbarSlot)
	return p, f.err
}

type UpdateViewPosition struct {
	ChunkX, ChunkZ int32
}

func (UpdateViewPosition) Name() string { return "UpdateViewPosition" }

func (p UpdateViewPosition) Encode(w *wire.Writer, _ Version) error {
	w.WriteVarInt(p.ChunkX)
	w.WriteVarInt(p.ChunkZ)
	return nil
}

func decodeUpdateViewPosition(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return UpdateViewPosition{ChunkX: f.varInt(), ChunkZ: f.varInt()}, f.err
}

type UpdateViewDistance struct {
	ViewDistance int32
}

func (UpdateViewDistance) Name() string { return "UpdateViewDistance" }

func (p UpdateViewDistance) Encode(w *wire.Writer, _ Version) error {
	w.WriteVarInt(p.ViewDistance)
	return nil
}

func decodeUpdateViewDistance(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return UpdateViewDistance{ViewDistance: f.varInt()}, f.err
}

type SpawnPosition struct {
	Location wire.Position
}

func (SpawnPosition) Name() string { return "SpawnPosition" }

func (p SpawnPosition) Encode(w *wire.Writer, _ Version) error {
	w.WritePosition(p.Location)
	return nil
}

func decodeSpawnPosition(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return SpawnPosition{Location: f.position()}, f.err
}

// EntityVelocity is in 1/8000ths of a block per tick.
type EntityVelocity struct {
	EntityID                        int32
	VelocityX, VelocityY, VelocityZ int16
}

func (EntityVelocity) Name() string { return "EntityVelocity" }

func (p EntityVelocity) Encode(w *wire.Writer, _ Version) error {
	w.WriteVarInt(p.EntityID)
	w.WriteShort(p.VelocityX)
	w.WriteShort(p.VelocityY)
	w.WriteShort(p.VelocityZ)
	return nil
}

func decodeEntityVelocity(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return EntityVelocity{
		EntityID:  f.varInt(),
		VelocityX: f.short(),
		VelocityY: f.short(),
		VelocityZ: f.short(),
	}, f.err
}

type SetExperience struct {
	Bar             float32
	Level           int32
	TotalExperience int32
}

func (SetExperience) Name() string { return "SetExperience" }

func (p SetExperience) Encode(w *wire.Writer, _ Version) error {
	w.WriteFloat(p.Bar)
	w.WriteVarInt(p.Level)
	w.WriteVarInt(p.TotalExperience)
	return nil
}

func decodeSetExperience(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return SetExperience{Bar: f.float(), Level: f.varInt(), TotalExperience: f.varInt()}, f.err
}

type UpdateHealth struct {
	Health     float32
	Food       int32
	Saturation float32
}

func (UpdateHealth) Name() string { return "UpdateHealth" }

func (p UpdateHealth) Encode(w *wire.Writer, _ Version) error {
	w.WriteFloat(p.Health)
	w.WriteVarInt(p.Food)
	w.WriteFloat(p.Saturation)
	return nil
}

func decodeUpdateHealth(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return UpdateHealth{Health: f.float(), Food: f.varInt(), Saturation: f.float()}, f.err
}

type TimeUpdate struct {
	WorldAge  int64
	TimeOfDay int64
}

func (TimeUpdate) Name() string { return "TimeUpdate" }

func (p TimeUpdate) Encode(w *wire.Writer, _ Version) error {
	w.WriteLong(p.WorldAge)
	w.WriteLong(p.TimeOfDay)
	return nil
}

func decodeTimeUpdate(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return TimeUpdate{WorldAge: f.long(), TimeOfDay: f.long()}, f.err
}

type EntityTeleport struct {
	EntityID int32
	Position wire.EntityPosition
	Rotation wire.EntityRotation
	OnGround bool
}

func (EntityTeleport) Name() string { return "EntityTeleport" }

func (p EntityTeleport) Encode(w *wire.Writer, _ Version) error {
	w.WriteVarInt(p.EntityID)
	w.WriteEntityPosition(p.Position)
	w.WriteEntityRotation(p.Rotation)
	w.WriteBool(p.OnGround)
	return nil
}

func decodeEntityTeleport(r *wire.Reader, _ Version) (Packet, error) {
	f := newFields(r)
	return EntityTeleport{
		EntityID: f.varInt(),
		Position: f.entityPosition(),
		Rotation: f.entityRotation(),
		OnGround: f.bool(),
	}, f.err
}
