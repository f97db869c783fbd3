package wire

// Position is a block coordinate packed into one long: x and z use 26 bits, y 12.
type Position struct {
	X, Y, Z int32
}

func (p Position) Pack() int64 {
	return (int64(p.X)&0x3ffffff)<<38 | (int64(p.Z)&0x3ffffff)<<12 | int64(p.Y)&0xfff
}

// UnpackPosition sign-extends each field.
func UnpackPosition(v int64) Position {
	return Position{
		X: int32(v >> 38),
		Y: int32(v << 52 >> 52),
		Z: int32(v << 26 >> 38),
	}
}

// Angle is a rotation in 1/256ths of a full turn.
type Angle uint8

func (a Angle) Degrees() float32 {
	return float32(a) * 360 / 256
}

// AngleFromDegrees wraps deg into [0, 360) before quantising.
func AngleFromDegrees(deg float32) Angle {
	steps := int(deg * 256 / 360)
	return Angle(uint8(steps))
}

// EntityPosition is an absolute entity location.
type EntityPosition struct {
	X, Y, Z float64
}

// EntityRotation is an entity's look direction as two angles.
type EntityRotation struct {
	Yaw, Pitch Angle
}
