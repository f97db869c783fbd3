package wire

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// MaxStringLen is the protocol-wide upper bound for string fields, in characters.
	MaxStringLen = 32767
	// MaxChatLen bounds chat component JSON.
	MaxChatLen = 262144
)

// Reader decodes protocol primitives from a byte slice. Every read advances the cursor
// and fails with ErrBufferUnderrun when not enough bytes remain; a failed read does not
// move the cursor.
type Reader struct {
	buf []byte
	off int
}

func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

// Offset returns the cursor position.
func (r *Reader) Offset() int {
	return r.off
}

func (r *Reader) next(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrNegativeLength
	}
	if r.Remaining() < n {
		return nil, ErrBufferUnderrun
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *Reader) ReadByte() (byte, error) {
	b, err := r.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadSignedByte reads one two's complement byte.
func (r *Reader) ReadSignedByte() (int8, error) {
	b, err := r.ReadByte()
	return int8(b), err
}

func (r *Reader) ReadUnsignedByte() (uint8, error) {
	return r.ReadByte()
}

func (r *Reader) ReadBool() (bool, error) {
	if r.Remaining() < 1 {
		return false, ErrBufferUnderrun
	}
	switch r.buf[r.off] {
	case 0:
		r.off++
		return false, nil
	case 1:
		r.off++
		return true, nil
	default:
		return false, ErrInvalidBool
	}
}

func (r *Reader) ReadShort() (int16, error) {
	v, err := r.ReadUnsignedShort()
	return int16(v), err
}

func (r *Reader) ReadUnsignedShort() (uint16, error) {
	b, err := r.next(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *Reader) ReadInt() (int32, error) {
	b, err := r.next(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

func (r *Reader) ReadLong() (int64, error) {
	b, err := r.next(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

func (r *Reader) ReadFloat() (float32, error) {
	v, err := r.ReadInt()
	return math.Float32frombits(uint32(v)), err
}

func (r *Reader) ReadDouble() (float64, error) {
	v, err := r.ReadLong()
	return math.Float64frombits(uint64(v)), err
}

func (r *Reader) ReadVarInt() (int32, error) {
	v, n, err := DecodeVarInt(r.buf[r.off:])
	if err != nil {
		return 0, err
	}
	r.off += n
	return v, nil
}

func (r *Reader) ReadVarLong() (int64, error) {
	var u uint64
	for i := 0; i < MaxVarLongLen; i++ {
		if r.off+i >= len(r.buf) {
			return 0, ErrBufferUnderrun
		}
		c := r.buf[r.off+i]
		u |= uint64(c&0x7f) << (7 * i)
		if c&0x80 == 0 {
			r.off += i + 1
			return int64(u), nil
		}
	}
	return 0, ErrInvalidVarInt
}

// ReadString reads a varint byte-length prefixed UTF-8 string of at most maxLen
// characters.
func (r *Reader) ReadString(maxLen int) (string, error) {
	start := r.off
	n, err := r.ReadVarInt()
	if err != nil {
		return "", err
	}
	if n < 0 {
		r.off = start
		return "", ErrNegativeLength
	}
	if int(n) > maxLen*utf8.UTFMax {
		r.off = start
		return "", ErrStringTooLong
	}
	b, err := r.next(int(n))
	if err != nil {
		r.off = start
		return "", err
	}
	if !utf8.Valid(b) {
		r.off = start
		return "", ErrInvalidString
	}
	if utf8.RuneCount(b) > maxLen {
		r.off = start
		return "", ErrStringTooLong
	}
	return string(b), nil
}

// ReadIdentifier reads a namespaced identifier such as "minecraft:brand".
func (r *Reader) ReadIdentifier() (string, error) {
	return r.ReadString(MaxStringLen)
}

// ReadByteArray copies the next n bytes.
func (r *Reader) ReadByteArray(n int) ([]byte, error) {
	b, err := r.next(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// ReadPrefixedBytes reads a varint length followed by that many bytes, rejecting
// lengths above max.
func (r *Reader) ReadPrefixedBytes(max int) ([]byte, error) {
	start := r.off
	n, err := r.ReadVarInt()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		r.off = start
		return nil, ErrNegativeLength
	}
	if int(n) > max {
		r.off = start
		return nil, ErrStringTooLong
	}
	b, err := r.ReadByteArray(int(n))
	if err != nil {
		r.off = start
	}
	return b, err
}

// ReadRest copies everything up to the end of the buffer.
func (r *Reader) ReadRest() []byte {
	b, _ := r.ReadByteArray(r.Remaining())
	return b
}

func (r *Reader) ReadUUID() (uuid.UUID, error) {
	var id uuid.UUID
	b, err := r.next(16)
	if err != nil {
		return id, err
	}
	copy(id[:], b)
	return id, nil
}

func (r *Reader) ReadPosition() (Position, error) {
	v, err := r.ReadLong()
	if err != nil {
		return Position{}, err
	}
	return UnpackPosition(v), nil
}

func (r *Reader) ReadAngle() (Angle, error) {
	b, err := r.ReadByte()
	return Angle(b), err
}

func (r *Reader) ReadEntityPosition() (EntityPosition, error) {
	if r.Remaining() < 24 {
		return EntityPosition{}, ErrBufferUnderrun
	}
	x, _ := r.ReadDouble()
	y, _ := r.ReadDouble()
	z, _ := r.ReadDouble()
	return EntityPosition{X: x, Y: y, Z: z}, nil
}

func (r *Reader) ReadEntityRotation() (EntityRotation, error) {
	if r.Remaining() < 2 {
		return EntityRotation{}, ErrBufferUnderrun
	}
	yaw, _ := r.ReadAngle()
	pitch, _ := r.ReadAngle()
	return EntityRotation{Yaw: yaw, Pitch: pitch}, nil
}
