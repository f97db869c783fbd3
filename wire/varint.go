package wire

import "io"

const (
	MaxVarIntLen  = 5
	MaxVarLongLen = 10
)

// VarIntSize returns the number of bytes v occupies as a varint.
func VarIntSize(v int32) int {
	u := uint32(v)
	n := 1
	for u >= 0x80 {
		u >>= 7
		n++
	}
	return n
}

// AppendVarInt appends v using 7-bit groups, least significant first.
func AppendVarInt(b []byte, v int32) []byte {
	u := uint32(v)
	for u >= 0x80 {
		b = append(b, byte(u)|0x80)
		u >>= 7
	}
	return append(b, byte(u))
}

// AppendVarLong is the 64-bit form of AppendVarInt.
func AppendVarLong(b []byte, v int64) []byte {
	u := uint64(v)
	for u >= 0x80 {
		b = append(b, byte(u)|0x80)
		u >>= 7
	}
	return append(b, byte(u))
}

// PutVarInt writes v into b, which must hold at least VarIntSize(v) bytes, and returns
// the number of bytes written.
func PutVarInt(b []byte, v int32) int {
	u := uint32(v)
	i := 0
	for u >= 0x80 {
		b[i] = byte(u) | 0x80
		u >>= 7
		i++
	}
	b[i] = byte(u)
	return i + 1
}

// DecodeVarInt parses a varint at the start of b. It returns ErrBufferUnderrun when b
// ends before the terminating byte and ErrInvalidVarInt after five continuation bytes.
func DecodeVarInt(b []byte) (int32, int, error) {
	var u uint32
	for i := 0; i < MaxVarIntLen; i++ {
		if i >= len(b) {
			return 0, 0, ErrBufferUnderrun
		}
		c := b[i]
		u |= uint32(c&0x7f) << (7 * i)
		if c&0x80 == 0 {
			return int32(u), i + 1, nil
		}
	}
	return 0, 0, ErrInvalidVarInt
}

// ReadVarIntFrom reads a varint from a byte stream.
func ReadVarIntFrom(r io.ByteReader) (int32, error) {
	var u uint32
	for i := 0; i < MaxVarIntLen; i++ {
		c, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		u |= uint32(c&0x7f) << (7 * i)
		if c&0x80 == 0 {
			return int32(u), nil
		}
	}
	return 0, ErrInvalidVarInt
}
