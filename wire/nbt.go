package wire

import "encoding/binary"

// NBT tag ids.
const (
	tagEnd byte = iota
	tagByte
	tagShort
	tagInt
	tagLong
	tagFloat
	tagDouble
	tagByteArray
	tagString
	tagList
	tagCompound
	tagIntArray
	tagLongArray
)

const maxNBTDepth = 512

// ReadNBT returns a copy of the next named binary tag as raw bytes. The tag is walked
// to find its end but not interpreted; a lone TAG_End reads as a one-byte value.
func (r *Reader) ReadNBT() ([]byte, error) {
	start := r.off
	n, err := nbtRoot(r.buf[r.off:])
	if err != nil {
		return nil, err
	}
	r.off += n
	out := make([]byte, n)
	copy(out, r.buf[start:start+n])
	return out, nil
}

// WriteNBT appends raw tag bytes previously obtained from ReadNBT. An empty value is
// written as TAG_End.
func (w *Writer) WriteNBT(raw []byte) {
	if len(raw) == 0 {
		w.buf = append(w.buf, tagEnd)
		return
	}
	w.buf = append(w.buf, raw...)
}

func nbtRoot(b []byte) (int, error) {
	if len(b) < 1 {
		return 0, ErrBufferUnderrun
	}
	typ := b[0]
	if typ == tagEnd {
		return 1, nil
	}
	off := 1
	nameLen, err := nbtStringLen(b[off:])
	if err != nil {
		return 0, err
	}
	off += nameLen
	n, err := nbtPayload(b[off:], typ, 0)
	if err != nil {
		return 0, err
	}
	return off + n, nil
}

func nbtStringLen(b []byte) (int, error) {
	if len(b) < 2 {
		return 0, ErrBufferUnderrun
	}
	n := 2 + int(binary.BigEndian.Uint16(b))
	if len(b) < n {
		return 0, ErrBufferUnderrun
	}
	return n, nil
}

func nbtArrayLen(b []byte, elem int) (int, error) {
	if len(b) < 4 {
		return 0, ErrBufferUnderrun
	}
	count := int32(binary.BigEndian.Uint32(b))
	if count < 0 {
		return 0, ErrInvalidNBT
	}
	n := 4 + int(count)*elem
	if len(b) < n {
		return 0, ErrBufferUnderrun
	}
	return n, nil
}

func nbtPayload(b []byte, typ byte, depth int) (int, error) {
	if depth > maxNBTDepth {
		return 0, ErrInvalidNBT
	}
	fixed := 0
	switch typ {
	case tagByte:
		fixed = 1
	case tagShort:
		fixed = 2
	case tagInt, tagFloat:
		fixed = 4
	case tagLong, tagDouble:
		fixed = 8
	case tagByteArray:
		return nbtArrayLen(b, 1)
	case tagIntArray:
		return nbtArrayLen(b, 4)
	case tagLongArray:
		return nbtArrayLen(b, 8)
	case tagString:
		return nbtStringLen(b)
	case tagList:
		if len(b) < 5 {
			return 0, ErrBufferUnderrun
		}
		elemType := b[0]
		count := int32(binary.BigEndian.Uint32(b[1:]))
		if count < 0 || (elemType == tagEnd && count > 0) || elemType > tagLongArray {
			return 0, ErrInvalidNBT
		}
		off := 5
		for i := int32(0); i < count; i++ {
			n, err := nbtPayload(b[off:], elemType, depth+1)
			if err != nil {
				return 0, err
			}
			off += n
		}
		return off, nil
	case tagCompound:
		off := 0
		for {
			if off >= len(b) {
				return 0, ErrBufferUnderrun
			}
			child := b[off]
			off++
			if child == tagEnd {
				return off, nil
			}
			if child > tagLongArray {
				return 0, ErrInvalidNBT
			}
			nameLen, err := nbtStringLen(b[off:])
			if err != nil {
				return 0, err
			}
			off += nameLen
			n, err := nbtPayload(b[off:], child, depth+1)
			if err != nil {
				return 0, err
			}
			off += n
		}
	default:
		return 0, ErrInvalidNBT
	}
	if len(b) < fixed {
		return 0, ErrBufferUnderrun
	}
	return fixed, nil
}
