package wire

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Writer encodes protocol primitives into a growing buffer. Only operations with a
// declared limit can fail.
type Writer struct {
	buf []byte
}

func NewWriter() *Writer {
	return &Writer{}
}

// NewWriterSize preallocates capacity for size bytes.
func NewWriterSize(size int) *Writer {
	return &Writer{buf: make([]byte, 0, size)}
}

func (w *Writer) Bytes() []byte {
	return w.buf
}

func (w *Writer) Len() int {
	return len(w.buf)
}

func (w *Writer) Reset() {
	w.buf = w.buf[:0]
}

func (w *Writer) WriteByte(b byte) error {
	w.buf = append(w.buf, b)
	return nil
}

func (w *Writer) WriteSignedByte(v int8) {
	w.buf = append(w.buf, byte(v))
}

func (w *Writer) WriteUnsignedByte(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

func (w *Writer) WriteShort(v int16) {
	w.buf = binary.BigEndian.AppendUint16(w.buf, uint16(v))
}

func (w *Writer) WriteUnsignedShort(v uint16) {
	w.buf = binary.BigEndian.AppendUint16(w.buf, v)
}

func (w *Writer) WriteInt(v int32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(v))
}

func (w *Writer) WriteLong(v int64) {
	w.buf = binary.BigEndian.AppendUint64(w.buf, uint64(v))
}

func (w *Writer) WriteFloat(v float32) {
	w.WriteInt(int32(math.Float32bits(v)))
}

func (w *Writer) WriteDouble(v float64) {
	w.WriteLong(int64(math.Float64bits(v)))
}

func (w *Writer) WriteVarInt(v int32) {
	w.buf = AppendVarInt(w.buf, v)
}

func (w *Writer) WriteVarLong(v int64) {
	w.buf = AppendVarLong(w.buf, v)
}

// WriteString fails with ErrStringTooLong when s has more than maxLen characters.
func (w *Writer) WriteString(s string, maxLen int) error {
	if utf8.RuneCountInString(s) > maxLen {
		return ErrStringTooLong
	}
	if !utf8.ValidString(s) {
		return ErrInvalidString
	}
	w.WriteVarInt(int32(len(s)))
	w.buf = append(w.buf, s...)
	return nil
}

func (w *Writer) WriteIdentifier(s string) error {
	return w.WriteString(s, MaxStringLen)
}

// WriteByteArray appends b without a length prefix.
func (w *Writer) WriteByteArray(b []byte) {
	w.buf = append(w.buf, b...)
}

// WritePrefixedBytes appends a varint length and then b.
func (w *Writer) WritePrefixedBytes(b []byte, max int) error {
	if len(b) > max {
		return ErrStringTooLong
	}
	w.WriteVarInt(int32(len(b)))
	w.buf = append(w.buf, b...)
	return nil
}

func (w *Writer) WriteUUID(id uuid.UUID) {
	w.buf = append(w.buf, id[:]...)
}

func (w *Writer) WritePosition(p Position) {
	w.WriteLong(p.Pack())
}

func (w *Writer) WriteAngle(a Angle) {
	w.buf = append(w.buf, byte(a))
}

func (w *Writer) WriteEntityPosition(p EntityPosition) {
	w.WriteDouble(p.X)
	w.WriteDouble(p.Y)
	w.WriteDouble(p.Z)
}

func (w *Writer) WriteEntityRotation(r EntityRotation) {
	w.WriteAngle(r.Yaw)
	w.WriteAngle(r.Pitch)
}
