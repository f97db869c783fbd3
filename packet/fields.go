package packet

import (
	"github.com/google/uuid"

	"github.com/huoshan017/mcnet/wire"
)

// fields wraps a wire.Reader and keeps the first error, so decoders read a whole
// layout and check once.
type fields struct {
	r   *wire.Reader
	err error
}

func newFields(r *wire.Reader) *fields {
	return &fields{r: r}
}

func (f *fields) fail(err error) {
	if f.err == nil {
		f.err = err
	}
}

// check records ErrOutOfRange unless ok.
func (f *fields) check(ok bool) {
	if !ok {
		f.fail(ErrOutOfRange)
	}
}

func (f *fields) byte() int8 {
	if f.err != nil {
		return 0
	}
	v, err := f.r.ReadSignedByte()
	f.err = err
	return v
}

func (f *fields) ubyte() uint8 {
	if f.err != nil {
		return 0
	}
	v, err := f.r.ReadUnsignedByte()
	f.err = err
	return v
}

func (f *fields) bool() bool {
	if f.err != nil {
		return false
	}
	v, err := f.r.ReadBool()
	f.err = err
	return v
}

func (f *fields) short() int16 {
	if f.err != nil {
		return 0
	}
	v, err := f.r.ReadShort()
	f.err = err
	return v
}

func (f *fields) ushort() uint16 {
	if f.err != nil {
		return 0
	}
	v, err := f.r.ReadUnsignedShort()
	f.err = err
	return v
}

func (f *fields) int() int32 {
	if f.err != nil {
		return 0
	}
	v, err := f.r.ReadInt()
	f.err = err
	return v
}

func (f *fields) long() int64 {
	if f.err != nil {
		return 0
	}
	v, err := f.r.ReadLong()
	f.err = err
	return v
}

func (f *fields) float() float32 {
	if f.err != nil {
		return 0
	}
	v, err := f.r.ReadFloat()
	f.err = err
	return v
}

func (f *fields) double() float64 {
	if f.err != nil {
		return 0
	}
	v, err := f.r.ReadDouble()
	f.err = err
	return v
}

func (f *fields) varInt() int32 {
	if f.err != nil {
		return 0
	}
	v, err := f.r.ReadVarInt()
	f.err = err
	return v
}

func (f *fields) string(maxLen int) string {
	if f.err != nil {
		return ""
	}
	v, err := f.r.ReadString(maxLen)
	f.err = err
	return v
}

func (f *fields) identifier() string {
	return f.string(wire.MaxStringLen)
}

func (f *fields) chat() string {
	return f.string(wire.MaxChatLen)
}

func (f *fields) prefixed(max int) []byte {
	if f.err != nil {
		return nil
	}
	v, err := f.r.ReadPrefixedBytes(max)
	f.err = err
	return v
}

func (f *fields) rest() []byte {
	if f.err != nil {
		return nil
	}
	return f.r.ReadRest()
}

func (f *fields) uuid() uuid.UUID {
	if f.err != nil {
		return uuid.Nil
	}
	v, err := f.r.ReadUUID()
	f.err = err
	return v
}

func (f *fields) position() wire.Position {
	if f.err != nil {
		return wire.Position{}
	}
	v, err := f.r.ReadPosition()
	f.err = err
	return v
}

func (f *fields) angle() wire.Angle {
	if f.err != nil {
		return 0
	}
	v, err := f.r.ReadAngle()
	f.err = err
	return v
}

func (f *fields) entityPosition() wire.EntityPosition {
	if f.err != nil {
		return wire.EntityPosition{}
	}
	v, err := f.r.ReadEntityPosition()
	f.err = err
	return v
}

func (f *fields) entityRotation() wire.EntityRotation {
	if f.err != nil {
		return wire.EntityRotation{}
	}
	v, err := f.r.ReadEntityRotation()
	f.err = err
	return v
}

func (f *fields) nbt() []byte {
	if f.err != nil {
		return nil
	}
	v, err := f.r.ReadNBT()
	f.err = err
	return v
}

// count reads a varint array length and bounds it by the bytes left, given that each
// element takes at least one byte.
func (f *fields) count() int {
	n := f.varInt()
	if f.err != nil {
		return 0
	}
	if n < 0 {
		f.fail(wire.ErrNegativeLength)
		return 0
	}
	if int(n) > f.r.Remaining() {
		f.fail(wire.ErrBufferUnderrun)
		return 0
	}
	return int(n)
}

// firstErr returns the first error from a run of string writes.
func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
