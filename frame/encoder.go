package frame

import (
	"bytes"

	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"

	"github.com/huoshan017/mcnet/pool"
	"github.com/huoshan017/mcnet/wire"
)

// Encoder builds outbound frames in buffers from the shared pool. It is not safe for
// concurrent use; callers serialize access with their send lock.
type Encoder struct {
	maxSize   int
	threshold int
	pool      *pool.BufferPool
	zbuf      bytes.Buffer
	zw        *zlib.Writer
}

// NewEncoder rejects frames whose length prefix would exceed maxSize. A non-positive
// maxSize selects DefaultMaxFrameSize.
func NewEncoder(maxSize int) *Encoder {
	if maxSize <= 0 {
		maxSize = DefaultMaxFrameSize
	}
	return &Encoder{maxSize: maxSize, threshold: CompressionDisabled, pool: pool.GetBuffPool()}
}

func (e *Encoder) checkSize(length int) error {
	if length > e.maxSize {
		return errors.Wrapf(ErrFrameTooLarge, "length %d, limit %d", length, e.maxSize)
	}
	return nil
}

// SetCompressionThreshold compresses bodies of at least threshold bytes on every
// following Encode. A negative value disables compression.
func (e *Encoder) SetCompressionThreshold(threshold int) {
	if threshold < 0 {
		threshold = CompressionDisabled
	}
	e.threshold = threshold
}

func (e *Encoder) CompressionThreshold() int {
	return e.threshold
}

// Encode returns the complete frame for id and payload. Give the buffer back with
// Release once written.
func (e *Encoder) Encode(id int32, payload []byte) (*[]byte, error) {
	bodyLen := wire.VarIntSize(id) + len(payload)
	if e.threshold < 0 {
		if err := e.checkSize(bodyLen); err != nil {
			return nil, err
		}
		return e.build(bodyLen, func(b []byte) []byte {
			b = wire.AppendVarInt(b, id)
			return append(b, payload...)
		}), nil
	}
	if bodyLen < e.threshold {
		if err := e.checkSize(1 + bodyLen); err != nil {
			return nil, err
		}
		return e.build(1+bodyLen, func(b []byte) []byte {
			b = append(b, 0)
			b = wire.AppendVarInt(b, id)
			return append(b, payload...)
		}), nil
	}

	e.zbuf.Reset()
	if e.zw == nil {
		e.zw = zlib.NewWriter(&e.zbuf)
	} else {
		e.zw.Reset(&e.zbuf)
	}
	var idb [wire.MaxVarIntLen]byte
	n := wire.PutVarInt(idb[:], id)
	if _, err := e.zw.Write(idb[:n]); err != nil {
		return nil, err
	}
	if _, err := e.zw.Write(payload); err != nil {
		return nil, err
	}
	if err := e.zw.Close(); err != nil {
		return nil, err
	}
	compressed := e.zbuf.Bytes()
	inner := wire.VarIntSize(int32(bodyLen)) + len(compressed)
	if err := e.checkSize(inner); err != nil {
		return nil, err
	}
	return e.build(inner, func(b []byte) []byte {
		b = wire.AppendVarInt(b, int32(bodyLen))
		return append(b, compressed...)
	}), nil
}

func (e *Encoder) build(bodyLen int, fill func([]byte) []byte) *[]byte {
	total := wire.VarIntSize(int32(bodyLen)) + bodyLen
	bufp := e.pool.Alloc(int32(total))
	b := wire.AppendVarInt((*bufp)[:0], int32(bodyLen))
	*bufp = fill(b)
	return bufp
}

// Release returns a buffer produced by Encode to the pool.
func (e *Encoder) Release(b *[]byte) {
	e.pool.Free(b)
}
