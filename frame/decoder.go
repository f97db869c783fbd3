package frame

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"

	"github.com/huoshan017/mcnet/wire"
)

// Decoder reassembles frames from bytes pushed with Feed. It is not safe for
// concurrent use.
type Decoder struct {
	buf       []byte
	off       int
	maxSize   int
	threshold int
	inflate   bytes.Buffer
}

func NewDecoder(maxSize int) *Decoder {
	if maxSize <= 0 {
		maxSize = DefaultMaxFrameSize
	}
	return &Decoder{maxSize: maxSize, threshold: CompressionDisabled}
}

// SetCompressionThreshold switches the body format for frames decoded after the call.
// A negative threshold turns compression off.
func (d *Decoder) SetCompressionThreshold(threshold int) {
	if threshold < 0 {
		threshold = CompressionDisabled
	}
	d.threshold = threshold
}

func (d *Decoder) CompressionThreshold() int {
	return d.threshold
}

// Feed appends b to the pending input.
func (d *Decoder) Feed(b []byte) {
	if len(b) == 0 {
		return
	}
	if d.off > 0 && d.off == len(d.buf) {
		d.buf = d.buf[:0]
		d.off = 0
	} else if d.off > len(d.buf)/2 {
		n := copy(d.buf, d.buf[d.off:])
		d.buf = d.buf[:n]
		d.off = 0
	}
	d.buf = append(d.buf, b...)
}

// Buffered returns the number of bytes fed but not yet consumed.
func (d *Decoder) Buffered() int {
	return len(d.buf) - d.off
}

// Next returns the next complete frame. It returns wire.ErrBufferUnderrun, consuming
// nothing, until enough bytes have been fed.
func (d *Decoder) Next() (Frame, error) {
	pending := d.buf[d.off:]
	length, n, err := wire.DecodeVarInt(pending)
	if err != nil {
		if errors.Is(err, wire.ErrBufferUnderrun) {
			return Frame{}, err
		}
		return Frame{}, ErrMalformedLength
	}
	if length <= 0 {
		return Frame{}, ErrMalformedLength
	}
	if int(length) > d.maxSize {
		return Frame{}, errors.Wrapf(ErrFrameTooLarge, "length %d, limit %d", length, d.maxSize)
	}
	if len(pending) < n+int(length) {
		return Frame{}, wire.ErrBufferUnderrun
	}
	body := pending[n : n+int(length)]
	d.off += n + int(length)

	if d.threshold >= 0 {
		body, err = d.decompress(body)
		if err != nil {
			return Frame{}, err
		}
	}
	id, k, err := wire.DecodeVarInt(body)
	if err != nil {
		return Frame{}, ErrMalformedBody
	}
	payload := make([]byte, len(body)-k)
	copy(payload, body[k:])
	return Frame{ID: id, Payload: payload}, nil
}

// decompress unwraps `varint dataLength | zlib(body)`. A zero data length marks a body
// sent as is.
func (d *Decoder) decompress(body []byte) ([]byte, error) {
	dataLen, n, err := wire.DecodeVarInt(body)
	if err != nil {
		return nil, ErrBadCompression
	}
	if dataLen == 0 {
		return body[n:], nil
	}
	if dataLen < 0 || int(dataLen) > d.maxSize {
		return nil, errors.Wrapf(ErrFrameTooLarge, "inflated length %d", dataLen)
	}
	zr, err := zlib.NewReader(bytes.NewReader(body[n:]))
	if err != nil {
		return nil, errors.Wrap(ErrBadCompression, err.Error())
	}
	defer zr.Close()
	d.inflate.Reset()
	d.inflate.Grow(int(dataLen))
	if _, err = io.CopyN(&d.inflate, zr, int64(dataLen)); err != nil {
		return nil, errors.Wrap(ErrBadCompression, err.Error())
	}
	// the stream must end exactly at dataLength
	var one [1]byte
	if m, _ := zr.Read(one[:]); m != 0 {
		return nil, errors.Wrap(ErrBadCompression, "inflated body longer than declared")
	}
	return d.inflate.Bytes(), nil
}
