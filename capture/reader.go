package capture

import (
	"bufio"
	"io"
	"os"

	"github.com/golang/snappy"
	"github.com/pkg/errors"

	"github.com/huoshan017/mcnet/packet"
	"github.com/huoshan017/mcnet/wire"
)

var ErrBadCapture = errors.New("mcnet: not a capture file")

// Reader replays a capture written by Recorder.
type Reader struct {
	r       *bufio.Reader
	closer  io.Closer
	codec   Codec
	version packet.Version
	block   []byte
}

func NewReader(src io.Reader) (*Reader, error) {
	r := &Reader{r: bufio.NewReader(src)}
	if c, ok := src.(io.Closer); ok {
		r.closer = c
	}
	head := make([]byte, len(magic))
	if _, err := io.ReadFull(r.r, head); err != nil || string(head) != magic {
		return nil, ErrBadCapture
	}
	n, err := wire.ReadVarIntFrom(r.r)
	if err != nil || n < 0 || n > 64 {
		return nil, ErrBadCapture
	}
	name := make([]byte, n)
	if _, err = io.ReadFull(r.r, name); err != nil {
		return nil, ErrBadCapture
	}
	if r.codec, err = CodecByName(string(name)); err != nil {
		return nil, err
	}
	v, err := wire.ReadVarIntFrom(r.r)
	if err != nil {
		return nil, ErrBadCapture
	}
	r.version = packet.Version(v)
	return r, nil
}

// Open opens a capture file.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

// Version is the protocol version the capture was taken with.
func (r *Reader) Version() packet.Version {
	return r.version
}

func (r *Reader) Codec() Codec {
	return r.codec
}

// Next returns the next record, or io.EOF after the last one.
func (r *Reader) Next() (*Record, error) {
	n, err := wire.ReadVarIntFrom(r.r)
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, errors.Wrap(ErrBadCapture, err.Error())
	}
	if n <= 0 || n > maxRecordSize {
		return nil, errors.Wrapf(ErrBadCapture, "record length %d", n)
	}
	if cap(r.block) < int(n) {
		r.block = make([]byte, n)
	}
	r.block = r.block[:n]
	if _, err = io.ReadFull(r.r, r.block); err != nil {
		return nil, errors.Wrap(ErrBadCapture, "truncated record")
	}
	data, err := snappy.Decode(nil, r.block)
	if err != nil {
		return nil, errors.Wrap(ErrBadCapture, err.Error())
	}
	rec := &Record{}
	if err = r.codec.Decode(data, rec); err != nil {
		return nil, errors.Wrap(err, "decode record")
	}
	return rec, nil
}

func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
