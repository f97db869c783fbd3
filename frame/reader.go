package frame

import (
	"io"

	"github.com/pkg/errors"

	"github.com/huoshan017/mcnet/wire"
)

const defaultReadBufferSize = 16 * 1024

// Reader pulls frames from a stream, reading more whenever the Decoder reports an
// incomplete frame.
type Reader struct {
	src io.Reader
	dec *Decoder
	buf []byte
	err error
}

func NewReader(src io.Reader, dec *Decoder, bufSize int) *Reader {
	if bufSize <= 0 {
		bufSize = defaultReadBufferSize
	}
	return &Reader{src: src, dec: dec, buf: make([]byte, bufSize)}
}

func (r *Reader) Decoder() *Decoder {
	return r.dec
}

// ReadFrame blocks until a full frame is buffered or the stream fails. A stream that
// ends inside a frame yields io.ErrUnexpectedEOF.
func (r *Reader) ReadFrame() (Frame, error) {
	for {
		f, err := r.dec.Next()
		if !errors.Is(err, wire.ErrBufferUnderrun) {
			return f, err
		}
		if r.err != nil {
			err := r.err
			r.err = nil
			if err == io.EOF && r.dec.Buffered() > 0 {
				return Frame{}, io.ErrUnexpectedEOF
			}
			return Frame{}, err
		}
		n, err := r.src.Read(r.buf)
		r.dec.Feed(r.buf[:n])
		r.err = err
	}
}
