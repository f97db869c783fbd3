package capture

import (
	"bufio"
	"io"
	"os"
	"sync"
	"time"

	"github.com/golang/snappy"
	"github.com/pkg/errors"

	"github.com/huoshan017/mcnet/frame"
	"github.com/huoshan017/mcnet/log"
	"github.com/huoshan017/mcnet/packet"
	"github.com/huoshan017/mcnet/wire"
)

// File layout: magic, varint codec name length, codec name, varint protocol version,
// then records of varint length followed by a snappy block of the encoded Record.
const magic = "MCNETCAP"

// maxRecordSize bounds one compressed record.
const maxRecordSize = 4 << 20

// Recorder is a common.FrameObserver that appends every frame to a capture stream.
type Recorder struct {
	mu     sync.Mutex
	w      *bufio.Writer
	closer io.Closer
	codec  Codec
	now    func() time.Time
	err    error
	count  int
	bytes  int64
}

// NewRecorder writes the capture header to w.
func NewRecorder(w io.Writer, codec Codec, version packet.Version) (*Recorder, error) {
	if codec == nil {
		codec = MsgpackCodec{}
	}
	r := &Recorder{w: bufio.NewWriter(w), codec: codec, now: time.Now}
	if c, ok := w.(io.Closer); ok {
		r.closer = c
	}
	hdr := append([]byte(magic), wire.AppendVarInt(nil, int32(len(codec.Name())))...)
	hdr = append(hdr, codec.Name()...)
	hdr = wire.AppendVarInt(hdr, int32(version))
	if _, err := r.w.Write(hdr); err != nil {
		return nil, errors.Wrap(err, "mcnet: write capture header")
	}
	return r, nil
}

// Create opens path for writing and starts a capture in it.
func Create(path string, codec Codec, version packet.Version) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	r, err := NewRecorder(f, codec, version)
	if err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

func (r *Recorder) ObserveFrame(dir packet.Direction, state packet.State, f frame.Frame) {
	rec := Record{
		Time:      r.now().UnixNano(),
		Direction: int32(dir),
		State:     int32(state),
		ID:        f.ID,
		Payload:   f.Payload,
	}
	if err := r.Write(&rec); err != nil {
		log.Debugf("mcnet: capture: %v", err)
	}
}

// Write appends rec. After the first failure every call returns that error.
func (r *Recorder) Write(rec *Record) error {
	data, err := r.codec.Encode(rec)
	if err != nil {
		return errors.Wrapf(err, "encode record 0x%02x", rec.ID)
	}
	block := snappy.Encode(nil, data)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	var lenBuf [wire.MaxVarIntLen]byte
	n := wire.PutVarInt(lenBuf[:], int32(len(block)))
	if _, err = r.w.Write(lenBuf[:n]); err == nil {
		_, err = r.w.Write(block)
	}
	if err != nil {
		r.err = errors.Wrap(err, "mcnet: write capture")
		log.Warnf("%v", r.err)
		return r.err
	}
	r.count++
	r.bytes += int64(n + len(block))
	return nil
}

// Stats returns the number of records and bytes written so far.
func (r *Recorder) Stats() (records int, bytes int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count, r.bytes
}

func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	return r.w.Flush()
}

// Close flushes the stream and closes the underlying writer if it is a Closer.
func (r *Recorder) Close() error {
	err := r.Flush()
	if r.closer != nil {
		if cerr := r.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
