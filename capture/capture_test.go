package capture

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/huoshan017/mcnet/frame"
	"github.com/huoshan017/mcnet/packet"
)

func TestRoundTripCodecs(t *testing.T) {
	codec, err := packet.NewCodec(packet.V1_16_5)
	if err != nil {
		t.Fatal(err)
	}
	id, payload, err := codec.Encode(packet.StatePlay, packet.Clientbound, packet.ClientboundKeepAlive{ID: 9})
	if err != nil {
		t.Fatal(err)
	}

	for _, c := range []Codec{MsgpackCodec{}, JSONCodec{}, ProtobufCodec{}} {
		t.Run(c.Name(), func(t *testing.T) {
			var buf bytes.Buffer
			rec, err := NewRecorder(&buf, c, packet.V1_16_5)
			if err != nil {
				t.Fatal(err)
			}
			clock := time.Unix(1600000000, 0)
			rec.now = func() time.Time { clock = clock.Add(time.Millisecond); return clock }

			rec.ObserveFrame(packet.Serverbound, packet.StateHandshaking, frame.Frame{ID: 0, Payload: []byte{1, 2}})
			rec.ObserveFrame(packet.Clientbound, packet.StatePlay, frame.Frame{ID: id, Payload: payload})
			if err := rec.Flush(); err != nil {
				t.Fatal(err)
			}
			if n, size := rec.Stats(); n != 2 || size <= 0 {
				t.Fatalf("stats = %d, %d", n, size)
			}

			r, err := NewReader(&buf)
			if err != nil {
				t.Fatal(err)
			}
			if r.Version() != packet.V1_16_5 || r.Codec().Name() != c.Name() {
				t.Fatalf("header = %v %s", r.Version(), r.Codec().Name())
			}
			var got []*Record
			for {
				rc, err := r.Next()
				if err == io.EOF {
					break
				}
				if err != nil {
					t.Fatal(err)
				}
				got = append(got, rc)
			}
			want := []*Record{
				{Time: time.Unix(1600000000, int64(time.Millisecond)).UnixNano(), Direction: int32(packet.Serverbound), State: int32(packet.StateHandshaking), ID: 0, Payload: []byte{1, 2}},
				{Time: time.Unix(1600000000, int64(2*time.Millisecond)).UnixNano(), Direction: int32(packet.Clientbound), State: int32(packet.StatePlay), ID: id, Payload: payload},
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("(-want +got):\n%s", diff)
			}
			p, err := got[1].Decode(codec)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(packet.ClientboundKeepAlive{ID: 9}, p); diff != "" {
				t.Fatalf("decoded (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCaptureFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.mccap")
	rec, err := Create(path, nil, packet.V1_16_1)
	if err != nil {
		t.Fatal(err)
	}
	rec.ObserveFrame(packet.Clientbound, packet.StateStatus, frame.Frame{ID: 1, Payload: make([]byte, 8)})
	if err := rec.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if r.Codec().Name() != "msgpack" {
		t.Fatalf("default codec = %s", r.Codec().Name())
	}
	rc, err := r.Next()
	if err != nil || rc.ID != 1 || rc.PacketState() != packet.StateStatus || rc.Dir() != packet.Clientbound {
		t.Fatalf("record = %+v, %v", rc, err)
	}
	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("err = %v, want EOF", err)
	}
}

func TestBadCapture(t *testing.T) {
	if _, err := NewReader(bytes.NewReader([]byte("NOTACAPTURE"))); !errors.Is(err, ErrBadCapture) {
		t.Fatalf("err = %v", err)
	}

	var buf bytes.Buffer
	rec, err := NewRecorder(&buf, JSONCodec{}, packet.V1_16_1)
	if err != nil {
		t.Fatal(err)
	}
	rec.ObserveFrame(packet.Clientbound, packet.StateStatus, frame.Frame{ID: 1, Payload: []byte("xyz")})
	rec.Flush()
	truncated := buf.Bytes()[:buf.Len()-2]
	r, err := NewReader(bytes.NewReader(truncated))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Next(); !errors.Is(err, ErrBadCapture) {
		t.Fatalf("err = %v, want ErrBadCapture", err)
	}
}

func TestCodecByName(t *testing.T) {
	for _, name := range []string{"", "msgpack", "json", "protobuf"} {
		if _, err := CodecByName(name); err != nil {
			t.Errorf("CodecByName(%q): %v", name, err)
		}
	}
	if _, err := CodecByName("xml"); !errors.Is(err, ErrUnknownCodec) {
		t.Fatalf("err = %v", err)
	}
}
