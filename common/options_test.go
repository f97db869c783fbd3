package common

import (
	"testing"
	"time"

	"github.com/huoshan017/mcnet/frame"
	"github.com/huoshan017/mcnet/packet"
)

type countObserver struct{ n int }

func (o *countObserver) ObserveFrame(packet.Direction, packet.State, frame.Frame) { o.n++ }

func TestOptionsDefaults(t *testing.T) {
	o := NewOptions()
	if o.GetVersion() != packet.DefaultVersion || o.GetMaxFrameSize() != frame.DefaultMaxFrameSize {
		t.Fatalf("defaults = %+v", o)
	}
	if !o.IsAutoKeepAlive() || o.IsStrict() || o.IsReuseAddr() || !o.GetNodelay() {
		t.Fatalf("flags = %+v", o)
	}
	if o.GetReadTimeout() != DefaultReadTimeout || o.GetConnectTimeout() != DefaultConnectTimeout {
		t.Fatalf("timeouts = %+v", o)
	}
}

func TestOptionsApply(t *testing.T) {
	obs := &countObserver{}
	o := NewOptions()
	for _, opt := range []Option{
		WithVersion(packet.V1_16_5),
		WithStrict(true),
		WithReuseAddr(true),
		WithReadTimeout(time.Second),
		WithFrameObserver(obs),
		WithFrameObserver(nil),
		WithEventHandler(func(Event) {}),
		WithEventHandler(nil),
	} {
		opt(o)
	}
	if o.GetVersion() != packet.V1_16_5 || !o.IsStrict() || !o.IsReuseAddr() || o.GetReadTimeout() != time.Second {
		t.Fatalf("options = %+v", o)
	}
	if len(o.GetFrameObservers()) != 1 || len(o.GetEventHandlers()) != 1 {
		t.Fatalf("observers %d, handlers %d", len(o.GetFrameObservers()), len(o.GetEventHandlers()))
	}
	o.GetFrameObservers()[0].ObserveFrame(packet.Clientbound, packet.StatePlay, frame.Frame{})
	if obs.n != 1 {
		t.Fatalf("observer not called")
	}
}
