// Package metrics exports connection counters to Prometheus.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/huoshan017/mcnet/common"
	"github.com/huoshan017/mcnet/frame"
	"github.com/huoshan017/mcnet/packet"
)

const namespace = "mcnet"

// Collector counts frames, bytes and session outcomes. Install it with
// common.WithFrameObserver and Connection.RegisterHandler(c.HandleEvent). A nil
// *Collector ignores everything.
type Collector struct {
	frames         *prometheus.CounterVec
	bytes          *prometheus.CounterVec
	packets        *prometheus.CounterVec
	decodeFailures *prometheus.CounterVec
	connFailures   prometheus.Counter
	disconnects    prometheus.Counter
	ready          prometheus.Counter
}

// New creates a collector and registers it with reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "frame",
			Name:      "total",
			Help:      "Frames sent and received.",
		}, []string{"direction", "state"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "frame",
			Name:      "payload_bytes_total",
			Help:      "Uncompressed frame bytes sent and received.",
		}, []string{"direction", "state"}),
		packets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "packet",
			Name:      "received_total",
			Help:      "Decoded clientbound packets by name.",
		}, []string{"state", "name"}),
		decodeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "packet",
			Name:      "decode_failures_total",
			Help:      "Clientbound frames that could not be decoded.",
		}, []string{"state", "id"}),
		connFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "failures_total",
			Help:      "Sessions ended by a transport, frame or protocol error.",
		}),
		disconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "disconnects_total",
			Help:      "Sessions ended by the server.",
		}),
		ready: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "connected_total",
			Help:      "Transports opened.",
		}),
	}
	for _, col := range []prometheus.Collector{c.frames, c.bytes, c.packets, c.decodeFailures, c.connFailures, c.disconnects, c.ready} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collector) ObserveFrame(dir packet.Direction, state packet.State, f frame.Frame) {
	if c == nil {
		return
	}
	c.frames.WithLabelValues(dir.String(), state.String()).Inc()
	c.bytes.WithLabelValues(dir.String(), state.String()).Add(float64(f.Size()))
}

func (c *Collector) HandleEvent(ev common.Event) {
	if c == nil {
		return
	}
	switch ev := ev.(type) {
	case common.PacketReceived:
		c.packets.WithLabelValues(ev.State.String(), ev.Packet.Name()).Inc()
	case common.DecodeFailed:
		c.decodeFailures.WithLabelValues(ev.State.String(), "0x"+strconv.FormatInt(int64(ev.ID), 16)).Inc()
	case common.ConnectionFailed:
		c.connFailures.Inc()
	case common.Disconnected:
		c.disconnects.Inc()
	case common.ConnectionReady:
		c.ready.Inc()
	}
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
