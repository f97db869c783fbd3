package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/huoshan017/mcnet/common"
	"github.com/huoshan017/mcnet/frame"
	"github.com/huoshan017/mcnet/packet"
)

func counter(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue next
				}
			}
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	if err != nil {
		t.Fatal(err)
	}

	c.ObserveFrame(packet.Serverbound, packet.StateHandshaking, frame.Frame{ID: 0, Payload: make([]byte, 9)})
	c.ObserveFrame(packet.Clientbound, packet.StatePlay, frame.Frame{ID: 0x20, Payload: make([]byte, 8)})
	c.ObserveFrame(packet.Clientbound, packet.StatePlay, frame.Frame{ID: 0x20, Payload: make([]byte, 8)})
	c.HandleEvent(common.ConnectionReady{Addr: "x"})
	c.HandleEvent(common.PacketReceived{State: packet.StatePlay, ID: 0x20, Packet: packet.ClientboundKeepAlive{ID: 1}})
	c.HandleEvent(common.DecodeFailed{State: packet.StatePlay, ID: 0x7f, Err: errors.New("bad")})
	c.HandleEvent(common.ConnectionFailed{Err: errors.New("reset")})
	c.HandleEvent(common.Disconnected{Reason: "EOF"})

	checks := []struct {
		name   string
		labels map[string]string
		want   float64
	}{
		{"mcnet_frame_total", map[string]string{"direction": "clientbound"}, 2},
		{"mcnet_frame_total", map[string]string{"direction": "serverbound"}, 1},
		{"mcnet_frame_payload_bytes_total", map[string]string{"direction": "clientbound"}, 18},
		{"mcnet_packet_received_total", map[string]string{"name": "ClientboundKeepAlive"}, 1},
		{"mcnet_packet_decode_failures_total", map[string]string{"id": "0x7f"}, 1},
		{"mcnet_session_failures_total", nil, 1},
		{"mcnet_session_disconnects_total", nil, 1},
		{"mcnet_session_connected_total", nil, 1},
	}
	for _, tc := range checks {
		if got := counter(t, reg, tc.name, tc.labels); got != tc.want {
			t.Errorf("%s%v = %v, want %v", tc.name, tc.labels, got, tc.want)
		}
	}

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "mcnet_frame_total") {
		t.Fatalf("exposition missing frame counter:\n%s", body)
	}
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	c.ObserveFrame(packet.Clientbound, packet.StatePlay, frame.Frame{})
	c.HandleEvent(common.Disconnected{})
}

func TestDoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := New(reg); err != nil {
		t.Fatal(err)
	}
	if _, err := New(reg); err == nil {
		t.Fatalf("second registration accepted")
	}
}
