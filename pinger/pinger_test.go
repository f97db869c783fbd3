package pinger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/huoshan017/mcnet/common"
	"github.com/huoshan017/mcnet/internal/mctest"
	"github.com/huoshan017/mcnet/packet"
)

const status754 = `{"version":{"name":"1.16.5","protocol":754},"players":{"max":20,"online":3},` +
	`"description":{"text":"A ","extra":[{"text":"Minecraft"}," Server"]},"favicon":"data:image/png;base64,AAAA"}`

type pingResult struct {
	info PingInfo
	err  error
}

func startPing(p *Pinger) chan pingResult {
	ch := make(chan pingResult, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		info, err := p.Ping(ctx)
		ch <- pingResult{info, err}
	}()
	return ch
}

// serveStatus answers one status ping the way a vanilla server does.
func serveStatus(t *testing.T, srv *mctest.Server, status string, pong bool) {
	t.Helper()
	peer := srv.Accept(t)
	hs, ok := peer.Expect(t).(packet.Handshake)
	if !ok || hs.NextState != packet.StateStatus {
		t.Fatalf("handshake = %#v", hs)
	}
	if _, ok := peer.Expect(t).(packet.StatusRequest); !ok {
		t.Fatalf("want StatusRequest")
	}
	peer.Send(t, packet.StatusResponse{JSON: status})
	ping, ok := peer.Expect(t).(packet.Ping)
	if !ok {
		t.Fatalf("want Ping")
	}
	if pong {
		peer.Send(t, packet.Pong{Payload: ping.Payload})
	}
	peer.Close()
}

func TestPingScenario(t *testing.T) {
	srv := mctest.NewServer(t, packet.V1_16_5)
	p, err := New(srv.Host(), srv.Port(), common.WithVersion(packet.V1_16_5))
	if err != nil {
		t.Fatal(err)
	}
	want := PingInfo{
		VersionName:     "1.16.5",
		ProtocolVersion: 754,
		MaxPlayers:      20,
		NumPlayers:      3,
		Description:     "A Minecraft Server",
		Favicon:         "data:image/png;base64,AAAA",
	}

	// the second round goes through Restart on the same connection
	for round := 0; round < 2; round++ {
		res := startPing(p)
		serveStatus(t, srv, status754, true)
		r := <-res
		if r.err != nil {
			t.Fatalf("round %d: %v", round, r.err)
		}
		if diff := cmp.Diff(want, r.info, cmpopts.IgnoreFields(PingInfo{}, "Latency")); diff != "" {
			t.Fatalf("round %d (-want +got):\n%s", round, diff)
		}
		if r.info.Latency <= 0 {
			t.Fatalf("round %d: latency %v", round, r.info.Latency)
		}
	}
}

func TestPingWithoutPong(t *testing.T) {
	srv := mctest.NewServer(t, packet.DefaultVersion)
	p, err := New(srv.Host(), srv.Port())
	if err != nil {
		t.Fatal(err)
	}
	res := startPing(p)
	serveStatus(t, srv, `{"version":{"name":"1.16.1","protocol":736},"players":{"max":1,"online":0},"description":"hi"}`, false)
	r := <-res
	if r.err != nil {
		t.Fatal(r.err)
	}
	if r.info.Description != "hi" || r.info.Latency != 0 {
		t.Fatalf("info = %+v", r.info)
	}
}

func TestPingServerGone(t *testing.T) {
	srv := mctest.NewServer(t, packet.DefaultVersion)
	p, err := New(srv.Host(), srv.Port())
	if err != nil {
		t.Fatal(err)
	}
	res := startPing(p)
	peer := srv.Accept(t)
	peer.Expect(t)
	peer.Expect(t)
	peer.Close()
	if r := <-res; !errors.Is(r.err, ErrClosedEarly) {
		t.Fatalf("err = %v, want ErrClosedEarly", r.err)
	}
}

func TestParseStatus(t *testing.T) {
	info, err := ParseStatus(`{"version":{"name":"Paper 1.16.5","protocol":754},"players":{"max":100,"online":7,"sample":[]},` +
		`"description":[{"text":"x"},"y"],"modinfo":{"type":"FML","modList":[]}}`)
	if err != nil {
		t.Fatal(err)
	}
	want := PingInfo{VersionName: "Paper 1.16.5", ProtocolVersion: 754, MaxPlayers: 100, NumPlayers: 7, Description: "xy", ModInfo: "FML"}
	if diff := cmp.Diff(want, info); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if _, err := ParseStatus("not json"); err == nil {
		t.Fatalf("bad json accepted")
	}
}

func TestSplitAddr(t *testing.T) {
	cases := []struct {
		in   string
		host string
		port uint16
		ok   bool
	}{
		{"mc.example.com", "mc.example.com", DefaultPort, true},
		{"127.0.0.1:25570", "127.0.0.1", 25570, true},
		{"[::1]:1", "::1", 1, true},
		{":25565", "", 0, false},
		{"host:99999", "", 0, false},
	}
	for _, tc := range cases {
		host, port, err := SplitAddr(tc.in)
		if (err == nil) != tc.ok || host != tc.host || port != tc.port {
			t.Errorf("SplitAddr(%q) = %q, %d, %v", tc.in, host, port, err)
		}
	}
}
