// Package pinger queries a server's status over the Status state.
package pinger

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/huoshan017/mcnet/client"
	"github.com/huoshan017/mcnet/common"
	"github.com/huoshan017/mcnet/log"
	"github.com/huoshan017/mcnet/packet"
)

// ErrClosedEarly is returned when the server ends the session before answering.
var ErrClosedEarly = errors.New("mcnet: server closed the connection before answering")

// Pinger pings one server. Each Ping reuses the same Connection, restarting it.
type Pinger struct {
	host string
	port uint16

	mu      sync.Mutex
	conn    *client.Connection
	started bool
}

func New(host string, port uint16, options ...common.Option) (*Pinger, error) {
	conn, err := client.NewConnection(options...)
	if err != nil {
		return nil, err
	}
	return &Pinger{host: host, port: port, conn: conn}, nil
}

func (p *Pinger) Addr() string {
	return client.Address(p.host, p.port)
}

// Ping connects, reads the status and measures the round trip of a Ping packet. A
// server that closes the connection after the status response yields a zero Latency.
func (p *Pinger) Ping(ctx context.Context) (PingInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	events := make(chan common.Event, 16)
	// registered before the session starts, so ConnectionReady cannot be missed
	id := p.conn.RegisterHandler(func(ev common.Event) {
		select {
		case events <- ev:
		default:
			log.Warnf("mcnet: ping %s dropped %s event", p.Addr(), ev.EventName())
		}
	})
	defer p.conn.Unregister(id)
	defer p.conn.Close()

	var err error
	if p.started {
		err = p.conn.Restart()
	} else {
		err = p.conn.Connect(p.host, p.port)
		p.started = true
	}
	if err != nil {
		return PingInfo{}, err
	}

	if err = waitReady(ctx, events); err != nil {
		return PingInfo{}, err
	}
	if err = p.conn.Handshake(ctx, packet.StateStatus); err != nil {
		return PingInfo{}, err
	}
	if err = p.conn.SendPacket(packet.StatusRequest{}); err != nil {
		return PingInfo{}, err
	}
	resp, err := waitPacket[packet.StatusResponse](ctx, events)
	if err != nil {
		return PingInfo{}, err
	}
	info, err := ParseStatus(resp.JSON)
	if err != nil {
		return PingInfo{}, err
	}

	sent := time.Now()
	if err = p.conn.SendPacket(packet.Ping{Payload: sent.UnixMilli()}); err != nil {
		return info, nil
	}
	pong, err := waitPacket[packet.Pong](ctx, events)
	switch {
	case err == nil:
		if pong.Payload != sent.UnixMilli() {
			log.Debugf("mcnet: %s answered ping %d with %d", p.Addr(), sent.UnixMilli(), pong.Payload)
		}
		info.Latency = time.Since(sent)
	case errors.Is(err, ErrClosedEarly):
	default:
		return info, err
	}
	return info, nil
}

func nextEvent(ctx context.Context, events <-chan common.Event) (common.Event, error) {
	select {
	case ev := <-events:
		return ev, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func terminal(ev common.Event) error {
	switch ev := ev.(type) {
	case common.ConnectionFailed:
		return ev.Err
	case common.Disconnected:
		return errors.Wrapf(ErrClosedEarly, "reason %s", ev.Reason)
	}
	return nil
}

func waitReady(ctx context.Context, events <-chan common.Event) error {
	for {
		ev, err := nextEvent(ctx, events)
		if err != nil {
			return err
		}
		if _, ok := ev.(common.ConnectionReady); ok {
			return nil
		}
		if err = terminal(ev); err != nil {
			return err
		}
	}
}

func waitPacket[T packet.Packet](ctx context.Context, events <-chan common.Event) (T, error) {
	var zero T
	for {
		ev, err := nextEvent(ctx, events)
		if err != nil {
			return zero, err
		}
		if pr, ok := ev.(common.PacketReceived); ok {
			if pk, ok := pr.Packet.(T); ok {
				return pk, nil
			}
			continue
		}
		if err = terminal(ev); err != nil {
			return zero, err
		}
	}
}
