// Package client implements a protocol connection: dialing, the handshake, the state
// machine and event dispatch.
package client

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/huoshan017/mcnet/common"
	"github.com/huoshan017/mcnet/log"
	"github.com/huoshan017/mcnet/packet"
)

// Connection is a client connection to one server. Each Connect or Restart starts a
// fresh session with its own transport and Idle state machine; handlers live on the
// Connection and outlast sessions.
type Connection struct {
	options    *common.Options
	codec      *packet.Codec
	dispatcher *common.Dispatcher
	connector  *Connector

	mu   sync.Mutex
	host string
	port uint16
	sess *session
}

func NewConnection(options ...common.Option) (*Connection, error) {
	opts := common.NewOptions()
	for _, option := range options {
		option(opts)
	}
	codec, err := packet.NewCodec(opts.GetVersion())
	if err != nil {
		return nil, err
	}
	c := &Connection{
		options:    opts,
		codec:      codec,
		dispatcher: common.NewDispatcher(),
		connector:  NewConnector(opts),
	}
	if opts.IsAutoKeepAlive() {
		c.dispatcher.RegisterHandler(c.answerKeepAlive)
	}
	for _, h := range opts.GetEventHandlers() {
		c.dispatcher.RegisterHandler(h)
	}
	return c, nil
}

func (c *Connection) answerKeepAlive(ev common.Event) {
	pr, ok := ev.(common.PacketReceived)
	if !ok {
		return
	}
	if ka, ok := pr.Packet.(packet.ClientboundKeepAlive); ok {
		if err := c.SendPacket(packet.ServerboundKeepAlive{ID: ka.ID}); err != nil {
			log.Debugf("mcnet: keep-alive reply failed: %v", err)
		}
	}
}

func (c *Connection) Options() *common.Options {
	return c.options
}

func (c *Connection) Codec() *packet.Codec {
	return c.codec
}

// Addr returns the target set by Connect.
func (c *Connection) Addr() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.host == "" {
		return ""
	}
	return Address(c.host, c.port)
}

// State returns the state of the current session, or Idle before the first Connect.
func (c *Connection) State() packet.State {
	if s := c.current(); s != nil {
		return s.sm.State()
	}
	return packet.StateIdle
}

func (c *Connection) current() *session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess
}

// Connect opens the transport to host:port in the background. The outcome is reported
// as a ConnectionReady or ConnectionFailed event. A session already running is closed
// first, silently.
func (c *Connection) Connect(host string, port uint16) error {
	if host == "" {
		return errors.Wrap(common.ErrNoAddress, "empty host")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.host, c.port = host, port
	c.startLocked()
	return nil
}

// Restart tears down the current session and reconnects to the last address with a
// fresh Idle state machine. One-time handlers are dropped; persistent ones stay.
func (c *Connection) Restart() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.host == "" {
		return common.ErrNoAddress
	}
	c.dispatcher.ClearOneTime()
	c.startLocked()
	return nil
}

func (c *Connection) startLocked() {
	if c.sess != nil {
		c.sess.close()
	}
	c.sess = newSession(c, c.host, c.port)
	go c.sess.run()
}

// Close ends the session immediately. No event dispatch starts after Close returns.
func (c *Connection) Close() {
	if s := c.current(); s != nil {
		s.close()
	}
}

// Done is closed when the current session's goroutine has exited.
func (c *Connection) Done() <-chan struct{} {
	if s := c.current(); s != nil {
		return s.done
	}
	ch := make(chan struct{})
	close(ch)
	return ch
}

// Handshake sends the Handshake packet and moves the session to next, which must be
// StateStatus or StateLogin. It returns once the frame has been flushed to the socket.
func (c *Connection) Handshake(ctx context.Context, next packet.State) error {
	s := c.current()
	if s == nil {
		return common.ErrNotConnected
	}
	return s.handshake(ctx, next)
}

// SendPacket encodes p with the table of the current state and queues it. Write
// failures surface asynchronously as a ConnectionFailed event.
func (c *Connection) SendPacket(p packet.Packet) error {
	s := c.current()
	if s == nil {
		return common.ErrNotConnected
	}
	return s.send(p)
}

func (c *Connection) RegisterHandler(h common.Handler) common.HandlerID {
	return c.dispatcher.RegisterHandler(h)
}

func (c *Connection) RegisterOneTimeEventHandler(h common.Handler, name string) common.HandlerID {
	return c.dispatcher.RegisterOneTimeEventHandler(h, name)
}

func (c *Connection) Unregister(id common.HandlerID) bool {
	return c.dispatcher.Unregister(id)
}

// Await waits for the next event named name.
func (c *Connection) Await(ctx context.Context, name string) (common.Event, error) {
	return c.dispatcher.Await(ctx, name)
}
