package client

import (
	"context"
	"net"
	"strconv"

	"github.com/huoshan017/mcnet/common"
	"github.com/huoshan017/mcnet/control"
)

// Connector dials the transport for a session.
type Connector struct {
	options *common.Options
	dialer  net.Dialer
}

func NewConnector(options *common.Options) *Connector {
	c := &Connector{options: options}
	c.dialer.Timeout = options.GetConnectTimeout()
	c.dialer.Control = control.GetControl(control.CtrlOptions{
		RecvBuffSize: options.GetSockRecvBuffSize(),
		SendBuffSize: options.GetSockSendBuffSize(),
		ReuseAddr:    options.IsReuseAddr(),
	})
	return c
}

// Address joins host and port the way net.Dial expects.
func Address(host string, port uint16) string {
	return net.JoinHostPort(host, strconv.Itoa(int(port)))
}

// Connect dials addr. Failures come back as *common.TransportError.
func (c *Connector) Connect(ctx context.Context, addr string) (net.Conn, error) {
	conn, err := c.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, common.NewTransportError("dial", err)
	}
	return conn, nil
}
