// Package control applies socket options to dialed connections.
package control

// CtrlOptions are applied to the socket before connect. Zero values leave the system
// default in place.
type CtrlOptions struct {
	RecvBuffSize int
	SendBuffSize int
	ReuseAddr    bool
}

func (o CtrlOptions) empty() bool {
	return o.RecvBuffSize <= 0 && o.SendBuffSize <= 0 && !o.ReuseAddr
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
