//go:build unix

package control

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// GetControl returns a net.Dialer Control func, or nil when there is nothing to set.
func GetControl(options CtrlOptions) func(network, address string, c syscall.RawConn) error {
	if options.empty() {
		return nil
	}
	return func(network, address string, c syscall.RawConn) (err error) {
		e := c.Control(func(fd uintptr) {
			if options.ReuseAddr {
				if err = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, boolInt(options.ReuseAddr)); err != nil {
					return
				}
			}
			if options.RecvBuffSize > 0 {
				if err = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, options.RecvBuffSize); err != nil {
					return
				}
			}
			if options.SendBuffSize > 0 {
				err = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_SNDBUF, options.SendBuffSize)
			}
		})
		if e != nil {
			return e
		}
		return
	}
}
