package control

import (
	"syscall"

	"golang.org/x/sys/windows"
)

func GetControl(options CtrlOptions) func(network, address string, c syscall.RawConn) error {
	if options.empty() {
		return nil
	}
	return func(network, address string, c syscall.RawConn) (err error) {
		e := c.Control(func(fd uintptr) {
			h := windows.Handle(fd)
			if options.ReuseAddr {
				if err = windows.SetsockoptInt(h, windows.SOL_SOCKET, windows.SO_REUSEADDR, boolInt(options.ReuseAddr)); err != nil {
					return
				}
			}
			if options.RecvBuffSize > 0 {
				if err = windows.SetsockoptInt(h, windows.SOL_SOCKET, windows.SO_RCVBUF, options.RecvBuffSize); err != nil {
					return
				}
			}
			if options.SendBuffSize > 0 {
				err = windows.SetsockoptInt(h, windows.SOL_SOCKET, windows.SO_SNDBUF, options.SendBuffSize)
			}
		})
		if e != nil {
			return e
		}
		return
	}
}
