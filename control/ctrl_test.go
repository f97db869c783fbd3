//go:build unix

package control

import (
	"net"
	"testing"
)

func TestGetControlEmpty(t *testing.T) {
	if GetControl(CtrlOptions{}) != nil {
		t.Fatal("empty options should not install a control func")
	}
}

func TestGetControlDial(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	go func() {
		c, err := ln.Accept()
		if err == nil {
			c.Close()
		}
	}()

	d := net.Dialer{Control: GetControl(CtrlOptions{RecvBuffSize: 64 * 1024, SendBuffSize: 64 * 1024, ReuseAddr: true})}
	c, err := d.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial with socket options: %v", err)
	}
	c.Close()
}
