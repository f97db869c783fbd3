package common

import (
	"bytes"
	"errors"
	"io"
	"net"
	"sync/atomic"
	"testing"
	"time"
)

func TestConnSendOrder(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	var released int32
	c := NewConn(client, NewOptions(), func(*[]byte) { atomic.AddInt32(&released, 1) })
	c.Run()
	defer c.Close()

	go func() {
		for i := byte(0); i < 10; i++ {
			b := []byte{i, i}
			if err := c.Send(&b, nil); err != nil {
				t.Errorf("send %d: %v", i, err)
			}
		}
	}()

	got := make([]byte, 20)
	server.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, err := io.ReadFull(server, got); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		if got[2*i] != byte(i) || got[2*i+1] != byte(i) {
			t.Fatalf("bytes out of order: %v", got)
		}
	}
	deadline := time.Now().Add(time.Second)
	for atomic.LoadInt32(&released) != 10 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if n := atomic.LoadInt32(&released); n != 10 {
		t.Fatalf("released %d buffers, want 10", n)
	}
}

func TestConnSendDone(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	c := NewConn(client, NewOptions(), nil)
	c.Run()
	defer c.Close()

	go io.Copy(io.Discard, server)
	done := make(chan error, 1)
	b := []byte("hello")
	if err := c.Send(&b, done); err != nil {
		t.Fatal(err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("flush: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("done never signalled")
	}
}

func TestConnWriteFailure(t *testing.T) {
	client, server := net.Pipe()
	server.Close()
	c := NewConn(client, NewOptions(), nil)
	c.Run()
	defer c.Close()

	done := make(chan error, 1)
	b := []byte("x")
	if err := c.Send(&b, done); err != nil {
		t.Fatal(err)
	}
	if err := <-done; err == nil {
		t.Fatal("write to closed pipe succeeded")
	}
	if c.WriteErr() == nil {
		t.Fatal("write error not recorded")
	}
	if err := c.Send(&b, nil); err == nil {
		t.Fatal("send after write failure succeeded")
	}
}

func TestConnReadTimeout(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	opts := NewOptions()
	opts.SetReadTimeout(20 * time.Millisecond)
	c := NewConn(client, opts, nil)
	defer c.Close()

	_, err := c.Read(make([]byte, 1))
	if !errors.Is(ClassifyNetError(err), ErrTimeout) {
		t.Fatalf("got %v, want a timeout", err)
	}

	go server.Write([]byte("ab"))
	c.options.SetReadTimeout(time.Second)
	buf := make([]byte, 2)
	if _, err := io.ReadFull(c, buf); err != nil || !bytes.Equal(buf, []byte("ab")) {
		t.Fatalf("read %q, %v", buf, err)
	}
}

func TestConnCloseDropsQueue(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	c := NewConn(client, NewOptions(), nil)
	c.Close()
	b := []byte("x")
	if err := c.Send(&b, nil); !errors.Is(err, ErrConnClosed) {
		t.Fatalf("got %v, want ErrConnClosed", err)
	}
	if !c.IsClosed() {
		t.Fatal("IsClosed false after Close")
	}
}
