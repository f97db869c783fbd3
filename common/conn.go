package common

import (
	"bufio"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/huoshan017/mcnet/log"
)

type sendItem struct {
	data *[]byte
	done chan error // optional, receives the write result after flush
}

// Conn owns a socket for one session. Reads happen on the caller's goroutine; writes
// are serialized by writeLoop.
type Conn struct {
	conn     net.Conn
	options  *Options
	writer   *bufio.Writer
	sendCh   chan sendItem // 缓存发往网络的数据
	closeCh  chan struct{} // 关闭通道
	closed   int32         // 是否关闭
	release  func(*[]byte)
	errMu    sync.Mutex
	writeErr error
}

// NewConn wraps conn. release, when set, gets every sent buffer back.
func NewConn(conn net.Conn, options *Options, release func(*[]byte)) *Conn {
	c := &Conn{
		conn:    conn,
		options: options,
		closeCh: make(chan struct{}),
		release: release,
	}
	if c.options.GetWriteBuffSize() <= 0 {
		c.writer = bufio.NewWriter(conn)
	} else {
		c.writer = bufio.NewWriterSize(conn, c.options.GetWriteBuffSize())
	}
	chanLen := c.options.GetSendChanLen()
	if chanLen <= 0 {
		chanLen = DefaultSendChanLen
	}
	c.sendCh = make(chan sendItem, chanLen)

	if tcpConn, ok := c.conn.(*net.TCPConn); ok {
		tcpConn.SetNoDelay(c.options.GetNodelay())
		if c.options.GetKeepAlived() {
			tcpConn.SetKeepAlive(true)
		}
		if c.options.GetKeepAlivedPeriod() > 0 {
			tcpConn.SetKeepAlivePeriod(c.options.GetKeepAlivedPeriod())
		}
	}
	return c
}

func (c *Conn) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Run starts the write loop.
func (c *Conn) Run() {
	go c.writeLoop()
}

// Read reads from the socket with the configured read timeout.
func (c *Conn) Read(p []byte) (int, error) {
	if timeout := c.options.GetReadTimeout(); timeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return 0, err
		}
	}
	return c.conn.Read(p)
}

func (c *Conn) realSend(d sendItem) error {
	var err error
	if timeout := c.options.GetWriteTimeout(); timeout > 0 {
		err = c.conn.SetWriteDeadline(time.Now().Add(timeout))
	}
	if err == nil {
		_, err = c.writer.Write(*d.data)
	}
	// flush once the queue drains, or right away when someone is waiting on the result
	if err == nil && (len(c.sendCh) == 0 || d.done != nil) {
		err = c.writer.Flush()
	}
	if err != nil {
		c.errMu.Lock()
		c.writeErr = err
		c.errMu.Unlock()
	}
	c.recycle(d, err)
	return err
}

func (c *Conn) recycle(d sendItem, err error) {
	if c.release != nil {
		c.release(d.data)
	}
	if d.done != nil {
		d.done <- err
	}
}

func (c *Conn) writeLoop() {
	defer func() {
		if err := recover(); err != nil {
			log.WithStack(err)
		}
	}()

	var err error
	for err == nil {
		select {
		case d := <-c.sendCh:
			err = c.realSend(d)
		case <-c.closeCh:
			err = ErrConnClosed
		}
	}
	if err != ErrConnClosed {
		log.Debugf("mcnet: write to %v failed: %v", c.conn.RemoteAddr(), err)
		// unblocks the reader, which reports the failure
		c.conn.Close()
	}
	// 退出时回收内存池分配的内存
	for {
		select {
		case d := <-c.sendCh:
			c.recycle(d, ErrConnClosed)
		default:
			return
		}
	}
}

// WriteErr returns the error that stopped the write loop, if any.
func (c *Conn) WriteErr() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.writeErr
}

// Send queues a frame. done, if not nil, must be buffered; it receives the flush result.
func (c *Conn) Send(data *[]byte, done chan error) error {
	if c.IsClosed() {
		return ErrConnClosed
	}
	if err := c.WriteErr(); err != nil {
		return err
	}
	select {
	case <-c.closeCh:
		return ErrConnClosed
	case c.sendCh <- sendItem{data: data, done: done}:
	}
	return nil
}

// Close closes the socket and stops the write loop. Queued frames are dropped.
func (c *Conn) Close() {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return
	}
	c.conn.Close()
	close(c.closeCh)
}

func (c *Conn) IsClosed() bool {
	return atomic.LoadInt32(&c.closed) > 0
}
