package common

import (
	"time"

	"github.com/huoshan017/mcnet/frame"
	"github.com/huoshan017/mcnet/packet"
)

// FrameObserver sees every frame a connection sends or receives, with the state it was
// encoded or decoded in. It is called from the reader and from senders, so it must be
// safe for concurrent use.
type FrameObserver interface {
	ObserveFrame(dir packet.Direction, state packet.State, f frame.Frame)
}

// 选项结构
type Options struct {
	version          packet.Version
	connectTimeout   time.Duration
	readTimeout      time.Duration
	writeTimeout     time.Duration
	maxFrameSize     int
	strict           bool // unknown ids and malformed packets end the session
	autoKeepAlive    bool
	sendChanLen      int
	readBuffSize     int
	writeBuffSize    int
	noDelay          bool
	keepAlived       bool
	keepAlivedPeriod time.Duration
	sockRecvBuffSize int
	sockSendBuffSize int
	reuseAddr        bool
	observers        []FrameObserver
	handlers         []Handler
}

// NewOptions returns options with every default applied.
func NewOptions() *Options {
	return &Options{
		version:        packet.DefaultVersion,
		connectTimeout: DefaultConnectTimeout,
		readTimeout:    DefaultReadTimeout,
		writeTimeout:   DefaultWriteTimeout,
		maxFrameSize:   frame.DefaultMaxFrameSize,
		autoKeepAlive:  true,
		sendChanLen:    DefaultSendChanLen,
		readBuffSize:   DefaultReadBuffSize,
		writeBuffSize:  DefaultWriteBuffSize,
		noDelay:        true,
	}
}

// 选项
type Option func(*Options)

func (options *Options) GetVersion() packet.Version {
	return options.version
}

func (options *Options) SetVersion(version packet.Version) {
	options.version = version
}

func (options *Options) GetConnectTimeout() time.Duration {
	return options.connectTimeout
}

func (options *Options) SetConnectTimeout(timeout time.Duration) {
	options.connectTimeout = timeout
}

func (options *Options) GetReadTimeout() time.Duration {
	return options.readTimeout
}

func (options *Options) SetReadTimeout(timeout time.Duration) {
	options.readTimeout = timeout
}

func (options *Options) GetWriteTimeout() time.Duration {
	return options.writeTimeout
}

func (options *Options) SetWriteTimeout(timeout time.Duration) {
	options.writeTimeout = timeout
}

func (options *Options) GetMaxFrameSize() int {
	return options.maxFrameSize
}

func (options *Options) SetMaxFrameSize(size int) {
	options.maxFrameSize = size
}

func (options *Options) IsStrict() bool {
	return options.strict
}

func (options *Options) SetStrict(strict bool) {
	options.strict = strict
}

func (options *Options) IsAutoKeepAlive() bool {
	return options.autoKeepAlive
}

func (options *Options) SetAutoKeepAlive(enable bool) {
	options.autoKeepAlive = enable
}

func (options *Options) GetSendChanLen() int {
	return options.sendChanLen
}

func (options *Options) SetSendChanLen(chanLen int) {
	options.sendChanLen = chanLen
}

func (options *Options) GetReadBuffSize() int {
	return options.readBuffSize
}

func (options *Options) SetReadBuffSize(size int) {
	options.readBuffSize = size
}

func (options *Options) GetWriteBuffSize() int {
	return options.writeBuffSize
}

func (options *Options) SetWriteBuffSize(size int) {
	options.writeBuffSize = size
}

func (options *Options) GetNodelay() bool {
	return options.noDelay
}

func (options *Options) SetNodelay(noDelay bool) {
	options.noDelay = noDelay
}

func (options *Options) GetKeepAlived() bool {
	return options.keepAlived
}

func (options *Options) SetKeepAlived(keepAlived bool) {
	options.keepAlived = keepAlived
}

func (options *Options) GetKeepAlivedPeriod() time.Duration {
	return options.keepAlivedPeriod
}

func (options *Options) SetKeepAlivedPeriod(period time.Duration) {
	options.keepAlivedPeriod = period
}

func (options *Options) GetSockRecvBuffSize() int {
	return options.sockRecvBuffSize
}

func (options *Options) SetSockRecvBuffSize(size int) {
	options.sockRecvBuffSize = size
}

func (options *Options) GetSockSendBuffSize() int {
	return options.sockSendBuffSize
}

func (options *Options) SetSockSendBuffSize(size int) {
	options.sockSendBuffSize = size
}

func (options *Options) IsReuseAddr() bool {
	return options.reuseAddr
}

func (options *Options) SetReuseAddr(enable bool) {
	options.reuseAddr = enable
}

func (options *Options) GetFrameObservers() []FrameObserver {
	return options.observers
}

func (options *Options) AddFrameObserver(observer FrameObserver) {
	if observer != nil {
		options.observers = append(options.observers, observer)
	}
}

// GetEventHandlers returns handlers a new connection registers as persistent.
func (options *Options) GetEventHandlers() []Handler {
	return options.handlers
}

func (options *Options) AddEventHandler(handler Handler) {
	if handler != nil {
		options.handlers = append(options.handlers, handler)
	}
}

func WithVersion(version packet.Version) Option {
	return func(options *Options) {
		options.SetVersion(version)
	}
}

func WithConnectTimeout(timeout time.Duration) Option {
	return func(options *Options) {
		options.SetConnectTimeout(timeout)
	}
}

func WithReadTimeout(timeout time.Duration) Option {
	return func(options *Options) {
		options.SetReadTimeout(timeout)
	}
}

func WithWriteTimeout(timeout time.Duration) Option {
	return func(options *Options) {
		options.SetWriteTimeout(timeout)
	}
}

func WithMaxFrameSize(size int) Option {
	return func(options *Options) {
		options.SetMaxFrameSize(size)
	}
}

func WithStrict(strict bool) Option {
	return func(options *Options) {
		options.SetStrict(strict)
	}
}

func WithAutoKeepAlive(enable bool) Option {
	return func(options *Options) {
		options.SetAutoKeepAlive(enable)
	}
}

func WithSendChanLen(chanLen int) Option {
	return func(options *Options) {
		options.SetSendChanLen(chanLen)
	}
}

func WithReadBuffSize(size int) Option {
	return func(options *Options) {
		options.SetReadBuffSize(size)
	}
}

func WithWriteBuffSize(size int) Option {
	return func(options *Options) {
		options.SetWriteBuffSize(size)
	}
}

func WithNoDelay(noDelay bool) Option {
	return func(options *Options) {
		options.SetNodelay(noDelay)
	}
}

func WithKeepAlived(keepAlived bool) Option {
	return func(options *Options) {
		options.SetKeepAlived(keepAlived)
	}
}

func WithKeepAlivedPeriod(period time.Duration) Option {
	return func(options *Options) {
		options.SetKeepAlivedPeriod(period)
	}
}

func WithSockRecvBuffSize(size int) Option {
	return func(options *Options) {
		options.SetSockRecvBuffSize(size)
	}
}

func WithSockSendBuffSize(size int) Option {
	return func(options *Options) {
		options.SetSockSendBuffSize(size)
	}
}

// WithReuseAddr sets SO_REUSEADDR on the dialing socket.
func WithReuseAddr(enable bool) Option {
	return func(options *Options) {
		options.SetReuseAddr(enable)
	}
}

func WithFrameObserver(observer FrameObserver) Option {
	return func(options *Options) {
		options.AddFrameObserver(observer)
	}
}

// WithEventHandler registers h on every connection built from these options.
func WithEventHandler(h Handler) Option {
	return func(options *Options) {
		options.AddEventHandler(h)
	}
}
