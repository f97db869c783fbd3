package common

import "time"

const (
	DefaultSendChanLen    = 100              // 缺省发送通道长度
	DefaultConnectTimeout = time.Second * 10 // 缺省连接超时
	DefaultReadTimeout    = time.Second * 30 // servers send a keep-alive every 15s in play
	DefaultWriteTimeout   = time.Second * 5  // 缺省写超时
	DefaultReadBuffSize   = 16 * 1024
	DefaultWriteBuffSize  = 16 * 1024
)
