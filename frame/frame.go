// Package frame splits a byte stream into length-prefixed protocol frames and builds
// outbound frames, optionally zlib compressed.
package frame

import (
	"errors"

	"github.com/huoshan017/mcnet/wire"
)

// DefaultMaxFrameSize is the largest length a three byte varint prefix can express.
const DefaultMaxFrameSize = 2097151

var (
	ErrFrameTooLarge   = errors.New("frame: length exceeds limit")
	ErrMalformedLength = errors.New("frame: malformed length prefix")
	ErrMalformedBody   = errors.New("frame: malformed packet id")
	ErrBadCompression  = errors.New("frame: invalid compressed body")
)

// CompressionDisabled is the threshold value meaning frames are sent uncompressed.
const CompressionDisabled = -1

// Frame is one packet id and its undecoded payload.
type Frame struct {
	ID      int32
	Payload []byte
}

// Size is the length of the id and payload as sent on the wire before compression.
func (f Frame) Size() int {
	return wire.VarIntSize(f.ID) + len(f.Payload)
}
