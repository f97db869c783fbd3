package wire

import "errors"

var (
	ErrBufferUnderrun = errors.New("wire: buffer underrun")
	ErrInvalidVarInt  = errors.New("wire: varint too long")
	ErrStringTooLong  = errors.New("wire: string exceeds max length")
	ErrInvalidString  = errors.New("wire: string is not valid utf-8")
	ErrInvalidBool    = errors.New("wire: bool byte out of range")
	ErrNegativeLength = errors.New("wire: negative length prefix")
	ErrInvalidNBT     = errors.New("wire: malformed nbt")
)
