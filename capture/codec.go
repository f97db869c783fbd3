package capture

import (
	"encoding/json"

	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec serializes records inside a capture file.
type Codec interface {
	Name() string
	Encode(r *Record) ([]byte, error)
	Decode(d []byte, r *Record) error
}

var ErrUnknownCodec = errors.New("mcnet: unknown capture codec")

type MsgpackCodec struct{}

func (MsgpackCodec) Name() string { return "msgpack" }

func (MsgpackCodec) Encode(r *Record) ([]byte, error) {
	return msgpack.Marshal(r)
}

func (MsgpackCodec) Decode(d []byte, r *Record) error {
	return msgpack.Unmarshal(d, r)
}

type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Encode(r *Record) ([]byte, error) {
	return json.Marshal(r)
}

func (JSONCodec) Decode(d []byte, r *Record) error {
	return json.Unmarshal(d, r)
}

type ProtobufCodec struct{}

func (ProtobufCodec) Name() string { return "protobuf" }

func (ProtobufCodec) Encode(r *Record) ([]byte, error) {
	return proto.Marshal(r)
}

func (ProtobufCodec) Decode(d []byte, r *Record) error {
	return proto.Unmarshal(d, r)
}

// CodecByName returns the codec called name. An empty name selects msgpack.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "msgpack":
		return MsgpackCodec{}, nil
	case "json":
		return JSONCodec{}, nil
	case "protobuf", "proto":
		return ProtobufCodec{}, nil
	}
	return nil, errors.Wrapf(ErrUnknownCodec, "%q", name)
}
