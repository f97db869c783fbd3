// Package capture records the frames of a connection to a file and replays them.
package capture

import (
	"time"

	"github.com/gogo/protobuf/proto"

	"github.com/huoshan017/mcnet/packet"
)

// Record is one captured frame. The tags serve the msgpack, json and protobuf codecs.
type Record struct {
	Time      int64  `msgpack:"t" json:"time" protobuf:"varint,1,opt,name=time,proto3"`
	Direction int32  `msgpack:"d" json:"direction" protobuf:"varint,2,opt,name=direction,proto3"`
	State     int32  `msgpack:"s" json:"state" protobuf:"varint,3,opt,name=state,proto3"`
	ID        int32  `msgpack:"i" json:"id" protobuf:"varint,4,opt,name=id,proto3"`
	Payload   []byte `msgpack:"p" json:"payload" protobuf:"bytes,5,opt,name=payload,proto3"`
}

func (r *Record) Reset()         { *r = Record{} }
func (r *Record) String() string { return proto.CompactTextString(r) }
func (*Record) ProtoMessage()    {}

func (r *Record) At() time.Time {
	return time.Unix(0, r.Time)
}

func (r *Record) Dir() packet.Direction {
	return packet.Direction(r.Direction)
}

func (r *Record) PacketState() packet.State {
	return packet.State(r.State)
}

// Decode parses the record's payload with codec.
func (r *Record) Decode(codec *packet.Codec) (packet.Packet, error) {
	return codec.Decode(r.PacketState(), r.Dir(), r.ID, r.Payload)
}
