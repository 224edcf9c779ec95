// Package v1 holds the protobuf messages exchanged by the conversion pipeline.
//
// The messages are plain structs with protobuf field tags and are
// encoded with the reflection based gogo/protobuf marshaler:
//
//	message Location {
//	  enum Kind { LOCAL = 0; MINIO = 1; }
//	  Kind kind = 1;
//	  string bucket = 2;
//	  string object_name = 3;
//	}
//
//	message ConvertRequest {
//	  string request_id = 1;
//	  Location source = 2;
//	  Location destination = 3;
//	}
//
//	message ConvertedImage {
//	  string request_id = 1;
//	  Location source = 2;
//	  Location image = 3;
//	  uint64 bytes = 4;
//	  uint32 padding = 5;
//	  uint64 words = 6;
//	}
package v1

import (
	proto "github.com/gogo/protobuf/proto"
)

// Location_Kind is the storage backend that holds an object.
type Location_Kind int32

const (
	Location_LOCAL Location_Kind = 0
	Location_MINIO Location_Kind = 1
)

var Location_Kind_name = map[int32]string{
	0: "LOCAL",
	1: "MINIO",
}

var Location_Kind_value = map[string]int32{
	"LOCAL": 0,
	"MINIO": 1,
}

func (x Location_Kind) String() string {
	return proto.EnumName(Location_Kind_name, int32(x))
}

// Location addresses an object in one of the storage backends.
// For LOCAL objects the bucket is an optional directory.
type Location struct {
	Kind       Location_Kind `protobuf:"varint,1,opt,name=kind,proto3,enum=bin2hex64.api.v1.Location_Kind" json:"kind,omitempty"`
	Bucket     string        `protobuf:"bytes,2,opt,name=bucket,proto3" json:"bucket,omitempty"`
	ObjectName string        `protobuf:"bytes,3,opt,name=object_name,json=objectName,proto3" json:"object_name,omitempty"`
}

func (m *Location) Reset()         { *m = Location{} }
func (m *Location) String() string { return proto.CompactTextString(m) }
func (*Location) ProtoMessage()    {}

// ConvertRequest asks for the binary at Source to be converted.
// Destination is optional.
type ConvertRequest struct {
	RequestId   string    `protobuf:"bytes,1,opt,name=request_id,json=requestId,proto3" json:"request_id,omitempty"`
	Source      *Location `protobuf:"bytes,2,opt,name=source,proto3" json:"source,omitempty"`
	Destination *Location `protobuf:"bytes,3,opt,name=destination,proto3" json:"destination,omitempty"`
}

func (m *ConvertRequest) Reset()         { *m = ConvertRequest{} }
func (m *ConvertRequest) String() string { return proto.CompactTextString(m) }
func (*ConvertRequest) ProtoMessage()    {}

// ConvertedImage describes a stored hex image.
type ConvertedImage struct {
	RequestId string    `protobuf:"bytes,1,opt,name=request_id,json=requestId,proto3" json:"request_id,omitempty"`
	Source    *Location `protobuf:"bytes,2,opt,name=source,proto3" json:"source,omitempty"`
	Image     *Location `protobuf:"bytes,3,opt,name=image,proto3" json:"image,omitempty"`
	Bytes     uint64    `protobuf:"varint,4,opt,name=bytes,proto3" json:"bytes,omitempty"`
	Padding   uint32    `protobuf:"varint,5,opt,name=padding,proto3" json:"padding,omitempty"`
	Words     uint64    `protobuf:"varint,6,opt,name=words,proto3" json:"words,omitempty"`
}

func (m *ConvertedImage) Reset()         { *m = ConvertedImage{} }
func (m *ConvertedImage) String() string { return proto.CompactTextString(m) }
func (*ConvertedImage) ProtoMessage()    {}

func init() {
	proto.RegisterEnum("bin2hex64.api.v1.Location_Kind", Location_Kind_name, Location_Kind_value)
	proto.RegisterType((*Location)(nil), "bin2hex64.api.v1.Location")
	proto.RegisterType((*ConvertRequest)(nil), "bin2hex64.api.v1.ConvertRequest")
	proto.RegisterType((*ConvertedImage)(nil), "bin2hex64.api.v1.ConvertedImage")
}
