// Package headerproto describes the protobuf header at the front of a sample
// image file.
//
// The schema is equivalent to:
//
//	syntax = "proto3";
//	package spheretrace.sampleimage;
//
//	message SampleImageHeader {
//	  uint32 row_size = 1;
//	  uint32 col_size = 2;
//	  uint32 data_layout_version = 3;
//	  int64 seed = 4;
//	}
package headerproto

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

var (
	sampleImageHeader protoreflect.MessageDescriptor

	rowSizeField           protoreflect.FieldDescriptor
	colSizeField           protoreflect.FieldDescriptor
	dataLayoutVersionField protoreflect.FieldDescriptor
	seedField              protoreflect.FieldDescriptor
)

func init() {
	fdp := &descriptorpb.FileDescriptorProto{
		Name:    proto.String("spheretrace/sampleimage/headerproto/header.proto"),
		Package: proto.String("spheretrace.sampleimage"),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("SampleImageHeader"),
				Field: []*descriptorpb.FieldDescriptorProto{
					scalarField("row_size", 1, descriptorpb.FieldDescriptorProto_TYPE_UINT32),
					scalarField("col_size", 2, descriptorpb.FieldDescriptorProto_TYPE_UINT32),
					scalarField("data_layout_version", 3, descriptorpb.FieldDescriptorProto_TYPE_UINT32),
					scalarField("seed", 4, descriptorpb.FieldDescriptorProto_TYPE_INT64),
				},
			},
		},
	}

	fd, err := protodesc.NewFile(fdp, new(protoregistry.Files))
	if err != nil {
		// The descriptor is a constant; this only fires if it is edited into
		// something invalid.
		panic("sampleimage headerproto: " + err.Error())
	}

	sampleImageHeader = fd.Messages().ByName("SampleImageHeader")
	fields := sampleImageHeader.Fields()
	rowSizeField = fields.ByName("row_size")
	colSizeField = fields.ByName("col_size")
	dataLayoutVersionField = fields.ByName("data_layout_version")
	seedField = fields.ByName("seed")
}

func scalarField(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:   typ.Enum(),
	}
}

// SampleImageHeader is a typed view over the dynamic header message.
type SampleImageHeader struct {
	msg *dynamicpb.Message
}

func NewSampleImageHeader() *SampleImageHeader {
	return &SampleImageHeader{msg: dynamicpb.NewMessage(sampleImageHeader)}
}

// Message exposes the underlying message for proto.Marshal and
// proto.Unmarshal.
func (h *SampleImageHeader) Message() proto.Message {
	return h.msg
}

func (h *SampleImageHeader) GetRowSize() uint32 {
	return uint32(h.msg.Get(rowSizeField).Uint())
}

func (h *SampleImageHeader) SetRowSize(v uint32) {
	h.msg.Set(rowSizeField, protoreflect.ValueOfUint32(v))
}

func (h *SampleImageHeader) GetColSize() uint32 {
	return uint32(h.msg.Get(colSizeField).Uint())
}

func (h *SampleImageHeader) SetColSize(v uint32) {
	h.msg.Set(colSizeField, protoreflect.ValueOfUint32(v))
}

func (h *SampleImageHeader) GetDataLayoutVersion() uint32 {
	return uint32(h.msg.Get(dataLayoutVersionField).Uint())
}

func (h *SampleImageHeader) SetDataLayoutVersion(v uint32) {
	h.msg.Set(dataLayoutVersionField, protoreflect.ValueOfUint32(v))
}

func (h *SampleImageHeader) GetSeed() int64 {
	return h.msg.Get(seedField).Int()
}

func (h *SampleImageHeader) SetSeed(v int64) {
	h.msg.Set(seedField, protoreflect.ValueOfInt64(v))
}
