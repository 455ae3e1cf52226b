// Package headerproto describes the protobuf schema of scene description
// files.  Scene files use the protobuf text format.
//
// The schema is equivalent to:
//
//	syntax = "proto3";
//	package spheretrace.scenepack;
//
//	message Vec3 {
//	  double x = 1;
//	  double y = 2;
//	  double z = 3;
//	}
//
//	message Camera {
//	  Vec3 look_from = 1;
//	  Vec3 look_at = 2;
//	  Vec3 v_up = 3;
//	  double vfov_degrees = 4;
//	}
//
//	message Lambertian {
//	  Vec3 albedo = 1;
//	}
//
//	message Metal {
//	  Vec3 albedo = 1;
//	  double fuzz = 2;
//	}
//
//	message Dielectric {
//	  double refractive_index = 1;
//	}
//
//	message Sphere {
//	  Vec3 center = 1;
//	  double radius = 2;
//	  oneof material {
//	    Lambertian lambertian = 3;
//	    Metal metal = 4;
//	    Dielectric dielectric = 5;
//	  }
//	}
//
//	message Scene {
//	  Camera camera = 1;
//	  repeated Sphere sphere = 2;
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

const protoPackage = "spheretrace.scenepack"

var (
	Vec3       protoreflect.MessageDescriptor
	Camera     protoreflect.MessageDescriptor
	Lambertian protoreflect.MessageDescriptor
	Metal      protoreflect.MessageDescriptor
	Dielectric protoreflect.MessageDescriptor
	Sphere     protoreflect.MessageDescriptor
	Scene      protoreflect.MessageDescriptor
)

func init() {
	double := descriptorpb.FieldDescriptorProto_TYPE_DOUBLE

	fdp := &descriptorpb.FileDescriptorProto{
		Name:    proto.String("spheretrace/scenepack/headerproto/scene.proto"),
		Package: proto.String(protoPackage),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("Vec3"),
				Field: []*descriptorpb.FieldDescriptorProto{
					scalarField("x", 1, double),
					scalarField("y", 2, double),
					scalarField("z", 3, double),
				},
			},
			{
				Name: proto.String("Camera"),
				Field: []*descriptorpb.FieldDescriptorProto{
					messageField("look_from", 1, "Vec3"),
					messageField("look_at", 2, "Vec3"),
					messageField("v_up", 3, "Vec3"),
					scalarField("vfov_degrees", 4, double),
				},
			},
			{
				Name: proto.String("Lambertian"),
				Field: []*descriptorpb.FieldDescriptorProto{
					messageField("albedo", 1, "Vec3"),
				},
			},
			{
				Name: proto.String("Metal"),
				Field: []*descriptorpb.FieldDescriptorProto{
					messageField("albedo", 1, "Vec3"),
					scalarField("fuzz", 2, double),
				},
			},
			{
				Name: proto.String("Dielectric"),
				Field: []*descriptorpb.FieldDescriptorProto{
					scalarField("refractive_index", 1, double),
				},
			},
			{
				Name: proto.String("Sphere"),
				Field: []*descriptorpb.FieldDescriptorProto{
					messageField("center", 1, "Vec3"),
					scalarField("radius", 2, double),
					inOneof(messageField("lambertian", 3, "Lambertian"), 0),
					inOneof(messageField("metal", 4, "Metal"), 0),
					inOneof(messageField("dielectric", 5, "Dielectric"), 0),
				},
				OneofDecl: []*descriptorpb.OneofDescriptorProto{
					{Name: proto.String("material")},
				},
			},
			{
				Name: proto.String("Scene"),
				Field: []*descriptorpb.FieldDescriptorProto{
					messageField("camera", 1, "Camera"),
					repeated(messageField("sphere", 2, "Sphere")),
				},
			},
		},
	}

	fd, err := protodesc.NewFile(fdp, new(protoregistry.Files))
	if err != nil {
		panic("scenepack headerproto: " + err.Error())
	}

	msgs := fd.Messages()
	Vec3 = msgs.ByName("Vec3")
	Camera = msgs.ByName("Camera")
	Lambertian = msgs.ByName("Lambertian")
	Metal = msgs.ByName("Metal")
	Dielectric = msgs.ByName("Dielectric")
	Sphere = msgs.ByName("Sphere")
	Scene = msgs.ByName("Scene")
}

func scalarField(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:   typ.Enum(),
	}
}

func messageField(name string, number int32, typeName string) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:     proto.String(name),
		Number:   proto.Int32(number),
		Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:     descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum(),
		TypeName: proto.String("." + protoPackage + "." + typeName),
	}
}

func repeated(f *descriptorpb.FieldDescriptorProto) *descriptorpb.FieldDescriptorProto {
	f.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
	return f
}

func inOneof(f *descriptorpb.FieldDescriptorProto, index int32) *descriptorpb.FieldDescriptorProto {
	f.OneofIndex = proto.Int32(index)
	return f
}

// NewScene returns an empty, mutable Scene message.
func NewScene() *dynamicpb.Message {
	return dynamicpb.NewMessage(Scene)
}
