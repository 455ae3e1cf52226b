// Package scenepack reads and writes scene description files and builds the
// stock scenes.
package scenepack

import (
	"fmt"
	"math"
	"os"

	"spheretrace/camera"
	"spheretrace/geometry"
	"spheretrace/material"
	"spheretrace/scene"
	"spheretrace/scenepack/headerproto"
	"spheretrace/vmath/vec3"

	"golang.org/x/xerrors"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// View is a look-at camera pose.  The aspect ratio comes from the output
// image.
type View struct {
	LookFrom    vec3.T
	LookAt      vec3.T
	VUp         vec3.T
	VFOVDegrees float64
}

// Pack is a loaded scene and the pose to render it from.
type Pack struct {
	Scene *scene.Scene

	// Nil means camera.Default().
	View *View
}

// Camera builds the camera for an image with the given width over height.
func (p *Pack) Camera(aspect float64) (camera.Camera, error) {
	if p.View == nil {
		return camera.Default(), nil
	}

	v := p.View
	if err := camera.Validate(v.LookFrom, v.LookAt, v.VUp, v.VFOVDegrees, aspect); err != nil {
		return nil, xerrors.Errorf("while validating camera: %w", err)
	}
	return camera.New(v.LookFrom, v.LookAt, v.VUp, v.VFOVDegrees, aspect), nil
}

// ValidationError reports a scene file field with an unusable value.
type ValidationError struct {
	// Field path within the file, such as "sphere[2].radius".
	Field   string
	Message string

	frame xerrors.Frame
}

func newValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		frame:   xerrors.Caller(1),
	}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Format(f fmt.State, c rune) { // implements fmt.Formatter
	xerrors.FormatError(e, f, c)
}

func (e *ValidationError) FormatError(p xerrors.Printer) error { // implements xerrors.Formatter
	p.Print(e.Error())
	if p.Detail() {
		e.frame.Format(p)
	}
	return nil
}

func LoadScene(fileName string) (*Pack, error) {
	fileBytes, err := os.ReadFile(fileName)
	if err != nil {
		return nil, xerrors.Errorf("while opening scenepack: %w", err)
	}

	p, err := ParseScene(fileBytes)
	if err != nil {
		return nil, xerrors.Errorf("while parsing scenepack %q: %w", fileName, err)
	}
	return p, nil
}

// ParseScene decodes a scene in protobuf text format.
func ParseScene(text []byte) (*Pack, error) {
	msg := headerproto.NewScene()
	if err := prototext.Unmarshal(text, msg); err != nil {
		return nil, xerrors.Errorf("while unmarshaling scene: %w", err)
	}

	p := &Pack{Scene: &scene.Scene{}}

	sceneFields := headerproto.Scene.Fields()
	if cameraField := sceneFields.ByName("camera"); msg.Has(cameraField) {
		v, err := convertCamera(msg.Get(cameraField).Message())
		if err != nil {
			return nil, err
		}
		p.View = v
	}

	spheres := msg.Get(sceneFields.ByName("sphere")).List()
	for i := 0; i < spheres.Len(); i++ {
		sp, err := convertSphere(fmt.Sprintf("sphere[%d]", i), spheres.Get(i).Message())
		if err != nil {
			return nil, err
		}
		p.Scene.AddSphere(sp)
	}

	return p, nil
}

func getVec3(m protoreflect.Message, name protoreflect.Name) vec3.T {
	v := m.Get(m.Descriptor().Fields().ByName(name)).Message()
	f := headerproto.Vec3.Fields()
	return vec3.T{
		v.Get(f.ByName("x")).Float(),
		v.Get(f.ByName("y")).Float(),
		v.Get(f.ByName("z")).Float(),
	}
}

func getFloat(m protoreflect.Message, name protoreflect.Name) float64 {
	return m.Get(m.Descriptor().Fields().ByName(name)).Float()
}

func convertCamera(m protoreflect.Message) (*View, error) {
	v := &View{
		LookFrom:    getVec3(m, "look_from"),
		LookAt:      getVec3(m, "look_at"),
		VUp:         getVec3(m, "v_up"),
		VFOVDegrees: getFloat(m, "vfov_degrees"),
	}

	if v.LookFrom == v.LookAt {
		return nil, newValidationError("camera.look_at", "must differ from look_from %v", v.LookFrom)
	}
	if v.VUp == vec3.Zero {
		return nil, newValidationError("camera.v_up", "must be set")
	}
	if !(v.VFOVDegrees > 0 && v.VFOVDegrees < 180) {
		return nil, newValidationError("camera.vfov_degrees", "must be in (0, 180), got %v", v.VFOVDegrees)
	}
	return v, nil
}

func convertSphere(path string, m protoreflect.Message) (geometry.Sphere, error) {
	sp := geometry.Sphere{
		Center: getVec3(m, "center"),
		Radius: getFloat(m, "radius"),
	}

	if !(sp.Radius > 0) || math.IsInf(sp.Radius, 0) {
		return sp, newValidationError(path+".radius", "must be positive and finite, got %v", sp.Radius)
	}

	oneof := headerproto.Sphere.Oneofs().ByName("material")
	fd := m.WhichOneof(oneof)
	if fd == nil {
		return sp, newValidationError(path, "must set one of lambertian, metal, or dielectric")
	}

	matMsg := m.Get(fd).Message()
	switch fd.Name() {
	case "lambertian":
		sp.Material = material.Lambertian(getVec3(matMsg, "albedo"))
	case "metal":
		fuzz := getFloat(matMsg, "fuzz")
		if !(fuzz >= 0 && fuzz <= 1) {
			return sp, newValidationError(path+".metal.fuzz", "must be in [0, 1], got %v", fuzz)
		}
		sp.Material = material.Metal(getVec3(matMsg, "albedo"), fuzz)
	case "dielectric":
		sp.Material = material.Dielectric(getFloat(matMsg, "refractive_index"))
	}

	if err := sp.Validate(); err != nil {
		return sp, newValidationError(path+"."+string(fd.Name()), "%v", err)
	}

	return sp, nil
}

// MarshalScene encodes p in the format ParseScene reads.
func MarshalScene(p *Pack) ([]byte, error) {
	msg := headerproto.NewScene()
	sceneFields := headerproto.Scene.Fields()

	if p.View != nil {
		cm := msg.Mutable(sceneFields.ByName("camera")).Message()
		setVec3(cm, "look_from", p.View.LookFrom)
		setVec3(cm, "look_at", p.View.LookAt)
		setVec3(cm, "v_up", p.View.VUp)
		setFloat(cm, "vfov_degrees", p.View.VFOVDegrees)
	}

	spheres := msg.Mutable(sceneFields.ByName("sphere")).List()
	for i, sp := range p.Scene.Spheres {
		el := spheres.NewElement()
		sm := el.Message()
		setVec3(sm, "center", sp.Center)
		setFloat(sm, "radius", sp.Radius)

		switch sp.Material.Kind {
		case material.KindLambertian:
			mm := sm.Mutable(headerproto.Sphere.Fields().ByName("lambertian")).Message()
			setVec3(mm, "albedo", sp.Material.Albedo)
		case material.KindMetal:
			mm := sm.Mutable(headerproto.Sphere.Fields().ByName("metal")).Message()
			setVec3(mm, "albedo", sp.Material.Albedo)
			setFloat(mm, "fuzz", sp.Material.Fuzz)
		case material.KindDielectric:
			mm := sm.Mutable(headerproto.Sphere.Fields().ByName("dielectric")).Message()
			setFloat(mm, "refractive_index", sp.Material.RefractiveIndex)
		default:
			return nil, xerrors.Errorf("sphere %d has unknown material kind %v", i, sp.Material.Kind)
		}

		spheres.Append(el)
	}

	out, err := prototext.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(msg)
	if err != nil {
		return nil, xerrors.Errorf("while marshaling scene: %w", err)
	}
	return out, nil
}

func setVec3(m protoreflect.Message, name protoreflect.Name, v vec3.T) {
	vm := m.Mutable(m.Descriptor().Fields().ByName(name)).Message()
	f := headerproto.Vec3.Fields()
	vm.Set(f.ByName("x"), protoreflect.ValueOfFloat64(v[0]))
	vm.Set(f.ByName("y"), protoreflect.ValueOfFloat64(v[1]))
	vm.Set(f.ByName("z"), protoreflect.ValueOfFloat64(v[2]))
}

func setFloat(m protoreflect.Message, name protoreflect.Name, v float64) {
	m.Set(m.Descriptor().Fields().ByName(name), protoreflect.ValueOfFloat64(v))
}
