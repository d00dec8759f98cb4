package rmarch

import (
	"encoding/binary"
	"math"

	"github.com/soypat/geometry/ms3"
)

// ShapeType selects the distance function used to evaluate a [Shape].
// Values are part of the GPU layout contract.
type ShapeType int32

const (
	Sphere     ShapeType = iota // sphere, Size[0] is radius.
	Box                         // box, Size[0:3] are half extents.
	Torus                       // torus around local Y, Size[0] major radius, Size[1] minor radius.
	RoundedBox                  // box with Size[3] corner radius added to the half extents.
)

func (st ShapeType) String() string {
	switch st {
	case Sphere:
		return "sphere"
	case Box:
		return "box"
	case Torus:
		return "torus"
	case RoundedBox:
		return "roundedbox"
	}
	return "unknown"
}

// Operation selects how a shape is combined with the running distance field.
// Values are part of the GPU layout contract.
type Operation int32

const (
	// OpNone is the standard union: the nearer surface wins.
	OpNone Operation = iota
	// OpBlend is a polynomial smooth minimum governed by the blend strength.
	OpBlend
	// OpCut subtracts the shape from the running field.
	OpCut
	// OpMask intersects the shape with the running field.
	OpMask
)

func (op Operation) String() string {
	switch op {
	case OpNone:
		return "none"
	case OpBlend:
		return "blend"
	case OpCut:
		return "cut"
	case OpMask:
		return "mask"
	}
	return "unknown"
}

// std140 component sizes.
const (
	float32Bytes = 4
	int32Bytes   = 4
	vec3Bytes    = 3 * float32Bytes
	vec4Bytes    = 4 * float32Bytes
	mat3Bytes    = 3 * vec4Bytes // Three vec4 aligned columns.
)

// Byte offsets of [Shape] fields within its binary record. Any change to the
// record requires updating the GLSL struct written by glbuild and every
// offset derived from ShapeBytes.
const (
	ShapePositionOffset      = 0
	ShapeRotationOffset      = ShapePositionOffset + vec4Bytes
	ShapeSizeOffset          = ShapeRotationOffset + mat3Bytes
	ShapeColorOffset         = ShapeSizeOffset + vec4Bytes
	ShapeBlendStrengthOffset = ShapeColorOffset + vec3Bytes
	ShapeTypeOffset          = ShapeBlendStrengthOffset + float32Bytes
	ShapeOperationOffset     = ShapeTypeOffset + int32Bytes
	ShapeNumChildrenOffset   = ShapeOperationOffset + int32Bytes
	// ShapeBytes is the size of a shape record, which is also the std140
	// array stride of the shape struct (rounded up to a vec4).
	ShapeBytes = (ShapeNumChildrenOffset + int32Bytes + vec4Bytes - 1) &^ (vec4Bytes - 1)
)

// Shape is a single implicit primitive of a scene.
//
// Shapes are stored in a flat slice. A shape with NumChildren=n owns the n
// shapes following it: they are folded into it before the group is folded
// into the rest of the scene. Children do not have children of their own.
type Shape struct {
	Position ms3.Vec
	// Rotation transforms from the shape's local frame to world frame.
	// Must be orthonormal. A zero matrix is treated as identity.
	Rotation ms3.Mat3
	// Size parameters, meaning depends on Type. Unused components should be zero.
	Size  [4]float32
	Color ms3.Vec
	// BlendStrength is the smoothing distance used with OpBlend.
	BlendStrength float32
	Type          ShapeType
	Operation     Operation
	NumChildren   int
}

// Skip returns the number of entries of the flat shape slice consumed by
// this shape and its children.
func (s *Shape) Skip() int {
	if s.NumChildren <= 0 {
		return 1
	}
	return 1 + s.NumChildren
}

// Children returns the children of shapes[i]. The result is clamped to the
// length of shapes so a malformed child count never indexes out of range.
func Children(shapes []Shape, i int) []Shape {
	start := i + 1
	end := i + shapes[i].Skip()
	if end > len(shapes) {
		end = len(shapes)
	}
	if start > end {
		return nil
	}
	return shapes[start:end]
}

// Rotation returns the local to world rotation of radians around axis,
// suitable for [Shape.Rotation]. A zero axis returns the identity.
func Rotation(radians float32, axis ms3.Vec) ms3.Mat3 {
	if axis == (ms3.Vec{}) {
		return ms3.IdentityMat3()
	}
	m := ms3.RotationMat4(radians, axis).Array()
	return ms3.NewMat3([]float32{
		m[0], m[1], m[2],
		m[4], m[5], m[6],
		m[8], m[9], m[10],
	})
}

// rotation returns the row-major rotation with zero matrices mapped to identity.
func (s *Shape) rotation() [9]float32 {
	arr := s.Rotation.Array()
	if arr == ([9]float32{}) {
		return [9]float32{0: 1, 4: 1, 8: 1}
	}
	return arr
}

// Put encodes the shape into dst using the fixed little-endian std140 record
// layout described by the Shape*Offset constants. It panics if dst is shorter
// than ShapeBytes.
//
// The host stores Rotation row-major while GLSL mat3 is column-major, so the
// rotation is written column by column: this is the transpose step. The GLSL
// side evaluates (p-position)*rotation which equals Rotationᵀ·(p-position),
// the same local point computed by [Distance].
func (s Shape) Put(dst []byte) {
	_ = dst[ShapeBytes-1] // Early bounds check.
	putVec3(dst[ShapePositionOffset:], s.Position)
	putFloat32(dst[ShapePositionOffset+vec3Bytes:], 0)

	rot := s.rotation()
	for col := 0; col < 3; col++ {
		off := ShapeRotationOffset + col*vec4Bytes
		putVec3(dst[off:], ms3.Vec{X: rot[col], Y: rot[3+col], Z: rot[6+col]})
		putFloat32(dst[off+vec3Bytes:], 0)
	}
	for i, v := range s.Size {
		putFloat32(dst[ShapeSizeOffset+i*float32Bytes:], v)
	}
	putVec3(dst[ShapeColorOffset:], s.Color)
	putFloat32(dst[ShapeBlendStrengthOffset:], s.BlendStrength)
	putInt32(dst[ShapeTypeOffset:], int32(s.Type))
	putInt32(dst[ShapeOperationOffset:], int32(s.Operation))
	putInt32(dst[ShapeNumChildrenOffset:], int32(s.NumChildren))
	for i := ShapeNumChildrenOffset + int32Bytes; i < ShapeBytes; i++ {
		dst[i] = 0
	}
}

func putFloat32(b []byte, v float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
}

func putInt32(b []byte, v int32) {
	binary.LittleEndian.PutUint32(b, uint32(v))
}

func putVec3(b []byte, v ms3.Vec) {
	_ = b[vec3Bytes-1]
	putFloat32(b[0:], v.X)
	putFloat32(b[4:], v.Y)
	putFloat32(b[8:], v.Z)
}
