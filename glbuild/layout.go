package glbuild

import (
	"strconv"
	"strings"

	"github.com/soypat/rmarch"
)

// Scene uniform block layout following std140 rules. Offsets are in bytes
// from the start of the block.
const (
	// MaxShapes is the capacity of the shape array of the scene block.
	MaxShapes = 10

	ShapesOffset      = 0
	NumShapesOffset   = ShapesOffset + MaxShapes*rmarch.ShapeBytes
	MatrixWorldOffset = (NumShapesOffset + int32Size + 15) &^ 15
	ProjInvOffset     = MatrixWorldOffset + mat4Size
	AmbientOffset     = ProjInvOffset + mat4Size
	LightOffset       = (AmbientOffset + vec3Size + 15) &^ 15
	LightKindOffset   = LightOffset + vec3Size
	SelectedOffset    = LightKindOffset + int32Size
	// SceneBytes is the size of the scene block rounded up to a vec4.
	SceneBytes = (SelectedOffset + int32Size + 15) &^ 15

	// SceneBlockName is the name of the uniform block in GLSL.
	SceneBlockName = "uScene"
)

const (
	float32Size = 4
	int32Size   = 4
	vec3Size    = 3 * float32Size
	mat4Size    = 16 * float32Size
)

// blockMember is a member of a GLSL struct or block declaration along with
// the offset the Go side writes it at.
type blockMember struct {
	typename string
	name     string
	offset   int
}

var shapeMembers = []blockMember{
	{"vec3", "position", rmarch.ShapePositionOffset},
	{"mat3", "rotation", rmarch.ShapeRotationOffset},
	{"vec4", "size", rmarch.ShapeSizeOffset},
	{"vec3", "color", rmarch.ShapeColorOffset},
	{"float", "blendStrength", rmarch.ShapeBlendStrengthOffset},
	{"int", "shapeType", rmarch.ShapeTypeOffset},
	{"int", "operation", rmarch.ShapeOperationOffset},
	{"int", "numChildren", rmarch.ShapeNumChildrenOffset},
}

var sceneMembers = []blockMember{
	{"Shape", "shapes[MAX_SHAPES]", ShapesOffset},
	{"int", "numShapes", NumShapesOffset},
	{"mat4", "matrixWorld", MatrixWorldOffset},
	{"mat4", "projectionMatrixInverse", ProjInvOffset},
	{"vec3", "ambient", AmbientOffset},
	{"vec3", "light", LightOffset},
	{"int", "lightKind", LightKindOffset},
	{"int", "selected", SelectedOffset},
}

// AppendLayoutDefines appends the preprocessor definitions shared between the
// Go scene layout and the GLSL code: shape types, operations, light kinds and
// the shape capacity.
func AppendLayoutDefines(b []byte) []byte {
	b = appendIntDefine(b, "MAX_SHAPES", MaxShapes)
	for _, st := range []rmarch.ShapeType{rmarch.Sphere, rmarch.Box, rmarch.Torus, rmarch.RoundedBox} {
		b = appendIntDefine(b, "SHAPE_"+strings.ToUpper(st.String()), int(st))
	}
	for _, op := range []rmarch.Operation{rmarch.OpNone, rmarch.OpBlend, rmarch.OpCut, rmarch.OpMask} {
		b = appendIntDefine(b, "OP_"+strings.ToUpper(op.String()), int(op))
	}
	for _, lk := range []rmarch.LightKind{rmarch.LightDirectional, rmarch.LightPoint} {
		b = appendIntDefine(b, "LIGHT_"+strings.ToUpper(lk.String()), int(lk))
	}
	return b
}

// AppendSceneBlockDecl appends the Shape struct and the std140 scene uniform
// block declarations. MAX_SHAPES must be defined, see [AppendLayoutDefines].
//
//	struct Shape { ... };
//	layout(std140) uniform uScene { ... };
func AppendSceneBlockDecl(b []byte) []byte {
	b = append(b, "struct Shape {\n"...)
	b = appendMembers(b, shapeMembers)
	b = append(b, "};\n\nlayout(std140) uniform "...)
	b = append(b, SceneBlockName...)
	b = append(b, " {\n"...)
	b = appendMembers(b, sceneMembers)
	b = append(b, "};\n"...)
	return b
}

func appendMembers(b []byte, members []blockMember) []byte {
	for _, m := range members {
		b = append(b, '\t')
		b = append(b, m.typename...)
		b = append(b, ' ')
		b = append(b, m.name...)
		b = append(b, "; // offset "...)
		b = strconv.AppendInt(b, int64(m.offset), 10)
		b = append(b, '\n')
	}
	return b
}

func appendIntDefine(b []byte, name string, v int) []byte {
	return AppendDefineDecl(b, name, strconv.Itoa(v))
}
