package glsllib

import (
	_ "embed"

	"github.com/soypat/rmarch/glbuild"
)

//go:embed sphere3D.glsl
var sphere3DSrc []byte

// Sphere3D is the SDF definition for a sphere centered at the origin:
//
//	float rmSphere(vec3 p, float r)
func Sphere3D() glbuild.ShaderObject {
	obj, _ := glbuild.MakeShaderFunction(sphere3DSrc)
	return obj
}

//go:embed box3D.glsl
var box3DSrc []byte

// Box3D is the SDF definition for a box with half extents b:
//
//	float rmBox(vec3 p, vec3 b)
func Box3D() glbuild.ShaderObject {
	obj, _ := glbuild.MakeShaderFunction(box3DSrc)
	return obj
}

//go:embed torus3D.glsl
var torus3DSrc []byte

// Torus3D is the SDF definition for a torus around the Y axis with major
// radius t.x and minor radius t.y:
//
//	float rmTorus(vec3 p, vec2 t)
func Torus3D() glbuild.ShaderObject {
	obj, _ := glbuild.MakeShaderFunction(torus3DSrc)
	return obj
}

//go:embed shape.glsl
var shapeSrc []byte

// ShapeDistance dispatches on the shape type after moving p to the shape's frame:
//
//	float rmShapeDistance(Shape s, vec3 p)
func ShapeDistance() glbuild.ShaderObject {
	obj, _ := glbuild.MakeShaderFunction(shapeSrc)
	return obj
}
