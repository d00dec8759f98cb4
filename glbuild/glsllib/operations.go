package glsllib

import (
	_ "embed"

	"github.com/soypat/rmarch/glbuild"
)

//go:embed combine.glsl
var combineSrc []byte

// Combine folds distance dB with color colB into dA and colA according to
// the operation. The result packs color in rgb and distance in w:
//
//	vec4 rmCombine(float dA, float dB, vec3 colA, vec3 colB, int op, float k)
func Combine() glbuild.ShaderObject {
	obj, _ := glbuild.MakeShaderFunction(combineSrc)
	return obj
}

//go:embed scene.glsl
var sceneSrc []byte

// SceneField evaluates the combined field of the scene block's shapes:
//
//	vec4 rmSceneField(vec3 p)
func SceneField() glbuild.ShaderObject {
	obj, _ := glbuild.MakeShaderFunction(sceneSrc)
	return obj
}

//go:embed normal.glsl
var normalSrc []byte

// Normal estimates the surface normal by central differences:
//
//	vec3 rmNormal(vec3 p)
func Normal() glbuild.ShaderObject {
	obj, _ := glbuild.MakeShaderFunction(normalSrc)
	return obj
}

//go:embed shadow.glsl
var shadowSrc []byte

// Shadow marches towards the light and returns the light attenuation:
//
//	float rmShadow(vec3 ro, vec3 rd, float maxDst)
func Shadow() glbuild.ShaderObject {
	obj, _ := glbuild.MakeShaderFunction(shadowSrc)
	return obj
}

// SceneFunctions returns every function the ray marching fragment shader
// calls, in dependency order.
func SceneFunctions() []glbuild.ShaderObject {
	return []glbuild.ShaderObject{
		Sphere3D(),
		Box3D(),
		Torus3D(),
		ShapeDistance(),
		Combine(),
		SceneField(),
		Normal(),
		Shadow(),
	}
}
