package rmarch

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
)

// Distance returns the signed distance from p (world coordinates) to the
// surface of s. Shapes of unknown type are reported maxDist away so they do
// not contribute to the scene.
func Distance(s *Shape, p ms3.Vec, maxDist float32) float32 {
	local := s.toLocal(p)
	switch s.Type {
	case Sphere:
		return sdSphere(local, s.Size[0])
	case Box:
		return sdBox(local, s.halfExtents())
	case RoundedBox:
		return sdBox(local, s.halfExtents()) - s.Size[3]
	case Torus:
		return sdTorus(local, s.Size[0], s.Size[1])
	}
	return maxDist
}

// toLocal transforms p into the shape's frame: Rotationᵀ·(p-Position).
func (s *Shape) toLocal(p ms3.Vec) ms3.Vec {
	d := ms3.Sub(p, s.Position)
	r := s.rotation()
	// Columns of the row-major rotation are the rows of its transpose.
	return ms3.Vec{
		X: r[0]*d.X + r[3]*d.Y + r[6]*d.Z,
		Y: r[1]*d.X + r[4]*d.Y + r[7]*d.Z,
		Z: r[2]*d.X + r[5]*d.Y + r[8]*d.Z,
	}
}

func (s *Shape) halfExtents() ms3.Vec {
	return ms3.Vec{X: s.Size[0], Y: s.Size[1], Z: s.Size[2]}
}

func sdSphere(p ms3.Vec, r float32) float32 {
	return ms3.Norm(p) - r
}

func sdBox(p, halfExtents ms3.Vec) float32 {
	q := ms3.Sub(ms3.AbsElem(p), halfExtents)
	return ms3.Norm(ms3.MaxElem(q, ms3.Vec{})) + minf(maxf(q.X, maxf(q.Y, q.Z)), 0)
}

func sdTorus(p ms3.Vec, major, minor float32) float32 {
	q := ms2.Vec{X: math32.Hypot(p.X, p.Z) - major, Y: p.Y}
	return ms2.Norm(q) - minor
}

// Combine folds distance dB with color cB into the running distance dA with
// color cA using op. blendStrength is only used by OpBlend, where a
// non-positive strength degenerates to OpNone. Unknown operations are
// treated as OpNone.
func Combine(dA, dB float32, cA, cB ms3.Vec, op Operation, blendStrength float32) (float32, ms3.Vec) {
	switch op {
	case OpBlend:
		if blendStrength > 0 {
			return blend(dA, dB, cA, cB, blendStrength)
		}
	case OpCut:
		// max(a,-b)
		if -dB > dA {
			return -dB, cB
		}
		return dA, cA
	case OpMask:
		// max(a,b)
		if dB > dA {
			return dB, cB
		}
		return dA, cA
	}
	if dB < dA {
		return dB, cB
	}
	return dA, cA
}

// blend is the polynomial smooth minimum.
// See https://iquilezles.org/articles/smin/.
func blend(a, b float32, colA, colB ms3.Vec, k float32) (float32, ms3.Vec) {
	h := clampf(0.5+0.5*(b-a)/k, 0, 1)
	d := mixf(b, a, h) - k*h*(1-h)
	return d, mix3(colB, colA, h)
}

// SceneField evaluates the combined distance field of shapes at p and the
// color of the field there. The field starts at maxDist and white.
//
// Each shape is first combined with its children using each child's
// operation and blend strength. The resulting group is then combined into
// the scene with the parent's operation and blend strength.
func SceneField(shapes []Shape, p ms3.Vec, maxDist float32) (float32, ms3.Vec) {
	dist := maxDist
	color := white
	for i := 0; i < len(shapes); i += shapes[i].Skip() {
		parent := &shapes[i]
		localDist := Distance(parent, p, maxDist)
		localColor := parent.Color
		children := Children(shapes, i)
		for j := range children {
			child := &children[j]
			childDist := Distance(child, p, maxDist)
			localDist, localColor = Combine(localDist, childDist, localColor, child.Color, child.Operation, child.BlendStrength)
		}
		dist, color = Combine(dist, localDist, color, localColor, parent.Operation, parent.BlendStrength)
	}
	return dist, color
}

// boundingRadius returns the radius of a sphere centered at the shape's
// position that contains the shape.
func (s *Shape) boundingRadius() float32 {
	switch s.Type {
	case Sphere:
		return math32.Abs(s.Size[0])
	case Box:
		return ms3.Norm(s.halfExtents())
	case RoundedBox:
		return ms3.Norm(s.halfExtents()) + math32.Abs(s.Size[3])
	case Torus:
		return math32.Abs(s.Size[0]) + math32.Abs(s.Size[1])
	}
	return 0
}

// Bounds returns a box containing all shapes. Boxes are computed from the
// bounding sphere of each shape so they are conservative under rotation.
// Blended surfaces may bulge slightly outside, so the box is grown by the
// largest blend strength.
func Bounds(shapes []Shape) ms3.Box {
	if len(shapes) == 0 {
		return ms3.Box{}
	}
	var bb ms3.Box
	var grow float32
	for i := range shapes {
		s := &shapes[i]
		r := s.boundingRadius()
		rv := ms3.Vec{X: r, Y: r, Z: r}
		sbb := ms3.Box{Min: ms3.Sub(s.Position, rv), Max: ms3.Add(s.Position, rv)}
		if i == 0 {
			bb = sbb
		} else {
			bb = bb.Union(sbb)
		}
		grow = maxf(grow, s.BlendStrength)
	}
	g := ms3.Vec{X: grow, Y: grow, Z: grow}
	return ms3.Box{Min: ms3.Sub(bb.Min, g), Max: ms3.Add(bb.Max, g)}
}
