package glbuild

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/rmarch"
)

var (
	ErrCapacity   = errors.New("scene shape capacity exceeded")
	ErrShapeIndex = errors.New("shape index out of range")
)

// Uploader receives byte ranges of the scene block. Implementations copy
// data to a GPU buffer at the given offset.
type Uploader interface {
	Upload(offset int, data []byte) error
}

// SceneBuffer holds the std140 scene uniform block bytes and tracks the
// range of bytes modified since the last [SceneBuffer.Flush].
//
// Creating a SceneBuffer does not mark it dirty: the first upload of a new
// GPU buffer is expected to copy all of [SceneBuffer.Bytes].
type SceneBuffer struct {
	data   [SceneBytes]byte
	shapes [MaxShapes]rmarch.Shape
	n      int
	// Dirty byte range [dirtyStart, dirtyEnd). Empty when dirtyStart >= dirtyEnd.
	dirtyStart int
	dirtyEnd   int
}

// NewSceneBuffer returns an empty scene with no shape selected and identity
// camera matrices.
func NewSceneBuffer() *SceneBuffer {
	sb := &SceneBuffer{}
	ident := ms3.ScalingMat4(ms3.Vec{X: 1, Y: 1, Z: 1})
	putMat4(sb.data[MatrixWorldOffset:], ident)
	putMat4(sb.data[ProjInvOffset:], ident)
	putInt32(sb.data[SelectedOffset:], -1)
	return sb
}

// Bytes returns the whole scene block. The returned slice aliases the
// buffer and must not be modified.
func (sb *SceneBuffer) Bytes() []byte { return sb.data[:] }

// NumShapes returns the number of shapes in the scene.
func (sb *SceneBuffer) NumShapes() int { return sb.n }

// Shape returns the i'th shape. It panics if i is out of range.
func (sb *SceneBuffer) Shape(i int) rmarch.Shape {
	if i < 0 || i >= sb.n {
		panic(ErrShapeIndex)
	}
	return sb.shapes[i]
}

// Shapes appends the scene's shapes to dst and returns the result.
func (sb *SceneBuffer) Shapes(dst []rmarch.Shape) []rmarch.Shape {
	return append(dst, sb.shapes[:sb.n]...)
}

// AddShape appends s to the scene and returns its index. If the scene is
// full the buffer is left untouched and an error wrapping [ErrCapacity] is returned.
func (sb *SceneBuffer) AddShape(s rmarch.Shape) (int, error) {
	if sb.n >= MaxShapes {
		return -1, fmt.Errorf("adding shape %d (%s): %w", sb.n, s.Type, ErrCapacity)
	}
	i := sb.n
	sb.putShape(i, s)
	sb.setNumShapes(i + 1)
	return i, nil
}

// SetShape replaces the i'th shape.
func (sb *SceneBuffer) SetShape(i int, s rmarch.Shape) error {
	if i < 0 || i >= sb.n {
		return fmt.Errorf("setting shape %d of %d: %w", i, sb.n, ErrShapeIndex)
	}
	sb.putShape(i, s)
	return nil
}

// SetShapes replaces all shapes of the scene. If there are more shapes than
// [MaxShapes] the buffer is left untouched and an error wrapping [ErrCapacity] is returned.
func (sb *SceneBuffer) SetShapes(shapes []rmarch.Shape) error {
	if len(shapes) > MaxShapes {
		return fmt.Errorf("setting %d shapes: %w", len(shapes), ErrCapacity)
	}
	for i := range shapes {
		sb.putShape(i, shapes[i])
	}
	sb.setNumShapes(len(shapes))
	return nil
}

// Truncate removes all shapes from index n onwards.
func (sb *SceneBuffer) Truncate(n int) error {
	if n < 0 || n > sb.n {
		return fmt.Errorf("truncating %d shapes to %d: %w", sb.n, n, ErrShapeIndex)
	}
	sb.setNumShapes(n)
	return nil
}

// SetCamera sets the camera to world matrix and the inverse projection matrix.
func (sb *SceneBuffer) SetCamera(invWorld, invProj ms3.Mat4) {
	putMat4(sb.data[MatrixWorldOffset:], invWorld)
	putMat4(sb.data[ProjInvOffset:], invProj)
	sb.markDirty(MatrixWorldOffset, ProjInvOffset+mat4Size)
}

// SetAmbient sets the ambient light color added to every lit surface.
func (sb *SceneBuffer) SetAmbient(c ms3.Vec) {
	putVec3(sb.data[AmbientOffset:], c)
	sb.markDirty(AmbientOffset, AmbientOffset+vec3Size)
}

// SetLight sets the scene light. Light vector and kind are contiguous and
// always written together.
func (sb *SceneBuffer) SetLight(l rmarch.Light) {
	putVec3(sb.data[LightOffset:], l.Vec())
	putInt32(sb.data[LightKindOffset:], int32(l.Kind()))
	sb.markDirty(LightOffset, LightKindOffset+int32Size)
}

// SetSelected sets the index of the highlighted shape. Negative values
// clear the selection.
func (sb *SceneBuffer) SetSelected(i int) {
	if i < 0 {
		i = -1
	}
	putInt32(sb.data[SelectedOffset:], int32(i))
	sb.markDirty(SelectedOffset, SelectedOffset+int32Size)
}

// Selected returns the index of the highlighted shape or -1.
func (sb *SceneBuffer) Selected() int {
	return int(int32(binary.LittleEndian.Uint32(sb.data[SelectedOffset:])))
}

// Dirty returns the byte range modified since the last flush.
func (sb *SceneBuffer) Dirty() (start, end int, ok bool) {
	if sb.dirtyStart >= sb.dirtyEnd {
		return 0, 0, false
	}
	return sb.dirtyStart, sb.dirtyEnd, true
}

// Invalidate marks the whole block dirty so the next flush uploads all of it.
func (sb *SceneBuffer) Invalidate() {
	sb.markDirty(0, SceneBytes)
}

// Flush uploads the dirty range, if any, and resets it. If the upload fails
// the range is marked dirty again so it is retried on the next flush.
func (sb *SceneBuffer) Flush(u Uploader) error {
	start, end, ok := sb.Dirty()
	if !ok {
		return nil
	}
	sb.dirtyStart, sb.dirtyEnd = 0, 0
	err := u.Upload(start, sb.data[start:end])
	if err != nil {
		sb.markDirty(start, end)
		return fmt.Errorf("uploading scene bytes [%d,%d): %w", start, end, err)
	}
	return nil
}

func (sb *SceneBuffer) putShape(i int, s rmarch.Shape) {
	off := ShapesOffset + i*rmarch.ShapeBytes
	s.Put(sb.data[off : off+rmarch.ShapeBytes])
	sb.shapes[i] = s
	sb.markDirty(off, off+rmarch.ShapeBytes)
}

func (sb *SceneBuffer) setNumShapes(n int) {
	sb.n = n
	putInt32(sb.data[NumShapesOffset:], int32(n))
	sb.markDirty(NumShapesOffset, NumShapesOffset+int32Size)
}

func (sb *SceneBuffer) markDirty(start, end int) {
	if sb.dirtyStart >= sb.dirtyEnd {
		sb.dirtyStart, sb.dirtyEnd = start, end
		return
	}
	sb.dirtyStart = min(sb.dirtyStart, start)
	sb.dirtyEnd = max(sb.dirtyEnd, end)
}

// putMat4 writes m in column-major order as GLSL expects.
func putMat4(b []byte, m ms3.Mat4) {
	_ = b[mat4Size-1]
	arr := m.Array()
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			putFloat32(b[(col*4+row)*float32Size:], arr[row*4+col])
		}
	}
}

func putVec3(b []byte, v ms3.Vec) {
	_ = b[vec3Size-1]
	putFloat32(b[0:], v.X)
	putFloat32(b[4:], v.Y)
	putFloat32(b[8:], v.Z)
}

func putFloat32(b []byte, v float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
}

func putInt32(b []byte, v int32) {
	binary.LittleEndian.PutUint32(b, uint32(v))
}
