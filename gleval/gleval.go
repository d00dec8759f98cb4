// Package gleval evaluates ray marching scenes in batches on the CPU and
// manages the GPU buffer the scene block is uploaded to.
package gleval

import (
	"errors"
	"slices"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
)

// SDF3 implements a 3D signed distance field in vectorized form.
type SDF3 interface {
	// Evaluate evaluates the signed distance field over pos positions.
	// dist and pos must be of same length. Resulting distances are stored
	// in dist.
	Evaluate(pos []ms3.Vec, dist []float32) error
	// Bounds returns the SDF's bounding box such that all of the shape is contained within.
	Bounds() ms3.Box
}

// ColorSDF3 is an [SDF3] that also reports the surface color at each position.
type ColorSDF3 interface {
	SDF3
	// EvaluateColor is like Evaluate and also stores the field color at each position in col.
	EvaluateColor(pos []ms3.Vec, dist []float32, col []ms3.Vec) error
}

var (
	errEmptyBuffers         = errors.New("empty buffers")
	errMismatchBufferLength = errors.New("position and distance buffer length mismatch")
	errNilSDF               = errors.New("nil SDF3")
)

// NormalEstimator computes unit surface normals by central differences.
// The six samples around every position are evaluated in one batch. Buffers
// are kept between calls so a NormalEstimator must not be used concurrently.
type NormalEstimator struct {
	pos  []ms3.Vec
	dist []float32
}

// Normals stores in normals the unit gradient of s at each position, using
// samples step apart along each axis. Where the gradient vanishes the zero
// vector is stored.
func (ne *NormalEstimator) Normals(s SDF3, pos, normals []ms3.Vec, step float32) error {
	h := step / 2
	if h <= 0 {
		return errors.New("invalid step")
	} else if len(pos) != len(normals) {
		return errors.New("length of position must match length of normals")
	} else if s == nil {
		return errNilSDF
	} else if len(pos) == 0 {
		return errEmptyBuffers
	}
	n := 6 * len(pos)
	ne.pos = slices.Grow(ne.pos[:0], n)[:n]
	ne.dist = slices.Grow(ne.dist[:0], n)[:n]
	offsets := [3]ms3.Vec{{X: h}, {Y: h}, {Z: h}}
	for i, p := range pos {
		sample := ne.pos[6*i : 6*i+6]
		for axis, off := range offsets {
			sample[2*axis] = ms3.Add(p, off)
			sample[2*axis+1] = ms3.Sub(p, off)
		}
	}
	err := s.Evaluate(ne.pos, ne.dist)
	if err != nil {
		return err
	}
	for i := range normals {
		d := ne.dist[6*i : 6*i+6]
		g := ms3.Vec{X: d[0] - d[1], Y: d[2] - d[3], Z: d[4] - d[5]}
		if norm := ms3.Norm(g); norm > 0 {
			g = ms3.Scale(1/norm, g)
		}
		normals[i] = g
	}
	return nil
}

// GridCache wraps an SDF3 and snaps positions to a cubic grid. The distance of
// a cell is evaluated once at its center and shared by every position that
// falls in the cell, so results do not depend on query order.
type GridCache struct {
	sdf   SDF3
	cell  float32
	m     map[[3]int32]float32
	keys  [][3]int32
	pend  map[[3]int32]struct{}
	cells [][3]int32
	seek  []ms3.Vec
	found []float32
	hits  uint64
	evals uint64
}

// Reset sets the wrapped SDF3 and the cell size. Cached distances and
// statistics are discarded while buffers are kept for reuse.
func (gc *GridCache) Reset(sdf SDF3, cellSize float32) error {
	if !(cellSize > 0) {
		return errors.New("cell size must be positive")
	} else if sdf == nil {
		return errNilSDF
	}
	if gc.m == nil {
		gc.m = make(map[[3]int32]float32)
		gc.pend = make(map[[3]int32]struct{})
	}
	clear(gc.m)
	gc.sdf = sdf
	gc.cell = cellSize
	gc.hits = 0
	gc.evals = 0
	return nil
}

// Hits returns how many positions were answered without evaluating the
// wrapped SDF3 since the last Reset.
func (gc *GridCache) Hits() uint64 { return gc.hits }

// Evaluations returns how many positions were evaluated since the last Reset,
// cached or not.
func (gc *GridCache) Evaluations() uint64 { return gc.evals }

func (gc *GridCache) key(p ms3.Vec) [3]int32 {
	inv := 1 / gc.cell
	return [3]int32{
		int32(math32.Floor(p.X * inv)),
		int32(math32.Floor(p.Y * inv)),
		int32(math32.Floor(p.Z * inv)),
	}
}

func (gc *GridCache) center(k [3]int32) ms3.Vec {
	return ms3.Vec{
		X: (float32(k[0]) + 0.5) * gc.cell,
		Y: (float32(k[1]) + 0.5) * gc.cell,
		Z: (float32(k[2]) + 0.5) * gc.cell,
	}
}

// Evaluate implements [SDF3]. Cells missing from the cache are evaluated in a
// single batch.
func (gc *GridCache) Evaluate(pos []ms3.Vec, dist []float32) error {
	if gc.sdf == nil {
		return errNilSDF
	} else if len(pos) != len(dist) {
		return errMismatchBufferLength
	} else if len(pos) == 0 {
		return errEmptyBuffers
	}
	gc.keys = gc.keys[:0]
	gc.cells = gc.cells[:0]
	gc.seek = gc.seek[:0]
	clear(gc.pend)
	for _, p := range pos {
		k := gc.key(p)
		gc.keys = append(gc.keys, k)
		if _, ok := gc.m[k]; ok {
			continue
		} else if _, ok := gc.pend[k]; ok {
			continue
		}
		gc.pend[k] = struct{}{}
		gc.cells = append(gc.cells, k)
		gc.seek = append(gc.seek, gc.center(k))
	}
	if len(gc.seek) > 0 {
		gc.found = slices.Grow(gc.found[:0], len(gc.seek))[:len(gc.seek)]
		err := gc.sdf.Evaluate(gc.seek, gc.found)
		if err != nil {
			return err
		}
		for i, k := range gc.cells {
			gc.m[k] = gc.found[i]
		}
	}
	for i, k := range gc.keys {
		dist[i] = gc.m[k]
	}
	gc.evals += uint64(len(pos))
	gc.hits += uint64(len(pos) - len(gc.seek))
	return nil
}

// Bounds returns the bounds of the wrapped SDF3.
func (gc *GridCache) Bounds() ms3.Box {
	return gc.sdf.Bounds()
}
