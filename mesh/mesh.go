// Package mesh holds the triangle meshes produced by brush generators and
// the GPU-facing description of their vertex data.
package mesh

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gogpu/sketch/geom"
)

// Validation errors.
var (
	ErrAttributeMismatch = errors.New("mesh: attribute arrays differ in length")
	ErrIndexOutOfRange   = errors.New("mesh: index out of range")
	ErrNotTriangles      = errors.New("mesh: index count is not a multiple of 3")
	ErrNonFinite         = errors.New("mesh: non-finite vertex data")
)

// Mesh is an indexed triangle list. Normals and UVs are per vertex and
// parallel to Positions. Triangles are wound counter-clockwise when seen
// from the side their normals point to.
type Mesh struct {
	Positions []geom.Vec3
	Normals   []geom.Vec3
	UVs       []mgl64.Vec2
	Indices   []uint32
}

// New returns an empty mesh with room for the given number of vertices
// and indices.
func New(vertices, indices int) *Mesh {
	return &Mesh{
		Positions: make([]geom.Vec3, 0, vertices),
		Normals:   make([]geom.Vec3, 0, vertices),
		UVs:       make([]mgl64.Vec2, 0, vertices),
		Indices:   make([]uint32, 0, indices),
	}
}

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(pos, normal geom.Vec3, uv mgl64.Vec2) uint32 {
	m.Positions = append(m.Positions, pos)
	m.Normals = append(m.Normals, normal)
	m.UVs = append(m.UVs, uv)
	return uint32(len(m.Positions) - 1)
}

// AddTriangle appends one triangle.
func (m *Mesh) AddTriangle(a, b, c uint32) {
	m.Indices = append(m.Indices, a, b, c)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	if m == nil {
		return 0
	}
	return len(m.Positions)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	if m == nil {
		return 0
	}
	return len(m.Indices) / 3
}

// Triangle returns the vertex indices of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c uint32) {
	return m.Indices[3*i], m.Indices[3*i+1], m.Indices[3*i+2]
}

// FaceNormal returns the unit geometric normal of triangle i, derived from
// its winding. A degenerate triangle yields the zero vector.
func (m *Mesh) FaceNormal(i int) geom.Vec3 {
	a, b, c := m.Triangle(i)
	pa, pb, pc := m.Positions[a], m.Positions[b], m.Positions[c]
	n := pb.Sub(pa).Cross(pc.Sub(pa))
	return geom.SafeNormalize(n, geom.Vec3{})
}

// Bounds returns the axis-aligned bounding box of the vertices.
// An empty mesh returns ok == false.
func (m *Mesh) Bounds() (lo, hi geom.Vec3, ok bool) {
	if m.VertexCount() == 0 {
		return lo, hi, false
	}
	lo, hi = m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		for k := range 3 {
			lo[k] = math.Min(lo[k], p[k])
			hi[k] = math.Max(hi[k], p[k])
		}
	}
	return lo, hi, true
}

// Validate checks that the mesh is well formed and free of NaN or Inf.
func (m *Mesh) Validate() error {
	n := len(m.Positions)
	if len(m.Normals) != n || len(m.UVs) != n {
		return fmt.Errorf("%w: %d positions, %d normals, %d uvs",
			ErrAttributeMismatch, n, len(m.Normals), len(m.UVs))
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d", ErrNotTriangles, len(m.Indices))
	}
	for i, idx := range m.Indices {
		if int(idx) >= n {
			return fmt.Errorf("%w: index %d is %d, vertex count %d", ErrIndexOutOfRange, i, idx, n)
		}
	}
	for i := range m.Positions {
		if !geom.VecFinite(m.Positions[i]) || !geom.VecFinite(m.Normals[i]) {
			return fmt.Errorf("%w: vertex %d", ErrNonFinite, i)
		}
	}
	return nil
}

// Clone returns a deep copy of m.
func (m *Mesh) Clone() *Mesh {
	if m == nil {
		return nil
	}
	return &Mesh{
		Positions: append([]geom.Vec3(nil), m.Positions...),
		Normals:   append([]geom.Vec3(nil), m.Normals...),
		UVs:       append([]mgl64.Vec2(nil), m.UVs...),
		Indices:   append([]uint32(nil), m.Indices...),
	}
}

// Transformed returns a copy of m with xf applied to positions and normals.
func (m *Mesh) Transformed(xf geom.TrTransform) *Mesh {
	out := m.Clone()
	if out == nil {
		return nil
	}
	for i := range out.Positions {
		out.Positions[i] = xf.MultiplyPoint(out.Positions[i])
		out.Normals[i] = xf.MultiplyNormal(out.Normals[i])
	}
	return out
}

// Append adds the vertices and triangles of other to m, rebasing indices.
// It is how several strokes are merged into one batch.
func (m *Mesh) Append(other *Mesh) {
	if other == nil {
		return
	}
	base := uint32(len(m.Positions))
	m.Positions = append(m.Positions, other.Positions...)
	m.Normals = append(m.Normals, other.Normals...)
	m.UVs = append(m.UVs, other.UVs...)
	for _, idx := range other.Indices {
		m.Indices = append(m.Indices, idx+base)
	}
}
