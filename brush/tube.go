package brush

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gogpu/sketch/geom"
	"github.com/gogpu/sketch/mesh"
)

// DefaultRadialSegments is the number of vertices per ring of a round tube.
const DefaultRadialSegments = 8

// TubeOption configures a Tube.
type TubeOption func(*Tube)

// WithRadialSegments sets the vertex count of round rings. Values below 3
// are ignored. Square rings always have 8 vertices.
func WithRadialSegments(k int) TubeOption {
	return func(t *Tube) {
		if k >= 3 {
			t.segments = k
		}
	}
}

// Tube sweeps a round or square cross-section along the knots of a
// stroke. Each knot contributes one ring, rotated by the knot's
// orientation and centered on its position; consecutive rings are joined
// by quads split into two triangles.
type Tube struct {
	knotStrip
	segments int
}

var _ Generator = (*Tube)(nil)

// NewTube returns a tube generator.
func NewTube(opts ...TubeOption) *Tube {
	t := &Tube{segments: DefaultRadialSegments}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Init implements Generator.
func (t *Tube) Init(desc *Descriptor, xf geom.TrTransform, s Settings) error {
	return t.init(desc, xf, s)
}

func (t *Tube) ring() []ringPoint {
	if t.desc.CrossSection == CrossSectionSquare {
		return squareRing()
	}
	return roundRing(t.segments)
}

// Finalize implements Generator. The mesh is rebuilt only when knots
// changed since the previous call.
func (t *Tube) Finalize() *mesh.Mesh {
	n := len(t.knots)
	if n < 2 {
		return nil
	}
	if !t.dirty && t.built != nil {
		return t.built
	}

	ring := t.ring()
	k := len(ring)
	vs := t.knotT()
	m := mesh.New(n*k, (n-1)*k*6)

	for i, cp := range t.knots {
		r, lift := t.radius(i, vs[i])
		for j, rp := range ring {
			local := geom.Vec3{rp.pos[0] * r, rp.pos[1]*r + lift, 0}
			normal := geom.Vec3{rp.normal[0], rp.normal[1], 0}
			m.AddVertex(
				cp.Orient.Rotate(local).Add(cp.Pos),
				cp.Orient.Rotate(normal),
				mgl64.Vec2{float64(j) / float64(k), vs[i]},
			)
		}
	}

	// With a = (ring i, seg j), b = (ring i+1, seg j), c = (ring i, seg j+1)
	// and d = (ring i+1, seg j+1), the quads (a,d,b) (a,c,d) face outward
	// when the ring travels along its knot's +Z.
	for i := 0; i < n-1; i++ {
		flip := t.flipped(i)
		for j := 0; j < k; j++ {
			jn := (j + 1) % k
			a := uint32(i*k + j)
			b := uint32((i+1)*k + j)
			c := uint32(i*k + jn)
			d := uint32((i+1)*k + jn)
			if flip {
				m.AddTriangle(a, b, d)
				m.AddTriangle(a, d, c)
			} else {
				m.AddTriangle(a, d, b)
				m.AddTriangle(a, c, d)
			}
		}
	}

	t.built = m
	t.dirty = false
	return m
}
