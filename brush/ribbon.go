package brush

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gogpu/sketch/geom"
	"github.com/gogpu/sketch/mesh"
)

// Ribbon extrudes a flat strip along the knots' right axis. The strip is
// twice the radius wide and faces each knot's local +Y.
type Ribbon struct {
	knotStrip
}

var _ Generator = (*Ribbon)(nil)

// NewRibbon returns a ribbon generator.
func NewRibbon() *Ribbon { return &Ribbon{} }

// Init implements Generator.
func (g *Ribbon) Init(desc *Descriptor, xf geom.TrTransform, s Settings) error {
	return g.init(desc, xf, s)
}

// Finalize implements Generator.
func (g *Ribbon) Finalize() *mesh.Mesh {
	n := len(g.knots)
	if n < 2 {
		return nil
	}
	if !g.dirty && g.built != nil {
		return g.built
	}

	vs := g.knotT()
	m := mesh.New(2*n, (n-1)*6)
	for i, cp := range g.knots {
		r, lift := g.radius(i, vs[i])
		right := cp.Orient.Rotate(geom.AxisX).Mul(r)
		up := cp.Orient.Rotate(geom.AxisY)
		center := cp.Pos.Add(up.Mul(lift))
		m.AddVertex(center.Add(right), up, mgl64.Vec2{0, vs[i]})
		m.AddVertex(center.Sub(right), up, mgl64.Vec2{1, vs[i]})
	}
	for i := 0; i < n-1; i++ {
		a0, a1 := uint32(2*i), uint32(2*i+1)
		b0, b1 := a0+2, a1+2
		if g.flipped(i) {
			m.AddTriangle(a0, b0, a1)
			m.AddTriangle(a1, b0, b1)
		} else {
			m.AddTriangle(a0, a1, b0)
			m.AddTriangle(a1, b1, b0)
		}
	}

	g.built = m
	g.dirty = false
	return m
}
