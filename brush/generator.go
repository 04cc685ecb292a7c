package brush

import (
	"fmt"
	"math"

	"github.com/gogpu/sketch/geom"
	"github.com/gogpu/sketch/mesh"
)

// MinRadius is the smallest radius a generator emits. Shape modifiers that
// reach zero, such as the tip of a taper, are clamped to it.
const MinRadius = 1e-5

// Settings are the per-stroke parameters a generator is seeded with.
type Settings struct {
	Color Color
	// Size is the brush size in pointer space.
	Size float64
	Seed int32
	// Loading is set when the stroke is rebuilt from stored control points
	// rather than drawn live.
	Loading bool
}

// Generator turns a sequence of control points into a triangle mesh.
//
// Points are fed one at a time through AddControlPoint; the return value
// reports whether the point became a permanent knot of the stroke. Finalize
// may be called any number of times and returns nil while the stroke has
// fewer than two knots.
//
// A Generator is owned by one stroke and is not safe for concurrent use.
type Generator interface {
	// Init prepares the generator for a new stroke. xf is the pose of the
	// first sample in canvas space; its scale is the stroke scale.
	Init(desc *Descriptor, xf geom.TrTransform, s Settings) error

	// AddControlPoint adds a canvas-space sample and reports whether it
	// created a new knot.
	AddControlPoint(cp ControlPoint) bool

	// ShouldAddControlPoint reports whether a sample at pos would become
	// a knot. It does not change the generator.
	ShouldAddControlPoint(pos geom.Vec3, pressure01 float64) bool

	// Finalize builds the mesh for the knots added so far.
	Finalize() *mesh.Mesh

	// StrokeScale is the ratio of canvas-local units to pointer units.
	StrokeScale() float64

	// BaseRadiusLS is the unmodulated radius in canvas-local units.
	BaseRadiusLS() float64

	// SpawnInterval is the canvas-local distance a sample must travel from
	// the previous knot to become a knot itself, at the given pressure.
	SpawnInterval(pressure01 float64) float64

	Descriptor() *Descriptor
	Settings() Settings

	// Knots returns the knots, the trailing provisional one included.
	Knots() []ControlPoint

	// Reset drops all knots and the built mesh. Init must be called
	// before the generator is used again.
	Reset()
}

// knotStrip holds the state shared by the tube and ribbon generators.
//
// Knots follow the same keeper rule as the control point stream: the
// newest knot is provisional until a sample lands at least SpawnInterval
// away from the last permanent knot.
type knotStrip struct {
	desc       *Descriptor
	settings   Settings
	scale      float64
	knots      []ControlPoint
	lastKeeper bool

	built *mesh.Mesh
	dirty bool
}

func (s *knotStrip) init(desc *Descriptor, xf geom.TrTransform, st Settings) error {
	if desc == nil {
		return ErrNilDescriptor
	}
	if !xf.IsValid() {
		return fmt.Errorf("%w: %v", ErrInvalidTransform, xf)
	}
	if !(st.Size > 0) || math.IsInf(st.Size, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidRadius, st.Size)
	}
	s.desc = desc
	s.settings = st
	s.scale = xf.Scale
	s.knots = s.knots[:0]
	s.lastKeeper = false
	s.built = nil
	s.dirty = true
	return nil
}

func (s *knotStrip) StrokeScale() float64    { return s.scale }
func (s *knotStrip) BaseRadiusLS() float64   { return s.settings.Size * s.scale }
func (s *knotStrip) Descriptor() *Descriptor { return s.desc }
func (s *knotStrip) Settings() Settings      { return s.settings }

func (s *knotStrip) Knots() []ControlPoint {
	return append([]ControlPoint(nil), s.knots...)
}

func (s *knotStrip) SpawnInterval(pressure01 float64) float64 {
	return s.desc.SolidMinLengthMeters * s.scale * s.desc.PressureSize(pressure01)
}

func (s *knotStrip) Reset() {
	s.desc = nil
	s.knots = s.knots[:0]
	s.lastKeeper = false
	s.built = nil
	s.dirty = false
}

// anchor returns the knot new samples are measured from: the last knot if
// it is permanent, else the one before the provisional knot.
func (s *knotStrip) anchor() ControlPoint {
	n := len(s.knots)
	if !s.lastKeeper && n >= 2 {
		return s.knots[n-2]
	}
	return s.knots[n-1]
}

func (s *knotStrip) ShouldAddControlPoint(pos geom.Vec3, pressure01 float64) bool {
	if s.desc == nil {
		return false
	}
	if len(s.knots) == 0 {
		return true
	}
	return pos.Sub(s.anchor().Pos).Len() >= s.SpawnInterval(pressure01)
}

func (s *knotStrip) AddControlPoint(cp ControlPoint) bool {
	if !cp.IsFinite() {
		Logger().Debug("brush: dropping non-finite control point")
		return false
	}
	n := len(s.knots)
	s.dirty = true
	if n == 0 {
		s.knots = append(s.knots, cp)
		s.lastKeeper = true
		return true
	}
	keep := cp.Pos.Sub(s.anchor().Pos).Len() >= s.SpawnInterval(cp.Pressure)
	if s.lastKeeper {
		s.knots = append(s.knots, cp)
	} else {
		s.knots[n-1] = cp
	}
	s.lastKeeper = keep
	return keep
}

// radius returns the modulated radius of knot i at stroke position t and
// the offset of its ring along the knot's local +Y axis.
func (s *knotStrip) radius(i int, t float64) (r, lift float64) {
	cp := s.knots[i]
	base := s.BaseRadiusLS() * s.desc.PressureSize(cp.Pressure)
	r = base * shapeScale(s.desc, t)
	if s.desc.ShapeModifier == ShapePetal {
		lift = math.Pow(t, s.desc.PetalDisplacementExponent) *
			s.desc.PetalDisplacementAmount * clamp01(cp.Pressure) * base
	}
	return math.Max(r, MinRadius), lift
}

// flipped reports whether the segment from knot i to i+1 travels against
// knot i's forward axis, which turns the swept surface inside out.
func (s *knotStrip) flipped(i int) bool {
	d := s.knots[i+1].Pos.Sub(s.knots[i].Pos)
	return s.knots[i].Orient.Rotate(geom.AxisZ).Dot(d) < 0
}

// knotT returns the normalized position in [0, 1] of every knot along the
// stroke. It is the knot index over n-1, or the chord length over the
// total length when the UV style is distance-based. The value drives both
// the shape modifier and the v texture coordinate.
func (s *knotStrip) knotT() []float64 {
	n := len(s.knots)
	v := make([]float64, n)
	if n < 2 {
		return v
	}
	if s.desc.UVStyle == UVDistance {
		for i := 1; i < n; i++ {
			v[i] = v[i-1] + s.knots[i].Pos.Sub(s.knots[i-1].Pos).Len()
		}
		if total := v[n-1]; total > 0 {
			for i := range v {
				v[i] /= total
			}
			return v
		}
	}
	for i := range v {
		v[i] = float64(i) / float64(n-1)
	}
	return v
}
