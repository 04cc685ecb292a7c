package sketch

import (
	"fmt"
	"math"
	"slices"

	"github.com/google/uuid"

	"github.com/gogpu/sketch/brush"
	"github.com/gogpu/sketch/geom"
)

// StrokeType tells whether a stroke currently has geometry.
type StrokeType int

const (
	// NotCreated strokes have control points but no geometry. Their
	// canvas is the one they will be created in.
	NotCreated StrokeType = iota
	// BrushStroke strokes own a geometry object attached to a canvas.
	BrushStroke
	// BatchedBrushStroke strokes have geometry merged into a canvas batch.
	BatchedBrushStroke
)

// String returns the type name.
func (t StrokeType) String() string {
	switch t {
	case NotCreated:
		return "NotCreated"
	case BrushStroke:
		return "BrushStroke"
	case BatchedBrushStroke:
		return "BatchedBrushStroke"
	default:
		return fmt.Sprintf("StrokeType(%d)", int(t))
	}
}

// StrokeData is the persisted part of a stroke.
type StrokeData struct {
	GUID      uuid.UUID
	BrushGUID uuid.UUID
	Color     brush.Color
	// BrushSize is in pointer space.
	BrushSize float64
	// BrushScale converts pointer space to canvas space.
	BrushScale float64
	Seed       int32

	ControlPoints []brush.ControlPoint
	// ControlPointsToDrop has one entry per control point. Points marked
	// true are skipped when the geometry is rebuilt.
	ControlPointsToDrop []bool

	Group GroupTag
	Flags StrokeFlags
}

// clone returns a deep copy of d.
func (d *StrokeData) clone() StrokeData {
	out := *d
	out.ControlPoints = slices.Clone(d.ControlPoints)
	out.ControlPointsToDrop = slices.Clone(d.ControlPointsToDrop)
	return out
}

// Stroke is one brush stroke: its control points and brush parameters, and
// the geometry built from them when it has been created.
//
// A stroke is owned by one goroutine at a time.
type Stroke struct {
	StrokeData
	Type StrokeType

	intendedCanvas Canvas
	geometry       *Geometry
	saveCopy       *StrokeData
}

// NewStroke returns a NotCreated stroke holding data. A nil GUID is
// replaced by a fresh one, and the drop mask is resized to the control
// points.
func NewStroke(data StrokeData) *Stroke {
	if data.GUID == uuid.Nil {
		data.GUID = uuid.New()
	}
	if data.BrushScale == 0 {
		data.BrushScale = 1
	}
	data.ControlPointsToDrop = resizeMask(data.ControlPointsToDrop, len(data.ControlPoints))
	return &Stroke{StrokeData: data}
}

func resizeMask(mask []bool, n int) []bool {
	if len(mask) == n {
		return mask
	}
	out := make([]bool, n)
	copy(out, mask)
	return out
}

// Clone returns a NotCreated copy of s in the same canvas. The copy gets a
// new GUID unless keepGUID is set.
func (s *Stroke) Clone(keepGUID bool) *Stroke {
	c := &Stroke{
		StrokeData:     s.StrokeData.clone(),
		intendedCanvas: s.Canvas(),
	}
	if !keepGUID {
		c.GUID = uuid.New()
	}
	return c
}

// Canvas returns the canvas of the stroke's geometry, or for a NotCreated
// stroke the canvas it will be created in.
func (s *Stroke) Canvas() Canvas {
	if s.geometry != nil {
		return s.geometry.Canvas()
	}
	return s.intendedCanvas
}

// Geometry returns the stroke's geometry, or nil when NotCreated.
func (s *Stroke) Geometry() *Geometry { return s.geometry }

// HeadTimestampMs returns the timestamp of the first control point.
func (s *Stroke) HeadTimestampMs() uint32 {
	if len(s.ControlPoints) == 0 {
		return 0
	}
	return s.ControlPoints[0].TimestampMs
}

// TailTimestampMs returns the timestamp of the last control point.
func (s *Stroke) TailTimestampMs() uint32 {
	if len(s.ControlPoints) == 0 {
		return 0
	}
	return s.ControlPoints[len(s.ControlPoints)-1].TimestampMs
}

// dropped reports whether control point i is masked out.
func (s *Stroke) dropped(i int) bool {
	return i < len(s.ControlPointsToDrop) && s.ControlPointsToDrop[i]
}

// SetControlPoints replaces the control points and clears the drop mask.
// The geometry is not rebuilt until the next Recreate.
func (s *Stroke) SetControlPoints(cps []brush.ControlPoint) {
	s.ControlPoints = cps
	s.ControlPointsToDrop = make([]bool, len(cps))
	s.InvalidateCopy()
}

// CopyForSave returns a frozen copy of the persisted data for a background
// writer. The copy is cached until the stroke changes.
func (s *Stroke) CopyForSave() *StrokeData {
	if s.saveCopy == nil {
		c := s.StrokeData.clone()
		s.saveCopy = &c
	}
	return s.saveCopy
}

// InvalidateCopy discards the cached save copy. Code that edits the
// exported fields directly must call it.
func (s *Stroke) InvalidateCopy() { s.saveCopy = nil }

// Uncreate destroys the geometry and makes the stroke NotCreated in the
// canvas the geometry was in.
func (s *Stroke) Uncreate() {
	if s.geometry != nil {
		s.intendedCanvas = s.geometry.Canvas()
		s.geometry.detach()
		s.geometry.stroke = nil
		s.geometry = nil
	}
	s.Type = NotCreated
}

// attachGeometry makes g the stroke's geometry and attaches it to c.
func (s *Stroke) attachGeometry(c Canvas, g *Geometry) error {
	if err := g.attach(c); err != nil {
		return fmt.Errorf("attach stroke %s: %w", s.GUID, err)
	}
	g.stroke = s
	s.geometry = g
	s.intendedCanvas = nil
	s.Type = BrushStroke
	if g.Batched {
		s.Type = BatchedBrushStroke
	}
	return nil
}

// RecreateOption configures Stroke.Recreate.
type RecreateOption func(*recreateOptions)

type recreateOptions struct {
	left          *geom.TrTransform
	canvas        Canvas
	absoluteScale bool
}

// WithLeftTransform applies xf to the control points before rebuilding.
func WithLeftTransform(xf geom.TrTransform) RecreateOption {
	return func(o *recreateOptions) {
		o.left = &xf
	}
}

// WithCanvas moves the stroke to c.
func WithCanvas(c Canvas) RecreateOption {
	return func(o *recreateOptions) {
		o.canvas = c
	}
}

// WithAbsoluteScale multiplies the brush scale by the magnitude of the left
// transform's scale.
func WithAbsoluteScale() RecreateOption {
	return func(o *recreateOptions) {
		o.absoluteScale = true
	}
}

// Recreate rebuilds the stroke's geometry through p.
//
// With a left transform, or when the stroke is NotCreated, the geometry is
// destroyed, the stroke is moved to the requested canvas, the transform is
// applied to the control points and the geometry is built again. With only
// a canvas the existing geometry is reparented. Without either on a created
// stroke Recreate returns ErrNothingToDo.
func (s *Stroke) Recreate(p *Pointer, opts ...RecreateOption) error {
	var o recreateOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.left != nil && !o.left.IsFinite() {
		return fmt.Errorf("%w: recreate stroke %s with %v", ErrNonFinite, s.GUID, *o.left)
	}

	if o.left != nil || s.Type == NotCreated {
		if p == nil {
			return fmt.Errorf("%w: recreate stroke %s without a pointer", ErrInvalidOperation, s.GUID)
		}
		s.Uncreate()
		if o.canvas != nil {
			if err := s.SetParent(o.canvas); err != nil {
				return err
			}
		}
		if o.left != nil {
			if err := s.leftTransform(*o.left, o.absoluteScale); err != nil {
				return err
			}
		}
		return p.RecreateLineFromMemory(s)
	}
	if o.canvas != nil {
		return s.SetParent(o.canvas)
	}
	return fmt.Errorf("%w: recreate stroke %s", ErrNothingToDo, s.GUID)
}

// LeftTransformControlPoints applies left to every control point and scales
// the brush by left's scale. The geometry is not touched.
func (s *Stroke) LeftTransformControlPoints(left geom.TrTransform) error {
	return s.leftTransform(left, false)
}

func (s *Stroke) leftTransform(left geom.TrTransform, absoluteScale bool) error {
	if !left.IsFinite() || left.Scale == 0 {
		return fmt.Errorf("%w: left transform %v", ErrNonFinite, left)
	}
	cps := make([]brush.ControlPoint, len(s.ControlPoints))
	for i, cp := range s.ControlPoints {
		xf := left.Mul(geom.FromTR(cp.Pos, cp.Orient))
		cp.Pos = xf.Translation
		cp.Orient = xf.Rotation
		cps[i] = cp
	}
	s.ControlPoints = cps

	scale := left.Scale
	if absoluteScale {
		scale = math.Abs(scale)
	}
	s.BrushScale *= scale
	s.InvalidateCopy()
	return nil
}

// SetParent moves the stroke to c, keeping its canvas-local position. A
// created stroke has its geometry detached from the old canvas and attached
// to c.
func (s *Stroke) SetParent(c Canvas) error {
	if c == nil {
		return ErrNoCanvas
	}
	if c == s.Canvas() {
		return nil
	}
	if s.geometry == nil {
		s.intendedCanvas = c
		return nil
	}
	prev := s.geometry.Canvas()
	s.geometry.detach()
	if err := s.geometry.attach(c); err != nil {
		if prev != nil {
			if rerr := s.geometry.attach(prev); rerr != nil {
				Logger().Warn("sketch: stroke lost its canvas", "stroke", s.GUID, "err", rerr)
			}
		}
		return fmt.Errorf("reparent stroke %s: %w", s.GUID, err)
	}
	return nil
}

// SetParentKeepWorldPosition moves the stroke to c without moving it in the
// scene. The control points are re-expressed in c's space, by override when
// given or else by the transform between the two canvas poses.
//
// When that transform is the identity, or the stroke is NotCreated, the
// points are updated in place and the geometry is only reparented.
// Otherwise the geometry is rebuilt through p.
func (s *Stroke) SetParentKeepWorldPosition(p *Pointer, c Canvas, override *geom.TrTransform) error {
	if c == nil {
		return ErrNoCanvas
	}
	prev := s.Canvas()
	if c == prev {
		return nil
	}

	var left geom.TrTransform
	switch {
	case override != nil:
		left = *override
	case prev != nil:
		left = geom.InvMul(c.Pose(), prev.Pose())
	default:
		left = geom.Identity()
	}
	if !left.IsFinite() {
		return fmt.Errorf("%w: reparent stroke %s with %v", ErrNonFinite, s.GUID, left)
	}

	if s.Type == NotCreated || left.IsIdentity() {
		if err := s.SetParent(c); err != nil {
			return err
		}
		return s.leftTransform(left, false)
	}

	if p == nil {
		return fmt.Errorf("%w: rebuild stroke %s without a pointer", ErrInvalidOperation, s.GUID)
	}
	s.Uncreate()
	s.intendedCanvas = c
	if err := s.leftTransform(left, false); err != nil {
		return err
	}
	return p.RecreateLineFromMemory(s)
}

// Hide shows or hides the stroke's geometry.
func (s *Stroke) Hide(hide bool) error {
	if s.geometry == nil {
		return fmt.Errorf("%w: hide stroke %s", ErrNotCreated, s.GUID)
	}
	s.geometry.SetHidden(hide)
	return nil
}

// Simplify marks interior control points whose removal moves the polyline
// by less than tolerance, and returns how many points are marked. The
// first and last points are always kept. The geometry is not rebuilt.
func (s *Stroke) Simplify(tolerance float64) int {
	n := len(s.ControlPoints)
	mask := make([]bool, n)
	if n > 2 {
		for i := 1; i < n-1; i++ {
			mask[i] = true
		}
		type span struct{ lo, hi int }
		stack := []span{{0, n - 1}}
		for len(stack) > 0 {
			sp := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			far, farDist := -1, tolerance
			for i := sp.lo + 1; i < sp.hi; i++ {
				d := segmentDistance(s.ControlPoints[i].Pos, s.ControlPoints[sp.lo].Pos, s.ControlPoints[sp.hi].Pos)
				if d >= farDist {
					far, farDist = i, d
				}
			}
			if far < 0 {
				continue
			}
			mask[far] = false
			stack = append(stack, span{sp.lo, far}, span{far, sp.hi})
		}
	}

	dropped := 0
	for _, d := range mask {
		if d {
			dropped++
		}
	}
	s.ControlPointsToDrop = mask
	s.InvalidateCopy()
	return dropped
}

// segmentDistance returns the distance from p to the segment ab.
func segmentDistance(p, a, b geom.Vec3) float64 {
	ab := b.Sub(a)
	l2 := ab.LenSqr()
	if l2 == 0 {
		return p.Sub(a).Len()
	}
	t := p.Sub(a).Dot(ab) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Sub(a.Add(ab.Mul(t))).Len()
}
