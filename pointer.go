package sketch

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/gogpu/sketch/brush"
	"github.com/gogpu/sketch/geom"
	"github.com/gogpu/sketch/mesh"
)

// PointerState is the drawing state of a Pointer.
type PointerState int

const (
	// Idle pointers have no live line.
	Idle PointerState = iota
	// Drawing pointers are extending a live line.
	Drawing
)

// String returns the state name.
func (s PointerState) String() string {
	if s == Drawing {
		return "Drawing"
	}
	return "Idle"
}

// PointerOption configures a Pointer during creation.
type PointerOption func(*pointerOptions)

type pointerOptions struct {
	canvas   Canvas
	registry *brush.Registry
	clock    Clock
	batched  bool
	seed     func() int32
}

func defaultPointerOptions() pointerOptions {
	return pointerOptions{
		seed: rand.Int32,
	}
}

// WithPointerCanvas sets the canvas new lines are drawn in.
func WithPointerCanvas(c Canvas) PointerOption {
	return func(o *pointerOptions) {
		o.canvas = c
	}
}

// WithRegistry sets the generator registry. The default registry has the
// tube and ribbon generators.
func WithRegistry(r *brush.Registry) PointerOption {
	return func(o *pointerOptions) {
		o.registry = r
	}
}

// WithClock sets the clock that timestamps control points. The default is
// a SessionClock started when the pointer is created.
func WithClock(c Clock) PointerOption {
	return func(o *pointerOptions) {
		o.clock = c
	}
}

// WithBatching creates strokes as BatchedBrushStroke.
func WithBatching() PointerOption {
	return func(o *pointerOptions) {
		o.batched = true
	}
}

// WithSeedSource sets the function that picks a seed for each new line.
func WithSeedSource(f func() int32) PointerOption {
	return func(o *pointerOptions) {
		o.seed = f
	}
}

// liveLine is the stroke being drawn.
type liveLine struct {
	gen    brush.Generator
	canvas Canvas
}

// Pointer turns a stream of input poses into strokes. It holds the current
// brush settings and, while drawing, the live line.
//
// A Pointer is driven from one goroutine. RecreateLineFromMemory does not
// touch the live line and may be called concurrently for distinct strokes.
type Pointer struct {
	catalog  *brush.Catalog
	registry *brush.Registry
	clock    Clock
	batched  bool
	seed     func() int32

	canvas Canvas

	drawingEnabled bool
	line           *liveLine
	stream         ControlPointStream

	brush     *brush.Descriptor
	color     brush.Color
	size      float64
	group     GroupTag
	continued bool
}

// NewPointer returns an idle pointer using brushes from catalog. The first
// GUI brush of the catalog is selected at its minimum size.
func NewPointer(catalog *brush.Catalog, opts ...PointerOption) *Pointer {
	o := defaultPointerOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = brush.NewRegistry()
	}
	if o.clock == nil {
		o.clock = NewSessionClock()
	}
	p := &Pointer{
		catalog:  catalog,
		registry: o.registry,
		clock:    o.clock,
		batched:  o.batched,
		seed:     o.seed,
		canvas:   o.canvas,
		color:    brush.RGB(1, 1, 1),
	}
	if gui := catalog.GUIBrushes(); len(gui) > 0 {
		p.SetBrush(gui[0])
	}
	return p
}

// Catalog returns the brush catalog.
func (p *Pointer) Catalog() *brush.Catalog { return p.catalog }

// Canvas returns the canvas new lines are drawn in.
func (p *Pointer) Canvas() Canvas { return p.canvas }

// SetCanvas sets the canvas new lines are drawn in. A live line stays in
// its canvas.
func (p *Pointer) SetCanvas(c Canvas) { p.canvas = c }

// State reports whether the pointer is drawing.
func (p *Pointer) State() PointerState {
	if p.line != nil {
		return Drawing
	}
	return Idle
}

// CurrentBrush returns the selected brush.
func (p *Pointer) CurrentBrush() *brush.Descriptor { return p.brush }

// SetBrush selects desc and clamps the brush size to its range.
func (p *Pointer) SetBrush(desc *brush.Descriptor) {
	p.brush = desc
	if desc != nil {
		if p.size == 0 {
			p.size = desc.BrushSizeRange[0]
		}
		p.size = desc.ClampSize(p.size)
	}
}

// CurrentColor returns the selected color.
func (p *Pointer) CurrentColor() brush.Color { return p.color }

// SetColor selects c.
func (p *Pointer) SetColor(c brush.Color) { p.color = c }

// SetGroup sets the group tag of strokes drawn from now on.
func (p *Pointer) SetGroup(g GroupTag) { p.group = g }

// SetContinuesGroup marks the next stroke as part of the previous stroke's
// gesture. The mark is cleared once the stroke is finished.
func (p *Pointer) SetContinuesGroup(v bool) { p.continued = v }

// BrushSizeAbsolute returns the brush size in pointer space.
func (p *Pointer) BrushSizeAbsolute() float64 { return p.size }

// SetBrushSizeAbsolute sets the brush size, clamped to the brush's range.
func (p *Pointer) SetBrushSizeAbsolute(size float64) {
	if p.brush != nil {
		size = p.brush.ClampSize(size)
	}
	p.size = size
}

// BrushSize01 returns the brush size as a fraction of the brush's range.
// The mapping is linear in the square root of the size so that small
// brushes get more of the slider.
func (p *Pointer) BrushSize01() float64 {
	if p.brush == nil {
		return 0
	}
	lo := math.Sqrt(p.brush.BrushSizeRange[0])
	hi := math.Sqrt(p.brush.BrushSizeRange[1])
	if hi == lo {
		return 0
	}
	return (math.Sqrt(p.size) - lo) / (hi - lo)
}

// SetBrushSize01 sets the brush size from a fraction of the brush's range.
func (p *Pointer) SetBrushSize01(v float64) {
	if p.brush == nil {
		return
	}
	v = math.Max(0, math.Min(1, v))
	lo := math.Sqrt(p.brush.BrushSizeRange[0])
	hi := math.Sqrt(p.brush.BrushSizeRange[1])
	r := lo + (hi-lo)*v
	p.SetBrushSizeAbsolute(r * r)
}

// SetDrawingEnabled starts or stops drawing. The change takes effect on
// the next Tick.
func (p *Pointer) SetDrawingEnabled(v bool) { p.drawingEnabled = v }

// Tick feeds one input sample. xf is the pointer pose in scene space;
// its scale is ignored. A line is started when drawing becomes enabled and
// finished when it becomes disabled; the finished stroke is returned.
//
// A non-finite sample is rejected with ErrNonFinite and the line is left
// as it was.
func (p *Pointer) Tick(xf geom.TrTransform, pressure float64) (*Stroke, error) {
	switch {
	case p.drawingEnabled && p.line == nil:
		xfCS, err := p.toCanvas(p.canvas, xf)
		if err != nil {
			return nil, err
		}
		if err := p.CreateNewLine(p.canvas, xfCS, nil); err != nil {
			return nil, err
		}
		return nil, p.updateLine(xfCS, pressure)
	case p.drawingEnabled:
		xfCS, err := p.toCanvas(p.line.canvas, xf)
		if err != nil {
			return nil, err
		}
		return nil, p.updateLine(xfCS, pressure)
	case p.line != nil:
		return p.DetachLine(false)
	}
	return nil, nil
}

// toCanvas converts a scene-space pose into c's space. The pose's scale is
// forced to 1 first, so the result's scale is the stroke scale.
func (p *Pointer) toCanvas(c Canvas, xf geom.TrTransform) (geom.TrTransform, error) {
	if c == nil {
		return geom.TrTransform{}, ErrNoCanvas
	}
	if !xf.IsFinite() {
		return geom.TrTransform{}, fmt.Errorf("%w: pointer pose %v", ErrNonFinite, xf)
	}
	return geom.InvMul(c.Pose(), xf.WithScale(1)), nil
}

// CreateNewLine starts a live line in canvas at the canvas-space pose xf.
// desc overrides the current brush when non-nil.
func (p *Pointer) CreateNewLine(canvas Canvas, xf geom.TrTransform, desc *brush.Descriptor) error {
	if p.line != nil {
		return fmt.Errorf("%w: line already live", ErrInvalidOperation)
	}
	if canvas == nil {
		return ErrNoCanvas
	}
	if desc == nil {
		desc = p.brush
	}
	if desc == nil {
		return fmt.Errorf("%w: no brush selected", ErrInvalidOperation)
	}
	if !xf.IsValid() {
		return fmt.Errorf("%w: line start %v", ErrNonFinite, xf)
	}

	gen, err := p.registry.New(desc)
	if err != nil {
		return err
	}
	settings := brush.Settings{
		Color: desc.ClampColor(p.color),
		Size:  p.size,
		Seed:  p.seed(),
	}
	if err := gen.Init(desc, xf, settings); err != nil {
		return fmt.Errorf("create line: %w", err)
	}
	p.stream.Reset()
	p.line = &liveLine{gen: gen, canvas: canvas}
	return nil
}

// updateLine adds a canvas-space sample to the live line.
func (p *Pointer) updateLine(xf geom.TrTransform, pressure float64) error {
	cp := brush.ControlPoint{
		Pos:         xf.Translation,
		Orient:      xf.Rotation,
		Pressure:    pressure,
		TimestampMs: p.clock.NowMs(),
	}
	if !cp.IsFinite() {
		return fmt.Errorf("%w: control point %+v", ErrNonFinite, cp)
	}
	keep := p.line.gen.AddControlPoint(cp)
	p.stream.Record(cp, keep)
	return nil
}

// LiveMesh returns the mesh of the live line, or nil when idle.
func (p *Pointer) LiveMesh() *mesh.Mesh {
	if p.line == nil {
		return nil
	}
	return p.line.gen.Finalize()
}

// DetachLine ends the live line. With discard the line is dropped and no
// stroke is returned. Otherwise the geometry is finalized and attached to
// the line's canvas, and the new BrushStroke is returned.
func (p *Pointer) DetachLine(discard bool) (*Stroke, error) {
	line := p.line
	if line == nil {
		return nil, ErrNotDrawing
	}
	p.line = nil
	p.drawingEnabled = false
	if discard {
		Logger().Debug("sketch: discarded line", "points", p.stream.Len())
		p.stream.Reset()
		return nil, nil
	}

	cps := p.stream.Points()
	p.stream.Reset()
	settings := line.gen.Settings()
	desc := line.gen.Descriptor()
	s := NewStroke(StrokeData{
		BrushGUID:     desc.GUID,
		Color:         settings.Color,
		BrushSize:     settings.Size,
		BrushScale:    line.gen.StrokeScale(),
		Seed:          settings.Seed,
		ControlPoints: cps,
		Group:         p.group,
	})
	if p.continued {
		s.Flags |= FlagIsGroupContinue
		p.continued = false
	}

	g := newGeometry(line.gen.Finalize(), desc, settings.Color, cps, nil)
	g.Batched = p.batched
	if err := s.attachGeometry(line.canvas, g); err != nil {
		return nil, err
	}
	Logger().Debug("sketch: finished stroke",
		"stroke", s.GUID, "brush", desc.Name(), "points", len(cps),
		"triangles", g.Mesh.TriangleCount())
	return s, nil
}

// RecreateLineFromMemory builds geometry for a NotCreated stroke from its
// stored control points and attaches it to the stroke's canvas, or to the
// pointer's canvas when the stroke has none.
//
// Strokes whose brush is not in the catalog are skipped: the stroke stays
// NotCreated and the error is nil. The pointer's own brush settings are
// not changed.
func (p *Pointer) RecreateLineFromMemory(s *Stroke) error {
	if s == nil {
		return fmt.Errorf("%w: recreate nil stroke", ErrInvalidOperation)
	}
	if s.Type != NotCreated {
		return fmt.Errorf("%w: recreate %s stroke %s", ErrInvalidOperation, s.Type, s.GUID)
	}
	desc := p.catalog.Brush(s.BrushGUID)
	if desc == nil {
		Logger().Debug("sketch: skipping stroke with unknown brush",
			"stroke", s.GUID, "brush", s.BrushGUID)
		return nil
	}
	if len(s.ControlPoints) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyStroke, s.GUID)
	}
	canvas := s.Canvas()
	if canvas == nil {
		canvas = p.canvas
	}
	if canvas == nil {
		return ErrNoCanvas
	}

	xf := s.ControlPoints[0].Transform(s.BrushScale)
	if !xf.IsValid() {
		return fmt.Errorf("%w: stroke %s starts at %v", ErrNonFinite, s.GUID, xf)
	}
	gen, err := p.registry.New(desc)
	if err != nil {
		return err
	}
	settings := brush.Settings{
		Color:   s.Color,
		Size:    s.BrushSize,
		Seed:    s.Seed,
		Loading: true,
	}
	if err := gen.Init(desc, xf, settings); err != nil {
		return fmt.Errorf("recreate stroke %s: %w", s.GUID, err)
	}
	for i, cp := range s.ControlPoints {
		if s.dropped(i) {
			continue
		}
		gen.AddControlPoint(cp)
	}

	g := newGeometry(gen.Finalize(), desc, s.Color, s.ControlPoints, s.ControlPointsToDrop)
	g.Batched = p.batched
	return s.attachGeometry(canvas, g)
}
