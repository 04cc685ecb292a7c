package sketch

import (
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/gogpu/sketch/brush"
	"github.com/gogpu/sketch/geom"
)

func TestPointerStateTransitions(t *testing.T) {
	p, canvas, _ := testPointer(t)
	if p.State() != Idle {
		t.Fatalf("new pointer state = %v", p.State())
	}
	if s, err := p.Tick(geom.Identity(), 1); s != nil || err != nil {
		t.Errorf("idle Tick = %v, %v", s, err)
	}

	p.SetDrawingEnabled(true)
	if _, err := p.Tick(geom.Identity(), 1); err != nil {
		t.Fatal(err)
	}
	if p.State() != Drawing {
		t.Errorf("state = %v, want Drawing", p.State())
	}
	if canvas.Len() != 0 {
		t.Error("live line attached before it was finished")
	}

	s, err := p.DetachLine(true)
	if s != nil || err != nil {
		t.Errorf("DetachLine(true) = %v, %v", s, err)
	}
	if p.State() != Idle || canvas.Len() != 0 {
		t.Errorf("after discard: state %v, canvas objects %d", p.State(), canvas.Len())
	}
	if _, err := p.DetachLine(false); !errors.Is(err, ErrNotDrawing) {
		t.Errorf("DetachLine on idle pointer = %v, want ErrNotDrawing", err)
	}
}

func TestPointerStationaryKeepsTwoPoints(t *testing.T) {
	p, _, clock := testPointer(t)
	poses := make([]geom.TrTransform, 20)
	for i := range poses {
		poses[i] = geom.Identity()
	}
	s := drawStroke(t, p, clock, poses)
	if got := len(s.ControlPoints); got != 2 {
		t.Fatalf("control points = %d, want first keeper plus one provisional", got)
	}
	if s.ControlPoints[0].TimestampMs != 0 || s.ControlPoints[1].TimestampMs != 190 {
		t.Errorf("timestamps = %d, %d", s.ControlPoints[0].TimestampMs, s.ControlPoints[1].TimestampMs)
	}
}

func TestPointerCanvasSpace(t *testing.T) {
	catalog := brush.NewCatalog(brush.Manifest{Brushes: []*brush.Descriptor{testBrush()}})
	canvas := NewSceneCanvas("scaled", geom.FromTRS(geom.Vec3{0, 0, 10}, geom.QuatIdent(), 2))
	clock := &ManualClock{}
	p := NewPointer(catalog, WithPointerCanvas(canvas), WithClock(clock))

	poses := []geom.TrTransform{
		geom.FromTRS(geom.Vec3{0, 0, 10}, geom.QuatIdent(), 7),
		geom.FromTranslation(geom.Vec3{0, 0, 10.2}),
	}
	s := drawStroke(t, p, clock, poses)

	if math.Abs(s.BrushScale-0.5) > eps {
		t.Errorf("BrushScale = %v, want 0.5", s.BrushScale)
	}
	want := []geom.Vec3{{0, 0, 0}, {0, 0, 0.1}}
	for i, w := range want {
		if !vecNear(s.ControlPoints[i].Pos, w, 1e-9) {
			t.Errorf("point %d = %v, want %v", i, s.ControlPoints[i].Pos, w)
		}
	}
}

func TestPointerNonFinite(t *testing.T) {
	p, _, _ := testPointer(t)
	p.SetDrawingEnabled(true)
	bad := geom.FromTranslation(geom.Vec3{math.Inf(1), 0, 0})
	if _, err := p.Tick(bad, 1); !errors.Is(err, ErrNonFinite) {
		t.Errorf("Tick(Inf) = %v, want ErrNonFinite", err)
	}
	if p.State() != Idle {
		t.Error("line started from a non-finite pose")
	}

	if _, err := p.Tick(geom.Identity(), 1); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Tick(geom.Identity(), math.NaN()); !errors.Is(err, ErrNonFinite) {
		t.Errorf("Tick(NaN pressure) = %v, want ErrNonFinite", err)
	}
	if p.stream.Len() != 1 {
		t.Errorf("stream holds %d points after rejected sample, want 1", p.stream.Len())
	}
}

func TestPointerBrushSize(t *testing.T) {
	p, _, _ := testPointer(t)
	lo, hi := 0.01, 0.5

	tests := []struct {
		name string
		v01  float64
		want float64
	}{
		{"min", 0, lo},
		{"max", 1, hi},
		{"below range", -3, lo},
		{"above range", 4, hi},
		{"half", 0.5, math.Pow((math.Sqrt(lo)+math.Sqrt(hi))/2, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p.SetBrushSize01(tt.v01)
			if got := p.BrushSizeAbsolute(); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("BrushSizeAbsolute() = %v, want %v", got, tt.want)
			}
		})
	}

	p.SetBrushSize01(0.3)
	if got := p.BrushSize01(); math.Abs(got-0.3) > 1e-12 {
		t.Errorf("BrushSize01() = %v, want 0.3", got)
	}
	p.SetBrushSizeAbsolute(9)
	if got := p.BrushSizeAbsolute(); got != hi {
		t.Errorf("SetBrushSizeAbsolute(9) = %v, want %v", got, hi)
	}
}

func TestPointerCreateNewLineErrors(t *testing.T) {
	catalog := brush.NewCatalog(brush.Manifest{Brushes: []*brush.Descriptor{testBrush()}})
	p := NewPointer(catalog)
	if err := p.CreateNewLine(nil, geom.Identity(), nil); !errors.Is(err, ErrNoCanvas) {
		t.Errorf("no canvas: %v", err)
	}

	canvas := NewSceneCanvas("c", geom.Identity())
	if err := p.CreateNewLine(canvas, geom.FromScale(0), nil); !errors.Is(err, ErrNonFinite) {
		t.Errorf("zero scale: %v", err)
	}
	if err := p.CreateNewLine(canvas, geom.Identity(), nil); err != nil {
		t.Fatal(err)
	}
	if err := p.CreateNewLine(canvas, geom.Identity(), nil); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("second line: %v", err)
	}

	empty := NewPointer(brush.NewCatalog(brush.Manifest{}))
	if err := empty.CreateNewLine(canvas, geom.Identity(), nil); !errors.Is(err, ErrInvalidOperation) {
		t.Errorf("no brush: %v", err)
	}
}

func TestPointerStrokeSettings(t *testing.T) {
	p, _, clock := testPointer(t, WithSeedSource(func() int32 { return 42 }))
	p.CurrentBrush().ColorLuminanceMin = 0.5
	p.SetColor(brush.RGB(0, 0, 0))
	p.SetBrushSizeAbsolute(0.1)
	p.SetGroup(7)
	p.SetContinuesGroup(true)

	s := drawStroke(t, p, clock, linePoses(3, 0.05))
	if s.Group != 7 || !s.Flags.Has(FlagIsGroupContinue) {
		t.Errorf("group %d flags %b", s.Group, s.Flags)
	}
	if s.Seed != 42 || s.BrushSize != 0.1 {
		t.Errorf("seed %d size %v", s.Seed, s.BrushSize)
	}
	if l := s.Color.ToHSL().L; l < 0.5-1e-9 {
		t.Errorf("color luminance %v not clamped", l)
	}
	if s.BrushGUID != p.CurrentBrush().GUID {
		t.Error("stroke brush GUID differs from the current brush")
	}

	next := drawStroke(t, p, clock, linePoses(3, 0.05))
	if next.Flags.Has(FlagIsGroupContinue) {
		t.Error("continue flag should apply to one stroke only")
	}
}

func TestPointerBatching(t *testing.T) {
	p, canvas, clock := testPointer(t, WithBatching())
	s := drawStroke(t, p, clock, linePoses(3, 0.05))
	if s.Type != BatchedBrushStroke || !s.Geometry().Batched {
		t.Errorf("type %v batched %v", s.Type, s.Geometry().Batched)
	}
	if s.Canvas() != Canvas(canvas) {
		t.Error("batched stroke lost its canvas")
	}
}

func TestPointerRecreateDoesNotChangeSettings(t *testing.T) {
	p, _, _ := testPointer(t)
	p.SetColor(brush.RGB(0, 1, 0))
	size := p.BrushSizeAbsolute()

	s := storedStroke(p.CurrentBrush().GUID, 0, 4)
	if err := p.RecreateLineFromMemory(s); err != nil {
		t.Fatal(err)
	}
	if p.CurrentColor() != brush.RGB(0, 1, 0) || p.BrushSizeAbsolute() != size {
		t.Error("RecreateLineFromMemory changed the pointer settings")
	}
	if s.Geometry().Color != s.Color {
		t.Error("geometry color differs from the stroke color")
	}

	empty := NewStroke(StrokeData{BrushGUID: p.CurrentBrush().GUID})
	if err := p.RecreateLineFromMemory(empty); !errors.Is(err, ErrEmptyStroke) {
		t.Errorf("empty stroke: %v", err)
	}
	other := storedStroke(uuid.New(), 0, 2)
	if err := p.RecreateLineFromMemory(other); err != nil {
		t.Errorf("unknown brush: %v", err)
	}
}

func TestGeometryOpacityFollowsPressure(t *testing.T) {
	tests := []struct {
		name     string
		pressure []float64
		drop     []bool
		want     float64
	}{
		{"full pressure", []float64{1, 1, 1, 1}, nil, 1},
		{"mean pressure", []float64{1, 0.2, 0.2, 1}, nil, 0.6},
		{"dropped points ignored", []float64{1, 0.2, 0.2, 1}, []bool{false, true, true, false}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _, _ := testPointer(t)
			s := storedStroke(p.CurrentBrush().GUID, 0, len(tt.pressure))
			for i, v := range tt.pressure {
				s.ControlPoints[i].Pressure = v
			}
			s.ControlPointsToDrop = tt.drop
			if err := p.RecreateLineFromMemory(s); err != nil {
				t.Fatal(err)
			}
			g := s.Geometry()
			if math.Abs(g.Opacity-tt.want) > 1e-9 {
				t.Errorf("Opacity = %v, want %v", g.Opacity, tt.want)
			}
			if got := g.DrawColor(); math.Abs(got.A-tt.want) > 1e-9 || got.R != 1 {
				t.Errorf("DrawColor() = %+v, want red at alpha %v", got, tt.want)
			}
		})
	}
}
