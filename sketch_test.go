package sketch

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/sketch/brush"
	"github.com/gogpu/sketch/geom"
)

const eps = 1e-9

// testBrush returns a tube brush with a [0.01, 0.5] size range.
func testBrush() *brush.Descriptor {
	d := brush.NewDescriptor(uuid.New(), "Test Tube", brush.GeneratorTube)
	d.BrushSizeRange = [2]float64{0.01, 0.5}
	return d
}

// testPointer returns a pointer drawing into a fresh identity canvas with a
// manual clock.
func testPointer(t *testing.T, opts ...PointerOption) (*Pointer, *SceneCanvas, *ManualClock) {
	t.Helper()
	catalog := brush.NewCatalog(brush.Manifest{Brushes: []*brush.Descriptor{testBrush()}})
	canvas := NewSceneCanvas("main", geom.Identity())
	clock := &ManualClock{}
	opts = append([]PointerOption{WithPointerCanvas(canvas), WithClock(clock)}, opts...)
	return NewPointer(catalog, opts...), canvas, clock
}

// linePoses returns n poses spaced step apart along +Z, facing +Z.
func linePoses(n int, step float64) []geom.TrTransform {
	out := make([]geom.TrTransform, n)
	for i := range out {
		out[i] = geom.FromTranslation(geom.Vec3{0, 0, float64(i) * step})
	}
	return out
}

// drawStroke feeds poses to p at full pressure, 10ms apart, and returns the
// finished stroke.
func drawStroke(t *testing.T, p *Pointer, clock *ManualClock, poses []geom.TrTransform) *Stroke {
	t.Helper()
	p.SetDrawingEnabled(true)
	for i, xf := range poses {
		s, err := p.Tick(xf, 1)
		if err != nil {
			t.Fatalf("Tick(%d): %v", i, err)
		}
		if s != nil {
			t.Fatalf("Tick(%d) returned a stroke while drawing", i)
		}
		clock.Advance(10 * time.Millisecond)
	}
	p.SetDrawingEnabled(false)
	s, err := p.Tick(geom.Identity(), 1)
	if err != nil {
		t.Fatalf("final Tick: %v", err)
	}
	if s == nil {
		t.Fatal("final Tick returned no stroke")
	}
	return s
}

// storedStroke returns a NotCreated stroke with n points along +Z whose
// first timestamp is head.
func storedStroke(brushGUID uuid.UUID, head uint32, n int) *Stroke {
	cps := make([]brush.ControlPoint, n)
	for i := range cps {
		cps[i] = brush.ControlPoint{
			Pos:         geom.Vec3{0, 0, float64(i) * 0.05},
			Orient:      geom.QuatIdent(),
			Pressure:    1,
			TimestampMs: head + uint32(i)*10,
		}
	}
	return NewStroke(StrokeData{
		BrushGUID:     brushGUID,
		Color:         brush.RGB(1, 0, 0),
		BrushSize:     0.02,
		BrushScale:    1,
		ControlPoints: cps,
	})
}

// captureLogs routes the package loggers into a buffer for the duration of
// the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { SetLogger(nil) })
	return &buf
}

func vecNear(a, b geom.Vec3, tol float64) bool {
	return a.Sub(b).Len() <= tol
}

func quatNear(a, b geom.Quat, tol float64) bool {
	return a.Sub(b).Len() <= tol || a.Add(b).Len() <= tol
}
