package preview

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/sketch"
	"github.com/gogpu/sketch/brush"
	"github.com/gogpu/sketch/geom"
)

// drawLine draws a stroke along +Z onto c and adds it to l.
func drawLine(t *testing.T, c sketch.Canvas, l *sketch.Ledger) *sketch.Stroke {
	t.Helper()
	desc := brush.NewDescriptor(uuid.New(), "Test Tube", brush.GeneratorTube)
	desc.BrushSizeRange = [2]float64{0.01, 0.5}
	catalog := brush.NewCatalog(brush.Manifest{Brushes: []*brush.Descriptor{desc}})
	clock := &sketch.ManualClock{}
	p := sketch.NewPointer(catalog, sketch.WithPointerCanvas(c), sketch.WithClock(clock))
	p.SetColor(brush.RGB(1, 0, 0))

	p.SetDrawingEnabled(true)
	for i := range 10 {
		if _, err := p.Tick(geom.FromTranslation(geom.Vec3{0, 0, float64(i) * 0.05}), 1); err != nil {
			t.Fatalf("Tick(%d): %v", i, err)
		}
		clock.Advance(10 * time.Millisecond)
	}
	p.SetDrawingEnabled(false)
	s, err := p.Tick(geom.Identity(), 1)
	if err != nil || s == nil {
		t.Fatalf("final Tick = %v, %v", s, err)
	}
	if l != nil {
		if err := l.Add(s); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

// inkBounds returns the bounding box of pixels that differ from white.
func inkBounds(img *image.RGBA) image.Rectangle {
	var r image.Rectangle
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y) != (color.RGBA{255, 255, 255, 255}) {
				r = r.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	return r
}

func TestRenderEmpty(t *testing.T) {
	img, stats := Render(slices.Values([]*sketch.Stroke(nil)), WithSize(32, 16))
	if got := img.Bounds().Size(); got != image.Pt(32, 16) {
		t.Errorf("size = %v", got)
	}
	if stats != (Stats{}) {
		t.Errorf("stats = %+v, want zero", stats)
	}
	if r := inkBounds(img); !r.Empty() {
		t.Errorf("empty render has ink at %v", r)
	}
}

func TestRenderLedger(t *testing.T) {
	canvas := sketch.NewSceneCanvas("main", geom.Identity())
	ledger := sketch.NewLedger()
	s := drawLine(t, canvas, ledger)

	// Looking along +X the line runs horizontally across the image.
	side := WithView(geom.FromRotation(geom.AngleAxis(math.Pi/2, geom.AxisY)))
	img, stats := RenderLedger(ledger, side)
	if stats.Strokes != 1 || stats.Triangles != s.Geometry().Mesh.TriangleCount() {
		t.Errorf("stats = %+v", stats)
	}
	r := inkBounds(img)
	if r.Dx() < 200 {
		t.Errorf("ink width = %d, want the line to span the thumbnail", r.Dx())
	}
	if r.Dy() > 40 {
		t.Errorf("ink height = %d, want a thin line", r.Dy())
	}
	center := img.RGBAAt(128, (r.Min.Y+r.Max.Y)/2)
	if center.R < 100 || center.G > 60 || center.B > 60 {
		t.Errorf("line color = %v, want shaded red", center)
	}
}

func TestRenderSkipsHidden(t *testing.T) {
	canvas := sketch.NewSceneCanvas("main", geom.Identity())
	s := drawLine(t, canvas, nil)
	if err := s.Hide(true); err != nil {
		t.Fatal(err)
	}
	img, stats := RenderCanvas(canvas)
	if stats.Strokes != 0 {
		t.Errorf("stats = %+v, want hidden stroke skipped", stats)
	}
	if r := inkBounds(img); !r.Empty() {
		t.Errorf("hidden stroke drew ink at %v", r)
	}
}

func TestRenderCanvasPose(t *testing.T) {
	tests := []struct {
		name string
		pose geom.TrTransform
		wide bool
	}{
		{"identity", geom.Identity(), false},
		{"turned", geom.FromRotation(geom.AngleAxis(math.Pi/2, geom.AxisY)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			canvas := sketch.NewSceneCanvas("main", geom.Identity())
			drawLine(t, canvas, nil)
			canvas.SetPose(tt.pose)
			img, _ := RenderCanvas(canvas)
			r := inkBounds(img)
			if wide := r.Dx() > 4*r.Dy(); wide != tt.wide {
				t.Errorf("ink %v: wide = %v, want %v", r, wide, tt.wide)
			}
		})
	}
}

func TestRenderCaption(t *testing.T) {
	img, _ := RenderGeometry(nil, WithSize(64, 32), WithCaption("hi"))
	r := inkBounds(img)
	if r.Empty() {
		t.Fatal("caption not drawn")
	}
	if r.Min.Y < 16 || r.Min.X > 10 {
		t.Errorf("caption at %v, want bottom-left", r)
	}
}

func TestShapeCaption(t *testing.T) {
	tests := []struct {
		text   string
		glyphs int
	}{
		{"hi", 2},
		{"12 strokes", 10},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			out, err := shapeCaption(tt.text, captionSize)
			if err != nil {
				t.Fatalf("shapeCaption: %v", err)
			}
			if len(out.Glyphs) != tt.glyphs {
				t.Errorf("glyphs = %d, want %d", len(out.Glyphs), tt.glyphs)
			}
			if out.Advance <= 0 {
				t.Errorf("advance = %v, want positive", out.Advance)
			}
			for i, g := range out.Glyphs {
				if g.GlyphID == 0 {
					t.Errorf("glyph %d is .notdef", i)
				}
			}
		})
	}
}

func TestCaptionWidthGrows(t *testing.T) {
	short, _ := RenderGeometry(nil, WithSize(128, 32), WithCaption("ab"))
	long, _ := RenderGeometry(nil, WithSize(128, 32), WithCaption("abababab"))
	if s, l := inkBounds(short).Dx(), inkBounds(long).Dx(); l <= 2*s {
		t.Errorf("ink width %d for 8 glyphs, %d for 2", l, s)
	}
}

func TestWritePNG(t *testing.T) {
	img, _ := RenderGeometry(nil, WithSize(8, 8), WithBackground(color.Black))
	var buf bytes.Buffer
	if err := WritePNG(&buf, img); err != nil {
		t.Fatal(err)
	}
	back, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got := back.Bounds().Size(); got != image.Pt(8, 8) {
		t.Errorf("decoded size = %v", got)
	}
	if r, g, b, _ := back.At(3, 3).RGBA(); r != 0 || g != 0 || b != 0 {
		t.Errorf("pixel = %v, want black", back.At(3, 3))
	}
}
