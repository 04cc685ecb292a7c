// Package preview rasterizes strokes into small CPU thumbnails.
//
// Stroke meshes are projected orthographically along the view's forward
// axis, flat shaded and painted far to near with golang.org/x/image/vector.
// The result is meant for file browsers and debugging, not for display in
// the headset.
package preview

import (
	"cmp"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"iter"
	"math"
	"slices"

	"golang.org/x/image/vector"

	"github.com/gogpu/sketch"
	"github.com/gogpu/sketch/geom"
)

// Option configures a render.
type Option func(*options)

type options struct {
	width, height int
	padding       int
	background    color.Color
	view          geom.TrTransform
	caption       string
	ambient       float64
	light         geom.Vec3
}

func defaultOptions() options {
	return options{
		width:      256,
		height:     256,
		padding:    8,
		background: color.White,
		view:       geom.Identity(),
		ambient:    0.35,
		light:      geom.Vec3{0.3, 0.8, -0.5},
	}
}

// WithSize sets the thumbnail size in pixels. Default 256x256.
func WithSize(w, h int) Option {
	return func(o *options) {
		if w > 0 && h > 0 {
			o.width, o.height = w, h
		}
	}
}

// WithPadding sets the empty border around the fitted strokes.
func WithPadding(px int) Option {
	return func(o *options) {
		if px >= 0 {
			o.padding = px
		}
	}
}

// WithBackground sets the fill color. Default white.
func WithBackground(c color.Color) Option {
	return func(o *options) { o.background = c }
}

// WithView sets the camera pose in scene space. The camera looks along
// its forward (+Z) axis with +Y up. Default identity.
func WithView(view geom.TrTransform) Option {
	return func(o *options) { o.view = view }
}

// WithCaption draws text in the bottom-left corner.
func WithCaption(s string) Option {
	return func(o *options) { o.caption = s }
}

// Stats describes what a render drew.
type Stats struct {
	Strokes   int
	Triangles int
}

// triangle is a projected, shaded triangle in view space.
type triangle struct {
	p     [3]geom.Vec3
	depth float64
	color color.NRGBA
}

// Render draws the visible, created strokes of strokes.
func Render(strokes iter.Seq[*sketch.Stroke], opts ...Option) (*image.RGBA, Stats) {
	var geoms []*sketch.Geometry
	for s := range strokes {
		if g := s.Geometry(); g != nil {
			geoms = append(geoms, g)
		}
	}
	return RenderGeometry(geoms, opts...)
}

// RenderLedger draws every stroke in l.
func RenderLedger(l *sketch.Ledger, opts ...Option) (*image.RGBA, Stats) {
	return Render(l.All(), opts...)
}

// RenderCanvas draws the geometry attached to c.
func RenderCanvas(c *sketch.SceneCanvas, opts ...Option) (*image.RGBA, Stats) {
	return RenderGeometry(c.Geometry(), opts...)
}

// RenderGeometry draws the given geometry. Hidden geometry is skipped;
// each mesh is placed in the scene by the pose of its canvas.
func RenderGeometry(geoms []*sketch.Geometry, opts ...Option) (*image.RGBA, Stats) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	dst := image.NewRGBA(image.Rect(0, 0, o.width, o.height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(o.background), image.Point{}, draw.Src)

	tris, stats := collect(geoms, &o)
	if len(tris) > 0 {
		paint(dst, tris, &o)
	}
	if o.caption != "" {
		if err := drawCaption(dst, o.caption); err != nil {
			sketch.Logger().Warn("preview: caption skipped", "err", err)
		}
	}
	sketch.Logger().Debug("preview: rendered",
		"strokes", stats.Strokes,
		"triangles", stats.Triangles,
		"size", dst.Bounds().Size())
	return dst, stats
}

// collect moves every visible triangle into view space and shades it.
func collect(geoms []*sketch.Geometry, o *options) ([]triangle, Stats) {
	var stats Stats
	var tris []triangle
	toView := o.view.Inverse()
	light := geom.SafeNormalize(o.light, geom.AxisY)

	for _, g := range geoms {
		if g == nil || g.Hidden() || g.Mesh.TriangleCount() == 0 {
			continue
		}
		pose := geom.Identity()
		if c := g.Canvas(); c != nil {
			pose = c.Pose()
		}
		m := g.Mesh.Transformed(toView.Mul(pose))
		base := g.DrawColor()
		stats.Strokes++

		for i := range m.TriangleCount() {
			a, b, c := m.Triangle(i)
			t := triangle{p: [3]geom.Vec3{m.Positions[a], m.Positions[b], m.Positions[c]}}
			t.depth = (t.p[0][2] + t.p[1][2] + t.p[2][2]) / 3
			shade := o.ambient + (1-o.ambient)*math.Abs(m.FaceNormal(i).Dot(light))
			lit := base
			lit.R *= shade
			lit.G *= shade
			lit.B *= shade
			t.color = lit.NRGBA()
			tris = append(tris, t)
		}
	}
	stats.Triangles = len(tris)
	return tris, stats
}

// paint fits the triangles into dst and draws them far to near.
func paint(dst *image.RGBA, tris []triangle, o *options) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, t := range tris {
		for _, p := range t.p {
			minX, maxX = math.Min(minX, p[0]), math.Max(maxX, p[0])
			minY, maxY = math.Min(minY, p[1]), math.Max(maxY, p[1])
		}
	}

	availW := float64(o.width - 2*o.padding)
	availH := float64(o.height - 2*o.padding)
	if availW <= 0 || availH <= 0 {
		return
	}
	extent := math.Max(maxX-minX, maxY-minY)
	scale := 1.0
	if extent > 0 {
		scale = math.Min(availW, availH) / extent
	}
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	ox, oy := float64(o.width)/2, float64(o.height)/2

	// Image y grows downward.
	project := func(p geom.Vec3) (float32, float32) {
		return float32(ox + (p[0]-cx)*scale), float32(oy - (p[1]-cy)*scale)
	}

	slices.SortStableFunc(tris, func(a, b triangle) int {
		return cmp.Compare(b.depth, a.depth)
	})

	var z vector.Rasterizer
	bounds := dst.Bounds()
	for _, t := range tris {
		var xs, ys [3]float32
		for k, p := range t.p {
			xs[k], ys[k] = project(p)
		}
		r := image.Rect(
			int(math.Floor(float64(min(xs[0], xs[1], xs[2])))),
			int(math.Floor(float64(min(ys[0], ys[1], ys[2])))),
			int(math.Ceil(float64(max(xs[0], xs[1], xs[2]))))+1,
			int(math.Ceil(float64(max(ys[0], ys[1], ys[2]))))+1,
		).Intersect(bounds)
		if r.Empty() {
			continue
		}

		// Rasterize in the triangle's bounding box only.
		z.Reset(r.Dx(), r.Dy())
		fx, fy := float32(r.Min.X), float32(r.Min.Y)
		z.MoveTo(xs[0]-fx, ys[0]-fy)
		z.LineTo(xs[1]-fx, ys[1]-fy)
		z.LineTo(xs[2]-fx, ys[2]-fy)
		z.ClosePath()
		z.Draw(dst, r, image.NewUniform(t.color), image.Point{})
	}
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}
