package preview

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	ot "github.com/go-text/typesetting/font/opentype"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// captionSize is the caption font size in pixels.
const captionSize = 13

// captionMargin is the gap between the caption and the left and bottom
// image edges.
const captionMargin = 2

// captionFont parses the embedded Go Regular font once. font.Font is
// read-only and safe to share; faces are created per caption.
var captionFont = sync.OnceValues(func() (*font.Font, error) {
	face, err := font.ParseTTF(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, err
	}
	return face.Font, nil
})

// shapeCaption shapes s left to right at size pixels.
func shapeCaption(s string, size float64) (shaping.Output, error) {
	f, err := captionFont()
	if err != nil {
		return shaping.Output{}, err
	}
	runes := []rune(s)
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      font.NewFace(f),
		Size:      floatToFixed(size),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}
	var hb shaping.HarfbuzzShaper
	return hb.Shape(input), nil
}

// drawCaption draws s in black on the bottom-left baseline of dst.
func drawCaption(dst *image.RGBA, s string) error {
	out, err := shapeCaption(s, captionSize)
	if err != nil {
		return err
	}
	scale := float32(captionSize) / float32(out.Face.Upem())
	baseline := float32(dst.Bounds().Max.Y) + fixedToFloat(out.LineBounds.Descent) - captionMargin
	x := float32(dst.Bounds().Min.X + captionMargin)

	src := image.NewUniform(color.Black)
	var z vector.Rasterizer
	for _, g := range out.Glyphs {
		outline, ok := out.Face.GlyphData(g.GlyphID).(font.GlyphOutline)
		if ok && len(outline.Segments) > 0 {
			ox := x + fixedToFloat(g.XOffset)
			oy := baseline - fixedToFloat(g.YOffset)
			drawOutline(&z, dst, src, outline, ox, oy, scale)
		}
		x += fixedToFloat(g.Advance)
	}
	return nil
}

// drawOutline fills a glyph outline whose origin sits at (ox, oy) in dst.
// Outline coordinates are font units with Y up.
func drawOutline(z *vector.Rasterizer, dst *image.RGBA, src image.Image, outline font.GlyphOutline, ox, oy, scale float32) {
	minX, minY := float32(math.Inf(1)), float32(math.Inf(1))
	maxX, maxY := float32(math.Inf(-1)), float32(math.Inf(-1))
	for _, seg := range outline.Segments {
		for _, p := range seg.ArgsSlice() {
			px, py := ox+p.X*scale, oy-p.Y*scale
			minX, maxX = min(minX, px), max(maxX, px)
			minY, maxY = min(minY, py), max(maxY, py)
		}
	}
	r := image.Rect(
		int(math.Floor(float64(minX))), int(math.Floor(float64(minY))),
		int(math.Ceil(float64(maxX)))+1, int(math.Ceil(float64(maxY)))+1,
	).Intersect(dst.Bounds())
	if r.Empty() {
		return
	}

	z.Reset(r.Dx(), r.Dy())
	fx, fy := float32(r.Min.X), float32(r.Min.Y)
	pt := func(p ot.SegmentPoint) (float32, float32) {
		return ox + p.X*scale - fx, oy - p.Y*scale - fy
	}
	open := false
	for _, seg := range outline.Segments {
		switch seg.Op {
		case ot.SegmentOpMoveTo:
			if open {
				z.ClosePath()
			}
			z.MoveTo(pt(seg.Args[0]))
			open = true
		case ot.SegmentOpLineTo:
			z.LineTo(pt(seg.Args[0]))
		case ot.SegmentOpQuadTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			z.QuadTo(bx, by, cx, cy)
		case ot.SegmentOpCubeTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			dx, dy := pt(seg.Args[2])
			z.CubeTo(bx, by, cx, cy, dx, dy)
		}
	}
	if open {
		z.ClosePath()
	}
	z.Draw(dst, r, src, image.Point{})
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func floatToFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(v * 64) }

func fixedToFloat(v fixed.Int26_6) float32 { return float32(v) / 64 }
