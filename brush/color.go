package brush

import (
	"image/color"
	"math"
)

// Color is a linear RGBA stroke color. Each component is in [0, 1].
type Color struct {
	R, G, B, A float64
}

// RGB creates an opaque color.
func RGB(r, g, b float64) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// NRGBA converts c to an 8-bit non-premultiplied color.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: to8(c.R),
		G: to8(c.G),
		B: to8(c.B),
		A: to8(c.A),
	}
}

// Float32 returns the components as float32, for shader uniforms.
func (c Color) Float32() [4]float32 {
	return [4]float32{float32(c.R), float32(c.G), float32(c.B), float32(c.A)}
}

// Lerp interpolates between two colors.
func (c Color) Lerp(other Color, t float64) Color {
	return Color{
		R: c.R + (other.R-c.R)*t,
		G: c.G + (other.G-c.G)*t,
		B: c.B + (other.B-c.B)*t,
		A: c.A + (other.A-c.A)*t,
	}
}

// WithAlpha returns c with its alpha replaced.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

func to8(x float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, x)) * 255))
}

// HSL is a color in hue, saturation, lightness form. H is in [0, 6), one
// unit per sextant of the color wheel; S and L are in [0, 1].
type HSL struct {
	H, S, L, A float64
}

// HueDegrees returns the hue in degrees.
func (h HSL) HueDegrees() float64 { return h.H * 60 }

// ToHSL converts c to HSL.
func (c Color) ToHSL() HSL {
	lo := math.Min(c.R, math.Min(c.G, c.B))
	hi := math.Max(c.R, math.Max(c.G, c.B))
	delta := hi - lo
	out := HSL{L: (hi + lo) / 2, A: c.A}
	if delta == 0 {
		return out
	}
	if out.L < 0.5 {
		out.S = delta / (hi + lo)
	} else {
		out.S = delta / (2 - hi - lo)
	}
	switch hi {
	case c.R:
		out.H = (c.G - c.B) / delta
	case c.G:
		out.H = 2 + (c.B-c.R)/delta
	default:
		out.H = 4 + (c.R-c.G)/delta
	}
	out.H = wrapHue(out.H)
	return out
}

// Color converts h back to RGB.
func (h HSL) Color() Color {
	if h.S == 0 {
		return Color{R: h.L, G: h.L, B: h.L, A: h.A}
	}
	var t2 float64
	if h.L < 0.5 {
		t2 = h.L * (1 + h.S)
	} else {
		t2 = h.L + h.S - h.L*h.S
	}
	t1 := 2*h.L - t2
	hue := wrapHue(h.H)
	return Color{
		R: hueChannel(hue+2, t1, t2),
		G: hueChannel(hue, t1, t2),
		B: hueChannel(hue-2, t1, t2),
		A: h.A,
	}
}

func hueChannel(c, t1, t2 float64) float64 {
	c = wrapHue(c)
	switch {
	case c < 1:
		return t1 + (t2-t1)*c
	case c < 3:
		return t2
	case c < 4:
		return t1 + (t2-t1)*(4-c)
	default:
		return t1
	}
}

func wrapHue(h float64) float64 {
	h = math.Mod(h, 6)
	if h < 0 {
		h += 6
	}
	return h
}
