package brush

import (
	"math"
	"testing"

	"github.com/google/uuid"
)

func colorNear(a, b Color) bool {
	const eps = 1e-9
	return math.Abs(a.R-b.R) < eps && math.Abs(a.G-b.G) < eps &&
		math.Abs(a.B-b.B) < eps && math.Abs(a.A-b.A) < eps
}

func TestHSLRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		c    Color
		hue  float64
	}{
		{"red", RGB(1, 0, 0), 0},
		{"green", RGB(0, 1, 0), 120},
		{"blue", RGB(0, 0, 1), 240},
		{"gray", RGB(0.4, 0.4, 0.4), 0},
		{"orange", RGB(1, 0.5, 0), 30},
		{"dark teal", Color{R: 0.1, G: 0.3, B: 0.35, A: 0.5}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := tt.c.ToHSL()
			if tt.hue != 0 && math.Abs(h.HueDegrees()-tt.hue) > 1e-9 {
				t.Errorf("hue = %v, want %v", h.HueDegrees(), tt.hue)
			}
			if got := h.Color(); !colorNear(got, tt.c) {
				t.Errorf("round trip = %+v, want %+v", got, tt.c)
			}
		})
	}
}

func TestClampColor(t *testing.T) {
	desc := NewDescriptor(uuid.New(), "Neon", GeneratorTube)
	desc.ColorLuminanceMin = 0.6
	desc.ColorSaturationMax = 0.5

	got := desc.ClampColor(RGB(0.2, 0, 0)).ToHSL()
	if got.L < 0.6-1e-9 {
		t.Errorf("L = %v, want >= 0.6", got.L)
	}
	if got.S > 0.5+1e-9 {
		t.Errorf("S = %v, want <= 0.5", got.S)
	}
	if math.Abs(got.H) > 1e-9 {
		t.Errorf("hue changed to %v", got.H)
	}
}

func TestNRGBA(t *testing.T) {
	c := Color{R: 1, G: 0.5, B: -1, A: 2}.NRGBA()
	if c.R != 255 || c.G != 128 || c.B != 0 || c.A != 255 {
		t.Errorf("NRGBA() = %v", c)
	}
}
