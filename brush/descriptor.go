package brush

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// CrossSection selects the ring shape swept by tube brushes.
type CrossSection int

const (
	CrossSectionRound CrossSection = iota
	CrossSectionSquare
)

func (c CrossSection) String() string {
	switch c {
	case CrossSectionRound:
		return "round"
	case CrossSectionSquare:
		return "square"
	}
	return fmt.Sprintf("CrossSection(%d)", int(c))
}

// ShapeModifier varies the radius along a stroke.
type ShapeModifier int

const (
	ShapeNone ShapeModifier = iota
	ShapeTaper
	ShapeDoubleSidedTaper
	ShapeSin
	ShapeComet
	ShapePetal
)

func (s ShapeModifier) String() string {
	switch s {
	case ShapeNone:
		return "none"
	case ShapeTaper:
		return "taper"
	case ShapeDoubleSidedTaper:
		return "double-sided-taper"
	case ShapeSin:
		return "sin"
	case ShapeComet:
		return "comet"
	case ShapePetal:
		return "petal"
	}
	return fmt.Sprintf("ShapeModifier(%d)", int(s))
}

// UVStyle selects how the v texture coordinate runs along a stroke.
type UVStyle int

const (
	// UVStretch stretches one texture repeat over the whole stroke.
	UVStretch UVStyle = iota
	// UVDistance advances v with arc length, for uniform texel density.
	UVDistance
)

// Generator tags understood by the default registry.
const (
	GeneratorTube   = "tube"
	GeneratorRibbon = "ribbon"
)

// Descriptor is the shared, read-only definition of a brush. Many strokes
// reference the same descriptor; nothing mutates it after construction.
// Catalog-derived facts such as which brush supersedes this one are kept
// by the Catalog.
type Descriptor struct {
	GUID        uuid.UUID
	DurableName string
	Description string
	Tags        []string

	// Generator is the registry tag of the geometry generator.
	Generator string

	// Supersedes is an older brush that this one replaces. Strokes using
	// the older brush still load; the older brush is hidden from the GUI.
	Supersedes *Descriptor

	HiddenInGUI bool

	// Size is in pointer space.
	BrushSizeRange    [2]float64
	PressureSizeRange [2]float64

	Opacity              float64
	PressureOpacityRange [2]float64
	ColorLuminanceMin    float64
	ColorSaturationMax   float64

	// SolidMinLengthMeters is the minimum distance between knots at full
	// pressure, in pointer space.
	SolidMinLengthMeters float64

	CrossSection  CrossSection
	ShapeModifier ShapeModifier
	UVStyle       UVStyle

	TaperScalar               float64
	PetalDisplacementAmount   float64
	PetalDisplacementExponent float64
}

// NewDescriptor returns a descriptor with the default tuning values.
func NewDescriptor(guid uuid.UUID, name, generator string) *Descriptor {
	return &Descriptor{
		GUID:                      guid,
		DurableName:               name,
		Generator:                 generator,
		BrushSizeRange:            [2]float64{0.005, 0.5},
		PressureSizeRange:         [2]float64{0.1, 1},
		Opacity:                   1,
		PressureOpacityRange:      [2]float64{0, 1},
		ColorSaturationMax:        1,
		SolidMinLengthMeters:      0.002,
		TaperScalar:               1,
		PetalDisplacementAmount:   0.5,
		PetalDisplacementExponent: 3,
	}
}

// Name returns the display name.
func (d *Descriptor) Name() string {
	if d.Description != "" {
		return d.Description
	}
	return d.DurableName
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("Brush<%s %s>", d.DurableName, d.GUID)
}

// PressureSize maps a pressure in [0, 1] to a size multiplier.
func (d *Descriptor) PressureSize(pressure01 float64) float64 {
	return lerp(d.PressureSizeRange[0], d.PressureSizeRange[1], clamp01(pressure01))
}

// PressureOpacity maps a pressure in [0, 1] to an opacity multiplier.
func (d *Descriptor) PressureOpacity(pressure01 float64) float64 {
	return d.Opacity * lerp(d.PressureOpacityRange[0], d.PressureOpacityRange[1], clamp01(pressure01))
}

// ClampColor raises c's lightness to at least ColorLuminanceMin and limits
// its saturation to ColorSaturationMax.
func (d *Descriptor) ClampColor(c Color) Color {
	h := c.ToHSL()
	h.L = math.Max(h.L, d.ColorLuminanceMin)
	if d.ColorSaturationMax > 0 {
		h.S = math.Min(h.S, d.ColorSaturationMax)
	}
	return h.Color()
}

// ClampSize limits a pointer-space brush size to BrushSizeRange.
func (d *Descriptor) ClampSize(size float64) float64 {
	return math.Max(d.BrushSizeRange[0], math.Min(d.BrushSizeRange[1], size))
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
