package brush

import "math"

// shapeScale returns the radius multiplier of a shape modifier at
// normalized stroke position t in [0, 1].
func shapeScale(desc *Descriptor, t float64) float64 {
	switch desc.ShapeModifier {
	case ShapeTaper:
		scalar := desc.TaperScalar
		if scalar <= 0 {
			scalar = 1
		}
		return scalar * (1 - t)
	case ShapeDoubleSidedTaper:
		return 1 - math.Abs(2*t-1)
	case ShapeSin, ShapePetal:
		return math.Abs(math.Sin(t * math.Pi))
	case ShapeComet:
		return math.Sin(1.5*t + 1.55)
	default:
		return 1
	}
}
