package brush

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// squareAspect is the height:width ratio of the square cross-section.
const squareAspect = 0.375

// ringPoint is one vertex of a unit cross-section in the ring's local XY
// plane, with its outward normal.
type ringPoint struct {
	pos    mgl64.Vec2
	normal mgl64.Vec2
}

// roundRing returns k points on the unit circle, counter-clockwise about +Z.
func roundRing(k int) []ringPoint {
	ring := make([]ringPoint, k)
	for j := range ring {
		s, c := math.Sincos(float64(j) / float64(k) * 2 * math.Pi)
		ring[j] = ringPoint{pos: mgl64.Vec2{c, s}, normal: mgl64.Vec2{c, s}}
	}
	return ring
}

// squareRing returns the 8-point rectangle outline: the corners and edge
// midpoints of a 2 × 0.75 box, counter-clockwise about +Z. Corner normals
// bisect the adjacent faces.
func squareRing() []ringPoint {
	const h = squareAspect
	const d = math.Sqrt2 / 2
	return []ringPoint{
		{mgl64.Vec2{1, 0}, mgl64.Vec2{1, 0}},
		{mgl64.Vec2{1, h}, mgl64.Vec2{d, d}},
		{mgl64.Vec2{0, h}, mgl64.Vec2{0, 1}},
		{mgl64.Vec2{-1, h}, mgl64.Vec2{-d, d}},
		{mgl64.Vec2{-1, 0}, mgl64.Vec2{-1, 0}},
		{mgl64.Vec2{-1, -h}, mgl64.Vec2{-d, -d}},
		{mgl64.Vec2{0, -h}, mgl64.Vec2{0, -1}},
		{mgl64.Vec2{1, -h}, mgl64.Vec2{d, -d}},
	}
}
