package geom

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Default tolerances for Approximately.
const (
	// EpsilonTranslation is the absolute tolerance for translation components.
	EpsilonTranslation = 1e-5
	// EpsilonRotation is the absolute tolerance for quaternion components.
	EpsilonRotation = 1e-5
	// EpsilonScale is the tolerance for scale, relative to the larger scale.
	EpsilonScale = 1e-6
)

// TrTransform is a translation, a rotation and a uniform scale.
//
// Applied to a point p it yields Rotation·(Scale·p) + Translation.
// A valid transform has a finite, strictly positive Scale and a unit
// Rotation. TrTransform is a value type: every method returns a new value.
type TrTransform struct {
	Translation Vec3
	Rotation    Quat
	Scale       float64
}

// Identity returns the identity transform.
func Identity() TrTransform {
	return TrTransform{Rotation: QuatIdent(), Scale: 1}
}

// FromTRS builds a transform from its components.
func FromTRS(t Vec3, r Quat, s float64) TrTransform {
	return TrTransform{Translation: t, Rotation: r, Scale: s}
}

// FromTranslation returns a pure translation.
func FromTranslation(t Vec3) TrTransform {
	return TrTransform{Translation: t, Rotation: QuatIdent(), Scale: 1}
}

// FromRotation returns a pure rotation.
func FromRotation(r Quat) TrTransform {
	return TrTransform{Rotation: r, Scale: 1}
}

// FromScale returns a pure uniform scale.
func FromScale(s float64) TrTransform {
	return TrTransform{Rotation: QuatIdent(), Scale: s}
}

// FromTR returns a transform with unit scale.
func FromTR(t Vec3, r Quat) TrTransform {
	return TrTransform{Translation: t, Rotation: r, Scale: 1}
}

// Mul composes a and b: the result applies b first, then a.
// It expresses b in a's frame, like chaining a child under a parent.
func (a TrTransform) Mul(b TrTransform) TrTransform {
	return TrTransform{
		Translation: a.Rotation.Rotate(b.Translation.Mul(a.Scale)).Add(a.Translation),
		Rotation:    a.Rotation.Mul(b.Rotation),
		Scale:       a.Scale * b.Scale,
	}
}

// Inverse returns the transform that undoes a.
// The rotation is inverted without assuming unit length.
func (a TrTransform) Inverse() TrTransform {
	rinv := a.Rotation.Inverse()
	invScale := 1 / a.Scale
	return TrTransform{
		Translation: rinv.Rotate(a.Translation.Mul(-invScale)),
		Rotation:    rinv,
		Scale:       invScale,
	}
}

// InvMul returns a⁻¹·b without building the intermediate inverse.
func InvMul(a, b TrTransform) TrTransform {
	rinv := a.Rotation.Inverse()
	return TrTransform{
		Translation: rinv.Rotate(b.Translation.Sub(a.Translation).Mul(1 / a.Scale)),
		Rotation:    rinv.Mul(b.Rotation),
		Scale:       b.Scale / a.Scale,
	}
}

// Lerp interpolates between a and b. Translation is linear, rotation is
// spherical and scale is geometric.
func Lerp(a, b TrTransform, t float64) TrTransform {
	return TrTransform{
		Translation: a.Translation.Add(b.Translation.Sub(a.Translation).Mul(t)),
		Rotation:    mgl64.QuatSlerp(a.Rotation, b.Rotation, t),
		Scale:       math.Exp(lerp(math.Log(a.Scale), math.Log(b.Scale), t)),
	}
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

// TransformBy returns pivot·a·pivot⁻¹: the same change as a, expressed about
// the pivot frame instead of the origin. Scale is unchanged.
func (a TrTransform) TransformBy(pivot TrTransform) TrTransform {
	similar := pivot.Rotation.Mul(a.Rotation).Mul(pivot.Rotation.Inverse())
	t := similar.Rotate(pivot.Translation.Mul(-a.Scale)).
		Add(pivot.Rotation.Rotate(a.Translation.Mul(pivot.Scale))).
		Add(pivot.Translation)
	return TrTransform{Translation: t, Rotation: similar, Scale: a.Scale}
}

// MultiplyPoint transforms a position.
func (a TrTransform) MultiplyPoint(p Vec3) Vec3 {
	return a.Rotation.Rotate(p.Mul(a.Scale)).Add(a.Translation)
}

// MultiplyVector transforms a displacement; translation is ignored.
func (a TrTransform) MultiplyVector(v Vec3) Vec3 {
	return a.Rotation.Rotate(v.Mul(a.Scale))
}

// MultiplyNormal transforms a surface normal. Uniform scale does not change
// a normal's direction, so only the rotation applies.
func (a TrTransform) MultiplyNormal(n Vec3) Vec3 {
	return a.Rotation.Rotate(n)
}

// MultiplyBivector transforms an oriented area element, which picks up
// the square of the scale.
func (a TrTransform) MultiplyBivector(b Vec3) Vec3 {
	return a.Rotation.Rotate(b.Mul(a.Scale * a.Scale))
}

// Forward returns the transformed +Z axis.
func (a TrTransform) Forward() Vec3 { return a.Rotation.Rotate(AxisZ) }

// Up returns the transformed +Y axis.
func (a TrTransform) Up() Vec3 { return a.Rotation.Rotate(AxisY) }

// Right returns the transformed +X axis.
func (a TrTransform) Right() Vec3 { return a.Rotation.Rotate(AxisX) }

// IsFinite reports whether every component of a is finite.
func (a TrTransform) IsFinite() bool {
	return VecFinite(a.Translation) && QuatFinite(a.Rotation) && finite(a.Scale)
}

// IsValid reports whether a is finite, has a positive scale and a
// non-degenerate rotation.
func (a TrTransform) IsValid() bool {
	return a.IsFinite() && a.Scale > 0 && a.Rotation.Len() > 1e-6
}

// WithScale returns a copy of a with its scale replaced.
func (a TrTransform) WithScale(s float64) TrTransform {
	a.Scale = s
	return a
}

// Approximately reports whether a and b are equal within the default
// tolerances. q and -q compare equal.
func (a TrTransform) Approximately(b TrTransform) bool {
	return a.ApproximatelyWithin(b, EpsilonTranslation, EpsilonRotation, EpsilonScale)
}

// ApproximatelyWithin is Approximately with explicit tolerances. epsT and
// epsR are absolute, epsS is relative to the larger of the two scales.
func (a TrTransform) ApproximatelyWithin(b TrTransform, epsT, epsR, epsS float64) bool {
	if !vecNear(a.Translation, b.Translation, epsT) {
		return false
	}
	br := SameHemisphere(b.Rotation, a.Rotation)
	if math.Abs(a.Rotation.W-br.W) > epsR || !vecNear(a.Rotation.V, br.V, epsR) {
		return false
	}
	m := math.Max(math.Abs(a.Scale), math.Abs(b.Scale))
	return math.Abs(a.Scale-b.Scale) <= epsS*math.Max(m, 1e-12)
}

// IsIdentity reports whether a is approximately the identity.
func (a TrTransform) IsIdentity() bool {
	return a.Approximately(Identity())
}

// Mat4 returns a as a column-major 4x4 matrix.
func (a TrTransform) Mat4() mgl64.Mat4 {
	return mgl64.Translate3D(a.Translation[0], a.Translation[1], a.Translation[2]).
		Mul4(a.Rotation.Mat4()).
		Mul4(mgl64.Scale3D(a.Scale, a.Scale, a.Scale))
}

func (a TrTransform) String() string {
	return fmt.Sprintf("T(%g %g %g) R(%g %g %g %g) S(%g)",
		a.Translation[0], a.Translation[1], a.Translation[2],
		a.Rotation.V[0], a.Rotation.V[1], a.Rotation.V[2], a.Rotation.W,
		a.Scale)
}

func vecNear(a, b Vec3, eps float64) bool {
	return math.Abs(a[0]-b[0]) <= eps && math.Abs(a[1]-b[1]) <= eps && math.Abs(a[2]-b[2]) <= eps
}
