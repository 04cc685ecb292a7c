package geom

import "github.com/go-gl/mathgl/mgl64"

// TwoPointObjectTransformationNoScale returns the new pose of an object held
// by two grips, given the grips' poses before (l0, r0) and after (l1, r1)
// the move and the object's pose obj0 before it.
//
// The direction between the grips stays fixed in object space, the point
// at parameter t along the segment l→r stays fixed in object space, and the
// object's scale is preserved. Twist about the grip axis is taken from the
// grips' own rotations, averaged.
func TwoPointObjectTransformationNoScale(l0, r0, l1, r1, obj0 TrTransform, t float64) TrTransform {
	vLR0 := r0.Translation.Sub(l0.Translation)
	vLR1 := r1.Translation.Sub(l1.Translation)

	pivot0 := lerpVec(l0.Translation, r0.Translation, t)
	delta := TrTransform{
		Translation: lerpVec(l1.Translation.Sub(l0.Translation), r1.Translation.Sub(r0.Translation), t),
		Rotation:    FromToRotation(vLR0, vLR1),
		Scale:       1,
	}

	twistL := ConstrainRotationDelta(l0.Rotation, l1.Rotation, vLR0)
	twistR := ConstrainRotationDelta(r0.Rotation, r1.Rotation, vLR0)
	delta = FromRotation(mgl64.QuatSlerp(twistL, twistR, 0.5)).Mul(delta)

	// Rotate about the pivot rather than the origin.
	delta = delta.TransformBy(FromTranslation(pivot0))
	return delta.Mul(obj0)
}

func lerpVec(a, b Vec3, t float64) Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
