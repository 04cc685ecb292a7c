// Package geom provides the transform algebra shared by the stroke pipeline.
//
// Vectors and quaternions are the mgl64 types from github.com/go-gl/mathgl.
// The local frame convention is +Z forward, +Y up, +X right.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is a 3D vector.
type Vec3 = mgl64.Vec3

// Quat is a quaternion. Rotations are unit quaternions.
type Quat = mgl64.Quat

// Basis vectors of the local frame.
var (
	AxisX = Vec3{1, 0, 0}
	AxisY = Vec3{0, 1, 0}
	AxisZ = Vec3{0, 0, 1}
)

// QuatIdent returns the identity rotation.
func QuatIdent() Quat { return mgl64.QuatIdent() }

// AngleAxis returns a rotation of angle radians about axis.
func AngleAxis(angle float64, axis Vec3) Quat {
	return mgl64.QuatRotate(angle, SafeNormalize(axis, AxisY))
}

// SafeNormalize returns v scaled to unit length, or fallback when v is
// too short to have a direction.
func SafeNormalize(v, fallback Vec3) Vec3 {
	l := v.Len()
	if l < 1e-12 || math.IsNaN(l) || math.IsInf(l, 0) {
		return fallback
	}
	return v.Mul(1 / l)
}

// LookRotation returns the rotation whose forward (+Z) axis is forward and
// whose up (+Y) axis is as close to up as possible.
func LookRotation(forward, up Vec3) Quat {
	f := SafeNormalize(forward, AxisZ)
	r := up.Cross(f)
	if r.LenSqr() < 1e-12 {
		// up is parallel to forward; pick any perpendicular.
		alt := AxisY
		if math.Abs(f.Dot(alt)) > 0.99 {
			alt = AxisX
		}
		r = alt.Cross(f)
	}
	r = r.Normalize()
	u := f.Cross(r)
	m := mgl64.Mat4FromCols(r.Vec4(0), u.Vec4(0), f.Vec4(0), mgl64.Vec4{0, 0, 0, 1})
	return mgl64.Mat4ToQuat(m).Normalize()
}

// FromToRotation returns the shortest rotation taking from onto to.
func FromToRotation(from, to Vec3) Quat {
	return mgl64.QuatBetweenVectors(SafeNormalize(from, AxisZ), SafeNormalize(to, AxisZ))
}

// QuatLog returns the logarithm of a unit quaternion. The result is pure
// (W == 0) and its vector part is axis times half-angle.
func QuatLog(q Quat) Quat {
	sinTheta := q.V.Len()
	theta := math.Atan2(sinTheta, q.W)
	if sinTheta < 1e-5 {
		if q.W > 0 {
			return Quat{W: 0, V: q.V}
		}
		// Near 180 degrees about an ill-defined axis.
		axis := SafeNormalize(q.V, AxisY)
		return Quat{W: 0, V: axis.Mul(theta)}
	}
	return Quat{W: 0, V: q.V.Mul(theta / sinTheta)}
}

// QuatExp is the inverse of QuatLog. Only the vector part of q is used.
func QuatExp(q Quat) Quat {
	vLen := q.V.Len()
	k := 1.0
	if vLen >= 1e-4 {
		k = math.Sin(vLen) / vLen
	}
	return Quat{W: math.Cos(vLen), V: q.V.Mul(k)}
}

// Negated returns -q, which represents the same rotation as q.
func Negated(q Quat) Quat { return q.Scale(-1) }

// SameHemisphere returns q or -q, whichever is closer to ref.
func SameHemisphere(q, ref Quat) Quat {
	if q.Dot(ref) < 0 {
		return Negated(q)
	}
	return q
}

// VecFinite reports whether every component of v is finite.
func VecFinite(v Vec3) bool {
	return finite(v[0]) && finite(v[1]) && finite(v[2])
}

// QuatFinite reports whether every component of q is finite.
func QuatFinite(q Quat) bool {
	return finite(q.W) && VecFinite(q.V)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ConstrainRotationDelta returns the rotation about axis that best takes q0
// to q1, so that q1 ≈ delta·q0 using only twist about axis.
func ConstrainRotationDelta(q0, q1 Quat, axis Vec3) Quat {
	q1 = SameHemisphere(q1, q0)
	axis = SafeNormalize(axis, AxisY)
	adjust := q1.Mul(q0.Inverse())
	ln := QuatLog(adjust.Normalize()).V
	ln = axis.Mul(axis.Dot(ln))
	return QuatExp(Quat{W: 0, V: ln})
}
