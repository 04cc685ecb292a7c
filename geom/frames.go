package geom

import "math"

// MinimalRotationFrame returns an orientation whose forward axis is tangent
// and which differs from prev by swing only, with no twist about the
// tangent. When prev is nil a new frame is bootstrapped from the up axis of
// bootstrap, or its right axis when up is nearly parallel to tangent.
func MinimalRotationFrame(tangent Vec3, prev *Quat, bootstrap Quat) Quat {
	tangent = SafeNormalize(tangent, AxisZ)
	if prev == nil {
		up := bootstrap.Rotate(AxisY)
		if math.Abs(up.Dot(tangent)) > 0.99 {
			up = bootstrap.Rotate(AxisX)
		}
		return LookRotation(tangent, up)
	}
	prevTangent := prev.Rotate(AxisZ)
	return FromToRotation(prevTangent, tangent).Mul(*prev).Normalize()
}

// MinimalRotationFrames computes one orientation per point of a polyline by
// parallel transport. Each frame's forward axis follows the direction of
// travel. The first frame is bootstrapped from bootstrap. Repeated points
// reuse the previous tangent.
func MinimalRotationFrames(points []Vec3, bootstrap Quat) []Quat {
	frames := make([]Quat, len(points))
	if len(points) == 0 {
		return frames
	}
	var prev *Quat
	tangent := bootstrap.Rotate(AxisZ)
	for i := range points {
		var d Vec3
		switch {
		case i+1 < len(points):
			d = points[i+1].Sub(points[i])
		case i > 0:
			d = points[i].Sub(points[i-1])
		}
		if d.LenSqr() > 1e-18 {
			tangent = d.Normalize()
		}
		frames[i] = MinimalRotationFrame(tangent, prev, bootstrap)
		prev = &frames[i]
	}
	return frames
}
