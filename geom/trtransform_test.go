package geom

import (
	"math"
	"testing"
)

func sampleTransforms() []TrTransform {
	return []TrTransform{
		Identity(),
		FromTranslation(Vec3{1, 2, 3}),
		FromRotation(AngleAxis(math.Pi/3, Vec3{0, 1, 0})),
		FromScale(2.5),
		FromTRS(Vec3{-4, 0.5, 7}, AngleAxis(1.1, Vec3{1, 1, 0}), 0.25),
		FromTRS(Vec3{0.1, -0.2, 0.3}, AngleAxis(-2.7, Vec3{0.3, -1, 2}), 3),
	}
}

// =============================================================================
// Composition Tests
// =============================================================================

func TestInvMulUndoesMul(t *testing.T) {
	xfs := sampleTransforms()
	for i, a := range xfs {
		for j, b := range xfs {
			got := InvMul(a, a.Mul(b))
			if !got.Approximately(b) {
				t.Errorf("[%d,%d] InvMul(a, a*b) = %v, want %v", i, j, got, b)
			}
		}
	}
}

func TestInverse(t *testing.T) {
	for i, a := range sampleTransforms() {
		if got := a.Mul(a.Inverse()); !got.IsIdentity() {
			t.Errorf("[%d] a*a^-1 = %v, want identity", i, got)
		}
		if got := a.Inverse().Mul(a); !got.IsIdentity() {
			t.Errorf("[%d] a^-1*a = %v, want identity", i, got)
		}
		if got := InvMul(a, Identity()); !got.Approximately(a.Inverse()) {
			t.Errorf("[%d] InvMul(a, I) = %v, want %v", i, got, a.Inverse())
		}
	}
}

func TestMulAssociative(t *testing.T) {
	xfs := sampleTransforms()
	for i := 0; i+2 < len(xfs); i++ {
		a, b, c := xfs[i], xfs[i+1], xfs[i+2]
		left := a.Mul(b).Mul(c)
		right := a.Mul(b.Mul(c))
		if !left.Approximately(right) {
			t.Errorf("[%d] (ab)c = %v, a(bc) = %v", i, left, right)
		}
	}
}

func TestMulAppliesRightFirst(t *testing.T) {
	parent := FromTRS(Vec3{10, 0, 0}, AngleAxis(math.Pi/2, AxisZ), 2)
	child := FromTranslation(Vec3{1, 0, 0})
	p := parent.Mul(child).MultiplyPoint(Vec3{})
	want := Vec3{10, 2, 0}
	if !vecNear(p, want, 1e-9) {
		t.Errorf("parent*child origin = %v, want %v", p, want)
	}
	if got := parent.MultiplyPoint(child.MultiplyPoint(Vec3{})); !vecNear(got, p, 1e-9) {
		t.Errorf("sequential application = %v, want %v", got, p)
	}
}

// =============================================================================
// Interpolation Tests
// =============================================================================

func TestLerpEndpoints(t *testing.T) {
	xfs := sampleTransforms()
	for i := 0; i+1 < len(xfs); i++ {
		a, b := xfs[i], xfs[i+1]
		if got := Lerp(a, b, 0); !got.Approximately(a) {
			t.Errorf("[%d] Lerp(a,b,0) = %v, want %v", i, got, a)
		}
		if got := Lerp(a, b, 1); !got.Approximately(b) {
			t.Errorf("[%d] Lerp(a,b,1) = %v, want %v", i, got, b)
		}
	}
}

func TestLerpSelf(t *testing.T) {
	for i, a := range sampleTransforms() {
		for _, tt := range []float64{0, 0.1, 0.5, 0.77, 1} {
			if got := Lerp(a, a, tt); !got.Approximately(a) {
				t.Errorf("[%d] Lerp(a,a,%v) = %v, want %v", i, tt, got, a)
			}
		}
	}
}

func TestLerpScaleIsGeometric(t *testing.T) {
	got := Lerp(FromScale(1), FromScale(4), 0.5).Scale
	if math.Abs(got-2) > 1e-12 {
		t.Errorf("midpoint scale = %v, want 2", got)
	}
}

// =============================================================================
// Pivot Tests
// =============================================================================

func TestTransformByMatchesConjugation(t *testing.T) {
	xfs := sampleTransforms()
	for i, a := range xfs {
		for j, pivot := range xfs {
			want := pivot.Mul(a).Mul(pivot.Inverse())
			got := a.TransformBy(pivot)
			if !got.Approximately(want) {
				t.Errorf("[%d,%d] TransformBy = %v, want %v", i, j, got, want)
			}
		}
	}
}

func TestTransformByKeepsPivotFixed(t *testing.T) {
	pivot := FromTranslation(Vec3{3, 4, 5})
	rot := FromRotation(AngleAxis(0.8, Vec3{0, 0, 1}))
	got := rot.TransformBy(pivot).MultiplyPoint(Vec3{3, 4, 5})
	if !vecNear(got, Vec3{3, 4, 5}, 1e-9) {
		t.Errorf("pivot moved to %v", got)
	}
}

// =============================================================================
// Validation Tests
// =============================================================================

func TestIsFinite(t *testing.T) {
	tests := []struct {
		name string
		xf   TrTransform
		want bool
	}{
		{"identity", Identity(), true},
		{"nan translation", FromTranslation(Vec3{math.NaN(), 0, 0}), false},
		{"inf rotation", FromRotation(Quat{W: math.Inf(1)}), false},
		{"nan scale", FromScale(math.NaN()), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.xf.IsFinite(); got != tt.want {
				t.Errorf("IsFinite() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	if !Identity().IsValid() {
		t.Error("identity should be valid")
	}
	if FromScale(0).IsValid() {
		t.Error("zero scale should be invalid")
	}
	if FromScale(-1).IsValid() {
		t.Error("negative scale should be invalid")
	}
}

func TestApproximatelyNegatedRotation(t *testing.T) {
	a := FromRotation(AngleAxis(0.5, AxisX))
	b := FromRotation(Negated(a.Rotation))
	if !a.Approximately(b) {
		t.Error("q and -q should compare equal")
	}
	c := FromScale(1 + 1e-3)
	if c.Approximately(Identity()) {
		t.Error("scale differing by 1e-3 should not compare equal")
	}
}

func TestAxes(t *testing.T) {
	xf := FromRotation(AngleAxis(math.Pi/2, AxisY))
	if got := xf.Forward(); !vecNear(got, Vec3{1, 0, 0}, 1e-9) {
		t.Errorf("Forward() = %v, want +X", got)
	}
	if got := xf.Right(); !vecNear(got, Vec3{0, 0, -1}, 1e-9) {
		t.Errorf("Right() = %v, want -Z", got)
	}
	if got := xf.Up(); !vecNear(got, AxisY, 1e-9) {
		t.Errorf("Up() = %v, want +Y", got)
	}
}

func TestMultiplyScaledQuantities(t *testing.T) {
	xf := FromTRS(Vec3{1, 1, 1}, QuatIdent(), 3)
	if got := xf.MultiplyVector(Vec3{1, 0, 0}); !vecNear(got, Vec3{3, 0, 0}, 1e-12) {
		t.Errorf("MultiplyVector = %v", got)
	}
	if got := xf.MultiplyNormal(Vec3{1, 0, 0}); !vecNear(got, Vec3{1, 0, 0}, 1e-12) {
		t.Errorf("MultiplyNormal = %v", got)
	}
	if got := xf.MultiplyBivector(Vec3{1, 0, 0}); !vecNear(got, Vec3{9, 0, 0}, 1e-12) {
		t.Errorf("MultiplyBivector = %v", got)
	}
}

func TestMat4MatchesMultiplyPoint(t *testing.T) {
	p := Vec3{0.7, -1.3, 2}
	for i, xf := range sampleTransforms() {
		m := xf.Mat4()
		got := m.Mul4x1(p.Vec4(1)).Vec3()
		if want := xf.MultiplyPoint(p); !vecNear(got, want, 1e-9) {
			t.Errorf("[%d] Mat4·p = %v, want %v", i, got, want)
		}
	}
}
