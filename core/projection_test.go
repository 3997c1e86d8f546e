package core

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
)

const tol = 1e-9

func approx(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func vecApprox(a, b Vec3, eps float64) bool {
	return approx(a.X, b.X, eps) && approx(a.Y, b.Y, eps) && approx(a.Z, b.Z, eps)
}

func TestToSphere_KnownPoints(t *testing.T) {
	cases := []struct {
		name  string
		coord GeoCoordinate
		want  Vec3
	}{
		{"prime meridian", GeoCoordinate{Latitude: 0, Longitude: 0}, Vec3{X: 1}},
		{"90 east", GeoCoordinate{Latitude: 0, Longitude: 90}, Vec3{Z: -1}},
		{"90 west", GeoCoordinate{Latitude: 0, Longitude: -90}, Vec3{Z: 1}},
		{"antimeridian", GeoCoordinate{Latitude: 0, Longitude: 180}, Vec3{X: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ToSphere(tc.coord, 1)
			if !vecApprox(got, tc.want, tol) {
				t.Fatalf("ToSphere(%+v) = %+v, want %+v", tc.coord, got, tc.want)
			}
		})
	}
}

func TestToSphere_NormEqualsRadius(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 500; i++ {
		c := GeoCoordinate{
			Latitude:  rng.Float64()*180 - 90,
			Longitude: rng.Float64()*360 - 180,
		}
		r := 0.5 + rng.Float64()*10
		if got := ToSphere(c, r).Norm(); !approx(got, r, 1e-9*r) {
			t.Fatalf("|ToSphere(%+v, %v)| = %v, want %v", c, r, got, r)
		}
	}
}

func TestToSphere_PolesIgnoreLongitude(t *testing.T) {
	for _, lng := range []float64{-180, -123.4, 0, 45, 179.9, 180} {
		if got := ToSphere(GeoCoordinate{Latitude: 90, Longitude: lng}, 1); got != (Vec3{Y: 1}) {
			t.Fatalf("north pole at lng %v = %+v, want (0,1,0)", lng, got)
		}
		if got := ToSphere(GeoCoordinate{Latitude: -90, Longitude: lng}, 1); got != (Vec3{Y: -1}) {
			t.Fatalf("south pole at lng %v = %+v, want (0,-1,0)", lng, got)
		}
	}
	if got := ToSphere(GeoCoordinate{Latitude: 90}, 2.5); got != (Vec3{Y: 2.5}) {
		t.Fatalf("north pole at r=2.5 = %+v", got)
	}
}

func TestToSphere_DefaultsBadRadius(t *testing.T) {
	c := GeoCoordinate{Latitude: 12, Longitude: 34}
	want := ToSphere(c, 1)
	for _, r := range []float64{0, -3, math.NaN(), math.Inf(1)} {
		if got := ToSphere(c, r); got != want {
			t.Fatalf("ToSphere(radius=%v) = %+v, want unit-sphere point %+v", r, got, want)
		}
	}
}

func TestToSphere_Deterministic(t *testing.T) {
	c := GeoCoordinate{Latitude: 36, Longitude: 138}
	if a, b := ToSphere(c, 1), ToSphere(c, 1); a != b {
		t.Fatalf("ToSphere not deterministic: %+v vs %+v", a, b)
	}
}

func TestProjectionRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 1000; i++ {
		c := GeoCoordinate{
			Latitude:  rng.Float64()*179.8 - 89.9,
			Longitude: rng.Float64()*359.8 - 179.9,
		}
		got := FromSphere(ToSphere(c, 3))
		if !approx(got.Latitude, c.Latitude, 1e-6) || !approx(got.Longitude, c.Longitude, 1e-6) {
			t.Fatalf("round trip %+v -> %+v", c, got)
		}
	}
}

func TestFromSphere_Poles(t *testing.T) {
	if got := FromSphere(Vec3{Y: 4}); got != (GeoCoordinate{Latitude: 90}) {
		t.Fatalf("FromSphere(north) = %+v", got)
	}
	if got := FromSphere(Vec3{Y: -1}); got != (GeoCoordinate{Latitude: -90}) {
		t.Fatalf("FromSphere(south) = %+v", got)
	}
	if got := FromSphere(Vec3{}); got != (GeoCoordinate{}) {
		t.Fatalf("FromSphere(zero) = %+v", got)
	}
}

func TestNormalizeCoordinate(t *testing.T) {
	cases := []struct {
		in, want GeoCoordinate
	}{
		{GeoCoordinate{Latitude: 95, Longitude: 10}, GeoCoordinate{Latitude: 90, Longitude: 10}},
		{GeoCoordinate{Latitude: -120, Longitude: 10}, GeoCoordinate{Latitude: -90, Longitude: 10}},
		{GeoCoordinate{Latitude: 10, Longitude: 190}, GeoCoordinate{Latitude: 10, Longitude: -170}},
		{GeoCoordinate{Latitude: 10, Longitude: -190}, GeoCoordinate{Latitude: 10, Longitude: 170}},
		{GeoCoordinate{Latitude: 10, Longitude: 540}, GeoCoordinate{Latitude: 10, Longitude: -180}},
		{GeoCoordinate{Latitude: 10, Longitude: 180}, GeoCoordinate{Latitude: 10, Longitude: 180}},
		{GeoCoordinate{Latitude: math.NaN(), Longitude: math.Inf(-1)}, GeoCoordinate{}},
	}
	for _, tc := range cases {
		got := NormalizeCoordinate(tc.in)
		if !approx(got.Latitude, tc.want.Latitude, tol) || !approx(got.Longitude, tc.want.Longitude, tol) {
			t.Fatalf("NormalizeCoordinate(%+v) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestToSphere_OutOfRangeMatchesNormalized(t *testing.T) {
	raw := GeoCoordinate{Latitude: 100, Longitude: 370}
	if got, want := ToSphere(raw, 1), ToSphere(NormalizeCoordinate(raw), 1); got != want {
		t.Fatalf("ToSphere(%+v) = %+v, want %+v", raw, got, want)
	}
	wrapped := ToSphere(GeoCoordinate{Latitude: 20, Longitude: 370}, 1)
	direct := ToSphere(GeoCoordinate{Latitude: 20, Longitude: 10}, 1)
	if !vecApprox(wrapped, direct, tol) {
		t.Fatalf("lng 370 = %+v, lng 10 = %+v", wrapped, direct)
	}
}

func TestValidateCoordinate(t *testing.T) {
	if err := ValidateCoordinate(GeoCoordinate{Latitude: 90, Longitude: -180}); err != nil {
		t.Fatalf("boundary coordinate rejected: %v", err)
	}
	for _, c := range []GeoCoordinate{
		{Latitude: 90.1},
		{Longitude: -180.5},
		{Latitude: math.NaN()},
	} {
		if err := ValidateCoordinate(c); !errors.Is(err, ErrInvalidCoordinate) {
			t.Fatalf("ValidateCoordinate(%+v) = %v, want ErrInvalidCoordinate", c, err)
		}
	}
}

func TestApplyAndUndoRotation(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	for i := 0; i < 200; i++ {
		p := ToSphere(GeoCoordinate{
			Latitude:  rng.Float64()*180 - 90,
			Longitude: rng.Float64()*360 - 180,
		}, 1)
		rot := RotationState{
			AxisTilt: DefaultAxisTilt,
			Yaw:      rng.Float64()*4*math.Pi - 2*math.Pi,
			Pitch:    rng.Float64()*2*math.Pi - math.Pi,
		}
		rotated := ApplyRotation(p, rot)
		if !approx(rotated.Norm(), 1, 1e-9) {
			t.Fatalf("rotation changed length: %v", rotated.Norm())
		}
		if back := UndoRotation(rotated, rot); !vecApprox(back, p, 1e-9) {
			t.Fatalf("UndoRotation(ApplyRotation(%+v)) = %+v", p, back)
		}
	}
}

func TestApplyRotation_AxisConventions(t *testing.T) {
	// Yaw turns +X toward -Z, pitch turns +Y toward +Z, tilt turns +X toward +Y.
	if got := ApplyRotation(Vec3{X: 1}, RotationState{Yaw: math.Pi / 2}); !vecApprox(got, Vec3{Z: -1}, tol) {
		t.Fatalf("yaw: got %+v", got)
	}
	if got := ApplyRotation(Vec3{Y: 1}, RotationState{Pitch: math.Pi / 2}); !vecApprox(got, Vec3{Z: 1}, tol) {
		t.Fatalf("pitch: got %+v", got)
	}
	if got := ApplyRotation(Vec3{X: 1}, RotationState{AxisTilt: math.Pi / 2}); !vecApprox(got, Vec3{Y: 1}, tol) {
		t.Fatalf("tilt: got %+v", got)
	}
}

func TestApplyRotation_TiltBeforePitchBeforeYaw(t *testing.T) {
	rot := RotationState{AxisTilt: math.Pi / 2, Pitch: math.Pi / 2, Yaw: math.Pi / 2}
	// +X -> tilt -> +Y -> pitch -> +Z -> yaw -> +X
	if got := ApplyRotation(Vec3{X: 1}, rot); !vecApprox(got, Vec3{X: 1}, tol) {
		t.Fatalf("composition order: got %+v, want (1,0,0)", got)
	}
}

func TestTargetRotationFor(t *testing.T) {
	got := TargetRotationFor(GeoCoordinate{Latitude: 36, Longitude: 138})
	if !approx(got.Yaw, -138*math.Pi/180, tol) || !approx(got.Pitch, -36*math.Pi/180, tol) {
		t.Fatalf("TargetRotationFor(JP) = %+v", got)
	}
	if got.AxisTilt != DefaultAxisTilt {
		t.Fatalf("tilt = %v, want %v", got.AxisTilt, DefaultAxisTilt)
	}
}

func TestWrapAngle(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
		{math.NaN(), 0},
	}
	for _, tc := range cases {
		if got := WrapAngle(tc.in); !approx(got, tc.want, 1e-12) {
			t.Fatalf("WrapAngle(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
