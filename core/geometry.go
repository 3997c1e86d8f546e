package core

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a Cartesian vector in globe units. The globe is centred on the
// origin with +Y through the north pole; the camera sits on +Z.
type Vec3 struct {
	X, Y, Z float64
}

// SphericalPoint is a point on (or near) the globe surface. It has no
// identity of its own and is always recomputed from a coordinate.
type SphericalPoint = Vec3

// DistanceTo returns the straight-line distance between two points.
func (v Vec3) DistanceTo(other Vec3) float64 {
	return v.Sub(other).Norm()
}

// Norm returns the Euclidean norm of the vector.
func (v Vec3) Norm() float64 {
	return r3.Norm(v.r3())
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return fromR3(r3.Sub(v.r3(), other.r3()))
}

// Scale returns v multiplied by f.
func (v Vec3) Scale(f float64) Vec3 {
	return fromR3(r3.Scale(f, v.r3()))
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(other Vec3) float64 {
	return r3.Dot(v.r3(), other.r3())
}

// Unit returns v scaled to length one. The zero vector is returned as is.
func (v Vec3) Unit() Vec3 {
	n := v.Norm()
	if n == 0 {
		return v
	}
	return v.Scale(1 / n)
}

// AngleTo returns the angle between two vectors in radians, or 0 if either
// is the zero vector.
func (v Vec3) AngleTo(other Vec3) float64 {
	n := v.Norm() * other.Norm()
	if n == 0 {
		return 0
	}
	cos := v.Dot(other) / n
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos)
}

func (v Vec3) r3() r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

func fromR3(v r3.Vec) Vec3 {
	return Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

// CentralAngleDegrees returns the great-circle angle between two coordinates
// in degrees. Quiz feedback uses it to say how far off a wrong answer was.
func CentralAngleDegrees(a, b GeoCoordinate) float64 {
	return ToSphere(a, 1).AngleTo(ToSphere(b, 1)) * 180.0 / math.Pi
}
