package core

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/signalsfoundry/globe-quiz/model"
)

// GeoCoordinate is re-exported so geometry callers need not import model.
type GeoCoordinate = model.GeoCoordinate

const (
	degToRad = math.Pi / 180.0
	radToDeg = 180.0 / math.Pi

	// DefaultAxisTiltDegrees is Earth's axial tilt applied to the globe mesh.
	DefaultAxisTiltDegrees = 23.5
)

// DefaultAxisTilt is DefaultAxisTiltDegrees in radians.
var DefaultAxisTilt = DefaultAxisTiltDegrees * degToRad

// ErrInvalidCoordinate is returned by ValidateCoordinate for coordinates
// outside the geographic domain.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

var (
	axisX = r3.Vec{X: 1}
	axisY = r3.Vec{Y: 1}
	axisZ = r3.Vec{Z: 1}
)

// RotationState is the orientation applied to the globe mesh, in radians.
// It is a plain value: the animation driver owns the mutable copy and hands
// snapshots to the projection functions.
type RotationState struct {
	AxisTilt float64 // rotation about Z, constant during play
	Yaw      float64 // rotation about Y
	Pitch    float64 // rotation about X
}

// NewRotation returns a rotation with the default axial tilt.
func NewRotation(yaw, pitch float64) RotationState {
	return RotationState{AxisTilt: DefaultAxisTilt, Yaw: yaw, Pitch: pitch}
}

// NormalizeCoordinate clamps latitude to [-90, 90] and wraps longitude into
// [-180, 180]. NaN components become 0. Every projection function applies it,
// so out-of-range input is never an error in this package.
func NormalizeCoordinate(c GeoCoordinate) GeoCoordinate {
	lat := c.Latitude
	switch {
	case math.IsNaN(lat):
		lat = 0
	case lat > 90:
		lat = 90
	case lat < -90:
		lat = -90
	}

	lng := c.Longitude
	switch {
	case math.IsNaN(lng), math.IsInf(lng, 0):
		lng = 0
	case lng < -180 || lng > 180:
		lng = math.Mod(lng+180, 360)
		if lng < 0 {
			lng += 360
		}
		lng -= 180
	}
	return GeoCoordinate{Latitude: lat, Longitude: lng}
}

// ValidateCoordinate reports ErrInvalidCoordinate when c lies outside the
// geographic domain. Catalog ingestion uses it to reject bad data; the
// projection functions themselves normalize instead.
func ValidateCoordinate(c GeoCoordinate) error {
	if math.IsNaN(c.Latitude) || c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v outside [-90, 90]", ErrInvalidCoordinate, c.Latitude)
	}
	if math.IsNaN(c.Longitude) || c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v outside [-180, 180]", ErrInvalidCoordinate, c.Longitude)
	}
	return nil
}

// ToSphere maps a coordinate onto a sphere of the given radius using
// colatitude phi = 90-lat and azimuth theta = lng+180. A non-positive radius
// means the unit sphere. The poles map to (0, ±radius, 0) for any longitude.
func ToSphere(c GeoCoordinate, radius float64) SphericalPoint {
	if !(radius > 0) || math.IsInf(radius, 0) {
		radius = 1
	}
	c = NormalizeCoordinate(c)

	switch c.Latitude {
	case 90:
		return SphericalPoint{Y: radius}
	case -90:
		return SphericalPoint{Y: -radius}
	}

	phi := (90 - c.Latitude) * degToRad
	theta := (c.Longitude + 180) * degToRad

	return SphericalPoint{
		X: -radius * math.Sin(phi) * math.Cos(theta),
		Y: radius * math.Cos(phi),
		Z: radius * math.Sin(phi) * math.Sin(theta),
	}
}

// FromSphere is the inverse of ToSphere. The radius of p is ignored.
// Longitude is reported as 0 at the poles and for the zero vector.
func FromSphere(p SphericalPoint) GeoCoordinate {
	r := p.Norm()
	if r == 0 {
		return GeoCoordinate{}
	}
	y := p.Y / r
	if y > 1 {
		y = 1
	} else if y < -1 {
		y = -1
	}
	lat := math.Asin(y) * radToDeg

	if p.X == 0 && p.Z == 0 {
		return GeoCoordinate{Latitude: lat}
	}
	// x = cos(lat)cos(lng), z = -cos(lat)sin(lng)
	lng := math.Atan2(-p.Z, p.X) * radToDeg
	return GeoCoordinate{Latitude: lat, Longitude: lng}
}

// ApplyRotation rotates p the same way the globe mesh is rotated: the axial
// tilt about Z first, then pitch about X, then yaw about Y.
func ApplyRotation(p SphericalPoint, rot RotationState) SphericalPoint {
	v := p.r3()
	v = r3.NewRotation(rot.AxisTilt, axisZ).Rotate(v)
	v = r3.NewRotation(rot.Pitch, axisX).Rotate(v)
	v = r3.NewRotation(rot.Yaw, axisY).Rotate(v)
	return fromR3(v)
}

// UndoRotation is the inverse of ApplyRotation.
func UndoRotation(p SphericalPoint, rot RotationState) SphericalPoint {
	v := p.r3()
	v = r3.NewRotation(-rot.Yaw, axisY).Rotate(v)
	v = r3.NewRotation(-rot.Pitch, axisX).Rotate(v)
	v = r3.NewRotation(-rot.AxisTilt, axisZ).Rotate(v)
	return fromR3(v)
}

// TargetRotationFor returns the yaw and pitch that turn c toward the camera.
// Western longitudes give positive yaw, northern latitudes negative pitch.
// The tilt is left at its default; callers animate toward the result.
func TargetRotationFor(c GeoCoordinate) RotationState {
	c = NormalizeCoordinate(c)
	return RotationState{
		AxisTilt: DefaultAxisTilt,
		Yaw:      -c.Longitude * degToRad,
		Pitch:    -c.Latitude * degToRad,
	}
}

// WrapAngle maps an angle in radians into (-π, π].
func WrapAngle(a float64) float64 {
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return 0
	}
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
