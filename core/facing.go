package core

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/signalsfoundry/globe-quiz/model"
)

// TieEpsilon is the score difference under which two countries are
// considered equally front-facing. The earlier catalog entry wins a tie.
const TieEpsilon = 1e-9

// Camera describes the fixed viewpoint. Forward is the viewing direction;
// Position is only used to report distances and is not required to lie on
// the Forward axis.
type Camera struct {
	Position Vec3
	Forward  Vec3
}

// DefaultCamera sits three units out on +Z looking at the origin.
var DefaultCamera = Camera{
	Position: Vec3{Z: 3},
	Forward:  Vec3{Z: -1},
}

// FacingResult is the outcome of one front-facing evaluation. Found is false
// only for an empty catalog.
type FacingResult struct {
	CountryID string
	Found     bool
	Score     float64
}

// Projector evaluates country visibility for a given camera.
type Projector struct {
	camera  Camera
	toward  Vec3 // unit vector from the globe centre back toward the camera
	epsilon float64
}

// ProjectorOption customises a Projector.
type ProjectorOption func(*Projector)

// WithCamera replaces the default camera. A zero Forward vector keeps the
// default viewing direction.
func WithCamera(c Camera) ProjectorOption {
	return func(p *Projector) {
		if c.Forward.Norm() == 0 {
			c.Forward = DefaultCamera.Forward
		}
		p.camera = c
	}
}

// WithTieEpsilon overrides TieEpsilon. Negative values are ignored.
func WithTieEpsilon(eps float64) ProjectorOption {
	return func(p *Projector) {
		if eps >= 0 {
			p.epsilon = eps
		}
	}
}

// NewProjector builds a Projector for DefaultCamera unless overridden.
func NewProjector(opts ...ProjectorOption) *Projector {
	p := &Projector{
		camera:  DefaultCamera,
		epsilon: TieEpsilon,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.toward = p.camera.Forward.Unit().Scale(-1)
	return p
}

// Camera returns the projector's camera.
func (p *Projector) Camera() Camera {
	return p.camera
}

// FacingScore is the cosine between the outward direction of the rotated
// point and the direction back toward the camera: 1 dead centre, 0 on the
// limb, -1 on the far side.
func (p *Projector) FacingScore(rotated SphericalPoint) float64 {
	return rotated.Unit().Dot(p.toward)
}

// CameraDistance returns how far a rotated point is from the camera.
func (p *Projector) CameraDistance(rotated SphericalPoint) float64 {
	return rotated.DistanceTo(p.camera.Position)
}

// Visible reports whether a rotated point lies on the hemisphere facing the
// camera. Points exactly on the limb count as hidden.
func (p *Projector) Visible(rotated SphericalPoint) bool {
	return p.FacingScore(rotated) > 0
}

// ScoreCountry projects c onto the unit sphere, rotates it and scores it.
func (p *Projector) ScoreCountry(c model.Country, rot RotationState) float64 {
	return p.FacingScore(ApplyRotation(ToSphere(c.Coordinate, 1), rot))
}

// DetectFrontFacing returns the catalog entry that most nearly faces the
// camera under rot. It holds no state: identical inputs give identical
// results. Callers decide when the rotation has settled.
func (p *Projector) DetectFrontFacing(rot RotationState, catalog []model.Country) FacingResult {
	var best FacingResult
	for _, c := range catalog {
		score := p.ScoreCountry(c, rot)
		if !best.Found {
			best = FacingResult{CountryID: c.ID, Found: true, Score: score}
			continue
		}
		if score > best.Score && !scalar.EqualWithinAbs(score, best.Score, p.epsilon) {
			best = FacingResult{CountryID: c.ID, Found: true, Score: score}
		}
	}
	return best
}

// FocusRotation returns the rotation, keeping from's axial tilt, that moves
// c to the point of the globe nearest the camera. Of the two yaw solutions
// the one closer to from.Yaw is chosen. When the camera looks partly along
// the Y axis some latitudes cannot be centred exactly; the result then turns
// c as close to the camera as yaw and pitch allow.
func (p *Projector) FocusRotation(c GeoCoordinate, from RotationState) RotationState {
	q := ApplyRotation(ToSphere(c, 1), RotationState{AxisTilt: from.AxisTilt})
	t := p.toward

	// Yaw about Y keeps the Y component, so pick yaw first such that the
	// camera direction, turned back by -yaw, shares q's X component.
	a, b := t.X, -t.Z
	r := math.Hypot(a, b)
	yaw := 0.0
	if r > 0 {
		phi := math.Atan2(b, a)
		d := math.Acos(math.Max(-1, math.Min(1, q.X/r)))
		y1, y2 := WrapAngle(phi+d), WrapAngle(phi-d)
		yaw = y1
		if math.Abs(WrapAngle(y2-from.Yaw)) < math.Abs(WrapAngle(y1-from.Yaw)) {
			yaw = y2
		}
	}

	// Pitch about X then turns q within the Y-Z plane onto that direction.
	w := ApplyRotation(t, RotationState{Yaw: -yaw})
	pitch := WrapAngle(math.Atan2(w.Z, w.Y) - math.Atan2(q.Z, q.Y))

	return RotationState{AxisTilt: from.AxisTilt, Yaw: yaw, Pitch: pitch}
}

var defaultProjector = NewProjector()

// DetectFrontFacing evaluates catalog against DefaultCamera.
func DetectFrontFacing(rot RotationState, catalog []model.Country) FacingResult {
	return defaultProjector.DetectFrontFacing(rot, catalog)
}
