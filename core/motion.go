package core

import (
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

// DefaultSpinRate is the idle spin of the globe in radians per second
// (0.02 rad per frame at 60 frames per second).
const DefaultSpinRate = 1.2

// DefaultTransitionRate bounds how fast a focus transition turns the globe,
// in radians per second.
const DefaultTransitionRate = math.Pi

// RotationModel advances the globe orientation by dt. moving is false once
// the model has nothing left to do; the driver uses it to start the settle
// timer.
type RotationModel interface {
	Advance(rot RotationState, now time.Time, dt time.Duration) (next RotationState, moving bool)
}

// StaticModel leaves the rotation unchanged.
type StaticModel struct{}

// Advance for a static globe does nothing.
func (StaticModel) Advance(rot RotationState, _ time.Time, _ time.Duration) (RotationState, bool) {
	return rot, false
}

// SpinModel turns the globe about its vertical axis at a constant rate until
// Until (if set) has passed.
type SpinModel struct {
	Rate  float64 // radians per second
	Until time.Time
}

// Advance adds Rate*dt to the yaw while the spin is active.
func (m SpinModel) Advance(rot RotationState, now time.Time, dt time.Duration) (RotationState, bool) {
	if !m.Until.IsZero() && !now.Before(m.Until) {
		return rot, false
	}
	rate := m.Rate
	if rate == 0 {
		rate = DefaultSpinRate
	}
	rot.Yaw = WrapAngle(rot.Yaw + rate*dt.Seconds())
	return rot, true
}

// TransitionModel turns the globe toward Target at no more than MaxRate
// radians per second on each axis. Yaw takes the shorter way round.
type TransitionModel struct {
	Target  RotationState
	MaxRate float64
}

// NewTransitionModel targets TargetRotationFor(c).
func NewTransitionModel(c GeoCoordinate, maxRate float64) *TransitionModel {
	return &TransitionModel{Target: TargetRotationFor(c), MaxRate: maxRate}
}

// Advance moves yaw and pitch one step closer to the target. The tilt snaps
// to the target immediately.
func (m *TransitionModel) Advance(rot RotationState, _ time.Time, dt time.Duration) (RotationState, bool) {
	rate := m.MaxRate
	if rate <= 0 {
		rate = DefaultTransitionRate
	}
	step := rate * dt.Seconds()

	rot.AxisTilt = m.Target.AxisTilt
	yawDelta := WrapAngle(m.Target.Yaw - rot.Yaw)
	pitchDelta := m.Target.Pitch - rot.Pitch

	rot.Yaw = WrapAngle(rot.Yaw + clampStep(yawDelta, step))
	rot.Pitch += clampStep(pitchDelta, step)

	done := math.Abs(WrapAngle(m.Target.Yaw-rot.Yaw)) < 1e-12 && math.Abs(m.Target.Pitch-rot.Pitch) < 1e-12
	if done {
		rot.Yaw = WrapAngle(m.Target.Yaw)
		rot.Pitch = m.Target.Pitch
	}
	return rot, !done
}

func clampStep(delta, step float64) float64 {
	if delta > step {
		return step
	}
	if delta < -step {
		return -step
	}
	return delta
}

// SiderealModel keeps the globe turning with the real Earth: yaw follows
// Greenwich mean sidereal time, so the globe completes one turn per sidereal
// day. Offset shifts the phase.
type SiderealModel struct {
	Offset float64
}

// Advance sets the yaw from GMST at now. It always reports moving, so a
// sidereal globe never settles on its own.
func (m SiderealModel) Advance(rot RotationState, now time.Time, _ time.Duration) (RotationState, bool) {
	rot.Yaw = WrapAngle(GMST(now) + m.Offset)
	return rot, true
}

// GMST returns Greenwich mean sidereal time at t in radians.
func GMST(t time.Time) float64 {
	t = t.UTC()
	year, month, day := t.Date()
	hour, min, sec := t.Clock()
	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	return satellite.ThetaG_JD(jd)
}
