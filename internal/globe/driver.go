// Package globe owns the animated globe: the mutable rotation, the motion
// model driving it, and the settled front-facing country.
package globe

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/signalsfoundry/globe-quiz/core"
	"github.com/signalsfoundry/globe-quiz/internal/logging"
	"github.com/signalsfoundry/globe-quiz/kb"
	"github.com/signalsfoundry/globe-quiz/model"
	"github.com/signalsfoundry/globe-quiz/timectrl"
)

// DefaultSettleDelay is how long the globe must stay still before the front
// country is evaluated.
const DefaultSettleDelay = 3 * time.Second

// Frame is the globe state after one tick.
type Frame struct {
	Time     time.Time
	Rotation core.RotationState
	Moving   bool
	// Settled is true once the globe has been still for the settle delay.
	Settled bool
	// Front and Country are only meaningful when Settled is true.
	Front   core.FacingResult
	Country model.Country
}

// MetricsRecorder receives one call per settled evaluation.
type MetricsRecorder interface {
	ObserveFacing(found bool, score float64)
}

// Driver advances the rotation on every tick and evaluates the front
// country once motion has settled. All methods are safe for concurrent use.
type Driver struct {
	mu sync.RWMutex

	catalog   *kb.Catalog
	projector *core.Projector
	clock     timectrl.FrameClock
	log       logging.Logger
	metrics   MetricsRecorder

	settleDelay    time.Duration
	spinRate       float64
	transitionRate float64

	rot       core.RotationState
	motion    core.RotationModel
	lastTick  time.Time
	stoppedAt time.Time
	settled   bool
	frame     Frame

	subs        map[int]func(Frame)
	nextSub     int
	unsubscribe func()
}

// Option customises a Driver.
type Option func(*Driver)

// WithProjector replaces the default-camera projector.
func WithProjector(p *core.Projector) Option {
	return func(d *Driver) {
		if p != nil {
			d.projector = p
		}
	}
}

// WithClock gives Spin a frame-time reference before the first tick.
func WithClock(c timectrl.FrameClock) Option {
	return func(d *Driver) { d.clock = c }
}

// WithLogger attaches a structured logger.
func WithLogger(l logging.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.log = l
		}
	}
}

// WithMetricsRecorder attaches an optional metrics recorder.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(d *Driver) { d.metrics = m }
}

// WithSettleDelay overrides DefaultSettleDelay. Negative values are ignored.
func WithSettleDelay(delay time.Duration) Option {
	return func(d *Driver) {
		if delay >= 0 {
			d.settleDelay = delay
		}
	}
}

// WithSpinRate sets the yaw rate used by Spin, in radians per second.
func WithSpinRate(rate float64) Option {
	return func(d *Driver) { d.spinRate = rate }
}

// WithTransitionRate sets the turn rate used by FocusOn, in radians per second.
func WithTransitionRate(rate float64) Option {
	return func(d *Driver) { d.transitionRate = rate }
}

// WithRotation sets the starting orientation.
func WithRotation(rot core.RotationState) Option {
	return func(d *Driver) { d.rot = rot }
}

// NewDriver builds a static globe over catalog, tilted by the default axial
// tilt. Catalog changes invalidate a settled front country; Close stops
// listening.
func NewDriver(catalog *kb.Catalog, opts ...Option) *Driver {
	d := &Driver{
		catalog:        catalog,
		projector:      core.NewProjector(),
		log:            logging.Noop(),
		settleDelay:    DefaultSettleDelay,
		spinRate:       core.DefaultSpinRate,
		transitionRate: core.DefaultTransitionRate,
		rot:            core.NewRotation(0, 0),
		motion:         core.StaticModel{},
		subs:           make(map[int]func(Frame)),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.frame = Frame{Rotation: d.rot}
	if catalog != nil {
		d.unsubscribe = catalog.Subscribe(func(kb.Event) { d.invalidate() })
	}
	return d
}

// Close detaches the driver from its catalog.
func (d *Driver) Close() {
	d.mu.Lock()
	unsub := d.unsubscribe
	d.unsubscribe = nil
	d.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// Tick advances the motion model to now. When the model has been idle for
// the settle delay the front country is evaluated exactly once, logged,
// recorded and included in the returned frame. Subscribers see every frame.
func (d *Driver) Tick(now time.Time) Frame {
	d.mu.Lock()
	var dt time.Duration
	if !d.lastTick.IsZero() && now.After(d.lastTick) {
		dt = now.Sub(d.lastTick)
	}
	d.lastTick = now

	next, moving := d.motion.Advance(d.rot, now, dt)
	d.rot = next

	justSettled := false
	if moving {
		d.stoppedAt = time.Time{}
		d.settled = false
	} else {
		if d.stoppedAt.IsZero() {
			d.stoppedAt = now
		}
		if !d.settled && now.Sub(d.stoppedAt) >= d.settleDelay {
			d.evaluateLocked()
			d.settled = true
			justSettled = true
		}
	}

	d.frame.Time = now
	d.frame.Rotation = d.rot
	d.frame.Moving = moving
	d.frame.Settled = d.settled
	if !d.settled {
		d.frame.Front = core.FacingResult{}
		d.frame.Country = model.Country{}
	}
	frame := d.frame
	subs := d.subscribersLocked()
	d.mu.Unlock()

	if justSettled {
		d.reportSettled(frame)
	}
	for _, fn := range subs {
		fn(frame)
	}
	return frame
}

func (d *Driver) evaluateLocked() {
	var countries []model.Country
	if d.catalog != nil {
		countries = d.catalog.Countries()
	}
	front := d.projector.DetectFrontFacing(d.rot, countries)
	d.frame.Front = front
	d.frame.Country = model.Country{}
	if front.Found {
		for _, c := range countries {
			if c.ID == front.CountryID {
				d.frame.Country = c
				break
			}
		}
	}
}

func (d *Driver) reportSettled(f Frame) {
	ctx := context.Background()
	if f.Front.Found {
		d.log.Info(ctx, "front country settled",
			logging.String("country_id", f.Front.CountryID),
			logging.String("country", f.Country.DisplayName()),
			logging.Float64("score", f.Front.Score),
			logging.Float64("yaw", f.Rotation.Yaw),
			logging.Float64("pitch", f.Rotation.Pitch),
		)
	} else {
		d.log.Warn(ctx, "globe settled with an empty catalog")
	}
	if d.metrics != nil {
		d.metrics.ObserveFacing(f.Front.Found, f.Front.Score)
	}
}

// invalidate drops a settled result so the next idle tick re-evaluates.
func (d *Driver) invalidate() {
	d.mu.Lock()
	d.settled = false
	d.mu.Unlock()
}

func (d *Driver) nowLocked() time.Time {
	if d.clock != nil {
		return d.clock.Now()
	}
	if !d.lastTick.IsZero() {
		return d.lastTick
	}
	return time.Now()
}

// SetModel replaces the motion model. The globe is considered moving again
// until the new model reports otherwise.
func (d *Driver) SetModel(m core.RotationModel) {
	if m == nil {
		m = core.StaticModel{}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.motion = m
	d.stoppedAt = time.Time{}
	d.settled = false
}

// Spin turns the globe at the configured rate for duration, measured in
// frame time. A non-positive duration spins until another model is set.
func (d *Driver) Spin(duration time.Duration) {
	d.mu.Lock()
	m := core.SpinModel{Rate: d.spinRate}
	if duration > 0 {
		m.Until = d.nowLocked().Add(duration)
	}
	d.mu.Unlock()
	d.SetModel(m)
}

// FocusOn starts a transition that brings the country to the centre of the
// camera view. It returns the country and the rotation the globe will settle
// at; the axial tilt is kept.
func (d *Driver) FocusOn(countryID string) (model.Country, core.RotationState, error) {
	if d.catalog == nil {
		return model.Country{}, core.RotationState{}, kb.ErrCountryNotFound
	}
	c, err := d.catalog.GetCountry(countryID)
	if err != nil {
		return model.Country{}, core.RotationState{}, err
	}
	d.mu.RLock()
	target := d.projector.FocusRotation(c.Coordinate, d.rot)
	rate := d.transitionRate
	d.mu.RUnlock()

	d.SetModel(&core.TransitionModel{Target: target, MaxRate: rate})
	d.log.Debug(context.Background(), "focusing country",
		logging.String("country_id", c.ID),
		logging.Float64("target_yaw", target.Yaw),
		logging.Float64("target_pitch", target.Pitch),
	)
	return c, target, nil
}

// SetRotation jumps straight to rot and restarts the settle timer.
func (d *Driver) SetRotation(rot core.RotationState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rot = rot
	d.stoppedAt = time.Time{}
	d.settled = false
}

// Rotation returns the current orientation.
func (d *Driver) Rotation() core.RotationState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.rot
}

// FrontFacing evaluates the current orientation immediately, whether or
// not the globe has settled.
func (d *Driver) FrontFacing() core.FacingResult {
	d.mu.RLock()
	rot := d.rot
	d.mu.RUnlock()
	var countries []model.Country
	if d.catalog != nil {
		countries = d.catalog.Countries()
	}
	return d.projector.DetectFrontFacing(rot, countries)
}

// Projector returns the projector used for evaluations.
func (d *Driver) Projector() *core.Projector {
	return d.projector
}

// Snapshot returns the most recent frame.
func (d *Driver) Snapshot() Frame {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.frame
}

// Subscribe registers fn for every frame. Callbacks run on the ticking
// goroutine after the driver lock is released.
func (d *Driver) Subscribe(fn func(Frame)) (unsubscribe func()) {
	d.mu.Lock()
	id := d.nextSub
	d.nextSub++
	d.subs[id] = fn
	d.mu.Unlock()
	return func() {
		d.mu.Lock()
		delete(d.subs, id)
		d.mu.Unlock()
	}
}

func (d *Driver) subscribersLocked() []func(Frame) {
	if len(d.subs) == 0 {
		return nil
	}
	ids := make([]int, 0, len(d.subs))
	for id := range d.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]func(Frame), 0, len(ids))
	for _, id := range ids {
		out = append(out, d.subs[id])
	}
	return out
}
