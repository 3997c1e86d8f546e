package globe

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/signalsfoundry/globe-quiz/core"
	"github.com/signalsfoundry/globe-quiz/kb"
	"github.com/signalsfoundry/globe-quiz/model"
	"github.com/signalsfoundry/globe-quiz/timectrl"
)

type fakeRecorder struct {
	mu     sync.Mutex
	calls  int
	found  []bool
	scores []float64
}

func (r *fakeRecorder) ObserveFacing(found bool, score float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.found = append(r.found, found)
	r.scores = append(r.scores, score)
}

func (r *fakeRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

var t0 = time.Date(2025, time.March, 20, 12, 0, 0, 0, time.UTC)

func testCatalog(t *testing.T, countries ...model.Country) *kb.Catalog {
	t.Helper()
	cat := kb.NewCatalog()
	for _, c := range countries {
		if err := cat.AddCountry(c); err != nil {
			t.Fatalf("AddCountry(%s): %v", c.ID, err)
		}
	}
	return cat
}

func country(id string, lat, lng float64) model.Country {
	return model.Country{ID: id, Name: id, Region: "Test", Coordinate: model.GeoCoordinate{Latitude: lat, Longitude: lng}}
}

func TestStaticGlobeSettlesAfterDelay(t *testing.T) {
	rec := &fakeRecorder{}
	d := NewDriver(testCatalog(t, country("JP", 36, 138), country("US", 38, -97)),
		WithSettleDelay(3*time.Second), WithMetricsRecorder(rec))
	defer d.Close()

	if f := d.Tick(t0); f.Settled {
		t.Fatalf("settled on the first tick")
	}
	if f := d.Tick(t0.Add(2 * time.Second)); f.Settled {
		t.Fatalf("settled before the delay")
	}
	f := d.Tick(t0.Add(3 * time.Second))
	if !f.Settled || !f.Front.Found {
		t.Fatalf("frame after delay = %+v, want settled with a front country", f)
	}
	if f.Country.ID != f.Front.CountryID {
		t.Fatalf("frame country %q does not match front %q", f.Country.ID, f.Front.CountryID)
	}
	d.Tick(t0.Add(4 * time.Second))
	d.Tick(t0.Add(5 * time.Second))
	if rec.count() != 1 {
		t.Fatalf("ObserveFacing called %d times, want exactly 1", rec.count())
	}
	if snap := d.Snapshot(); !snap.Settled || snap.Front != f.Front {
		t.Fatalf("Snapshot = %+v, want settled frame", snap)
	}
}

func settle(t *testing.T, d *Driver, start time.Time) Frame {
	t.Helper()
	var f Frame
	for i := 0; i <= 60; i++ {
		f = d.Tick(start.Add(time.Duration(i) * 100 * time.Millisecond))
		if f.Settled {
			return f
		}
	}
	t.Fatalf("globe never settled: %+v", f)
	return f
}

func TestFocusOnBringsCountryToFront(t *testing.T) {
	d := NewDriver(testCatalog(t, country("US", 38, -97), country("JP", 36, 138)),
		WithSettleDelay(time.Second))
	defer d.Close()

	c, target, err := d.FocusOn("JP")
	if err != nil {
		t.Fatalf("FocusOn: %v", err)
	}
	if c.ID != "JP" {
		t.Fatalf("FocusOn returned %q", c.ID)
	}

	f := settle(t, d, t0)
	if f.Front.CountryID != "JP" {
		t.Fatalf("front = %q, want JP", f.Front.CountryID)
	}
	got := d.Rotation()
	if math.Abs(core.WrapAngle(got.Yaw-target.Yaw)) > 1e-9 || math.Abs(got.Pitch-target.Pitch) > 1e-9 {
		t.Fatalf("rotation = %+v, want %+v", got, target)
	}
	if got.AxisTilt != core.DefaultAxisTilt {
		t.Fatalf("tilt changed to %v", got.AxisTilt)
	}
	if f.Front.Score < 1-1e-9 {
		t.Fatalf("focused country is off centre: score %v", f.Front.Score)
	}
}

func TestFocusOnSettlesOnEveryDefaultCountry(t *testing.T) {
	catalog := kb.NewDefaultCatalog()
	d := NewDriver(catalog, WithSettleDelay(0))
	defer d.Close()

	start := t0
	for _, c := range catalog.Countries() {
		if _, _, err := d.FocusOn(c.ID); err != nil {
			t.Fatalf("FocusOn(%s): %v", c.ID, err)
		}
		f := settle(t, d, start)
		if f.Front.CountryID != c.ID {
			t.Errorf("FocusOn(%s) settled on %s (score %.4f)", c.ID, f.Front.CountryID, f.Front.Score)
		}
		start = f.Time.Add(time.Second)
	}
}

func TestFocusOnUnknownCountry(t *testing.T) {
	d := NewDriver(testCatalog(t, country("JP", 36, 138)))
	defer d.Close()
	if _, _, err := d.FocusOn("XX"); !errors.Is(err, kb.ErrCountryNotFound) {
		t.Fatalf("FocusOn(XX) error = %v, want ErrCountryNotFound", err)
	}
	if _, _, err := NewDriver(nil).FocusOn("JP"); !errors.Is(err, kb.ErrCountryNotFound) {
		t.Fatalf("FocusOn without catalog error = %v", err)
	}
}

func TestSpinOnFrameClock(t *testing.T) {
	tc := timectrl.NewTimeController(t0, 100*time.Millisecond, timectrl.Accelerated)
	d := NewDriver(testCatalog(t, country("JP", 36, 138)),
		WithClock(tc), WithSettleDelay(500*time.Millisecond), WithSpinRate(1))
	defer d.Close()
	tc.AddListener(func(now time.Time) { d.Tick(now) })

	d.Spin(time.Second)
	start := d.Rotation().Yaw
	for i := 0; i < 5; i++ {
		tc.Step()
	}
	if f := d.Snapshot(); !f.Moving || f.Settled {
		t.Fatalf("frame during spin = %+v, want moving", f)
	}
	if d.Rotation().Yaw == start {
		t.Fatalf("yaw did not change while spinning")
	}

	settledAt := -1
	for i := 5; i < 30; i++ {
		if f := d.Snapshot(); f.Settled {
			settledAt = i
			break
		}
		tc.Step()
	}
	if settledAt < 0 {
		t.Fatalf("globe never settled after the spin ended")
	}
	// Spin ends at step 10 and the delay is five steps.
	if settledAt != 15 {
		t.Fatalf("settled after %d steps, want 15", settledAt)
	}
	// The first tick has no elapsed time and the tick at the deadline no
	// longer moves, leaving eight 100ms steps at 1 rad/s.
	if got := core.WrapAngle(d.Rotation().Yaw - start); math.Abs(got-0.8) > 1e-9 {
		t.Fatalf("spun %v rad, want 0.8", got)
	}
}

func TestCatalogChangeTriggersReevaluation(t *testing.T) {
	rec := &fakeRecorder{}
	cat := testCatalog(t, country("US", 38, -97))
	d := NewDriver(cat, WithSettleDelay(0), WithMetricsRecorder(rec),
		WithRotation(core.NewRotation(0, 0)))
	defer d.Close()

	first := d.Tick(t0)
	if !first.Settled || first.Front.CountryID != "US" {
		t.Fatalf("first frame = %+v", first)
	}

	// lng -90 faces the camera at zero yaw and pitch.
	if err := cat.AddCountry(country("FRONT", 0, -90)); err != nil {
		t.Fatalf("AddCountry: %v", err)
	}
	second := d.Tick(t0.Add(time.Second))
	if !second.Settled || second.Front.CountryID != "FRONT" {
		t.Fatalf("after catalog change front = %+v, want FRONT", second.Front)
	}
	if rec.count() != 2 {
		t.Fatalf("ObserveFacing called %d times, want 2", rec.count())
	}

	d.Close()
	if err := cat.RemoveCountry("FRONT"); err != nil {
		t.Fatalf("RemoveCountry: %v", err)
	}
	if third := d.Tick(t0.Add(2 * time.Second)); third.Front.CountryID != "FRONT" {
		t.Fatalf("closed driver re-evaluated: %+v", third.Front)
	}
}

func TestEmptyCatalogSettlesWithoutCountry(t *testing.T) {
	rec := &fakeRecorder{}
	d := NewDriver(kb.NewCatalog(), WithSettleDelay(0), WithMetricsRecorder(rec))
	defer d.Close()

	f := d.Tick(t0)
	if !f.Settled || f.Front.Found {
		t.Fatalf("frame = %+v, want settled with no country", f)
	}
	if rec.count() != 1 || rec.found[0] {
		t.Fatalf("recorder = %+v", rec)
	}
}

func TestSubscribeReceivesFrames(t *testing.T) {
	d := NewDriver(testCatalog(t, country("JP", 36, 138)), WithSettleDelay(0))
	defer d.Close()

	var got []Frame
	unsubscribe := d.Subscribe(func(f Frame) { got = append(got, f) })
	d.Tick(t0)
	d.Tick(t0.Add(time.Second))
	unsubscribe()
	d.Tick(t0.Add(2 * time.Second))

	if len(got) != 2 {
		t.Fatalf("received %d frames, want 2", len(got))
	}
	if !got[0].Time.Equal(t0) {
		t.Fatalf("first frame time = %v", got[0].Time)
	}
}

func TestFrontFacingIsImmediate(t *testing.T) {
	countries := []model.Country{country("US", 38, -97), country("JP", 36, 138)}
	d := NewDriver(testCatalog(t, countries...))
	defer d.Close()

	target := core.TargetRotationFor(countries[1].Coordinate)
	d.SetRotation(target)

	got := d.FrontFacing()
	want := core.DetectFrontFacing(target, countries)
	if got != want {
		t.Fatalf("FrontFacing = %+v, want %+v", got, want)
	}
	if got.CountryID != "JP" {
		t.Fatalf("FrontFacing = %q, want JP", got.CountryID)
	}
	if d.Snapshot().Settled {
		t.Fatalf("FrontFacing must not settle the globe")
	}
}

func TestSetModelNilFallsBackToStatic(t *testing.T) {
	d := NewDriver(nil, WithSettleDelay(0))
	d.SetModel(nil)
	before := d.Rotation()
	f := d.Tick(t0)
	if f.Moving || f.Rotation != before {
		t.Fatalf("static frame = %+v", f)
	}
}
