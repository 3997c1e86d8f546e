package timectrl

import (
	"sort"
	"sync"
	"time"
)

// FrameClock gives animation components access to frame time without
// depending on a concrete controller.
type FrameClock interface {
	// Now returns the current frame time.
	Now() time.Time
	// After returns a channel that receives the frame time once d has
	// elapsed in frame time.
	After(d time.Duration) <-chan time.Time
}

// Mode describes how the TimeController advances frame time.
type Mode int

const (
	// RealTime advances according to wall-clock time.
	RealTime Mode = iota
	// Accelerated steps by Tick as fast as the loop can run.
	Accelerated
)

func (m Mode) String() string {
	switch m {
	case RealTime:
		return "realtime"
	case Accelerated:
		return "accelerated"
	default:
		return "unknown"
	}
}

type timer struct {
	deadline time.Time
	ch       chan time.Time
}

// TimeController drives frame time and notifies registered listeners once
// per tick. It implements FrameClock.
type TimeController struct {
	mu        sync.RWMutex
	StartTime time.Time
	Tick      time.Duration
	Mode      Mode

	currentTime time.Time
	listeners   []func(time.Time)
	timers      []timer
}

// NewTimeController constructs a controller.
func NewTimeController(start time.Time, tick time.Duration, mode Mode) *TimeController {
	if tick <= 0 {
		tick = time.Second / 60
	}
	return &TimeController{
		StartTime:   start,
		Tick:        tick,
		Mode:        mode,
		currentTime: start,
	}
}

// Now returns the current frame time.
func (tc *TimeController) Now() time.Time {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.currentTime
}

// SetTime jumps frame time to t without notifying listeners. Timers whose
// deadline has passed fire.
func (tc *TimeController) SetTime(t time.Time) {
	tc.mu.Lock()
	tc.currentTime = t
	due := tc.dueTimersLocked()
	tc.mu.Unlock()
	fire(due, t)
}

// After returns a channel that receives the frame time once d has elapsed
// in frame time. A non-positive d fires immediately.
func (tc *TimeController) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)

	tc.mu.Lock()
	now := tc.currentTime
	if d <= 0 {
		tc.mu.Unlock()
		ch <- now
		return ch
	}
	tc.timers = append(tc.timers, timer{deadline: now.Add(d), ch: ch})
	sort.SliceStable(tc.timers, func(i, j int) bool {
		return tc.timers[i].deadline.Before(tc.timers[j].deadline)
	})
	tc.mu.Unlock()
	return ch
}

// AddListener registers a callback invoked on every tick.
func (tc *TimeController) AddListener(fn func(time.Time)) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.listeners = append(tc.listeners, fn)
}

// Step advances frame time by one Tick, fires due timers, and calls every
// listener. It returns the new frame time.
func (tc *TimeController) Step() time.Time {
	tc.mu.Lock()
	tc.currentTime = tc.currentTime.Add(tc.Tick)
	now := tc.currentTime
	due := tc.dueTimersLocked()
	listeners := append([]func(time.Time){}, tc.listeners...)
	tc.mu.Unlock()

	fire(due, now)
	for _, fn := range listeners {
		fn(now)
	}
	return now
}

// Start runs the controller for the given duration in a separate goroutine,
// starting from StartTime. A zero duration runs until stop is closed. The
// returned channel is closed when the controller finishes.
func (tc *TimeController) Start(duration time.Duration) <-chan struct{} {
	return tc.StartUntil(duration, nil)
}

// StartUntil is Start with an explicit stop channel.
func (tc *TimeController) StartUntil(duration time.Duration, stop <-chan struct{}) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		tc.mu.Lock()
		tc.currentTime = tc.StartTime
		tick := tc.Tick
		mode := tc.Mode
		tc.mu.Unlock()

		var ticks <-chan time.Time
		if mode == RealTime {
			ticker := time.NewTicker(tick)
			defer ticker.Stop()
			ticks = ticker.C
		}

		elapsed := time.Duration(0)
		for {
			if duration > 0 && elapsed >= duration {
				return
			}
			if ticks != nil {
				select {
				case <-ticks:
				case <-stop:
					return
				}
			} else {
				select {
				case <-stop:
					return
				default:
				}
			}
			tc.Step()
			elapsed += tick
		}
	}()
	return done
}

func (tc *TimeController) dueTimersLocked() []timer {
	n := 0
	for n < len(tc.timers) && !tc.timers[n].deadline.After(tc.currentTime) {
		n++
	}
	due := tc.timers[:n:n]
	tc.timers = tc.timers[n:]
	return due
}

func fire(due []timer, now time.Time) {
	for _, t := range due {
		t.ch <- now
	}
}
