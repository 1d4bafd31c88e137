package clock

import (
	"sync/atomic"
	"time"
)

// Tick is delivered by the scheduler once per interval. Gen identifies the
// run that scheduled it; ticks from an older run are stale.
type Tick struct {
	Gen uint64
}

// gens is shared by all countdowns so a tick scheduled by one countdown can
// never match another that shares the same scheduler.
var gens atomic.Uint64

type countdownState int

const (
	stateStopped countdownState = iota
	stateRunning
	statePaused
	stateExpired
)

// Countdown counts a fixed number of units down to zero, one unit per
// interval. It fires expiry exactly once per run and never ticks while
// stopped or paused.
type Countdown struct {
	sched    Scheduler
	units    int
	interval time.Duration

	left   int
	state  countdownState
	gen    uint64
	cancel func()
}

// NewCountdown creates a stopped countdown of units ticks.
func NewCountdown(s Scheduler, units int, interval time.Duration) *Countdown {
	if units <= 0 {
		units = 1
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Countdown{sched: s, units: units, interval: interval, left: units}
}

// Start resets the remaining units and begins ticking. Any previous run is
// invalidated.
func (c *Countdown) Start() {
	c.Stop()
	c.left = c.units
	c.state = stateRunning
	c.schedule()
}

// Stop halts ticking. Ticks already in flight become stale.
func (c *Countdown) Stop() {
	c.unschedule()
	if c.state != stateExpired {
		c.state = stateStopped
	}
}

// Pause freezes a running countdown without losing elapsed time. It returns
// false if the countdown was not running.
func (c *Countdown) Pause() bool {
	if c.state != stateRunning {
		return false
	}
	c.unschedule()
	c.state = statePaused
	return true
}

// Resume continues a paused countdown from where it stopped.
func (c *Countdown) Resume() bool {
	if c.state != statePaused {
		return false
	}
	c.state = stateRunning
	c.schedule()
	return true
}

// Handle applies a tick. It returns true exactly once per run, on the tick
// that reaches zero. Stale ticks and ticks while not running are ignored.
func (c *Countdown) Handle(t Tick) bool {
	if t.Gen != c.gen || c.state != stateRunning {
		return false
	}
	c.cancel = nil
	c.left--
	if c.left <= 0 {
		c.left = 0
		c.state = stateExpired
		c.gen = gens.Add(1)
		return true
	}
	c.schedule()
	return false
}

// Remaining returns the units left in the current run.
func (c *Countdown) Remaining() int { return c.left }

// Units returns the configured run length.
func (c *Countdown) Units() int { return c.units }

// Running reports whether ticks are being delivered.
func (c *Countdown) Running() bool { return c.state == stateRunning }

// Paused reports whether the countdown is frozen.
func (c *Countdown) Paused() bool { return c.state == statePaused }

// Expired reports whether the current run reached zero.
func (c *Countdown) Expired() bool { return c.state == stateExpired }

// Fraction returns the remaining share of the run in [0, 1].
func (c *Countdown) Fraction() float64 {
	return float64(c.left) / float64(c.units)
}

func (c *Countdown) schedule() {
	c.gen = gens.Add(1)
	c.cancel = c.sched.After(c.interval, Tick{Gen: c.gen})
}

func (c *Countdown) unschedule() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen = gens.Add(1)
}
