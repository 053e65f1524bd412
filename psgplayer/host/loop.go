// Package host provides a reference 2 ms scheduling loop for psgplayer's
// Driver. spec.md calls the host loop an external collaborator — argument
// parsing, file I/O and wall-clock correction are explicitly out of the
// sequencer's scope — but a runnable repo needs one concrete
// implementation of it, so this is grounded in the teacher's timing
// package (AdaptiveLimiter/TickerLimiter) rather than invented from
// scratch.
package host

import (
	"log/slog"
	"time"
)

// TickInterval is the PSG driver's fixed host-tick cadence (500 Hz).
const TickInterval = 2 * time.Millisecond

// MaxCatchUpTicks bounds how many driver ticks a single late wakeup may
// run back-to-back, per spec.md §6's host loop contract.
const MaxCatchUpTicks = 50

// Tickable is anything that can be driven at the 2 ms cadence; satisfied
// by *driver.Driver.
type Tickable interface {
	Tick()
}

// Loop runs a Tickable at a 2 ms cadence using time.Ticker, absorbing
// scheduler jitter by running up to MaxCatchUpTicks driver ticks when a
// wakeup arrives late, the same catch-up policy the teacher's
// timing.AdaptiveLimiter uses for frame pacing.
type Loop struct {
	target Tickable
	log    *slog.Logger

	ticker *time.Ticker
	next   time.Time
	ticks  uint64
}

// NewLoop constructs a Loop for target. log defaults to slog.Default()
// when nil.
func NewLoop(target Tickable, log *slog.Logger) *Loop {
	if log == nil {
		log = slog.Default()
	}
	return &Loop{target: target, log: log}
}

// activeTarget is satisfied by anything that can report it has finished
// playing; *driver.Driver implements it. Run stops on its own once the
// target goes inactive, without the caller needing a separate stop signal.
type activeTarget interface {
	Active() bool
}

// Run drives target.Tick() at TickInterval until stop is closed, receives
// a value, or target reports it is no longer active. It blocks the
// calling goroutine.
func (l *Loop) Run(stop <-chan struct{}) {
	l.ticker = time.NewTicker(TickInterval)
	defer l.ticker.Stop()
	l.next = time.Now().Add(TickInterval)

	for {
		select {
		case <-stop:
			return
		case now := <-l.ticker.C:
			l.catchUp(now)
			if at, ok := l.target.(activeTarget); ok && !at.Active() {
				return
			}
		}
	}
}

// catchUp runs as many driver ticks as the wall clock has fallen behind
// by, capped at MaxCatchUpTicks, then realigns the schedule to "now" so a
// long stall doesn't cause a burst of ticks on every subsequent wakeup.
func (l *Loop) catchUp(now time.Time) {
	behind := int(now.Sub(l.next)/TickInterval) + 1
	if behind < 1 {
		behind = 1
	}
	if behind > MaxCatchUpTicks {
		l.log.Debug("host loop fell behind, capping catch-up", "behind", behind, "cap", MaxCatchUpTicks)
		behind = MaxCatchUpTicks
	}

	for i := 0; i < behind; i++ {
		l.target.Tick()
	}
	l.ticks += uint64(behind)
	l.next = now.Add(TickInterval)
}

// Ticks returns the total number of driver ticks run since Run started.
func (l *Loop) Ticks() uint64 { return l.ticks }
