// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package waitstrategy

import (
	"runtime"
	"time"

	"code.hybscloud.com/spin"
)

// Strategy is the busy-wait contract a blocking loop uses to idle
// between retries.
//
// Both operations are infallible and must tolerate spurious early
// wake-ups: the calling loop always re-checks its condition before
// trusting that waiting is over.
type Strategy interface {
	// Reset returns the strategy to its initial back-off state. Called
	// once before a blocking loop starts retrying.
	Reset()
	// Tick performs one idle unit. Called once per failed attempt.
	Tick()
}

// Cancelable is implemented by strategies that can observe a
// cooperative cancellation channel inside Tick. The base [Strategy]
// contract carries no cancellation of its own; a caller that wants a
// strategy to notice a channel close wraps it with WithCancel.
type Cancelable interface {
	Strategy
	// WithCancel returns a Strategy whose Tick returns promptly once
	// done is closed, instead of continuing to idle indefinitely.
	WithCancel(done <-chan struct{}) Strategy
}

// SleepStrategy sleeps a fixed duration on every Tick.
//
// Go has no caller-visible "interrupt a sleeping goroutine" signal, so
// the quiescent-interruption requirement that the sleep strategy
// "silently absorb interruption" is satisfied by construction: there is
// nothing to absorb.
type SleepStrategy struct {
	// Duration is the sleep length. Zero means 1ms.
	Duration time.Duration
}

func (s SleepStrategy) Reset() {}

func (s SleepStrategy) Tick() {
	d := s.Duration
	if d <= 0 {
		d = time.Millisecond
	}
	time.Sleep(d)
}

// YieldStrategy yields the current goroutine's time slice on every Tick.
type YieldStrategy struct{}

func (YieldStrategy) Reset() {}

func (YieldStrategy) Tick() { runtime.Gosched() }

// SpinStrategy tight-spins with a CPU pause hint, escalating internally
// the same way the package's FAA-based queues already do in their own
// retry loops.
type SpinStrategy struct {
	w spin.Wait
}

func (s *SpinStrategy) Reset() { s.w = spin.Wait{} }

func (s *SpinStrategy) Tick() { s.w.Once() }

// ParkStrategy models "blocks on a monitor or condition" without
// requiring the queue to signal a condition variable on every
// successful Put/Take: it spins briefly via Gosched, then settles into
// a capped sleep once a caller has clearly been idling for a while.
type ParkStrategy struct {
	// SpinTicks is how many Gosched-based ticks precede the first
	// sleep. Zero means 64.
	SpinTicks int
	// SleepFor is the sleep duration once past the spin phase. Zero
	// means 1ms.
	SleepFor time.Duration

	ticks int
}

func (p *ParkStrategy) Reset() { p.ticks = 0 }

func (p *ParkStrategy) Tick() {
	spinTicks := p.SpinTicks
	if spinTicks <= 0 {
		spinTicks = 64
	}
	if p.ticks < spinTicks {
		p.ticks++
		runtime.Gosched()
		return
	}
	d := p.SleepFor
	if d <= 0 {
		d = time.Millisecond
	}
	time.Sleep(d)
}

// BackoffStrategy escalates from spin to yield to sleep across
// successive Tick calls, using an internal phase counter. Reset
// returns it to the spin phase.
type BackoffStrategy struct {
	// SpinTicks is how many leading ticks stay in the spin phase.
	// Zero means 100.
	SpinTicks int
	// YieldTicks is how many ticks after the spin phase stay in the
	// yield phase before escalating to sleep. Zero means 100.
	YieldTicks int
	// SleepFor is the sleep duration once escalated. Zero means 1ms.
	SleepFor time.Duration

	ticks int
	spin  spin.Wait
}

func (b *BackoffStrategy) Reset() {
	b.ticks = 0
	b.spin = spin.Wait{}
}

func (b *BackoffStrategy) Tick() {
	spinTicks := b.SpinTicks
	if spinTicks <= 0 {
		spinTicks = 100
	}
	yieldTicks := b.YieldTicks
	if yieldTicks <= 0 {
		yieldTicks = 100
	}

	switch {
	case b.ticks < spinTicks:
		b.spin.Once()
	case b.ticks < spinTicks+yieldTicks:
		runtime.Gosched()
	default:
		d := b.SleepFor
		if d <= 0 {
			d = time.Millisecond
		}
		time.Sleep(d)
	}
	b.ticks++
}

// Default returns a [BackoffStrategy] with sensible out-of-the-box
// thresholds: a reasonable default choice for callers that do not need
// to tune the spin/yield/sleep escalation themselves.
func Default() Strategy {
	return &BackoffStrategy{}
}

// cancelableStrategy wraps a Strategy so Tick returns early once done
// is closed.
type cancelableStrategy struct {
	Strategy
	done <-chan struct{}
}

// WithCancel wraps s so its Tick observes done: once done is closed,
// Tick returns immediately instead of idling.
func WithCancel(s Strategy, done <-chan struct{}) Strategy {
	return &cancelableStrategy{Strategy: s, done: done}
}

func (c *cancelableStrategy) Tick() {
	select {
	case <-c.done:
		return
	default:
	}
	c.Strategy.Tick()
}
