// Package system drives simulation time: it turns variable frame deltas into
// a whole number of fixed-size steps.
package system

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/zeusync/spatialcore/internal/core/observability/log"
)

var ErrInvalidRate = errors.New("invalid step rate")

// StepFunc advances the simulation by exactly dt.
type StepFunc func(dt time.Duration)

// Overrun describes simulated time discarded by the accumulator clamp.
type Overrun struct {
	Frame   uint64
	Owed    time.Duration
	Dropped time.Duration
}

// Stats summarizes scheduler activity since construction or the last Reset.
type Stats struct {
	Frames      uint64
	Steps       uint64
	LastSteps   int
	Overruns    uint64
	DroppedTime time.Duration
	SimTime     time.Duration
}

// FixedStepScheduler accumulates real time and drains it in fixed steps.
// The accumulator stays within [0, step*maxSteps]; anything beyond is
// dropped. Time is kept in integer nanoseconds so identical delta sequences
// always produce identical step counts.
type FixedStepScheduler struct {
	step        time.Duration
	next        time.Duration
	maxSteps    int
	accumulator time.Duration
	stats       Stats
	onOverrun   func(Overrun)
	log         log.Log
}

func NewFixedStepScheduler(rateHz float64, maxSteps int, logger log.Log) (*FixedStepScheduler, error) {
	step, err := stepFor(rateHz)
	if err != nil {
		return nil, err
	}
	if maxSteps < 1 {
		return nil, fmt.Errorf("max steps per frame must be positive, got %d", maxSteps)
	}
	return &FixedStepScheduler{step: step, maxSteps: maxSteps, log: logger}, nil
}

func stepFor(rateHz float64) (time.Duration, error) {
	if rateHz <= 0 || math.IsNaN(rateHz) || math.IsInf(rateHz, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidRate, rateHz)
	}
	step := time.Duration(float64(time.Second) / rateHz)
	if step <= 0 {
		return 0, fmt.Errorf("%w: %v Hz is finer than a nanosecond", ErrInvalidRate, rateHz)
	}
	return step, nil
}

// OnOverrun registers fn to be called whenever the clamp drops time.
func (s *FixedStepScheduler) OnOverrun(fn func(Overrun)) {
	s.onOverrun = fn
}

// SetStepRate changes the step rate. The new size applies from the next
// step; a step already running keeps its size.
func (s *FixedStepScheduler) SetStepRate(rateHz float64) error {
	step, err := stepFor(rateHz)
	if err != nil {
		return err
	}
	s.next = step
	return nil
}

func (s *FixedStepScheduler) Step() time.Duration {
	if s.next != 0 {
		return s.next
	}
	return s.step
}

func (s *FixedStepScheduler) MaxSteps() int { return s.maxSteps }

func (s *FixedStepScheduler) Accumulator() time.Duration { return s.accumulator }

func (s *FixedStepScheduler) Stats() Stats { return s.stats }

// Alpha is the leftover fraction of a step, in [0, 1). It is meant for
// render interpolation only.
func (s *FixedStepScheduler) Alpha() float64 {
	return float64(s.accumulator) / float64(s.step)
}

func (s *FixedStepScheduler) limit() time.Duration {
	return s.step * time.Duration(s.maxSteps)
}

// Advance adds delta to the accumulator and runs step for every whole fixed
// step owed, at most maxSteps times. Negative deltas count as zero.
// Returns the number of steps run.
func (s *FixedStepScheduler) Advance(delta time.Duration, step StepFunc) int {
	s.stats.Frames++
	if delta < 0 {
		delta = 0
	}
	s.applyRate(s.maxSteps)

	owed := s.accumulator + delta
	if owed < s.accumulator || owed > s.limit() {
		if owed < s.accumulator {
			owed = math.MaxInt64
		}
		s.overrun(owed, s.limit())
		owed = s.limit()
	}
	s.accumulator = owed

	steps := 0
	for steps < s.maxSteps {
		s.applyRate(s.maxSteps - steps)
		if s.accumulator < s.step {
			break
		}
		step(s.step)
		s.accumulator -= s.step
		s.stats.SimTime += s.step
		steps++
	}
	s.stats.Steps += uint64(steps)
	s.stats.LastSteps = steps
	return steps
}

// AdvanceSeconds is Advance for callers measuring frames in float seconds.
// NaN, infinite and negative deltas count as zero.
func (s *FixedStepScheduler) AdvanceSeconds(delta float64, step StepFunc) int {
	switch {
	case math.IsNaN(delta) || delta <= 0:
		delta = 0
	case delta >= float64(math.MaxInt64)/float64(time.Second):
		return s.Advance(time.Duration(math.MaxInt64), step)
	}
	return s.Advance(time.Duration(delta*float64(time.Second)), step)
}

// Reset empties the accumulator and clears statistics. The step rate is kept.
func (s *FixedStepScheduler) Reset() {
	s.applyRate(s.maxSteps)
	s.accumulator = 0
	s.stats = Stats{}
}

// applyRate switches to a pending step size. The accumulator is clamped to
// what the remaining steps of the current frame can drain, so the leftover
// never reaches a whole step.
func (s *FixedStepScheduler) applyRate(remaining int) {
	if s.next == 0 {
		return
	}
	s.step, s.next = s.next, 0
	if limit := s.step * time.Duration(remaining); s.accumulator > limit {
		s.overrun(s.accumulator, limit)
		s.accumulator = limit
	}
}

func (s *FixedStepScheduler) overrun(owed, limit time.Duration) {
	o := Overrun{Frame: s.stats.Frames, Owed: owed, Dropped: owed - limit}
	s.stats.Overruns++
	s.stats.DroppedTime += o.Dropped
	s.log.Debug("accumulator clamped",
		log.Duration("owed", o.Owed),
		log.Duration("dropped", o.Dropped),
		log.Uint64("frame", o.Frame))
	if s.onOverrun != nil {
		s.onOverrun(o)
	}
}
