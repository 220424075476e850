// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package clock implements the per-side chess clocks which bound how long
// each side may think.
package clock

import (
	"math"
	"time"

	"laptudirm.com/x/chesster/pkg/rules"
)

// Unbounded is the time reported as remaining by an untimed clock.
const Unbounded = time.Duration(math.MaxInt64)

// Outcome is the state of a side's clock after it finishes a move.
type Outcome int

const (
	OK Outcome = iota
	Expired
)

func (outcome Outcome) String() string {
	if outcome == Expired {
		return "expired"
	}

	return "ok"
}

// Clock keeps the remaining time of both sides of a single game. A Clock
// is owned by the game it was created for and is not safe for concurrent
// use; agents only ever see a View of it.
type Clock struct {
	control Control

	remaining [rules.ColorN]time.Duration
	used      [rules.ColorN]time.Duration

	now func() time.Time
}

// New creates a new Clock which gives both sides the base time of the
// given Control.
func New(control Control) *Clock {
	clock := &Clock{control: control, now: time.Now}
	if clock.Timed() {
		clock.remaining = [rules.ColorN]time.Duration{control.Base, control.Base}
	}

	return clock
}

// Control returns the time control the clock was created with.
func (clock *Clock) Control() Control {
	return clock.control
}

// Timed checks if the clock limits thinking time at all.
func (clock *Clock) Timed() bool {
	return clock.control.Kind != Untimed
}

// Remaining returns the time left on the given side's clock. It is never
// negative, and is Unbounded for an untimed clock.
func (clock *Clock) Remaining(side rules.Color) time.Duration {
	if !clock.Timed() {
		return Unbounded
	}

	return clock.remaining[side]
}

// Used returns the total time the given side has spent thinking.
func (clock *Clock) Used(side rules.Color) time.Duration {
	return clock.used[side]
}

// OnMoveStart returns the deadline for the given side's current move. The
// zero time is returned if the move has no deadline.
func (clock *Clock) OnMoveStart(side rules.Color) time.Time {
	if !clock.Timed() {
		return time.Time{}
	}

	return clock.now().Add(clock.remaining[side])
}

// OnMoveEnd charges the given side for the time it spent on its move and
// reports if its clock ran out in the process.
func (clock *Clock) OnMoveEnd(side rules.Color, elapsed time.Duration) Outcome {
	elapsed = max(elapsed, 0)
	clock.used[side] += elapsed

	if !clock.Timed() {
		return OK
	}

	left := clock.remaining[side] - elapsed
	if left < 0 {
		clock.remaining[side] = 0
		return Expired
	}

	switch clock.control.Kind {
	case Increment:
		left += clock.control.Increment
	case Bronstein:
		left += min(elapsed, clock.control.Increment)
	}

	clock.remaining[side] = left
	return OK
}

// View returns a disposable snapshot of the clock for the given side,
// which starts ticking immediately.
func (clock *Clock) View(side rules.Color) *View {
	return &View{
		side:      side,
		control:   clock.control,
		remaining: clock.remaining,
		started:   clock.now(),
		now:       clock.now,
	}
}

// View is a read-only copy of a Clock handed to an agent for a single
// move. Stopping a View has no effect on the Clock it was taken from.
type View struct {
	side    rules.Color
	control Control

	remaining [rules.ColorN]time.Duration

	started time.Time
	stopped bool
	elapsed time.Duration

	now func() time.Time
}

// Side returns the side the View was taken for.
func (view *View) Side() rules.Color {
	return view.side
}

// Timed checks if the underlying clock limits thinking time.
func (view *View) Timed() bool {
	return view.control.Kind != Untimed
}

// Control returns the time control of the game.
func (view *View) Control() Control {
	return view.control
}

// Remaining returns the time left for the current move.
func (view *View) Remaining() time.Duration {
	return view.RemainingOf(view.side)
}

// RemainingOf returns the time left on the given side's clock. Only the
// View's own side is ticking.
func (view *View) RemainingOf(side rules.Color) time.Duration {
	if !view.Timed() {
		return Unbounded
	}

	if side != view.side {
		return view.remaining[side]
	}

	elapsed := view.elapsed
	if !view.stopped {
		elapsed = view.now().Sub(view.started)
	}

	return max(view.remaining[side]-elapsed, 0)
}

// SecondsLeft returns Remaining in seconds, or +Inf if untimed.
func (view *View) SecondsLeft() float64 {
	if !view.Timed() {
		return math.Inf(+1)
	}

	return view.Remaining().Seconds()
}

// Stop freezes the View's own side.
func (view *View) Stop() {
	if !view.stopped {
		view.elapsed = view.now().Sub(view.started)
		view.stopped = true
	}
}

// Stopped checks if Stop has been called on the View.
func (view *View) Stopped() bool {
	return view.stopped
}
