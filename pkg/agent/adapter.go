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

package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/chesster/pkg/clock"
	"laptudirm.com/x/chesster/pkg/rules"
)

// DefaultSlack is the default grace period after a deadline before an
// unresponsive agent is abandoned.
const DefaultSlack = 50 * time.Millisecond

// Failure is the way in which an agent failed to produce a move.
type Failure int

const (
	None     Failure = iota // a move was returned
	Timeout                 // the deadline passed first
	Failed                  // the agent panicked, errored, or returned nothing
	Resigned                // the agent resigned
)

func (failure Failure) String() string {
	switch failure {
	case None:
		return "none"
	case Timeout:
		return "timeout"
	case Failed:
		return "failed"
	case Resigned:
		return "resigned"
	default:
		return fmt.Sprintf("Failure(%d)", int(failure))
	}
}

// Decision is the outcome of asking an agent for a move.
type Decision struct {
	Move    string
	Elapsed time.Duration

	Failure Failure
	Err     error
}

// Adapter asks agents for moves under the deadline set by a game clock.
// The zero value is ready to use.
type Adapter struct {
	// Slack is how long after the deadline the adapter keeps waiting.
	// Zero means DefaultSlack.
	Slack time.Duration
}

type answer struct {
	move string
	err  error
}

// Decide asks the agent to choose a move for the given side. The agent
// is given copies of the board and clock, and runs in its own goroutine
// so that it can be abandoned once the deadline passes. A late answer is
// dropped. An error is only returned if ctx itself is done.
func (adapter *Adapter) Decide(ctx context.Context, ai Agent, board *rules.Board, game *clock.Clock, side rules.Color) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}

	boardCopy := board.Copy()
	view := game.View(side)

	start := time.Now()
	deadline := game.OnMoveStart(side)

	var decideCtx context.Context
	var cancel context.CancelFunc
	if deadline.IsZero() {
		decideCtx, cancel = context.WithCancel(ctx)
	} else {
		decideCtx, cancel = context.WithDeadline(ctx, deadline)
	}

	// always release the agent once a decision is reached
	defer cancel()

	// buffered so that an abandoned agent never blocks
	answers := make(chan answer, 1)
	go func() {
		var ans answer
		defer func() {
			if r := recover(); r != nil {
				ans = answer{err: fmt.Errorf("agent panicked: %v", r)}
			}

			answers <- ans
		}()

		ans.move, ans.err = ai.Decide(decideCtx, boardCopy, view, side)
	}()

	var expired <-chan time.Time
	if !deadline.IsZero() {
		timer := time.NewTimer(time.Until(deadline) + adapter.slack())
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case ans := <-answers:
		decision := Decision{Move: ans.move, Elapsed: time.Since(start)}

		switch {
		case errors.Is(ans.err, ErrResign):
			decision.Failure = Resigned
		case ans.err != nil && ctx.Err() != nil:
			return Decision{}, ctx.Err()
		case ans.err != nil && errors.Is(decideCtx.Err(), context.DeadlineExceeded):
			decision.Failure, decision.Err = Timeout, ans.err
		case ans.err != nil:
			decision.Failure, decision.Err = Failed, ans.err
		case ans.move == "":
			decision.Failure, decision.Err = Failed, ErrNoMove
		}

		return decision, nil

	case <-expired:
		logrus.WithField("side", side).Debug("agent abandoned after deadline")
		return Decision{Elapsed: time.Since(start), Failure: Timeout}, nil

	case <-ctx.Done():
		return Decision{}, ctx.Err()
	}
}

func (adapter *Adapter) slack() time.Duration {
	if adapter == nil || adapter.Slack <= 0 {
		return DefaultSlack
	}

	return adapter.Slack
}
