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

// Package agent defines the players of a game and the adapter which asks
// them for moves without trusting them.
package agent

import (
	"context"
	"errors"

	"laptudirm.com/x/chesster/pkg/clock"
	"laptudirm.com/x/chesster/pkg/rules"
)

// ErrResign is returned by an agent which gives up the game.
var ErrResign = errors.New("agent: resign")

// ErrNoMove is reported when an agent returns neither a move nor an error.
var ErrNoMove = errors.New("agent: no move returned")

// Agent is a player which chooses moves. The board and clock it is given
// are copies which the agent may do with as it pleases. Decide should
// return soon after ctx is done, but the caller never waits for it beyond
// the clock's deadline.
type Agent interface {
	Decide(ctx context.Context, board *rules.Board, clock *clock.View, side rules.Color) (string, error)
}

// GameStarter is implemented by agents which keep state between the
// positions they are asked about, and want to know when a game begins.
type GameStarter interface {
	NewGame(ctx context.Context) error
}

// Func is an adapter to allow the use of ordinary functions as agents.
type Func func(ctx context.Context, board *rules.Board, clock *clock.View, side rules.Color) (string, error)

// Decide calls fn(ctx, board, clock, side).
func (fn Func) Decide(ctx context.Context, board *rules.Board, clock *clock.View, side rules.Color) (string, error) {
	return fn(ctx, board, clock, side)
}
