// Copyright © 2023 Rak Laptudirm <rak@laptudirm.com>
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

// Package game plays a single game of chess between two agents.
package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/chesster/pkg/agent"
	"laptudirm.com/x/chesster/pkg/clock"
	"laptudirm.com/x/chesster/pkg/record"
	"laptudirm.com/x/chesster/pkg/rules"
)

// State is the lifecycle state of a game.
type State int

const (
	NotStarted State = iota
	InProgress
	Terminal
)

func (state State) String() string {
	switch state {
	case NotStarted:
		return "not started"
	case InProgress:
		return "in progress"
	case Terminal:
		return "terminal"
	default:
		return fmt.Sprintf("State(%d)", int(state))
	}
}

var (
	ErrNotStarted = errors.New("game: not started")
	ErrStarted    = errors.New("game: already started")
	ErrTerminal   = errors.New("game: already over")
)

// Config is the configuration of a single game.
type Config struct {
	// Number identifies the game in logs.
	Number int

	// Board is the starting position. The game takes ownership of it.
	Board   *rules.Board
	Control clock.Control

	// Agents and their Names are indexed by color.
	Agents [rules.ColorN]agent.Agent
	Names  [rules.ColorN]string

	// WhiteSeat is the match seat of the agent playing white.
	WhiteSeat int

	// MaxPlies adjudicates the game as a draw after that many moves. Zero
	// means no limit.
	MaxPlies int

	Adapter *agent.Adapter
}

// Game is a single game of chess. It owns the canonical board, clock and
// record, and is the only thing which mutates them.
type Game struct {
	config Config
	state  State

	board  *rules.Board
	clock  *clock.Clock
	record *record.GameRecord
}

// New creates a new game which has not been started yet.
func New(config Config) (*Game, error) {
	switch {
	case config.Board == nil:
		return nil, errors.New("game: no starting board")
	case config.Agents[rules.White] == nil || config.Agents[rules.Black] == nil:
		return nil, errors.New("game: missing agent")
	case config.MaxPlies < 0:
		return nil, fmt.Errorf("game: negative move limit %d", config.MaxPlies)
	}

	if config.Adapter == nil {
		config.Adapter = &agent.Adapter{}
	}

	game := &Game{
		config: config,
		board:  config.Board,
		clock:  clock.New(config.Control),
		record: record.NewGame(
			config.Names[rules.White], config.Names[rules.Black],
			config.Board.FEN(), config.Control,
		),
	}

	game.record.WhiteSeat = config.WhiteSeat
	return game, nil
}

// Start moves the game into progress. A starting position which already
// ends the game finishes it immediately.
func (game *Game) Start() error {
	if game.state != NotStarted {
		return ErrStarted
	}

	game.state = InProgress
	logrus.WithFields(logrus.Fields{
		"game":  game.config.Number,
		"white": game.config.Names[rules.White],
		"black": game.config.Names[rules.Black],
		"fen":   game.board.FEN(),
	}).Debug("game started")

	game.checkTerminal()
	return nil
}

// Turn plays a single turn of the game: the side to move is asked for a
// move, which is checked and applied. Any failure of the agent ends the
// game against it. An error is only returned if the game can't continue
// for reasons outside the game itself.
func (game *Game) Turn(ctx context.Context) error {
	switch game.state {
	case NotStarted:
		return ErrNotStarted
	case Terminal:
		return ErrTerminal
	}

	side := game.board.SideToMove()
	if game.clock.Timed() && game.clock.Remaining(side) <= 0 {
		game.finish(record.TimeoutOf(side))
		return nil
	}

	decision, err := game.config.Adapter.Decide(ctx, game.config.Agents[side], game.board, game.clock, side)
	if err != nil {
		return err
	}

	outcome := game.clock.OnMoveEnd(side, decision.Elapsed)

	log := logrus.WithFields(logrus.Fields{
		"game":    game.config.Number,
		"side":    side,
		"move":    decision.Move,
		"elapsed": decision.Elapsed,
	})

	// failures of the agent take precedence over the board
	switch {
	case decision.Failure == agent.Timeout, outcome == clock.Expired:
		log.Debug("flag fell")
		game.finish(record.TimeoutOf(side))
		return nil

	case decision.Failure == agent.Resigned:
		log.Debug("agent resigned")
		game.finish(record.ResignationOf(side))
		return nil

	case decision.Failure == agent.Failed:
		log.WithError(decision.Err).Debug("agent failed")
		game.finish(record.IllegalMoveBy(side, "no valid response: "+decision.Err.Error()))
		return nil

	case !game.board.IsLegal(decision.Move):
		log.Debug("illegal move")
		game.finish(record.IllegalMoveBy(side, decision.Move))
		return nil
	}

	if err := game.board.Apply(decision.Move); err != nil {
		return err
	}

	log.Debug("move played")
	if err := game.record.Append(record.Move{
		Side:    side,
		Move:    decision.Move,
		FEN:     game.board.FEN(),
		Elapsed: decision.Elapsed,
	}); err != nil {
		return err
	}

	game.checkTerminal()
	return nil
}

// Play runs the game from start to finish and returns its record.
func (game *Game) Play(ctx context.Context) (*record.GameRecord, error) {
	if game.state == NotStarted {
		if err := game.Start(); err != nil {
			return nil, err
		}
	}

	for game.state == InProgress {
		if err := game.Turn(ctx); err != nil {
			return nil, err
		}
	}

	return game.record, nil
}

// checkTerminal ends the game if the board is in a final position.
func (game *Game) checkTerminal() {
	termination, over := game.board.Terminal()
	switch {
	case over && termination == rules.Checkmate:
		// the side to move has been mated
		game.finish(record.CheckmateBy(game.board.SideToMove().Other()))
	case over && termination == rules.Stalemate:
		game.finish(record.StalemateResult())
	case over:
		game.finish(record.DrawBy(termination.String()))
	case game.config.MaxPlies > 0 && len(game.record.Moves) >= game.config.MaxPlies:
		game.finish(record.DrawBy("move limit"))
	}
}

func (game *Game) finish(result record.Result) {
	// the record only rejects a second result, which can't happen here
	_ = game.record.Finish(result)
	game.state = Terminal

	logrus.WithFields(logrus.Fields{
		"game":   game.config.Number,
		"result": result.Score(),
		"plies":  len(game.record.Moves),
	}).Debug(result.String())
}

// State returns the lifecycle state of the game.
func (game *Game) State() State {
	return game.state
}

// Record returns the record of the game so far.
func (game *Game) Record() *record.GameRecord {
	return game.record
}

// Clock returns the game's clock.
func (game *Game) Clock() *clock.Clock {
	return game.clock
}

// Board returns a copy of the game's current position.
func (game *Game) Board() *rules.Board {
	return game.board.Copy()
}
