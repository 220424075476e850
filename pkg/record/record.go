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

// Package record implements the replayable history of games and matches,
// and its conversion to and from plain documents.
package record

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"laptudirm.com/x/chesster/pkg/clock"
	"laptudirm.com/x/chesster/pkg/rules"
)

var (
	ErrGameOver       = errors.New("record: game is already over")
	ErrGameUnfinished = errors.New("record: game has no result")
	ErrMatchOver      = errors.New("record: match is already complete")
	ErrMalformed      = errors.New("record: malformed document")
)

// Move is a single move played in a game.
type Move struct {
	Side    rules.Color
	Move    string        // uci notation
	FEN     string        // position after the move
	Elapsed time.Duration // time spent thinking
}

// GameRecord is the history of a single game.
type GameRecord struct {
	// Agents are the agent names indexed by color.
	Agents [rules.ColorN]string

	// WhiteSeat is the match seat of the agent playing white.
	WhiteSeat int

	InitialFEN string
	Control    clock.Control

	Moves  []Move
	Result *Result
}

// NewGame creates an empty record for a game which starts from fen.
func NewGame(white, black, fen string, control clock.Control) *GameRecord {
	return &GameRecord{
		Agents:     [rules.ColorN]string{white, black},
		InitialFEN: fen,
		Control:    control,
	}
}

// Append adds a move to the record of an unfinished game.
func (game *GameRecord) Append(m Move) error {
	if game.Result != nil {
		return ErrGameOver
	}

	game.Moves = append(game.Moves, m)
	return nil
}

// Finish sets the result of the game.
func (game *GameRecord) Finish(result Result) error {
	if game.Result != nil {
		return ErrGameOver
	}

	game.Result = &result
	return nil
}

// Finished checks if the game has a result.
func (game *GameRecord) Finished() bool {
	return game.Result != nil
}

// Winner returns the color which won the game, if any.
func (game *GameRecord) Winner() (rules.Color, bool) {
	if game.Result == nil {
		return 0, false
	}

	return game.Result.Winner()
}

// SeatOf returns the match seat of the agent playing the given color.
func (game *GameRecord) SeatOf(color rules.Color) int {
	if color == rules.White {
		return game.WhiteSeat
	}

	return 1 - game.WhiteSeat
}

// FinalFEN returns the position the game ended in.
func (game *GameRecord) FinalFEN() string {
	if len(game.Moves) == 0 {
		return game.InitialFEN
	}

	return game.Moves[len(game.Moves)-1].FEN
}

// Equal checks if two game records describe the same game.
func (game *GameRecord) Equal(other *GameRecord) bool {
	if game == nil || other == nil {
		return game == other
	}

	switch {
	case game.Agents != other.Agents,
		game.WhiteSeat != other.WhiteSeat,
		game.InitialFEN != other.InitialFEN,
		game.Control != other.Control,
		!slices.Equal(game.Moves, other.Moves):
		return false
	case game.Result == nil || other.Result == nil:
		return game.Result == other.Result
	default:
		return *game.Result == *other.Result
	}
}

// MatchRecord is the history of a match between two agents, played as a
// series of games until one agent reaches the required number of wins.
type MatchRecord struct {
	ID string

	// Agents are the agent names indexed by seat.
	Agents [2]string

	WinsRequired int
	MaxGames     int

	// Wins counts decisive games by winning color.
	Wins [rules.ColorN]int

	// SeatWins counts decisive games by winning seat.
	SeatWins [2]int

	Games []*GameRecord
}

// NewMatch creates an empty match record.
func NewMatch(id string, agents [2]string, winsRequired, maxGames int) (*MatchRecord, error) {
	switch {
	case winsRequired < 1:
		return nil, fmt.Errorf("record: wins required %d is less than 1", winsRequired)
	case maxGames < winsRequired:
		return nil, fmt.Errorf("record: max games %d is less than wins required %d", maxGames, winsRequired)
	}

	return &MatchRecord{
		ID:           id,
		Agents:       agents,
		WinsRequired: winsRequired,
		MaxGames:     maxGames,
	}, nil
}

// Append adds a finished game to the match and updates the win counters.
func (match *MatchRecord) Append(game *GameRecord) error {
	switch {
	case !game.Finished():
		return ErrGameUnfinished
	case match.Complete():
		return ErrMatchOver
	}

	match.Games = append(match.Games, game)
	if winner, decisive := game.Winner(); decisive {
		match.Wins[winner]++
		match.SeatWins[game.SeatOf(winner)]++
	}

	return nil
}

// Complete checks if the match is over, either because a seat has reached
// the required number of wins or because no more games may be played.
func (match *MatchRecord) Complete() bool {
	return match.SeatWins[0] >= match.WinsRequired ||
		match.SeatWins[1] >= match.WinsRequired ||
		len(match.Games) >= match.MaxGames
}

// Winner returns the seat which won the match, if any.
func (match *MatchRecord) Winner() (int, bool) {
	for seat, wins := range match.SeatWins {
		if wins >= match.WinsRequired {
			return seat, true
		}
	}

	return 0, false
}

// Draws returns the number of games without a winner.
func (match *MatchRecord) Draws() int {
	return len(match.Games) - match.SeatWins[0] - match.SeatWins[1]
}

// Equal checks if two match records describe the same match.
func (match *MatchRecord) Equal(other *MatchRecord) bool {
	if match == nil || other == nil {
		return match == other
	}

	return match.ID == other.ID &&
		match.Agents == other.Agents &&
		match.WinsRequired == other.WinsRequired &&
		match.MaxGames == other.MaxGames &&
		match.Wins == other.Wins &&
		match.SeatWins == other.SeatWins &&
		slices.EqualFunc(match.Games, other.Games, (*GameRecord).Equal)
}
