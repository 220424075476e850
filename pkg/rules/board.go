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

// Package rules wraps the chess rules engine behind the small surface the
// game engine needs: legal move generation, move application, terminal
// detection and disposable copies.
package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/notnil/chess"

	"laptudirm.com/x/mess/pkg/board"
	"laptudirm.com/x/mess/pkg/board/move"
	"laptudirm.com/x/mess/pkg/board/piece"
	"laptudirm.com/x/mess/pkg/formats/fen"
)

// StartFEN is the standard chess starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var (
	ErrIllegalMove = errors.New("rules: illegal move")
	ErrInvalidFEN  = errors.New("rules: invalid fen")
)

// ValidateFEN reports whether the given string is a well-formed chess
// position.
func ValidateFEN(fenstr string) error {
	if _, err := chess.FEN(fenstr); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidFEN, fenstr, err)
	}

	return nil
}

// Board is a chess position together with the moves which led to it from
// its starting position.
type Board struct {
	start string
	moves []string

	board *board.Board
	legal []move.Move
}

// New creates a new Board from the given FEN string. An empty string is
// treated as the standard starting position.
func New(fenstr string) (b *Board, err error) {
	if fenstr == "" {
		fenstr = StartFEN
	}

	if err := ValidateFEN(fenstr); err != nil {
		return nil, err
	}

	// the rules engine panics on positions it can't represent
	defer func() {
		if r := recover(); r != nil {
			b, err = nil, fmt.Errorf("%w %q: %v", ErrInvalidFEN, fenstr, r)
		}
	}()

	b = &Board{start: fenstr}
	b.board = board.New(board.FEN(fen.FromString(fenstr)))
	b.legal = b.board.GenerateMoves(false)
	return b, nil
}

// Copy returns a Board which shares no state with the receiver. The copy
// is rebuilt by replaying the move history, so repetition detection keeps
// working on it.
func (b *Board) Copy() *Board {
	c := &Board{start: b.start}
	c.board = board.New(board.FEN(fen.FromString(b.start)))
	c.legal = c.board.GenerateMoves(false)

	for _, m := range b.moves {
		if err := c.Apply(m); err != nil {
			panic("rules: replay diverged: " + err.Error())
		}
	}

	return c
}

// LegalMoves returns the legal moves in the current position in UCI
// notation.
func (b *Board) LegalMoves() []string {
	moves := make([]string, len(b.legal))
	for i, mov := range b.legal {
		moves[i] = strings.ToLower(mov.String())
	}

	return moves
}

// IsLegal checks if the given UCI move is exactly one of the legal moves.
func (b *Board) IsLegal(m string) bool {
	return b.find(m) >= 0
}

func (b *Board) find(m string) int {
	for i, mov := range b.legal {
		if strings.ToLower(mov.String()) == m {
			return i
		}
	}

	return -1
}

// Apply plays the given UCI move on the board.
func (b *Board) Apply(m string) error {
	index := b.find(m)
	if index < 0 {
		return fmt.Errorf("%w %q in %s", ErrIllegalMove, m, b.FEN())
	}

	b.board.MakeMove(b.legal[index])
	b.legal = b.board.GenerateMoves(false)
	b.moves = append(b.moves, m)
	return nil
}

// SideToMove returns the color whose turn it is.
func (b *Board) SideToMove() Color {
	if b.board.SideToMove == piece.White {
		return White
	}

	return Black
}

// InCheck checks if the side to move is in check.
func (b *Board) InCheck() bool {
	return b.board.IsInCheck(b.board.SideToMove)
}

// Terminal checks if the position ends the game and reports how.
func (b *Board) Terminal() (Termination, bool) {
	switch {
	case len(b.legal) == 0:
		if b.InCheck() {
			return Checkmate, true
		}

		return Stalemate, true

	case b.board.DrawClock >= 100:
		return FiftyMoveRule, true
	case b.board.IsThreefoldRepetition():
		return ThreefoldRepetition, true
	case b.board.IsInsufficientMaterial():
		return InsufficientMaterial, true
	}

	return Ongoing, false
}

// FEN returns the FEN string of the current position.
func (b *Board) FEN() string {
	fen := [6]string(b.board.FEN())
	return strings.Join(fen[:], " ")
}

// StartFEN returns the FEN string of the position the board started from.
func (b *Board) StartFEN() string {
	return b.start
}

// Moves returns the moves played on the board so far.
func (b *Board) Moves() []string {
	return append([]string(nil), b.moves...)
}

// Plies returns the number of moves played on the board.
func (b *Board) Plies() int {
	return len(b.moves)
}

func (b *Board) String() string {
	return b.FEN()
}
