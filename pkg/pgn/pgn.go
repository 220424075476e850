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

// Package pgn writes game records in the Portable Game Notation.
package pgn

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/notnil/chess"

	"laptudirm.com/x/chesster/pkg/clock"
	"laptudirm.com/x/chesster/pkg/record"
	"laptudirm.com/x/chesster/pkg/rules"
)

// ErrMove is returned when a recorded move can't be converted to SAN.
var ErrMove = errors.New("pgn: invalid move")

// lineWidth is the maximum length of a movetext line.
const lineWidth = 79

// Tags are the PGN tags which aren't part of the game record.
type Tags struct {
	Event string `yaml:"event"`
	Site  string `yaml:"site"`

	// Date is written as ????.??.?? when zero.
	Date time.Time `yaml:"-"`
}

// WriteFile writes every game of the match into a new PGN file.
func WriteFile(path string, match *record.MatchRecord, tags Tags) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := Write(file, match, tags); err != nil {
		_ = file.Close()
		return err
	}

	return file.Close()
}

// Write writes every game of the match to w, separated by blank lines.
func Write(w io.Writer, match *record.MatchRecord, tags Tags) error {
	buffer := bufio.NewWriter(w)
	for n, game := range match.Games {
		if n > 0 {
			if _, err := buffer.WriteString("\n"); err != nil {
				return err
			}
		}

		if err := WriteGame(buffer, n+1, game, tags); err != nil {
			return fmt.Errorf("game %d: %w", n+1, err)
		}
	}

	return buffer.Flush()
}

// WriteGame writes a single game as the given round.
func WriteGame(w io.Writer, round int, game *record.GameRecord, tags Tags) error {
	movetext, err := Movetext(game)
	if err != nil {
		return err
	}

	var pgn strings.Builder

	tag := func(name, value string) {
		value = strings.ReplaceAll(value, `\`, `\\`)
		value = strings.ReplaceAll(value, `"`, `\"`)
		fmt.Fprintf(&pgn, "[%s \"%s\"]\n", name, value)
	}

	tag("Event", orUnknown(tags.Event))
	tag("Site", orUnknown(tags.Site))
	tag("Date", date(tags.Date))
	tag("Round", strconv.Itoa(round))
	tag("White", orUnknown(game.Agents[rules.White]))
	tag("Black", orUnknown(game.Agents[rules.Black]))
	tag("Result", score(game))

	if game.InitialFEN != rules.StartFEN {
		tag("SetUp", "1")
		tag("FEN", game.InitialFEN)
	}

	tag("TimeControl", timeControl(game.Control))
	tag("PlyCount", strconv.Itoa(len(game.Moves)))
	if game.Result != nil {
		tag("Termination", termination(*game.Result))
	}

	pgn.WriteString("\n")
	pgn.WriteString(movetext)
	pgn.WriteString("\n")

	_, err = io.WriteString(w, pgn.String())
	return err
}

// Movetext returns the game's moves in SAN, followed by the result.
func Movetext(game *record.GameRecord) (string, error) {
	option, err := chess.FEN(game.InitialFEN)
	if err != nil {
		return "", fmt.Errorf("%w: %v", rules.ErrInvalidFEN, err)
	}

	position := chess.NewGame(option).Position()
	number, black := moveNumber(game.InitialFEN)

	var tokens []string
	for ply, m := range game.Moves {
		move, err := chess.UCINotation{}.Decode(position, m.Move)
		if err != nil {
			return "", fmt.Errorf("%w: ply %d %q: %v", ErrMove, ply+1, m.Move, err)
		}

		switch {
		case !black:
			tokens = append(tokens, strconv.Itoa(number)+".")
		case ply == 0:
			tokens = append(tokens, strconv.Itoa(number)+"...")
		}

		tokens = append(tokens, chess.AlgebraicNotation{}.Encode(position, move))
		position = position.Update(move)

		if black {
			number++
		}

		black = !black
	}

	if game.Result != nil {
		// comments can't be nested
		comment := strings.ReplaceAll(game.Result.String(), "}", ")")
		tokens = append(tokens, "{"+comment+"}")
	}

	tokens = append(tokens, score(game))
	return wrap(tokens), nil
}

// moveNumber returns the full move number of the position and whether
// black is to move in it.
func moveNumber(fen string) (int, bool) {
	fields := strings.Fields(fen)

	number := 1
	if len(fields) >= 6 {
		if n, err := strconv.Atoi(fields[5]); err == nil && n > 0 {
			number = n
		}
	}

	return number, len(fields) >= 2 && fields[1] == "b"
}

// wrap joins the tokens with spaces, breaking lines before they grow
// longer than lineWidth.
func wrap(tokens []string) string {
	var text strings.Builder

	width := 0
	for _, token := range tokens {
		switch {
		case width == 0:
		case width+1+len(token) > lineWidth:
			text.WriteString("\n")
			width = 0
		default:
			text.WriteString(" ")
			width++
		}

		text.WriteString(token)
		width += len(token)
	}

	return text.String()
}

func score(game *record.GameRecord) string {
	if game.Result == nil {
		return "*"
	}

	return game.Result.Score()
}

func termination(result record.Result) string {
	switch result.Kind {
	case record.Timeout:
		return "time forfeit"
	case record.IllegalMove:
		return "rules infraction"
	case record.Draw:
		if result.Detail == "move limit" {
			return "adjudication"
		}
	}

	return "normal"
}

func timeControl(control clock.Control) string {
	if control.Kind == clock.Untimed {
		return "-"
	}

	return control.String()
}

func date(t time.Time) string {
	if t.IsZero() {
		return "????.??.??"
	}

	return t.Format("2006.01.02")
}

func orUnknown(s string) string {
	if s == "" {
		return "?"
	}

	return s
}
