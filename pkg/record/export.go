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

package record

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"laptudirm.com/x/chesster/pkg/clock"
	"laptudirm.com/x/chesster/pkg/rules"
)

// Export returns the move as a plain document.
func (m Move) Export() map[string]any {
	return map[string]any{
		"side":      m.Side.String(),
		"move":      m.Move,
		"fen":       m.FEN,
		"time_used": m.Elapsed.Seconds(),
	}
}

// ImportMove reconstructs a move from a document created by Export.
func ImportMove(doc map[string]any) (Move, error) {
	var m Move
	var err error

	if m.Side, err = getColor(doc, "side"); err != nil {
		return Move{}, err
	}

	if m.Move, err = getString(doc, "move"); err != nil {
		return Move{}, err
	}

	if m.FEN, err = getString(doc, "fen"); err != nil {
		return Move{}, err
	}

	if m.Elapsed, err = getDuration(doc, "time_used"); err != nil {
		return Move{}, err
	}

	return m, nil
}

// Export returns the result as a plain document. The score is included
// for readers but ignored on import.
func (result Result) Export() map[string]any {
	doc := map[string]any{
		"kind":  result.Kind.String(),
		"score": result.Score(),
	}

	if result.Decisive() {
		doc["side"] = result.Side.String()
	}

	if result.Detail != "" {
		doc["detail"] = result.Detail
	}

	return doc
}

// ImportResult reconstructs a result from a document created by Export.
func ImportResult(doc map[string]any) (Result, error) {
	var result Result

	kind, err := getString(doc, "kind")
	if err != nil {
		return Result{}, err
	}

	if result.Kind, err = ParseKind(kind); err != nil {
		return Result{}, err
	}

	if result.Decisive() {
		if result.Side, err = getColor(doc, "side"); err != nil {
			return Result{}, err
		}
	}

	if _, found := doc["detail"]; found {
		if result.Detail, err = getString(doc, "detail"); err != nil {
			return Result{}, err
		}
	}

	return result, nil
}

func exportControl(tc clock.Control) map[string]any {
	return map[string]any{
		"kind":      string(tc.Kind),
		"base":      tc.Base.Seconds(),
		"increment": tc.Increment.Seconds(),
	}
}

func importControl(doc map[string]any) (clock.Control, error) {
	var tc clock.Control

	kind, err := getString(doc, "kind")
	if err != nil {
		return clock.Control{}, err
	}

	tc.Kind = clock.Kind(kind)

	if tc.Base, err = getDuration(doc, "base"); err != nil {
		return clock.Control{}, err
	}

	if tc.Increment, err = getDuration(doc, "increment"); err != nil {
		return clock.Control{}, err
	}

	return tc, nil
}

// Export returns the game as a plain document.
func (game *GameRecord) Export() map[string]any {
	moves := make([]any, len(game.Moves))
	for i, m := range game.Moves {
		moves[i] = m.Export()
	}

	doc := map[string]any{
		"white":        game.Agents[rules.White],
		"black":        game.Agents[rules.Black],
		"white_seat":   game.WhiteSeat,
		"initial_fen":  game.InitialFEN,
		"time_control": exportControl(game.Control),
		"moves":        moves,
		"result":       nil,
	}

	if game.Result != nil {
		doc["result"] = game.Result.Export()
	}

	return doc
}

// ImportGame reconstructs a game from a document created by Export.
func ImportGame(doc map[string]any) (*GameRecord, error) {
	var game GameRecord
	var err error

	if game.Agents[rules.White], err = getString(doc, "white"); err != nil {
		return nil, err
	}

	if game.Agents[rules.Black], err = getString(doc, "black"); err != nil {
		return nil, err
	}

	if game.WhiteSeat, err = getInt(doc, "white_seat"); err != nil {
		return nil, err
	}

	if game.WhiteSeat != 0 && game.WhiteSeat != 1 {
		return nil, fmt.Errorf("%w: white_seat %d", ErrMalformed, game.WhiteSeat)
	}

	if game.InitialFEN, err = getString(doc, "initial_fen"); err != nil {
		return nil, err
	}

	control, err := getObject(doc, "time_control")
	if err != nil {
		return nil, err
	}

	if game.Control, err = importControl(control); err != nil {
		return nil, err
	}

	moves, err := getList(doc, "moves")
	if err != nil {
		return nil, err
	}

	for i, entry := range moves {
		object, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: move %d is %T", ErrMalformed, i, entry)
		}

		m, err := ImportMove(object)
		if err != nil {
			return nil, fmt.Errorf("move %d: %w", i, err)
		}

		game.Moves = append(game.Moves, m)
	}

	if doc["result"] != nil {
		result, err := getObject(doc, "result")
		if err != nil {
			return nil, err
		}

		r, err := ImportResult(result)
		if err != nil {
			return nil, err
		}

		game.Result = &r
	}

	return &game, nil
}

// Export returns the match as a plain document.
func (match *MatchRecord) Export() map[string]any {
	games := make([]any, len(match.Games))
	for i, game := range match.Games {
		games[i] = game.Export()
	}

	return map[string]any{
		"id":            match.ID,
		"agents":        []any{match.Agents[0], match.Agents[1]},
		"wins_required": match.WinsRequired,
		"max_games":     match.MaxGames,
		"wins": map[string]any{
			"white": match.Wins[rules.White],
			"black": match.Wins[rules.Black],
		},
		"seat_wins": []any{match.SeatWins[0], match.SeatWins[1]},
		"games":     games,
	}
}

// ImportMatch reconstructs a match from a document created by Export. The
// win counters are recomputed from the games and checked against the
// document.
func ImportMatch(doc map[string]any) (*MatchRecord, error) {
	id, err := getString(doc, "id")
	if err != nil {
		return nil, err
	}

	agents, err := getList(doc, "agents")
	if err != nil {
		return nil, err
	}

	if len(agents) != 2 {
		return nil, fmt.Errorf("%w: %d agents", ErrMalformed, len(agents))
	}

	var names [2]string
	for i, agent := range agents {
		name, ok := agent.(string)
		if !ok {
			return nil, fmt.Errorf("%w: agent %d is %T", ErrMalformed, i, agent)
		}

		names[i] = name
	}

	winsRequired, err := getInt(doc, "wins_required")
	if err != nil {
		return nil, err
	}

	maxGames, err := getInt(doc, "max_games")
	if err != nil {
		return nil, err
	}

	match, err := NewMatch(id, names, winsRequired, maxGames)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	games, err := getList(doc, "games")
	if err != nil {
		return nil, err
	}

	for i, entry := range games {
		object, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: game %d is %T", ErrMalformed, i, entry)
		}

		game, err := ImportGame(object)
		if err != nil {
			return nil, fmt.Errorf("game %d: %w", i, err)
		}

		if err := match.Append(game); err != nil {
			return nil, fmt.Errorf("%w: game %d: %v", ErrMalformed, i, err)
		}
	}

	wins, err := getObject(doc, "wins")
	if err != nil {
		return nil, err
	}

	white, err := getInt(wins, "white")
	if err != nil {
		return nil, err
	}

	black, err := getInt(wins, "black")
	if err != nil {
		return nil, err
	}

	if white != match.Wins[rules.White] || black != match.Wins[rules.Black] {
		return nil, fmt.Errorf("%w: win counters don't match the games", ErrMalformed)
	}

	seatWins, err := getList(doc, "seat_wins")
	if err != nil {
		return nil, err
	}

	if len(seatWins) != 2 {
		return nil, fmt.Errorf("%w: %d seat win counters", ErrMalformed, len(seatWins))
	}

	for seat, entry := range seatWins {
		n, err := getInt(map[string]any{"seat_wins": entry}, "seat_wins")
		if err != nil {
			return nil, err
		}

		if n != match.SeatWins[seat] {
			return nil, fmt.Errorf("%w: seat %d win counter doesn't match the games", ErrMalformed, seat)
		}
	}

	return match, nil
}

func getValue(doc map[string]any, key string) (any, error) {
	value, found := doc[key]
	if !found {
		return nil, fmt.Errorf("%w: missing field %q", ErrMalformed, key)
	}

	return value, nil
}

func getString(doc map[string]any, key string) (string, error) {
	value, err := getValue(doc, key)
	if err != nil {
		return "", err
	}

	str, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%w: field %q is %T, not a string", ErrMalformed, key, value)
	}

	return str, nil
}

func getColor(doc map[string]any, key string) (rules.Color, error) {
	str, err := getString(doc, key)
	if err != nil {
		return 0, err
	}

	color, err := rules.ParseColor(str)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return color, nil
}

// getNumber accepts every numeric type produced by the JSON and YAML
// decoders, as well as the native ones produced by Export.
func getNumber(doc map[string]any, key string) (float64, error) {
	value, err := getValue(doc, key)
	if err != nil {
		return 0, err
	}

	switch n := value.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	default:
		return 0, fmt.Errorf("%w: field %q is %T, not a number", ErrMalformed, key, value)
	}
}

func getInt(doc map[string]any, key string) (int, error) {
	n, err := getNumber(doc, key)
	if err != nil {
		return 0, err
	}

	if n != math.Trunc(n) {
		return 0, fmt.Errorf("%w: field %q is %v, not an integer", ErrMalformed, key, n)
	}

	return int(n), nil
}

func getDuration(doc map[string]any, key string) (time.Duration, error) {
	seconds, err := getNumber(doc, key)
	if err != nil {
		return 0, err
	}

	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, fmt.Errorf("%w: field %q is %v", ErrMalformed, key, seconds)
	}

	return time.Duration(math.Round(seconds * float64(time.Second))), nil
}

func getList(doc map[string]any, key string) ([]any, error) {
	value, err := getValue(doc, key)
	if err != nil {
		return nil, err
	}

	switch list := value.(type) {
	case []any:
		return list, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: field %q is %T, not a list", ErrMalformed, key, value)
	}
}

func getObject(doc map[string]any, key string) (map[string]any, error) {
	value, err := getValue(doc, key)
	if err != nil {
		return nil, err
	}

	object, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: field %q is %T, not an object", ErrMalformed, key, value)
	}

	return object, nil
}
