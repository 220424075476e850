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

package record

import (
	"fmt"

	"laptudirm.com/x/chesster/pkg/rules"
)

// Kind is the way in which a game ended.
type Kind int

const (
	Checkmate Kind = iota + 1
	Stalemate
	Draw
	Timeout
	IllegalMove
	Resignation
)

var kindNames = map[Kind]string{
	Checkmate:   "checkmate",
	Stalemate:   "stalemate",
	Draw:        "draw",
	Timeout:     "timeout",
	IllegalMove: "illegal move",
	Resignation: "resignation",
}

func (kind Kind) String() string {
	if name, found := kindNames[kind]; found {
		return name
	}

	return fmt.Sprintf("Kind(%d)", int(kind))
}

// ParseKind parses the string representation of a Kind.
func ParseKind(s string) (Kind, error) {
	for kind, name := range kindNames {
		if name == s {
			return kind, nil
		}
	}

	return 0, fmt.Errorf("%w: unknown result %q", ErrMalformed, s)
}

// Result is the final outcome of a game. Side is the winner of a
// Checkmate, and the loser of a Timeout, IllegalMove or Resignation. It is
// unused for drawn results.
type Result struct {
	Kind   Kind
	Side   rules.Color
	Detail string
}

func CheckmateBy(winner rules.Color) Result {
	return Result{Kind: Checkmate, Side: winner}
}

func StalemateResult() Result {
	return Result{Kind: Stalemate}
}

func DrawBy(reason string) Result {
	return Result{Kind: Draw, Detail: reason}
}

func TimeoutOf(loser rules.Color) Result {
	return Result{Kind: Timeout, Side: loser}
}

func IllegalMoveBy(loser rules.Color, detail string) Result {
	return Result{Kind: IllegalMove, Side: loser, Detail: detail}
}

func ResignationOf(loser rules.Color) Result {
	return Result{Kind: Resignation, Side: loser}
}

// Decisive checks if the result has a winner.
func (result Result) Decisive() bool {
	switch result.Kind {
	case Stalemate, Draw:
		return false
	default:
		return true
	}
}

// Winner returns the winning side of a decisive result.
func (result Result) Winner() (rules.Color, bool) {
	switch result.Kind {
	case Checkmate:
		return result.Side, true
	case Timeout, IllegalMove, Resignation:
		return result.Side.Other(), true
	default:
		return 0, false
	}
}

// Score returns the result in PGN notation.
func (result Result) Score() string {
	winner, decisive := result.Winner()
	switch {
	case !decisive:
		return "1/2-1/2"
	case winner == rules.White:
		return "1-0"
	default:
		return "0-1"
	}
}

// String returns a human readable description of the result.
func (result Result) String() string {
	var str string
	switch result.Kind {
	case Checkmate:
		str = fmt.Sprintf("%s wins by checkmate", result.Side)
	case Stalemate:
		str = "draw by stalemate"
	case Draw:
		str = "draw"
		if result.Detail != "" {
			return str + " by " + result.Detail
		}
	case Timeout:
		str = fmt.Sprintf("%s loses on time", result.Side)
	case IllegalMove:
		str = fmt.Sprintf("%s loses by illegal move", result.Side)
	case Resignation:
		str = fmt.Sprintf("%s resigns", result.Side)
	default:
		return result.Kind.String()
	}

	if result.Detail != "" {
		str += " (" + result.Detail + ")"
	}

	return str
}
