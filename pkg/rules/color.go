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

package rules

import "fmt"

// Color represents the color of a side.
type Color int

const (
	White Color = iota
	Black

	ColorN = 2
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return fmt.Sprintf("Color(%d)", int(c))
	}
}

// ParseColor parses the string representation of a Color.
func ParseColor(s string) (Color, error) {
	switch s {
	case "white", "w":
		return White, nil
	case "black", "b":
		return Black, nil
	default:
		return 0, fmt.Errorf("rules: unknown color %q", s)
	}
}

// Termination is a reason for which a position ends the game.
type Termination int

const (
	Ongoing Termination = iota
	Checkmate
	Stalemate
	FiftyMoveRule
	ThreefoldRepetition
	InsufficientMaterial
)

func (t Termination) String() string {
	switch t {
	case Ongoing:
		return "ongoing"
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case FiftyMoveRule:
		return "50-move rule"
	case ThreefoldRepetition:
		return "threefold repetition"
	case InsufficientMaterial:
		return "insufficient material"
	default:
		return fmt.Sprintf("Termination(%d)", int(t))
	}
}
