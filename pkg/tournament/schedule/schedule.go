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

// Package schedule decides which agents meet each other in a tournament.
package schedule

import (
	"errors"
	"fmt"
	"slices"
)

var ErrScheduler = errors.New("schedule: unknown scheduler")

// New returns the named scheduler. An empty name is a round-robin.
func New(name string) (Scheduler, error) {
	switch name {
	case "round-robin", "":
		return &RoundRobin{}, nil
	case "gauntlet":
		return &Gauntlet{}, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrScheduler, name)
	}
}

// Scheduler hands out the encounters of a single tournament round.
type Scheduler interface {
	// Initialize starts a new round between n players.
	Initialize(n int)

	// NextEncounter returns the next pair of players to meet.
	NextEncounter() (int, int)

	// TotalEncounters is the number of encounters in a round.
	TotalEncounters() int
}

// RoundRobin pairs every player with every other player once per round,
// using the circle method.
type RoundRobin struct {
	playerCount int
	pairNumber  int

	circleTop, circleBottom []int
}

func (rr *RoundRobin) Initialize(n int) {
	rr.playerCount = n

	// odd player counts get a dummy player who sits out
	roundedTotal := n + n%2

	rr.circleTop = make([]int, roundedTotal/2)
	rr.circleBottom = make([]int, roundedTotal/2)

	for i := 0; i < roundedTotal; i++ {
		if i < roundedTotal/2 {
			rr.circleTop[i] = i
		} else {
			rr.circleBottom[roundedTotal-i-1] = i
		}
	}

	rr.pairNumber = 0
}

func (rr *RoundRobin) NextEncounter() (int, int) {
	if rr.pairNumber >= len(rr.circleTop) {
		rr.pairNumber = 0

		// rotate everyone except the first player
		lastIdx := len(rr.circleTop) - 1
		lastElem := rr.circleTop[lastIdx]

		rr.circleTop = slices.Insert(rr.circleTop, 1, rr.circleBottom[0])[:lastIdx+1]
		rr.circleBottom = append(rr.circleBottom, lastElem)[1:]
	}

	player1 := rr.circleTop[rr.pairNumber]
	player2 := rr.circleBottom[rr.pairNumber]

	rr.pairNumber++

	if player1 < rr.playerCount && player2 < rr.playerCount {
		return player1, player2
	}

	return rr.NextEncounter()
}

func (rr *RoundRobin) TotalEncounters() int {
	return rr.playerCount * (rr.playerCount - 1) / 2
}

// Gauntlet pairs the first player with every other player once per round.
type Gauntlet struct {
	playerCount int
	gameNumber  int
}

func (g *Gauntlet) Initialize(n int) {
	g.playerCount = n
	g.gameNumber = 0
}

func (g *Gauntlet) NextEncounter() (int, int) {
	g.gameNumber++
	return 0, g.gameNumber
}

func (g *Gauntlet) TotalEncounters() int {
	return g.playerCount - 1
}
