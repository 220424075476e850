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
	"math/rand"
	"sync"
	"time"

	"laptudirm.com/x/chesster/pkg/clock"
	"laptudirm.com/x/chesster/pkg/rules"
)

// Builtin returns a registry containing the agents which ship with
// chesster. A zero seed seeds the random agents from the current time.
func Builtin(seed int64) Registry {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	// every random agent gets its own stream
	var mu sync.Mutex
	seeds := rand.New(rand.NewSource(seed))

	return Registry{
		"random": func() (Agent, error) {
			mu.Lock()
			defer mu.Unlock()
			return NewRandom(seeds.Int63()), nil
		},
		"first": func() (Agent, error) {
			return First{}, nil
		},
		"resign": func() (Agent, error) {
			return Resigner{}, nil
		},
	}
}

// Random plays a uniformly random legal move.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandom(seed int64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (ai *Random) Decide(_ context.Context, board *rules.Board, _ *clock.View, _ rules.Color) (string, error) {
	moves := board.LegalMoves()
	if len(moves) == 0 {
		return "", ErrNoMove
	}

	ai.mu.Lock()
	defer ai.mu.Unlock()
	return moves[ai.rng.Intn(len(moves))], nil
}

// First plays the first legal move generated by the rules engine.
type First struct{}

func (First) Decide(_ context.Context, board *rules.Board, _ *clock.View, _ rules.Color) (string, error) {
	moves := board.LegalMoves()
	if len(moves) == 0 {
		return "", ErrNoMove
	}

	return moves[0], nil
}

// Resigner resigns as soon as it is asked for a move.
type Resigner struct{}

func (Resigner) Decide(context.Context, *rules.Board, *clock.View, rules.Color) (string, error) {
	return "", ErrResign
}
