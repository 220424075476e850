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

package game_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laptudirm.com/x/chesster/pkg/agent"
	"laptudirm.com/x/chesster/pkg/clock"
	"laptudirm.com/x/chesster/pkg/game"
	"laptudirm.com/x/chesster/pkg/record"
	"laptudirm.com/x/chesster/pkg/rules"
)

const (
	backRankMate = "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1"
	stalemate    = "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"
)

var untimed = clock.Control{Kind: clock.Untimed}

// scripted plays the given moves in order, and counts how often it was
// asked for one.
type scripted struct {
	moves []string
	calls atomic.Int32
}

func (ai *scripted) Decide(context.Context, *rules.Board, *clock.View, rules.Color) (string, error) {
	n := int(ai.calls.Add(1)) - 1
	if n >= len(ai.moves) {
		return "", errors.New("script exhausted")
	}

	return ai.moves[n], nil
}

func newGame(t *testing.T, fen string, control clock.Control, white, black agent.Agent) *game.Game {
	t.Helper()

	board, err := rules.New(fen)
	require.NoError(t, err)

	g, err := game.New(game.Config{
		Board:   board,
		Control: control,
		Agents:  [rules.ColorN]agent.Agent{white, black},
		Names:   [rules.ColorN]string{"white", "black"},
		Adapter: &agent.Adapter{Slack: 10 * time.Millisecond},
	})
	require.NoError(t, err)
	return g
}

func TestMateInOne(t *testing.T) {
	white, black := &scripted{moves: []string{"a1a8"}}, &scripted{}
	g := newGame(t, backRankMate, untimed, white, black)

	rec, err := g.Play(context.Background())
	require.NoError(t, err)

	assert.Equal(t, game.Terminal, g.State())
	require.NotNil(t, rec.Result)
	assert.Equal(t, record.CheckmateBy(rules.White), *rec.Result)
	require.Len(t, rec.Moves, 1)
	assert.Equal(t, "a1a8", rec.Moves[0].Move)
	assert.Equal(t, rules.White, rec.Moves[0].Side)
	assert.Equal(t, backRankMate, rec.InitialFEN)
	assert.Zero(t, black.calls.Load())

	// nothing more happens once the game is over
	assert.ErrorIs(t, g.Turn(context.Background()), game.ErrTerminal)
	assert.Len(t, g.Record().Moves, 1)
	assert.Equal(t, int32(1), white.calls.Load())
}

func TestIllegalMoveLoses(t *testing.T) {
	g := newGame(t, rules.StartFEN, untimed, &scripted{moves: []string{"e2e5"}}, &scripted{})

	rec, err := g.Play(context.Background())
	require.NoError(t, err)

	assert.Equal(t, record.IllegalMoveBy(rules.White, "e2e5"), *rec.Result)
	assert.Empty(t, rec.Moves)
	assert.Equal(t, rules.StartFEN, g.Board().FEN())
}

func TestIllegalMoveByBlack(t *testing.T) {
	g := newGame(t, rules.StartFEN, untimed, &scripted{moves: []string{"e2e4"}}, &scripted{moves: []string{"E7E5"}})

	rec, err := g.Play(context.Background())
	require.NoError(t, err)

	assert.Equal(t, record.IllegalMoveBy(rules.Black, "E7E5"), *rec.Result)
	assert.Len(t, rec.Moves, 1)

	winner, decisive := rec.Winner()
	assert.True(t, decisive)
	assert.Equal(t, rules.White, winner)
}

func TestTimeoutLoses(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	stuck := agent.Func(func(context.Context, *rules.Board, *clock.View, rules.Color) (string, error) {
		<-release
		return "e2e4", nil
	})

	g := newGame(t, rules.StartFEN, clock.Control{Kind: clock.Fixed, Base: 30 * time.Millisecond}, stuck, &scripted{})

	start := time.Now()
	rec, err := g.Play(context.Background())
	require.NoError(t, err)

	assert.Equal(t, record.TimeoutOf(rules.White), *rec.Result)
	assert.Empty(t, rec.Moves)
	assert.Less(t, time.Since(start), time.Second)
	assert.Zero(t, g.Clock().Remaining(rules.White))
}

func TestLateMateIsATimeout(t *testing.T) {
	late := agent.Func(func(context.Context, *rules.Board, *clock.View, rules.Color) (string, error) {
		time.Sleep(25 * time.Millisecond)
		return "a1a8", nil
	})

	g := newGame(t, backRankMate, clock.Control{Kind: clock.Fixed, Base: 20 * time.Millisecond}, late, &scripted{})
	rec, err := g.Play(context.Background())
	require.NoError(t, err)

	assert.Equal(t, record.TimeoutOf(rules.White), *rec.Result)
	assert.Empty(t, rec.Moves)
	assert.Zero(t, g.Board().Plies())
}

func TestEmptyClockLosesWithoutAsking(t *testing.T) {
	white := &scripted{moves: []string{"e2e4"}}
	g := newGame(t, rules.StartFEN, clock.Control{Kind: clock.Fixed, Base: time.Second}, white, &scripted{})
	require.NoError(t, g.Start())

	require.Equal(t, clock.OK, g.Clock().OnMoveEnd(rules.White, time.Second))
	require.NoError(t, g.Turn(context.Background()))

	assert.Equal(t, game.Terminal, g.State())
	assert.Equal(t, record.TimeoutOf(rules.White), *g.Record().Result)
	assert.Zero(t, white.calls.Load())
}

func TestUntimedSlowAgentsNeverTimeOut(t *testing.T) {
	slow := agent.Func(func(_ context.Context, b *rules.Board, _ *clock.View, _ rules.Color) (string, error) {
		time.Sleep(20 * time.Millisecond)
		return b.LegalMoves()[0], nil
	})

	board, err := rules.New(rules.StartFEN)
	require.NoError(t, err)

	g, err := game.New(game.Config{
		Board:    board,
		Control:  untimed,
		Agents:   [rules.ColorN]agent.Agent{slow, slow},
		MaxPlies: 4,
	})
	require.NoError(t, err)

	rec, err := g.Play(context.Background())
	require.NoError(t, err)

	assert.Equal(t, record.DrawBy("move limit"), *rec.Result)
	assert.Len(t, rec.Moves, 4)
	for _, m := range rec.Moves {
		assert.GreaterOrEqual(t, m.Elapsed, 20*time.Millisecond)
	}
}

func TestAgentFailures(t *testing.T) {
	tests := map[string]struct {
		ai     agent.Agent
		result record.Kind
	}{
		"resign": {agent.Resigner{}, record.Resignation},
		"error": {agent.Func(func(context.Context, *rules.Board, *clock.View, rules.Color) (string, error) {
			return "", errors.New("segmentation fault")
		}), record.IllegalMove},
		"panic": {agent.Func(func(context.Context, *rules.Board, *clock.View, rules.Color) (string, error) {
			panic("index out of range")
		}), record.IllegalMove},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			g := newGame(t, rules.StartFEN, untimed, test.ai, &scripted{})

			rec, err := g.Play(context.Background())
			require.NoError(t, err)

			assert.Equal(t, test.result, rec.Result.Kind)
			assert.Equal(t, rules.White, rec.Result.Side)
		})
	}
}

func TestFailureDetail(t *testing.T) {
	failing := agent.Func(func(context.Context, *rules.Board, *clock.View, rules.Color) (string, error) {
		return "", errors.New("segmentation fault")
	})

	rec, err := newGame(t, rules.StartFEN, untimed, failing, &scripted{}).Play(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "no valid response: segmentation fault", rec.Result.Detail)
}

func TestTerminalStartingPosition(t *testing.T) {
	white, black := &scripted{}, &scripted{}
	g := newGame(t, stalemate, untimed, white, black)

	rec, err := g.Play(context.Background())
	require.NoError(t, err)

	assert.Equal(t, record.StalemateResult(), *rec.Result)
	assert.Empty(t, rec.Moves)
	assert.Zero(t, white.calls.Load()+black.calls.Load())
}

func TestLifecycle(t *testing.T) {
	g := newGame(t, rules.StartFEN, untimed, agent.First{}, agent.First{})

	assert.Equal(t, game.NotStarted, g.State())
	assert.ErrorIs(t, g.Turn(context.Background()), game.ErrNotStarted)

	require.NoError(t, g.Start())
	assert.Equal(t, game.InProgress, g.State())
	assert.ErrorIs(t, g.Start(), game.ErrStarted)

	require.NoError(t, g.Turn(context.Background()))
	assert.Len(t, g.Record().Moves, 1)
	assert.Equal(t, rules.Black, g.Board().SideToMove())
}

func TestAgentsCannotTouchCanonicalState(t *testing.T) {
	meddler := agent.Func(func(_ context.Context, b *rules.Board, view *clock.View, _ rules.Color) (string, error) {
		for range 3 {
			_ = b.Apply(b.LegalMoves()[0])
		}

		view.Stop()
		return "g1f3", nil
	})

	g := newGame(t, rules.StartFEN, untimed, meddler, &scripted{})
	require.NoError(t, g.Start())
	require.NoError(t, g.Turn(context.Background()))

	assert.Equal(t, []string{"g1f3"}, g.Board().Moves())
	require.Len(t, g.Record().Moves, 1)
	assert.Equal(t, g.Board().FEN(), g.Record().Moves[0].FEN)
}

func TestCancellationIsNotAResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	waiting := agent.Func(func(ctx context.Context, _ *rules.Board, _ *clock.View, _ rules.Color) (string, error) {
		cancel()
		<-ctx.Done()
		return "", ctx.Err()
	})

	g := newGame(t, rules.StartFEN, untimed, waiting, &scripted{})

	_, err := g.Play(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, game.InProgress, g.State())
	assert.False(t, g.Record().Finished())
}

func TestRandomGameIsReplayable(t *testing.T) {
	registry := agent.Builtin(7)
	white, err := registry.New("random")
	require.NoError(t, err)
	black, err := registry.New("random")
	require.NoError(t, err)

	board, err := rules.New(rules.StartFEN)
	require.NoError(t, err)

	g, err := game.New(game.Config{
		Board:    board,
		Control:  untimed,
		Agents:   [rules.ColorN]agent.Agent{white, black},
		MaxPlies: 120,
	})
	require.NoError(t, err)

	rec, err := g.Play(context.Background())
	require.NoError(t, err)
	require.True(t, rec.Finished())
	assert.LessOrEqual(t, len(rec.Moves), 120)

	replay, err := rules.New(rec.InitialFEN)
	require.NoError(t, err)

	for i, m := range rec.Moves {
		assert.Equal(t, replay.SideToMove(), m.Side, i)
		require.NoError(t, replay.Apply(m.Move), i)
		assert.Equal(t, replay.FEN(), m.FEN, i)
	}
}

func TestNewValidates(t *testing.T) {
	board, err := rules.New(rules.StartFEN)
	require.NoError(t, err)

	_, err = game.New(game.Config{Agents: [rules.ColorN]agent.Agent{agent.First{}, agent.First{}}, Control: untimed})
	assert.Error(t, err)

	_, err = game.New(game.Config{Board: board, Agents: [rules.ColorN]agent.Agent{agent.First{}}, Control: untimed})
	assert.Error(t, err)
}
