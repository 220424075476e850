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

package tournament_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laptudirm.com/x/chesster/pkg/agent"
	"laptudirm.com/x/chesster/pkg/clock"
	"laptudirm.com/x/chesster/pkg/match"
	"laptudirm.com/x/chesster/pkg/record"
	"laptudirm.com/x/chesster/pkg/stats"
	"laptudirm.com/x/chesster/pkg/tournament"
)

func testConfig(agents ...string) tournament.Config {
	config := tournament.DefaultConfig()
	config.Agents = agents
	config.Match.Timer = clock.Control{Kind: clock.Untimed}
	config.Match.Slack = 10 * time.Millisecond
	config.Match.MaxPlies = 200
	return config
}

func TestSchedule(t *testing.T) {
	config := testConfig("first", "random", "resign", "first")
	config.Rounds = 2

	tour, err := tournament.New(config, agent.Builtin(1))
	require.NoError(t, err)

	encounters := tour.Encounters()
	require.Len(t, encounters, 12)
	for i, encounter := range encounters {
		assert.Equal(t, i+1, encounter.Number)
		assert.Equal(t, i/6+1, encounter.Round)
	}

	// the second round repeats the first with the seats switched
	for i := range 6 {
		first, second := encounters[i].Players, encounters[i+6].Players
		assert.Equal(t, [2]int{first[1], first[0]}, second)
	}
}

func TestRun(t *testing.T) {
	config := testConfig("first", "resign", "random")
	config.Concurrency = 2

	tour, err := tournament.New(config, agent.Builtin(1))
	require.NoError(t, err)

	var finished []int
	tour.OnMatch = func(encounter tournament.Encounter, result *record.MatchRecord) {
		assert.True(t, result.Complete())
		finished = append(finished, encounter.Number)
	}

	results, err := tour.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.ElementsMatch(t, []int{1, 2, 3}, finished)

	for i, result := range results {
		encounter := tour.Encounters()[i]
		assert.Equal(t, config.Agents[encounter.Players[0]], result.Agents[0])
		assert.Equal(t, config.Agents[encounter.Players[1]], result.Agents[1])
	}

	standings := tour.Standings()
	require.Len(t, standings, 3)

	// resign loses every game it plays
	assert.Equal(t, "resign", standings[1].Name)
	assert.Equal(t, stats.Score{Losses: 2}, standings[1].Matches)
	assert.Zero(t, standings[1].Games.Wins)

	var games, wins, losses int
	for _, standing := range standings {
		games += standing.Games.Total()
		wins += standing.Games.Wins
		losses += standing.Games.Losses
		assert.Equal(t, 2, standing.Matches.Total())
	}

	assert.Equal(t, wins, losses)
	var played int
	for _, result := range results {
		played += len(result.Games)
	}
	assert.Equal(t, 2*played, games)
}

func TestReport(t *testing.T) {
	config := testConfig("first", "resign")
	config.Scheduler = "gauntlet"

	tour, err := tournament.New(config, agent.Builtin(1))
	require.NoError(t, err)

	_, err = tour.Run(context.Background())
	require.NoError(t, err)

	var out bytes.Buffer
	tour.Report(&out)

	text := out.String()
	assert.Contains(t, text, "first")
	assert.Contains(t, text, "resign")
	assert.Contains(t, text, "\x1b[32m") // the gauntlet player is ahead
}

func TestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tour, err := tournament.New(testConfig("random", "random"), agent.Builtin(1))
	require.NoError(t, err)

	_, err = tour.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfigErrors(t *testing.T) {
	tests := map[string]func(*tournament.Config){
		"one agent":     func(c *tournament.Config) { c.Agents = c.Agents[:1] },
		"unknown agent": func(c *tournament.Config) { c.Agents = append(c.Agents, "stockfish") },
		"no rounds":     func(c *tournament.Config) { c.Rounds = 0 },
		"no threads":    func(c *tournament.Config) { c.Concurrency = 0 },
		"bad scheduler": func(c *tournament.Config) { c.Scheduler = "swiss" },
		"bad match":     func(c *tournament.Config) { c.Match.WinsRequired = 0 },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			config := testConfig("first", "random")
			mutate(&config)

			_, err := tournament.New(config, agent.Builtin(1))
			assert.ErrorIs(t, err, match.ErrConfig)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tour.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
agents: [first, random, resign]
scheduler: gauntlet
match:
  wins-required: 2
  timer:
    kind: untimed
pgn:
  event: Test Cup
`), 0644))

	t.Setenv("CHESSTER_CONCURRENCY", "4")
	t.Setenv("CHESSTER_MATCH_MAX_PLIES", "100")

	config, err := tournament.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "random", "resign"}, config.Agents)
	assert.Equal(t, "gauntlet", config.Scheduler)
	assert.Equal(t, 1, config.Rounds)
	assert.Equal(t, 4, config.Concurrency)
	assert.Equal(t, 2, config.Match.WinsRequired)
	assert.Equal(t, 100, config.Match.MaxPlies)
	assert.Equal(t, clock.Untimed, config.Match.Timer.Kind)
	assert.Equal(t, "Test Cup", config.PGN.Event)
}
