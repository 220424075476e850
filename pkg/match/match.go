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

// Package match plays a series of games between two agents until one of
// them has won enough games.
package match

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"laptudirm.com/x/chesster/pkg/agent"
	"laptudirm.com/x/chesster/pkg/game"
	"laptudirm.com/x/chesster/pkg/record"
	"laptudirm.com/x/chesster/pkg/rules"
)

// Match is a best-of-N match between two agents.
type Match struct {
	config   Config
	registry agent.Registry

	book    *OpeningBook
	adapter *agent.Adapter

	// OnGame, if set, is called after every finished game.
	OnGame func(number int, game *record.GameRecord)
}

// New validates the config and prepares a match.
func New(config Config, registry agent.Registry) (*Match, error) {
	if err := config.Validate(registry); err != nil {
		return nil, err
	}

	match := &Match{
		config:   config,
		registry: registry,
		adapter:  &agent.Adapter{Slack: config.Slack},
	}

	if config.Openings.File != "" {
		book, err := NewBook(config.Openings, config.Seed)
		if err != nil {
			return nil, err
		}

		match.book = book
	}

	return match, nil
}

// Config returns the match's configuration.
func (match *Match) Config() Config {
	return match.config
}

// Run plays the match. Games are played one at a time, with colors
// alternating between the seats unless they are fixed, until a seat has
// won the required number of games or the games limit is reached. An
// error is returned only if the match couldn't be played to the end.
func (match *Match) Run(ctx context.Context) (*record.MatchRecord, error) {
	config := match.config

	result, err := record.NewMatch(uuid.NewString(), config.Agents, config.WinsRequired, config.GamesLimit())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	// agents are created once and kept for the whole match
	var agents [2]agent.Agent
	for seat, name := range config.Agents {
		if agents[seat], err = match.registry.New(name); err != nil {
			closeAgents(agents)
			return nil, err
		}
	}

	defer closeAgents(agents)

	for number := 1; !result.Complete(); number++ {
		whiteSeat := 0
		if !config.FixedColors && number%2 == 0 {
			whiteSeat = 1
		}

		fen := match.position(number)
		board, err := rules.New(fen)
		if err != nil {
			return result, err
		}

		g, err := game.New(game.Config{
			Number:    number,
			Board:     board,
			Control:   config.Timer,
			Agents:    [rules.ColorN]agent.Agent{agents[whiteSeat], agents[1-whiteSeat]},
			Names:     [rules.ColorN]string{config.Agents[whiteSeat], config.Agents[1-whiteSeat]},
			WhiteSeat: whiteSeat,
			MaxPlies:  config.MaxPlies,
			Adapter:   match.adapter,
		})
		if err != nil {
			return result, err
		}

		logrus.Infof(
			"\x1b[33mStarting\x1b[0m Game #%d: %s vs %s (\x1b[33m%s\x1b[0m)",
			number, config.Agents[whiteSeat], config.Agents[1-whiteSeat], fen,
		)

		for seat, ai := range agents {
			if err := agent.NewGame(ctx, ai); err != nil {
				if ctx.Err() != nil {
					return result, ctx.Err()
				}

				// a broken agent loses the game on its first turn instead
				logrus.WithError(err).Warnf("%s can't start game #%d", config.Agents[seat], number)
			}
		}

		played, err := g.Play(ctx)
		if err != nil {
			return result, fmt.Errorf("game %d: %w", number, err)
		}

		if err := result.Append(played); err != nil {
			return result, err
		}

		logrus.Infof(
			"\x1b[32mFinished\x1b[0m Game #%d: %s vs %s: %s {%s} [%d-%d]",
			number, config.Agents[whiteSeat], config.Agents[1-whiteSeat],
			played.Result.Score(), played.Result,
			result.SeatWins[0], result.SeatWins[1],
		)

		if match.OnGame != nil {
			match.OnGame(number, played)
		}
	}

	return result, nil
}

// position returns the starting position of the given game. Each opening
// is played twice, once with either agent as white.
func (match *Match) position(number int) string {
	switch {
	case match.config.PositionFEN != "":
		return match.config.PositionFEN
	case match.book == nil:
		return rules.StartFEN
	}

	if number > 1 && (match.config.FixedColors || number%2 == 1) {
		match.book.Next()
	}

	return match.book.Current()
}

func closeAgents(agents [2]agent.Agent) {
	var errs []error
	for _, ai := range agents {
		if ai != nil {
			errs = append(errs, agent.Close(ai))
		}
	}

	if err := errors.Join(errs...); err != nil {
		logrus.WithError(err).Warn("closing agents")
	}
}
