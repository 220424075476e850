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

package match

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"laptudirm.com/x/chesster/pkg/agent"
	"laptudirm.com/x/chesster/pkg/clock"
	"laptudirm.com/x/chesster/pkg/rules"
)

// EnvPrefix is the prefix of every environment variable read by chesster.
const EnvPrefix = "CHESSTER_"

// ErrConfig is wrapped by every configuration error.
var ErrConfig = errors.New("match: invalid configuration")

// Config is the configuration of a match.
type Config struct {
	// Agents are the names of the two agents, by seat. The agent in seat 0
	// plays white in the first game.
	Agents [2]string `yaml:"agents" env:"-"`

	// WinsRequired is the number of games an agent has to win to win the
	// match.
	WinsRequired int `yaml:"wins-required" env:"WINS_REQUIRED"`

	// MaxGames limits the length of the match. Zero means best-of-N, i.e.
	// 2*WinsRequired-1 games.
	MaxGames int `yaml:"max-games" env:"MAX_GAMES"`

	Timer clock.Control `yaml:"timer" envPrefix:"TIMER_"`

	// FixedColors keeps seat 0 on white in every game instead of
	// alternating colors.
	FixedColors bool `yaml:"fixed-colors" env:"FIXED_COLORS"`

	// MaxPlies adjudicates games as draws after that many moves.
	MaxPlies int `yaml:"max-plies" env:"MAX_PLIES"`

	// PositionFEN is the starting position of every game. It can't be
	// combined with an opening book.
	PositionFEN string        `yaml:"fen" env:"FEN"`
	Openings    OpeningConfig `yaml:"openings" envPrefix:"OPENINGS_"`

	// Slack is how long an agent may overrun its deadline before it is
	// abandoned.
	Slack time.Duration `yaml:"slack" env:"SLACK"`

	// Seed seeds random agents and openings. Zero picks a random seed.
	Seed int64 `yaml:"seed" env:"SEED"`

	// Engines are UCI engines which can be used as agents.
	Engines []agent.EngineConfig `yaml:"engines" env:"-"`
}

// DefaultConfig returns the configuration used when nothing else is
// specified: a single 10 minute game with a 2 second increment.
func DefaultConfig() Config {
	return Config{
		WinsRequired: 1,
		Timer: clock.Control{
			Kind:      clock.Increment,
			Base:      10 * time.Minute,
			Increment: 2 * time.Second,
		},
		Slack: agent.DefaultSlack,
	}
}

// LoadConfig reads the configuration from the given YAML file, on top of
// the defaults, and then applies environment overrides. An empty path
// skips the file.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}

		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, fmt.Errorf("%w: %s: %v", ErrConfig, path, err)
		}
	}

	if err := ParseEnv(&config); err != nil {
		return Config{}, err
	}

	return config, nil
}

// ParseEnv applies CHESSTER_* environment overrides to target.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("%w: parse env: %v", ErrConfig, err)
	}

	return nil
}

// GamesLimit returns the maximum number of games in the match.
func (config *Config) GamesLimit() int {
	if config.MaxGames == 0 {
		return 2*config.WinsRequired - 1
	}

	return config.MaxGames
}

// Validate checks the config for errors before any game is played.
func (config *Config) Validate(registry agent.Registry) error {
	for seat, name := range config.Agents {
		if name == "" {
			return fmt.Errorf("%w: no agent in seat %d", ErrConfig, seat)
		}

		if !registry.Has(name) {
			return fmt.Errorf(
				"%w: %w %q (available: %s)",
				ErrConfig, agent.ErrUnknownAgent, name, strings.Join(registry.Names(), ", "),
			)
		}
	}

	switch {
	case config.WinsRequired < 1:
		return fmt.Errorf("%w: wins required %d is not positive", ErrConfig, config.WinsRequired)
	case config.MaxGames < 0:
		return fmt.Errorf("%w: max games %d is negative", ErrConfig, config.MaxGames)
	case config.GamesLimit() < config.WinsRequired:
		return fmt.Errorf(
			"%w: max games %d is less than wins required %d",
			ErrConfig, config.MaxGames, config.WinsRequired,
		)
	case config.MaxPlies < 0:
		return fmt.Errorf("%w: max plies %d is negative", ErrConfig, config.MaxPlies)
	case config.Slack < 0:
		return fmt.Errorf("%w: slack %v is negative", ErrConfig, config.Slack)
	case !validOrder(config.Openings.Order):
		return fmt.Errorf("%w: unknown opening order %q", ErrConfig, config.Openings.Order)
	case config.PositionFEN != "" && config.Openings.File != "":
		return fmt.Errorf("%w: both a starting position and an opening book given", ErrConfig)
	}

	if err := config.Timer.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}

	if config.PositionFEN != "" {
		if err := rules.ValidateFEN(config.PositionFEN); err != nil {
			return fmt.Errorf("%w: %v", ErrConfig, err)
		}
	}

	return nil
}
