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

package tournament

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"laptudirm.com/x/chesster/pkg/agent"
	"laptudirm.com/x/chesster/pkg/match"
	"laptudirm.com/x/chesster/pkg/pgn"
	"laptudirm.com/x/chesster/pkg/tournament/schedule"
)

// Config is the configuration of a tournament.
type Config struct {
	// The agents participating in the tournament.
	Agents []string `yaml:"agents" env:"-"`

	// Scheduler is either round-robin or gauntlet. In a gauntlet the first
	// agent plays everyone else.
	Scheduler string `yaml:"scheduler" env:"SCHEDULER"`

	// 1 Tournament = {ROUNDS} Rounds
	// 1 Round      = {SOME_N} Encounters
	// 1 Encounter  = 1 Match
	Rounds int `yaml:"rounds" env:"ROUNDS"`

	// Number of matches that will be played concurrently.
	Concurrency int `yaml:"concurrency" env:"CONCURRENCY"`

	// Match is the configuration of every match, minus its agents.
	Match match.Config `yaml:"match" envPrefix:"MATCH_"`

	PGN pgn.Tags `yaml:"pgn" env:"-"`

	// Engines are UCI engines which can be used as agents.
	Engines []agent.EngineConfig `yaml:"engines" env:"-"`
}

// DefaultConfig returns a single round-robin round, one match at a time.
func DefaultConfig() Config {
	return Config{
		Scheduler:   "round-robin",
		Rounds:      1,
		Concurrency: 1,
		Match:       match.DefaultConfig(),
	}
}

// LoadConfig reads the tournament configuration from the given YAML file
// and applies environment overrides.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", match.ErrConfig, path, err)
	}

	if err := match.ParseEnv(&config); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Validate checks the config for errors before any match is played.
func (config *Config) Validate(registry agent.Registry) error {
	switch {
	case len(config.Agents) < 2:
		return fmt.Errorf("%w: a tournament needs at least 2 agents", match.ErrConfig)
	case config.Rounds < 1:
		return fmt.Errorf("%w: rounds %d is not positive", match.ErrConfig, config.Rounds)
	case config.Concurrency < 1:
		return fmt.Errorf("%w: concurrency %d is not positive", match.ErrConfig, config.Concurrency)
	}

	if _, err := schedule.New(config.Scheduler); err != nil {
		return fmt.Errorf("%w: %v", match.ErrConfig, err)
	}

	for _, name := range config.Agents {
		// the match config checks everything else about the agent
		matchConfig := config.Match
		matchConfig.Agents = [2]string{name, name}
		if err := matchConfig.Validate(registry); err != nil {
			return err
		}
	}

	return nil
}
