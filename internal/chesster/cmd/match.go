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

package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"laptudirm.com/x/chesster/internal/util"
	"laptudirm.com/x/chesster/pkg/clock"
	"laptudirm.com/x/chesster/pkg/common"
	"laptudirm.com/x/chesster/pkg/match"
	"laptudirm.com/x/chesster/pkg/record"
)

// chesster match
func Match() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match white-agent black-agent",
		Short: "Play a match between two agents",
		Args:  cobra.ExactArgs(2),
		Long: heredoc.Doc(`match plays games between the two given agents until one of
			them has won the required number of games, or the maximum
			number of games has been played. The agents switch colors
			after every game unless --fixed-colors is given.

			Agents are either built-in (random, first, resign) or UCI
			engines from the engines section of the config file. The
			config file is YAML, and every setting in it can also be
			overridden by a CHESSTER_* environment variable, and then by
			the flags below.

			Time controls are given as base+increment in seconds, like
			60+0.5, with a trailing d for a Bronstein delay, or inf for
			untimed games.`),
		Example: heredoc.Doc(`
			$ chesster match random first --wins 3 --tc 10+0.1
			$ chesster match stockfish random -c engines.yaml -o match.json --pgn match.pgn
		`),

		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()

			path, _ := flags.GetString("config")
			config, err := match.LoadConfig(configPath(path))
			if err != nil {
				return err
			}

			config.Agents = [2]string{args[0], args[1]}
			if err := applyMatchFlags(flags, &config); err != nil {
				return err
			}

			registry, err := newRegistry(config.Seed, config.Engines)
			if err != nil {
				return err
			}

			m, err := match.New(config, registry)
			if err != nil {
				return err
			}

			out, err := matchOutputs(flags)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			util.StartSpinner(fmt.Sprintf("Playing %s vs %s", args[0], args[1]))
			m.OnGame = func(number int, game *record.GameRecord) {
				util.UpdateSpinner(fmt.Sprintf("Playing %s vs %s: %d game(s) done", args[0], args[1], number))
			}

			result, err := m.Run(ctx)
			util.PauseSpinner()

			// keep whatever was played before an interrupt
			if result != nil && len(result.Games) > 0 {
				printMatch(cmd.OutOrStdout(), result, false)
				if writeErr := out.write(cmd.Context(), result); writeErr != nil {
					return errors.Join(err, writeErr)
				}
			}

			return err
		},
	}

	flags := cmd.Flags()
	flags.StringP("config", "c", "", "YAML config file")
	flags.String("timer", "", "Timer kind (untimed, fixed, increment, bronstein)")
	flags.String("tc", "", "Time control as base+inc in seconds, or inf")
	flags.IntP("wins", "w", 0, "Number of wins needed to win the match")
	flags.Int("max-games", 0, "Maximum number of games, 0 for best-of-N")
	flags.String("fen", "", "Starting position of every game")
	flags.String("openings", "", "EPD file to take starting positions from")
	flags.String("order", "", "Order of the openings (sequential, random)")
	flags.Bool("fixed-colors", false, "Don't switch colors between games")
	flags.Int("max-plies", 0, "Adjudicate games as draws after this many moves")
	flags.Duration("slack", 0, "Grace period after a deadline before an agent is abandoned")
	flags.Int64("seed", 0, "Seed for random agents and openings")

	addOutputFlags(flags)
	return cmd
}

func addOutputFlags(flags *pflag.FlagSet) {
	flags.StringP("output", "o", "", "Write the match record to this JSON or YAML file")
	flags.String("pgn", "", "Write the games to this PGN file")
	flags.String("archive", "", "Store the match in this SQLite archive")
	flags.Lookup("archive").NoOptDefVal = common.ArchiveFile
	flags.String("event", "", "Event tag of the PGN games")
	flags.String("site", "", "Site tag of the PGN games")
}

func matchOutputs(flags *pflag.FlagSet) (outputs, error) {
	var out outputs
	var err error

	get := func(name string) string {
		value, flagErr := flags.GetString(name)
		err = errors.Join(err, flagErr)
		return value
	}

	out.record = get("output")
	out.pgn = get("pgn")
	out.archive = get("archive")
	out.tags.Event = get("event")
	out.tags.Site = get("site")

	return out, err
}

// applyMatchFlags overrides the config with every flag that was given.
func applyMatchFlags(flags *pflag.FlagSet, config *match.Config) error {
	var err error

	if flags.Changed("timer") || flags.Changed("tc") {
		kind, _ := flags.GetString("timer")
		tc, _ := flags.GetString("tc")
		if !flags.Changed("tc") {
			current := config.Timer
			if clock.Kind(kind) == clock.Fixed {
				// a fixed budget keeps the base time and drops the increment
				current.Kind, current.Increment = clock.Fixed, 0
			}

			tc = current.String()
		}

		if config.Timer, err = clock.ParseControl(kind, tc); err != nil {
			return fmt.Errorf("%w: %v", match.ErrConfig, err)
		}
	}

	changed := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}

	changed("wins", func() { config.WinsRequired, _ = flags.GetInt("wins") })
	changed("max-games", func() { config.MaxGames, _ = flags.GetInt("max-games") })
	changed("fen", func() { config.PositionFEN, _ = flags.GetString("fen") })
	changed("openings", func() { config.Openings.File, _ = flags.GetString("openings") })
	changed("order", func() { config.Openings.Order, _ = flags.GetString("order") })
	changed("fixed-colors", func() { config.FixedColors, _ = flags.GetBool("fixed-colors") })
	changed("max-plies", func() { config.MaxPlies, _ = flags.GetInt("max-plies") })
	changed("slack", func() { config.Slack, _ = flags.GetDuration("slack") })
	changed("seed", func() { config.Seed, _ = flags.GetInt64("seed") })

	return nil
}
