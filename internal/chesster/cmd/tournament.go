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

	"laptudirm.com/x/chesster/internal/util"
	"laptudirm.com/x/chesster/pkg/record"
	"laptudirm.com/x/chesster/pkg/tournament"
)

// chesster tournament
func Tournament() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tournament config-file",
		Short: "Run a tournament between several agents",
		Args:  cobra.ExactArgs(1),
		Long: heredoc.Doc(`tournament plays a match between every scheduled pair of
			agents and ranks them by their game results.

			The config file lists the agents, the scheduler (round-robin
			or gauntlet), the number of rounds and of concurrent
			matches, and the match settings used for every encounter.`),

		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := tournament.LoadConfig(args[0])
			if err != nil {
				return err
			}

			registry, err := newRegistry(config.Match.Seed, config.Engines)
			if err != nil {
				return err
			}

			tour, err := tournament.New(config, registry)
			if err != nil {
				return err
			}

			out, err := matchOutputs(cmd.Flags())
			if err != nil {
				return err
			}

			if out.tags.Event == "" {
				out.tags.Event = config.PGN.Event
			}

			if out.tags.Site == "" {
				out.tags.Site = config.PGN.Site
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			total, done := len(tour.Encounters()), 0
			util.StartSpinner(fmt.Sprintf("Playing %d matches", total))
			tour.OnMatch = func(tournament.Encounter, *record.MatchRecord) {
				done++
				util.UpdateSpinner(fmt.Sprintf("Playing %d matches: %d done", total, done))
			}

			results, err := tour.Run(ctx)
			util.PauseSpinner()

			tour.Report(cmd.OutOrStdout())

			var finished []*record.MatchRecord
			for _, result := range results {
				if result != nil {
					finished = append(finished, result)
				}
			}

			if len(finished) > 0 {
				if writeErr := out.write(cmd.Context(), finished...); writeErr != nil {
					return errors.Join(err, writeErr)
				}
			}

			return err
		},
	}

	addOutputFlags(cmd.Flags())
	return cmd
}
