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

// Package tournament plays matches between several agents and ranks them
// by their results.
package tournament

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"laptudirm.com/x/chesster/pkg/agent"
	"laptudirm.com/x/chesster/pkg/match"
	"laptudirm.com/x/chesster/pkg/record"
	"laptudirm.com/x/chesster/pkg/stats"
	"laptudirm.com/x/chesster/pkg/tournament/schedule"
)

// Encounter is a single match of the tournament.
type Encounter struct {
	Round, Number int

	// Players are indexes into the tournament's agents, by match seat.
	Players [2]int
}

// Standing is an agent's tally in the tournament.
type Standing struct {
	Name string

	// Games counts individual games and Matches whole matches.
	Games   stats.Score
	Matches stats.Score
}

// Tournament is a set of matches between several agents.
type Tournament struct {
	config   Config
	registry agent.Registry

	encounters []Encounter

	mu        sync.Mutex
	standings []Standing

	// OnMatch, if set, is called after every finished match. Calls are
	// serialized.
	OnMatch func(Encounter, *record.MatchRecord)
}

// New validates the config and schedules every encounter.
func New(config Config, registry agent.Registry) (*Tournament, error) {
	if err := config.Validate(registry); err != nil {
		return nil, err
	}

	scheduler, err := schedule.New(config.Scheduler)
	if err != nil {
		return nil, err
	}

	tour := &Tournament{
		config:    config,
		registry:  registry,
		standings: make([]Standing, len(config.Agents)),
	}

	for i, name := range config.Agents {
		tour.standings[i].Name = name
	}

	number := 0
	for round := 0; round < config.Rounds; round++ {
		scheduler.Initialize(len(config.Agents))

		for range scheduler.TotalEncounters() {
			p1, p2 := scheduler.NextEncounter()

			// switch seats every round
			if round%2 == 1 {
				p1, p2 = p2, p1
			}

			number++
			tour.encounters = append(tour.encounters, Encounter{
				Round:   round + 1,
				Number:  number,
				Players: [2]int{p1, p2},
			})
		}
	}

	return tour, nil
}

// Encounters returns every scheduled match in order.
func (tour *Tournament) Encounters() []Encounter {
	return tour.encounters
}

// Run plays every encounter, up to Concurrency matches at once, and
// returns their records in schedule order. The first failing match stops
// the tournament.
func (tour *Tournament) Run(ctx context.Context) ([]*record.MatchRecord, error) {
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(tour.config.Concurrency)

	results := make([]*record.MatchRecord, len(tour.encounters))
	for i, encounter := range tour.encounters {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			result, err := tour.play(ctx, i, encounter)
			if err != nil {
				return fmt.Errorf("round %d match %d: %w", encounter.Round, encounter.Number, err)
			}

			results[i] = result
			tour.tally(encounter, result)
			return nil
		})
	}

	err := group.Wait()
	return results, err
}

func (tour *Tournament) play(ctx context.Context, i int, encounter Encounter) (*record.MatchRecord, error) {
	config := tour.config.Match
	config.Agents = [2]string{
		tour.config.Agents[encounter.Players[0]],
		tour.config.Agents[encounter.Players[1]],
	}

	// keep seeded tournaments reproducible without repeating every match
	if config.Seed != 0 {
		config.Seed += int64(i)
	}

	m, err := match.New(config, tour.registry)
	if err != nil {
		return nil, err
	}

	logrus.Infof(
		"\x1b[33mStarting\x1b[0m Round #%d Match #%d: %s vs %s",
		encounter.Round, encounter.Number, config.Agents[0], config.Agents[1],
	)

	return m.Run(ctx)
}

func (tour *Tournament) tally(encounter Encounter, result *record.MatchRecord) {
	tour.mu.Lock()
	defer tour.mu.Unlock()

	players := encounter.Players
	for _, game := range result.Games {
		winner, decisive := game.Winner()
		if !decisive {
			tour.standings[players[0]].Games.Draws++
			tour.standings[players[1]].Games.Draws++
			continue
		}

		seat := game.SeatOf(winner)
		tour.standings[players[seat]].Games.Wins++
		tour.standings[players[1-seat]].Games.Losses++
	}

	summary := "draw"
	if seat, won := result.Winner(); won {
		tour.standings[players[seat]].Matches.Wins++
		tour.standings[players[1-seat]].Matches.Losses++
		summary = result.Agents[seat] + " wins"
	} else {
		tour.standings[players[0]].Matches.Draws++
		tour.standings[players[1]].Matches.Draws++
	}

	logrus.Infof(
		"\x1b[32mFinished\x1b[0m Round #%d Match #%d: %s vs %s: %s [%d-%d]",
		encounter.Round, encounter.Number,
		result.Agents[0], result.Agents[1], summary,
		result.SeatWins[0], result.SeatWins[1],
	)

	if tour.OnMatch != nil {
		tour.OnMatch(encounter, result)
	}
}

// Standings returns a copy of every agent's tally so far.
func (tour *Tournament) Standings() []Standing {
	tour.mu.Lock()
	defer tour.mu.Unlock()

	return append([]Standing(nil), tour.standings...)
}

// Report writes the current standings to w as a table.
func (tour *Tournament) Report(w io.Writer) {
	standings := tour.Standings()

	fmt.Fprintln(w, "╔══════════════════════════════════════════════════════════╗")
	fmt.Fprintln(w, "║    Name               Elo Error   Wins Loss Draw   Total ║")
	fmt.Fprintln(w, "╠══════════════════════════════════════════════════════════╣")
	for i, standing := range standings {
		score := standing.Games
		elo, margin := score.Elo()

		format := "║ %2d. %-15s   %+4.0f %4.0f   %4d %4d %4d   %5d ║\n"
		if tour.config.Scheduler == "gauntlet" && i == 0 {
			if elo >= 0 {
				format = "║ \x1b[32m%2d. %-15s   %+4.0f %4.0f   %4d %4d %4d   %5d\x1b[0m ║\n"
			} else {
				format = "║ \x1b[31m%2d. %-15s   %+4.0f %4.0f   %4d %4d %4d   %5d\x1b[0m ║\n"
			}
		}

		fmt.Fprintf(
			w, format,
			i+1, standing.Name,
			elo, margin,
			score.Wins, score.Losses, score.Draws,
			score.Total(),
		)
	}
	fmt.Fprintln(w, "╚══════════════════════════════════════════════════════════╝")
}
