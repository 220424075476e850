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
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/chesster/pkg/agent"
	"laptudirm.com/x/chesster/pkg/archive"
	"laptudirm.com/x/chesster/pkg/common"
	"laptudirm.com/x/chesster/pkg/pgn"
	"laptudirm.com/x/chesster/pkg/record"
	"laptudirm.com/x/chesster/pkg/rules"
)

// newRegistry returns the built-in agents plus the configured engines.
func newRegistry(seed int64, engines []agent.EngineConfig) (agent.Registry, error) {
	registry := agent.Builtin(seed)
	if err := registry.RegisterEngines(engines); err != nil {
		return nil, err
	}

	return registry, nil
}

// configPath returns the config file given on the command line, falling
// back to the user's config file.
func configPath(path string) string {
	if path == "" {
		return common.DefaultConfig()
	}

	return path
}

// outputs are the places a finished match is written to.
type outputs struct {
	record  string
	pgn     string
	archive string
	tags    pgn.Tags
}

func (out outputs) write(ctx context.Context, results ...*record.MatchRecord) error {
	if out.record != "" {
		for _, result := range results {
			path := out.record
			if len(results) > 1 {
				ext := filepath.Ext(path)
				path = path[:len(path)-len(ext)] + "-" + result.ID + ext
			}

			if err := record.WriteFile(path, result); err != nil {
				return err
			}

			logrus.Infof("Wrote match record to \x1b[34m%s\x1b[0m", path)
		}
	}

	if out.pgn != "" {
		if err := writePGN(out.pgn, out.tags, results); err != nil {
			return err
		}

		logrus.Infof("Wrote games to \x1b[34m%s\x1b[0m", out.pgn)
	}

	if out.archive != "" {
		if err := common.TryMkdir(filepath.Dir(out.archive)); err != nil {
			return err
		}

		store, err := archive.Open(out.archive)
		if err != nil {
			return err
		}

		defer store.Close()

		for _, result := range results {
			if err := store.Save(ctx, result); err != nil {
				return err
			}
		}

		logrus.Infof("Archived %d match(es) in \x1b[34m%s\x1b[0m", len(results), out.archive)
	}

	return nil
}

func writePGN(path string, tags pgn.Tags, results []*record.MatchRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if tags.Date.IsZero() {
		tags.Date = time.Now()
	}

	for n, result := range results {
		if n > 0 {
			fmt.Fprintln(file)
		}

		if err := pgn.Write(file, result, tags); err != nil {
			_ = file.Close()
			return err
		}
	}

	return file.Close()
}

// printMatch writes a summary of the match to w, and every move if asked.
func printMatch(w io.Writer, result *record.MatchRecord, moves bool) {
	fmt.Fprintf(w, "\x1b[34mMatch\x1b[0m %s: %s vs %s\n", result.ID, result.Agents[0], result.Agents[1])

	for n, game := range result.Games {
		outcome := "*"
		if game.Result != nil {
			outcome = fmt.Sprintf("%s {%s}", game.Result.Score(), game.Result)
		}

		fmt.Fprintf(
			w, "  Game #%d: %s vs %s (%s): %s\n", n+1,
			game.Agents[rules.White], game.Agents[rules.Black], game.Control, outcome,
		)

		if moves {
			for ply, move := range game.Moves {
				fmt.Fprintf(w, "    %3d. %-5s %-6s %8.3fs  %s\n", ply+1, move.Side, move.Move, move.Elapsed.Seconds(), move.FEN)
			}
		}
	}

	if seat, won := result.Winner(); won {
		fmt.Fprintf(
			w, "\x1b[32m%s wins\x1b[0m %d-%d (%d drawn)\n",
			result.Agents[seat], result.SeatWins[seat], result.SeatWins[1-seat], result.Draws(),
		)
	} else {
		fmt.Fprintf(
			w, "\x1b[33mNo winner\x1b[0m %d-%d (%d drawn)\n",
			result.SeatWins[0], result.SeatWins[1], result.Draws(),
		)
	}
}
