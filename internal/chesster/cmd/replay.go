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
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"laptudirm.com/x/chesster/pkg/archive"
	"laptudirm.com/x/chesster/pkg/common"
	"laptudirm.com/x/chesster/pkg/pgn"
	"laptudirm.com/x/chesster/pkg/record"
	"laptudirm.com/x/chesster/pkg/rules"
)

// chesster replay
func Replay() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay { record-file match-id }",
		Short: "Replay a recorded match",
		Args:  cobra.ExactArgs(1),
		Long: heredoc.Doc(`replay reads a match record, checks every recorded move
			against the rules from the game's starting position, and
			prints the games and their moves.

			The record is read from a JSON or YAML file, or with
			--archive, looked up by its match ID in the archive.`),

		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()

			var result *record.MatchRecord
			var err error
			if flags.Changed("archive") {
				path, _ := flags.GetString("archive")
				store, openErr := archive.Open(path)
				if openErr != nil {
					return openErr
				}

				defer store.Close()
				result, err = store.Load(cmd.Context(), args[0])
			} else {
				result, err = record.ReadFile(args[0])
			}

			if err != nil {
				return err
			}

			for n, game := range result.Games {
				if err := verify(game); err != nil {
					return fmt.Errorf("game %d: %w", n+1, err)
				}
			}

			printMatch(cmd.OutOrStdout(), result, true)

			if path, _ := flags.GetString("pgn"); path != "" {
				return pgn.WriteFile(path, result, pgn.Tags{})
			}

			return nil
		},
	}

	cmd.Flags().String("archive", "", "Look the match up in this SQLite archive")
	cmd.Flags().Lookup("archive").NoOptDefVal = common.ArchiveFile
	cmd.Flags().String("pgn", "", "Write the games to this PGN file")
	return cmd
}

// verify replays the game from its starting position and checks that
// every move was legal and led to the recorded position.
func verify(game *record.GameRecord) error {
	board, err := rules.New(game.InitialFEN)
	if err != nil {
		return err
	}

	for ply, move := range game.Moves {
		if move.Side != board.SideToMove() {
			return fmt.Errorf("%w: ply %d played by %s out of turn", record.ErrMalformed, ply+1, move.Side)
		}

		if err := board.Apply(move.Move); err != nil {
			return fmt.Errorf("ply %d: %w", ply+1, err)
		}

		if move.FEN != board.FEN() {
			return fmt.Errorf("%w: ply %d leads to %q, not %q", record.ErrMalformed, ply+1, board.FEN(), move.FEN)
		}
	}

	return nil
}
