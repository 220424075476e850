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

	"github.com/spf13/cobra"

	"laptudirm.com/x/chesster/pkg/archive"
	"laptudirm.com/x/chesster/pkg/common"
)

// chesster archive
func Archive() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Lists the matches stored in the archive",
		Args:  cobra.ExactArgs(0),

		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			if path == common.ArchiveFile {
				if err := common.EnsureDirectories(); err != nil {
					return err
				}
			}

			store, err := archive.Open(path)
			if err != nil {
				return err
			}

			defer store.Close()

			summaries, err := store.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(summaries) == 0 {
				fmt.Fprintln(out, "\x1b[31mNo Matches Archived.\x1b[0m")
				return nil
			}

			for _, summary := range summaries {
				fmt.Fprintf(
					out, "%s  \x1b[34m%s\x1b[0m  %s vs %s  %d-%d in %d game(s)\n",
					summary.SavedAt.Local().Format("2006-01-02 15:04"), summary.ID,
					summary.Agents[0], summary.Agents[1],
					summary.SeatWins[0], summary.SeatWins[1], summary.Games,
				)
			}

			return nil
		},
	}

	cmd.Flags().StringP("file", "f", common.ArchiveFile, "SQLite archive to list")
	return cmd
}
