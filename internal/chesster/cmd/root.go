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
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"laptudirm.com/x/chesster/pkg/match"
)

func Root() *cobra.Command {
	root := &cobra.Command{
		Use:   "chesster",
		Short: "Play chess matches between pluggable agents",
		Long: heredoc.Doc(`chesster plays matches of chess between two agents, which
			may be built-in players or UCI engines, under a time control.

			Every move and result is recorded, and the records can be
			stored as JSON, YAML or PGN, or in a SQLite archive.`),
		Args: cobra.NoArgs,

		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// If --debug flag is provided, set logging level to Debug.
			if cmd.Flag("debug").Changed {
				logrus.SetLevel(logrus.DebugLevel)
			}

			// If --trace flag is provided, set logging level to Trace.
			if cmd.Flag("trace").Changed {
				logrus.SetLevel(logrus.TraceLevel)
			}
		},
	}

	// global flags
	root.PersistentFlags().BoolP("help", "h", false, "Show Help Information")
	root.PersistentFlags().BoolP("version", "v", false, "Show Chesster's Version")
	root.PersistentFlags().BoolP("trace", "t", false, "Show Trace Information")
	root.PersistentFlags().BoolP("debug", "d", false, "Show Debug Information")

	versionStr := "v0.1.0\n"
	root.SetVersionTemplate(versionStr)
	root.Version = versionStr

	// Register the various commands.
	root.AddCommand(Match())
	root.AddCommand(Replay())
	root.AddCommand(Agents())
	root.AddCommand(Tournament())
	root.AddCommand(Archive())

	return root
}

// logging is the logger configuration read from the environment.
type logging struct {
	Level logrus.Level `env:"LOG" envDefault:"info"`
}

// LogLevel returns the logging level selected by CHESSTER_LOG, which
// defaults to info. The --debug and --trace flags override it.
func LogLevel() (logrus.Level, error) {
	var config logging
	if err := match.ParseEnv(&config); err != nil {
		return logrus.InfoLevel, err
	}

	return config.Level, nil
}
