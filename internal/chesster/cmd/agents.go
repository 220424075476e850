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

	"laptudirm.com/x/chesster/pkg/agent"
	"laptudirm.com/x/chesster/pkg/match"
)

// chesster agents
func Agents() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "Lists the agents which can play matches",
		Args:  cobra.ExactArgs(0),

		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			config, err := match.LoadConfig(configPath(path))
			if err != nil {
				return err
			}

			registry, err := newRegistry(config.Seed, config.Engines)
			if err != nil {
				return err
			}

			engines := map[string]agent.EngineConfig{}
			for _, engine := range config.Engines {
				engines[engine.Name] = engine
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "\u001B[32mAvailable Agents\u001B[0m:")
			fmt.Fprintln(out)

			for _, name := range registry.Names() {
				kind := "built-in"
				if engine, found := engines[name]; found {
					kind = "uci: " + engine.Cmd
				}

				fmt.Fprintf(out, "- %-20s %s\n", fmt.Sprintf("\x1b[34m%s\x1b[0m:", name), kind)
			}

			return nil
		},
	}

	cmd.Flags().StringP("config", "c", "", "YAML config file with engines")
	return cmd
}
