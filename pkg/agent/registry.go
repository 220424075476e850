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

package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"laptudirm.com/x/chesster/internal/util"
)

var (
	ErrUnknownAgent   = errors.New("agent: unknown agent")
	ErrDuplicateAgent = errors.New("agent: duplicate agent")
)

// Factory creates a new instance of an agent.
type Factory func() (Agent, error)

// Registry maps agent names to their factories. Registries are built
// explicitly and handed to whatever needs to create agents.
type Registry map[string]Factory

// Register adds a new agent factory to the registry.
func (registry Registry) Register(name string, factory Factory) error {
	if _, found := registry[name]; found {
		return fmt.Errorf("%w %q", ErrDuplicateAgent, name)
	}

	registry[name] = factory
	return nil
}

// Has checks if an agent with the given name is registered.
func (registry Registry) Has(name string) bool {
	_, found := registry[name]
	return found
}

// New creates a new instance of the named agent.
func (registry Registry) New(name string) (Agent, error) {
	factory, found := registry[name]
	if !found {
		return nil, fmt.Errorf(
			"%w %q (available: %s)",
			ErrUnknownAgent, name, strings.Join(registry.Names(), ", "),
		)
	}

	agent, err := factory()
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", name, err)
	}

	return agent, nil
}

// Names returns the names of the registered agents in natural order.
func (registry Registry) Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	slices.SortFunc(names, util.AlphanumCompare)
	return names
}

// RegisterEngines adds a factory for each of the given UCI engines.
func (registry Registry) RegisterEngines(engines []EngineConfig) error {
	for _, config := range engines {
		if err := registry.Register(config.Name, func() (Agent, error) {
			return StartEngine(config)
		}); err != nil {
			return err
		}
	}

	return nil
}

// NewGame tells the agent that a game is beginning, if it wants to know.
func NewGame(ctx context.Context, agent Agent) error {
	if starter, ok := agent.(GameStarter); ok {
		return starter.NewGame(ctx)
	}

	return nil
}

// Close releases the resources held by an agent, if any.
func Close(agent Agent) error {
	if closer, ok := agent.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}
