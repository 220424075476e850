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

package agent

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/chesster/pkg/clock"
	"laptudirm.com/x/chesster/pkg/rules"
)

// DefaultMoveTime is the time an engine gets per move in untimed games
// when no other search limit is configured.
const DefaultMoveTime = time.Second

// handshake is the time an engine gets to answer protocol commands.
const handshake = 5 * time.Second

// EngineConfig describes how to start and drive a UCI engine.
type EngineConfig struct {
	Name string `yaml:"name"`
	Cmd  string `yaml:"cmd"`
	Dir  string `yaml:"dir"`
	Arg  string `yaml:"arg"`

	InitStr string `yaml:"init-string"`

	Options map[string]string `yaml:"options"`

	Depth    int           `yaml:"depth"`
	Nodes    int           `yaml:"nodes"`
	MoveTime time.Duration `yaml:"movetime"`
}

var (
	ErrReadTimeout  = errors.New("engine: read i/o timeout")
	ErrEngineClosed = errors.New("engine: closed")
)

// Engine is an agent backed by a UCI engine running as a subprocess.
type Engine struct {
	config EngineConfig

	*exec.Cmd

	writer io.WriteCloser
	reader *bufio.Reader

	lines chan string

	// err is only valid once lines is closed
	err error

	// done is closed by Close, and exited once the reader is gone
	done   chan struct{}
	exited chan struct{}
	once   sync.Once

	// a single search runs at a time
	mu sync.Mutex
}

// StartEngine starts the given engine and initializes it.
func StartEngine(config EngineConfig) (*Engine, error) {
	var engine Engine
	process := exec.Command(config.Cmd, strings.Fields(config.Arg)...)

	engine.config = config

	process.Dir = config.Dir

	stdin, err := process.StdinPipe()
	if err != nil {
		return nil, err
	}

	stdout, err := process.StdoutPipe()
	if err != nil {
		return nil, err
	}

	engine.writer = stdin
	engine.reader = bufio.NewReader(stdout)
	engine.lines = make(chan string, 64)
	engine.done = make(chan struct{})
	engine.exited = make(chan struct{})

	engine.Cmd = process

	if err := engine.Cmd.Start(); err != nil {
		return nil, fmt.Errorf("engine %s: %w", config.Name, err)
	}

	go func() {
		defer close(engine.exited)
		defer close(engine.lines)

		for {
			line, err := engine.reader.ReadString('\n')
			if err != nil {
				engine.err = err
				return
			}

			line = strings.Trim(line, " \n\t\r")

			logrus.Tracef("info: (%s)> %s", engine.config.Name, line)
			select {
			case engine.lines <- line:
			case <-engine.done:
				engine.err = ErrEngineClosed
				return
			}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), handshake)
	defer cancel()

	if err := engine.initialize(ctx); err != nil {
		_ = engine.Close()
		return nil, fmt.Errorf("engine %s: %w", config.Name, err)
	}

	return &engine, nil
}

// initialize runs the protocol handshake and sets the engine's options.
func (engine *Engine) initialize(ctx context.Context) error {
	if engine.config.InitStr != "" {
		if err := engine.Write("%s", engine.config.InitStr); err != nil {
			return err
		}
	}

	if err := engine.Write("uci"); err != nil {
		return err
	}

	if _, err := engine.Await(ctx, "^uciok"); err != nil {
		return err
	}

	// sorted so that engines see options in a stable order
	names := make([]string, 0, len(engine.config.Options))
	for name := range engine.config.Options {
		names = append(names, name)
	}

	sort.Strings(names)
	for _, name := range names {
		if err := engine.Write("setoption name %s value %s", name, engine.config.Options[name]); err != nil {
			return err
		}
	}

	return engine.Synchronize(ctx)
}

// NewGame tells the engine that the following positions are from a new
// game.
func (engine *Engine) NewGame(ctx context.Context) error {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	if err := engine.Write("ucinewgame"); err != nil {
		return err
	}

	return engine.Synchronize(ctx)
}

// Decide sends the position to the engine and waits for its bestmove.
func (engine *Engine) Decide(ctx context.Context, board *rules.Board, view *clock.View, side rules.Color) (string, error) {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	position := "position fen " + board.StartFEN()
	if moves := board.Moves(); len(moves) > 0 {
		position += " moves " + strings.Join(moves, " ")
	}

	if err := engine.Write("%s", position); err != nil {
		return "", err
	}

	if err := engine.Synchronize(ctx); err != nil {
		return "", err
	}

	if err := engine.Write("%s", goCommand(engine.config, view)); err != nil {
		return "", err
	}

	line, err := engine.Await(ctx, "^bestmove")
	if err != nil {
		if ctx.Err() != nil {
			// the search is being abandoned, so don't leave it running
			_ = engine.Write("stop")
		}

		return "", err
	}

	fields := strings.Fields(line)
	if len(fields) < 2 || fields[1] == "(none)" || fields[1] == "0000" {
		return "", fmt.Errorf("engine %s: no bestmove in %q", engine.config.Name, line)
	}

	return fields[1], nil
}

// goCommand builds the go command for a search under the given clock.
func goCommand(config EngineConfig, view *clock.View) string {
	switch {
	case config.Depth > 0:
		return fmt.Sprintf("go depth %d", config.Depth)
	case config.Nodes > 0:
		return fmt.Sprintf("go nodes %d", config.Nodes)
	case config.MoveTime > 0:
		return fmt.Sprintf("go movetime %d", config.MoveTime.Milliseconds())
	case !view.Timed():
		return fmt.Sprintf("go movetime %d", DefaultMoveTime.Milliseconds())
	}

	var inc int64
	switch view.Control().Kind {
	case clock.Increment, clock.Bronstein:
		inc = view.Control().Increment.Milliseconds()
	}

	return fmt.Sprintf(
		"go wtime %d btime %d winc %d binc %d",
		view.RemainingOf(rules.White).Milliseconds(),
		view.RemainingOf(rules.Black).Milliseconds(),
		inc, inc,
	)
}

// Synchronize waits for the engine to complete some time consuming task
// and synchronizes the interface with it.
func (engine *Engine) Synchronize(ctx context.Context) error {
	if err := engine.Write("isready"); err != nil {
		return err
	}

	_, err := engine.Await(ctx, "^readyok")
	return err
}

// Close asks the engine to quit and then kills it. It returns once the
// engine's output is no longer being read.
func (engine *Engine) Close() error {
	var err error
	engine.once.Do(func() {
		_ = engine.Write("quit")
		_ = engine.writer.Close()
		close(engine.done)

		if err = engine.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			return
		}

		err = nil
		_ = engine.Wait()
		<-engine.exited
	})

	return err
}

// Await waits for a line matching the given pattern from the engine until
// the context is done. Lines which don't match are discarded.
func (engine *Engine) Await(ctx context.Context, pattern string) (string, error) {
	regex := regexp.MustCompile(pattern)

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return "", ErrReadTimeout
			}

			return "", ctx.Err()

		case line, ok := <-engine.lines:
			if !ok {
				if engine.err == nil || errors.Is(engine.err, io.EOF) {
					return "", ErrEngineClosed
				}

				return "", engine.err
			}

			if regex.MatchString(line) {
				// line is the expected line
				return line, nil
			}
		}
	}
}

// Write sends a single command to the engine.
func (engine *Engine) Write(format string, a ...any) error {
	command := fmt.Sprintf(format, a...)
	logrus.Tracef("info: (%s)< %s", engine.config.Name, command)

	_, err := io.WriteString(engine.writer, command+"\n")
	return err
}
