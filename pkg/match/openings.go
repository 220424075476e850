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

package match

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"laptudirm.com/x/chesster/pkg/rules"
)

// OpeningConfig selects the book the starting positions are taken from.
type OpeningConfig struct {
	// File is an EPD or FEN file with one position per line.
	File string `yaml:"file" env:"FILE"`

	// Order is either sequential or random.
	Order string `yaml:"order" env:"ORDER"`
}

// NewBook loads the opening book described by the given config. Blank
// lines and lines starting with # are ignored. A zero seed seeds the
// random order from the current time.
func NewBook(config OpeningConfig, seed int64) (*OpeningBook, error) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	if !validOrder(config.Order) {
		return nil, fmt.Errorf("%w: unknown opening order %q", ErrConfig, config.Order)
	}

	file, err := os.ReadFile(config.File)
	if err != nil {
		return nil, fmt.Errorf("%w: opening book: %v", ErrConfig, err)
	}

	book := OpeningBook{strategy: config.Order, rng: rand.New(rand.NewSource(seed))}
	for n, line := range strings.Split(string(file), "\n") {
		line = strings.Trim(line, "\n\r\t ")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fen := epdToFEN(line)
		if err := rules.ValidateFEN(fen); err != nil {
			return nil, fmt.Errorf("%w: %s:%d: %v", ErrConfig, config.File, n+1, err)
		}

		book.entries = append(book.entries, fen)
	}

	if len(book.entries) == 0 {
		return nil, fmt.Errorf("%w: opening book %s is empty", ErrConfig, config.File)
	}

	if book.strategy == "random" {
		book.Next()
	}

	return &book, nil
}

func validOrder(order string) bool {
	switch order {
	case "", "sequential", "random":
		return true
	default:
		return false
	}
}

// epdToFEN converts an EPD line into a FEN string. Lines which already
// carry the move counters are returned unchanged, minus any opcodes.
func epdToFEN(line string) string {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return line
	}

	if len(fields) >= 6 {
		_, halfErr := strconv.Atoi(fields[4])
		_, fullErr := strconv.Atoi(fields[5])
		if halfErr == nil && fullErr == nil {
			return strings.Join(fields[:6], " ")
		}
	}

	return strings.Join(fields[:4], " ") + " 0 1"
}

// OpeningBook is a list of starting positions.
type OpeningBook struct {
	entries  []string
	strategy string
	current  int

	rng *rand.Rand
}

// Next moves on to the next opening in the book.
func (book *OpeningBook) Next() {
	switch book.strategy {
	case "random":
		book.current = book.rng.Intn(len(book.entries))
	default:
		book.current = (book.current + 1) % len(book.entries)
	}
}

// Current returns the current opening's FEN.
func (book *OpeningBook) Current() string {
	return book.entries[book.current]
}

// Len returns the number of openings in the book.
func (book *OpeningBook) Len() int {
	return len(book.entries)
}
