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

package record_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laptudirm.com/x/chesster/pkg/clock"
	"laptudirm.com/x/chesster/pkg/record"
	"laptudirm.com/x/chesster/pkg/rules"
)

const mateFEN = "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1"

// sampleMatch builds a small complete match with every kind of field
// populated.
func sampleMatch(t *testing.T) *record.MatchRecord {
	t.Helper()

	match, err := record.NewMatch("9b2f1c9e-1a4e-4a57-9f0e-0c2b8f1f7d11", [2]string{"alpha", "beta"}, 2, 2)
	require.NoError(t, err)

	mate := record.NewGame("alpha", "beta", mateFEN, clock.Control{Kind: clock.Untimed})
	require.NoError(t, mate.Append(record.Move{
		Side:    rules.White,
		Move:    "a1a8",
		FEN:     "R5k1/5ppp/8/8/8/8/8/6K1 b - - 1 1",
		Elapsed: 1234567 * time.Nanosecond,
	}))
	require.NoError(t, mate.Finish(record.CheckmateBy(rules.White)))

	illegal := record.NewGame("beta", "alpha", rules.StartFEN, clock.Control{
		Kind: clock.Bronstein, Base: 90 * time.Second, Increment: 1500 * time.Millisecond,
	})
	illegal.WhiteSeat = 1
	require.NoError(t, illegal.Append(record.Move{
		Side:    rules.White,
		Move:    "e2e4",
		FEN:     "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1",
		Elapsed: 2 * time.Second,
	}))
	require.NoError(t, illegal.Finish(record.IllegalMoveBy(rules.Black, "e7e4")))

	require.NoError(t, match.Append(mate))
	require.NoError(t, match.Append(illegal))
	require.True(t, match.Complete())

	return match
}

// assertPlain checks that a document only contains maps, lists, strings,
// bools, ints, floats and nils.
func assertPlain(t *testing.T, value any) {
	t.Helper()

	switch v := value.(type) {
	case map[string]any:
		for _, entry := range v {
			assertPlain(t, entry)
		}
	case []any:
		for _, entry := range v {
			assertPlain(t, entry)
		}
	case string, bool, int, float64, nil:
	default:
		t.Errorf("unexpected %T in exported document", value)
	}
}

func TestExportIsPlain(t *testing.T) {
	assertPlain(t, sampleMatch(t).Export())
}

func TestExportImportRoundTrip(t *testing.T) {
	match := sampleMatch(t)

	imported, err := record.ImportMatch(match.Export())
	require.NoError(t, err)

	assert.True(t, match.Equal(imported))
	assert.Equal(t, match, imported)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	match := sampleMatch(t)

	for _, format := range []record.Format{record.JSON, record.YAML} {
		var buf bytes.Buffer
		require.NoError(t, record.Encode(&buf, format, match), format)

		decoded, err := record.Decode(&buf, format)
		require.NoError(t, err, format)
		assert.True(t, match.Equal(decoded), format)
	}
}

func TestFileRoundTrip(t *testing.T) {
	match := sampleMatch(t)
	dir := t.TempDir()

	for _, name := range []string{"match.json", "match.yaml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, record.WriteFile(path, match))

		read, err := record.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, match.Equal(read), name)
	}
}

func TestImportMove(t *testing.T) {
	m, err := record.ImportMove(map[string]any{
		"side":      "black",
		"move":      "e7e5",
		"fen":       "fen",
		"time_used": 2, // integral seconds from a YAML decoder
	})
	require.NoError(t, err)
	assert.Equal(t, record.Move{Side: rules.Black, Move: "e7e5", FEN: "fen", Elapsed: 2 * time.Second}, m)
}

func TestImportRejectsMalformedDocuments(t *testing.T) {
	tests := map[string]func(doc map[string]any){
		"missing id":     func(doc map[string]any) { delete(doc, "id") },
		"numeric id":     func(doc map[string]any) { doc["id"] = 7 },
		"three agents":   func(doc map[string]any) { doc["agents"] = []any{"a", "b", "c"} },
		"zero wins":      func(doc map[string]any) { doc["wins_required"] = 0 },
		"bad counters":   func(doc map[string]any) { doc["wins"] = map[string]any{"white": 0, "black": 2} },
		"missing wins":   func(doc map[string]any) { delete(doc, "wins") },
		"text counter":   func(doc map[string]any) { doc["wins"].(map[string]any)["black"] = "none" },
		"missing seats":  func(doc map[string]any) { delete(doc, "seat_wins") },
		"bad seat wins":  func(doc map[string]any) { doc["seat_wins"] = []any{0, 2} },
		"one seat":       func(doc map[string]any) { doc["seat_wins"] = []any{2} },
		"games not list": func(doc map[string]any) { doc["games"] = "none" },
		"bad game": func(doc map[string]any) {
			doc["games"].([]any)[0].(map[string]any)["white_seat"] = 2
		},
		"bad move": func(doc map[string]any) {
			game := doc["games"].([]any)[0].(map[string]any)
			game["moves"].([]any)[0].(map[string]any)["side"] = "green"
		},
		"negative time": func(doc map[string]any) {
			game := doc["games"].([]any)[0].(map[string]any)
			game["moves"].([]any)[0].(map[string]any)["time_used"] = -1.0
		},
		"unknown result": func(doc map[string]any) {
			game := doc["games"].([]any)[0].(map[string]any)
			game["result"] = map[string]any{"kind": "adjournment"}
		},
		"unfinished game": func(doc map[string]any) {
			doc["games"].([]any)[0].(map[string]any)["result"] = nil
		},
	}

	for name, corrupt := range tests {
		t.Run(name, func(t *testing.T) {
			doc := sampleMatch(t).Export()
			corrupt(doc)

			_, err := record.ImportMatch(doc)
			assert.ErrorIs(t, err, record.ErrMalformed)
		})
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := record.Decode(strings.NewReader("{not json"), record.JSON)
	assert.ErrorIs(t, err, record.ErrMalformed)

	_, err = record.Decode(strings.NewReader("- just\n- a list\n"), record.YAML)
	assert.ErrorIs(t, err, record.ErrMalformed)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, record.YAML, record.FormatFromPath("out/match.YML"))
	assert.Equal(t, record.YAML, record.FormatFromPath("match.yaml"))
	assert.Equal(t, record.JSON, record.FormatFromPath("match.json"))
	assert.Equal(t, record.JSON, record.FormatFromPath("match"))
}
