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

package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laptudirm.com/x/chesster/pkg/clock"
	"laptudirm.com/x/chesster/pkg/record"
	"laptudirm.com/x/chesster/pkg/rules"
)

func newMatch(t *testing.T, id string) *record.MatchRecord {
	t.Helper()

	match, err := record.NewMatch(id, [2]string{"first", "random"}, 1, 1)
	require.NoError(t, err)

	game := record.NewGame("first", "random", rules.StartFEN, clock.Control{
		Kind: clock.Increment, Base: time.Minute, Increment: time.Second,
	})
	require.NoError(t, game.Append(record.Move{
		Side:    rules.White,
		Move:    "e2e4",
		FEN:     "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1",
		Elapsed: 250 * time.Millisecond,
	}))
	require.NoError(t, game.Finish(record.ResignationOf(rules.Black)))
	require.NoError(t, match.Append(game))

	return match
}

func openStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestSaveLoad(t *testing.T) {
	store := openStore(t)
	match := newMatch(t, "a")

	require.NoError(t, store.Save(context.Background(), match))

	loaded, err := store.Load(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, match.Equal(loaded))
}

func TestLoadMissing(t *testing.T) {
	_, err := openStore(t).Load(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveReplaces(t *testing.T) {
	store := openStore(t)
	match := newMatch(t, "a")
	require.NoError(t, store.Save(context.Background(), match))

	match.Agents = [2]string{"first", "resign"}
	require.NoError(t, store.Save(context.Background(), match))

	loaded, err := store.Load(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "resign", loaded.Agents[1])

	summaries, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
}

func TestList(t *testing.T) {
	store := openStore(t)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(context.Background(), newMatch(t, "old")))
	now = now.Add(time.Hour)
	require.NoError(t, store.Save(context.Background(), newMatch(t, "new")))

	summaries, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, Summary{
		ID:       "new",
		Agents:   [2]string{"first", "random"},
		Games:    1,
		SeatWins: [2]int{1, 0},
		SavedAt:  now,
	}, summaries[0])
	assert.Equal(t, "old", summaries[1].ID)
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), newMatch(t, "a")))
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Load(context.Background(), "a")
	assert.NoError(t, err)
}

func TestOpenWithoutPath(t *testing.T) {
	_, err := Open(" ")
	assert.Error(t, err)
}
