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

// Package archive stores finished match records in a SQLite database.
package archive

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"laptudirm.com/x/chesster/pkg/record"
)

// ErrNotFound is returned when no match with the given ID is archived.
var ErrNotFound = errors.New("archive: match not found")

const schema = `
CREATE TABLE IF NOT EXISTS matches (
	id         TEXT PRIMARY KEY,
	seat0      TEXT NOT NULL,
	seat1      TEXT NOT NULL,
	games      INTEGER NOT NULL,
	seat0_wins INTEGER NOT NULL,
	seat1_wins INTEGER NOT NULL,
	document   TEXT NOT NULL,
	saved_at   INTEGER NOT NULL
)`

// Summary is a short description of an archived match.
type Summary struct {
	ID       string
	Agents   [2]string
	Games    int
	SeatWins [2]int
	SavedAt  time.Time
}

// Store is a SQLite backed archive of match records.
type Store struct {
	db *sql.DB

	now func() time.Time
}

// Open opens the archive at the given path, creating it if needed.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("archive: no database path")
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("archive: open: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("archive: create schema: %w", err)
	}

	logrus.WithField("path", path).Debug("opened archive")
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (store *Store) Close() error {
	return store.db.Close()
}

// Save stores the match, replacing any match with the same ID.
func (store *Store) Save(ctx context.Context, match *record.MatchRecord) error {
	var document bytes.Buffer
	if err := record.Encode(&document, record.JSON, match); err != nil {
		return fmt.Errorf("archive: encode %s: %w", match.ID, err)
	}

	_, err := store.db.ExecContext(
		ctx,
		`INSERT INTO matches (id, seat0, seat1, games, seat0_wins, seat1_wins, document, saved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   seat0 = excluded.seat0,
		   seat1 = excluded.seat1,
		   games = excluded.games,
		   seat0_wins = excluded.seat0_wins,
		   seat1_wins = excluded.seat1_wins,
		   document = excluded.document,
		   saved_at = excluded.saved_at`,
		match.ID,
		match.Agents[0], match.Agents[1],
		len(match.Games),
		match.SeatWins[0], match.SeatWins[1],
		document.String(),
		store.now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("archive: save %s: %w", match.ID, err)
	}

	return nil
}

// Load returns the archived match with the given ID.
func (store *Store) Load(ctx context.Context, id string) (*record.MatchRecord, error) {
	var document string
	err := store.db.QueryRowContext(ctx, `SELECT document FROM matches WHERE id = ?`, id).Scan(&document)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case err != nil:
		return nil, fmt.Errorf("archive: load %s: %w", id, err)
	}

	return record.Decode(strings.NewReader(document), record.JSON)
}

// List returns a summary of every archived match, most recent first.
func (store *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := store.db.QueryContext(
		ctx,
		`SELECT id, seat0, seat1, games, seat0_wins, seat1_wins, saved_at
		   FROM matches
		  ORDER BY saved_at DESC, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("archive: list: %w", err)
	}

	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var summary Summary
		var savedAt int64
		if err := rows.Scan(
			&summary.ID,
			&summary.Agents[0], &summary.Agents[1],
			&summary.Games,
			&summary.SeatWins[0], &summary.SeatWins[1],
			&savedAt,
		); err != nil {
			return nil, fmt.Errorf("archive: list: %w", err)
		}

		summary.SavedAt = time.UnixMilli(savedAt).UTC()
		summaries = append(summaries, summary)
	}

	return summaries, rows.Err()
}
