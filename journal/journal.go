// Package journal persists final-position digests of completed games in a
// sqlite database. Replaying a recorded game and comparing digests detects
// divergent rule implementations and duplicated or tampered game records.
package journal

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id      TEXT PRIMARY KEY,
	seed    INTEGER NOT NULL,
	variant TEXT NOT NULL,
	players INTEGER NOT NULL,
	moves   INTEGER NOT NULL,
	digest  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS games_digest ON games(digest);
`

// Journal is a handle on one journal database. Safe for use from a single
// goroutine; the runner is sequential.
type Journal struct {
	db *sql.DB
}

// Open creates or opens a journal at path, creating the schema as needed.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Record stores one completed game. Recording the same game id twice is an
// error.
func (j *Journal) Record(gameID string, seed int64, variant string, players, moves int, digest uint64) error {
	_, err := j.db.Exec(
		`INSERT INTO games (id, seed, variant, players, moves, digest) VALUES (?, ?, ?, ?, ?, ?)`,
		gameID, seed, variant, players, moves, int64(digest))
	if err != nil {
		return fmt.Errorf("recording game %s: %w", gameID, err)
	}
	return nil
}

// Seen reports whether any recorded game ended in this exact position.
func (j *Journal) Seen(digest uint64) (bool, error) {
	var n int
	err := j.db.QueryRow(`SELECT COUNT(*) FROM games WHERE digest = ?`, int64(digest)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("querying digest: %w", err)
	}
	return n > 0, nil
}

// Games returns how many games the journal holds.
func (j *Journal) Games() (int, error) {
	var n int
	if err := j.db.QueryRow(`SELECT COUNT(*) FROM games`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting games: %w", err)
	}
	return n, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}
