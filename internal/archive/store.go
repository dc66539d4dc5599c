// Package archive persists readings in SQLite. It sits outside the engine:
// the engine never reads from it, callers feed Latest back in as the
// previous coherence score.
package archive

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vosarka/oriel-resonance-circle-sub000/internal/reading"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS readings (
	id          TEXT PRIMARY KEY,
	subject     TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	coherence   INTEGER NOT NULL,
	trend       TEXT NOT NULL,
	pattern     TEXT NOT NULL,
	role        TEXT NOT NULL,
	body        TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS readings_subject_created
	ON readings (subject, created_at DESC);
`

// createdLayout is fixed-width so created_at sorts correctly as text.
const createdLayout = "2006-01-02T15:04:05.000000000Z"

// #endregion schema

// #region store-struct

// Store archives readings in SQLite. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor

// NewStore opens a SQLite database and runs migrations. ":memory:" gives a
// private in-memory archive.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if dbPath == ":memory:" {
		// Each connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// #region close

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion close

// #region save

// Save stores r under its ID. Readings are immutable, so saving an ID twice
// fails.
func (s *Store) Save(r reading.Reading) error {
	if r.ID == "" {
		return fmt.Errorf("save reading: empty id")
	}
	body, err := r.JSON()
	if err != nil {
		return fmt.Errorf("save reading %s: %w", r.ID, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO readings (id, subject, created_at, coherence, trend, pattern, role, body)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Subject, r.CreatedAt.UTC().Format(createdLayout), r.Coherence.Score,
		string(r.Trajectory.Trend), string(r.Pattern.Type), string(r.Role), string(body),
	)
	if err != nil {
		return fmt.Errorf("insert reading %s: %w", r.ID, err)
	}
	return nil
}

// #endregion save

// #region get

// Get retrieves a reading by ID.
func (s *Store) Get(id string) (reading.Reading, error) {
	return s.scanBody(s.db.QueryRow(`SELECT body FROM readings WHERE id = ?`, id), id)
}

// Latest returns the most recent reading for subject.
func (s *Store) Latest(subject string) (reading.Reading, error) {
	row := s.db.QueryRow(
		`SELECT body FROM readings WHERE subject = ?
		 ORDER BY created_at DESC, rowid DESC LIMIT 1`, subject)
	return s.scanBody(row, "latest for "+subject)
}

// PreviousScore returns the coherence score of subject's latest reading, or
// nil when subject has none.
func (s *Store) PreviousScore(subject string) (*int, error) {
	var score int
	err := s.db.QueryRow(
		`SELECT coherence FROM readings WHERE subject = ?
		 ORDER BY created_at DESC, rowid DESC LIMIT 1`, subject).Scan(&score)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("previous score for %s: %w", subject, err)
	}
	return &score, nil
}

func (s *Store) scanBody(row *sql.Row, what string) (reading.Reading, error) {
	var body string
	if err := row.Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return reading.Reading{}, fmt.Errorf("get reading %s: %w", what, ErrNotFound)
		}
		return reading.Reading{}, fmt.Errorf("get reading %s: %w", what, err)
	}
	r, err := reading.Parse([]byte(body))
	if err != nil {
		return reading.Reading{}, fmt.Errorf("get reading %s: %w", what, err)
	}
	return r, nil
}

// #endregion get

// #region list

// List returns up to limit entries for subject, newest first. An empty subject
// lists every subject; limit <= 0 means no limit.
func (s *Store) List(subject string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(
		`SELECT id, subject, created_at, coherence, trend, pattern, role FROM readings
		 WHERE ? = '' OR subject = ?
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`, subject, subject, limit)
	if err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var created string
		if err := rows.Scan(&e.ID, &e.Subject, &created, &e.Coherence, &e.Trend, &e.Pattern, &e.Role); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		if e.CreatedAt, err = time.Parse(createdLayout, created); err != nil {
			return nil, fmt.Errorf("parse created_at of %s: %w", e.ID, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	return out, nil
}

// #endregion list
