// Package capture stores telemetry readings in SQLite, grouped in sessions.
package capture

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/itohio/gocapm/pkg/reading"
)

// Error is a capture error.
type Error string

func (e Error) Error() string {
	return string(e)
}

const ErrNoSession = Error("no capture session started")

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id  TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	started_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS readings (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id      TEXT NOT NULL,
	ts              TEXT NOT NULL,
	capacitance_nf  REAL NOT NULL,
	frequency_hz    REAL NOT NULL,
	present         INTEGER NOT NULL,
	records         TEXT NOT NULL,
	FOREIGN KEY (session_id) REFERENCES sessions(session_id)
);

CREATE INDEX IF NOT EXISTS readings_session ON readings(session_id, id);
`

// Session describes one capture run.
type Session struct {
	ID        string
	Source    string
	StartedAt time.Time
	Readings  int
}

// Store writes readings of the current session.
type Store struct {
	db *sql.DB

	mu      sync.Mutex
	session string
}

// Open opens or creates the capture database at path. ":memory:" keeps it
// in memory.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One connection: an in-memory database exists per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Start begins a new session and makes it current.
func (s *Store) Start(source string) (string, error) {
	id := uuid.New().String()
	_, err := s.db.Exec(
		`INSERT INTO sessions (session_id, source, started_at) VALUES (?, ?, ?)`,
		id, source, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}

	s.mu.Lock()
	s.session = id
	s.mu.Unlock()
	return id, nil
}

// Session returns the current session id, empty before Start.
func (s *Store) Session() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Write stores r in the current session.
func (s *Store) Write(r reading.Reading) error {
	session := s.Session()
	if session == "" {
		return ErrNoSession
	}

	records, err := json.Marshal(r.Records)
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	ts := r.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err = s.db.Exec(
		`INSERT INTO readings (session_id, ts, capacitance_nf, frequency_hz, present, records)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		session, ts.UTC().Format(time.RFC3339Nano), r.Capacitance, r.Frequency, r.Present, string(records),
	)
	if err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	return nil
}

// Tee writes every reading passing through and forwards it unchanged.
// Write failures are logged and do not stop the flow.
func (s *Store) Tee(in <-chan reading.Reading) <-chan reading.Reading {
	out := make(chan reading.Reading, cap(in))
	go func() {
		defer close(out)
		for r := range in {
			if err := s.Write(r); err != nil {
				log.Printf("Failed to capture reading: %v", err)
			}
			out <- r
		}
	}()
	return out
}

// Sessions lists every session, oldest first.
func (s *Store) Sessions() ([]Session, error) {
	rows, err := s.db.Query(
		`SELECT s.session_id, s.source, s.started_at, COUNT(r.id)
		 FROM sessions s LEFT JOIN readings r ON r.session_id = s.session_id
		 GROUP BY s.session_id
		 ORDER BY s.started_at, s.rowid`,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var result []Session
	for rows.Next() {
		var sess Session
		var started string
		if err := rows.Scan(&sess.ID, &sess.Source, &started, &sess.Readings); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sess.StartedAt, err = time.Parse(time.RFC3339Nano, started)
		if err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		result = append(result, sess)
	}
	return result, rows.Err()
}

// Readings returns the readings of session in capture order.
func (s *Store) Readings(session string) ([]reading.Reading, error) {
	rows, err := s.db.Query(
		`SELECT ts, capacitance_nf, frequency_hz, present, records
		 FROM readings WHERE session_id = ? ORDER BY id`,
		session,
	)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer rows.Close()

	var result []reading.Reading
	for rows.Next() {
		var r reading.Reading
		var ts, records string
		if err := rows.Scan(&ts, &r.Capacitance, &r.Frequency, &r.Present, &records); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		if r.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("parse ts: %w", err)
		}
		if err := json.Unmarshal([]byte(records), &r.Records); err != nil {
			return nil, fmt.Errorf("unmarshal records: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
