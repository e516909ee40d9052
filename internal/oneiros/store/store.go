// Package store implements the event store: the durable, ordered record
// of facts backing both the system database (tenant/actor/brain/ticket)
// and each brain's own database. Adapted from the teacher's
// internal/store/sqlite_store.go: schema-as-const-string migrations, a
// sync.Mutex-guarded *sql.DB, and full Export/Import serialization —
// generalized here from a note/entity/edge graph to an append-only
// event log, per spec §4.1 and the single-writer model of spec §5.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/asg017/sqlite-vec-go-bindings/ncruces"
	_ "github.com/ncruces/go-sqlite3/driver"

	"github.com/oneiros/oneiros/internal/oneiros/errs"
	"github.com/oneiros/oneiros/internal/oneiros/event"
)

// eventsSchema is shared by the system database and every brain
// database (spec §6: "Per-brain databases... contain the same events
// table shape").
const eventsSchema = `
CREATE TABLE IF NOT EXISTS events (
    rowid_pk  INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp TEXT NOT NULL,
    type      TEXT NOT NULL,
    data      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_type ON events(type);
`

// Store wraps a single SQLite connection serving either the system
// database or one brain's database. All access is serialized through
// mu, the single-writer bottleneck the spec calls out explicitly in §5
// as a deliberate trade-off for a local, modest-volume workload.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// Open opens (creating if necessary) a store at dsn. Use ":memory:" for
// an ephemeral store, matching the teacher's NewSQLiteStore default.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, &errs.StoreIOError{Cause: fmt.Errorf("open %s: %w", dsn, err)}
	}
	if _, err := db.Exec(eventsSchema); err != nil {
		db.Close()
		return nil, &errs.StoreIOError{Cause: fmt.Errorf("create events schema: %w", err)}
	}
	return &Store{db: db}, nil
}

// EnsureSchema runs an additional schema fragment (used by the
// projection and search packages to create their own tables) under the
// store's write lock, so table creation is serialized with everything
// else.
func (s *Store) EnsureSchema(ddl string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec(ddl); err != nil {
		return &errs.StoreIOError{Cause: err}
	}
	return nil
}

// DB exposes the underlying *sql.DB for projection/search code that
// needs to run its own statements inside the same connection. Callers
// must not use it concurrently with another goroutine without going
// through Store's locking methods (WithLock).
func (s *Store) DB() *sql.DB { return s.db }

// WithLock runs fn while holding the store's write lock, for callers
// (the projection engine) that need several statements to observe a
// consistent, non-interleaved view.
func (s *Store) WithLock(fn func(*sql.DB) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.db)
}

// Close closes the backing connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Dispatcher is invoked by Append after the event row is durably
// written, so it can run the projection engine's forward dispatch over
// the same connection. A projection failure does not undo the event
// insert (spec §4.1: "A failure partway through projection dispatch
// leaves the event row written").
type Dispatcher func(db *sql.DB, ev event.Event) error

// EventRow is one row of the events table.
type EventRow struct {
	RowID int64
	Event event.Event
}

// Append inserts ev and, if dispatch is non-nil, runs it over the same
// connection. Returns the new row id.
func (s *Store) Append(ev event.Event, dispatch Dispatcher) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts, data, err := ev.MarshalStored()
	if err != nil {
		return 0, &errs.SerializationError{Context: "event", Cause: err}
	}

	res, err := s.db.Exec(`INSERT INTO events (timestamp, type, data) VALUES (?, ?, ?)`,
		ts, string(ev.Envelope.Type), data)
	if err != nil {
		return 0, &errs.StoreIOError{Cause: err}
	}
	rowID, err := res.LastInsertId()
	if err != nil {
		return 0, &errs.StoreIOError{Cause: err}
	}

	if dispatch != nil {
		if err := dispatch(s.db, ev); err != nil {
			return rowID, &errs.ProjectionError{Name: string(ev.Envelope.Type), Cause: err}
		}
	}
	return rowID, nil
}

// ImportEvent inserts an event with a caller-supplied timestamp,
// skipping projection dispatch entirely — used by the replay pipeline
// (spec §4.1's import_event, §4.7 step 4).
func (s *Store) ImportEvent(ev event.Event) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts, data, err := ev.MarshalStored()
	if err != nil {
		return 0, &errs.SerializationError{Context: "event", Cause: err}
	}
	res, err := s.db.Exec(`INSERT INTO events (timestamp, type, data) VALUES (?, ?, ?)`,
		ts, string(ev.Envelope.Type), data)
	if err != nil {
		return 0, &errs.StoreIOError{Cause: err}
	}
	return res.LastInsertId()
}

// Events returns every event in rowid order, optionally filtered by
// type.
func (s *Store) Events(filter *event.Type) ([]EventRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows *sql.Rows
	var err error
	if filter != nil {
		rows, err = s.db.Query(`SELECT rowid_pk, timestamp, data FROM events WHERE type = ? ORDER BY rowid_pk ASC`, string(*filter))
	} else {
		rows, err = s.db.Query(`SELECT rowid_pk, timestamp, data FROM events ORDER BY rowid_pk ASC`)
	}
	if err != nil {
		return nil, &errs.StoreIOError{Cause: err}
	}
	defer rows.Close()

	var out []EventRow
	for rows.Next() {
		var rowID int64
		var ts, data string
		if err := rows.Scan(&rowID, &ts, &data); err != nil {
			return nil, &errs.StoreIOError{Cause: err}
		}
		ev, err := event.ParseStored(ts, data)
		if err != nil {
			return nil, &errs.SerializationError{Context: "event row", Cause: err}
		}
		out = append(out, EventRow{RowID: rowID, Event: ev})
	}
	return out, rows.Err()
}

// EventCount returns the number of rows in the events table.
func (s *Store) EventCount() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, &errs.StoreIOError{Cause: err}
	}
	return n, nil
}

// exportedEvent is the wire shape of one event row in an Export blob.
type exportedEvent struct {
	Timestamp string `json:"timestamp"`
	Data      string `json:"data"`
}

// Export serializes the entire event log — the only source of truth
// in an event-sourced store — to a portable JSON blob. Materialized
// projection tables are not exported; Import restores only the log and
// the caller runs a rebuild afterward, matching the teacher's
// Export/Import pattern generalized to "export the log, not the derived
// views."
func (s *Store) Export() ([]byte, error) {
	s.mu.Lock()
	rows, err := s.db.Query(`SELECT timestamp, data FROM events ORDER BY rowid_pk ASC`)
	if err != nil {
		s.mu.Unlock()
		return nil, &errs.StoreIOError{Cause: err}
	}
	var out []exportedEvent
	for rows.Next() {
		var e exportedEvent
		if err := rows.Scan(&e.Timestamp, &e.Data); err != nil {
			rows.Close()
			s.mu.Unlock()
			return nil, &errs.StoreIOError{Cause: err}
		}
		out = append(out, e)
	}
	closeErr := rows.Close()
	s.mu.Unlock()
	if closeErr != nil {
		return nil, &errs.StoreIOError{Cause: closeErr}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, &errs.SerializationError{Context: "export", Cause: err}
	}
	return data, nil
}

// Import replaces the event log with the contents of an Export blob.
// It does not run projections or a rebuild itself; the caller runs
// rebuild afterward, matching spec §4.7 step 4. (The replay pipeline
// does not use Import: it appends rewritten events with ImportEvent.)
func (s *Store) Import(data []byte) error {
	var rows []exportedEvent
	if len(data) > 0 {
		if err := json.Unmarshal(data, &rows); err != nil {
			return &errs.SerializationError{Context: "import", Cause: err}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return &errs.StoreIOError{Cause: err}
	}
	if _, err := tx.Exec(`DELETE FROM events`); err != nil {
		tx.Rollback()
		return &errs.StoreIOError{Cause: err}
	}
	stmt, err := tx.Prepare(`INSERT INTO events (timestamp, type, data) VALUES (?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return &errs.StoreIOError{Cause: err}
	}
	defer stmt.Close()
	for _, r := range rows {
		ev, err := event.ParseStored(r.Timestamp, r.Data)
		if err != nil {
			tx.Rollback()
			return &errs.SerializationError{Context: "import row", Cause: err}
		}
		if _, err := stmt.Exec(r.Timestamp, string(ev.Envelope.Type), r.Data); err != nil {
			tx.Rollback()
			return &errs.StoreIOError{Cause: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &errs.StoreIOError{Cause: err}
	}
	return nil
}
