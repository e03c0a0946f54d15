// Copyright 2025 The spindle Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package journal

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	// SQLite driver registered as "sqlite".
	_ "modernc.org/sqlite"
)

// Kind classifies a journal event.
type Kind string

const (
	KindInit      Kind = "init"
	KindTerminate Kind = "terminate"
	KindCreated   Kind = "created"
	KindExited    Kind = "exited"
	KindDestroyed Kind = "destroyed"
)

// Event is one recorded lifecycle event.
type Event struct {
	Seq      int64
	Session  string
	Kind     Kind
	Thread   int // -1 for runtime-wide events
	NativeID uint64
	Detail   string
	At       time.Time
}

// SQLiteJournal is an Observer that appends every event to a SQLite table.
//
// Observer callbacks cannot return errors; the first write failure is kept
// and reported by Err.
type SQLiteJournal struct {
	db   *sql.DB
	owns bool

	mu  sync.Mutex
	err error
}

// Ensure SQLiteJournal implements Observer.
var _ Observer = (*SQLiteJournal)(nil)

// NewSQLiteJournal initializes the schema in db and returns a journal
// writing to it. The caller keeps ownership of db.
func NewSQLiteJournal(db *sql.DB) (*SQLiteJournal, error) {
	j := &SQLiteJournal{db: db}
	if err := j.initSchema(); err != nil {
		return nil, err
	}
	return j, nil
}

// OpenSQLite opens (creating if needed) the database at path. Close
// releases it.
func OpenSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	// One connection serializes writers and keeps ":memory:" databases
	// shared.
	db.SetMaxOpenConns(1)

	j, err := NewSQLiteJournal(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	j.owns = true
	return j, nil
}

func (j *SQLiteJournal) initSchema() error {
	_, err := j.db.Exec(`
		CREATE TABLE IF NOT EXISTS thread_events (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			session TEXT NOT NULL,
			kind TEXT NOT NULL,
			thread INTEGER NOT NULL,
			native INTEGER NOT NULL,
			detail TEXT NOT NULL,
			at INTEGER NOT NULL
		);`,
	)
	if err != nil {
		return fmt.Errorf("journal: init schema: %w", err)
	}
	_, err = j.db.Exec(`CREATE INDEX IF NOT EXISTS thread_events_session ON thread_events (session, seq);`)
	if err != nil {
		return fmt.Errorf("journal: init index: %w", err)
	}
	return nil
}

// Close closes the database if the journal opened it.
func (j *SQLiteJournal) Close() error {
	if !j.owns {
		return nil
	}
	return j.db.Close()
}

// Err returns the first write error, if any.
func (j *SQLiteJournal) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

func (j *SQLiteJournal) record(session string, kind Kind, thread int, nativeID uint64, detail string) {
	_, err := j.db.Exec(`
		INSERT INTO thread_events (session, kind, thread, native, detail, at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		session, string(kind), thread, int64(nativeID), detail, time.Now().UnixNano(),
	)
	if err != nil {
		j.mu.Lock()
		if j.err == nil {
			j.err = fmt.Errorf("journal: record %s: %w", kind, err)
		}
		j.mu.Unlock()
	}
}

func (j *SQLiteJournal) OnInit(session, backend string) {
	j.record(session, KindInit, -1, 0, backend)
}

func (j *SQLiteJournal) OnTerminate(session string, destroyed int) {
	j.record(session, KindTerminate, -1, 0, fmt.Sprintf("destroyed=%d", destroyed))
}

func (j *SQLiteJournal) OnThreadCreated(session string, id int, nativeID uint64) {
	j.record(session, KindCreated, id, nativeID, "")
}

func (j *SQLiteJournal) OnThreadExited(session string, id int) {
	j.record(session, KindExited, id, 0, "")
}

func (j *SQLiteJournal) OnThreadDestroyed(session string, id int) {
	j.record(session, KindDestroyed, id, 0, "")
}

// Events returns the events of session in recording order. An empty
// session returns every event.
func (j *SQLiteJournal) Events(ctx context.Context, session string) ([]Event, error) {
	query := `SELECT seq, session, kind, thread, native, detail, at FROM thread_events`
	var args []any
	if session != "" {
		query += ` WHERE session = ?`
		args = append(args, session)
	}
	query += ` ORDER BY seq`

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("journal: query events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			ev     Event
			kind   string
			native int64
			at     int64
		)
		if err := rows.Scan(&ev.Seq, &ev.Session, &kind, &ev.Thread, &native, &ev.Detail, &at); err != nil {
			return nil, fmt.Errorf("journal: scan event: %w", err)
		}
		ev.Kind = Kind(kind)
		ev.NativeID = uint64(native)
		ev.At = time.Unix(0, at)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Sessions returns the distinct sessions in order of first appearance.
func (j *SQLiteJournal) Sessions(ctx context.Context) ([]string, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT session FROM thread_events
		GROUP BY session
		ORDER BY MIN(seq)`)
	if err != nil {
		return nil, fmt.Errorf("journal: query sessions: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("journal: scan session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
