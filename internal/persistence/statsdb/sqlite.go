// Package statsdb records capture statistics in a local sqlite
// database through a buffered single-writer goroutine, keeping the
// allocation path free of disk I/O.
package statsdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"soulforge.gg/internal/sim/actors"
	"soulforge.gg/internal/sim/trap"
)

type Store struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqCapture reqKind = iota + 1
	reqFailure
	reqSync
)

type req struct {
	kind reqKind

	capture captureRow
	failure failureRow
	done    chan struct{}
}

type captureRow struct {
	At        string
	Caster    string
	Victim    string
	Soul      string
	ElapsedUS int64
}

type failureRow struct {
	At     string
	Caster string
	Reason string
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{
		db: db,
		ch: make(chan req, 4096),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL suits the append-only workload; NORMAL is enough durability
	// for a statistics side channel.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS captures (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			at TEXT NOT NULL,
			caster TEXT NOT NULL,
			victim TEXT NOT NULL,
			soul TEXT NOT NULL,
			elapsed_us INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_captures_caster ON captures(caster);`,
		`CREATE TABLE IF NOT EXISTS failures (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			at TEXT NOT NULL,
			caster TEXT NOT NULL,
			reason TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_failures_reason ON failures(reason);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// RecordCapture implements trap.Recorder.
func (s *Store) RecordCapture(ev trap.CaptureEvent) {
	if s == nil || s.closed.Load() {
		return
	}
	r := captureRow{
		At:        ev.At.UTC().Format(time.RFC3339Nano),
		Caster:    string(ev.Caster),
		Victim:    string(ev.Victim),
		Soul:      ev.Soul.String(),
		ElapsedUS: ev.Elapsed.Microseconds(),
	}
	select {
	case s.ch <- req{kind: reqCapture, capture: r}:
	default:
		// Drop if the writer falls behind; the capture log remains the
		// source of truth.
	}
}

// RecordFailure implements trap.Recorder.
func (s *Store) RecordFailure(caster actors.ID, reason string) {
	if s == nil || s.closed.Load() {
		return
	}
	r := failureRow{
		At:     time.Now().UTC().Format(time.RFC3339Nano),
		Caster: string(caster),
		Reason: reason,
	}
	select {
	case s.ch <- req{kind: reqFailure, failure: r}:
	default:
	}
}

func (s *Store) loop() {
	for r := range s.ch {
		switch r.kind {
		case reqCapture:
			_, _ = s.db.Exec(
				`INSERT INTO captures (at, caster, victim, soul, elapsed_us) VALUES (?, ?, ?, ?, ?)`,
				r.capture.At, r.capture.Caster, r.capture.Victim, r.capture.Soul, r.capture.ElapsedUS,
			)
		case reqFailure:
			_, _ = s.db.Exec(
				`INSERT INTO failures (at, caster, reason) VALUES (?, ?, ?)`,
				r.failure.At, r.failure.Caster, r.failure.Reason,
			)
		case reqSync:
			close(r.done)
		}
	}
}

// Totals reports row counts for the metrics endpoint.
func (s *Store) Totals(ctx context.Context) (captures, failures int64, err error) {
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM captures`).Scan(&captures); err != nil {
		return 0, 0, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM failures`).Scan(&failures); err != nil {
		return 0, 0, err
	}
	return captures, failures, nil
}

// Flush blocks until every record queued so far is written.
func (s *Store) Flush() {
	if s == nil || s.closed.Load() {
		return
	}
	done := make(chan struct{})
	s.ch <- req{kind: reqSync, done: done}
	<-done
}
