// Package store provides the SQLite request journal for redditmini.
//
// The journal records upstream exchanges for diagnostics (rmctl journal).
// It is write-mostly and never consulted by the loaders: nothing here is a
// cache.
package store

import (
	"database/sql"
	"fmt"
	"net/url"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/DanielleFiene/redditmini/internal/logging"
	"github.com/DanielleFiene/redditmini/internal/reddit"
)

// Store handles SQLite persistence. NOT an interface - concrete type.
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Store struct {
	db        *sql.DB
	mu        sync.RWMutex // Protects all database operations
	sessionID string
}

// Entry is one journaled exchange.
type Entry struct {
	ID        int64
	At        time.Time
	SessionID string
	Host      string
	Path      string
	URL       string
	Status    int
	Bytes     int64
	Dur       time.Duration
	Err       string
}

// Failed reports whether the exchange produced an error.
func (e Entry) Failed() bool { return e.Err != "" }

// Open creates a new Store with the given database path.
// Creates tables if they don't exist.
// Uses WAL mode for better concurrent read performance (file-based DBs only).
func Open(dbPath string) (*Store, error) {
	connStr := dbPath
	if dbPath == ":memory:" {
		// shared cache so every pooled connection sees the same database
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}

	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return s, nil
}

// createTables creates the required tables and indexes if they don't exist.
func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS requests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		at DATETIME NOT NULL,
		session_id TEXT NOT NULL DEFAULT '',
		host TEXT NOT NULL,
		path TEXT NOT NULL,
		url TEXT NOT NULL,
		status INTEGER NOT NULL DEFAULT 0,
		bytes INTEGER NOT NULL DEFAULT 0,
		dur_ms REAL NOT NULL DEFAULT 0,
		err TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_requests_at ON requests(at DESC);
	CREATE INDEX IF NOT EXISTS idx_requests_host ON requests(host);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// SetSession stamps subsequent entries with sessionID.
func (s *Store) SetSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = sessionID
}

// Close closes the database connection.
// Thread-safe: acquires write lock to prevent closing during in-flight operations.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Record appends one entry and returns its id. Host and Path are derived
// from URL when empty.
// Thread-safe: acquires write lock.
func (s *Store) Record(e Entry) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.Host == "" || e.Path == "" {
		if u, err := url.Parse(e.URL); err == nil {
			if e.Host == "" {
				e.Host = u.Host
			}
			if e.Path == "" {
				e.Path = u.Path
			}
		}
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}
	if e.SessionID == "" {
		e.SessionID = s.sessionID
	}

	result, err := s.db.Exec(`
		INSERT INTO requests (at, session_id, host, path, url, status, bytes, dur_ms, err)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.At.UTC(),
		e.SessionID,
		e.Host,
		e.Path,
		e.URL,
		e.Status,
		e.Bytes,
		float64(e.Dur)/float64(time.Millisecond),
		e.Err,
	)
	if err != nil {
		return 0, fmt.Errorf("insert request: %w", err)
	}
	return result.LastInsertId()
}

// RecordExchange journals a finished upstream request. It satisfies
// reddit.Recorder; write failures are logged, never returned.
func (s *Store) RecordExchange(x reddit.Exchange) {
	e := Entry{
		At:     x.Started,
		URL:    x.URL,
		Status: x.Status,
		Bytes:  x.Bytes,
		Dur:    x.Duration,
	}
	if x.Err != nil {
		e.Err = x.Err.Error()
	}
	if _, err := s.Record(e); err != nil {
		logging.Warn("journal write failed", "url", x.URL, "err", err)
	}
}

// Recent returns up to limit entries, newest first.
// Thread-safe: acquires read lock.
func (s *Store) Recent(limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, at, session_id, host, path, url, status, bytes, dur_ms, err
		FROM requests
		ORDER BY at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var durMs float64
		err := rows.Scan(
			&e.ID,
			&e.At,
			&e.SessionID,
			&e.Host,
			&e.Path,
			&e.URL,
			&e.Status,
			&e.Bytes,
			&durMs,
			&e.Err,
		)
		if err != nil {
			return nil, err
		}
		e.Dur = time.Duration(durMs * float64(time.Millisecond))
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// HostStats aggregates the exchanges of one host.
type HostStats struct {
	Host     string
	Requests int
	Failures int
	AvgMs    float64
	MaxMs    float64
}

// Stats aggregates entries recorded at or after since, busiest host first.
// Thread-safe: acquires read lock.
func (s *Store) Stats(since time.Time) ([]HostStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT host,
			COUNT(*),
			SUM(CASE WHEN err != '' THEN 1 ELSE 0 END),
			AVG(dur_ms),
			MAX(dur_ms)
		FROM requests
		WHERE at >= ?
		GROUP BY host
		ORDER BY COUNT(*) DESC, host
	`, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []HostStats
	for rows.Next() {
		var hs HostStats
		if err := rows.Scan(&hs.Host, &hs.Requests, &hs.Failures, &hs.AvgMs, &hs.MaxMs); err != nil {
			return nil, err
		}
		stats = append(stats, hs)
	}
	return stats, rows.Err()
}

// Prune deletes entries recorded before cutoff and returns how many went.
// Thread-safe: acquires write lock.
func (s *Store) Prune(before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec("DELETE FROM requests WHERE at < ?", before.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Count returns the number of journaled exchanges.
// Thread-safe: acquires read lock.
func (s *Store) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM requests").Scan(&n)
	return n, err
}
