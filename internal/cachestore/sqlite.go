package cachestore

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore creates a new SQLite-backed result store.
// Use ":memory:" for an in-memory database, or a file path for persistence.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS url_results (
		url TEXT PRIMARY KEY,
		status INTEGER NOT NULL,
		alive INTEGER NOT NULL,
		error TEXT,
		failure_count INTEGER NOT NULL DEFAULT 0,
		consecutive_fail INTEGER NOT NULL DEFAULT 0,
		first_failed_at INTEGER,
		last_checked INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_last_checked ON url_results(last_checked);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Get returns the entry for url, or ErrCacheMiss.
func (s *SQLiteStore) Get(ctx context.Context, url string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT url, status, alive, error, failure_count, consecutive_fail, first_failed_at, last_checked FROM url_results WHERE url = ?",
		url,
	)
	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("query result: %w", err)
	}
	return entry, nil
}

// Put inserts or replaces the entry for entry.URL.
func (s *SQLiteStore) Put(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstFailed any
	if !entry.FirstFailedAt.IsZero() {
		firstFailed = entry.FirstFailedAt.Unix()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO url_results (url, status, alive, error, failure_count, consecutive_fail, first_failed_at, last_checked)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET
		   status=excluded.status, alive=excluded.alive, error=excluded.error,
		   failure_count=excluded.failure_count, consecutive_fail=excluded.consecutive_fail,
		   first_failed_at=excluded.first_failed_at, last_checked=excluded.last_checked`,
		entry.URL, entry.Status, boolToInt(entry.Alive), entry.Error,
		entry.FailureCount, boolToInt(entry.ConsecutiveFail), firstFailed, entry.LastChecked.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert result: %w", err)
	}
	return nil
}

// Stale returns entries last checked before cutoff, oldest first.
func (s *SQLiteStore) Stale(ctx context.Context, cutoff time.Time, limit int) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT url, status, alive, error, failure_count, consecutive_fail, first_failed_at, last_checked FROM url_results WHERE last_checked < ? ORDER BY last_checked"
	args := []any{cutoff.Unix()}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query stale results: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Sweep removes entries last checked before cutoff.
func (s *SQLiteStore) Sweep(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM url_results WHERE last_checked < ?", cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("sweep results: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var (
		entry       Entry
		alive       int
		consecutive int
		firstFailed sql.NullInt64
		lastChecked int64
		errText     sql.NullString
	)
	err := row.Scan(&entry.URL, &entry.Status, &alive, &errText,
		&entry.FailureCount, &consecutive, &firstFailed, &lastChecked)
	if err != nil {
		return nil, err
	}
	entry.Alive = alive != 0
	entry.ConsecutiveFail = consecutive != 0
	entry.Error = errText.String
	if firstFailed.Valid {
		entry.FirstFailedAt = time.Unix(firstFailed.Int64, 0)
	}
	entry.LastChecked = time.Unix(lastChecked, 0)
	return &entry, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
