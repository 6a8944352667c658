// Package cachestore persists URL check results so repeated verification
// runs can skip recently checked URLs and track failure history.
package cachestore

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned when no entry exists for a URL.
var ErrCacheMiss = errors.New("cache miss")

// Entry is a cached URL check result.
type Entry struct {
	URL             string    `json:"url"`
	Status          int       `json:"status"`
	Alive           bool      `json:"alive"`
	Error           string    `json:"error,omitempty"`
	FailureCount    int       `json:"failure_count"`
	ConsecutiveFail bool      `json:"consecutive_fail"`
	FirstFailedAt   time.Time `json:"first_failed_at,omitempty"`
	LastChecked     time.Time `json:"last_checked"`
}

// Store is the persistence contract for check results.
type Store interface {
	// Get returns the entry for url, or ErrCacheMiss.
	Get(ctx context.Context, url string) (*Entry, error)
	// Put inserts or replaces the entry for entry.URL.
	Put(ctx context.Context, entry *Entry) error
	// Stale returns entries whose last check predates the cutoff, oldest
	// first, at most limit (0 means no limit).
	Stale(ctx context.Context, cutoff time.Time, limit int) ([]*Entry, error)
	// Sweep removes entries whose last check predates the cutoff and
	// returns the number removed.
	Sweep(ctx context.Context, cutoff time.Time) (int, error)
	Close() error
}

// Fresh reports whether the entry is recent enough to reuse under the given
// TTL. A zero TTL disables reuse.
func Fresh(entry *Entry, ttl time.Duration) bool {
	if entry == nil || ttl <= 0 {
		return false
	}
	return time.Since(entry.LastChecked) < ttl
}
