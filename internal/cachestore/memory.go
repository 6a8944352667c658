package cachestore

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for one-shot CLI runs and tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*Entry)}
}

// Get returns the entry for url, or ErrCacheMiss.
func (m *MemoryStore) Get(_ context.Context, url string) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[url]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, ErrCacheMiss
}

// Put inserts or replaces the entry for entry.URL.
func (m *MemoryStore) Put(_ context.Context, entry *Entry) error {
	if entry == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *entry
	m.entries[entry.URL] = &cp
	return nil
}

// Stale returns entries last checked before cutoff, oldest first.
func (m *MemoryStore) Stale(_ context.Context, cutoff time.Time, limit int) ([]*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Entry
	for _, e := range m.entries {
		if e.LastChecked.Before(cutoff) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastChecked.Before(out[j].LastChecked) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Sweep removes entries last checked before cutoff.
func (m *MemoryStore) Sweep(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for url, e := range m.entries {
		if e.LastChecked.Before(cutoff) {
			delete(m.entries, url)
			n++
		}
	}
	return n, nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }
