package urlcheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/textkit/internal/cachestore"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	})
	mux.HandleFunc("/private", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/redirect", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ok", http.StatusMovedPermanently)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestExists(t *testing.T) {
	srv := testServer(t)
	ctx := context.Background()

	require.True(t, Exists(ctx, srv.URL+"/ok"))
	require.False(t, Exists(ctx, srv.URL+"/missing"))
	require.False(t, Exists(ctx, srv.URL+"/gone"))
	// Below-400 statuses count as existing; redirects are not followed by
	// default, and 301 is below 400.
	require.True(t, Exists(ctx, srv.URL+"/redirect"))
	// Auth-gated URLs are alive for Check but fail the strict <400 test.
	require.False(t, Exists(ctx, srv.URL+"/private"))
	// Unreachable host.
	require.False(t, Exists(ctx, "http://127.0.0.1:1/nothing"))
}

func TestCheckClassification(t *testing.T) {
	srv := testServer(t)
	c := NewChecker(Options{}, nil, nil)
	ctx := context.Background()

	res := c.Check(ctx, srv.URL+"/ok")
	require.True(t, res.Alive)
	require.Equal(t, http.StatusOK, res.Status)

	res = c.Check(ctx, srv.URL+"/missing")
	require.False(t, res.Alive)
	require.Equal(t, http.StatusNotFound, res.Status)
	require.Contains(t, res.Error, "HTTP 404")

	// Gated URLs exist but require credentials.
	res = c.Check(ctx, srv.URL+"/private")
	require.True(t, res.Alive)
	require.Equal(t, http.StatusUnauthorized, res.Status)
}

func TestCheckUsesCache(t *testing.T) {
	var hits int
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	c := NewChecker(Options{CacheTTL: time.Hour}, cachestore.NewMemoryStore(), nil)
	ctx := context.Background()

	first := c.Check(ctx, srv.URL)
	require.True(t, first.Alive)
	require.False(t, first.Cached)

	second := c.Check(ctx, srv.URL)
	require.True(t, second.Alive)
	require.True(t, second.Cached)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, hits)
}

func TestCheckAll(t *testing.T) {
	srv := testServer(t)

	sink := &recordingSink{}
	c := NewChecker(Options{MaxConcurrent: 4}, cachestore.NewMemoryStore(), sink)

	urls := []string{srv.URL + "/ok", srv.URL + "/missing", srv.URL + "/ok", srv.URL + "/gone"}
	report, err := c.CheckAll(context.Background(), urls)
	require.NoError(t, err)
	require.NotEmpty(t, report.RunID)
	require.Len(t, report.Results, 4)
	require.Equal(t, 2, report.Dead)

	// Results keep input order.
	require.Equal(t, urls[1], report.Results[1].URL)
	require.False(t, report.Results[1].Alive)

	// One event per dead result.
	require.Len(t, sink.events(), 2)
	for _, ev := range sink.events() {
		require.Equal(t, report.RunID, ev.RunID)
	}
}

func TestCheckAllNoDelayBeforeFirstURL(t *testing.T) {
	srv := testServer(t)
	c := NewChecker(Options{RateLimitDelay: 2 * time.Second}, nil, nil)

	start := time.Now()
	report, err := c.CheckAll(context.Background(), []string{srv.URL + "/ok"})
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	require.Less(t, time.Since(start), time.Second, "single-URL run must not pay the rate-limit delay")
}

func TestCheckAllCanceledDuringDelay(t *testing.T) {
	srv := testServer(t)
	c := NewChecker(Options{RateLimitDelay: time.Hour}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := c.CheckAll(ctx, []string{srv.URL + "/ok", srv.URL + "/ok"})
	require.ErrorIs(t, err, context.Canceled)
	require.Less(t, time.Since(start), 10*time.Second, "cancellation must interrupt the rate-limit delay")
}

func TestCheckAllFailureTracking(t *testing.T) {
	srv := testServer(t)
	store := cachestore.NewMemoryStore()
	c := NewChecker(Options{}, store, nil)
	ctx := context.Background()

	c.Check(ctx, srv.URL+"/missing")
	c.Check(ctx, srv.URL+"/missing")

	entry, err := store.Get(ctx, srv.URL+"/missing")
	require.NoError(t, err)
	require.Equal(t, 2, entry.FailureCount)
	require.True(t, entry.ConsecutiveFail)
	require.False(t, entry.FirstFailedAt.IsZero())
}

func TestRecheck(t *testing.T) {
	srv := testServer(t)
	store := cachestore.NewMemoryStore()
	c := NewChecker(Options{CacheTTL: time.Hour}, store, nil)
	ctx := context.Background()

	// Seed a stale entry pointing at a now-healthy URL.
	require.NoError(t, store.Put(ctx, &cachestore.Entry{
		URL:         srv.URL + "/ok",
		Status:      http.StatusNotFound,
		Alive:       false,
		LastChecked: time.Now().Add(-2 * time.Hour),
	}))

	n, err := c.Recheck(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	entry, err := store.Get(ctx, srv.URL+"/ok")
	require.NoError(t, err)
	require.True(t, entry.Alive)
	require.Equal(t, http.StatusOK, entry.Status)
}

type recordingSink struct {
	mu  sync.Mutex
	evs []*DeadLinkEvent
}

func (s *recordingSink) PublishDeadLink(_ context.Context, ev *DeadLinkEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *ev
	s.evs = append(s.evs, &cp)
	return nil
}

func (s *recordingSink) Close() error { return nil }

func (s *recordingSink) events() []*DeadLinkEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*DeadLinkEvent(nil), s.evs...)
}
