// Package urlcheck verifies that URLs respond with a non-error HTTP status.
// It offers a one-shot Exists lookup and a batch Checker with result caching,
// bounded concurrency, and dead-link event publication.
package urlcheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/textkit/internal/cachestore"
)

const defaultUserAgent = "TextKit-URLCheck/1.0"

// Options configures a Checker. Zero values select sensible defaults.
type Options struct {
	Timeout         time.Duration
	FollowRedirects bool
	MaxRedirects    int
	MaxConcurrent   int
	RateLimitDelay  time.Duration
	UserAgent       string
	CacheTTL        time.Duration
}

// Result is the outcome of checking a single URL.
type Result struct {
	URL    string `json:"url"`
	Status int    `json:"status"`
	Alive  bool   `json:"alive"`
	Error  string `json:"error,omitempty"`
	Cached bool   `json:"cached"`
}

// RunReport summarizes a batch check run.
type RunReport struct {
	RunID    string    `json:"run_id"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	Results  []Result  `json:"results"`
	Dead     int       `json:"dead"`
}

// Checker verifies URL liveness with caching and bounded concurrency.
type Checker struct {
	opts       Options
	httpClient *http.Client
	cache      cachestore.Store
	sink       EventSink
	mu         sync.Mutex
	running    bool
	linkSem    chan struct{}
}

// NewChecker creates a checker. cache may be nil to disable caching; sink may
// be nil to discard dead-link events.
func NewChecker(opts Options, cache cachestore.Store, sink EventSink) *Checker {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 10
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if sink == nil {
		sink = NopSink{}
	}

	// Clone the default transport so HTTP_PROXY and friends are respected.
	transport := http.DefaultTransport.(*http.Transport).Clone()

	httpClient := &http.Client{
		Timeout:   opts.Timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if !opts.FollowRedirects {
				return http.ErrUseLastResponse
			}
			if opts.MaxRedirects > 0 && len(via) >= opts.MaxRedirects {
				return fmt.Errorf("stopped after %d redirects", opts.MaxRedirects)
			}
			return nil
		},
	}

	return &Checker{
		opts:       opts,
		httpClient: httpClient,
		cache:      cache,
		sink:       sink,
		linkSem:    make(chan struct{}, opts.MaxConcurrent),
	}
}

// Exists reports whether url answers a HEAD request with a status below 400.
// Transport failures count as non-existence.
func (c *Checker) Exists(ctx context.Context, url string) bool {
	status, err := c.head(ctx, url)
	return err == nil && status < 400
}

// Check verifies a single URL, consulting and updating the cache.
func (c *Checker) Check(ctx context.Context, url string) Result {
	if cached := c.cachedResult(ctx, url); cached != nil {
		return *cached
	}

	status, err := c.head(ctx, url)
	res := Result{URL: url, Status: status, Alive: err == nil}
	if err != nil {
		res.Error = err.Error()
	}
	c.storeResult(ctx, res)
	return res
}

// CheckAll verifies the given URLs with bounded concurrency and returns a
// run report. Results keep input order; duplicates are checked once per
// cache state, not deduplicated in the report.
func (c *Checker) CheckAll(ctx context.Context, urls []string) (*RunReport, error) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil, errors.New("check run already in progress")
	}
	c.running = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	report := &RunReport{
		RunID:   uuid.NewString(),
		Started: time.Now(),
		Results: make([]Result, len(urls)),
	}
	slog.Info("Starting URL check run", "run_id", report.RunID, "url_count", len(urls))

	var wg sync.WaitGroup
	for i, u := range urls {
		// Rate limiting applies between requests, not before the first,
		// and must not outlive a canceled context.
		if i > 0 && c.opts.RateLimitDelay > 0 {
			timer := time.NewTimer(c.opts.RateLimitDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				wg.Wait()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		case c.linkSem <- struct{}{}:
		}
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			defer func() { <-c.linkSem }()
			res := c.Check(ctx, u)
			report.Results[i] = res
			if !res.Alive {
				c.publishDead(ctx, report.RunID, res)
			}
		}(i, u)
	}
	wg.Wait()

	for _, r := range report.Results {
		if !r.Alive {
			report.Dead++
		}
	}
	report.Finished = time.Now()
	slog.Info("URL check run completed",
		"run_id", report.RunID,
		"checked", len(report.Results),
		"dead", report.Dead)
	return report, nil
}

// Recheck re-verifies cached entries whose last check predates the TTL.
// Used by the periodic recheck job in serve mode.
func (c *Checker) Recheck(ctx context.Context, limit int) (int, error) {
	if c.cache == nil || c.opts.CacheTTL <= 0 {
		return 0, nil
	}
	stale, err := c.cache.Stale(ctx, time.Now().Add(-c.opts.CacheTTL), limit)
	if err != nil {
		return 0, fmt.Errorf("list stale entries: %w", err)
	}
	for _, entry := range stale {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}
		status, err := c.head(ctx, entry.URL)
		res := Result{URL: entry.URL, Status: status, Alive: err == nil}
		if err != nil {
			res.Error = err.Error()
		}
		c.storeResult(ctx, res)
	}
	return len(stale), nil
}

// cachedResult returns a fresh cached result, or nil.
func (c *Checker) cachedResult(ctx context.Context, url string) *Result {
	if c.cache == nil {
		return nil
	}
	entry, err := c.cache.Get(ctx, url)
	if err != nil {
		if !errors.Is(err, cachestore.ErrCacheMiss) {
			slog.Debug("Cache lookup error", "url", url, "error", err)
		}
		return nil
	}
	if !cachestore.Fresh(entry, c.opts.CacheTTL) {
		return nil
	}
	return &Result{URL: url, Status: entry.Status, Alive: entry.Alive, Error: entry.Error, Cached: true}
}

// storeResult writes a check outcome to the cache, carrying failure history
// forward.
func (c *Checker) storeResult(ctx context.Context, res Result) {
	if c.cache == nil {
		return
	}
	entry := &cachestore.Entry{
		URL:         res.URL,
		Status:      res.Status,
		Alive:       res.Alive,
		Error:       res.Error,
		LastChecked: time.Now(),
	}
	if !res.Alive {
		prev, err := c.cache.Get(ctx, res.URL)
		if err == nil && prev != nil {
			entry.FailureCount = prev.FailureCount + 1
			entry.FirstFailedAt = prev.FirstFailedAt
		} else {
			entry.FailureCount = 1
		}
		if entry.FirstFailedAt.IsZero() {
			entry.FirstFailedAt = time.Now()
		}
		entry.ConsecutiveFail = true
	}
	if err := c.cache.Put(ctx, entry); err != nil {
		slog.Warn("Failed to update cache", "url", res.URL, "error", err)
	}
}

func (c *Checker) publishDead(ctx context.Context, runID string, res Result) {
	event := &DeadLinkEvent{
		RunID:  runID,
		URL:    res.URL,
		Status: res.Status,
		Error:  res.Error,
	}
	if err := c.sink.PublishDeadLink(ctx, event); err != nil {
		slog.Error("Failed to publish dead link event", "url", res.URL, "error", err)
	} else {
		slog.Warn("Dead link detected", "url", res.URL, "status", res.Status, "error", res.Error)
	}
}

// head issues the HEAD request and classifies the status. 401/403/405 are
// treated as alive: the URL exists but is gated.
func (c *Checker) head(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore close errors after reading
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if isAuthStatus(resp.StatusCode) {
		return resp.StatusCode, nil
	}
	if resp.StatusCode >= 400 {
		return resp.StatusCode, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	return resp.StatusCode, nil
}

// isAuthStatus returns true for status codes that indicate authentication or
// authorization gating rather than a broken URL.
func isAuthStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusMethodNotAllowed:
		return true
	}
	return false
}

// Exists is the package-level convenience check: HEAD the URL with default
// options and report whether the status is below 400.
func Exists(ctx context.Context, url string) bool {
	return NewChecker(Options{}, nil, nil).Exists(ctx, url)
}
