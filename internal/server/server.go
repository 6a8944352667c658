// Package server exposes the textkit operations over HTTP: title-casing,
// CSV upload, substring overlap, URL-from-path with live request context,
// and URL checking, plus health and metrics endpoints.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"git.home.luguber.info/inful/textkit/internal/cachestore"
	"git.home.luguber.info/inful/textkit/internal/config"
	tkerrors "git.home.luguber.info/inful/textkit/internal/errors"
	"git.home.luguber.info/inful/textkit/internal/titlecase"
	"git.home.luguber.info/inful/textkit/internal/urlcheck"
)

// Server wires the HTTP endpoints, the checker, and the background jobs.
type Server struct {
	cfg        *config.Config
	configPath string

	httpServer   *http.Server
	errorAdapter *tkerrors.HTTPErrorAdapter

	title   atomic.Pointer[titleTables]
	checker *urlcheck.Checker
	store   cachestore.Store
	sink    urlcheck.EventSink

	watcher  *ConfigWatcher
	recheck  *RecheckJob
	shutdown []func() error
}

// titleTables pairs the compiled caser with the exceptions it was built
// from, so per-request additions always merge over the same generation of
// configuration the caser uses.
type titleTables struct {
	caser      *titlecase.Caser
	exceptions *titlecase.Exceptions
}

// New constructs a server from the configuration. configPath enables config
// hot reload; pass "" to disable the watcher.
func New(cfg *config.Config, configPath string) (*Server, error) {
	s := &Server{
		cfg:          cfg,
		configPath:   configPath,
		errorAdapter: tkerrors.NewHTTPErrorAdapter(slog.Default()),
	}
	s.title.Store(&titleTables{caser: titlecase.New(&cfg.Title), exceptions: &cfg.Title})

	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	s.store = store
	if store != nil {
		s.shutdown = append(s.shutdown, store.Close)
	}

	sink, err := openSink(cfg)
	if err != nil {
		s.closeAll()
		return nil, err
	}
	s.sink = sink
	s.shutdown = append(s.shutdown, sink.Close)

	s.checker = urlcheck.NewChecker(checkerOptions(cfg), store, sink)

	mux := http.NewServeMux()
	s.routes(mux)
	s.httpServer = &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           s.withRequestLogging(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Start runs the HTTP server and background jobs until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	if s.configPath != "" {
		watcher, err := NewConfigWatcher(s.configPath, s.applyConfig)
		if err != nil {
			slog.Warn("Config watcher disabled", "error", err)
		} else {
			s.watcher = watcher
			watcher.Start(ctx)
		}
	}

	if interval := config.Duration(s.cfg.Server.RecheckInterval, 0); interval > 0 {
		job, err := NewRecheckJob(s.checker, interval)
		if err != nil {
			slog.Warn("Recheck job disabled", "error", err)
		} else {
			s.recheck = job
			job.Start(ctx)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.Shutdown()
	}
}

// Shutdown stops the server and background jobs gracefully.
func (s *Server) Shutdown() error {
	slog.Info("Shutting down HTTP server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.watcher != nil {
		s.watcher.Stop()
	}
	if s.recheck != nil {
		_ = s.recheck.Stop()
	}
	err := s.httpServer.Shutdown(ctx)
	s.closeAll()
	return err
}

func (s *Server) closeAll() {
	for i := len(s.shutdown) - 1; i >= 0; i-- {
		if err := s.shutdown[i](); err != nil {
			slog.Warn("Shutdown cleanup failed", "error", err)
		}
	}
	s.shutdown = nil
}

// applyConfig swaps in reloaded exception lists. Only the title tables are
// hot-swappable; checker and server settings need a restart.
func (s *Server) applyConfig(cfg *config.Config) {
	s.title.Store(&titleTables{caser: titlecase.New(&cfg.Title), exceptions: &cfg.Title})
	slog.Info("Reloaded title-case exception lists")
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/title", s.handleTitle)
	mux.HandleFunc("POST /api/csv", s.handleCSV)
	mux.HandleFunc("GET /api/overlap", s.handleOverlap)
	mux.HandleFunc("GET /api/urlfor", s.handleURLFor)
	mux.HandleFunc("POST /api/check", s.handleCheck)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", metricsHandler())
}

func (s *Server) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		httpRequestsTotal.Inc()
		slog.Debug("request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start))
	})
}

func openStore(cfg *config.Config) (cachestore.Store, error) {
	if cfg.Check.CachePath == "" {
		return cachestore.NewMemoryStore(), nil
	}
	store, err := cachestore.NewSQLiteStore(cfg.Check.CachePath)
	if err != nil {
		return nil, tkerrors.Wrap(err, tkerrors.CategoryConfig, tkerrors.SeverityFatal, "open result cache").WithContext("path", cfg.Check.CachePath)
	}
	return store, nil
}

func openSink(cfg *config.Config) (urlcheck.EventSink, error) {
	if cfg.Check.NATSURL == "" {
		return urlcheck.NopSink{}, nil
	}
	sink, err := urlcheck.NewNATSSink(cfg.Check.NATSURL, cfg.Check.Subject)
	if err != nil {
		return nil, tkerrors.Wrap(err, tkerrors.CategoryNetwork, tkerrors.SeverityFatal, "connect event sink")
	}
	return sink, nil
}

func checkerOptions(cfg *config.Config) urlcheck.Options {
	return urlcheck.Options{
		Timeout:         config.Duration(cfg.Check.RequestTimeout, 10*time.Second),
		FollowRedirects: cfg.Check.FollowRedirects,
		MaxRedirects:    cfg.Check.MaxRedirects,
		MaxConcurrent:   cfg.Check.MaxConcurrent,
		RateLimitDelay:  config.Duration(cfg.Check.RateLimitDelay, 0),
		UserAgent:       cfg.Check.UserAgent,
		CacheTTL:        config.Duration(cfg.Check.CacheTTL, 0),
	}
}
