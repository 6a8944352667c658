package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/textkit/internal/urlcheck"
)

// recheckBatch bounds how many stale entries each periodic run re-verifies.
const recheckBatch = 200

// RecheckJob periodically re-verifies cached URLs whose results have aged
// past the cache TTL.
type RecheckJob struct {
	scheduler gocron.Scheduler
	checker   *urlcheck.Checker
}

// NewRecheckJob builds the periodic job with the given interval.
func NewRecheckJob(checker *urlcheck.Checker, interval time.Duration) (*RecheckJob, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	job := &RecheckJob{scheduler: s, checker: checker}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(job.run),
		gocron.WithName("url-recheck"),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to schedule recheck job: %w", err)
	}
	return job, nil
}

// Start begins the scheduler.
func (j *RecheckJob) Start(_ context.Context) {
	slog.Info("Starting URL recheck scheduler")
	j.scheduler.Start()
}

// Stop gracefully shuts down the scheduler.
func (j *RecheckJob) Stop() error {
	slog.Info("Stopping URL recheck scheduler")
	return j.scheduler.Shutdown()
}

func (j *RecheckJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	n, err := j.checker.Recheck(ctx, recheckBatch)
	if err != nil {
		slog.Warn("URL recheck failed", "error", err)
		return
	}
	if n > 0 {
		slog.Info("Rechecked stale URLs", "count", n)
	}
}
