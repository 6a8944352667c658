package urlcheck

import (
	"context"
	"time"
)

// DeadLinkEvent describes a URL that failed verification during a check run.
type DeadLinkEvent struct {
	RunID     string    `json:"run_id"`
	URL       string    `json:"url"`
	Status    int       `json:"status"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// EventSink receives dead-link events from check runs.
type EventSink interface {
	PublishDeadLink(ctx context.Context, event *DeadLinkEvent) error
	Close() error
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) PublishDeadLink(context.Context, *DeadLinkEvent) error { return nil }
func (NopSink) Close() error                                          { return nil }
