package urlcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NATSSink publishes dead-link events to a JetStream subject.
type NATSSink struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
}

// NewNATSSink connects to NATS and prepares a JetStream publisher for the
// given subject.
func NewNATSSink(natsURL, subject string) (*NATSSink, error) {
	if natsURL == "" || subject == "" {
		return nil, fmt.Errorf("nats url and subject are required")
	}

	conn, err := nats.Connect(natsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	slog.Info("NATS sink initialized for dead link events", "url", natsURL, "subject", subject)
	return &NATSSink{conn: conn, js: js, subject: subject}, nil
}

// PublishDeadLink publishes the event to the configured subject.
func (s *NATSSink) PublishDeadLink(ctx context.Context, event *DeadLinkEvent) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	event.Timestamp = time.Now()
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := s.js.Publish(ctx, s.subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	slog.Debug("Published dead link event", "url", event.URL, "run_id", event.RunID)
	return nil
}

// Close drains the NATS connection.
func (s *NATSSink) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	return nil
}
