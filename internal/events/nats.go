package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
)

// DefaultSubject is the subject prefix events are published under. The event
// type is appended, e.g. "mentorship.assignments.assign".
const DefaultSubject = "mentorship.assignments"

// NATSPublisher publishes events as JSON to a NATS server.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

var _ Publisher = (*NATSPublisher)(nil)

// NewNATSPublisher connects to the NATS server at url.
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	if url == "" {
		return nil, errors.New("missing nats server URL")
	}
	if subject == "" {
		subject = DefaultSubject
	}

	conn, err := nats.Connect(url, nats.Name("mentorship"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("nats.Connect error: %w", err)
	}

	return &NATSPublisher{conn: conn, subject: subject}, nil
}

// Subject returns the subject event is published under.
func (p *NATSPublisher) Subject(event *Event) string {
	return p.subject + "." + event.Type
}

// Publish implements Publisher.
func (p *NATSPublisher) Publish(ctx context.Context, event *Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("json.Marshal error: %w", err)
	}

	if err := p.conn.Publish(p.Subject(event), data); err != nil {
		return fmt.Errorf("conn.Publish error: %w", err)
	}

	return nil
}

// Close flushes pending events and closes the connection.
func (p *NATSPublisher) Close() error {
	if err := p.conn.Drain(); err != nil {
		return fmt.Errorf("conn.Drain error: %w", err)
	}
	return nil
}
