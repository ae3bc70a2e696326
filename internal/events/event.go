// Package events publishes a record of every committed change to the
// student/mentor relationship so other services can follow along.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	TypeAssign        = "assign"
	TypeCreateStudent = "create_student"
	TypeCreateMentor  = "create_mentor"
	TypeReset         = "reset"
)

// Event describes one committed operation.
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	Role       string      `json:"role,omitempty"`
	Name       string      `json:"name,omitempty"`
	Assignee   interface{} `json:"assignee,omitempty"`
	Message    string      `json:"message,omitempty"`
	OccurredAt time.Time   `json:"occurredAt"`
}

// New returns an Event of the provided type with a fresh ID and timestamp.
func New(eventType string) *Event {
	return &Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}
