// Package messaging publishes domain events to the message bus.
package messaging

import (
	"context"
	"time"
)

const (
	SubjectObjectDeleted  = "storage.object.deleted"
	SubjectObjectUploaded = "storage.object.uploaded"
	SubjectAuditCompleted = "storage.audit.completed"
)

// Event is the JSON envelope published on every subject.
type Event struct {
	ID         string    `json:"id"`
	Subject    string    `json:"subject"`
	OccurredAt time.Time `json:"occurredAt"`
	ActorID    string    `json:"actorId,omitempty"`
	Payload    any       `json:"payload"`
}

// Publisher delivers events. Publishing is best effort; callers log failures
// and continue.
type Publisher interface {
	Publish(ctx context.Context, subject string, actorID string, payload any) error
	Close()
}

// NoopPublisher discards events. It is used when NATS_URL is empty.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, string, any) error { return nil }
func (NoopPublisher) Close()                                             {}
