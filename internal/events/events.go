// Package events publishes identifier lifecycle events through a
// transactional outbox. Rows are written in the same transaction as the
// mutation they describe and relayed to Kafka by a background worker, so
// downstream consumers never see an event for a rolled-back change.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeChildRegistered       Type = "child_registered"
	TypeIdentifierRegenerated Type = "identifier_regenerated"
	TypeChildAssigned         Type = "child_assigned"
	TypeChildDeactivated      Type = "child_deactivated"
)

// Event is one outbox row. Payload holds the JSON body published to Kafka.
type Event struct {
	ID          uuid.UUID
	Type        Type
	AggregateID string
	Payload     json.RawMessage
	CreatedAt   time.Time
	PublishedAt *time.Time
}

// Recorder appends events to the outbox. The child service calls it inside
// reassignment transactions.
type Recorder interface {
	Record(ctx context.Context, eventType Type, aggregateID string, payload any) error
}

// Source is what the relay reads the outbox through.
type Source interface {
	FetchUnpublished(ctx context.Context, limit int) ([]Event, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error
}
