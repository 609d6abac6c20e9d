package events

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is something that happened to a tracked repository
type DomainEvent interface {
	EventID() string
	EventType() string
	OccurredAt() time.Time
	AggregateID() string
	// Repository is the owner/name the event concerns
	Repository() string
}

// BaseEvent holds the properties shared by every repository event
type BaseEvent struct {
	eventID     string
	eventType   string
	occurredAt  time.Time
	aggregateID string
	repository  string
}

// NewBaseEvent stamps a new event for the repository named owner/name.
// aggregateID is the tracked repository's ID, or the name itself for
// repositories that are not tracked.
func NewBaseEvent(eventType, aggregateID, repository string) BaseEvent {
	return BaseEvent{
		eventID:     uuid.New().String(),
		eventType:   eventType,
		occurredAt:  time.Now().UTC(),
		aggregateID: aggregateID,
		repository:  repository,
	}
}

func (e BaseEvent) EventID() string       { return e.eventID }
func (e BaseEvent) EventType() string     { return e.eventType }
func (e BaseEvent) OccurredAt() time.Time { return e.occurredAt }
func (e BaseEvent) AggregateID() string   { return e.aggregateID }
func (e BaseEvent) Repository() string    { return e.repository }
