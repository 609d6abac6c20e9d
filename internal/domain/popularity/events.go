package popularity

import (
	"repo-popularity/internal/domain/events"
)

const EventTypePopularityChecked = "repository.popularity_checked"

// PopularityCheckedEvent is raised after every classification attempt
type PopularityCheckedEvent struct {
	events.BaseEvent
	Name   string
	Status string
	Result string
}

// NewPopularityCheckedEvent creates a new PopularityCheckedEvent
func NewPopularityCheckedEvent(name string, outcome Outcome) *PopularityCheckedEvent {
	result, _ := outcome.Result()
	return &PopularityCheckedEvent{
		BaseEvent: events.NewBaseEvent(EventTypePopularityChecked, name, name),
		Name:      name,
		Status:    outcome.Status().String(),
		Result:    result.String(),
	}
}
