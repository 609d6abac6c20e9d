package repo

import (
	"repo-popularity/internal/domain/events"
)

// Event types
const (
	EventTypeRepositoryAdded   = "repository.added"
	EventTypeRepositoryRenamed = "repository.renamed"
	EventTypeRepositoryRemoved = "repository.removed"
)

// RepositoryAddedEvent is raised when a new repository is tracked
type RepositoryAddedEvent struct {
	events.BaseEvent
	RepositoryID string
	Name         string
}

// NewRepositoryAddedEvent creates a new RepositoryAddedEvent
func NewRepositoryAddedEvent(repoID, name string) *RepositoryAddedEvent {
	return &RepositoryAddedEvent{
		BaseEvent:    events.NewBaseEvent(EventTypeRepositoryAdded, repoID, name),
		RepositoryID: repoID,
		Name:         name,
	}
}

// RepositoryRenamedEvent is raised when a tracked repository changes its name
type RepositoryRenamedEvent struct {
	events.BaseEvent
	RepositoryID string
	OldName      string
	NewName      string
}

// NewRepositoryRenamedEvent creates a new RepositoryRenamedEvent
func NewRepositoryRenamedEvent(repoID, oldName, newName string) *RepositoryRenamedEvent {
	return &RepositoryRenamedEvent{
		BaseEvent:    events.NewBaseEvent(EventTypeRepositoryRenamed, repoID, newName),
		RepositoryID: repoID,
		OldName:      oldName,
		NewName:      newName,
	}
}

// RepositoryRemovedEvent is raised when a repository stops being tracked
type RepositoryRemovedEvent struct {
	events.BaseEvent
	RepositoryID string
	Name         string
}

// NewRepositoryRemovedEvent creates a new RepositoryRemovedEvent
func NewRepositoryRemovedEvent(repoID, name string) *RepositoryRemovedEvent {
	return &RepositoryRemovedEvent{
		BaseEvent:    events.NewBaseEvent(EventTypeRepositoryRemoved, repoID, name),
		RepositoryID: repoID,
		Name:         name,
	}
}
