package repo

import (
	"context"
)

// RepositoryRepo defines the interface for repository persistence
// This is defined in the domain layer, but implemented in infrastructure
type RepositoryRepo interface {
	// Save persists a repository (create or update).
	// Returns ErrRepositoryAlreadyExists when the name collides with another record.
	Save(ctx context.Context, repo *Repository) error

	// FindByID retrieves a repository by its ID
	FindByID(ctx context.Context, id RepositoryID) (*Repository, error)

	// FindByName retrieves a repository by its normalized name
	FindByName(ctx context.Context, name Identifier) (*Repository, error)

	// FindAll retrieves repositories ordered by creation time with pagination
	FindAll(ctx context.Context, limit, offset int32) ([]*Repository, error)

	// Count returns the total number of repositories
	Count(ctx context.Context) (int64, error)

	// Delete removes a repository from persistence
	Delete(ctx context.Context, id RepositoryID) error
}
