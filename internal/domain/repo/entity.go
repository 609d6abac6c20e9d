package repo

import (
	"fmt"
	"time"
)

// Repository is a domain entity representing a tracked GitHub repository
type Repository struct {
	id        RepositoryID
	name      Identifier
	createdAt time.Time
}

// NewRepository creates a new Repository entity from a raw name or GitHub URL
func NewRepository(name string) (*Repository, error) {
	identifier, err := NewIdentifier(name)
	if err != nil {
		return nil, ErrInvalidRepositoryData("name", err)
	}

	return &Repository{
		id:        NewRepositoryID(),
		name:      identifier,
		createdAt: time.Now().UTC(),
	}, nil
}

// Reconstitute recreates a Repository entity from persistence.
// Stored names are already normalized and are not normalized again.
func Reconstitute(id, name string, createdAt time.Time) (*Repository, error) {
	repoID, err := ParseRepositoryID(id)
	if err != nil {
		return nil, fmt.Errorf("invalid repository ID: %w", err)
	}

	return &Repository{
		id:        repoID,
		name:      Identifier{value: name},
		createdAt: createdAt,
	}, nil
}

// Rename replaces the repository name, normalizing the new value
func (r *Repository) Rename(name string) error {
	identifier, err := NewIdentifier(name)
	if err != nil {
		return ErrInvalidRepositoryData("name", err)
	}
	r.name = identifier
	return nil
}

// Getters

func (r *Repository) ID() RepositoryID {
	return r.id
}

func (r *Repository) Name() Identifier {
	return r.name
}

func (r *Repository) GitHubURL() string {
	return r.name.GitHubURL()
}

func (r *Repository) CreatedAt() time.Time {
	return r.createdAt
}

// String returns string representation (for debugging)
func (r *Repository) String() string {
	return fmt.Sprintf("Repository{id: %s, name: %s}", r.id.String(), r.name.String())
}
