package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"repo-popularity/internal/database"
	"repo-popularity/internal/domain/repo"
)

// uniqueViolation is the postgres SQLSTATE for unique constraint failures
const uniqueViolation = "23505"

const (
	upsertRepositoryQuery = `
		INSERT INTO repositories (id, name, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`

	selectRepositoryByIDQuery = `
		SELECT id, name, created_at FROM repositories WHERE id = $1`

	selectRepositoryByNameQuery = `
		SELECT id, name, created_at FROM repositories WHERE name = $1`

	selectRepositoriesQuery = `
		SELECT id, name, created_at FROM repositories
		ORDER BY created_at, id
		LIMIT $1 OFFSET $2`

	countRepositoriesQuery = `SELECT COUNT(*) FROM repositories`

	deleteRepositoryQuery = `DELETE FROM repositories WHERE id = $1`
)

// RepositoryRepoImpl implements the domain repo.RepositoryRepo interface
type RepositoryRepoImpl struct {
	db *sql.DB
}

// NewRepositoryRepository creates a new repository repository implementation
func NewRepositoryRepository(db *database.DB) repo.RepositoryRepo {
	return &RepositoryRepoImpl{
		db: db.GetConnection(),
	}
}

// Save persists a repository (create or update via upsert)
func (r *RepositoryRepoImpl) Save(ctx context.Context, repository *repo.Repository) error {
	_, err := r.db.ExecContext(ctx, upsertRepositoryQuery,
		repository.ID().UUID(),
		repository.Name().String(),
		repository.CreatedAt(),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return repo.ErrRepositoryAlreadyExists
		}
		return fmt.Errorf("failed to upsert repository: %w", err)
	}

	return nil
}

// FindByID retrieves a repository by its ID
func (r *RepositoryRepoImpl) FindByID(ctx context.Context, id repo.RepositoryID) (*repo.Repository, error) {
	row := r.db.QueryRowContext(ctx, selectRepositoryByIDQuery, id.UUID())
	return r.scanOne(row)
}

// FindByName retrieves a repository by its normalized name
func (r *RepositoryRepoImpl) FindByName(ctx context.Context, name repo.Identifier) (*repo.Repository, error) {
	row := r.db.QueryRowContext(ctx, selectRepositoryByNameQuery, name.String())
	return r.scanOne(row)
}

// FindAll retrieves repositories ordered by creation time with pagination
func (r *RepositoryRepoImpl) FindAll(ctx context.Context, limit, offset int32) ([]*repo.Repository, error) {
	rows, err := r.db.QueryContext(ctx, selectRepositoriesQuery, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch repositories: %w", err)
	}
	defer rows.Close()

	var repositories []*repo.Repository
	for rows.Next() {
		domainRepo, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to convert repository: %w", err)
		}
		repositories = append(repositories, domainRepo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate repositories: %w", err)
	}

	return repositories, nil
}

// Count returns the total number of repositories
func (r *RepositoryRepoImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, countRepositoriesQuery).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count repositories: %w", err)
	}

	return count, nil
}

// Delete removes a repository from persistence
func (r *RepositoryRepoImpl) Delete(ctx context.Context, id repo.RepositoryID) error {
	result, err := r.db.ExecContext(ctx, deleteRepositoryQuery, id.UUID())
	if err != nil {
		return fmt.Errorf("failed to delete repository: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete repository: %w", err)
	}
	if affected == 0 {
		return repo.ErrRepositoryNotFound
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *RepositoryRepoImpl) scanOne(row *sql.Row) (*repo.Repository, error) {
	domainRepo, err := r.scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrRepositoryNotFound
		}
		return nil, fmt.Errorf("failed to get repository: %w", err)
	}
	return domainRepo, nil
}

// scan converts a database row to a domain repository
func (r *RepositoryRepoImpl) scan(row scanner) (*repo.Repository, error) {
	var (
		id        string
		name      string
		createdAt time.Time
	)
	if err := row.Scan(&id, &name, &createdAt); err != nil {
		return nil, err
	}

	return repo.Reconstitute(id, name, createdAt)
}
