package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"repo-popularity/internal/application/dto"
	"repo-popularity/internal/domain/events"
	"repo-popularity/internal/domain/repo"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// RepositoryService handles repository-related use cases
type RepositoryService struct {
	repoRepo   repo.RepositoryRepo
	dispatcher *events.Dispatcher
	linkBase   string
}

// NewRepositoryService creates a new repository service.
// linkBase prefixes the self link of every repository, e.g. "https://host/api/v1/repos".
func NewRepositoryService(repoRepo repo.RepositoryRepo, dispatcher *events.Dispatcher, linkBase string) *RepositoryService {
	return &RepositoryService{
		repoRepo:   repoRepo,
		dispatcher: dispatcher,
		linkBase:   linkBase,
	}
}

// CreateRepository starts tracking a repository under its normalized name
func (s *RepositoryService) CreateRepository(ctx context.Context, req *dto.CreateRepositoryRequest) (*dto.RepositoryResponse, error) {
	repository, err := repo.NewRepository(req.Name)
	if err != nil {
		return nil, err
	}

	if err := s.ensureNameAvailable(ctx, repository.Name(), repository.ID()); err != nil {
		return nil, err
	}

	if err := s.repoRepo.Save(ctx, repository); err != nil {
		if errors.Is(err, repo.ErrRepositoryAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to save repository: %w", err)
	}

	s.dispatch(ctx, repo.NewRepositoryAddedEvent(repository.ID().String(), repository.Name().String()))

	return s.toDTO(repository), nil
}

// GetRepository returns a single repository by ID
func (s *RepositoryService) GetRepository(ctx context.Context, id string) (*dto.RepositoryResponse, error) {
	repository, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toDTO(repository), nil
}

// ListRepositories returns repositories ordered by creation time
func (s *RepositoryService) ListRepositories(ctx context.Context, page, limit int32) (*dto.RepositoryListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxPageLimit {
		limit = defaultPageLimit
	}
	// Keep the offset within int32
	if maxPage := math.MaxInt32 / limit; page > maxPage {
		page = maxPage
	}

	offset := (page - 1) * limit

	repositories, err := s.repoRepo.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch repositories: %w", err)
	}

	total, err := s.repoRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count repositories: %w", err)
	}

	repoResponses := make([]*dto.RepositoryResponse, len(repositories))
	for i, repository := range repositories {
		repoResponses[i] = s.toDTO(repository)
	}

	totalPages := (total + int64(limit) - 1) / int64(limit)

	return &dto.RepositoryListResponse{
		Repositories: repoResponses,
		Pagination: dto.PaginationResponse{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// UpdateRepository renames a repository, normalizing the new name
func (s *RepositoryService) UpdateRepository(ctx context.Context, id string, req *dto.UpdateRepositoryRequest) (*dto.RepositoryResponse, error) {
	repository, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	newName, err := repo.NewIdentifier(req.Name)
	if err != nil {
		return nil, repo.ErrInvalidRepositoryData("name", err)
	}

	oldName := repository.Name()
	if newName.Equals(oldName) {
		return s.toDTO(repository), nil
	}

	if err := s.ensureNameAvailable(ctx, newName, repository.ID()); err != nil {
		return nil, err
	}

	if err := repository.Rename(newName.String()); err != nil {
		return nil, err
	}

	if err := s.repoRepo.Save(ctx, repository); err != nil {
		if errors.Is(err, repo.ErrRepositoryAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update repository: %w", err)
	}

	s.dispatch(ctx, repo.NewRepositoryRenamedEvent(repository.ID().String(), oldName.String(), repository.Name().String()))

	return s.toDTO(repository), nil
}

// DeleteRepository stops tracking a repository
func (s *RepositoryService) DeleteRepository(ctx context.Context, id string) error {
	repository, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repoRepo.Delete(ctx, repository.ID()); err != nil {
		if errors.Is(err, repo.ErrRepositoryNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete repository: %w", err)
	}

	s.dispatch(ctx, repo.NewRepositoryRemovedEvent(repository.ID().String(), repository.Name().String()))
	return nil
}

// find resolves a repository by its string ID; malformed IDs are reported as not found
func (s *RepositoryService) find(ctx context.Context, id string) (*repo.Repository, error) {
	repoID, err := repo.ParseRepositoryID(id)
	if err != nil {
		return nil, repo.ErrRepositoryNotFound
	}

	repository, err := s.repoRepo.FindByID(ctx, repoID)
	if err != nil {
		if errors.Is(err, repo.ErrRepositoryNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to fetch repository: %w", err)
	}
	return repository, nil
}

func (s *RepositoryService) ensureNameAvailable(ctx context.Context, name repo.Identifier, self repo.RepositoryID) error {
	existing, err := s.repoRepo.FindByName(ctx, name)
	switch {
	case errors.Is(err, repo.ErrRepositoryNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("failed to check repository existence: %w", err)
	case existing.ID().Equals(self):
		return nil
	default:
		return repo.ErrRepositoryAlreadyExists
	}
}

func (s *RepositoryService) dispatch(ctx context.Context, event events.DomainEvent) {
	if s.dispatcher == nil {
		return
	}
	// Handler failures are logged by the dispatcher and never fail the write.
	_ = s.dispatcher.Dispatch(ctx, event)
}

// toDTO converts a domain repository to DTO
func (s *RepositoryService) toDTO(r *repo.Repository) *dto.RepositoryResponse {
	return &dto.RepositoryResponse{
		ID:        r.ID().String(),
		Name:      r.Name().String(),
		GitHubURL: r.GitHubURL(),
		URL:       fmt.Sprintf("%s/%s/", s.linkBase, r.ID().String()),
		CreatedAt: r.CreatedAt().Format(time.RFC3339),
	}
}
