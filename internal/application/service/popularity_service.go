package service

import (
	"context"
	"errors"
	"fmt"

	"repo-popularity/internal/domain/events"
	"repo-popularity/internal/domain/popularity"
	"repo-popularity/internal/domain/repo"
)

// PopularityService classifies repositories by their GitHub metrics
type PopularityService struct {
	repoRepo   repo.RepositoryRepo
	fetcher    popularity.Fetcher
	dispatcher *events.Dispatcher
}

// NewPopularityService creates a new popularity service
func NewPopularityService(repoRepo repo.RepositoryRepo, fetcher popularity.Fetcher, dispatcher *events.Dispatcher) *PopularityService {
	return &PopularityService{
		repoRepo:   repoRepo,
		fetcher:    fetcher,
		dispatcher: dispatcher,
	}
}

// ClassifyRepository classifies any identifier, stored or not.
// The returned error is only set when identifier is not a valid repository name.
func (s *PopularityService) ClassifyRepository(ctx context.Context, identifier string) (popularity.Outcome, error) {
	id, err := repo.NewIdentifier(identifier)
	if err != nil {
		return popularity.Outcome{}, repo.ErrInvalidRepositoryData("name", err)
	}
	return s.classify(ctx, id), nil
}

// ClassifyStoredRepository classifies the tracked repository with the given ID
func (s *PopularityService) ClassifyStoredRepository(ctx context.Context, id string) (popularity.Outcome, error) {
	repoID, err := repo.ParseRepositoryID(id)
	if err != nil {
		return popularity.Outcome{}, repo.ErrRepositoryNotFound
	}

	repository, err := s.repoRepo.FindByID(ctx, repoID)
	if err != nil {
		if errors.Is(err, repo.ErrRepositoryNotFound) {
			return popularity.Outcome{}, err
		}
		return popularity.Outcome{}, fmt.Errorf("failed to fetch repository: %w", err)
	}

	return s.classify(ctx, repository.Name()), nil
}

func (s *PopularityService) classify(ctx context.Context, id repo.Identifier) popularity.Outcome {
	outcome := s.fetcher.Fetch(ctx, id)
	if s.dispatcher != nil {
		_ = s.dispatcher.Dispatch(ctx, popularity.NewPopularityCheckedEvent(id.String(), outcome))
	}
	return outcome
}
