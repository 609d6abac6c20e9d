package github

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"repo-popularity/internal/domain/popularity"
	"repo-popularity/internal/domain/repo"
	"repo-popularity/internal/github"
)

// RepositoryGetter is the part of the GitHub client the fetcher depends on
type RepositoryGetter interface {
	HasCredential() bool
	GetRepository(ctx context.Context, owner, name string) (*github.Repository, error)
}

// MetricsFetcher implements the domain popularity.Fetcher interface
type MetricsFetcher struct {
	client RepositoryGetter
	policy popularity.CredentialPolicy
	log    logrus.FieldLogger
}

// NewMetricsFetcher creates a new metrics fetcher backed by the GitHub API
func NewMetricsFetcher(client RepositoryGetter, policy popularity.CredentialPolicy, log logrus.FieldLogger) *MetricsFetcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &MetricsFetcher{
		client: client,
		policy: policy,
		log:    log,
	}
}

// Fetch looks up star and fork counts for id and classifies them.
// Without a credential no request is made. Failed requests are not retried.
func (f *MetricsFetcher) Fetch(ctx context.Context, id repo.Identifier) popularity.Outcome {
	logger := f.log.WithField("repository", id.String())

	if !f.client.HasCredential() {
		logger.Warn("github token not configured")
		return popularity.Failed(&popularity.Failure{
			Status: popularity.StatusCredentialUnavailable,
			Reason: popularity.ReasonNoCredential,
		})
	}

	owner, name := id.Split()
	repository, err := f.client.GetRepository(ctx, owner, name)
	if err != nil {
		return popularity.Failed(f.translate(logger, err))
	}

	return popularity.Succeeded(popularity.Metrics{
		Stars: repository.StargazersCount,
		Forks: repository.ForksCount,
	})
}

func (f *MetricsFetcher) translate(logger logrus.FieldLogger, err error) *popularity.Failure {
	var (
		statusErr    *github.StatusError
		decodeErr    *github.DecodeError
		transportErr *github.TransportError
	)

	switch {
	case errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized:
		logger.WithError(err).Warn("github rejected the configured token")
		status := popularity.StatusCredentialUnavailable
		if f.policy == popularity.DistinguishRejectedCredential {
			status = popularity.StatusCredentialRejected
		}
		return &popularity.Failure{
			Status: status,
			Reason: popularity.ReasonCredentialRejected,
			Err:    err,
		}

	case errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound:
		logger.Debug("repository not found on github")
		return &popularity.Failure{
			Status:       popularity.StatusUpstreamNotFound,
			Reason:       statusErr.Reason,
			UpstreamCode: statusErr.StatusCode,
			Err:          err,
		}

	case errors.As(err, &statusErr):
		logger.WithError(err).WithField("status", statusErr.StatusCode).Info("github returned an error status")
		return &popularity.Failure{
			Status:       popularity.StatusUpstreamError,
			Reason:       statusErr.Reason,
			UpstreamCode: statusErr.StatusCode,
			Err:          err,
		}

	case errors.As(err, &decodeErr):
		logger.WithError(err).Error("unreadable github response")
		return &popularity.Failure{
			Status:       popularity.StatusUpstreamError,
			Reason:       popularity.ReasonMalformedResponse,
			UpstreamCode: http.StatusBadGateway,
			Err:          err,
		}

	case errors.As(err, &transportErr):
		logger.WithError(err).Error("github request failed")
		return &popularity.Failure{
			Status: popularity.StatusTransportFailure,
			Reason: popularity.ReasonTransportFailure,
			Err:    err,
		}

	default:
		logger.WithError(err).Error("unexpected github client error")
		return &popularity.Failure{
			Status: popularity.StatusTransportFailure,
			Reason: popularity.ReasonTransportFailure,
			Err:    err,
		}
	}
}
