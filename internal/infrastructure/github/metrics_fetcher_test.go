package github_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"repo-popularity/internal/config"
	"repo-popularity/internal/domain/popularity"
	"repo-popularity/internal/domain/repo"
	ghclient "repo-popularity/internal/github"
	infraGitHub "repo-popularity/internal/infrastructure/github"
)

type stubGitHub struct {
	srv     *httptest.Server
	calls   atomic.Int32
	headers http.Header
}

// newStubGitHub serves GET /repos/{owner}/{name} with the given status and body
func newStubGitHub(t *testing.T, status int, body string) *stubGitHub {
	t.Helper()
	stub := &stubGitHub{}
	stub.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stub.calls.Add(1)
		for key, values := range stub.headers {
			w.Header()[key] = values
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(stub.srv.Close)
	return stub
}

func (s *stubGitHub) fetcher(t *testing.T, token string, policy popularity.CredentialPolicy) *infraGitHub.MetricsFetcher {
	t.Helper()
	client, err := ghclient.NewClient(&config.GitHubConfig{Token: token, APIURL: s.srv.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	log := logrus.New()
	log.SetOutput(io.Discard)
	return infraGitHub.NewMetricsFetcher(client, policy, log)
}

func identifier(t *testing.T, raw string) repo.Identifier {
	t.Helper()
	id, err := repo.NewIdentifier(raw)
	if err != nil {
		t.Fatalf("NewIdentifier(%q) error = %v", raw, err)
	}
	return id
}

func metricsBody(stars, forks int) string {
	return fmt.Sprintf(`{"full_name":"a/b","stargazers_count":%d,"forks_count":%d,"forks":%d}`, stars, forks, forks)
}

func TestFetchWithoutCredentialMakesNoRequest(t *testing.T) {
	stub := newStubGitHub(t, http.StatusOK, metricsBody(1000, 0))
	f := stub.fetcher(t, "", popularity.FoldRejectedCredential)

	outcome := f.Fetch(context.Background(), identifier(t, "facebook/react"))

	if outcome.Status() != popularity.StatusCredentialUnavailable {
		t.Errorf("Status() = %v, want credential_unavailable", outcome.Status())
	}
	if outcome.HTTPStatus() != http.StatusServiceUnavailable {
		t.Errorf("HTTPStatus() = %d, want 503", outcome.HTTPStatus())
	}
	if outcome.Message() != popularity.ReasonNoCredential {
		t.Errorf("Message() = %q", outcome.Message())
	}
	if got := stub.calls.Load(); got != 0 {
		t.Errorf("remote calls = %d, want 0", got)
	}
}

func TestFetchRejectedCredentialLooksLikeMissingCredential(t *testing.T) {
	stub := newStubGitHub(t, http.StatusUnauthorized, `{"message":"Bad credentials"}`)
	f := stub.fetcher(t, "ghp_revoked", popularity.FoldRejectedCredential)

	outcome := f.Fetch(context.Background(), identifier(t, "facebook/react"))

	if outcome.Status() != popularity.StatusCredentialUnavailable {
		t.Errorf("Status() = %v, want credential_unavailable", outcome.Status())
	}
	if outcome.HTTPStatus() != http.StatusServiceUnavailable {
		t.Errorf("HTTPStatus() = %d, want 503", outcome.HTTPStatus())
	}
	if outcome.Message() != popularity.ReasonCredentialRejected {
		t.Errorf("Message() = %q", outcome.Message())
	}
	if got := stub.calls.Load(); got != 1 {
		t.Errorf("remote calls = %d, want 1", got)
	}
}

func TestFetchRejectedCredentialDistinguished(t *testing.T) {
	stub := newStubGitHub(t, http.StatusUnauthorized, `{"message":"Bad credentials"}`)
	f := stub.fetcher(t, "ghp_revoked", popularity.DistinguishRejectedCredential)

	outcome := f.Fetch(context.Background(), identifier(t, "facebook/react"))

	if outcome.Status() != popularity.StatusCredentialRejected {
		t.Errorf("Status() = %v, want credential_rejected", outcome.Status())
	}
	if outcome.HTTPStatus() != http.StatusServiceUnavailable {
		t.Errorf("HTTPStatus() = %d, want 503", outcome.HTTPStatus())
	}
}

func TestFetchClassifies(t *testing.T) {
	tests := []struct {
		name  string
		stars int
		forks int
		want  popularity.Result
	}{
		{"popular", 500, 200, popularity.Popular},
		{"not popular", 499, 0, popularity.NotPopular},
		{"boundary through forks", 0, 250, popularity.Popular},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := newStubGitHub(t, http.StatusOK, metricsBody(tt.stars, tt.forks))
			f := stub.fetcher(t, "ghp_test", popularity.FoldRejectedCredential)

			outcome := f.Fetch(context.Background(), identifier(t, "a/b"))

			result, ok := outcome.Result()
			if !ok {
				t.Fatalf("Fetch() failed: %v", outcome.Failure())
			}
			if result != tt.want {
				t.Errorf("Result() = %v, want %v", result, tt.want)
			}
			if outcome.HTTPStatus() != http.StatusOK {
				t.Errorf("HTTPStatus() = %d, want 200", outcome.HTTPStatus())
			}
			if got := stub.calls.Load(); got != 1 {
				t.Errorf("remote calls = %d, want 1", got)
			}
		})
	}
}

func TestFetchNotFoundPassesThrough(t *testing.T) {
	stub := newStubGitHub(t, http.StatusNotFound, `{"message":"Not Found"}`)
	f := stub.fetcher(t, "ghp_test", popularity.FoldRejectedCredential)

	outcome := f.Fetch(context.Background(), identifier(t, "nobody/nothing"))

	if outcome.Status() != popularity.StatusUpstreamNotFound {
		t.Errorf("Status() = %v, want upstream_not_found", outcome.Status())
	}
	if outcome.HTTPStatus() != http.StatusNotFound {
		t.Errorf("HTTPStatus() = %d, want 404", outcome.HTTPStatus())
	}
	if outcome.Message() != "Not Found" {
		t.Errorf("Message() = %q, want Not Found", outcome.Message())
	}
}

func TestFetchOtherStatusPassesThrough(t *testing.T) {
	stub := newStubGitHub(t, http.StatusUnavailableForLegalReasons, `{"message":"Repository access blocked"}`)
	f := stub.fetcher(t, "ghp_test", popularity.FoldRejectedCredential)

	outcome := f.Fetch(context.Background(), identifier(t, "a/b"))

	if outcome.Status() != popularity.StatusUpstreamError {
		t.Errorf("Status() = %v, want upstream_error", outcome.Status())
	}
	if outcome.HTTPStatus() != http.StatusUnavailableForLegalReasons {
		t.Errorf("HTTPStatus() = %d, want 451", outcome.HTTPStatus())
	}
	if got := stub.calls.Load(); got != 1 {
		t.Errorf("remote calls = %d, want 1 (no retries)", got)
	}
}

func TestFetchServerErrorIsNotRetried(t *testing.T) {
	stub := newStubGitHub(t, http.StatusBadGateway, `{"message":"Server Error"}`)
	f := stub.fetcher(t, "ghp_test", popularity.FoldRejectedCredential)

	outcome := f.Fetch(context.Background(), identifier(t, "a/b"))

	if outcome.HTTPStatus() != http.StatusBadGateway {
		t.Errorf("HTTPStatus() = %d, want 502", outcome.HTTPStatus())
	}
	if got := stub.calls.Load(); got != 1 {
		t.Errorf("remote calls = %d, want 1", got)
	}
}

func TestFetchMalformedTokenIsTransportFailure(t *testing.T) {
	stub := newStubGitHub(t, http.StatusOK, metricsBody(1000, 0))
	f := stub.fetcher(t, "ghp_bad\ntoken", popularity.FoldRejectedCredential)

	outcome := f.Fetch(context.Background(), identifier(t, "a/b"))

	if outcome.Status() != popularity.StatusTransportFailure {
		t.Errorf("Status() = %v, want transport_failure", outcome.Status())
	}
	if outcome.HTTPStatus() != http.StatusInternalServerError {
		t.Errorf("HTTPStatus() = %d, want 500", outcome.HTTPStatus())
	}
	if outcome.Message() != popularity.ReasonTransportFailure {
		t.Errorf("Message() = %q", outcome.Message())
	}
	if got := stub.calls.Load(); got != 0 {
		t.Errorf("remote calls = %d, want 0", got)
	}
}

func TestFetchMalformedBody(t *testing.T) {
	stub := newStubGitHub(t, http.StatusOK, `{"stargazers_count":`)
	f := stub.fetcher(t, "ghp_test", popularity.FoldRejectedCredential)

	outcome := f.Fetch(context.Background(), identifier(t, "a/b"))

	if outcome.Status() != popularity.StatusUpstreamError {
		t.Errorf("Status() = %v, want upstream_error", outcome.Status())
	}
	if outcome.HTTPStatus() != http.StatusBadGateway {
		t.Errorf("HTTPStatus() = %d, want 502", outcome.HTTPStatus())
	}
}

func TestFetchIgnoresSpentRateLimitFromEarlierResponse(t *testing.T) {
	stub := newStubGitHub(t, http.StatusOK, metricsBody(1000, 0))
	stub.headers = http.Header{
		"X-Ratelimit-Limit":     {"5000"},
		"X-Ratelimit-Remaining": {"0"},
		"X-Ratelimit-Reset":     {strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10)},
	}
	f := stub.fetcher(t, "ghp_test", popularity.FoldRejectedCredential)

	for i := 0; i < 2; i++ {
		outcome := f.Fetch(context.Background(), identifier(t, "facebook/react"))
		if result, ok := outcome.Result(); !ok || result != popularity.Popular {
			t.Errorf("fetch %d: Result() = (%v, %v), status %v", i+1, result, ok, outcome.Status())
		}
	}
	if got := stub.calls.Load(); got != 2 {
		t.Errorf("remote calls = %d, want 2", got)
	}
}
