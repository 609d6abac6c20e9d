package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	gh "github.com/google/go-github/v66/github"

	"repo-popularity/internal/config"
)

const userAgent = "repo-popularity/1.0"

// Client handles GitHub API interactions
type Client struct {
	gh       *gh.Client
	hasToken bool
}

// NewClient creates a new GitHub API client. The token, when present, is sent
// as a bearer credential on every request.
func NewClient(cfg *config.GitHubConfig) (*Client, error) {
	return NewClientWithHTTP(cfg, &http.Client{Timeout: cfg.GetTimeout()})
}

// NewClientWithHTTP is NewClient with a caller supplied http.Client
func NewClientWithHTTP(cfg *config.GitHubConfig, httpClient *http.Client) (*Client, error) {
	client := gh.NewClient(httpClient)
	if cfg.Token != "" {
		client = client.WithAuthToken(cfg.Token)
	}

	if cfg.APIURL != "" {
		apiURL := cfg.APIURL
		if !strings.HasSuffix(apiURL, "/") {
			apiURL += "/"
		}
		baseURL, err := url.Parse(apiURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL: %w", err)
		}
		client.BaseURL = baseURL
	}
	client.UserAgent = userAgent

	return &Client{gh: client, hasToken: cfg.Token != ""}, nil
}

// HasCredential reports whether requests carry a token
func (c *Client) HasCredential() bool {
	return c.hasToken
}

// Repository represents the fields of a GitHub repository this service reads
type Repository struct {
	FullName        string
	StargazersCount int
	ForksCount      int
}

// StatusError is returned when GitHub answered with a non-success status
type StatusError struct {
	StatusCode int
	Reason     string
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("github API returned status %d: %s", e.StatusCode, e.Reason)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// TransportError is returned when no HTTP response was received
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("github API request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError is returned when a successful response body could not be read
type DecodeError struct {
	StatusCode int
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode github response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// GetRepository issues a single GET /repos/{owner}/{name}. The request is
// always sent, even when an earlier response reported the rate limit as spent.
func (c *Client) GetRepository(ctx context.Context, owner, name string) (*Repository, error) {
	ctx = context.WithValue(ctx, gh.BypassRateLimitCheck, true)
	repository, resp, err := c.gh.Repositories.Get(ctx, owner, name)
	if err != nil {
		if resp == nil || resp.Response == nil {
			return nil, &TransportError{Err: err}
		}
		code := resp.StatusCode
		if code >= 200 && code < 300 {
			return nil, &DecodeError{StatusCode: code, Err: err}
		}
		return nil, &StatusError{
			StatusCode: code,
			Reason:     reasonPhrase(resp.Response, err),
			Err:        err,
		}
	}

	return &Repository{
		FullName:        repository.GetFullName(),
		StargazersCount: repository.GetStargazersCount(),
		ForksCount:      repository.GetForksCount(),
	}, nil
}

// reasonPhrase prefers the reason phrase of the status line, then GitHub's
// error message, then the standard status text.
func reasonPhrase(resp *http.Response, err error) string {
	if reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))); reason != "" {
		return reason
	}

	var errResp *gh.ErrorResponse
	if errors.As(err, &errResp) && errResp.Message != "" {
		return errResp.Message
	}

	return http.StatusText(resp.StatusCode)
}
