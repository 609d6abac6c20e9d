package popularity

import (
	"context"

	"repo-popularity/internal/domain/repo"
)

// CredentialPolicy controls how a credential rejected by the remote is reported
type CredentialPolicy int

const (
	// FoldRejectedCredential reports a rejected credential with StatusCredentialUnavailable,
	// so callers cannot tell a bad token from a missing one.
	FoldRejectedCredential CredentialPolicy = iota
	// DistinguishRejectedCredential keeps StatusCredentialRejected. Both statuses
	// still map to the same HTTP code.
	DistinguishRejectedCredential
)

func (p CredentialPolicy) String() string {
	if p == DistinguishRejectedCredential {
		return "distinguish"
	}
	return "fold"
}

// ParseCredentialPolicy accepts "fold" and "distinguish"; anything else folds
func ParseCredentialPolicy(s string) CredentialPolicy {
	if s == "distinguish" {
		return DistinguishRejectedCredential
	}
	return FoldRejectedCredential
}

// Fetcher looks up remote metrics for a repository and classifies them.
// Implementation will be in infrastructure layer
type Fetcher interface {
	Fetch(ctx context.Context, id repo.Identifier) Outcome
}
