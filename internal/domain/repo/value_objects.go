package repo

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Host prefixes stripped from identifiers on entry. Matching is exact and case-sensitive.
var hostPrefixes = []string{
	"https://github.com",
	"http://github.com",
}

// MaxIdentifierLength mirrors the width of the name column
const MaxIdentifierLength = 200

// RepositoryID is a value object representing a repository's unique identifier
type RepositoryID struct {
	value uuid.UUID
}

// NewRepositoryID creates a new RepositoryID
func NewRepositoryID() RepositoryID {
	return RepositoryID{value: uuid.New()}
}

// ParseRepositoryID parses a string into a RepositoryID
func ParseRepositoryID(id string) (RepositoryID, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return RepositoryID{}, fmt.Errorf("invalid repository ID format: %w", err)
	}
	return RepositoryID{value: uid}, nil
}

func (id RepositoryID) String() string {
	return id.value.String()
}

func (id RepositoryID) UUID() uuid.UUID {
	return id.value
}

func (id RepositoryID) Equals(other RepositoryID) bool {
	return id.value == other.value
}

// Normalize turns a user supplied repository reference into owner/name form.
// A leading github.com scheme+host is removed, then every leading and trailing
// slash. This repeats until nothing changes, so the result never starts with a
// host prefix and Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	for {
		next := strings.Trim(stripHostPrefix(raw), "/")
		if next == raw {
			return next
		}
		raw = next
	}
}

func stripHostPrefix(s string) string {
	for _, prefix := range hostPrefixes {
		if strings.HasPrefix(s, prefix) {
			return strings.TrimPrefix(s, prefix)
		}
	}
	return s
}

// Identifier is a value object holding a normalized owner/name reference
type Identifier struct {
	value string
}

// NewIdentifier normalizes raw and validates the result
func NewIdentifier(raw string) (Identifier, error) {
	name := Normalize(strings.TrimSpace(raw))

	if name == "" {
		return Identifier{}, fmt.Errorf("repository name cannot be empty")
	}

	if len(name) > MaxIdentifierLength {
		return Identifier{}, fmt.Errorf("repository name too long (max %d characters)", MaxIdentifierLength)
	}

	owner, repoName, found := strings.Cut(name, "/")
	if !found || owner == "" || repoName == "" || strings.Contains(repoName, "/") {
		return Identifier{}, fmt.Errorf("repository name must be owner/name, got %q", name)
	}

	return Identifier{value: name}, nil
}

// Split returns the owner and name parts
func (i Identifier) Split() (owner, name string) {
	owner, name, _ = strings.Cut(i.value, "/")
	return owner, name
}

// GitHubURL returns the browser URL of the repository
func (i Identifier) GitHubURL() string {
	return fmt.Sprintf("https://github.com/%s/", i.value)
}

func (i Identifier) String() string {
	return i.value
}

func (i Identifier) IsZero() bool {
	return i.value == ""
}

func (i Identifier) Equals(other Identifier) bool {
	return i.value == other.value
}
