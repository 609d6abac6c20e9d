package repo

import (
	"errors"
	"fmt"
)

var (
	// ErrRepositoryNotFound is returned when a repository is not found
	ErrRepositoryNotFound = errors.New("repository not found")

	// ErrRepositoryAlreadyExists is returned when another repository already uses the normalized name
	ErrRepositoryAlreadyExists = errors.New("repository with this name already exists")
)

// DomainError carries a machine readable code alongside the cause
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func ErrInvalidRepositoryData(field string, err error) *DomainError {
	return &DomainError{
		Code:    "INVALID_REPOSITORY_DATA",
		Message: fmt.Sprintf("invalid %s", field),
		Err:     err,
	}
}

// IsInvalidData reports whether err was produced by validation of repository input
func IsInvalidData(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == "INVALID_REPOSITORY_DATA"
}
