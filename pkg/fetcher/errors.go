package fetcher

import (
	"errors"
	"fmt"
)

var (
	// ErrFetchFailure matches every failure returned by a Fetcher.
	ErrFetchFailure = errors.New("fetcher: fetch failure")
	// ErrCategoryRequired is returned for an empty category identifier.
	ErrCategoryRequired = errors.New("fetcher: category id is required")
)

// FailureKind classifies a FetchError.
type FailureKind string

const (
	FailureNetwork   FailureKind = "network"
	FailureStatus    FailureKind = "status"
	FailureMalformed FailureKind = "malformed"
)

// FetchError describes a failed schema retrieval.
type FetchError struct {
	CategoryID string
	Kind       FailureKind
	Status     int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetcher: category %q: %s failure (status %d): %v", e.CategoryID, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("fetcher: category %q: %s failure: %v", e.CategoryID, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrFetchFailure) match any FetchError.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailure
}

func failure(categoryID string, kind FailureKind, status int, err error) *FetchError {
	return &FetchError{CategoryID: categoryID, Kind: kind, Status: status, Err: err}
}
