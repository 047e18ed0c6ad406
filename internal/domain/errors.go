package domain

import "errors"

var (
	// ErrBackendUnavailable means the transaction inspection tool could not be
	// run, failed, or produced output that cannot be trusted.
	ErrBackendUnavailable = errors.New("version control backend unavailable")

	// ErrParse means a changed-path record did not have the expected shape.
	ErrParse = errors.New("malformed changed-path output")

	// ErrDuplicatePath means the same path was reported more than once.
	ErrDuplicatePath = errors.New("duplicate changed path")

	// ErrAuthorityUnavailable means the policy authority could not give a verdict.
	ErrAuthorityUnavailable = errors.New("policy authority unavailable")
)
