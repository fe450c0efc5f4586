package apperr

import "errors"

// Caller-visible failures. Adapters wrap backend errors with one of these so
// that upper layers can branch with errors.Is.
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNotFound         = errors.New("not found")
	ErrInvalidQuery     = errors.New("invalid query")
	ErrInvalidInput     = errors.New("invalid input")
	ErrFileTooLarge     = errors.New("file too large")
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrIndexingDegraded is only ever logged.
	ErrIndexingDegraded = errors.New("indexing degraded")
)
