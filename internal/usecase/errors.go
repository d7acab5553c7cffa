package usecase

import "errors"

// Sentinels shared by the sync services and the feed adapters, which wrap
// them with %w.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")
	// ErrSyncDisabled is returned for work on a season whose sync flag is off.
	ErrSyncDisabled  = errors.New("sync disabled for season")
	ErrAlreadyExists = errors.New("already exists")

	// Upstream failures. ErrDependencyUnavailable is returned while the feed
	// circuit breaker is open or a dependency is not wired.
	ErrUnauthorized          = errors.New("upstream unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrFetchFailed           = errors.New("fetch failed")
)
