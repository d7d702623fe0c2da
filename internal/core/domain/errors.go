package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or media type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrSyncInProgress indicates a sync is already running for the engagement.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrFileTooLarge indicates a remote file exceeds the download size limit.
	// The transfer is refused before any bytes move.
	ErrFileTooLarge = errors.New("file too large")

	// ErrNoMatch indicates a folder URL is not recognised by any provider.
	// Distinct from a recognised URL whose access cannot be verified,
	// which resolves to a nil locator without error.
	ErrNoMatch = errors.New("url not recognised")

	// ErrInvalidCursor indicates a sync checkpoint could not be decoded.
	// Providers restart from a full listing when they see this.
	ErrInvalidCursor = errors.New("invalid sync checkpoint")

	// ErrProviderValidation indicates provider validation failed.
	// The engagement's folder is misconfigured or credentials are invalid.
	ErrProviderValidation = errors.New("provider validation failed")

	// ErrRateLimited indicates the provider API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrNotRetryable indicates a document is not in a state that
	// permits a retry (only error and stuck-processing documents are).
	ErrNotRetryable = errors.New("document not retryable")

	// ErrExtractionUnavailable indicates the extraction service is not configured.
	ErrExtractionUnavailable = errors.New("extraction service unavailable")
)
