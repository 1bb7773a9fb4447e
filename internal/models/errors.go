package models

import "errors"

// Sentinel errors for the pipeline's failure classes. Services wrap these
// with fmt.Errorf("%w: ...") so callers can branch with errors.Is while
// keeping the detail.
var (
	// ErrValidation marks rejected input: disallowed file type, oversized
	// upload, malformed query request.
	ErrValidation = errors.New("validation failed")

	// ErrExtraction marks a failure to get text out of an uploaded file.
	ErrExtraction = errors.New("extraction failed")

	// ErrEmptyContent marks a document whose normalized text produced no
	// chunks. Nothing gets embedded or indexed for it.
	ErrEmptyContent = errors.New("document has no extractable content")

	// ErrProvider marks an upstream LLM provider failure (embedding,
	// generation, or vision). There are no retries; the operation fails.
	ErrProvider = errors.New("provider request failed")

	// ErrIndexIO marks a failure persisting, loading, or validating the
	// index artifact pair, including detected corruption.
	ErrIndexIO = errors.New("index artifact error")

	// ErrNotFound marks a missing row.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized marks an access attempt on another owner's document.
	ErrUnauthorized = errors.New("not authorized")
)
