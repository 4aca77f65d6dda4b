package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Answers fall back to the template synthesiser.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured
	// or failed while the offline fallback is disabled.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrStoreClosed indicates the storage handle has been closed.
	ErrStoreClosed = errors.New("store closed")

	// ErrDimensionMismatch indicates a vector does not have the system dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// FetchError reports that source content could not be retrieved.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ProviderError reports a failure returned by a remote AI provider.
// StatusCode is 0 for transport failures.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Provider, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Provider, e.Message)
	}
}

func (e *ProviderError) Unwrap() error { return e.Err }

// EmbeddingError reports that no embedding could be produced.
type EmbeddingError struct {
	Model string
	Err   error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding (%s): %v", e.Model, e.Err)
}

// Unwrap returns both the cause and ErrEmbeddingUnavailable so callers
// can match either.
func (e *EmbeddingError) Unwrap() []error {
	return []error{ErrEmbeddingUnavailable, e.Err}
}

// StorageError reports a persistence layer failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NewStorageError wraps err as a StorageError unless it already is one
// or carries a caller-facing sentinel (ErrNotFound, ErrInvalidInput,
// ErrDimensionMismatch).
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrDimensionMismatch) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// IsStorageError reports whether err carries a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
