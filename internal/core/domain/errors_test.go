package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestErrors_Uniqueness tests that all sentinel errors are distinct
func TestErrors_Uniqueness(t *testing.T) {
	allErrors := []error{
		ErrNotFound,
		ErrInvalidInput,
		ErrLLMUnavailable,
		ErrEmbeddingUnavailable,
		ErrStoreClosed,
		ErrDimensionMismatch,
	}

	for i, err1 := range allErrors {
		assert.NotEmpty(t, err1.Error())
		for j, err2 := range allErrors {
			if i != j {
				assert.False(t, errors.Is(err1, err2),
					"Error %v should not match error %v", err1, err2)
			}
		}
	}
}

func TestFetchError(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("ingest: %w", &FetchError{URL: "https://example.com", Err: cause})

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "https://example.com", fe.URL)
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "fetch https://example.com")
}

func TestProviderError_Messages(t *testing.T) {
	tests := []struct {
		name string
		err  *ProviderError
		want string
	}{
		{
			name: "status code",
			err:  &ProviderError{Provider: "openai", StatusCode: 429, Message: "quota exceeded"},
			want: "openai: status 429: quota exceeded",
		},
		{
			name: "transport failure",
			err:  &ProviderError{Provider: "ollama", Err: context.DeadlineExceeded},
			want: "ollama: context deadline exceeded",
		},
		{
			name: "message only",
			err:  &ProviderError{Provider: "openai", Message: "no embedding returned"},
			want: "openai: no embedding returned",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestEmbeddingError_MatchesSentinelAndCause(t *testing.T) {
	cause := &ProviderError{Provider: "openai", StatusCode: 401, Message: "bad key"}
	err := fmt.Errorf("embed chunks: %w", &EmbeddingError{Model: "text-embedding-3-small", Err: cause})

	assert.True(t, errors.Is(err, ErrEmbeddingUnavailable))

	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 401, pe.StatusCode)
}

func TestNewStorageError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, NewStorageError("save", nil))
	})

	t.Run("wraps plain errors", func(t *testing.T) {
		err := NewStorageError("save content", errors.New("disk full"))
		assert.True(t, IsStorageError(err))
		assert.Equal(t, "storage: save content: disk full", err.Error())
	})

	t.Run("does not double wrap", func(t *testing.T) {
		inner := NewStorageError("inner", errors.New("boom"))
		outer := NewStorageError("outer", inner)
		assert.Same(t, inner, outer)
	})

	t.Run("passes not found through", func(t *testing.T) {
		err := NewStorageError("get", fmt.Errorf("content x: %w", ErrNotFound))
		assert.False(t, IsStorageError(err))
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("passes validation errors through", func(t *testing.T) {
		for _, sentinel := range []error{ErrInvalidInput, ErrDimensionMismatch} {
			err := NewStorageError("save", fmt.Errorf("chunk 3: %w", sentinel))
			assert.False(t, IsStorageError(err))
			assert.ErrorIs(t, err, sentinel)
		}
	})
}
