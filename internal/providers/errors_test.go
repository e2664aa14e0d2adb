package providers

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConnectionError_ReclassifiesDeadline(t *testing.T) {
	err := NewConnectionError("openai", context.DeadlineExceeded)
	assert.Equal(t, KindTimeout, KindOf(err))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	wrapped := NewConnectionError("openai", fmt.Errorf("fetch: %w", context.DeadlineExceeded))
	assert.Equal(t, KindTimeout, KindOf(wrapped))
}

func TestNewConnectionError_PlainFailure(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewConnectionError("ollama", cause)
	assert.Equal(t, KindConnection, KindOf(err))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "ollama")
}

func TestKindOf_UntypedError(t *testing.T) {
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
	assert.False(t, IsKind(errors.New("plain"), KindConnection))
}

func TestNewAlreadyLoadingError(t *testing.T) {
	err := NewAlreadyLoadingError("llama-3.2-1b")
	assert.Equal(t, KindConcurrency, KindOf(err))
	assert.Contains(t, err.Error(), "llama-3.2-1b")
}

func TestNewLoadError(t *testing.T) {
	cause := errors.New("out of memory")
	err := NewLoadError("webllm", "mistral-7b", cause)
	assert.Equal(t, KindLoad, KindOf(err))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "mistral-7b")
}
