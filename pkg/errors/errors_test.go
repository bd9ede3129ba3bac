package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alchemorsel/companion/pkg/errors"
)

func TestErrorFormatting(t *testing.T) {
	err := errors.New(errors.CodeStorage, "local store operation failed", "put recipe")
	assert.Equal(t, "STORAGE_ERROR: local store operation failed (put recipe)", err.Error())

	bare := errors.New(errors.CodeAuth, "no valid authenticated identity", "")
	assert.Equal(t, "AUTH_ERROR: no valid authenticated identity", bare.Error())
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, errors.CodeNetwork, errors.GetCode(errors.NewNetworkError("list recipes", nil)))
	assert.Equal(t, errors.ErrorCode(""), errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.ErrorCode(""), errors.GetCode(nil))
}

func TestIsCodeThroughWrapping(t *testing.T) {
	inner := errors.NewTimeoutError("completion request", nil)
	wrapped := fmt.Errorf("exchange failed: %w", inner)

	assert.True(t, errors.IsCode(wrapped, errors.CodeTimeout))
	assert.False(t, errors.IsCode(wrapped, errors.CodeNetwork))
	assert.False(t, errors.IsCode(stderrors.New("plain"), errors.CodeTimeout))
}

func TestUnwrapReturnsCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := errors.NewNetworkError("list recipes", cause)

	assert.True(t, stderrors.Is(err, cause))
}

func TestWithMetadata(t *testing.T) {
	err := errors.NewStorageError("put recipe", nil).
		WithMetadata("collection", "recipes").
		WithMetadata("key", "r-1")

	assert.Equal(t, "recipes", err.Metadata["collection"])
	assert.Equal(t, "r-1", err.Metadata["key"])
}

func TestNotFoundErrorMessage(t *testing.T) {
	err := errors.NewNotFoundError("user message", "s-1")
	assert.Equal(t, errors.CodeNotFound, err.Code)
	assert.Contains(t, err.Error(), "user message not found")
}
