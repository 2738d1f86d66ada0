package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_WithDetailsDoesNotMutateTemplate(t *testing.T) {
	err := ErrInvalidRequest.WithDetails(map[string]interface{}{"field": "rows"})

	assert.Equal(t, "rows", err.Details["field"])
	assert.Nil(t, ErrInvalidRequest.Details)
	assert.True(t, errors.Is(err, ErrInvalidRequest))
}

func TestAppError_Wrap(t *testing.T) {
	cause := fmt.Errorf("batch loop panicked")
	err := ErrClassificationFailed.Wrap(cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrClassificationFailed)
	assert.Contains(t, err.Error(), "batch loop panicked")
	assert.True(t, err.Retryable)
	assert.Equal(t, http.StatusServiceUnavailable, err.StatusCode)
}

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("load rows: %w", ErrDatabaseError)

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, "DATABASE_ERROR", appErr.Code)

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
}
