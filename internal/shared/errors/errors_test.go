package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_WrapsCause(t *testing.T) {
	cause := errors.New("socket closed")
	err := NewInfrastructureError("write failed").WithCause(cause).WithComponent("redis_event_store")

	assert.Contains(t, err.Error(), "write failed")
	assert.Contains(t, err.Error(), "socket closed")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "redis_event_store", err.Component)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPCode)
}

func TestValidationErrors(t *testing.T) {
	ve := NewValidationErrors()
	assert.False(t, ve.HasErrors())
	assert.Nil(t, ve.ToAppError())

	ve.Add("time", "time is required", "")
	ve.Add("activity", "activity is required", "")
	assert.True(t, ve.HasErrors())

	appErr := ve.ToAppError()
	assert.Equal(t, ErrorTypeValidation, appErr.Type)
	assert.True(t, IsValidation(appErr))
	assert.NotEmpty(t, appErr.Details["validation_errors"])
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(ErrSessionNotFound))
	assert.True(t, IsNotFound(fmt.Errorf("load: %w", ErrSessionNotFound)))
	assert.True(t, IsNotFound(NewNotFoundError("session")))
	assert.False(t, IsNotFound(errors.New("boom")))
	assert.False(t, IsNotFound(NewValidationError("bad")))
}

func TestWrapError_PassesThroughAppError(t *testing.T) {
	orig := NewValidationError("bad input")
	wrapped := WrapError(orig, "context")
	assert.Same(t, orig, wrapped)

	plain := WrapError(errors.New("boom"), "saving session")
	assert.Equal(t, ErrorTypeInternal, plain.Type)
}
