package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomError(t *testing.T) {
	err := NewConflictError("login taken")

	assert.EqualError(t, err, "login taken")
	assert.True(t, errors.Is(err, ErrConflict))

	wrapped := fmt.Errorf("insert user: %w", err)
	ce, ok := AsCustom(wrapped)
	require.True(t, ok)
	assert.Equal(t, "login taken", ce.Message)
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError(map[string]string{"vote": "must be between 1 and 5"})

	assert.True(t, errors.Is(err, ErrValidationFailed))
	ce, ok := AsCustom(err)
	require.True(t, ok)
	assert.Equal(t, "must be between 1 and 5", ce.Details["vote"])
}

func TestConstructorsWrapSentinels(t *testing.T) {
	assert.ErrorIs(t, NewForbiddenError("not your point"), ErrPermissionDenied)
	assert.ErrorIs(t, NewResourceNotFoundError("site not found"), ErrResourceNotFound)

	_, ok := AsCustom(fmt.Errorf("plain: %w", ErrBannerLimitReached))
	assert.False(t, ok)
}

func TestCustomErrorFallbackMessage(t *testing.T) {
	assert.Equal(t, "resource not found", (&CustomError{Err: ErrResourceNotFound}).Error())
	assert.Equal(t, "unknown error", (&CustomError{}).Error())
}
