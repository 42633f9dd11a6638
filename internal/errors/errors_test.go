package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainErrorWrapping(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := fmt.Errorf("find job: %w", Unavailable("connecting to store", cause))

	de, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, ErrTypeUnavailable, de.Type)
	assert.ErrorIs(t, err, cause)
	assert.NotEmpty(t, de.StackTrace())
	assert.Contains(t, de.Error(), "connection refused")
}

func TestValidationCarriesField(t *testing.T) {
	err := Validation("poster.email", "must be a valid email address")

	assert.Equal(t, "poster.email", err.Field)
	assert.True(t, IsType(err, ErrTypeInvalidInput))
	assert.False(t, IsType(err, ErrTypeInternal))
	assert.Equal(t, "INVALID_INPUT: poster.email: must be a valid email address", err.Error())
}

func TestIsTypeOnPlainError(t *testing.T) {
	assert.False(t, IsType(stderrors.New("boom"), ErrTypeNotFound))
	assert.False(t, IsType(nil, ErrTypeNotFound))
}
