package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntakeErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := ProviderUnavailable("backend down", cause)

	assert.Contains(t, err.Error(), "PROVIDER_UNAVAILABLE")
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, cause, err.Unwrap())
}

func TestIsCode(t *testing.T) {
	err := SessionNotFound("abc")
	assert.True(t, IsCode(err, ErrCodeSessionNotFound))
	assert.False(t, IsCode(err, ErrCodeSessionLocked))

	// Wrapped errors still carry their code.
	wrapped := fmt.Errorf("handling request: %w", err)
	assert.True(t, IsCode(wrapped, ErrCodeSessionNotFound))

	assert.False(t, IsCode(fmt.Errorf("plain"), ErrCodeInternal))
	assert.False(t, IsCode(nil, ErrCodeInternal))
}

func TestGetCodeFromError(t *testing.T) {
	assert.Equal(t, ErrCodeSessionLocked, GetCodeFromError(SessionLocked("abc"), ErrCodeInternal))
	assert.Equal(t, ErrCodeInternal, GetCodeFromError(fmt.Errorf("plain"), ErrCodeInternal))
}
