package megasena

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceError_Codes(t *testing.T) {
	// Codes are a wire contract; changing one breaks callers
	assert.Equal(t, ErrorCode("MEGASENA_2000"), ErrAPIConnection.Code)
	assert.Equal(t, ErrorCode("MEGASENA_2001"), ErrCircuitOpen.Code)
	assert.Equal(t, ErrorCode("MEGASENA_3000"), ErrDataProcessing.Code)
	assert.Equal(t, ErrorCode("MEGASENA_3001"), ErrDrawNotFound.Code)
}

func TestServiceError_IsMatchesByCode(t *testing.T) {
	err := NewRetryableError(ErrCodeCircuitOpen, "another message entirely")
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.NotErrorIs(t, err, ErrAPIConnection)
}

func TestServiceError_WithDetailsCopies(t *testing.T) {
	detailed := ErrAPIConnection.WithDetails("dial tcp: refused")

	assert.Empty(t, ErrAPIConnection.Details, "predefined instance must stay pristine")
	assert.Contains(t, detailed.Error(), "dial tcp: refused")
	assert.Contains(t, detailed.Error(), string(ErrCodeAPIConnection))
	assert.ErrorIs(t, detailed, ErrAPIConnection)
}

func TestServiceError_CauseChain(t *testing.T) {
	inner := fmt.Errorf("socket closed")
	err := ErrAPIConnection.WithDetails("latest draw").WithCause(ErrCircuitOpen.WithCause(inner))

	assert.ErrorIs(t, err, ErrAPIConnection)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.ErrorIs(t, err, inner)
	assert.Nil(t, ErrAPIConnection.Cause, "predefined instance must stay pristine")
}

func TestNewDrawNotFoundError(t *testing.T) {
	err := NewDrawNotFoundError("2024-01-15")

	assert.Equal(t, "2024-01-15", err.Date)
	assert.Contains(t, err.Error(), "2024-01-15")
	assert.ErrorIs(t, err, ErrDrawNotFound)
	assert.False(t, err.Retryable)
}

func TestServiceError_Retryability(t *testing.T) {
	for _, err := range []*ServiceError{ErrAPIConnection, ErrCircuitOpen, ErrCache, ErrRateLimited} {
		assert.True(t, err.Retryable, "%s should be retryable", err.Code)
	}
	for _, err := range []*ServiceError{ErrDataProcessing, ErrDrawNotFound, ErrConfigInvalid} {
		assert.False(t, err.Retryable, "%s should not be retryable", err.Code)
	}
}

func TestServiceError_AsTarget(t *testing.T) {
	var svcErr *ServiceError
	wrapped := fmt.Errorf("handler: %w", NewDrawNotFoundError("2024-01-15"))

	require.True(t, errors.As(wrapped, &svcErr))
	assert.Equal(t, ErrCodeDrawNotFound, svcErr.Code)
}
