package megasena

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBreakerConfig() *BreakerConfig {
	return &BreakerConfig{
		Name:             "test-breaker",
		FailureThreshold: 3,
		RecoveryTimeout:  100 * time.Millisecond,
	}
}

var errUpstream = errors.New("upstream exploded")

func failingOp() (any, error) { return nil, errUpstream }

func TestBreaker_TripsAfterThreshold(t *testing.T) {
	breaker := NewBreaker(testBreakerConfig(), NewSilentLogger())

	for i := 0; i < 2; i++ {
		_, err := breaker.Call(failingOp)
		require.ErrorIs(t, err, errUpstream)
		assert.Equal(t, "closed", breaker.Stats().State)
	}

	_, err := breaker.Call(failingOp)
	require.ErrorIs(t, err, errUpstream)

	stats := breaker.Stats()
	assert.Equal(t, "open", stats.State)
	assert.Equal(t, uint32(3), stats.FailureCount)
	assert.Equal(t, uint32(3), stats.FailureThreshold)
	require.NotNil(t, stats.LastFailureTime)
}

func TestBreaker_OpenFailsFastWithoutInvoking(t *testing.T) {
	breaker := NewBreaker(testBreakerConfig(), NewSilentLogger())
	for i := 0; i < 3; i++ {
		_, _ = breaker.Call(failingOp)
	}
	require.Equal(t, "open", breaker.Stats().State)

	var invoked atomic.Int32
	_, err := breaker.Call(func() (any, error) {
		invoked.Add(1)
		return "ok", nil
	})
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Zero(t, invoked.Load(), "operation must not run while open")
}

func TestBreaker_RecoversThroughHalfOpen(t *testing.T) {
	breaker := NewBreaker(testBreakerConfig(), NewSilentLogger())
	for i := 0; i < 3; i++ {
		_, _ = breaker.Call(failingOp)
	}
	require.Equal(t, "open", breaker.Stats().State)

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, "half_open", breaker.Stats().State)

	result, err := breaker.Call(func() (any, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", result)

	stats := breaker.Stats()
	assert.Equal(t, "closed", stats.State)
	assert.Zero(t, stats.FailureCount)
	assert.Nil(t, stats.LastFailureTime)
}

func TestBreaker_TrialFailureReopens(t *testing.T) {
	breaker := NewBreaker(testBreakerConfig(), NewSilentLogger())
	for i := 0; i < 3; i++ {
		_, _ = breaker.Call(failingOp)
	}

	time.Sleep(150 * time.Millisecond)

	_, err := breaker.Call(failingOp)
	require.ErrorIs(t, err, errUpstream)

	stats := breaker.Stats()
	assert.Equal(t, "open", stats.State)
	require.NotNil(t, stats.LastFailureTime)

	// Still inside the fresh recovery window: calls fail fast again
	_, err = breaker.Call(func() (any, error) { return "ok", nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	breaker := NewBreaker(testBreakerConfig(), NewSilentLogger())

	_, _ = breaker.Call(failingOp)
	_, _ = breaker.Call(failingOp)
	require.Equal(t, uint32(2), breaker.Stats().FailureCount)

	_, err := breaker.Call(func() (any, error) { return nil, nil })
	require.NoError(t, err)
	assert.Zero(t, breaker.Stats().FailureCount)

	// Threshold counts consecutive failures only
	_, _ = breaker.Call(failingOp)
	_, _ = breaker.Call(failingOp)
	assert.Equal(t, "closed", breaker.Stats().State)
}
