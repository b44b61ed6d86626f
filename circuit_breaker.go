package megasena

import (
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerStats is a read-only snapshot of the breaker state
type BreakerStats struct {
	State            string     `json:"state"`
	FailureCount     uint32     `json:"failure_count"`
	FailureThreshold uint32     `json:"failure_threshold"`
	LastFailureTime  *time.Time `json:"last_failure_time"`
}

// Breaker protects upstream calls with a circuit breaker. It wraps
// gobreaker configured for consecutive-failure tripping and a single
// half-open probe, and keeps its own failure bookkeeping so Stats can
// report counters across state changes.
type Breaker struct {
	cb     *gobreaker.CircuitBreaker
	config *BreakerConfig
	logger Logger

	mu           sync.Mutex
	failureCount uint32
	lastFailure  *time.Time
}

// NewBreaker creates a circuit breaker for upstream calls
func NewBreaker(config *BreakerConfig, logger Logger) *Breaker {
	b := &Breaker{
		config: config,
		logger: logger,
	}

	settings := gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: 1,
		Timeout:     config.RecoveryTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("Circuit breaker '%s' state changed from %s to %s", name, from, to)
		},
	}
	b.cb = gobreaker.NewCircuitBreaker(settings)

	logger.Info("Circuit breaker initialized: threshold=%d, recovery=%s",
		config.FailureThreshold, config.RecoveryTimeout)
	return b
}

// Call executes operation through the breaker. While the breaker is
// open the operation is not invoked and ErrCircuitOpen is returned;
// any other failure is counted and passed through to the caller.
func (b *Breaker) Call(operation func() (any, error)) (any, error) {
	result, err := b.cb.Execute(operation)
	if err != nil {
		if err == gobreaker.ErrOpenState {
			b.logger.Debug("Circuit breaker is open, blocking request")
			return nil, ErrCircuitOpen.WithDetails("requests are being rejected")
		}
		if err == gobreaker.ErrTooManyRequests {
			return nil, ErrCircuitOpen.WithDetails("too many requests while probing recovery")
		}
		b.recordFailure()
		return nil, err
	}

	b.recordSuccess()
	return result, nil
}

func (b *Breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.failureCount++
	b.lastFailure = &now
	b.logger.Debug("Circuit breaker failure: %d/%d", b.failureCount, b.config.FailureThreshold)
}

func (b *Breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount = 0
	b.lastFailure = nil
}

// Stats returns a snapshot of the breaker state. Reading the state
// also performs the lazy open-to-half-open transition once the
// recovery timeout has elapsed.
func (b *Breaker) Stats() BreakerStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	return BreakerStats{
		State:            stateString(b.cb.State()),
		FailureCount:     b.failureCount,
		FailureThreshold: b.config.FailureThreshold,
		LastFailureTime:  b.lastFailure,
	}
}

func stateString(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateOpen:
		return "open"
	case gobreaker.StateHalfOpen:
		return "half_open"
	}
	return "unknown"
}
