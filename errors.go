package megasena

import (
	"fmt"
	"time"
)

// ErrorCode is a stable machine-readable error identifier
type ErrorCode string

const (
	// System errors (1000-1999)
	ErrCodeSystem        ErrorCode = "MEGASENA_1000"
	ErrCodeConfigInvalid ErrorCode = "MEGASENA_1001"
	ErrCodeCache         ErrorCode = "MEGASENA_1002"

	// Upstream errors (2000-2999)
	ErrCodeAPIConnection ErrorCode = "MEGASENA_2000"
	ErrCodeCircuitOpen   ErrorCode = "MEGASENA_2001"

	// Data errors (3000-3999)
	ErrCodeDataProcessing ErrorCode = "MEGASENA_3000"
	ErrCodeDrawNotFound   ErrorCode = "MEGASENA_3001"
	ErrCodeInvalidDate    ErrorCode = "MEGASENA_3002"

	// Rate limiting (4000-4999)
	ErrCodeRateLimited ErrorCode = "MEGASENA_4000"
)

// ErrorSeverity classifies how serious an error is
type ErrorSeverity string

const (
	SeverityCritical ErrorSeverity = "critical"
	SeverityHigh     ErrorSeverity = "high"
	SeverityMedium   ErrorSeverity = "medium"
	SeverityLow      ErrorSeverity = "low"
)

// ServiceError is the error type used across the service. The Code field
// is stable and machine-readable, independent of the human message.
type ServiceError struct {
	Code      ErrorCode     `json:"code"`
	Message   string        `json:"message"`
	Details   string        `json:"details,omitempty"`
	Severity  ErrorSeverity `json:"severity"`
	Timestamp time.Time     `json:"timestamp"`
	Date      string        `json:"date,omitempty"`
	Cause     error         `json:"-"`
	Retryable bool          `json:"retryable"`
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// Is matches ServiceErrors by code, so predefined instances work as
// targets for errors.Is regardless of details or cause.
func (e *ServiceError) Is(target error) bool {
	if t, ok := target.(*ServiceError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithCause returns a copy carrying the underlying cause
func (e *ServiceError) WithCause(cause error) *ServiceError {
	clone := *e
	clone.Cause = cause
	clone.Timestamp = time.Now()
	return &clone
}

// WithDetails returns a copy carrying extra human-readable context
func (e *ServiceError) WithDetails(details string) *ServiceError {
	clone := *e
	clone.Details = details
	clone.Timestamp = time.Now()
	return &clone
}

// NewError creates a new non-retryable error
func NewError(code ErrorCode, message string) *ServiceError {
	return &ServiceError{
		Code:      code,
		Message:   message,
		Severity:  SeverityMedium,
		Timestamp: time.Now(),
		Retryable: false,
	}
}

// NewRetryableError creates a new error callers may retry after backoff
func NewRetryableError(code ErrorCode, message string) *ServiceError {
	return &ServiceError{
		Code:      code,
		Message:   message,
		Severity:  SeverityMedium,
		Timestamp: time.Now(),
		Retryable: true,
	}
}

// NewDrawNotFoundError creates the not-found error for a date lookup,
// carrying the queried date in ISO form.
func NewDrawNotFoundError(date string) *ServiceError {
	return &ServiceError{
		Code:      ErrCodeDrawNotFound,
		Message:   fmt.Sprintf("no draw found for date %s", date),
		Severity:  SeverityLow,
		Timestamp: time.Now(),
		Date:      date,
		Retryable: false,
	}
}

// Predefined error instances
var (
	ErrSystemError    = NewError(ErrCodeSystem, "system error occurred")
	ErrConfigInvalid  = NewError(ErrCodeConfigInvalid, "configuration is invalid")
	ErrCache          = NewRetryableError(ErrCodeCache, "cache backend error")
	ErrAPIConnection  = NewRetryableError(ErrCodeAPIConnection, "failed to reach the Mega-Sena API")
	ErrCircuitOpen    = NewRetryableError(ErrCodeCircuitOpen, "circuit breaker is open")
	ErrDataProcessing = NewError(ErrCodeDataProcessing, "failed to process draw data")
	ErrDrawNotFound   = NewError(ErrCodeDrawNotFound, "no draw found for the requested date")
	ErrInvalidDate    = NewError(ErrCodeInvalidDate, "invalid date: expected YYYY-MM-DD")
	ErrRateLimited    = NewRetryableError(ErrCodeRateLimited, "rate limit exceeded")
)
